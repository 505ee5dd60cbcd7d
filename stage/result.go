// Package stage implements the batch stages that turn an extracted export
// into a dated tree: extract, recover, rename, organize and cleanup.
//
// Stages never print. Each returns a Report of per-file Results and writes
// failures to the plain-text logs under TARGET_DIR/logs. A failure on one
// file never stops the stage.
package stage

import (
	"sort"
	"time"
)

// Status is the per-file outcome that feeds the summary counts.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusUnmatched Status = "unmatched"
	StatusFailed    Status = "failed"
)

// Reason says why a file was not processed.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonPairingFailed   Reason = "pairing_failed"
	ReasonAmbiguous       Reason = "ambiguous_sidecar"
	ReasonParseFailed     Reason = "parse_failed"
	ReasonPatternMismatch Reason = "pattern_mismatch"
	ReasonIOFailed        Reason = "io_failed"
	ReasonToolFailed      Reason = "tool_failed"
)

// State is where a media file stands in the pipeline after a stage.
type State string

const (
	StateUnprocessed      State = "unprocessed"
	StateMetadataInjected State = "metadata-injected"
	StateUnresolved       State = "unresolved"
	StateRenamed          State = "renamed"
	StateUnmatched        State = "unmatched"
	StateOrganized        State = "organized"
	StateLeftInPlace      State = "left-in-place"
)

// Result is what happened to one file.
type Result struct {
	Path   string
	Dest   string // final path when the file moved or was renamed
	Status Status
	State  State
	Reason Reason
	Err    error
}

// Report collects the results of one stage run.
type Report struct {
	Stage    string
	DryRun   bool
	Started  time.Time
	Finished time.Time
	Results  []Result
	Logs     []string
}

// Counts tallies results by status.
type Counts struct {
	Processed int
	Skipped   int
	Unmatched int
	Failed    int
}

func (c Counts) Total() int {
	return c.Processed + c.Skipped + c.Unmatched + c.Failed
}

func (r *Report) Counts() Counts {
	var c Counts
	if r == nil {
		return c
	}
	for _, res := range r.Results {
		switch res.Status {
		case StatusProcessed:
			c.Processed++
		case StatusSkipped:
			c.Skipped++
		case StatusUnmatched:
			c.Unmatched++
		case StatusFailed:
			c.Failed++
		}
	}
	return c
}

func (r *Report) add(res Result) Result {
	r.Results = append(r.Results, res)
	return res
}

func (r *Report) finish(logs ...string) *Report {
	r.Finished = time.Now()
	for _, l := range logs {
		if l != "" {
			r.Logs = append(r.Logs, l)
		}
	}
	sort.Strings(r.Logs)
	return r
}

// Failures returns the failed and unmatched results.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed || res.Status == StatusUnmatched {
			out = append(out, res)
		}
	}
	return out
}
