package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/levmv/takeoutsort/stage"
)

// Statistics collects the stage reports of one invocation.
type Statistics struct {
	StartTime time.Time
	Reports   []*stage.Report
}

func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

func (s *Statistics) Add(r *stage.Report) {
	if r != nil {
		s.Reports = append(s.Reports, r)
	}
}

// Totals sums the counts of every stage.
func (s *Statistics) Totals() stage.Counts {
	var t stage.Counts
	for _, r := range s.Reports {
		c := r.Counts()
		t.Processed += c.Processed
		t.Skipped += c.Skipped
		t.Unmatched += c.Unmatched
		t.Failed += c.Failed
	}
	return t
}

// Render returns the per-stage summary table.
func (s *Statistics) Render() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Stage", "Processed", "Skipped", "Unmatched", "Failed", "Duration"})

	for _, r := range s.Reports {
		c := r.Counts()
		name := r.Stage
		if r.DryRun {
			name += " (dry run)"
		}
		tw.AppendRow(table.Row{name, c.Processed, c.Skipped, c.Unmatched, c.Failed, r.Finished.Sub(r.Started).Round(time.Millisecond).String()})
	}

	t := s.Totals()
	tw.AppendFooter(table.Row{"Total", t.Processed, t.Skipped, t.Unmatched, t.Failed, time.Since(s.StartTime).Round(time.Millisecond).String()})

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for i := 2; i <= 6; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// PrintSummary writes the table and points at the logs for detail.
func (s *Statistics) PrintSummary(w io.Writer, logDir string) {
	fmt.Fprintln(w, s.Render())
	if logDir == "" {
		return
	}
	if t := s.Totals(); t.Failed > 0 || t.Unmatched > 0 {
		fmt.Fprintf(w, "%d failed, %d unmatched. Details in %s\n", t.Failed, t.Unmatched, logDir)
	} else {
		fmt.Fprintf(w, "Logs: %s\n", logDir)
	}
}

// printReport echoes per-file outcomes to the console: every action when
// verbose, failures always.
func printReport(r *stage.Report, root string) {
	for _, res := range r.Results {
		path := relTo(root, res.Path)
		switch res.Status {
		case stage.StatusFailed:
			log.Error("%s: %s: %v", path, res.Reason, res.Err)
		case stage.StatusUnmatched:
			log.Action(actionTag("UNMATCHED", r.DryRun), "%s -> %s", path, relTo(root, res.Dest))
		case stage.StatusSkipped:
			if res.Reason != stage.ReasonNone {
				log.Action("SKIP", "%s (%s)", path, res.Reason)
			}
		case stage.StatusProcessed:
			if res.Dest != "" {
				log.Action(actionTag(stageVerb(r.Stage), r.DryRun), "%s -> %s", path, relTo(root, res.Dest))
			} else {
				log.Action(actionTag(stageVerb(r.Stage), r.DryRun), "%s", path)
			}
		}
	}
}

func stageVerb(name string) string {
	switch name {
	case "recover":
		return "TAG"
	case "cleanup":
		return "RMDIR"
	case "organize":
		return "MOVE"
	}
	return strings.ToUpper(name)
}

func actionTag(tag string, dry bool) string {
	if dry {
		return "DRY"
	}
	return tag
}

func relTo(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}
