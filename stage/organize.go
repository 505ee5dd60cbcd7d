package stage

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/levmv/takeoutsort/naming"
	"github.com/levmv/takeoutsort/runlog"
)

// Organize modes.
const (
	ByYear  = "year"
	ByMonth = "month"
)

// Organize moves canonically named media into Output/YYYY or
// Output/YYYY/<month>. Everything else stays where it is.
type Organize struct {
	Env
	Extensions map[string]bool
	Output     string
	Mode       string
}

func (o *Organize) Run(ctx context.Context) (*Report, error) {
	if o.Mode != ByYear && o.Mode != ByMonth {
		return nil, fmt.Errorf("organize: unknown mode %q", o.Mode)
	}
	output := o.Output
	if output == "" {
		output = o.Root
	}

	report := &Report{Stage: "organize", DryRun: o.DryRun, Started: time.Now()}
	logger := o.logger().With("stage", "organize", "mode", o.Mode)

	log, err := o.openLog(runlog.Organize, "organize")
	if err != nil {
		return nil, err
	}
	defer log.Close()

	inv := Scanner{
		Extensions:   o.Extensions,
		Skip:         []string{DoneDir, UnmatchedDir},
		SkipSidecars: []string{DoneDir, ErrorDir, UnmatchedDir},
		Logger:       logger,
	}.Scan(o.Root)
	logger.Info("scan complete", "media", len(inv.Media))

	namer := naming.NewNamer()
	obs := o.observer()
	obs.Begin("organize", len(inv.Media))
	defer obs.End()

	for _, path := range inv.Media {
		if err := ctx.Err(); err != nil {
			return report.finish(log.Path()), err
		}
		obs.Step(path)
		res := o.organizeOne(path, output, namer, log)
		report.add(res)
		logger.Debug("organized", "path", res.Path, "dest", res.Dest, "status", res.Status)
	}

	return report.finish(log.Path()), nil
}

// Destination returns the directory a canonical file belongs in.
func Destination(output, mode string, t time.Time) string {
	dir := filepath.Join(output, strconv.Itoa(t.Year()))
	if mode == ByMonth {
		dir = filepath.Join(dir, naming.MonthDir(t.Month()))
	}
	return dir
}

func (o *Organize) organizeOne(path, output string, namer *naming.Namer, log *runlog.Log) Result {
	res := Result{Path: path}
	name := filepath.Base(path)

	c, ok := naming.ParseCanonical(name)
	if !ok {
		log.Printf("NOMATCH", "no canonical date in file name: %s", o.rel(path))
		res.Status, res.State, res.Reason = StatusSkipped, StateLeftInPlace, ReasonPatternMismatch
		return res
	}

	destDir := Destination(output, o.Mode, c.Time)
	if filepath.Clean(filepath.Dir(path)) == filepath.Clean(destDir) {
		res.Status, res.State = StatusSkipped, StateOrganized
		return res
	}

	dst := namer.Keep(destDir, name, c.Base(), filepath.Ext(name))
	if !o.DryRun {
		if err := moveFile(path, dst); err != nil {
			namer.Release(dst)
			log.Printf("ERR", "move %s: %v", o.rel(path), err)
			res.Status, res.State, res.Reason, res.Err = StatusFailed, StateLeftInPlace, ReasonIOFailed, err
			return res
		}
	}
	log.Printf(o.tag("MOVE"), "%s -> %s", o.rel(path), dst)
	res.Status, res.State, res.Dest = StatusProcessed, StateOrganized, dst
	return res
}
