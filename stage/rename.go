package stage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/levmv/takeoutsort/exifdate"
	"github.com/levmv/takeoutsort/metadata"
	"github.com/levmv/takeoutsort/naming"
	"github.com/levmv/takeoutsort/runlog"
)

// Rename gives every media file its canonical name in place. The capture
// time comes from embedded metadata when there is any, else from the file
// name. Files with neither move to unmatched/.
type Rename struct {
	Env
	Reader          metadata.Reader
	Extensions      map[string]bool
	Inferrer        *naming.Inferrer
	SubsecondDigits int
}

type renameLogs struct {
	matched, unmatched, errors *runlog.Log
}

func (l renameLogs) close() {
	l.matched.Close()
	l.unmatched.Close()
	l.errors.Close()
}

func (r *Rename) Run(ctx context.Context) (*Report, error) {
	report := &Report{Stage: "rename", DryRun: r.DryRun, Started: time.Now()}
	logger := r.logger().With("stage", "rename")

	inferrer := r.Inferrer
	if inferrer == nil {
		inferrer = naming.NewInferrer()
	}

	var logs renameLogs
	var err error
	defer func() { logs.close() }()
	if logs.matched, err = r.openLog(runlog.Matched, "rename"); err != nil {
		return nil, err
	}
	if logs.unmatched, err = r.openLog(runlog.Unmatched, "rename"); err != nil {
		return nil, err
	}
	if logs.errors, err = r.openLog(runlog.ProcessErrors, "rename"); err != nil {
		return nil, err
	}

	inv := Scanner{
		Extensions:   r.Extensions,
		Skip:         []string{DoneDir, UnmatchedDir},
		SkipSidecars: []string{DoneDir, ErrorDir, UnmatchedDir},
		Logger:       logger,
	}.Scan(r.Root)
	logger.Info("scan complete", "media", len(inv.Media))

	namer := naming.NewNamer()
	obs := r.observer()
	obs.Begin("rename", len(inv.Media))
	defer obs.End()

	for _, path := range inv.Media {
		if err := ctx.Err(); err != nil {
			return report.finish(logs.matched.Path(), logs.unmatched.Path(), logs.errors.Path()), err
		}
		obs.Step(path)
		res := r.renameOne(path, inferrer, namer, logs)
		report.add(res)
		logger.Debug("renamed", "path", res.Path, "dest", res.Dest, "status", res.Status)
	}

	return report.finish(logs.matched.Path(), logs.unmatched.Path(), logs.errors.Path()), nil
}

// resolve returns the canonical base name for path and where it came
// from: "metadata" or the name of the filename pattern. Embedded metadata
// always wins over the file name.
func (r *Rename) resolve(path string, inferrer *naming.Inferrer, errLog *runlog.Log) (string, string, error) {
	if r.Reader != nil {
		tags, err := r.Reader.ReadTags(path)
		switch {
		case err == nil:
			if t, ok := tags.Captured(); ok {
				return naming.Base(t, tags.SubSeconds(), r.SubsecondDigits), "metadata", nil
			}
		case errors.Is(err, exifdate.ErrUnsupported):
			// nothing embedded we can read; the file name decides
		default:
			errLog.Printf("ERR", "read metadata %s: %v", r.rel(path), err)
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	inf, err := inferrer.Infer(stem)
	if err != nil {
		return "", "", err
	}
	return naming.Base(inf.Time, inf.SubSec, r.SubsecondDigits), inf.Pattern, nil
}

func (r *Rename) renameOne(path string, inferrer *naming.Inferrer, namer *naming.Namer, logs renameLogs) Result {
	res := Result{Path: path}
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))

	base, source, err := r.resolve(path, inferrer, logs.errors)
	if err != nil {
		return r.unmatched(res, ext, namer, logs)
	}

	if naming.HasBase(name, base) && filepath.Ext(name) == ext {
		res.Status, res.State = StatusSkipped, StateRenamed
		return res
	}

	dst := namer.Path(filepath.Dir(path), base, ext, path)
	if dst == path {
		res.Status, res.State = StatusSkipped, StateRenamed
		return res
	}
	if !r.DryRun {
		if err := moveFile(path, dst); err != nil {
			namer.Release(dst)
			logs.errors.Printf("ERR", "rename %s: %v", r.rel(path), err)
			res.Status, res.State, res.Reason, res.Err = StatusFailed, StateUnresolved, ReasonIOFailed, err
			return res
		}
	}
	logs.matched.Printf(r.tag("RENAME"), "%s -> %s (%s)", r.rel(path), filepath.Base(dst), source)
	res.Status, res.State, res.Dest = StatusProcessed, StateRenamed, dst
	return res
}

func (r *Rename) unmatched(res Result, ext string, namer *naming.Namer, logs renameLogs) Result {
	name := filepath.Base(res.Path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	dst := namer.Path(r.dir(UnmatchedDir), stem, ext, "")
	if !r.DryRun {
		if err := moveFile(res.Path, dst); err != nil {
			namer.Release(dst)
			logs.errors.Printf("ERR", "move unmatched %s: %v", r.rel(res.Path), err)
			res.Status, res.State, res.Reason, res.Err = StatusFailed, StateUnresolved, ReasonIOFailed, err
			return res
		}
	}
	logs.unmatched.Printf(r.tag("UNMATCHED"), "%s -> %s", r.rel(res.Path), r.rel(dst))
	res.Status, res.State, res.Reason, res.Dest = StatusUnmatched, StateUnmatched, ReasonPatternMismatch, dst
	return res
}
