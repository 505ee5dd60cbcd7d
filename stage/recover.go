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
	"github.com/levmv/takeoutsort/sidecar"
)

// Recover pairs media with their JSON sidecars, writes the sidecar capture
// time into CreateDate, DateTimeOriginal and ModifyDate, and moves used
// sidecars into done/.
type Recover struct {
	Env
	Tagger     metadata.Tagger
	Extensions map[string]bool
	Rules      []sidecar.Rule
	// FixExtensions renames media whose extension lies about its content
	// before tagging. Pairing still uses the name found on disk.
	FixExtensions bool
	// IsolateFailures moves media whose sidecar was found but could not be
	// applied into error/.
	IsolateFailures bool
}

type sidecarEntry struct {
	rec  sidecar.Record
	err  error
	path string // current location; changes once moved into done/
	used bool
}

func (r *Recover) Run(ctx context.Context) (*Report, error) {
	report := &Report{Stage: "recover", DryRun: r.DryRun, Started: time.Now()}
	logger := r.logger().With("stage", "recover")

	rules := r.Rules
	if rules == nil {
		var err error
		if rules, err = sidecar.Rules(nil, nil); err != nil {
			return nil, err
		}
	}

	log, err := r.openLog(runlog.Recovered, "recover")
	if err != nil {
		return nil, err
	}
	defer log.Close()

	inv := Scanner{
		Extensions:   r.Extensions,
		Skip:         []string{DoneDir, ErrorDir, UnmatchedDir},
		SkipSidecars: []string{DoneDir},
		Logger:       logger,
	}.Scan(r.Root)

	index := sidecar.NewIndex()
	for _, p := range inv.Sidecars {
		index.Add(p)
	}
	matcher := sidecar.NewMatcher(index, rules)
	logger.Info("scan complete", "media", len(inv.Media), "sidecars", index.Len())

	namer := naming.NewNamer()
	sidecars := make(map[string]*sidecarEntry)
	obs := r.observer()
	obs.Begin("recover", len(inv.Media))
	defer obs.End()

	for _, path := range inv.Media {
		if err := ctx.Err(); err != nil {
			return report.finish(log.Path()), err
		}
		obs.Step(path)
		res := r.recoverOne(path, matcher, sidecars, namer, log)
		report.add(res)
		logger.Debug("recovered", "path", res.Path, "status", res.Status, "reason", res.Reason)
	}

	return report.finish(log.Path()), nil
}

func (r *Recover) recoverOne(path string, matcher *sidecar.Matcher, sidecars map[string]*sidecarEntry, namer *naming.Namer, log *runlog.Log) Result {
	res := Result{Path: path, State: StateUnresolved}

	match, err := matcher.Find(path)
	if err != nil {
		res.Err = err
		if errors.Is(err, sidecar.ErrAmbiguous) {
			res.Status, res.Reason = StatusFailed, ReasonAmbiguous
			log.Printf("AMBIGUOUS", "%v", err)
		} else {
			res.Status, res.Reason = StatusSkipped, ReasonPairingFailed
			log.Printf("NOSIDECAR", "%s", r.rel(path))
		}
		return res
	}

	entry := sidecars[match.Path]
	if entry == nil {
		rec, err := sidecar.ReadFile(match.Path)
		entry = &sidecarEntry{rec: rec, err: err, path: match.Path}
		sidecars[match.Path] = entry
	}
	if entry.err != nil {
		return r.fail(res, path, ReasonParseFailed, entry.err, namer, log)
	}
	taken, err := entry.rec.Taken()
	if err != nil {
		return r.fail(res, path, ReasonParseFailed, err, namer, log)
	}

	if r.FixExtensions {
		fixed, err := r.fixExtension(path, namer, log)
		if err != nil {
			return r.fail(res, path, ReasonIOFailed, err, namer, log)
		}
		if fixed != path {
			path, res.Dest = fixed, fixed
		}
	}

	tags := metadata.DatesAt(taken)
	if !r.DryRun {
		if err := r.Tagger.WriteTags(path, tags); err != nil {
			return r.fail(res, path, ReasonToolFailed, err, namer, log)
		}
	}
	log.Printf(r.tag("TAG"), "%s <- %s (%s) %s", r.rel(path), r.rel(match.Path), match.Rule, tags.CreateDate)

	if !entry.used {
		dst := namer.Path(r.dir(DoneDir), strings.TrimSuffix(filepath.Base(match.Path), filepath.Ext(match.Path)), ".json", "")
		if !r.DryRun {
			if err := moveFile(entry.path, dst); err != nil {
				namer.Release(dst)
				log.Printf("ERR", "move sidecar %s: %v", r.rel(entry.path), err)
				res.Status, res.State, res.Reason, res.Err = StatusProcessed, StateMetadataInjected, ReasonIOFailed, err
				return res
			}
		}
		entry.used, entry.path = true, dst
		log.Printf(r.tag("DONE"), "%s -> %s", r.rel(match.Path), r.rel(dst))
	}

	res.Status, res.State = StatusProcessed, StateMetadataInjected
	return res
}

// fixExtension renames path when its content says it is another format.
func (r *Recover) fixExtension(path string, namer *naming.Namer, log *runlog.Log) (string, error) {
	format, err := exifdate.SniffFile(path)
	if err != nil {
		return path, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if format.Accepts(ext) {
		return path, nil
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dst := namer.Path(filepath.Dir(path), stem, format.Ext(), "")
	if !r.DryRun {
		if err := moveFile(path, dst); err != nil {
			namer.Release(dst)
			return path, err
		}
	}
	log.Printf(r.tag("EXT"), "%s -> %s (%s)", r.rel(path), filepath.Base(dst), format.MIME())
	return dst, nil
}

// fail records a file whose sidecar could not be applied. current is where
// the file is now. With IsolateFailures it moves into error/ keeping its
// path relative to the root.
func (r *Recover) fail(res Result, current string, reason Reason, err error, namer *naming.Namer, log *runlog.Log) Result {
	res.Status, res.Reason, res.Err = StatusFailed, reason, err
	log.Printf("ERR", "%s: %s: %v", r.rel(current), reason, err)
	if !r.IsolateFailures {
		return res
	}

	rel := r.rel(current)
	name := filepath.Base(current)
	ext := filepath.Ext(name)
	dst := namer.Path(filepath.Join(r.dir(ErrorDir), filepath.Dir(rel)), strings.TrimSuffix(name, ext), ext, "")
	if !r.DryRun {
		if mErr := moveFile(current, dst); mErr != nil {
			namer.Release(dst)
			log.Printf("ERR", "isolate %s: %v", rel, mErr)
			return res
		}
	}
	res.Dest = dst
	log.Printf(r.tag("ISOLATE"), "%s -> %s", rel, r.rel(dst))
	return res
}
