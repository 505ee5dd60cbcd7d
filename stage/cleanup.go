package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/levmv/takeoutsort/runlog"
)

// DefaultPlaceholders are files operating systems drop into directories on
// their own. A directory holding only these counts as empty.
var DefaultPlaceholders = []string{".DS_Store", "Thumbs.db", "desktop.ini", ".localized"}

// Cleanup removes directories left empty by the moves of earlier stages.
// The root itself is never removed.
type Cleanup struct {
	Env
	Placeholders []string
}

func (c *Cleanup) placeholders() []string {
	if len(c.Placeholders) == 0 {
		return DefaultPlaceholders
	}
	return c.Placeholders
}

// Plan lists what Run would remove, deepest first.
func (c *Cleanup) Plan() ([]string, error) {
	return FindEmptyDirs(c.Root, c.placeholders())
}

// FindEmptyDirs returns every directory below root that holds nothing but
// placeholders and directories that are themselves empty. Children come
// before their parents.
func FindEmptyDirs(root string, placeholders []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var out []string
	var visit func(dir string) bool
	visit = func(dir string) bool {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return false
		}
		empty := true
		for _, e := range entries {
			switch {
			case e.IsDir():
				if !visit(filepath.Join(dir, e.Name())) {
					empty = false
				}
			case !isPlaceholder(e.Name(), placeholders):
				empty = false
			}
		}
		if empty && dir != root {
			out = append(out, dir)
		}
		return empty
	}
	visit(filepath.Clean(root))
	return out, nil
}

func isPlaceholder(name string, placeholders []string) bool {
	for _, p := range placeholders {
		if strings.EqualFold(name, p) {
			return true
		}
	}
	return false
}

func (c *Cleanup) Run(ctx context.Context) (*Report, error) {
	report := &Report{Stage: "cleanup", DryRun: c.DryRun, Started: time.Now()}
	logger := c.logger().With("stage", "cleanup")

	plan, err := c.Plan()
	if err != nil {
		return nil, err
	}

	log, err := c.openLog(runlog.Cleanup, "cleanup")
	if err != nil {
		return nil, err
	}
	defer log.Close()

	obs := c.observer()
	obs.Begin("cleanup", len(plan))
	defer obs.End()

	for _, dir := range plan {
		if err := ctx.Err(); err != nil {
			return report.finish(log.Path()), err
		}
		obs.Step(dir)

		res := Result{Path: dir}
		if !c.DryRun {
			if err := c.removeDir(dir); err != nil {
				log.Printf("ERR", "%s: %v", c.rel(dir), err)
				res.Status, res.Reason, res.Err = StatusFailed, ReasonIOFailed, err
				report.add(res)
				continue
			}
		}
		log.Printf(c.tag("RMDIR"), "%s", c.rel(dir))
		logger.Debug("removed", "dir", dir)
		res.Status = StatusProcessed
		report.add(res)
	}

	return report.finish(log.Path()), nil
}

// removeDir re-checks dir right before removing it so nothing but
// placeholders is ever deleted.
func (c *Cleanup) removeDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !isPlaceholder(e.Name(), c.placeholders()) {
			return fmt.Errorf("no longer empty: %s", e.Name())
		}
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return os.Remove(dir)
}
