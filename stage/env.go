package stage

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/levmv/takeoutsort/runlog"
)

// Holding areas under the target directory.
const (
	DoneDir      = "done"
	ErrorDir     = "error"
	UnmatchedDir = "unmatched"
)

// Env is what every stage shares.
type Env struct {
	// Root is TARGET_DIR.
	Root     string
	DryRun   bool
	RunID    string
	Logger   *slog.Logger
	Observer Observer
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e.Logger
}

func (e Env) observer() Observer {
	return observerOr(e.Observer)
}

func (e Env) dir(name string) string {
	return filepath.Join(e.Root, name)
}

// openLog opens one of the run logs. Dry runs leave the filesystem alone
// and get a nil log, which discards.
func (e Env) openLog(name, stage string) (*runlog.Log, error) {
	if e.DryRun {
		return nil, nil
	}
	return runlog.Open(e.dir(runlog.Dir), name, e.RunID, stage)
}

// rel returns path relative to root for log lines, or path itself.
func (e Env) rel(path string) string {
	if r, err := filepath.Rel(e.Root, path); err == nil {
		return r
	}
	return path
}

// tag marks log and console actions taken in dry-run mode.
func (e Env) tag(t string) string {
	if e.DryRun {
		return "DRY " + t
	}
	return t
}
