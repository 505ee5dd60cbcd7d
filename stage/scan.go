package stage

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/levmv/takeoutsort/runlog"
)

// Scanner lists media files and sidecars under a root.
type Scanner struct {
	// Extensions holds lower-case extensions with the dot.
	Extensions map[string]bool
	// Skip names top-level directories whose media is not listed.
	Skip []string
	// SkipSidecars names top-level directories whose sidecars are not listed.
	SkipSidecars []string
	Logger       *slog.Logger
}

// Inventory is the result of one walk.
type Inventory struct {
	Media    []string
	Sidecars []string
}

// Scan walks root once. Unreadable entries are logged and skipped. The
// logs directory is never entered.
func (s Scanner) Scan(root string) Inventory {
	var inv Inventory
	skipMedia := dirSet(s.Skip)
	skipSidecars := dirSet(s.SkipSidecars)

	// Decision: synchronous WalkDir, no worker pool. Disks are the limit.
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("skipping path", "path", path, "error", err)
			}
			return nil
		}

		top := topLevel(root, path, d.IsDir())
		if d.IsDir() {
			if path != root && top == runlog.Dir {
				return filepath.SkipDir
			}
			if skipMedia[top] && skipSidecars[top] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, "._") {
			// AppleDouble metadata, not a real file
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		switch {
		case ext == ".json":
			if !skipSidecars[top] {
				inv.Sidecars = append(inv.Sidecars, path)
			}
		case s.Extensions[ext]:
			if !skipMedia[top] {
				inv.Media = append(inv.Media, path)
			}
		}
		return nil
	})
	return inv
}

func dirSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// topLevel returns the directory directly under root that contains path,
// or "" for root itself and files directly in it.
func topLevel(root, path string, isDir bool) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return ""
	}
	first, _, found := strings.Cut(filepath.ToSlash(rel), "/")
	if !found && !isDir {
		return ""
	}
	return first
}
