package stage

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/levmv/takeoutsort/exifdate"
	"github.com/levmv/takeoutsort/metadata"
)

// fakeTagger keeps tags in memory keyed by path. Reads of unknown paths
// report ErrUnsupported like a container nothing understands.
type fakeTagger struct {
	tags      map[string]metadata.Tags
	failWrite error
	writes    int
}

func newFakeTagger() *fakeTagger {
	return &fakeTagger{tags: make(map[string]metadata.Tags)}
}

func (f *fakeTagger) ReadTags(path string) (metadata.Tags, error) {
	if t, ok := f.tags[path]; ok {
		return t, nil
	}
	return metadata.Tags{}, exifdate.ErrUnsupported
}

func (f *fakeTagger) WriteTags(path string, tags metadata.Tags) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	f.writes++
	f.tags[path] = tags
	return nil
}

var media = map[string]bool{".jpg": true, ".jpeg": true, ".heic": true, ".mp4": true, ".mov": true, ".gif": true, ".png": true}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if !exists(path) {
		t.Fatalf("expected %s to exist", path)
	}
}

func mustNotExist(t *testing.T, path string) {
	t.Helper()
	if exists(path) {
		t.Fatalf("expected %s to be gone", path)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// tree lists every regular file under root relative to it, sorted.
func tree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, _ := filepath.Rel(root, path)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
