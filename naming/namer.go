package naming

import (
	"fmt"
	"os"
	"path/filepath"
)

// Namer allocates destination paths that neither exist on disk nor were
// handed out earlier in the same run, so dry runs report the names a real
// run would pick.
type Namer struct {
	reserved map[string]bool
}

func NewNamer() *Namer {
	return &Namer{reserved: make(map[string]bool)}
}

// Path returns dir/base+ext, or dir/base(n)+ext for the smallest free n.
// self is the file being renamed or moved, if any: its current path is
// never treated as a collision with itself.
func (n *Namer) Path(dir, base, ext, self string) string {
	candidate := filepath.Join(dir, base+ext)
	for i := 1; n.taken(candidate, self); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s(%d)%s", base, i, ext))
	}
	n.reserved[candidate] = true
	return candidate
}

// Keep returns dir/name when that is free. Otherwise it falls back to
// Path(dir, base, ext, "") so an existing counter in name is replaced, not
// extended.
func (n *Namer) Keep(dir, name, base, ext string) string {
	candidate := filepath.Join(dir, name)
	if !n.taken(candidate, "") {
		n.reserved[candidate] = true
		return candidate
	}
	return n.Path(dir, base, ext, "")
}

// Release frees a path reserved earlier, e.g. after a failed move.
func (n *Namer) Release(path string) {
	delete(n.reserved, filepath.Clean(path))
}

func (n *Namer) taken(path, self string) bool {
	if self != "" && isSame(path, self) {
		return false
	}
	if n.reserved[path] {
		return true
	}
	_, err := os.Lstat(path)
	return err == nil
}

// isSame also catches case-only differences on case-insensitive volumes.
func isSame(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
