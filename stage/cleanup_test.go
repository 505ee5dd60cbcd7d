package stage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func cleanupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "b", ".DS_Store"), "")
	if err := os.MkdirAll(filepath.Join(root, "a", "c"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "d", "keep.jpg"), "x")
	if err := os.MkdirAll(filepath.Join(root, "d", "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "e", "THUMBS.DB"), "")
	writeFile(t, filepath.Join(root, "f", "notes.txt"), "keep me")
	return root
}

func TestFindEmptyDirs(t *testing.T) {
	root := cleanupTree(t)

	got, err := FindEmptyDirs(root, DefaultPlaceholders)
	if err != nil {
		t.Fatal(err)
	}
	var rel []string
	for _, p := range got {
		r, _ := filepath.Rel(root, p)
		rel = append(rel, filepath.ToSlash(r))
	}
	want := []string{"a/b", "a/c", "a", "d/empty", "e"}
	if !equalStrings(rel, want) {
		t.Fatalf("FindEmptyDirs = %v, want %v", rel, want)
	}
}

func TestFindEmptyDirsNeverListsRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".DS_Store"), "")

	got, err := FindEmptyDirs(root, DefaultPlaceholders)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestCleanupRemovesEmptyDirs(t *testing.T) {
	root := cleanupTree(t)

	c := &Cleanup{Env: Env{Root: root}}
	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n := report.Counts().Processed; n != 5 {
		t.Fatalf("removed %d dirs, results %+v", n, report.Results)
	}

	for _, gone := range []string{"a", "d/empty", "e"} {
		mustNotExist(t, filepath.Join(root, gone))
	}
	mustExist(t, filepath.Join(root, "d", "keep.jpg"))
	mustExist(t, filepath.Join(root, "f", "notes.txt"))
	mustExist(t, filepath.Join(root, "logs", "cleanup_log.txt"))
}

func TestCleanupDryRun(t *testing.T) {
	root := cleanupTree(t)
	before := tree(t, root)

	c := &Cleanup{Env: Env{Root: root, DryRun: true}}
	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n := report.Counts().Processed; n != 5 {
		t.Fatalf("planned %d dirs", n)
	}
	mustExist(t, filepath.Join(root, "a", "c"))
	if after := tree(t, root); !equalStrings(before, after) {
		t.Fatalf("tree changed: %v -> %v", before, after)
	}
}

func TestCleanupCustomPlaceholders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "x", ".nomedia"), "")
	writeFile(t, filepath.Join(root, "y", ".DS_Store"), "")

	c := &Cleanup{Env: Env{Root: root}, Placeholders: []string{".nomedia"}}
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	mustNotExist(t, filepath.Join(root, "x"))
	mustExist(t, filepath.Join(root, "y", ".DS_Store"))
}
