package runlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogAppendsAcrossRuns(t *testing.T) {
	dir := filepath.Join(t.TempDir(), Dir)

	for _, id := range []string{"run-a", "run-b"} {
		l, err := Open(dir, Matched, id, "rename")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		l.Printf("RENAME", "%s -> %s", "a.jpg", "b.jpg")
		if err := l.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, Matched))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "# run run-a rename ") || !strings.HasPrefix(lines[2], "# run run-b rename ") {
		t.Fatalf("headers missing:\n%s", data)
	}
	if !strings.HasSuffix(lines[1], " RENAME a.jpg -> b.jpg") {
		t.Fatalf("line = %q", lines[1])
	}
}

func TestNilLogDiscards(t *testing.T) {
	var l *Log
	l.Printf("X", "ignored")
	if l.Path() != "" || l.Close() != nil {
		t.Fatal("nil log should be inert")
	}
}

func TestPrintfKeepsOneLinePerEntry(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, ProcessErrors, NewRunID(), "rename")
	if err != nil {
		t.Fatal(err)
	}
	l.Printf("ERR", "first\nsecond")
	l.Close()

	data, _ := os.ReadFile(l.Path())
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Fatalf("want header + 1 line, got %d lines", n)
	}
}

func TestNewRunIDUnique(t *testing.T) {
	if NewRunID() == NewRunID() {
		t.Fatal("run ids should differ")
	}
}

func TestAcquireIsExclusive(t *testing.T) {
	dir := t.TempDir()
	first, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if _, err := Acquire(dir); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire err = %v, want ErrLocked", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	again.Release()
}

func TestMessages(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, ExtractedArchives, NewRunID(), "extract")
	if err != nil {
		t.Fatal(err)
	}
	l.Printf("DONE", "takeout-001.tgz")
	l.Printf("ERR", "takeout-002.tgz: broken")
	l.Printf("DONE", "takeout 003.zip")
	l.Close()

	got, err := Messages(l.Path(), "DONE")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"takeout-001.tgz", "takeout 003.zip"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Messages = %q, want %q", got, want)
	}

	none, err := Messages(filepath.Join(dir, "missing.txt"), "DONE")
	if err != nil || none != nil {
		t.Fatalf("missing file: %v %v", none, err)
	}
}
