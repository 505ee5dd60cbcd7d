// Package runlog writes the plain-text, append-only logs a run leaves
// under TARGET_DIR/logs for a human to read afterwards.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Dir is the log directory name under the target directory.
const Dir = "logs"

// File names, one per concern.
const (
	Recovered         = "recovered_log.txt"
	Matched           = "matched.txt"
	Unmatched         = "unmatched.txt"
	ProcessErrors     = "process_errors.txt"
	Organize          = "organize_log.txt"
	Cleanup           = "cleanup_log.txt"
	Extract           = "extract_log.txt"
	ExtractedArchives = "extracted_archives.txt"
)

// NewRunID returns a fresh identifier for one invocation.
func NewRunID() string {
	return uuid.NewString()
}

// Log appends lines to one file. A nil *Log discards everything, which is
// what dry runs use.
type Log struct {
	mu   sync.Mutex
	f    *os.File
	path string
	now  func() time.Time
}

// Open appends to dir/name, creating dir if needed, and writes a run
// header.
func Open(dir, name, runID, stage string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	l := &Log{f: f, path: path, now: time.Now}
	if _, err := fmt.Fprintf(f, "# run %s %s %s\n", runID, stage, l.now().Format(time.RFC3339)); err != nil {
		f.Close()
		return nil, fmt.Errorf("write log %s: %w", path, err)
	}
	return l, nil
}

// Printf appends "<time> <TAG> <message>".
func (l *Log) Printf(tag, format string, a ...any) {
	if l == nil {
		return
	}
	msg := strings.ReplaceAll(fmt.Sprintf(format, a...), "\n", " ")

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.f, "%s %s %s\n", l.now().Format(time.RFC3339), tag, msg)
}

func (l *Log) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// Messages returns the message part of every line in path tagged tag, in
// file order. A missing file has no messages.
func Messages(path, tag string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		_, rest, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		t, msg, ok := strings.Cut(rest, " ")
		if ok && t == tag {
			out = append(out, msg)
		}
	}
	return out, nil
}
