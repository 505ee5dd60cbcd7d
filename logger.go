package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/levmv/takeoutsort/config"
)

// ANSI Color Codes
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"
)

// Logger prints the user-facing console lines. Structured diagnostics go
// through slog instead.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	color   bool
	Verbose bool
}

var log = NewLogger(os.Stderr, false)

func InitLogger(verbose bool) {
	log = NewLogger(os.Stderr, verbose)
}

// NewLogger colours output only when out is a terminal and NO_COLOR is unset.
func NewLogger(out io.Writer, verbose bool) *Logger {
	return &Logger{out: out, color: isTerminal(out) && os.Getenv("NO_COLOR") == "", Verbose: verbose}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// internal helper to print safely
func (l *Logger) print(color, tag, format string, a ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, a...)
	if !l.color {
		fmt.Fprintf(l.out, "[%s] %s\n", tag, msg)
		return
	}
	fmt.Fprintf(l.out, "%s[%s]%s %s\n", color, tag, Reset, msg)
}

func (l *Logger) Error(format string, a ...any) {
	l.print(Red, "ERR ", format, a...)
}

func (l *Logger) Warn(format string, a ...any) {
	l.print(Yellow, "WARN", format, a...)
}

func (l *Logger) Info(format string, a ...any) {
	if !l.Verbose {
		return
	}
	l.print(Blue, "INFO", format, a...)
}

// Action allows custom tags (RENAME, MOVE, TAG, SKIP, DRY ...)
func (l *Logger) Action(tag, format string, a ...any) {
	if !l.Verbose {
		return
	}
	color := Green
	switch tag {
	case "SKIP", "UNMATCHED", "NOMATCH":
		color = Cyan
	case "DRY":
		color = Gray
	}
	l.print(color, tag, format, a...)
}

// newSlogger builds the diagnostics logger from the [logging] section.
func newSlogger(w io.Writer, cfg config.Logging) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
