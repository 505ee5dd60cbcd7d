package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Error codes for fatal configuration problems.
const (
	ErrCodeMissingTarget = "missing_target"
	ErrCodeTargetNotDir  = "target_not_dir"
	ErrCodeInvalidMode   = "invalid_mode"
	ErrCodeInvalid       = "invalid_config"
)

// Error is a configuration error that must stop the run before any file
// is touched.
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingTarget:
		return fmt.Sprintf("%s: target directory is not set (use --target or %s)", e.Code, EnvTargetDir)
	case ErrCodeTargetNotDir:
		if e.Err != nil {
			return fmt.Sprintf("%s: %q: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: %q is not a directory", e.Code, e.Path)
	default:
		if e.Err != nil && e.Path != "" {
			return fmt.Sprintf("%s: %s: %v", e.Code, e.Path, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code, or "" when err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var knownRules = map[string]bool{"exact": true, "counter": true, "edited": true, "gif-ani": true, "truncated": true, "stem": true}

// Validate checks values that do not depend on the filesystem.
func (c *Config) Validate() error {
	if c.Organize.Mode != ModeYear && c.Organize.Mode != ModeMonth {
		return &Error{Code: ErrCodeInvalidMode, Path: "organize.mode", Err: fmt.Errorf("%q is not %q or %q", c.Organize.Mode, ModeYear, ModeMonth)}
	}
	if d := c.Rename.SubsecondDigits; d < 0 || d > 3 {
		return invalid("rename.subsecond_digits", fmt.Errorf("%d is outside 0-3", d))
	}
	for _, r := range c.Recover.MatchRules {
		if !knownRules[r] {
			return invalid("recover.match_rules", fmt.Errorf("unknown rule %q", r))
		}
	}
	for i, p := range c.Rename.Patterns {
		if strings.TrimSpace(p.Name) == "" {
			return invalid(fmt.Sprintf("rename.patterns[%d].name", i), errors.New("must be set"))
		}
		re, err := regexp.Compile(p.Regexp)
		if err != nil {
			return invalid(fmt.Sprintf("rename.patterns[%d].regexp", i), err)
		}
		for _, g := range []string{"year", "month", "day"} {
			if re.SubexpIndex(g) < 0 {
				return invalid(fmt.Sprintf("rename.patterns[%d].regexp", i), fmt.Errorf("missing named group %q", g))
			}
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level", fmt.Errorf("unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return invalid("logging.format", fmt.Errorf("unknown format %q", c.Logging.Format))
	}
	return nil
}

func invalid(field string, err error) error {
	return &Error{Code: ErrCodeInvalid, Path: field, Err: err}
}

// RequireTarget checks that TargetDir is set and is a directory.
func (c *Config) RequireTarget() error {
	if c.TargetDir == "" {
		return &Error{Code: ErrCodeMissingTarget}
	}
	info, err := os.Stat(c.TargetDir)
	if err != nil {
		return &Error{Code: ErrCodeTargetNotDir, Path: c.TargetDir, Err: err}
	}
	if !info.IsDir() {
		return &Error{Code: ErrCodeTargetNotDir, Path: c.TargetDir}
	}
	return nil
}
