package config

import (
	"fmt"
	"strings"
)

// Normalize expands paths, lower-cases enumerations and fills derived
// defaults. It is safe to call again after flags change fields.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Extensions = normalizeExtensions(c.Extensions)
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), defaultExtensions...)
	}
	c.normalizeRecover()
	c.normalizeOrganize()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	for _, p := range []struct {
		name string
		dst  *string
	}{
		{"target_dir", &c.TargetDir},
		{"output_dir", &c.OutputDir},
		{"archive_dir", &c.ArchiveDir},
		{"exiftool.path", &c.ExifTool.Path},
	} {
		v := strings.TrimSpace(*p.dst)
		if p.name == "exiftool.path" && !strings.ContainsAny(v, `/\~`) {
			// a bare command name is looked up on PATH
			*p.dst = v
			continue
		}
		if *p.dst, err = expandPath(v); err != nil {
			return &Error{Code: ErrCodeInvalid, Path: p.name, Err: err}
		}
	}
	return nil
}

// Output is OutputDir, or TargetDir when no output directory was given.
func (c *Config) Output() string {
	if c.OutputDir == "" {
		return c.TargetDir
	}
	return c.OutputDir
}

func normalizeExtensions(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

func (c *Config) normalizeRecover() {
	for i, r := range c.Recover.MatchRules {
		c.Recover.MatchRules[i] = strings.ToLower(strings.TrimSpace(r))
	}
	if len(c.Recover.MatchRules) == 0 {
		c.Recover.MatchRules = append([]string(nil), defaultMatchRules...)
	}
	if len(c.Recover.EditedSuffixes) == 0 {
		c.Recover.EditedSuffixes = append([]string(nil), defaultEditedSuffixes...)
	}
}

func (c *Config) normalizeOrganize() {
	switch m := strings.ToLower(strings.TrimSpace(c.Organize.Mode)); m {
	case "", "1":
		c.Organize.Mode = ModeYear
	case "2":
		c.Organize.Mode = ModeMonth
	default:
		c.Organize.Mode = m
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

// ExtensionSet returns Extensions as a lookup set.
func (c *Config) ExtensionSet() map[string]bool {
	set := make(map[string]bool, len(c.Extensions))
	for _, e := range c.Extensions {
		set[e] = true
	}
	return set
}

func (c *Config) String() string {
	return fmt.Sprintf("target=%s output=%s mode=%s dry_run=%t", c.TargetDir, c.Output(), c.Organize.Mode, c.DryRun)
}
