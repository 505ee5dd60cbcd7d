// Package config loads takeoutsort settings. Values are layered, lowest
// first: built-in defaults, a TOML file, environment variables, then
// command-line flags applied by the caller.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// SampleConfig returns a commented config file with every default spelled out.
func SampleConfig() string {
	return sampleConfig
}

// Recover configures sidecar pairing and metadata injection.
type Recover struct {
	MatchRules      []string `toml:"match_rules"`
	EditedSuffixes  []string `toml:"edited_suffixes"`
	FixExtensions   bool     `toml:"fix_extensions"`
	IsolateFailures bool     `toml:"isolate_failures"`
}

// Pattern is a user filename rule; Regexp needs named groups year, month
// and day, and may have hour, minute, second and subsec.
type Pattern struct {
	Name   string `toml:"name"`
	Regexp string `toml:"regexp"`
}

// Rename configures the filename-fallback stage.
type Rename struct {
	SubsecondDigits int       `toml:"subsecond_digits"`
	Patterns        []Pattern `toml:"patterns"`
}

// Organize configures the date organizer.
type Organize struct {
	Mode string `toml:"mode"`
}

// Cleanup configures empty-directory removal.
type Cleanup struct {
	Placeholders []string `toml:"placeholders"`
}

type ExifTool struct {
	Path string `toml:"path"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is everything a run needs. Stages receive the parts they use.
type Config struct {
	TargetDir  string   `toml:"target_dir"`
	OutputDir  string   `toml:"output_dir"`
	ArchiveDir string   `toml:"archive_dir"`
	DryRun     bool     `toml:"dry_run"`
	Extensions []string `toml:"extensions"`

	Recover  Recover  `toml:"recover"`
	Rename   Rename   `toml:"rename"`
	Organize Organize `toml:"organize"`
	Cleanup  Cleanup  `toml:"cleanup"`
	ExifTool ExifTool `toml:"exiftool"`
	Logging  Logging  `toml:"logging"`
}

// Environment variables, kept compatible with the shell scripts this tool
// replaces.
const (
	EnvTargetDir  = "TARGET_DIR"
	EnvOutputDir  = "OUTPUT_DIR"
	EnvArchiveDir = "TAR_SOURCE"
)

const (
	projectFile = "takeoutsort.toml"
	userFile    = "~/.config/takeoutsort/config.toml"
)

// Load reads the config file and environment on top of Default. An empty
// path searches ./takeoutsort.toml, then ~/.config/takeoutsort/config.toml.
// It reports the file it settled on and whether that file exists. Target
// directory checks are left to RequireTarget so flags can still fill it.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, &Error{Code: ErrCodeInvalid, Path: resolved, Err: err}
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, &Error{Code: ErrCodeInvalid, Path: resolved, Err: err}
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// ApplyEnv overrides directories from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.TargetDir, EnvTargetDir)
	set(&c.OutputDir, EnvOutputDir)
	set(&c.ArchiveDir, EnvArchiveDir)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs(projectFile)
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	userPath, err := expandPath(userFile)
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(userPath); err == nil && !info.IsDir() {
		return userPath, true, nil
	}
	return userPath, false, nil
}

// ExpandPath resolves "~" and makes p absolute.
func ExpandPath(p string) (string, error) {
	return expandPath(p)
}

func expandPath(p string) (string, error) {
	if p == "" {
		return p, nil
	}
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if p == "~" {
			p = home
		} else if len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
			p = filepath.Join(home, p[2:])
		}
	}
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	return abs, nil
}
