package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/levmv/takeoutsort/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvTargetDir, "")
	t.Setenv(config.EnvOutputDir, "")
	t.Setenv(config.EnvArchiveDir, "")
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "takeoutsort.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected no config file, got %s", resolved)
	}
	if resolved != filepath.Join(home, ".config", "takeoutsort", "config.toml") {
		t.Fatalf("resolved = %s", resolved)
	}
	if cfg.Organize.Mode != config.ModeYear {
		t.Fatalf("mode = %q", cfg.Organize.Mode)
	}
	if cfg.Rename.SubsecondDigits != 2 {
		t.Fatalf("subsecond digits = %d", cfg.Rename.SubsecondDigits)
	}
	if !cfg.ExtensionSet()[".heic"] || len(cfg.Extensions) != 12 {
		t.Fatalf("extensions = %v", cfg.Extensions)
	}
	if !cfg.Recover.FixExtensions || cfg.Recover.IsolateFailures {
		t.Fatalf("recover defaults = %+v", cfg.Recover)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	isolate(t)
	target := t.TempDir()
	path := writeConfig(t, `
target_dir = "/from/file"
output_dir = "/out/file"
extensions = ["JPG", "mp4", ".jpg"]

[organize]
mode = "Month"

[rename]
subsecond_digits = 3

[[rename.patterns]]
name = "dmy"
regexp = '^(?P<day>\d{2})\.(?P<month>\d{2})\.(?P<year>\d{4})'
`)
	t.Setenv(config.EnvTargetDir, target)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %s exists = %v", resolved, exists)
	}
	if cfg.TargetDir != target {
		t.Fatalf("env should override file: target = %s", cfg.TargetDir)
	}
	if cfg.Output() != filepath.Clean("/out/file") {
		t.Fatalf("output = %s", cfg.Output())
	}
	if cfg.Organize.Mode != config.ModeMonth {
		t.Fatalf("mode = %q", cfg.Organize.Mode)
	}
	if len(cfg.Extensions) != 2 || cfg.Extensions[0] != ".jpg" || cfg.Extensions[1] != ".mp4" {
		t.Fatalf("extensions = %v", cfg.Extensions)
	}
	if len(cfg.Rename.Patterns) != 1 || cfg.Rename.Patterns[0].Name != "dmy" {
		t.Fatalf("patterns = %+v", cfg.Rename.Patterns)
	}
	if err := cfg.RequireTarget(); err != nil {
		t.Fatalf("RequireTarget: %v", err)
	}
}

func TestOutputFallsBackToTarget(t *testing.T) {
	cfg := config.Default()
	cfg.TargetDir = "/t"
	if cfg.Output() != "/t" {
		t.Fatalf("Output = %s", cfg.Output())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		body string
		code string
	}{
		{"mode", "[organize]\nmode = \"decade\"\n", config.ErrCodeInvalidMode},
		{"digits", "[rename]\nsubsecond_digits = 7\n", config.ErrCodeInvalid},
		{"rule", "[recover]\nmatch_rules = [\"exact\", \"fuzzy\"]\n", config.ErrCodeInvalid},
		{"pattern", "[[rename.patterns]]\nname = \"y\"\nregexp = '(?P<year>\\d{4})'\n", config.ErrCodeInvalid},
		{"unknown key", "colour = true\n", config.ErrCodeInvalid},
		{"level", "[logging]\nlevel = \"loud\"\n", config.ErrCodeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := config.Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := config.Code(err); got != tt.code {
				t.Fatalf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if config.Code(err) != config.ErrCodeInvalid {
		t.Fatalf("err = %v", err)
	}
}

func TestRequireTarget(t *testing.T) {
	cfg := config.Default()
	if config.Code(cfg.RequireTarget()) != config.ErrCodeMissingTarget {
		t.Fatal("expected missing_target")
	}

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.TargetDir = file
	if config.Code(cfg.RequireTarget()) != config.ErrCodeTargetNotDir {
		t.Fatal("expected target_not_dir for a file")
	}

	cfg.TargetDir = filepath.Join(t.TempDir(), "missing")
	if config.Code(cfg.RequireTarget()) != config.ErrCodeTargetNotDir {
		t.Fatal("expected target_not_dir for a missing path")
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	def := config.Default()
	if cfg.Organize.Mode != def.Organize.Mode || cfg.Rename.SubsecondDigits != def.Rename.SubsecondDigits {
		t.Fatalf("sample drifted from defaults: %+v", cfg)
	}
	if len(cfg.Extensions) != len(def.Extensions) || len(cfg.Cleanup.Placeholders) != len(def.Cleanup.Placeholders) {
		t.Fatalf("sample lists drifted from defaults")
	}
}
