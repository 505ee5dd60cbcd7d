package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/levmv/takeoutsort/config"
)

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"\n", true, true},
		{"\n", false, false},
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"maybe\nno\n", true, false},
		{"", true, true}, // end of input
	}
	for _, tc := range tests {
		var out bytes.Buffer
		p := newPrompter(strings.NewReader(tc.input), &out, false)
		got, err := p.YesNo("Continue?", tc.def)
		if err != nil {
			t.Fatalf("%q: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("YesNo(%q, %v) = %v", tc.input, tc.def, got)
		}
	}
}

func TestPromptRepeatsOnBadAnswer(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("maybe\ny\n"), &out, false)
	if ok, _ := p.YesNo("Continue?", false); !ok {
		t.Fatal("want yes")
	}
	if !strings.Contains(out.String(), "Please answer y or n.") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestPromptAssumeYesTakesDefaults(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("n\n/elsewhere\n2\n"), &out, true)

	if ok, _ := p.YesNo("Continue?", true); !ok {
		t.Error("YesNo ignored default")
	}
	if path, _ := p.Path("Folder", "/data/takeout"); path != "/data/takeout" {
		t.Errorf("Path = %q", path)
	}
	if mode, _ := p.Mode(config.ModeYear); mode != config.ModeYear {
		t.Errorf("Mode = %q", mode)
	}
}

func TestPromptPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var out bytes.Buffer
	p := newPrompter(strings.NewReader("\n~/Pictures/takeout\n"), &out, false)

	got, err := p.Path("Folder", "/data")
	if err != nil || got != "/data" {
		t.Fatalf("empty answer: %q, %v", got, err)
	}
	got, err = p.Path("Folder", "/data")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "Pictures", "takeout"); got != want {
		t.Fatalf("Path = %q, want %q", got, want)
	}
}

func TestPromptMode(t *testing.T) {
	for input, want := range map[string]string{
		"\n":       config.ModeMonth,
		"1\n":      config.ModeYear,
		"2\n":      config.ModeMonth,
		"year\n":   config.ModeYear,
		"x\n1\n":   config.ModeYear,
		"month\n":  config.ModeMonth,
		"\n\n\n\n": config.ModeMonth,
	} {
		var out bytes.Buffer
		p := newPrompter(strings.NewReader(input), &out, false)
		got, err := p.Mode(config.ModeMonth)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Mode(%q) = %q, want %q", input, got, want)
		}
	}
}
