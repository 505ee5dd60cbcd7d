package sidecar

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKeyOf(t *testing.T) {
	tests := []struct {
		name string
		want Key
		ok   bool
	}{
		{"IMG_0001.jpg.json", Key{"img_0001.jpg", 0}, true},
		{"IMG_0001.jpg(1).json", Key{"img_0001.jpg", 1}, true},
		{"IMG_0001(2).jpg.json", Key{"img_0001.jpg", 2}, true},
		{"IMG_0001.jpg.supplemental-metadata.json", Key{"img_0001.jpg", 0}, true},
		{"IMG_0001.jpg.supplemental-met(3).json", Key{"img_0001.jpg", 3}, true},
		{"IMG_0001.jpg.s.json", Key{"img_0001.jpg", 0}, true},
		{"IMG_0001.jpg..json", Key{"img_0001.jpg", 0}, true},
		{"metadata.json", Key{"metadata", 0}, true},
		{"IMG_0001.jpg", Key{}, false},
		{".json", Key{}, false},
	}
	for _, tt := range tests {
		got, ok := KeyOf(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("KeyOf(%q) = %+v, %v; want %+v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeComposesUnicode(t *testing.T) {
	decomposed := "Cafe\u0301.jpg"
	composed := "caf\u00e9.jpg"
	if Normalize(decomposed) != Normalize(composed) {
		t.Fatalf("%q and %q should normalize equal", decomposed, composed)
	}
}

func TestParseName(t *testing.T) {
	n := ParseName("/a/b/IMG_0003(1).JPG")
	if n.Raw != "IMG_0003(1)" || n.Stem != "IMG_0003" || n.Counter != 1 || n.Ext != ".JPG" {
		t.Fatalf("ParseName = %+v", n)
	}
}

func newMatcher(t *testing.T, sidecars ...string) *Matcher {
	t.Helper()
	ix := NewIndex()
	for _, s := range sidecars {
		if !ix.Add(s) {
			t.Fatalf("Add(%q) rejected", s)
		}
	}
	rules, err := Rules(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewMatcher(ix, rules)
}

func TestFind(t *testing.T) {
	dir := filepath.FromSlash("/t/album")
	p := func(name string) string { return filepath.Join(dir, name) }
	long := "A very long file name that Google truncated here.jpg"
	longSidecar := string([]rune(long)[:TitleLimit]) + ".json"
	// 45 characters: the supplemental suffix is cut to a bare dot
	cut := strings.Repeat("a", 41) + ".jpg"

	m := newMatcher(t,
		p("IMG_0001.jpg.json"),
		p("IMG_0002.jpg.json"),
		p("IMG_0003.jpg.json"),
		p("IMG_0003.jpg(1).json"),
		p("IMG_0004.jpg.json"),
		p("clip-an.gif.json"),
		p(longSidecar),
		p("PXL_20210101.jpg.supplemental-metadata.json"),
		p(cut+"..json"),
		p("IMG_0005.HEIC.json"),
		p("IMG_0006.HEIC(1).json"),
	)

	tests := []struct {
		media string
		want  string
		rule  string
	}{
		{"IMG_0001.jpg", "IMG_0001.jpg.json", "exact"},
		{"img_0001.JPG", "IMG_0001.jpg.json", "exact"},
		{"IMG_0002-edited.jpg", "IMG_0002.jpg.json", "edited"},
		{"IMG_0003(1).jpg", "IMG_0003.jpg(1).json", "exact"},
		{"IMG_0003.jpg", "IMG_0003.jpg.json", "exact"},
		{"IMG_0004(1).jpg", "IMG_0004.jpg.json", "counter"},
		{"clip-ani.gif", "clip-an.gif.json", "gif-ani"},
		{long, longSidecar, "truncated"},
		{"PXL_20210101.jpg", "PXL_20210101.jpg.supplemental-metadata.json", "exact"},
		{cut, cut + "..json", "exact"},
		{"IMG_0005.HEIC", "IMG_0005.HEIC.json", "exact"},
		{"IMG_0005.MP4", "IMG_0005.HEIC.json", "stem"},
		{"IMG_0006(1).MP4", "IMG_0006.HEIC(1).json", "stem"},
	}
	for _, tt := range tests {
		t.Run(tt.media, func(t *testing.T) {
			got, err := m.Find(p(tt.media))
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if got.Path != p(tt.want) || got.Rule != tt.rule {
				t.Fatalf("Find = %+v, want %s via %s", got, tt.want, tt.rule)
			}
		})
	}
}

func TestFindNoMatch(t *testing.T) {
	m := newMatcher(t, filepath.FromSlash("/t/IMG_0001.jpg.json"))
	if _, err := m.Find(filepath.FromSlash("/t/randomname.mov")); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestFindPrefersSameDirectory(t *testing.T) {
	m := newMatcher(t,
		filepath.FromSlash("/t/a/IMG_0001.jpg.json"),
		filepath.FromSlash("/t/b/IMG_0001.jpg.json"),
	)
	got, err := m.Find(filepath.FromSlash("/t/b/IMG_0001.jpg"))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Path != filepath.FromSlash("/t/b/IMG_0001.jpg.json") {
		t.Fatalf("Find = %s", got.Path)
	}
}

func TestFindAmbiguousAcrossTree(t *testing.T) {
	m := newMatcher(t,
		filepath.FromSlash("/t/a/IMG_0001.jpg.json"),
		filepath.FromSlash("/t/b/IMG_0001.jpg.json"),
	)
	_, err := m.Find(filepath.FromSlash("/t/c/IMG_0001.jpg"))
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("err = %v, want ErrAmbiguous", err)
	}
	var amb *AmbiguousError
	if !errors.As(err, &amb) || len(amb.Candidates) != 2 {
		t.Fatalf("err = %#v", err)
	}
}

func TestFindTreeWideFallback(t *testing.T) {
	m := newMatcher(t, filepath.FromSlash("/t/json/IMG_0009.jpg.json"))
	got, err := m.Find(filepath.FromSlash("/t/photos/IMG_0009.jpg"))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.Path != filepath.FromSlash("/t/json/IMG_0009.jpg.json") {
		t.Fatalf("Find = %s", got.Path)
	}
}

func TestFindStemAmbiguous(t *testing.T) {
	m := newMatcher(t,
		filepath.FromSlash("/t/IMG_0007.HEIC.json"),
		filepath.FromSlash("/t/IMG_0007.JPG.json"),
	)
	_, err := m.Find(filepath.FromSlash("/t/IMG_0007.MP4"))
	var amb *AmbiguousError
	if !errors.As(err, &amb) || amb.Rule != "stem" {
		t.Fatalf("err = %v, want ambiguous stem match", err)
	}
}

func TestRulesUnknown(t *testing.T) {
	if _, err := Rules([]string{"exact", "fuzzy"}, nil); err == nil {
		t.Fatal("expected error for unknown rule")
	}
}

func TestRulesRespectConfiguredOrder(t *testing.T) {
	rules, err := Rules([]string{"exact"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ix := NewIndex()
	ix.Add(filepath.FromSlash("/t/IMG_0002.jpg.json"))
	m := NewMatcher(ix, rules)
	if _, err := m.Find(filepath.FromSlash("/t/IMG_0002-edited.jpg")); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch without the edited rule", err)
	}
}

func TestRecordTaken(t *testing.T) {
	tests := []struct {
		name string
		json string
		want time.Time
		err  error
	}{
		{"photo taken string", `{"photoTakenTime":{"timestamp":"1609459200"},"creationTime":{"timestamp":"1"}}`, time.Unix(1609459200, 0).UTC(), nil},
		{"photo taken number", `{"photoTakenTime":{"timestamp":1609459200}}`, time.Unix(1609459200, 0).UTC(), nil},
		{"creation fallback", `{"photoTakenTime":{"timestamp":"0"},"creationTime":{"timestamp":"1609459200"}}`, time.Unix(1609459200, 0).UTC(), nil},
		{"none", `{"title":"album"}`, time.Time{}, ErrNoTimestamp},
		{"garbage", `{"photoTakenTime":{"timestamp":"yesterday"}}`, time.Time{}, ErrBadTimestamp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse([]byte(tt.json))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			got, err := r.Taken()
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Taken: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("Taken = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
