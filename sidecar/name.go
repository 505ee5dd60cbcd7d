package sidecar

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const supplemental = "supplemental-metadata"

var counterSuffix = regexp.MustCompile(`\((\d+)\)$`)

// Key identifies what a sidecar describes: the media title it was written
// for plus the duplicate counter Takeout appended to the sidecar name.
type Key struct {
	Title   string
	Counter int
}

// Normalize folds case and composes Unicode so names written by different
// platforms compare equal.
func Normalize(s string) string {
	return norm.NFC.String(cases.Fold().String(s))
}

// KeyOf derives the pairing key from a sidecar file name. Accepted shapes:
//
//	IMG_0001.jpg.json
//	IMG_0001.jpg(1).json
//	IMG_0001.jpg.supplemental-metadata.json
//	IMG_0001.jpg.supplemental-met(1).json
//	IMG_0001.jpg..json
func KeyOf(name string) (Key, bool) {
	if !strings.EqualFold(filepath.Ext(name), ".json") {
		return Key{}, false
	}
	base := name[:len(name)-len(".json")]

	base, counter := splitCounter(base)

	if i := strings.LastIndexByte(base, '.'); i > 0 {
		// a suffix cut down to nothing leaves "IMG_0001.jpg..json"
		seg := strings.ToLower(base[i+1:])
		if strings.HasPrefix(supplemental, seg) {
			base = base[:i]
		}
	}

	// "IMG_0001(1).jpg.json" also occurs.
	if counter == 0 {
		ext := filepath.Ext(base)
		stem, n := splitCounter(strings.TrimSuffix(base, ext))
		if n > 0 {
			base, counter = stem+ext, n
		}
	}

	if base == "" {
		return Key{}, false
	}
	return Key{Title: Normalize(base), Counter: counter}, true
}

func splitCounter(s string) (string, int) {
	m := counterSuffix.FindStringSubmatchIndex(s)
	if m == nil {
		return s, 0
	}
	n, err := strconv.Atoi(s[m[2]:m[3]])
	if err != nil || n == 0 {
		return s, 0
	}
	return s[:m[0]], n
}

// Name is a media file name split into the parts pairing rules work on.
type Name struct {
	Raw     string // name without extension, counter included
	Stem    string // Raw without a trailing "(n)"
	Counter int
	Ext     string // with the dot, original case
}

func ParseName(file string) Name {
	file = filepath.Base(file)
	ext := filepath.Ext(file)
	raw := strings.TrimSuffix(file, ext)
	stem, counter := splitCounter(raw)
	return Name{Raw: raw, Stem: stem, Counter: counter, Ext: ext}
}
