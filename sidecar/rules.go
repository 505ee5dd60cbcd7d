package sidecar

import (
	"fmt"
	"strings"
)

// TitleLimit is the length Takeout truncates sidecar titles to.
const TitleLimit = 46

// Candidate is one sidecar key a rule is willing to accept for a media name.
// A Stem candidate matches sidecar titles by their name without extension.
type Candidate struct {
	Title   string
	Counter int
	Stem    bool
}

// Rule proposes sidecar keys for a media file name, best first.
type Rule struct {
	Name       string
	Candidates func(Name) []Candidate
}

// DefaultRuleNames is the order rules are tried in when none are configured.
var DefaultRuleNames = []string{"exact", "counter", "edited", "gif-ani", "truncated", "stem"}

// DefaultEditedSuffixes are the media-name suffixes the "edited" rule strips.
var DefaultEditedSuffixes = []string{"-edited"}

// Rules builds the named rules in the given order. An empty names list
// means DefaultRuleNames.
func Rules(names, editedSuffixes []string) ([]Rule, error) {
	if len(names) == 0 {
		names = DefaultRuleNames
	}
	if len(editedSuffixes) == 0 {
		editedSuffixes = DefaultEditedSuffixes
	}

	rules := make([]Rule, 0, len(names))
	for _, n := range names {
		var fn func(Name) []Candidate
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "exact":
			fn = exact
		case "counter":
			fn = counter
		case "edited":
			fn = edited(editedSuffixes)
		case "gif-ani":
			fn = gifAni
		case "truncated":
			fn = truncated
		case "stem":
			fn = stem
		default:
			return nil, fmt.Errorf("unknown match rule %q", n)
		}
		rules = append(rules, Rule{Name: strings.ToLower(strings.TrimSpace(n)), Candidates: fn})
	}
	return rules, nil
}

func withTitles(base string, ext string, counter int) []Candidate {
	return []Candidate{
		{Title: base + ext, Counter: counter},
		{Title: base, Counter: counter},
	}
}

func exact(n Name) []Candidate {
	c := withTitles(n.Raw, n.Ext, 0)
	if n.Counter > 0 {
		c = append(c, withTitles(n.Stem, n.Ext, n.Counter)...)
	}
	return c
}

// counter lets "IMG(1).jpg" borrow the sidecar of "IMG.jpg" when Takeout
// did not write a numbered one.
func counter(n Name) []Candidate {
	if n.Counter == 0 {
		return nil
	}
	return withTitles(n.Stem, n.Ext, 0)
}

func edited(suffixes []string) func(Name) []Candidate {
	return func(n Name) []Candidate {
		var c []Candidate
		for _, s := range suffixes {
			base, ok := trimSuffixFold(n.Stem, s)
			if !ok || base == "" {
				continue
			}
			c = append(c, withTitles(base, n.Ext, n.Counter)...)
			if n.Counter > 0 {
				c = append(c, withTitles(base, n.Ext, 0)...)
			}
		}
		return c
	}
}

// gifAni pairs "clip-ani.gif" with a sidecar written for "clip-an.gif" and
// the other way round.
func gifAni(n Name) []Candidate {
	if !strings.EqualFold(n.Ext, ".gif") {
		return nil
	}
	if base, ok := trimSuffixFold(n.Stem, "-ani"); ok {
		return withTitles(base+"-an", n.Ext, n.Counter)
	}
	if _, ok := trimSuffixFold(n.Stem, "-an"); ok {
		return withTitles(n.Stem+"i", n.Ext, n.Counter)
	}
	return nil
}

func truncated(n Name) []Candidate {
	var c []Candidate
	if t, ok := truncate(n.Raw+n.Ext, TitleLimit); ok {
		c = append(c, Candidate{Title: t})
	}
	if n.Counter > 0 {
		if t, ok := truncate(n.Stem+n.Ext, TitleLimit); ok {
			c = append(c, Candidate{Title: t, Counter: n.Counter})
		}
	}
	return c
}

// stem pairs a file with a sidecar written for a sibling of the same name
// and another extension: the video half of a live photo only ever shares
// the still's "IMG_0001.HEIC.json".
func stem(n Name) []Candidate {
	c := []Candidate{{Title: n.Raw, Stem: true}}
	if n.Counter > 0 {
		c = append(c, Candidate{Title: n.Stem, Counter: n.Counter, Stem: true})
	}
	return c
}

func truncate(s string, limit int) (string, bool) {
	r := []rune(s)
	if len(r) <= limit {
		return s, false
	}
	return string(r[:limit]), true
}

func trimSuffixFold(s, suffix string) (string, bool) {
	if len(s) < len(suffix) || !strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s, false
	}
	return s[:len(s)-len(suffix)], true
}
