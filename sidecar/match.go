package sidecar

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Index holds every known sidecar by pairing key, per directory and for
// the whole tree. A second set of maps keys the same sidecars by title
// stem, so "IMG_0001.heic.json" is also found as "img_0001".
type Index struct {
	byDir  map[string]map[Key][]string
	all    map[Key][]string
	stemBy map[string]map[Key][]string
	stems  map[Key][]string
	n      int
}

func NewIndex() *Index {
	return &Index{
		byDir:  make(map[string]map[Key][]string),
		all:    make(map[Key][]string),
		stemBy: make(map[string]map[Key][]string),
		stems:  make(map[Key][]string),
	}
}

// Add indexes the sidecar at path. It reports false for names that are not
// sidecars.
func (ix *Index) Add(path string) bool {
	key, ok := KeyOf(filepath.Base(path))
	if !ok {
		return false
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if ix.byDir[dir] == nil {
		ix.byDir[dir] = make(map[Key][]string)
	}
	if contains(ix.all[key], path) {
		return true
	}
	ix.byDir[dir][key] = append(ix.byDir[dir][key], path)
	ix.all[key] = append(ix.all[key], path)
	ix.n++

	if ext := filepath.Ext(key.Title); ext != "" && len(ext) < len(key.Title) {
		stem := Key{Title: strings.TrimSuffix(key.Title, ext), Counter: key.Counter}
		if ix.stemBy[dir] == nil {
			ix.stemBy[dir] = make(map[Key][]string)
		}
		ix.stemBy[dir][stem] = append(ix.stemBy[dir][stem], path)
		ix.stems[stem] = append(ix.stems[stem], path)
	}
	return true
}

func (ix *Index) Len() int { return ix.n }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Match is a successful pairing.
type Match struct {
	Path string
	Rule string
}

// AmbiguousError lists the sidecars a media file could equally belong to.
type AmbiguousError struct {
	Media      string
	Rule       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s: rule %s matches %s", e.Media, e.Rule, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguous }

type Matcher struct {
	index *Index
	rules []Rule
}

func NewMatcher(index *Index, rules []Rule) *Matcher {
	return &Matcher{index: index, rules: rules}
}

// Find pairs mediaPath with a sidecar. Every rule is tried against the
// media file's own directory before any rule is tried tree-wide. Within a
// rule the first candidate with a hit decides; a hit naming more than one
// sidecar is an *AmbiguousError.
func (m *Matcher) Find(mediaPath string) (Match, error) {
	mediaPath = filepath.Clean(mediaPath)
	name := ParseName(mediaPath)

	dir := filepath.Dir(mediaPath)
	scopes := []struct{ titles, stems map[Key][]string }{
		{m.index.byDir[dir], m.index.stemBy[dir]},
		{m.index.all, m.index.stems},
	}
	for _, scope := range scopes {
		if len(scope.titles) == 0 {
			continue
		}
		for _, rule := range m.rules {
			for _, c := range rule.Candidates(name) {
				lookup := scope.titles
				if c.Stem {
					lookup = scope.stems
				}
				paths := lookup[Key{Title: Normalize(c.Title), Counter: c.Counter}]
				switch len(paths) {
				case 0:
					continue
				case 1:
					return Match{Path: paths[0], Rule: rule.Name}, nil
				default:
					sorted := append([]string(nil), paths...)
					sort.Strings(sorted)
					return Match{}, &AmbiguousError{Media: mediaPath, Rule: rule.Name, Candidates: sorted}
				}
			}
		}
	}
	return Match{}, ErrNoMatch
}
