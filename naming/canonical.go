// Package naming owns the canonical "YYYY-MM-DD_HH-MM-SS[-ss]" file name
// used between the rename and organize stages, the rules that infer a
// date from other file names, and collision-free path allocation.
package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Layout is the canonical base name without sub-seconds.
const Layout = "2006-01-02_15-04-05"

// MaxSubsecondDigits bounds the sub-second suffix.
const MaxSubsecondDigits = 3

var canonicalRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})_(\d{2})-(\d{2})-(\d{2})(?:-(\d{1,9}))?(?:\((\d+)\))?$`)

// Base renders t as a canonical base name. subsec is cut to digits and
// right-padded with zeros; an empty subsec or zero digits adds nothing.
func Base(t time.Time, subsec string, digits int) string {
	base := t.Format(Layout)
	if subsec == "" || digits <= 0 {
		return base
	}
	if digits > MaxSubsecondDigits {
		digits = MaxSubsecondDigits
	}
	if len(subsec) > digits {
		subsec = subsec[:digits]
	}
	return base + "-" + subsec + strings.Repeat("0", digits-len(subsec))
}

// Canonical is a parsed canonical name.
type Canonical struct {
	Time    time.Time
	SubSec  string
	Counter int
}

// ParseCanonical parses a canonical file name, with or without extension.
func ParseCanonical(name string) (Canonical, bool) {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	m := canonicalRe.FindStringSubmatch(stem)
	if m == nil {
		return Canonical{}, false
	}
	t, ok := dateOf(m[1], m[2], m[3], m[4], m[5], m[6])
	if !ok {
		return Canonical{}, false
	}
	c := Canonical{Time: t, SubSec: m[7]}
	if m[8] != "" {
		c.Counter, _ = strconv.Atoi(m[8])
	}
	return c, true
}

// Base is the canonical base name without the "(n)" counter, sub-seconds
// kept as parsed.
func (c Canonical) Base() string {
	if c.SubSec == "" {
		return c.Time.Format(Layout)
	}
	return c.Time.Format(Layout) + "-" + c.SubSec
}

func IsCanonical(name string) bool {
	_, ok := ParseCanonical(name)
	return ok
}

// HasBase reports whether name is base+ext or one of its "(n)" variants.
func HasBase(name, base string) bool {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if stem == base {
		return true
	}
	rest, ok := strings.CutPrefix(stem, base+"(")
	if !ok || !strings.HasSuffix(rest, ")") {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(rest, ")"))
	return err == nil && n > 0
}

// MonthDir is the directory name for m: "january", "february", ...
func MonthDir(m time.Month) string {
	return cases.Lower(language.English).String(m.String())
}

// dateOf range-checks the parts; time.Date would silently normalise
// "2021-02-30" into March.
func dateOf(year, month, day, hour, minute, second string) (time.Time, bool) {
	n := func(s string) int {
		if s == "" {
			return 0
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return -1
		}
		return v
	}
	y, mo, d, h, mi, s := n(year), n(month), n(day), n(hour), n(minute), n(second)
	if y < 1900 || y > 2099 || mo < 1 || mo > 12 || d < 1 || h < 0 || h > 23 || mi < 0 || mi > 59 || s < 0 || s > 59 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, h, mi, s, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo {
		return time.Time{}, false
	}
	return t, true
}
