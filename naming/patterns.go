package naming

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var ErrNoMatch = errors.New("no filename pattern matched")

// Pattern infers a capture time from a file name stem. Expr must define
// the named groups year, month and day and may define hour, minute,
// second and subsec.
type Pattern struct {
	Name string
	Expr *regexp.Regexp
}

// Compile builds a Pattern from a user-supplied expression.
func Compile(name, expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %s: %w", name, err)
	}
	for _, g := range []string{"year", "month", "day"} {
		if re.SubexpIndex(g) < 0 {
			return Pattern{}, fmt.Errorf("pattern %s: missing named group %q", name, g)
		}
	}
	return Pattern{Name: name, Expr: re}, nil
}

const (
	ymd    = `(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})`
	hms    = `(?P<hour>\d{2})(?P<minute>\d{2})(?P<second>\d{2})`
	prefix = `(?i:IMG|VID|PXL|MVIMG|PANO|BURST|DSC|MOV|MVI|PHOTO|VIDEO)`
)

// DefaultPatterns are tried in order after any user patterns.
var DefaultPatterns = []Pattern{
	{"canonical", regexp.MustCompile(`^(?P<year>\d{4})-(?P<month>\d{2})-(?P<day>\d{2})_(?P<hour>\d{2})-(?P<minute>\d{2})-(?P<second>\d{2})(?:-(?P<subsec>\d{1,9}))?`)},
	{"leading-date", regexp.MustCompile(`^(?P<year>\d{4})[-._]?(?P<month>\d{2})[-._]?(?P<day>\d{2})(?:[_-]?` + hms + `)?`)},
	{"camera-prefix", regexp.MustCompile(`^` + prefix + `[_-]` + ymd + `[_-]` + hms + `(?P<subsec>\d{1,3})?`)},
	{"messenger", regexp.MustCompile(`^(?i:IMG|VID|AUD)-` + ymd + `-(?i:WA)\d+`)},
	{"screenshot", regexp.MustCompile(`^(?i:Screenshot|Screen Shot)[ _-](?P<year>\d{4})-(?P<month>\d{2})-(?P<day>\d{2})(?:[ _-](?:at )?(?P<hour>\d{2})[-.](?P<minute>\d{2})[-.](?P<second>\d{2}))?`)},
	{"compact-datetime", regexp.MustCompile(`(?:^|\D)` + ymd + `[_-]` + hms + `(?:\D|$)`)},
	{"iso-date", regexp.MustCompile(`(?:^|\D)(?P<year>\d{4})-(?P<month>\d{2})-(?P<day>\d{2})(?:\D|$)`)},
}

// Inference is a capture time read from a file name.
type Inference struct {
	Time    time.Time
	SubSec  string
	Pattern string
}

type Inferrer struct {
	patterns []Pattern
}

// NewInferrer tries user patterns first, then DefaultPatterns.
func NewInferrer(user ...Pattern) *Inferrer {
	ps := make([]Pattern, 0, len(user)+len(DefaultPatterns))
	ps = append(ps, user...)
	ps = append(ps, DefaultPatterns...)
	return &Inferrer{patterns: ps}
}

// Infer returns the first pattern match whose parts form a real date.
func (in *Inferrer) Infer(stem string) (Inference, error) {
	for _, p := range in.patterns {
		m := p.Expr.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		group := func(name string) string {
			if i := p.Expr.SubexpIndex(name); i >= 0 && i < len(m) {
				return m[i]
			}
			return ""
		}
		t, ok := dateOf(group("year"), group("month"), group("day"), group("hour"), group("minute"), group("second"))
		if !ok {
			continue
		}
		return Inference{Time: t, SubSec: group("subsec"), Pattern: p.Name}, nil
	}
	return Inference{}, fmt.Errorf("%w: %s", ErrNoMatch, stem)
}
