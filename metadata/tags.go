// Package metadata reads and writes the date tags the pipeline cares about.
//
// Stages depend only on the narrow Reader/Writer/Tagger interfaces so they
// can run against a fake in tests. Service is the production Tagger: it
// reads natively where exifdate understands the container and defers to
// exiftool for everything else, and it always writes through exiftool.
package metadata

import (
	"strings"
	"time"

	"github.com/levmv/takeoutsort/exifdate"
)

// Tags is the subset of metadata tags read and written by the pipeline.
// Date values use the EXIF layout "2006:01:02 15:04:05".
type Tags struct {
	CreateDate         string
	DateTimeOriginal   string
	ModifyDate         string
	SubSecTimeOriginal string
	SubSecTime         string
	MIMEType           string
}

type Reader interface {
	ReadTags(path string) (Tags, error)
}

type Writer interface {
	WriteTags(path string, tags Tags) error
}

type Tagger interface {
	Reader
	Writer
}

// DatesAt returns Tags with CreateDate, DateTimeOriginal and ModifyDate all
// set to t rendered in UTC.
func DatesAt(t time.Time) Tags {
	s := t.UTC().Format(exifdate.Layout)
	return Tags{CreateDate: s, DateTimeOriginal: s, ModifyDate: s}
}

// Captured returns the first usable capture time: CreateDate, then
// DateTimeOriginal. Zeroed or malformed values count as absent.
func (t Tags) Captured() (time.Time, bool) {
	for _, v := range []string{t.CreateDate, t.DateTimeOriginal} {
		if v == "" {
			continue
		}
		if ts, err := exifdate.ParseTime(v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// SubSeconds returns the digits of SubSecTimeOriginal, else SubSecTime.
func (t Tags) SubSeconds() string {
	for _, v := range []string{t.SubSecTimeOriginal, t.SubSecTime} {
		if d := digits(v); d != "" {
			return d
		}
	}
	return ""
}

func digits(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func fromDates(d exifdate.Dates) Tags {
	return Tags{
		CreateDate:         d.CreateDate,
		DateTimeOriginal:   d.DateTimeOriginal,
		ModifyDate:         d.ModifyDate,
		SubSecTimeOriginal: d.SubSecTimeOriginal,
		SubSecTime:         d.SubSecTime,
		MIMEType:           d.Format.MIME(),
	}
}
