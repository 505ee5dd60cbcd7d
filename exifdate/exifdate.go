package exifdate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Layout is the EXIF date-time layout.
const Layout = "2006:01:02 15:04:05"

// ErrNoDate marks an empty or zeroed date value. It is not ErrUnsupported:
// the file was understood, it just carries no date.
var ErrNoDate = errors.New("date not set")

// Dates holds the capture related tags of a file in their EXIF string form.
// CreateDate follows exiftool naming (EXIF DateTimeDigitized, QuickTime
// CreateDate); ModifyDate is EXIF DateTime.
type Dates struct {
	Format             Format
	DateTimeOriginal   string
	CreateDate         string
	ModifyDate         string
	SubSecTimeOriginal string
	SubSecTime         string
}

// ReadFile opens path and reads its embedded dates.
func ReadFile(path string) (Dates, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dates{}, err
	}
	defer f.Close()
	return Read(f)
}

// SniffFile identifies the container of the file at path.
func SniffFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()
	return Sniff(f)
}

// Read extracts embedded dates from JPEG, PNG, HEIC and ISO BMFF movies. Every
// other container yields ErrUnsupported so the caller can hand it to a
// heavier tool.
func Read(r io.ReadSeeker) (Dates, error) {
	format, err := Sniff(r)
	if err != nil {
		return Dates{}, err
	}

	switch {
	case format == FormatJPEG || format == FormatPNG || format == FormatHEIC:
		blob, err := ExtractEXIF(r)
		if err != nil {
			return Dates{Format: format}, fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		if blob == nil {
			return Dates{Format: format}, nil
		}
		d, err := decodeEXIF(blob)
		d.Format = format
		return d, err
	case format.IsMovie():
		d, err := readMovie(r)
		d.Format = format
		return d, err
	default:
		return Dates{Format: format}, ErrUnsupported
	}
}

func decodeEXIF(blob []byte) (Dates, error) {
	x, err := exif.Decode(bytes.NewReader(blob))
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return Dates{}, fmt.Errorf("%w: decode exif: %v", ErrUnsupported, err)
	}

	return Dates{
		DateTimeOriginal:   tagString(x, exif.DateTimeOriginal),
		CreateDate:         tagString(x, exif.DateTimeDigitized),
		ModifyDate:         tagString(x, exif.DateTime),
		SubSecTimeOriginal: tagString(x, exif.SubSecTimeOriginal),
		SubSecTime:         tagString(x, exif.SubSecTime),
	}, nil
}

func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

var layouts = []string{
	"2006:01:02 15:04:05",
	"2006:01:02 15:04:05Z07:00",
	"2006:01:02 15:04:05.999999999",
	"2006:01:02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// ParseTime parses an EXIF style date-time. Values without an offset are
// returned in UTC so that formatting them back preserves the wall clock.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 10 || strings.HasPrefix(s, "0000:00:00") || strings.HasPrefix(s, "    :  :  ") {
		return time.Time{}, ErrNoDate
	}

	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unknown date format '%s'", ErrUnsupported, s)
}
