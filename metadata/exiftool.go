package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/barasher/go-exiftool"
)

// Tag names as exiftool reports and accepts them. Writes use unprefixed
// names so exiftool picks the preferred group (EXIF for stills, QuickTime
// for movies).
const (
	tagCreateDate         = "CreateDate"
	tagDateTimeOriginal   = "DateTimeOriginal"
	tagModifyDate         = "ModifyDate"
	tagSubSecTimeOriginal = "SubSecTimeOriginal"
	tagSubSecTime         = "SubSecTime"
	tagMIMEType           = "MIMEType"
)

// ExifTool drives a single persistent exiftool process, started on first use.
type ExifTool struct {
	binary string
	et     *exiftool.Exiftool
	mu     sync.Mutex
}

// NewExifTool returns a lazily started exiftool wrapper. An empty binary
// means "exiftool" from PATH.
func NewExifTool(binary string) *ExifTool {
	return &ExifTool{binary: binary}
}

// Close cleans up the ExifTool process if it was started.
func (s *ExifTool) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.et == nil {
		return nil
	}
	err := s.et.Close()
	s.et = nil
	return err
}

// ensure lazily initializes the ExifTool instance. Callers hold s.mu.
func (s *ExifTool) ensure() (*exiftool.Exiftool, error) {
	if s.et != nil {
		return s.et, nil
	}

	opts := []func(*exiftool.Exiftool) error{
		// -m: writes go through despite minor warnings such as odd maker notes.
		exiftool.Api("IgnoreMinorErrors=1"),
	}
	if s.binary != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(s.binary))
	}
	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("start exiftool: %w", err)
	}
	s.et = et
	return s.et, nil
}

func (s *ExifTool) ReadTags(path string) (Tags, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	et, err := s.ensure()
	if err != nil {
		return Tags{}, err
	}

	fileInfos := et.ExtractMetadata(path)
	if len(fileInfos) == 0 {
		return Tags{}, errors.New("exiftool returned no metadata")
	}
	fi := fileInfos[0]
	if fi.Err != nil {
		return Tags{}, fi.Err
	}

	return Tags{
		CreateDate:         fieldString(fi.Fields, tagCreateDate),
		DateTimeOriginal:   fieldString(fi.Fields, tagDateTimeOriginal),
		ModifyDate:         fieldString(fi.Fields, tagModifyDate),
		SubSecTimeOriginal: fieldString(fi.Fields, tagSubSecTimeOriginal),
		SubSecTime:         fieldString(fi.Fields, tagSubSecTime),
		MIMEType:           fieldString(fi.Fields, tagMIMEType),
	}, nil
}

// WriteTags writes the non-empty date tags of tags into path in place.
// MIMEType is read-only and ignored.
func (s *ExifTool) WriteTags(path string, tags Tags) error {
	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	set := func(key, value string) {
		if value != "" {
			fm.SetString(key, value)
		}
	}
	set(tagCreateDate, tags.CreateDate)
	set(tagDateTimeOriginal, tags.DateTimeOriginal)
	set(tagModifyDate, tags.ModifyDate)
	set(tagSubSecTimeOriginal, tags.SubSecTimeOriginal)
	set(tagSubSecTime, tags.SubSecTime)
	if len(fm.Fields) == 0 {
		return errors.New("no tags to write")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	et, err := s.ensure()
	if err != nil {
		return err
	}

	batch := []exiftool.FileMetadata{fm}
	et.WriteMetadata(batch)
	if batch[0].Err != nil {
		return fmt.Errorf("exiftool write %s: %w", path, batch[0].Err)
	}
	return nil
}

// fieldString converts an exiftool JSON value to its string form. Numeric
// values (SubSecTime often comes back as a number) are formatted without
// exponent.
func fieldString(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
