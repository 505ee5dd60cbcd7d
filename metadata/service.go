package metadata

import (
	"errors"

	"github.com/levmv/takeoutsort/exifdate"
)

// Service is the production Tagger.
type Service struct {
	tool *ExifTool
	// native is swapped out in tests.
	native func(path string) (exifdate.Dates, error)
}

// NewService builds a Service around tool. A nil tool gives a read-only
// native service whose writes fail.
func NewService(tool *ExifTool) *Service {
	return &Service{tool: tool, native: exifdate.ReadFile}
}

// Close shuts down the exiftool process, if any.
func (s *Service) Close() error {
	if s.tool == nil {
		return nil
	}
	return s.tool.Close()
}

// ReadTags tries the native parser first and falls back to exiftool only
// when the container is not understood natively. A file the native parser
// understands but that carries no dates is not handed to exiftool.
func (s *Service) ReadTags(path string) (Tags, error) {
	// 1. Native (fast, no process)
	d, err := s.native(path)
	if err == nil {
		return fromDates(d), nil
	}

	// 2. ExifTool for everything else (GIF, AVI, HEIC without an Exif item, corrupt EXIF...)
	if !errors.Is(err, exifdate.ErrUnsupported) || s.tool == nil {
		return Tags{}, err
	}
	tags, toolErr := s.tool.ReadTags(path)
	if toolErr != nil {
		return Tags{}, toolErr
	}
	if tags.MIMEType == "" {
		tags.MIMEType = d.Format.MIME()
	}
	return tags, nil
}

func (s *Service) WriteTags(path string, tags Tags) error {
	if s.tool == nil {
		return errors.New("metadata writes need exiftool")
	}
	return s.tool.WriteTags(path, tags)
}
