package metadata

import (
	"errors"
	"testing"
	"time"

	"github.com/levmv/takeoutsort/exifdate"
)

func TestDatesAt(t *testing.T) {
	tags := DatesAt(time.Unix(1609459200, 0))
	for name, got := range map[string]string{
		"CreateDate":       tags.CreateDate,
		"DateTimeOriginal": tags.DateTimeOriginal,
		"ModifyDate":       tags.ModifyDate,
	} {
		if got != "2021:01:01 00:00:00" {
			t.Errorf("%s = %q", name, got)
		}
	}
}

func TestCaptured(t *testing.T) {
	tests := []struct {
		name string
		tags Tags
		want string
		ok   bool
	}{
		{"create date wins", Tags{CreateDate: "2020:05:06 12:34:56", DateTimeOriginal: "2019:01:01 00:00:00"}, "2020-05-06 12:34:56", true},
		{"original when create is zero", Tags{CreateDate: "0000:00:00 00:00:00", DateTimeOriginal: "2019:01:01 10:00:00"}, "2019-01-01 10:00:00", true},
		{"modify date alone is not a capture", Tags{ModifyDate: "2019:01:01 10:00:00"}, "", false},
		{"garbage", Tags{CreateDate: "not a date at all"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.tags.Captured()
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got.Format("2006-01-02 15:04:05") != tt.want {
				t.Fatalf("Captured = %s, want %s", got.Format("2006-01-02 15:04:05"), tt.want)
			}
		})
	}
}

func TestSubSeconds(t *testing.T) {
	if got := (Tags{SubSecTimeOriginal: "045", SubSecTime: "9"}).SubSeconds(); got != "045" {
		t.Errorf("SubSeconds = %q, want 045", got)
	}
	if got := (Tags{SubSecTime: " 7 "}).SubSeconds(); got != "7" {
		t.Errorf("SubSeconds = %q, want 7", got)
	}
	if got := (Tags{SubSecTimeOriginal: "abc"}).SubSeconds(); got != "" {
		t.Errorf("SubSeconds = %q, want empty", got)
	}
}

func TestServiceReadTagsNative(t *testing.T) {
	s := &Service{native: func(string) (exifdate.Dates, error) {
		return exifdate.Dates{Format: exifdate.FormatJPEG, CreateDate: "2021:01:01 00:00:00"}, nil
	}}
	tags, err := s.ReadTags("x.jpg")
	if err != nil {
		t.Fatalf("ReadTags: %v", err)
	}
	if tags.CreateDate != "2021:01:01 00:00:00" || tags.MIMEType != "image/jpeg" {
		t.Fatalf("tags = %+v", tags)
	}
}

func TestServiceReadTagsUnsupportedWithoutTool(t *testing.T) {
	s := &Service{native: func(string) (exifdate.Dates, error) {
		return exifdate.Dates{Format: exifdate.FormatHEIC}, exifdate.ErrUnsupported
	}}
	if _, err := s.ReadTags("x.heic"); !errors.Is(err, exifdate.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if err := s.WriteTags("x.heic", DatesAt(time.Now())); err == nil {
		t.Fatal("expected write without exiftool to fail")
	}
}

func TestFieldString(t *testing.T) {
	fields := map[string]interface{}{
		"a": "2021:01:01 00:00:00",
		"b": float64(45),
		"c": nil,
	}
	if got := fieldString(fields, "a"); got != "2021:01:01 00:00:00" {
		t.Errorf("a = %q", got)
	}
	if got := fieldString(fields, "b"); got != "45" {
		t.Errorf("b = %q", got)
	}
	if got := fieldString(fields, "c"); got != "" {
		t.Errorf("c = %q", got)
	}
	if got := fieldString(fields, "missing"); got != "" {
		t.Errorf("missing = %q", got)
	}
}
