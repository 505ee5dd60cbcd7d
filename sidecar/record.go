// Package sidecar parses Takeout JSON sidecars and pairs them with the
// media files they describe.
package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoMatch      = errors.New("no sidecar found")
	ErrAmbiguous    = errors.New("ambiguous sidecar match")
	ErrNoTimestamp  = errors.New("sidecar has no timestamp")
	ErrBadTimestamp = errors.New("sidecar timestamp is not epoch seconds")
)

// Stamp is one of the {"timestamp": "...", "formatted": "..."} objects.
type Stamp struct {
	Timestamp epoch  `json:"timestamp"`
	Formatted string `json:"formatted"`
}

// epoch accepts both "1609459200" and 1609459200.
type epoch string

func (e *epoch) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = epoch(s)
		return nil
	}
	if string(b) == "null" {
		*e = ""
		return nil
	}
	*e = epoch(b)
	return nil
}

// Time returns the stamp as UTC. An empty or zero stamp reports ok=false.
func (s *Stamp) Time() (t time.Time, ok bool, err error) {
	if s == nil {
		return time.Time{}, false, nil
	}
	v := strings.TrimSpace(string(s.Timestamp))
	if v == "" || strings.Trim(v, "0") == "" {
		return time.Time{}, false, nil
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return time.Time{}, false, fmt.Errorf("%w: %q", ErrBadTimestamp, v)
		}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %q", ErrBadTimestamp, v)
	}
	return time.Unix(n, 0).UTC(), true, nil
}

// Record is the part of a sidecar the pipeline reads.
type Record struct {
	Title                 string `json:"title"`
	PhotoTakenTime        *Stamp `json:"photoTakenTime"`
	CreationTime          *Stamp `json:"creationTime"`
	PhotoLastModifiedTime *Stamp `json:"photoLastModifiedTime"`
}

func Parse(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode sidecar: %w", err)
	}
	return r, nil
}

func ReadFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	return Parse(data)
}

// Taken returns photoTakenTime, falling back to creationTime.
func (r Record) Taken() (time.Time, error) {
	for _, s := range []*Stamp{r.PhotoTakenTime, r.CreationTime} {
		t, ok, err := s.Time()
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			return t, nil
		}
	}
	return time.Time{}, ErrNoTimestamp
}
