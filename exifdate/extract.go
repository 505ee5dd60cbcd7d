package exifdate

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var (
	ErrUnsupported = errors.New("unsupported format")
	exifHeader     = []byte{'E', 'x', 'i', 'f', 0x00, 0x00}
)

// Format is a container type recognised from the leading bytes of a file.
type Format int

const (
	FormatUnknown Format = iota
	FormatJPEG
	FormatPNG
	FormatGIF
	FormatWebP
	FormatHEIC
	FormatMP4
	FormatM4V
	Format3GP
	FormatQuickTime
	FormatAVI
	FormatMPEG
)

var mimeTypes = map[Format]string{
	FormatJPEG:      "image/jpeg",
	FormatPNG:       "image/png",
	FormatGIF:       "image/gif",
	FormatWebP:      "image/webp",
	FormatHEIC:      "image/heic",
	FormatMP4:       "video/mp4",
	FormatM4V:       "video/x-m4v",
	Format3GP:       "video/3gpp",
	FormatQuickTime: "video/quicktime",
	FormatAVI:       "video/x-msvideo",
	FormatMPEG:      "video/mpeg",
}

// MIME returns the MIME type for f, or "" when unknown.
func (f Format) MIME() string {
	return mimeTypes[f]
}

// extensions lists the file extensions each format may carry, preferred
// first.
var extensions = map[Format][]string{
	FormatJPEG:      {".jpg", ".jpeg"},
	FormatPNG:       {".png"},
	FormatGIF:       {".gif"},
	FormatWebP:      {".webp"},
	FormatHEIC:      {".heic", ".heif"},
	FormatMP4:       {".mp4", ".m4v"},
	FormatM4V:       {".m4v", ".mp4"},
	Format3GP:       {".3gp", ".3g2"},
	FormatQuickTime: {".mov", ".qt"},
	FormatAVI:       {".avi"},
	FormatMPEG:      {".mpg", ".mpeg"},
}

// Ext returns the preferred extension for f, or "" when unknown.
func (f Format) Ext() string {
	if e := extensions[f]; len(e) > 0 {
		return e[0]
	}
	return ""
}

// Accepts reports whether ext (lower case, with dot) suits f. Unknown
// formats accept anything.
func (f Format) Accepts(ext string) bool {
	list, ok := extensions[f]
	if !ok {
		return true
	}
	for _, e := range list {
		if e == ext {
			return true
		}
	}
	return false
}

// IsMovie reports whether f is an ISO BMFF / QuickTime container.
func (f Format) IsMovie() bool {
	switch f {
	case FormatMP4, FormatM4V, Format3GP, FormatQuickTime:
		return true
	}
	return false
}

// Sniff identifies the container of r and rewinds it.
func Sniff(r io.ReadSeeker) (Format, error) {
	sniff := make([]byte, 12)
	n, err := io.ReadFull(r, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, err
	}
	sniff = sniff[:n]

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return FormatUnknown, err
	}

	switch {
	case bytes.HasPrefix(sniff, []byte{0xFF, 0xD8}):
		return FormatJPEG, nil
	case bytes.HasPrefix(sniff, []byte{0x89, 0x50, 0x4E, 0x47}):
		return FormatPNG, nil
	case bytes.HasPrefix(sniff, []byte("GIF8")):
		return FormatGIF, nil
	case bytes.HasPrefix(sniff, []byte{0x00, 0x00, 0x01, 0xBA}), bytes.HasPrefix(sniff, []byte{0x00, 0x00, 0x01, 0xB3}):
		return FormatMPEG, nil
	}

	if len(sniff) < 12 {
		return FormatUnknown, nil
	}

	if bytes.Equal(sniff[0:4], []byte("RIFF")) {
		switch string(sniff[8:12]) {
		case "WEBP":
			return FormatWebP, nil
		case "AVI ":
			return FormatAVI, nil
		}
		return FormatUnknown, nil
	}

	if !bytes.Equal(sniff[4:8], []byte("ftyp")) {
		return FormatUnknown, nil
	}
	brand := string(sniff[8:12])
	switch {
	case brand == "heic" || brand == "heix" || brand == "mif1" || brand == "msf1" || brand == "hevc":
		return FormatHEIC, nil
	case brand == "qt  ":
		return FormatQuickTime, nil
	case brand == "M4V " || brand == "M4VH" || brand == "M4VP":
		return FormatM4V, nil
	case brand[:3] == "3gp" || brand[:3] == "3g2":
		return Format3GP, nil
	default:
		return FormatMP4, nil
	}
}

// ExtractEXIF returns the raw TIFF-structured EXIF block of a JPEG, PNG
// or HEIC.
// A nil blob with a nil error means the file simply carries no EXIF.
func ExtractEXIF(r io.ReadSeeker) ([]byte, error) {
	format, err := Sniff(r)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJPEG:
		return extractJPEG(r)
	case FormatPNG:
		return extractPNG(r)
	case FormatHEIC:
		return extractHEIC(r)
	default:
		return nil, ErrUnsupported
	}
}

func extractJPEG(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	var sizeBuf [2]byte

	maxScan := 1 << 20 // 1MB scan limit
	scanned := 0

	for scanned < maxScan {
		// 1. Find Start of Marker (0xFF)
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		scanned++

		if b != 0xFF {
			continue
		}

		// 2. Consume Padding
		var marker byte
		for {
			marker, err = br.ReadByte()
			if err != nil {
				return nil, err
			}
			scanned++
			if marker != 0xFF {
				break
			}
		}

		// 3. Handle Markers
		if marker == 0xD8 { // SOI
			continue
		}
		if marker == 0xD9 || marker == 0xDA { // EOI or SOS, no metadata past this point
			return nil, nil
		}
		if marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			continue
		}

		// 4. Read Length
		if _, err := io.ReadFull(br, sizeBuf[:]); err != nil {
			return nil, err
		}
		length := int(binary.BigEndian.Uint16(sizeBuf[:])) - 2
		scanned += 2

		// 5. APP1 Exif
		if marker == 0xE1 && length >= 6 {
			sig, err := br.Peek(6)
			if err == nil && bytes.Equal(sig, exifHeader) {
				data := make([]byte, length)
				if _, err := io.ReadFull(br, data); err != nil {
					return nil, err
				}
				return data[6:], nil
			}
		}

		if length > (maxScan - scanned) {
			return nil, nil
		}

		// 6. Skip Payload
		if length > 0 {
			skipped, err := br.Discard(length)
			if err != nil {
				return nil, err
			}
			scanned += skipped
		}
	}

	return nil, nil
}

// extractPNG walks PNG chunks looking for "eXIf".
func extractPNG(r io.Reader) ([]byte, error) {
	if _, err := io.CopyN(io.Discard, r, 8); err != nil {
		return nil, err
	}

	header := make([]byte, 8)

	for {
		if _, err := io.ReadFull(r, header); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}

		length := binary.BigEndian.Uint32(header[0:4])
		chunkType := string(header[4:8])

		switch chunkType {
		case "eXIf":
			if length > 10*1024*1024 {
				return nil, errors.New("exif data too large")
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, err
			}
			// PNG eXIf holds the bare TIFF structure, no "Exif\0\0" prefix.
			return data, nil
		case "IEND":
			return nil, nil
		}

		if _, err := io.CopyN(io.Discard, r, int64(length)+4); err != nil {
			return nil, err
		}
	}
}
