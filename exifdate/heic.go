package exifdate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	mp4 "github.com/abema/go-mp4"
)

// Item boxes of a HEIF meta box. go-mp4 locates them; their payloads are
// parsed here since the library does not model them.
var (
	boxIinf = mp4.StrToBoxType("iinf")
	boxIloc = mp4.StrToBoxType("iloc")
	boxIdat = mp4.StrToBoxType("idat")
)

// Upper bound for item tables and the Exif item itself.
const maxItemPayload = 4 << 20

// extractHEIC returns the TIFF-structured EXIF block stored as the "Exif"
// item of a HEIF container. Anything it cannot follow is ErrUnsupported.
func extractHEIC(r io.ReadSeeker) ([]byte, error) {
	meta := mp4.BoxTypeMeta()
	found, err := mp4.ExtractBoxes(r, nil, []mp4.BoxPath{
		{meta, boxIinf},
		{meta, boxIloc},
		{meta, boxIdat},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk heif boxes: %v", ErrUnsupported, err)
	}

	var iinf, iloc, idat *mp4.BoxInfo
	for _, bi := range found {
		switch bi.Type {
		case boxIinf:
			iinf = bi
		case boxIloc:
			iloc = bi
		case boxIdat:
			idat = bi
		}
	}
	if iinf == nil || iloc == nil {
		return nil, fmt.Errorf("%w: heif item tables missing", ErrUnsupported)
	}

	payload, err := readPayload(r, iinf)
	if err != nil {
		return nil, err
	}
	id, ok, err := exifItemID(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: iinf: %v", ErrUnsupported, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no Exif item", ErrUnsupported)
	}

	if payload, err = readPayload(r, iloc); err != nil {
		return nil, err
	}
	loc, err := locateItem(payload, id)
	if err != nil {
		return nil, fmt.Errorf("%w: iloc: %v", ErrUnsupported, err)
	}

	var base uint64
	switch loc.method {
	case 0:
	case 1:
		if idat == nil {
			return nil, fmt.Errorf("%w: Exif item lives in a missing idat box", ErrUnsupported)
		}
		base = idat.Offset + idat.HeaderSize
	default:
		return nil, fmt.Errorf("%w: iloc construction method %d", ErrUnsupported, loc.method)
	}

	var item bytes.Buffer
	for _, e := range loc.extents {
		if uint64(item.Len())+e.length > maxItemPayload {
			return nil, fmt.Errorf("%w: Exif item too large", ErrUnsupported)
		}
		if _, err := r.Seek(int64(base+loc.base+e.offset), io.SeekStart); err != nil {
			return nil, err
		}
		if _, err := io.CopyN(&item, r, int64(e.length)); err != nil {
			return nil, fmt.Errorf("%w: read Exif item: %v", ErrUnsupported, err)
		}
	}

	blob := unwrapHEIFExif(item.Bytes())
	if blob == nil {
		return nil, fmt.Errorf("%w: Exif item holds no TIFF header", ErrUnsupported)
	}
	return blob, nil
}

func readPayload(r io.ReadSeeker, bi *mp4.BoxInfo) ([]byte, error) {
	size := bi.Size - bi.HeaderSize
	if size > maxItemPayload {
		return nil, fmt.Errorf("%w: %s box too large", ErrUnsupported, bi.Type)
	}
	if _, err := bi.SeekToPayload(r); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnsupported, bi.Type, err)
	}
	return buf, nil
}

var errShort = errors.New("truncated box")

// cursor reads big-endian fields off a box payload.
type cursor struct {
	b   []byte
	err error
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n > len(c.b) {
		c.err = errShort
		return nil
	}
	v := c.b[:n]
	c.b = c.b[n:]
	return v
}

// field reads an n-byte unsigned field; n of 0 yields 0.
func (c *cursor) field(n int) uint64 {
	var x uint64
	for _, v := range c.take(n) {
		x = x<<8 | uint64(v)
	}
	return x
}

// exifItemID scans the infe entries of an iinf payload for the item of
// type "Exif". Only infe versions 2 and 3 carry an item type.
func exifItemID(payload []byte) (uint32, bool, error) {
	c := &cursor{b: payload}
	version := c.field(1)
	c.take(3)
	if version == 0 {
		c.field(2)
	} else {
		c.field(4)
	}
	if c.err != nil {
		return 0, false, c.err
	}

	children := bytes.NewReader(c.b)
	for children.Len() >= mp4.SmallHeaderSize {
		bi, err := mp4.ReadBoxInfo(children)
		if err != nil {
			return 0, false, err
		}
		if bi.Size < bi.HeaderSize || bi.Offset+bi.Size > uint64(len(c.b)) {
			return 0, false, errShort
		}
		if bi.Type == mp4.StrToBoxType("infe") {
			e := &cursor{b: c.b[bi.Offset+bi.HeaderSize : bi.Offset+bi.Size]}
			v := e.field(1)
			e.take(3)
			var id uint32
			switch v {
			case 2:
				id = uint32(e.field(2))
			case 3:
				id = uint32(e.field(4))
			}
			e.field(2) // protection index
			if (v == 2 || v == 3) && e.err == nil && string(e.take(4)) == "Exif" {
				return id, true, nil
			}
		}
		if _, err := children.Seek(int64(bi.Offset+bi.Size), io.SeekStart); err != nil {
			return 0, false, err
		}
	}
	return 0, false, nil
}

type itemExtent struct {
	offset, length uint64
}

type itemLoc struct {
	method  int
	base    uint64
	extents []itemExtent
}

// locateItem finds the entry for id in an iloc payload.
func locateItem(payload []byte, id uint32) (itemLoc, error) {
	c := &cursor{b: payload}
	version := c.field(1)
	c.take(3)
	sizes := c.take(2)
	if c.err != nil {
		return itemLoc{}, c.err
	}
	offsetSize, lengthSize := int(sizes[0]>>4), int(sizes[0]&0x0F)
	baseSize, indexSize := int(sizes[1]>>4), 0
	if version >= 1 {
		indexSize = int(sizes[1] & 0x0F)
	}

	idSize := 2
	if version >= 2 {
		idSize = 4
	}
	count := c.field(idSize)

	for i := uint64(0); i < count && c.err == nil; i++ {
		var loc itemLoc
		itemID := uint32(c.field(idSize))
		if version == 1 || version == 2 {
			loc.method = int(c.field(2) & 0x0F)
		}
		c.field(2) // data reference index
		loc.base = c.field(baseSize)
		extents := c.field(2)
		for j := uint64(0); j < extents && c.err == nil; j++ {
			c.field(indexSize)
			loc.extents = append(loc.extents, itemExtent{offset: c.field(offsetSize), length: c.field(lengthSize)})
		}
		if c.err == nil && itemID == id {
			return loc, nil
		}
	}
	if c.err != nil {
		return itemLoc{}, c.err
	}
	return itemLoc{}, fmt.Errorf("item %d has no location", id)
}

// unwrapHEIFExif strips the 4-byte header offset and "Exif\0\0" marker that
// precede the TIFF data of a HEIF Exif item. Items that skip the wrapper
// are searched for a TIFF byte-order mark instead.
func unwrapHEIFExif(data []byte) []byte {
	if len(data) >= 4 {
		start := 4 + int(binary.BigEndian.Uint32(data))
		if start >= 4 && start+len(exifHeader) <= len(data) && bytes.Equal(data[start:start+len(exifHeader)], exifHeader) {
			return data[start+len(exifHeader):]
		}
	}
	limit := min(len(data), 512)
	for i := 0; i+4 <= limit; i++ {
		if bytes.HasPrefix(data[i:], []byte("II*\x00")) || bytes.HasPrefix(data[i:], []byte("MM\x00*")) {
			return data[i:]
		}
	}
	return nil
}
