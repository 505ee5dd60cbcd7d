package exifdate

import (
	"fmt"
	"io"
	"time"

	mp4 "github.com/abema/go-mp4"
)

// Seconds between the QuickTime epoch (1904-01-01) and the Unix epoch.
const mp4EpochOffset = 2082844800

// readMovie reads creation and modification time from moov/mvhd.
func readMovie(r io.ReadSeeker) (Dates, error) {
	boxes, err := mp4.ExtractBoxWithPayload(r, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil {
		return Dates{}, fmt.Errorf("%w: read mvhd: %v", ErrUnsupported, err)
	}
	if len(boxes) == 0 {
		return Dates{}, fmt.Errorf("%w: mvhd box not found", ErrUnsupported)
	}

	mvhd, ok := boxes[0].Payload.(*mp4.Mvhd)
	if !ok {
		return Dates{}, fmt.Errorf("%w: unexpected mvhd payload", ErrUnsupported)
	}

	var created, modified uint64
	if mvhd.Version > 0 {
		created, modified = mvhd.CreationTimeV1, mvhd.ModificationTimeV1
	} else {
		created, modified = uint64(mvhd.CreationTimeV0), uint64(mvhd.ModificationTimeV0)
	}

	return Dates{
		CreateDate: movieTime(created),
		ModifyDate: movieTime(modified),
	}, nil
}

// movieTime renders a QuickTime timestamp; zero and pre-1970 values are
// treated as unset (many cameras leave the field empty).
func movieTime(v uint64) string {
	if v <= mp4EpochOffset {
		return ""
	}
	return time.Unix(int64(v)-mp4EpochOffset, 0).UTC().Format(Layout)
}
