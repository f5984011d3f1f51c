// Package layout partitions a single dumb buffer into the planes of a pixel
// format.
package layout

import (
	"errors"
	"fmt"

	"github.com/smazurov/mlcsnap/internal/format"
)

// MaxPlanes is the number of plane slots a framebuffer can describe.
const MaxPlanes = 4

// ErrLayout is returned when planes do not fit the buffer or overlap.
var ErrLayout = errors.New("invalid plane layout")

// PlaneLayout describes how one buffer is split into logical planes. Unused
// slots are zero.
type PlaneLayout struct {
	Handles [MaxPlanes]uint32
	Pitches [MaxPlanes]uint32
	Offsets [MaxPlanes]uint32
	Rows    [MaxPlanes]int
	Count   int
}

// End returns the byte offset just past plane i.
func (l PlaneLayout) End(i int) int {
	return int(l.Offsets[i]) + int(l.Pitches[i])*l.Rows[i]
}

// AllocHeight returns the number of pitch-sized rows the buffer needs so
// every plane fits: luma plus all chroma planes for (semi-)planar YUV.
func AllocHeight(f format.Format, height int) int {
	d := f.Descriptor()
	switch d.Family {
	case format.FamilySemiPlanarYUV, format.FamilyPlanarYUV:
		// Chroma takes 2*rows/hsub rows of luma pitch.
		return height + chromaRows(d, height)*2/d.HSub
	default:
		return height
	}
}

func chromaRows(d format.Descriptor, height int) int {
	return height / d.VSub
}

// AllocBPP returns the bpp to request from the allocator. Planar data is
// allocated as 8-bit rows and the extra planes accounted for by AllocHeight.
func AllocBPP(f format.Format) int {
	d := f.Descriptor()
	switch d.Family {
	case format.FamilySemiPlanarYUV, format.FamilyPlanarYUV:
		return 8
	default:
		return d.BPP
	}
}

// Compute lays out f at width x height in the buffer identified by handle,
// with row pitch and total size as returned by the allocator.
func Compute(f format.Format, width, height int, handle uint32, pitch, size int) (PlaneLayout, error) {
	var l PlaneLayout
	if !f.Valid() {
		return l, fmt.Errorf("%w: %d", format.ErrUnsupported, int(f))
	}
	if width < 1 || height < 1 || pitch < 1 {
		return l, fmt.Errorf("%w: %s %dx%d pitch %d", ErrLayout, f, width, height, pitch)
	}

	d := f.Descriptor()
	p := uint32(pitch)
	h := uint32(height)

	l.Count = d.Planes
	for i := 0; i < d.Planes; i++ {
		l.Handles[i] = handle
	}
	l.Pitches[0] = p
	l.Rows[0] = height

	switch d.Family {
	case format.FamilyRGB, format.FamilyPackedYUV:
		// single plane

	case format.FamilySemiPlanarYUV:
		l.Pitches[1] = p
		l.Offsets[1] = p * h
		l.Rows[1] = chromaRows(d, height)

	case format.FamilyPlanarYUV:
		cp := p / uint32(d.HSub)
		rows := chromaRows(d, height)
		l.Pitches[1] = cp
		l.Pitches[2] = cp
		l.Offsets[1] = p * h
		l.Offsets[2] = l.Offsets[1] + cp*uint32(rows)
		l.Rows[1] = rows
		l.Rows[2] = rows

	default:
		return PlaneLayout{}, fmt.Errorf("%w: %s", format.ErrUnsupported, f)
	}

	if err := l.Validate(size); err != nil {
		return PlaneLayout{}, fmt.Errorf("%s %dx%d: %w", f, width, height, err)
	}
	return l, nil
}

// Validate checks that populated planes have strictly increasing offsets and
// that none extends past size.
func (l PlaneLayout) Validate(size int) error {
	if l.Count < 1 || l.Count > MaxPlanes {
		return fmt.Errorf("%w: %d planes", ErrLayout, l.Count)
	}
	for i := 0; i < l.Count; i++ {
		if l.Pitches[i] == 0 || l.Rows[i] < 1 {
			return fmt.Errorf("%w: plane %d is empty", ErrLayout, i)
		}
		if i > 0 && l.Offsets[i] <= l.Offsets[i-1] {
			return fmt.Errorf("%w: plane %d offset %d not above plane %d", ErrLayout, i, l.Offsets[i], i-1)
		}
		if i > 0 && int(l.Offsets[i]) < l.End(i-1) {
			return fmt.Errorf("%w: plane %d overlaps plane %d", ErrLayout, i, i-1)
		}
		if end := l.End(i); end > size {
			return fmt.Errorf("%w: plane %d ends at %d, buffer is %d bytes", ErrLayout, i, end, size)
		}
	}
	return nil
}
