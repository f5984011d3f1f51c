package layout

import (
	"errors"
	"fmt"

	"github.com/smazurov/mlcsnap/internal/format"
)

// Buffer is a device buffer returned by an Allocator.
type Buffer struct {
	Handle uint32
	Pitch  int
	Size   int
}

// Allocator creates CPU-mappable device buffers, typically DRM dumb buffers.
type Allocator interface {
	CreateBuffer(width, height, bpp int) (Buffer, error)
	MapBuffer(b Buffer) ([]byte, error)
	UnmapBuffer(mem []byte) error
	DestroyBuffer(handle uint32) error
}

// Plane is a CPU view of one plane of a Surface.
type Plane struct {
	Data  []byte
	Pitch int
	Rows  int
}

// Row returns row y of the plane.
func (p Plane) Row(y int) []byte {
	return p.Data[y*p.Pitch : (y+1)*p.Pitch]
}

// Surface owns one mapped device buffer laid out for a pixel format.
type Surface struct {
	Format format.Format
	Width  int
	Height int
	Buffer Buffer
	Layout PlaneLayout

	alloc     Allocator
	mem       []byte
	destroyed bool
}

// NewSurface allocates and maps a single buffer large enough for all planes
// of f at width x height. Nothing is leaked on failure.
func NewSurface(alloc Allocator, f format.Format, width, height int) (*Surface, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", format.ErrUnsupported, int(f))
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %s %dx%d", ErrLayout, f, width, height)
	}

	buf, err := alloc.CreateBuffer(width, AllocHeight(f, height), AllocBPP(f))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate %s %dx%d buffer: %w", f, width, height, err)
	}

	l, err := Compute(f, width, height, buf.Handle, buf.Pitch, buf.Size)
	if err != nil {
		return nil, errors.Join(err, alloc.DestroyBuffer(buf.Handle))
	}

	mem, err := alloc.MapBuffer(buf)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to map buffer %d: %w", buf.Handle, err), alloc.DestroyBuffer(buf.Handle))
	}
	if len(mem) < buf.Size {
		err := fmt.Errorf("%w: mapping of buffer %d is %d bytes, want %d", ErrLayout, buf.Handle, len(mem), buf.Size)
		return nil, errors.Join(err, alloc.UnmapBuffer(mem), alloc.DestroyBuffer(buf.Handle))
	}

	return &Surface{
		Format: f,
		Width:  width,
		Height: height,
		Buffer: buf,
		Layout: l,
		alloc:  alloc,
		mem:    mem,
	}, nil
}

// Planes returns bounds-checked views of the populated planes.
func (s *Surface) Planes() []Plane {
	if s.destroyed {
		return nil
	}
	planes := make([]Plane, s.Layout.Count)
	for i := range planes {
		off := int(s.Layout.Offsets[i])
		planes[i] = Plane{
			Data:  s.mem[off:s.Layout.End(i):s.Layout.End(i)],
			Pitch: int(s.Layout.Pitches[i]),
			Rows:  s.Layout.Rows[i],
		}
	}
	return planes
}

// Bytes returns the whole mapping.
func (s *Surface) Bytes() []byte {
	return s.mem
}

// Destroy unmaps and frees the buffer. It is safe to call more than once.
func (s *Surface) Destroy() error {
	if s.destroyed {
		return nil
	}
	s.destroyed = true

	var errs []error
	if s.mem != nil {
		if err := s.alloc.UnmapBuffer(s.mem); err != nil {
			errs = append(errs, fmt.Errorf("failed to unmap buffer %d: %w", s.Buffer.Handle, err))
		}
		s.mem = nil
	}
	if err := s.alloc.DestroyBuffer(s.Buffer.Handle); err != nil {
		errs = append(errs, fmt.Errorf("failed to destroy buffer %d: %w", s.Buffer.Handle, err))
	}
	return errors.Join(errs...)
}
