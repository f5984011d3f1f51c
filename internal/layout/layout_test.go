package layout

import (
	"errors"
	"testing"

	"github.com/smazurov/mlcsnap/internal/format"
)

type fakeAllocator struct {
	align     int
	next      uint32
	live      map[uint32]bool
	mapped    int
	failMap   bool
	shortSize bool
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{align: 64, next: 1, live: make(map[uint32]bool)}
}

func (a *fakeAllocator) CreateBuffer(width, height, bpp int) (Buffer, error) {
	pitch := (width*bpp/8 + a.align - 1) / a.align * a.align
	b := Buffer{Handle: a.next, Pitch: pitch, Size: pitch * height}
	if a.shortSize {
		b.Size -= pitch
	}
	a.live[b.Handle] = true
	a.next++
	return b, nil
}

func (a *fakeAllocator) MapBuffer(b Buffer) ([]byte, error) {
	if a.failMap {
		return nil, errors.New("map failed")
	}
	a.mapped++
	return make([]byte, b.Size), nil
}

func (a *fakeAllocator) UnmapBuffer(mem []byte) error {
	a.mapped--
	return nil
}

func (a *fakeAllocator) DestroyBuffer(handle uint32) error {
	if !a.live[handle] {
		return errors.New("unknown handle")
	}
	delete(a.live, handle)
	return nil
}

func TestPlanar420FullHD(t *testing.T) {
	const w, h = 1920, 1080
	pitch := w
	size := pitch * AllocHeight(format.YUV420, h)

	if size != pitch*h*3/2 {
		t.Fatalf("Expected allocation of %d bytes, got %d", pitch*h*3/2, size)
	}

	l, err := Compute(format.YUV420, w, h, 7, pitch, size)
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}

	if l.Count != 3 {
		t.Fatalf("Expected 3 planes, got %d", l.Count)
	}
	for i := 0; i < 3; i++ {
		if l.Handles[i] != 7 {
			t.Errorf("Plane %d handle = %d, want 7", i, l.Handles[i])
		}
	}
	if l.Handles[3] != 0 || l.Pitches[3] != 0 {
		t.Error("Expected fourth plane slot to be unused")
	}

	lumaSize := pitch * h
	chromaSize := (pitch / 2) * (h / 2)
	if l.End(0) != lumaSize {
		t.Errorf("Luma plane ends at %d, want %d", l.End(0), lumaSize)
	}
	if int(l.Offsets[1]) != lumaSize || int(l.Pitches[1]) != pitch/2 || l.Rows[1] != h/2 {
		t.Errorf("Cb plane = off %d pitch %d rows %d", l.Offsets[1], l.Pitches[1], l.Rows[1])
	}
	if int(l.Offsets[2]) != lumaSize+chromaSize || int(l.Pitches[2]) != pitch/2 || l.Rows[2] != h/2 {
		t.Errorf("Cr plane = off %d pitch %d rows %d", l.Offsets[2], l.Pitches[2], l.Rows[2])
	}
	if l.End(2) != size {
		t.Errorf("Cr plane ends at %d, want %d", l.End(2), size)
	}
}

func TestComputeAllFormats(t *testing.T) {
	sizes := []struct{ w, h int }{{1920, 1080}, {640, 480}, {33, 17}, {2, 2}}

	for _, f := range format.All() {
		for _, sz := range sizes {
			alloc := newFakeAllocator()
			buf, _ := alloc.CreateBuffer(sz.w, AllocHeight(f, sz.h), AllocBPP(f))

			l, err := Compute(f, sz.w, sz.h, buf.Handle, buf.Pitch, buf.Size)
			if err != nil {
				t.Errorf("%s %dx%d: Compute() failed: %v", f, sz.w, sz.h, err)
				continue
			}

			d := f.Descriptor()
			if l.Count != d.Planes {
				t.Errorf("%s: %d planes, want %d", f, l.Count, d.Planes)
			}
			if l.Rows[0] != sz.h {
				t.Errorf("%s: luma rows %d, want %d", f, l.Rows[0], sz.h)
			}
			for i := 1; i < l.Count; i++ {
				if l.Rows[i] != sz.h/d.VSub {
					t.Errorf("%s: plane %d rows %d, want %d", f, i, l.Rows[i], sz.h/d.VSub)
				}
			}
			if l.End(l.Count-1) > buf.Size {
				t.Errorf("%s %dx%d: last plane ends at %d past %d", f, sz.w, sz.h, l.End(l.Count-1), buf.Size)
			}
		}
	}
}

func TestAllocHeight(t *testing.T) {
	tests := []struct {
		f    format.Format
		want int
	}{
		{format.YUV420, 1620},
		{format.NV12, 1620},
		{format.YUV422, 2160},
		{format.NV16, 2160},
		{format.YUV444, 3240},
		{format.YUYV, 1080},
		{format.XRGB8888, 1080},
	}

	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			if got := AllocHeight(tt.f, 1080); got != tt.want {
				t.Errorf("AllocHeight(%s, 1080) = %d, want %d", tt.f, got, tt.want)
			}
		})
	}

	if got := AllocBPP(format.YUYV); got != 16 {
		t.Errorf("AllocBPP(YUYV) = %d, want 16", got)
	}
	if got := AllocBPP(format.NV12); got != 8 {
		t.Errorf("AllocBPP(NV12) = %d, want 8", got)
	}
}

func TestUnderAllocationIsRejected(t *testing.T) {
	const w, h = 1920, 1080
	for _, f := range []format.Format{format.YUV420, format.YUV422, format.YUV444, format.NV12, format.NV16} {
		// Enough for the luma plane only.
		_, err := Compute(f, w, h, 1, w, w*h)
		if !errors.Is(err, ErrLayout) {
			t.Errorf("%s: expected ErrLayout for luma-sized buffer, got %v", f, err)
		}
		// One byte short of the full allocation.
		_, err = Compute(f, w, h, 1, w, w*AllocHeight(f, h)-1)
		if !errors.Is(err, ErrLayout) {
			t.Errorf("%s: expected ErrLayout for short buffer, got %v", f, err)
		}
	}
}

func TestValidateRejectsOverlap(t *testing.T) {
	l := PlaneLayout{Count: 2}
	l.Pitches[0], l.Rows[0] = 16, 4
	l.Pitches[1], l.Rows[1], l.Offsets[1] = 16, 2, 32

	if err := l.Validate(1024); !errors.Is(err, ErrLayout) {
		t.Errorf("Expected ErrLayout for overlapping planes, got %v", err)
	}
}

func TestSurface(t *testing.T) {
	alloc := newFakeAllocator()

	s, err := NewSurface(alloc, format.NV12, 64, 32)
	if err != nil {
		t.Fatalf("NewSurface() failed: %v", err)
	}

	planes := s.Planes()
	if len(planes) != 2 {
		t.Fatalf("Expected 2 planes, got %d", len(planes))
	}
	if len(planes[0].Data) != 64*32 || len(planes[1].Data) != 64*16 {
		t.Errorf("Plane sizes = %d/%d, want %d/%d", len(planes[0].Data), len(planes[1].Data), 64*32, 64*16)
	}

	// Writing the last chroma row must land at the end of the buffer.
	row := planes[1].Row(planes[1].Rows - 1)
	row[len(row)-1] = 0xAB
	if s.Bytes()[s.Buffer.Size-1] != 0xAB {
		t.Error("Last chroma byte is not the last byte of the buffer")
	}

	if err := s.Destroy(); err != nil {
		t.Fatalf("Destroy() failed: %v", err)
	}
	if err := s.Destroy(); err != nil {
		t.Errorf("Second Destroy() failed: %v", err)
	}
	if len(alloc.live) != 0 || alloc.mapped != 0 {
		t.Errorf("Leaked %d buffers and %d mappings", len(alloc.live), alloc.mapped)
	}
}

func TestSurfaceReleasesOnFailure(t *testing.T) {
	t.Run("map failure", func(t *testing.T) {
		alloc := newFakeAllocator()
		alloc.failMap = true
		if _, err := NewSurface(alloc, format.XRGB8888, 16, 16); err == nil {
			t.Fatal("Expected error")
		}
		if len(alloc.live) != 0 {
			t.Errorf("Leaked %d buffers", len(alloc.live))
		}
	})

	t.Run("short buffer", func(t *testing.T) {
		alloc := newFakeAllocator()
		alloc.shortSize = true
		_, err := NewSurface(alloc, format.YUV420, 64, 64)
		if !errors.Is(err, ErrLayout) {
			t.Fatalf("Expected ErrLayout, got %v", err)
		}
		if len(alloc.live) != 0 || alloc.mapped != 0 {
			t.Errorf("Leaked %d buffers and %d mappings", len(alloc.live), alloc.mapped)
		}
	})
}
