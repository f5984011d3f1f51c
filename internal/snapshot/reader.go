package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/smazurov/mlcsnap/internal/layout"
	"github.com/smazurov/mlcsnap/internal/mlc"
)

// File is an opened snapshot. Device and layer always come from the header.
type File struct {
	Header *Header
	State  *mlc.LayerState

	// Progress, when set, receives a copy of every payload byte read.
	Progress io.Writer

	f    *os.File
	size int64
}

// Open reads and validates the header of the snapshot at path and decodes
// the saved layer state.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}

	hdr, err := ReadHeader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	st, err := mlc.Decode(&hdr.Registers, hdr.LayerID())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: mlc.%d %s: %w", path, hdr.Device, hdr.LayerID(), err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	return &File{Header: hdr, State: st, f: f, size: fi.Size()}, nil
}

// PayloadSize is the payload size implied by the saved registers.
func (s *File) PayloadSize() int {
	return mlc.PayloadSize(s.State.Planes)
}

// StoredPayload is the number of payload bytes actually present.
func (s *File) StoredPayload() int64 {
	return s.size - PayloadOffset
}

func (s *File) payload() (io.Reader, error) {
	if _, err := s.f.Seek(PayloadOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to payload: %w", err)
	}
	var r io.Reader = bufio.NewReader(s.f)
	if s.Progress != nil {
		r = io.TeeReader(r, s.Progress)
	}
	return r, nil
}

// LoadInto copies the payload into dst, one destination plane per captured
// plane. Each row copies min(captured pitch, destination pitch) bytes and
// surplus captured bytes are skipped.
func (s *File) LoadInto(dst []layout.Plane) error {
	src := s.State.Planes
	if len(dst) != len(src) {
		return fmt.Errorf("snapshot has %d planes, destination has %d", len(src), len(dst))
	}

	r, err := s.payload()
	if err != nil {
		return err
	}

	for i, spec := range src {
		row := make([]byte, spec.Pitch)
		d := dst[i]
		n := min(spec.Pitch, d.Pitch)
		for y := 0; y < spec.Rows; y++ {
			if _, err := io.ReadFull(r, row); err != nil {
				return payloadErr(i, y, err)
			}
			if y < d.Rows {
				copy(d.Row(y)[:n], row[:n])
			}
		}
	}
	return nil
}

// ReadPlanes reads the payload into memory, keeping the captured pitches.
func (s *File) ReadPlanes() ([]layout.Plane, error) {
	r, err := s.payload()
	if err != nil {
		return nil, err
	}

	planes := make([]layout.Plane, len(s.State.Planes))
	for i, spec := range s.State.Planes {
		data := make([]byte, spec.Size())
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, payloadErr(i, -1, err)
		}
		planes[i] = layout.Plane{Data: data, Pitch: spec.Pitch, Rows: spec.Rows}
	}
	return planes, nil
}

// Close closes the underlying file.
func (s *File) Close() error {
	return s.f.Close()
}

func payloadErr(plane, row int, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		if row < 0 {
			return fmt.Errorf("%w: plane %d", ErrShortPayload, plane)
		}
		return fmt.Errorf("%w: plane %d row %d", ErrShortPayload, plane, row)
	}
	return fmt.Errorf("failed to read payload: %w", err)
}
