package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/smazurov/mlcsnap/internal/mlc"
)

// PixelSource gives access to the memory behind a hardware plane, usually a
// mapping of physical memory.
type PixelSource interface {
	Plane(spec mlc.PlaneSpec) ([]byte, error)
}

// Write encodes hdr and then the layer's planes read from src, in plane
// order and row by row at the hardware pitch so row padding is kept. It
// returns the number of bytes written.
func Write(w io.Writer, hdr *Header, src PixelSource) (int64, error) {
	planes, err := mlc.PlaneSpecs(&hdr.Registers, hdr.LayerID())
	if err != nil {
		return 0, fmt.Errorf("mlc.%d %s: %w", hdr.Device, hdr.LayerID(), err)
	}

	head, err := hdr.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(head)
	written := int64(n)
	if err != nil {
		return written, fmt.Errorf("failed to write header: %w", err)
	}

	for i, spec := range planes {
		mem, err := src.Plane(spec)
		if err != nil {
			return written, fmt.Errorf("failed to map plane %d at 0x%08x: %w", i, spec.Address, err)
		}
		if len(mem) < spec.Size() {
			return written, fmt.Errorf("plane %d: source holds %d bytes, need %d", i, len(mem), spec.Size())
		}
		for y := 0; y < spec.Rows; y++ {
			n, err := w.Write(mem[y*spec.Pitch : (y+1)*spec.Pitch])
			written += int64(n)
			if err != nil {
				return written, fmt.Errorf("failed to write plane %d row %d: %w", i, y, err)
			}
		}
	}
	return written, nil
}

// Create writes the snapshot described by hdr to path. progress, when not
// nil, also receives every byte written. A partial file is left behind on
// error.
func Create(path string, hdr *Header, src PixelSource, progress io.Writer) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create snapshot: %w", err)
	}

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	if progress != nil {
		w = io.MultiWriter(bw, progress)
	}

	n, err := Write(w, hdr, src)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close snapshot: %w", cerr)
	}
	return n, err
}

// PayloadSize is the number of payload bytes a snapshot of hdr carries.
func PayloadSize(hdr *Header) (int, error) {
	planes, err := mlc.PlaneSpecs(&hdr.Registers, hdr.LayerID())
	if err != nil {
		return 0, err
	}
	return mlc.PayloadSize(planes), nil
}
