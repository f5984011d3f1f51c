//go:build linux

package physmem

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// backingFile stands in for /dev/mem: a regular file is mapped the same way.
func backingFile(t *testing.T, pages int) (string, []byte) {
	t.Helper()
	data := make([]byte, pages*os.Getpagesize())
	for i := 0; i+4 <= len(data); i += 4 {
		binary.LittleEndian.PutUint32(data[i:], uint32(i))
	}
	path := filepath.Join(t.TempDir(), "mem")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write backing file: %v", err)
	}
	return path, data
}

func TestMapUnalignedWindow(t *testing.T) {
	path, _ := backingFile(t, 3)
	mem, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer mem.Close()

	base := uint64(os.Getpagesize() + 0x3C0)
	r, err := mem.Map(base, 0x40)
	if err != nil {
		t.Fatalf("Map() failed: %v", err)
	}

	if r.Len() != 0x40 {
		t.Errorf("Len() = %d, want %d", r.Len(), 0x40)
	}
	if got := r.Read32(0); got != uint32(base) {
		t.Errorf("Read32(0) = 0x%x, want 0x%x", got, base)
	}
	if got := r.Read32(0x3C); got != uint32(base+0x3C) {
		t.Errorf("Read32(0x3C) = 0x%x, want 0x%x", got, base+0x3C)
	}

	r.Write32(4, 0xCAFEF00D)
	if got := binary.LittleEndian.Uint32(r.Bytes()[4:]); got != 0xCAFEF00D {
		t.Errorf("Expected write to land in mapping, got 0x%x", got)
	}
}

func TestWritesReachBackingStore(t *testing.T) {
	path, _ := backingFile(t, 1)
	mem, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	r, err := mem.Map(0x10, 8)
	if err != nil {
		t.Fatalf("Map() failed: %v", err)
	}
	r.Write32(0, 0x11223344)
	if err := mem.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	if got := binary.LittleEndian.Uint32(data[0x10:]); got != 0x11223344 {
		t.Errorf("Expected 0x11223344 at 0x10, got 0x%x", got)
	}
}

func TestCloseReleasesRegions(t *testing.T) {
	path, _ := backingFile(t, 1)
	mem, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	r, err := mem.Map(0, 16)
	if err != nil {
		t.Fatalf("Map() failed: %v", err)
	}
	if err := mem.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if r.Bytes() != nil {
		t.Error("Expected region to be unmapped by Close")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Second region Close() failed: %v", err)
	}
	if err := mem.Close(); err != nil {
		t.Errorf("Second Close() failed: %v", err)
	}
	if _, err := mem.Map(0, 16); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestWordOffsetChecked(t *testing.T) {
	path, _ := backingFile(t, 1)
	mem, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer mem.Close()

	r, err := mem.Map(0, 8)
	if err != nil {
		t.Fatalf("Map() failed: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for out of range word")
		}
	}()
	r.Read32(8)
}
