//go:build linux

// Package physmem maps windows of physical memory through /dev/mem.
//
// Mappings are page aligned internally; callers address memory by physical
// address and get back slices covering exactly the requested range.
package physmem

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultPath is the physical memory device.
const DefaultPath = "/dev/mem"

// ErrClosed is returned when using a closed Memory or Region.
var ErrClosed = errors.New("physical memory closed")

// Memory is an open physical memory device.
type Memory struct {
	fd       int
	path     string
	pageSize uint64
	regions  []*Region
}

// Open opens the device at path, normally DefaultPath, for synchronous
// read-write access.
func Open(path string) (*Memory, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &Memory{fd: fd, path: path, pageSize: uint64(os.Getpagesize())}, nil
}

// Map maps size bytes starting at physical address base.
func (m *Memory) Map(base uint64, size int) (*Region, error) {
	if m.fd < 0 {
		return nil, ErrClosed
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid mapping size %d at 0x%08x", size, base)
	}

	aligned := base &^ (m.pageSize - 1)
	delta := int(base - aligned)
	mapping, err := unix.Mmap(m.fd, int64(aligned), delta+size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to map %s at 0x%08x+%d: %w", m.path, base, size, err)
	}

	r := &Region{
		Base:    base,
		mapping: mapping,
		data:    mapping[delta : delta+size : delta+size],
	}
	m.regions = append(m.regions, r)
	return r, nil
}

// Close unmaps every region still open and closes the device.
func (m *Memory) Close() error {
	if m.fd < 0 {
		return nil
	}
	var errs []error
	for _, r := range m.regions {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.regions = nil
	if err := unix.Close(m.fd); err != nil {
		errs = append(errs, fmt.Errorf("failed to close %s: %w", m.path, err))
	}
	m.fd = -1
	return errors.Join(errs...)
}

// Region is one mapped window of physical memory.
type Region struct {
	Base uint64

	mapping []byte
	data    []byte
}

// Bytes returns the mapped window.
func (r *Region) Bytes() []byte {
	return r.data
}

// Len returns the window size in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Read32 loads the 32-bit word at byte offset off with a single access.
func (r *Region) Read32(off int) uint32 {
	return atomic.LoadUint32(r.word(off))
}

// Write32 stores v at byte offset off with a single access.
func (r *Region) Write32(off int, v uint32) {
	atomic.StoreUint32(r.word(off), v)
}

func (r *Region) word(off int) *uint32 {
	if off < 0 || off%4 != 0 || off+4 > len(r.data) {
		panic(fmt.Sprintf("physmem: word offset %d outside %d byte region at 0x%08x", off, len(r.data), r.Base))
	}
	return (*uint32)(unsafe.Pointer(&r.data[off]))
}

// Close unmaps the region. It is safe to call more than once.
func (r *Region) Close() error {
	if r.mapping == nil {
		return nil
	}
	err := unix.Munmap(r.mapping)
	r.mapping = nil
	r.data = nil
	if err != nil {
		return fmt.Errorf("failed to unmap 0x%08x: %w", r.Base, err)
	}
	return nil
}
