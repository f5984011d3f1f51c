//go:build linux

package linuxdrm

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// CreateDumb allocates a dumb buffer of width x height pixels at bpp bits
// per pixel. The driver picks the pitch.
func (d *Device) CreateDumb(width, height, bpp uint32) (DumbBuffer, error) {
	arg := drmModeCreateDumb{width: width, height: height, bpp: bpp}
	if err := ioctl(d.fd, drmIoctlModeCreateDumb, unsafe.Pointer(&arg)); err != nil {
		return DumbBuffer{}, fmt.Errorf("DRM_IOCTL_MODE_CREATE_DUMB %dx%d@%d: %w", width, height, bpp, err)
	}
	return DumbBuffer{Handle: arg.handle, Pitch: arg.pitch, Size: arg.size}, nil
}

// MapDumb maps a dumb buffer read-write into the process.
func (d *Device) MapDumb(b DumbBuffer) ([]byte, error) {
	arg := drmModeMapDumb{handle: b.Handle}
	if err := ioctl(d.fd, drmIoctlModeMapDumb, unsafe.Pointer(&arg)); err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_MODE_MAP_DUMB %d: %w", b.Handle, err)
	}
	mem, err := unix.Mmap(d.fd, int64(arg.offset), int(b.Size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap dumb buffer %d: %w", b.Handle, err)
	}
	return mem, nil
}

// Unmap releases a mapping returned by MapDumb.
func (d *Device) Unmap(mem []byte) error {
	return unix.Munmap(mem)
}

// DestroyDumb frees a dumb buffer.
func (d *Device) DestroyDumb(handle uint32) error {
	arg := drmModeDestroyDumb{handle: handle}
	if err := ioctl(d.fd, drmIoctlModeDestroyDumb, unsafe.Pointer(&arg)); err != nil {
		return fmt.Errorf("DRM_IOCTL_MODE_DESTROY_DUMB %d: %w", handle, err)
	}
	return nil
}
