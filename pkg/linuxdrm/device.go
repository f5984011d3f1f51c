//go:build linux

package linuxdrm

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrNoDevice is returned when no card is driven by the requested driver.
var ErrNoDevice = errors.New("no DRM device found")

// Device is an open DRM card.
type Device struct {
	fd   int
	path string
}

// Open opens the card node at path.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &Device{fd: fd, path: path}, nil
}

// OpenDriver opens the first /dev/dri/card* node whose driver name is
// driver.
func OpenDriver(driver string) (*Device, error) {
	paths, err := filepath.Glob("/dev/dri/card*")
	if err != nil {
		return nil, fmt.Errorf("failed to list DRM cards: %w", err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		dev, err := Open(path)
		if err != nil {
			slog.With("component", "linuxdrm").Debug("failed to open card", "path", path, "error", err)
			continue
		}
		v, err := dev.Version()
		if err != nil {
			slog.With("component", "linuxdrm").Debug("failed to query driver version", "path", path, "error", err)
			dev.Close()
			continue
		}
		if v.Name == driver {
			return dev, nil
		}
		dev.Close()
	}
	return nil, fmt.Errorf("%w: driver %q", ErrNoDevice, driver)
}

// Path returns the card node path.
func (d *Device) Path() string {
	return d.path
}

// Close closes the card. Framebuffers and dumb buffers still owned by this
// file are released by the kernel.
func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

// Version queries the driver name and version.
func (d *Device) Version() (*Version, error) {
	var v drmVersion
	if err := ioctl(d.fd, drmIoctlVersion, unsafe.Pointer(&v)); err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_VERSION: %w", err)
	}

	nameLen, dateLen, descLen := v.lengths()
	name := make([]byte, nameLen+1)
	date := make([]byte, dateLen+1)
	desc := make([]byte, descLen+1)
	v.setBuffers(name[:nameLen], date[:dateLen], desc[:descLen])

	err := ioctl(d.fd, drmIoctlVersion, unsafe.Pointer(&v))
	runtime.KeepAlive(name)
	runtime.KeepAlive(date)
	runtime.KeepAlive(desc)
	if err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_VERSION: %w", err)
	}

	return &Version{
		Major: int(v.versionMajor),
		Minor: int(v.versionMinor),
		Patch: int(v.versionPatchlevel),
		Name:  cstr(name),
		Date:  cstr(date),
		Desc:  cstr(desc),
	}, nil
}

// SetClientCap enables a client capability.
func (d *Device) SetClientCap(capability, value uint64) error {
	arg := drmSetClientCap{capability: capability, value: value}
	if err := ioctl(d.fd, drmIoctlSetClientCap, unsafe.Pointer(&arg)); err != nil {
		return fmt.Errorf("DRM_IOCTL_SET_CLIENT_CAP %d: %w", capability, err)
	}
	return nil
}
