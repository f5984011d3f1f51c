//go:build linux && (amd64 || arm64)

package linuxdrm

import "unsafe"

var _ [64]byte = [unsafe.Sizeof(drmVersion{})]byte{}

// IOCTL constants for 64-bit architectures.
const drmIoctlVersion = 0xc0406400

// drmVersion has size 64 bytes.
type drmVersion struct {
	versionMajor      int32   // offset 0
	versionMinor      int32   // offset 4
	versionPatchlevel int32   // offset 8
	_                 int32   // offset 12
	nameLen           uint64  // offset 16
	name              uintptr // offset 24
	dateLen           uint64  // offset 32
	date              uintptr // offset 40
	descLen           uint64  // offset 48
	desc              uintptr // offset 56
}

func (v *drmVersion) setBuffers(name, date, desc []byte) {
	v.nameLen, v.name = uint64(len(name)), bufPtr(name)
	v.dateLen, v.date = uint64(len(date)), bufPtr(date)
	v.descLen, v.desc = uint64(len(desc)), bufPtr(desc)
}

func (v *drmVersion) lengths() (name, date, desc int) {
	return int(v.nameLen), int(v.dateLen), int(v.descLen)
}
