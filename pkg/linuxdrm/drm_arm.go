//go:build linux && arm && !arm64

package linuxdrm

import "unsafe"

var _ [36]byte = [unsafe.Sizeof(drmVersion{})]byte{}

// IOCTL constants for 32-bit ARM.
const drmIoctlVersion = 0xc0246400

// drmVersion has size 36 bytes.
type drmVersion struct {
	versionMajor      int32   // offset 0
	versionMinor      int32   // offset 4
	versionPatchlevel int32   // offset 8
	nameLen           uint32  // offset 12
	name              uintptr // offset 16
	dateLen           uint32  // offset 20
	date              uintptr // offset 24
	descLen           uint32  // offset 28
	desc              uintptr // offset 32
}

func (v *drmVersion) setBuffers(name, date, desc []byte) {
	v.nameLen, v.name = uint32(len(name)), bufPtr(name)
	v.dateLen, v.date = uint32(len(date)), bufPtr(date)
	v.descLen, v.desc = uint32(len(desc)), bufPtr(desc)
}

func (v *drmVersion) lengths() (name, date, desc int) {
	return int(v.nameLen), int(v.dateLen), int(v.descLen)
}
