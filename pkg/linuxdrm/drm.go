//go:build linux

package linuxdrm

import "unsafe"

// Compile-time struct size assertions. Layouts are the same on 32 and 64 bit
// because every 64-bit member is explicitly 8-byte aligned.
var (
	_ [68]byte  = [unsafe.Sizeof(ModeInfo{})]byte{}
	_ [16]byte  = [unsafe.Sizeof(drmSetClientCap{})]byte{}
	_ [64]byte  = [unsafe.Sizeof(drmModeCardRes{})]byte{}
	_ [104]byte = [unsafe.Sizeof(drmModeCrtc{})]byte{}
	_ [20]byte  = [unsafe.Sizeof(drmModeGetEncoder{})]byte{}
	_ [80]byte  = [unsafe.Sizeof(drmModeGetConnector{})]byte{}
	_ [24]byte  = [unsafe.Sizeof(drmModeFBDirtyCmd{})]byte{}
	_ [32]byte  = [unsafe.Sizeof(drmModeCreateDumb{})]byte{}
	_ [16]byte  = [unsafe.Sizeof(drmModeMapDumb{})]byte{}
	_ [4]byte   = [unsafe.Sizeof(drmModeDestroyDumb{})]byte{}
	_ [16]byte  = [unsafe.Sizeof(drmModeGetPlaneRes{})]byte{}
	_ [32]byte  = [unsafe.Sizeof(drmModeGetPlane{})]byte{}
	_ [48]byte  = [unsafe.Sizeof(PlaneConfig{})]byte{}
	_ [104]byte = [unsafe.Sizeof(drmModeFBCmd2{})]byte{}
)

// IOCTL constants shared by all architectures.
const (
	drmIoctlSetClientCap         = 0x4010640d
	drmIoctlModeGetResources     = 0xc04064a0
	drmIoctlModeGetCrtc          = 0xc06864a1
	drmIoctlModeSetCrtc          = 0xc06864a2
	drmIoctlModeGetEncoder       = 0xc01464a6
	drmIoctlModeGetConnector     = 0xc05064a7
	drmIoctlModeRmFB             = 0xc00464af
	drmIoctlModeDirtyFB          = 0xc01864b1
	drmIoctlModeCreateDumb       = 0xc02064b2
	drmIoctlModeMapDumb          = 0xc01064b3
	drmIoctlModeDestroyDumb      = 0xc00464b4
	drmIoctlModeGetPlaneResource = 0xc01064b5
	drmIoctlModeGetPlane         = 0xc02064b6
	drmIoctlModeSetPlane         = 0xc03064b7
	drmIoctlModeAddFB2           = 0xc06864b8
)

// drmSetClientCap has size 16 bytes.
type drmSetClientCap struct {
	capability uint64 // offset 0
	value      uint64 // offset 8
}

// drmModeCardRes has size 64 bytes.
type drmModeCardRes struct {
	fbIDPtr         uint64 // offset 0
	crtcIDPtr       uint64 // offset 8
	connectorIDPtr  uint64 // offset 16
	encoderIDPtr    uint64 // offset 24
	countFbs        uint32 // offset 32
	countCrtcs      uint32 // offset 36
	countConnectors uint32 // offset 40
	countEncoders   uint32 // offset 44
	minWidth        uint32 // offset 48
	maxWidth        uint32 // offset 52
	minHeight       uint32 // offset 56
	maxHeight       uint32 // offset 60
}

// drmModeCrtc has size 104 bytes.
type drmModeCrtc struct {
	setConnectorsPtr uint64   // offset 0
	countConnectors  uint32   // offset 8
	crtcID           uint32   // offset 12
	fbID             uint32   // offset 16
	x                uint32   // offset 20
	y                uint32   // offset 24
	gammaSize        uint32   // offset 28
	modeValid        uint32   // offset 32
	mode             ModeInfo // offset 36
}

// drmModeGetEncoder has size 20 bytes.
type drmModeGetEncoder struct {
	encoderID      uint32 // offset 0
	encoderType    uint32 // offset 4
	crtcID         uint32 // offset 8
	possibleCrtcs  uint32 // offset 12
	possibleClones uint32 // offset 16
}

// drmModeGetConnector has size 80 bytes.
type drmModeGetConnector struct {
	encodersPtr     uint64 // offset 0
	modesPtr        uint64 // offset 8
	propsPtr        uint64 // offset 16
	propValuesPtr   uint64 // offset 24
	countModes      uint32 // offset 32
	countProps      uint32 // offset 36
	countEncoders   uint32 // offset 40
	encoderID       uint32 // offset 44
	connectorID     uint32 // offset 48
	connectorType   uint32 // offset 52
	connectorTypeID uint32 // offset 56
	connection      uint32 // offset 60
	mmWidth         uint32 // offset 64
	mmHeight        uint32 // offset 68
	subpixel        uint32 // offset 72
	_               uint32 // offset 76
}

// drmModeFBDirtyCmd has size 24 bytes.
type drmModeFBDirtyCmd struct {
	fbID     uint32 // offset 0
	flags    uint32 // offset 4
	color    uint32 // offset 8
	numClips uint32 // offset 12
	clipsPtr uint64 // offset 16
}

// drmModeCreateDumb has size 32 bytes.
type drmModeCreateDumb struct {
	height uint32 // offset 0
	width  uint32 // offset 4
	bpp    uint32 // offset 8
	flags  uint32 // offset 12
	handle uint32 // offset 16
	pitch  uint32 // offset 20
	size   uint64 // offset 24
}

// drmModeMapDumb has size 16 bytes.
type drmModeMapDumb struct {
	handle uint32 // offset 0
	_      uint32 // offset 4
	offset uint64 // offset 8
}

// drmModeDestroyDumb has size 4 bytes.
type drmModeDestroyDumb struct {
	handle uint32
}

// drmModeGetPlaneRes has size 16 bytes.
type drmModeGetPlaneRes struct {
	planeIDPtr  uint64 // offset 0
	countPlanes uint32 // offset 8
	_           uint32 // offset 12
}

// drmModeGetPlane has size 32 bytes.
type drmModeGetPlane struct {
	planeID          uint32 // offset 0
	crtcID           uint32 // offset 4
	fbID             uint32 // offset 8
	possibleCrtcs    uint32 // offset 12
	gammaSize        uint32 // offset 16
	countFormatTypes uint32 // offset 20
	formatTypePtr    uint64 // offset 24
}

// drmModeFBCmd2 has size 104 bytes.
type drmModeFBCmd2 struct {
	fbID        uint32    // offset 0
	width       uint32    // offset 4
	height      uint32    // offset 8
	pixelFormat uint32    // offset 12
	flags       uint32    // offset 16
	handles     [4]uint32 // offset 20
	pitches     [4]uint32 // offset 36
	offsets     [4]uint32 // offset 52
	_           uint32    // offset 68
	modifier    [4]uint64 // offset 72
}
