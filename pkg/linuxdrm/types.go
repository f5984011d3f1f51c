package linuxdrm

import "bytes"

// Client capabilities.
const (
	ClientCapStereo3D        = 1
	ClientCapUniversalPlanes = 2
	ClientCapAtomic          = 3
)

// Connector states.
const (
	Connected         = 1
	Disconnected      = 2
	UnknownConnection = 3
)

// ModeInfo is a display mode, laid out as struct drm_mode_modeinfo.
type ModeInfo struct {
	Clock      uint32
	HDisplay   uint16
	HSyncStart uint16
	HSyncEnd   uint16
	HTotal     uint16
	HSkew      uint16
	VDisplay   uint16
	VSyncStart uint16
	VSyncEnd   uint16
	VTotal     uint16
	VScan      uint16
	VRefresh   uint32
	Flags      uint32
	Type       uint32
	Name       [32]byte
}

// ModeName returns the NUL terminated mode name.
func (m *ModeInfo) ModeName() string {
	if i := bytes.IndexByte(m.Name[:], 0); i >= 0 {
		return string(m.Name[:i])
	}
	return string(m.Name[:])
}

// Version identifies the driver behind a card.
type Version struct {
	Major, Minor, Patch int
	Name                string
	Date                string
	Desc                string
}

// Crtc is a scanout engine.
type Crtc struct {
	ID        uint32
	FBID      uint32
	X, Y      uint32
	GammaSize uint32
	ModeValid bool
	Mode      ModeInfo
}

// Encoder routes a crtc to connectors.
type Encoder struct {
	ID             uint32
	Type           uint32
	CrtcID         uint32
	PossibleCrtcs  uint32
	PossibleClones uint32
}

// Connector is a display output.
type Connector struct {
	ID         uint32
	EncoderID  uint32
	Type       uint32
	TypeID     uint32
	Connection uint32
	MMWidth    uint32
	MMHeight   uint32
	Subpixel   uint32
	Modes      []ModeInfo
	Encoders   []uint32
}

// Plane is a hardware layer that scans out a framebuffer on a crtc.
type Plane struct {
	ID            uint32
	CrtcID        uint32
	FBID          uint32
	PossibleCrtcs uint32
	GammaSize     uint32
	Formats       []uint32
}

// SupportsFormat reports whether fourcc is in the plane's format list.
func (p *Plane) SupportsFormat(fourcc uint32) bool {
	for _, f := range p.Formats {
		if f == fourcc {
			return true
		}
	}
	return false
}

// CompatibleWith reports whether the plane can be used on the crtc at index
// pipe of the crtc list.
func (p *Plane) CompatibleWith(pipe int) bool {
	return pipe >= 0 && pipe < 32 && p.PossibleCrtcs&(1<<uint(pipe)) != 0
}

// Resources is a snapshot of every mode object of a card, in kernel
// enumeration order.
type Resources struct {
	MinWidth, MaxWidth   uint32
	MinHeight, MaxHeight uint32

	Crtcs      []Crtc
	Encoders   []Encoder
	Connectors []Connector
	Planes     []Plane
}

// CrtcIndex returns the position of crtc id in Crtcs, or -1.
func (r *Resources) CrtcIndex(id uint32) int {
	for i := range r.Crtcs {
		if r.Crtcs[i].ID == id {
			return i
		}
	}
	return -1
}

// DumbBuffer is a CPU-mappable scanout buffer.
type DumbBuffer struct {
	Handle uint32
	Pitch  uint32
	Size   uint64
}

// FB2 describes a multi-planar framebuffer for AddFB2.
type FB2 struct {
	Width, Height uint32
	PixelFormat   uint32
	Flags         uint32
	Handles       [4]uint32
	Pitches       [4]uint32
	Offsets       [4]uint32
	Modifier      [4]uint64
}

// PlaneConfig is the SetPlane request, laid out as struct
// drm_mode_set_plane. Source coordinates are 16.16 fixed point, crtc
// coordinates are pixels.
type PlaneConfig struct {
	PlaneID uint32
	CrtcID  uint32
	FBID    uint32
	Flags   uint32
	CrtcX   int32
	CrtcY   int32
	CrtcW   uint32
	CrtcH   uint32
	SrcX    uint32
	SrcY    uint32
	SrcH    uint32
	SrcW    uint32
}

// CrtcConfig is the SetCrtc request.
type CrtcConfig struct {
	CrtcID     uint32
	FBID       uint32
	X, Y       uint32
	Connectors []uint32
	Mode       *ModeInfo
}
