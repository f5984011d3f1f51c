package mlc

import (
	"errors"
	"fmt"
)

// ErrVideoFormat is returned for video format codes the layer cannot fetch.
var ErrVideoFormat = errors.New("unknown video format code")

// Limits on a decoded plane. Register images outside them are corrupt, and
// keeping Pitch*Rows below 2^31 lets sizes stay in int on 32-bit targets.
const (
	MaxPitch = 0xFFFF
	MaxRows  = 4096
)

// PlaneSpec describes one plane of a layer's framebuffer as the hardware
// fetches it: physical address, line pitch in bytes and number of rows.
type PlaneSpec struct {
	Address uint32
	Pitch   int
	Rows    int
}

// Size is the number of bytes the plane spans.
func (p PlaneSpec) Size() int {
	return p.Pitch * p.Rows
}

// PayloadSize returns the total byte size of planes written back to back.
func PayloadSize(planes []PlaneSpec) int {
	n := 0
	for _, p := range planes {
		n += p.Size()
	}
	return n
}

// PlaneSpecs returns the planes of layer in capture order.
func PlaneSpecs(regs *Registers, layer Layer) ([]PlaneSpec, error) {
	st, err := Decode(regs, layer)
	if err != nil {
		return nil, err
	}
	return st.Planes, nil
}

func videoPlanes(r *YUVLayer, format HWFormat, rows int) ([]PlaneSpec, error) {
	luma := PlaneSpec{Address: r.Address, Pitch: int(r.VStride), Rows: rows}
	cb := PlaneSpec{Address: r.AddressCb, Pitch: int(r.VStrideCb), Rows: rows}
	cr := PlaneSpec{Address: r.AddressCr, Pitch: int(r.VStrideCr), Rows: rows}

	switch format {
	case YUVFmtYUYV:
		return checkPlanes([]PlaneSpec{luma})
	case YUVFmt420:
		cb.Rows, cr.Rows = rows/2, rows/2
		return checkPlanes([]PlaneSpec{luma, cb, cr})
	case YUVFmt422, YUVFmt444:
		return checkPlanes([]PlaneSpec{luma, cb, cr})
	case YUVFmt420CbCr:
		cb.Rows = rows / 2
		return checkPlanes([]PlaneSpec{luma, cb})
	case YUVFmt422CbCr:
		return checkPlanes([]PlaneSpec{luma, cb})
	default:
		return nil, fmt.Errorf("%w: 0x%x", ErrVideoFormat, uint32(format))
	}
}

func checkPlanes(planes []PlaneSpec) ([]PlaneSpec, error) {
	for i, p := range planes {
		if p.Pitch <= 0 || p.Pitch > MaxPitch || p.Rows <= 0 || p.Rows > MaxRows {
			return nil, fmt.Errorf("%w: plane %d pitch %d rows %d", ErrGeometry, i, p.Pitch, p.Rows)
		}
	}
	return planes, nil
}
