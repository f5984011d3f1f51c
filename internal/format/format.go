// Package format is the closed set of portable pixel formats the tool can
// lay out and display, identified by DRM fourcc codes, and their
// translation to and from MLC hardware format codes.
package format

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when a hardware or portable code has no
// counterpart. Callers abort instead of substituting a default.
var ErrUnsupported = errors.New("unsupported pixel format")

// FourCC is a DRM pixel format code.
type FourCC uint32

func fourcc(a, b, c, d byte) FourCC {
	return FourCC(a) | FourCC(b)<<8 | FourCC(c)<<16 | FourCC(d)<<24
}

// String returns the four characters of the code.
func (f FourCC) String() string {
	b := []byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	for i, c := range b {
		if c < 0x20 || c > 0x7E {
			b[i] = '?'
		}
	}
	return string(b)
}

// Format enumerates the supported portable formats.
type Format int

const (
	Invalid Format = iota

	// Packed YUV 4:2:2.
	YUYV
	YVYU
	UYVY
	VYUY

	// Semi-planar YUV.
	NV12
	NV21
	NV16
	NV61

	// Planar YUV.
	YUV420
	YVU420
	YUV422
	YVU422
	YUV444
	YVU444

	// RGB 16 bit.
	RGB565
	BGR565
	XRGB1555
	XBGR1555
	ARGB1555
	ABGR1555
	XRGB4444
	XBGR4444
	ARGB4444
	ABGR4444

	// RGB 24 bit.
	RGB888
	BGR888

	// RGB 32 bit.
	XRGB8888
	XBGR8888
	ARGB8888
	ABGR8888

	numFormats
)

// Family groups formats by how their planes are arranged.
type Family int

const (
	FamilyRGB Family = iota
	FamilyPackedYUV
	FamilySemiPlanarYUV
	FamilyPlanarYUV
)

func (f Family) String() string {
	switch f {
	case FamilyRGB:
		return "rgb"
	case FamilyPackedYUV:
		return "packed-yuv"
	case FamilySemiPlanarYUV:
		return "semi-planar-yuv"
	case FamilyPlanarYUV:
		return "planar-yuv"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Channel is the position of one color component inside an RGB pixel word.
type Channel struct {
	Bits  uint
	Shift uint
}

// Descriptor holds the static properties of a format.
type Descriptor struct {
	Format Format
	FourCC FourCC
	Name   string
	Family Family

	// BPP is bits per pixel for packed formats and bits per luma sample for
	// (semi-)planar YUV.
	BPP    int
	Planes int
	HSub   int
	VSub   int

	// CrFirst is set when the V (Cr) component precedes U (Cb).
	CrFirst bool

	// RGB channel layout; zero for YUV formats.
	R, G, B, A Channel
}

func rgb(f Format, cc FourCC, name string, bpp int, r, g, b, a Channel) Descriptor {
	return Descriptor{
		Format: f, FourCC: cc, Name: name, Family: FamilyRGB,
		BPP: bpp, Planes: 1, HSub: 1, VSub: 1,
		R: r, G: g, B: b, A: a,
	}
}

func yuv(f Format, cc FourCC, name string, fam Family, bpp, planes, hsub, vsub int, crFirst bool) Descriptor {
	return Descriptor{
		Format: f, FourCC: cc, Name: name, Family: fam,
		BPP: bpp, Planes: planes, HSub: hsub, VSub: vsub,
		CrFirst: crFirst,
	}
}

var descriptors = [numFormats]Descriptor{
	YUYV: yuv(YUYV, fourcc('Y', 'U', 'Y', 'V'), "YUYV", FamilyPackedYUV, 16, 1, 2, 1, false),
	YVYU: yuv(YVYU, fourcc('Y', 'V', 'Y', 'U'), "YVYU", FamilyPackedYUV, 16, 1, 2, 1, true),
	UYVY: yuv(UYVY, fourcc('U', 'Y', 'V', 'Y'), "UYVY", FamilyPackedYUV, 16, 1, 2, 1, false),
	VYUY: yuv(VYUY, fourcc('V', 'Y', 'U', 'Y'), "VYUY", FamilyPackedYUV, 16, 1, 2, 1, true),

	NV12: yuv(NV12, fourcc('N', 'V', '1', '2'), "NV12", FamilySemiPlanarYUV, 8, 2, 2, 2, false),
	NV21: yuv(NV21, fourcc('N', 'V', '2', '1'), "NV21", FamilySemiPlanarYUV, 8, 2, 2, 2, true),
	NV16: yuv(NV16, fourcc('N', 'V', '1', '6'), "NV16", FamilySemiPlanarYUV, 8, 2, 2, 1, false),
	NV61: yuv(NV61, fourcc('N', 'V', '6', '1'), "NV61", FamilySemiPlanarYUV, 8, 2, 2, 1, true),

	YUV420: yuv(YUV420, fourcc('Y', 'U', '1', '2'), "YUV420", FamilyPlanarYUV, 8, 3, 2, 2, false),
	YVU420: yuv(YVU420, fourcc('Y', 'V', '1', '2'), "YVU420", FamilyPlanarYUV, 8, 3, 2, 2, true),
	YUV422: yuv(YUV422, fourcc('Y', 'U', '1', '6'), "YUV422", FamilyPlanarYUV, 8, 3, 2, 1, false),
	YVU422: yuv(YVU422, fourcc('Y', 'V', '1', '6'), "YVU422", FamilyPlanarYUV, 8, 3, 2, 1, true),
	YUV444: yuv(YUV444, fourcc('Y', 'U', '2', '4'), "YUV444", FamilyPlanarYUV, 8, 3, 1, 1, false),
	YVU444: yuv(YVU444, fourcc('Y', 'V', '2', '4'), "YVU444", FamilyPlanarYUV, 8, 3, 1, 1, true),

	RGB565:   rgb(RGB565, fourcc('R', 'G', '1', '6'), "RGB565", 16, Channel{5, 11}, Channel{6, 5}, Channel{5, 0}, Channel{}),
	BGR565:   rgb(BGR565, fourcc('B', 'G', '1', '6'), "BGR565", 16, Channel{5, 0}, Channel{6, 5}, Channel{5, 11}, Channel{}),
	XRGB1555: rgb(XRGB1555, fourcc('X', 'R', '1', '5'), "XRGB1555", 16, Channel{5, 10}, Channel{5, 5}, Channel{5, 0}, Channel{}),
	XBGR1555: rgb(XBGR1555, fourcc('X', 'B', '1', '5'), "XBGR1555", 16, Channel{5, 0}, Channel{5, 5}, Channel{5, 10}, Channel{}),
	ARGB1555: rgb(ARGB1555, fourcc('A', 'R', '1', '5'), "ARGB1555", 16, Channel{5, 10}, Channel{5, 5}, Channel{5, 0}, Channel{1, 15}),
	ABGR1555: rgb(ABGR1555, fourcc('A', 'B', '1', '5'), "ABGR1555", 16, Channel{5, 0}, Channel{5, 5}, Channel{5, 10}, Channel{1, 15}),
	XRGB4444: rgb(XRGB4444, fourcc('X', 'R', '1', '2'), "XRGB4444", 16, Channel{4, 8}, Channel{4, 4}, Channel{4, 0}, Channel{}),
	XBGR4444: rgb(XBGR4444, fourcc('X', 'B', '1', '2'), "XBGR4444", 16, Channel{4, 0}, Channel{4, 4}, Channel{4, 8}, Channel{}),
	ARGB4444: rgb(ARGB4444, fourcc('A', 'R', '1', '2'), "ARGB4444", 16, Channel{4, 8}, Channel{4, 4}, Channel{4, 0}, Channel{4, 12}),
	ABGR4444: rgb(ABGR4444, fourcc('A', 'B', '1', '2'), "ABGR4444", 16, Channel{4, 0}, Channel{4, 4}, Channel{4, 8}, Channel{4, 12}),

	RGB888: rgb(RGB888, fourcc('R', 'G', '2', '4'), "RGB888", 24, Channel{8, 16}, Channel{8, 8}, Channel{8, 0}, Channel{}),
	BGR888: rgb(BGR888, fourcc('B', 'G', '2', '4'), "BGR888", 24, Channel{8, 0}, Channel{8, 8}, Channel{8, 16}, Channel{}),

	XRGB8888: rgb(XRGB8888, fourcc('X', 'R', '2', '4'), "XRGB8888", 32, Channel{8, 16}, Channel{8, 8}, Channel{8, 0}, Channel{}),
	XBGR8888: rgb(XBGR8888, fourcc('X', 'B', '2', '4'), "XBGR8888", 32, Channel{8, 0}, Channel{8, 8}, Channel{8, 16}, Channel{}),
	ARGB8888: rgb(ARGB8888, fourcc('A', 'R', '2', '4'), "ARGB8888", 32, Channel{8, 16}, Channel{8, 8}, Channel{8, 0}, Channel{8, 24}),
	ABGR8888: rgb(ABGR8888, fourcc('A', 'B', '2', '4'), "ABGR8888", 32, Channel{8, 0}, Channel{8, 8}, Channel{8, 16}, Channel{8, 24}),
}

// All returns every supported format in table order.
func All() []Format {
	out := make([]Format, 0, numFormats-1)
	for f := Invalid + 1; f < numFormats; f++ {
		out = append(out, f)
	}
	return out
}

// Valid reports whether f is a member of the enumeration.
func (f Format) Valid() bool {
	return f > Invalid && f < numFormats
}

// Descriptor returns the static description of f. It panics on values
// outside the enumeration.
func (f Format) Descriptor() Descriptor {
	if !f.Valid() {
		panic(fmt.Sprintf("format: invalid format %d", int(f)))
	}
	return descriptors[f]
}

// FourCC returns the DRM code of f, or 0 for Invalid.
func (f Format) FourCC() FourCC {
	if !f.Valid() {
		return 0
	}
	return descriptors[f].FourCC
}

func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return descriptors[f].Name
}

// Lookup returns the format with DRM code cc.
func Lookup(cc FourCC) (Format, error) {
	for f := Invalid + 1; f < numFormats; f++ {
		if descriptors[f].FourCC == cc {
			return f, nil
		}
	}
	return Invalid, fmt.Errorf("%w: fourcc %s (0x%08x)", ErrUnsupported, cc, uint32(cc))
}
