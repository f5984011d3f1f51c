package mlc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Devices is the number of MLC instances on the SoC.
const Devices = 2

// Default physical base addresses of the MLC register windows.
const (
	PhysBaseMLC0 = 0xC0102000
	PhysBaseMLC1 = 0xC0102400
)

// RegistersSize is the byte size of one MLC register window image.
const RegistersSize = 0x3C4

// RGBLayer is the register block of an RGB layer.
type RGBLayer struct {
	LeftRight         uint32
	TopBottom         uint32
	InvalidLeftRight0 uint32
	InvalidTopBottom0 uint32
	InvalidLeftRight1 uint32
	InvalidTopBottom1 uint32
	Control           uint32
	HStride           int32
	VStride           int32
	TPColor           uint32
	InvColor          uint32
	Address           uint32
	Reserved0         uint32
}

// YUVLayer is the register block of the video layer.
type YUVLayer struct {
	LeftRight uint32
	TopBottom uint32
	Control   uint32
	VStride   uint32
	TPColor   uint32
	InvColor  uint32
	Address   uint32
	AddressCb uint32
	AddressCr uint32
	VStrideCb int32
	VStrideCr int32
	HScale    uint32
	VScale    uint32
	LuEnh     uint32
	ChEnh     [4]uint32
}

// RGB2Layer is the register block of the third RGB layer. It has no
// reserved trailing word.
type RGB2Layer struct {
	LeftRight         uint32
	TopBottom         uint32
	InvalidLeftRight0 uint32
	InvalidTopBottom0 uint32
	InvalidLeftRight1 uint32
	InvalidTopBottom1 uint32
	Control           uint32
	HStride           int32
	VStride           int32
	TPColor           uint32
	InvColor          uint32
	Address           uint32
}

// Registers is a byte-exact image of one MLC register window. Field order
// and widths follow the hardware layout; the struct has no implicit padding
// so it encodes to exactly RegistersSize bytes.
type Registers struct {
	ControlT   uint32
	ScreenSize uint32
	BGColor    uint32

	RGB  [2]RGBLayer
	YUV  YUVLayer
	RGB2 RGB2Layer

	PaletteTable2 uint32
	GammaCont     uint32
	RGammaTable   uint32
	GGammaTable   uint32
	BGammaTable   uint32
	YUVGammaRed   uint32
	YUVGammaGreen uint32
	YUVGammaBlue  uint32

	DimCtrl     uint32
	DimLUT0     uint32
	DimLUT1     uint32
	DimBusyFlag uint32
	DimPrdArrR0 uint32
	DimPrdArrR1 uint32
	DimRAM0Data uint32
	DimRAM1Data uint32
	Reserved2   [(0x3C0 - 0x12C) / 4]uint32
	ClockEnable uint32
}

// Word offsets inside the register window.
const (
	OffControlT   = 0x000
	OffScreenSize = 0x004
	OffBGColor    = 0x008
	offRGBBase    = 0x00C
	rgbBlockSize  = 0x034
	OffYUVBase    = 0x074
	OffRGB2Base   = 0x0BC
	OffGammaCont  = 0x0F0
)

// Offsets within an RGB layer block.
const (
	rgbOffLeftRight = 0x00
	rgbOffTopBottom = 0x04
	rgbOffControl   = 0x18
	rgbOffHStride   = 0x1C
	rgbOffVStride   = 0x20
	rgbOffTPColor   = 0x24
	rgbOffInvColor  = 0x28
	rgbOffAddress   = 0x2C
)

// Offsets within the YUV layer block.
const (
	yuvOffLeftRight = 0x00
	yuvOffTopBottom = 0x04
	yuvOffControl   = 0x08
	yuvOffVStride   = 0x0C
	yuvOffInvColor  = 0x14
	yuvOffLuEnh     = 0x34
	yuvOffChEnh     = 0x38
)

// RGBBase returns the window offset of RGB layer i.
func RGBBase(i int) int {
	return offRGBBase + i*rgbBlockSize
}

// MarshalBinary encodes the registers as little-endian words.
func (r *Registers) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(RegistersSize)
	if err := binary.Write(&buf, binary.LittleEndian, r); err != nil {
		return nil, fmt.Errorf("failed to encode registers: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a little-endian register image. data must hold at
// least RegistersSize bytes; trailing bytes are ignored.
func (r *Registers) UnmarshalBinary(data []byte) error {
	if len(data) < RegistersSize {
		return fmt.Errorf("register image too short: %d < %d bytes", len(data), RegistersSize)
	}
	if err := binary.Read(bytes.NewReader(data[:RegistersSize]), binary.LittleEndian, r); err != nil {
		return fmt.Errorf("failed to decode registers: %w", err)
	}
	return nil
}

// Equal reports whether both images are byte-identical.
func (r *Registers) Equal(o *Registers) bool {
	return *r == *o
}
