package mlc

import "fmt"

// HWFormat is a pixel format code as read from a layer control word, kept
// in place (not shifted) so it compares directly against the constants.
type HWFormat uint32

// RGB layer format codes (control word bits 16-31).
const (
	RGBFmtR5G6B5   HWFormat = 0x44320000
	RGBFmtB5G6R5   HWFormat = 0xC4320000
	RGBFmtX1R5G5B5 HWFormat = 0x43420000
	RGBFmtX1B5G5R5 HWFormat = 0xC3420000
	RGBFmtX4R4G4B4 HWFormat = 0x42110000
	RGBFmtX4B4G4R4 HWFormat = 0xC2110000
	RGBFmtX8R3G3B2 HWFormat = 0x41200000
	RGBFmtX8B3G3R2 HWFormat = 0xC1200000
	RGBFmtA1R5G5B5 HWFormat = 0x33420000
	RGBFmtA1B5G5R5 HWFormat = 0xB3420000
	RGBFmtA4R4G4B4 HWFormat = 0x22110000
	RGBFmtA4B4G4R4 HWFormat = 0xA2110000
	RGBFmtA8R3G3B2 HWFormat = 0x11200000
	RGBFmtA8B3G3R2 HWFormat = 0x91200000
	RGBFmtR8G8B8   HWFormat = 0x46530000
	RGBFmtB8G8R8   HWFormat = 0xC6530000
	RGBFmtA8R8G8B8 HWFormat = 0x06530000
	RGBFmtA8B8G8R8 HWFormat = 0x86530000
)

// Video layer format codes (control word bits 16-18).
const (
	YUVFmt420     HWFormat = 0 << 16
	YUVFmt422     HWFormat = 1 << 16
	YUVFmtYUYV    HWFormat = 2 << 16
	YUVFmt444     HWFormat = 3 << 16
	YUVFmt422CbCr HWFormat = 4 << 16
	YUVFmt420CbCr HWFormat = 5 << 16
)

var hwFormatNames = map[HWFormat]string{
	RGBFmtR5G6B5:   "R5G6B5",
	RGBFmtB5G6R5:   "B5G6R5",
	RGBFmtX1R5G5B5: "X1R5G5B5",
	RGBFmtX1B5G5R5: "X1B5G5R5",
	RGBFmtX4R4G4B4: "X4R4G4B4",
	RGBFmtX4B4G4R4: "X4B4G4R4",
	RGBFmtX8R3G3B2: "X8R3G3B2",
	RGBFmtX8B3G3R2: "X8B3G3R2",
	RGBFmtA1R5G5B5: "A1R5G5B5",
	RGBFmtA1B5G5R5: "A1B5G5R5",
	RGBFmtA4R4G4B4: "A4R4G4B4",
	RGBFmtA4B4G4R4: "A4B4G4R4",
	RGBFmtA8R3G3B2: "A8R3G3B2",
	RGBFmtA8B3G3R2: "A8B3G3R2",
	RGBFmtR8G8B8:   "R8G8B8",
	RGBFmtB8G8R8:   "B8G8R8",
	RGBFmtA8R8G8B8: "A8R8G8B8",
	RGBFmtA8B8G8R8: "A8B8G8R8",
}

var yuvFormatNames = map[HWFormat]string{
	YUVFmt420:     "YUV420",
	YUVFmt422:     "YUV422",
	YUVFmtYUYV:    "YUYV",
	YUVFmt444:     "YUV444",
	YUVFmt422CbCr: "YUV422_CBCR",
	YUVFmt420CbCr: "YUV420_CBCR",
}

// Name returns the hardware name of the code on the given layer. Video
// codes overlap the low RGB values, so the layer selects the table. At 32
// bpp the hardware reports packed 24-bit codes for padded formats, so those
// are named by their padded variant.
func (f HWFormat) Name(layer Layer, bpp int) string {
	if layer == LayerVideo {
		if name, ok := yuvFormatNames[f]; ok {
			return name
		}
		return fmt.Sprintf("YUV(0x%x)", uint32(f))
	}
	if bpp == 32 {
		switch f {
		case RGBFmtR8G8B8:
			return "X8R8G8B8"
		case RGBFmtB8G8R8:
			return "X8B8G8R8"
		}
	}
	if name, ok := hwFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("RGB(0x%08x)", uint32(f))
}
