package format

import (
	"fmt"

	"github.com/smazurov/mlcsnap/internal/mlc"
)

type hwKey struct {
	code mlc.HWFormat
	bpp  int
}

// RGB codes are looked up together with the layer bpp. The hardware reports
// the packed 24-bit codes for padded 32-bit layers too, so the same code
// appears twice.
var rgbFromHW = map[hwKey]Format{
	{mlc.RGBFmtR5G6B5, 16}:   RGB565,
	{mlc.RGBFmtB5G6R5, 16}:   BGR565,
	{mlc.RGBFmtX1R5G5B5, 16}: XRGB1555,
	{mlc.RGBFmtX1B5G5R5, 16}: XBGR1555,
	{mlc.RGBFmtA1R5G5B5, 16}: ARGB1555,
	{mlc.RGBFmtA1B5G5R5, 16}: ABGR1555,
	{mlc.RGBFmtX4R4G4B4, 16}: XRGB4444,
	{mlc.RGBFmtX4B4G4R4, 16}: XBGR4444,
	{mlc.RGBFmtA4R4G4B4, 16}: ARGB4444,
	{mlc.RGBFmtA4B4G4R4, 16}: ABGR4444,
	{mlc.RGBFmtR8G8B8, 24}:   RGB888,
	{mlc.RGBFmtB8G8R8, 24}:   BGR888,
	{mlc.RGBFmtR8G8B8, 32}:   XRGB8888,
	{mlc.RGBFmtB8G8R8, 32}:   XBGR8888,
	{mlc.RGBFmtA8R8G8B8, 32}: ARGB8888,
	{mlc.RGBFmtA8B8G8R8, 32}: ABGR8888,
}

var videoFromHW = map[mlc.HWFormat]Format{
	mlc.YUVFmt420:     YUV420,
	mlc.YUVFmt422:     YUV422,
	mlc.YUVFmt444:     YUV444,
	mlc.YUVFmtYUYV:    YUYV,
	mlc.YUVFmt422CbCr: NV16,
	mlc.YUVFmt420CbCr: NV12,
}

var toHW map[Format]hwKey

func init() {
	toHW = make(map[Format]hwKey, len(rgbFromHW)+len(videoFromHW))
	for k, f := range rgbFromHW {
		toHW[f] = k
	}
	for code, f := range videoFromHW {
		toHW[f] = hwKey{code: code, bpp: descriptors[f].BPP}
	}
}

// FromHardware translates a layer's hardware code and bits per pixel to a
// portable format. RGB and video layers share the low code values, so the
// layer decides which table applies. Video codes do not depend on bpp.
func FromHardware(layer mlc.Layer, code mlc.HWFormat, bpp int) (Format, error) {
	switch layer {
	case mlc.LayerVideo:
		if f, ok := videoFromHW[code]; ok {
			return f, nil
		}
		return Invalid, fmt.Errorf("%w: video code 0x%x", ErrUnsupported, uint32(code))
	case mlc.LayerRGB0, mlc.LayerRGB1:
		if f, ok := rgbFromHW[hwKey{code, bpp}]; ok {
			return f, nil
		}
		return Invalid, fmt.Errorf("%w: rgb code 0x%08x at %d bpp", ErrUnsupported, uint32(code), bpp)
	}
	return Invalid, fmt.Errorf("%w: %d", mlc.ErrInvalidLayer, int(layer))
}

// ToHardware returns the hardware code and bpp that FromHardware maps to f
// on the layer kind matching the format's family.
func ToHardware(f Format) (mlc.HWFormat, int, error) {
	if k, ok := toHW[f]; ok {
		return k.code, k.bpp, nil
	}
	return 0, 0, fmt.Errorf("%w: %s has no hardware code", ErrUnsupported, f)
}
