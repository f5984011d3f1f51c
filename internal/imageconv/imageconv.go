// Package imageconv turns raw layer planes into standard library images and
// BMP files.
package imageconv

import (
	"errors"
	"fmt"
	"image"
	"io"

	"golang.org/x/image/bmp"

	"github.com/smazurov/mlcsnap/internal/format"
	"github.com/smazurov/mlcsnap/internal/layout"
)

// ErrPlanes is returned when the planes do not match the format or size.
var ErrPlanes = errors.New("planes do not match format")

// ToImage decodes width x height pixels of f from planes. RGB formats give
// an *image.NRGBA, YUV formats an *image.YCbCr.
func ToImage(f format.Format, width, height int, planes []layout.Plane) (image.Image, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", format.ErrUnsupported, int(f))
	}
	d := f.Descriptor()
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %s %dx%d", ErrPlanes, d.Name, width, height)
	}
	if len(planes) != d.Planes {
		return nil, fmt.Errorf("%w: %s needs %d planes, got %d", ErrPlanes, d.Name, d.Planes, len(planes))
	}
	if planes[0].Rows < height || planes[0].Pitch*planes[0].Rows > len(planes[0].Data) {
		return nil, fmt.Errorf("%w: %s plane 0 has %d rows for height %d", ErrPlanes, d.Name, planes[0].Rows, height)
	}

	if d.Family != format.FamilyRGB && d.Family != format.FamilyPackedYUV && planes[0].Pitch < width {
		return nil, fmt.Errorf("%w: %s luma pitch %d below width %d", ErrPlanes, d.Name, planes[0].Pitch, width)
	}

	switch d.Family {
	case format.FamilyRGB:
		return decodeRGB(d, width, height, planes[0])
	case format.FamilyPackedYUV:
		return decodePacked(d, width, height, planes[0])
	case format.FamilySemiPlanarYUV:
		return decodeSemiPlanar(d, width, height, planes)
	case format.FamilyPlanarYUV:
		return decodePlanar(d, width, height, planes)
	default:
		return nil, fmt.Errorf("%w: %s", format.ErrUnsupported, d.Name)
	}
}

// WriteBMP encodes img as an uncompressed BMP.
func WriteBMP(w io.Writer, img image.Image) error {
	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode bmp: %w", err)
	}
	return nil
}

func decodeRGB(d format.Descriptor, width, height int, p layout.Plane) (image.Image, error) {
	bytesPP := d.BPP / 8
	if width*bytesPP > p.Pitch {
		return nil, fmt.Errorf("%w: %s row of %d pixels exceeds pitch %d", ErrPlanes, d.Name, width, p.Pitch)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := p.Row(y)
		out := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			px := pixelWord(row[x*bytesPP:], bytesPP)
			o := out[x*4 : x*4+4 : x*4+4]
			o[0] = expand(px, d.R)
			o[1] = expand(px, d.G)
			o[2] = expand(px, d.B)
			if d.A.Bits == 0 {
				o[3] = 0xff
			} else {
				o[3] = expand(px, d.A)
			}
		}
	}
	return img, nil
}

// pixelWord reads a little-endian pixel of n bytes.
func pixelWord(b []byte, n int) uint32 {
	var v uint32
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint32(b[i])
	}
	return v
}

// expand scales a channel to 8 bits, replicating the top bits.
func expand(px uint32, c format.Channel) uint8 {
	if c.Bits == 0 {
		return 0
	}
	v := px >> c.Shift & (1<<c.Bits - 1)
	if c.Bits >= 8 {
		return uint8(v >> (c.Bits - 8))
	}
	return uint8(v * 255 / (1<<c.Bits - 1))
}

func subsampleRatio(d format.Descriptor) image.YCbCrSubsampleRatio {
	switch {
	case d.HSub == 2 && d.VSub == 2:
		return image.YCbCrSubsampleRatio420
	case d.HSub == 2:
		return image.YCbCrSubsampleRatio422
	default:
		return image.YCbCrSubsampleRatio444
	}
}

func newYCbCr(d format.Descriptor, width, height int, luma layout.Plane) *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, width, height), subsampleRatio(d))
	for y := 0; y < height; y++ {
		copy(img.Y[y*img.YStride:y*img.YStride+width], luma.Row(y))
	}
	return img
}

// chromaRow maps an output chroma row to a stored one. Stored chroma
// planes truncate odd heights, so the last row repeats.
func chromaRow(cy int, p layout.Plane) int {
	return min(cy, p.Rows-1)
}

func checkChroma(d format.Descriptor, i int, p layout.Plane, rowBytes int) error {
	if p.Rows < 1 || p.Pitch < rowBytes || p.Pitch*p.Rows > len(p.Data) {
		return fmt.Errorf("%w: %s chroma plane %d is %d rows at pitch %d", ErrPlanes, d.Name, i, p.Rows, p.Pitch)
	}
	return nil
}

func decodePacked(d format.Descriptor, width, height int, p layout.Plane) (image.Image, error) {
	if (width+1)/2*4 > p.Pitch {
		return nil, fmt.Errorf("%w: %s row of %d pixels exceeds pitch %d", ErrPlanes, d.Name, width, p.Pitch)
	}

	// Byte positions of Y0, Cb, Y1, Cr in a two pixel group.
	var y0, cb, y1, cr int
	switch d.Format {
	case format.YUYV:
		y0, cb, y1, cr = 0, 1, 2, 3
	case format.YVYU:
		y0, cr, y1, cb = 0, 1, 2, 3
	case format.UYVY:
		cb, y0, cr, y1 = 0, 1, 2, 3
	case format.VYUY:
		cr, y0, cb, y1 = 0, 1, 2, 3
	default:
		return nil, fmt.Errorf("%w: %s", format.ErrUnsupported, d.Name)
	}

	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)
	for y := 0; y < height; y++ {
		row := p.Row(y)
		for x := 0; x < width; x += 2 {
			g := row[x*2 : x*2+4]
			img.Y[y*img.YStride+x] = g[y0]
			if x+1 < width {
				img.Y[y*img.YStride+x+1] = g[y1]
			}
			ci := y*img.CStride + x/2
			img.Cb[ci] = g[cb]
			img.Cr[ci] = g[cr]
		}
	}
	return img, nil
}

func decodeSemiPlanar(d format.Descriptor, width, height int, planes []layout.Plane) (image.Image, error) {
	img := newYCbCr(d, width, height, planes[0])
	cw := (width + d.HSub - 1) / d.HSub
	ch := (height + d.VSub - 1) / d.VSub
	uv := planes[1]
	if err := checkChroma(d, 1, uv, cw*2); err != nil {
		return nil, err
	}

	cbOff, crOff := 0, 1
	if d.CrFirst {
		cbOff, crOff = 1, 0
	}
	for cy := 0; cy < ch; cy++ {
		row := uv.Row(chromaRow(cy, uv))
		for cx := 0; cx < cw; cx++ {
			img.Cb[cy*img.CStride+cx] = row[cx*2+cbOff]
			img.Cr[cy*img.CStride+cx] = row[cx*2+crOff]
		}
	}
	return img, nil
}

func decodePlanar(d format.Descriptor, width, height int, planes []layout.Plane) (image.Image, error) {
	img := newYCbCr(d, width, height, planes[0])
	cw := (width + d.HSub - 1) / d.HSub
	ch := (height + d.VSub - 1) / d.VSub

	cbPlane, crPlane := planes[1], planes[2]
	if d.CrFirst {
		cbPlane, crPlane = crPlane, cbPlane
	}
	if err := checkChroma(d, 1, planes[1], cw); err != nil {
		return nil, err
	}
	if err := checkChroma(d, 2, planes[2], cw); err != nil {
		return nil, err
	}

	for cy := 0; cy < ch; cy++ {
		o := cy * img.CStride
		copy(img.Cb[o:o+cw], cbPlane.Row(chromaRow(cy, cbPlane)))
		copy(img.Cr[o:o+cw], crPlane.Row(chromaRow(cy, crPlane)))
	}
	return img, nil
}
