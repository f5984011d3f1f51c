package mlc

import (
	"fmt"
	"strconv"
)

// ScaleDenominator is the fixed-point denominator of the video layer scale
// factors; a factor equal to it means 1.0.
const ScaleDenominator = 2048

// Layer selects one of the MLC layer sources.
type Layer int

// Layers.
const (
	LayerRGB0  Layer = 0
	LayerRGB1  Layer = 1
	LayerVideo Layer = 2
)

// Layers is the number of addressable layers per device.
const Layers = 3

func (l Layer) String() string {
	switch l {
	case LayerRGB0:
		return "rgb0"
	case LayerRGB1:
		return "rgb1"
	case LayerVideo:
		return "video"
	default:
		return "layer" + strconv.Itoa(int(l))
	}
}

// Valid reports whether l names an existing layer.
func (l Layer) Valid() bool {
	return l >= LayerRGB0 && l <= LayerVideo
}

// Scale is a decoded scale register.
type Scale struct {
	Factor  uint32
	Enabled bool
}

// DecodeScale splits a scale register into factor and enable state. Scaling
// is enabled only when both enable bits are set.
func DecodeScale(word uint32) Scale {
	return Scale{
		Factor:  FieldScaleFactor.Get(word),
		Enabled: FieldScaleEnb.Get(word) == 0x3,
	}
}

// Apply returns factor*nominal/ScaleDenominator, truncated, or nominal when
// the scaler is disabled.
func (s Scale) Apply(nominal int) int {
	if !s.Enabled {
		return nominal
	}
	return int(uint64(s.Factor) * uint64(nominal) / ScaleDenominator)
}

// Geometry is the decoded placement and source size of a layer.
type Geometry struct {
	// On-screen position and size.
	X, Y          int
	Width, Height int

	// Size of the source image in the layer's buffer.
	SrcWidth, SrcHeight int

	HScale, VScale Scale
}

// ScaledWidth is the width derived from the horizontal scale register
// instead of the stride. It is reported for diagnostics only.
func (g Geometry) ScaledWidth() int {
	return g.HScale.Apply(g.Width)
}

// LayerState is everything the pipeline needs to know about one layer,
// decoded from a register image.
type LayerState struct {
	Layer    Layer
	Enabled  bool
	Format   HWFormat
	BPP      int
	Geometry Geometry
	Planes   []PlaneSpec
}

// Decode derives the layer state of layer from regs.
func Decode(regs *Registers, layer Layer) (*LayerState, error) {
	switch layer {
	case LayerRGB0, LayerRGB1:
		return decodeRGB(&regs.RGB[layer], layer)
	case LayerVideo:
		return decodeYUV(&regs.YUV)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidLayer, int(layer))
	}
}

func decodeRGB(r *RGBLayer, layer Layer) (*LayerState, error) {
	if r.HStride <= 0 || r.VStride <= 0 || r.VStride > MaxPitch {
		return nil, fmt.Errorf("%w: %s stride h:%d v:%d", ErrGeometry, layer, r.HStride, r.VStride)
	}

	g := Geometry{
		X:      Origin(r.LeftRight),
		Y:      Origin(r.TopBottom),
		Width:  Extent(r.LeftRight),
		Height: Extent(r.TopBottom),
	}
	g.SrcWidth = int(r.VStride / r.HStride)
	g.SrcHeight = g.Height
	if err := checkSize(layer, g); err != nil {
		return nil, err
	}
	// The RGB layers have no scaler, the source is shown 1:1.
	g.Width = g.SrcWidth

	st := &LayerState{
		Layer:    layer,
		Enabled:  FieldLayerEnb.Get(r.Control) == 1,
		Format:   HWFormat(r.Control & FieldRGBFormat.Mask()),
		BPP:      int(r.HStride) * 8,
		Geometry: g,
	}
	planes, err := checkPlanes([]PlaneSpec{{
		Address: r.Address,
		Pitch:   int(r.VStride),
		Rows:    g.SrcHeight,
	}})
	if err != nil {
		return nil, err
	}
	st.Planes = planes
	return st, nil
}

func decodeYUV(r *YUVLayer) (*LayerState, error) {
	format := HWFormat(r.Control & FieldYUVFormat.Mask())
	if r.VStride == 0 || r.VStride > MaxPitch {
		return nil, fmt.Errorf("%w: video luma stride %d", ErrGeometry, r.VStride)
	}

	div := 1
	if format == YUVFmtYUYV {
		div = 2
	}

	g := Geometry{
		X:      Origin(r.LeftRight),
		Y:      Origin(r.TopBottom),
		Width:  Extent(r.LeftRight),
		Height: Extent(r.TopBottom),
		HScale: DecodeScale(r.HScale),
		VScale: DecodeScale(r.VScale),
	}
	g.SrcWidth = int(r.VStride) / div
	g.SrcHeight = g.VScale.Apply(g.Height)
	if err := checkSize(LayerVideo, g); err != nil {
		return nil, err
	}

	planes, err := videoPlanes(r, format, g.SrcHeight)
	if err != nil {
		return nil, err
	}

	return &LayerState{
		Layer:    LayerVideo,
		Enabled:  FieldLayerEnb.Get(r.Control) == 1,
		Format:   format,
		BPP:      8,
		Geometry: g,
		Planes:   planes,
	}, nil
}

func checkSize(layer Layer, g Geometry) error {
	if g.Width < 1 || g.Height < 1 || g.SrcWidth < 1 || g.SrcHeight < 1 {
		return fmt.Errorf("%w: %s %dx%d (source %dx%d)",
			ErrGeometry, layer, g.Width, g.Height, g.SrcWidth, g.SrcHeight)
	}
	return nil
}
