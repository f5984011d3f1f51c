package mlc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func coords(start, end uint32) uint32 {
	return start<<16 | end
}

func TestFieldRoundTrip(t *testing.T) {
	fields := []Field{
		FieldRight, FieldLeft, FieldOrigin, FieldPriority,
		FieldRGBFormat, FieldYUVFormat, FieldScaleFactor, FieldScaleEnb,
		{Pos: 0, Width: 32},
	}

	for _, f := range fields {
		limit := uint64(1) << f.Width
		step := limit/257 + 1
		for v := uint64(0); v < limit; v += step {
			for _, word := range []uint32{0, 0xFFFFFFFF, 0xA5A5A5A5} {
				got := f.Get(f.Set(word, uint32(v)))
				if got != uint32(v) {
					t.Fatalf("Field{%d,%d}: Get(Set(0x%x, %d)) = %d", f.Pos, f.Width, word, v, got)
				}
			}
		}
		// Last value of the range.
		if got := f.Get(f.Set(0, uint32(limit-1))); got != uint32(limit-1) {
			t.Errorf("Field{%d,%d}: max value round trip got %d, want %d", f.Pos, f.Width, got, limit-1)
		}
	}
}

func TestFieldSetPreservesOtherBits(t *testing.T) {
	word := uint32(0xFFFFFFFF)
	got := FieldPriority.Set(word, 0)
	if got != 0xFFFFFCFF {
		t.Errorf("Set() = 0x%08x, want 0xfffffcff", got)
	}

	// Bits of the value above the field width are dropped.
	got = FieldTPEnb.Set(0, 0x3)
	if got != 0x1 {
		t.Errorf("Set() with oversized value = 0x%x, want 0x1", got)
	}
}

func TestExtentUsesHardwareWidths(t *testing.T) {
	// 1920 needs all 11 bits of the right coordinate.
	if got := Extent(coords(0, 1919)); got != 1920 {
		t.Errorf("Extent() = %d, want 1920", got)
	}
	// Bit 27 belongs to the 12-bit origin but not to the 11-bit left edge.
	word := uint32(1<<27 | 10<<16 | 109)
	if got := Extent(word); got != 100 {
		t.Errorf("Extent() = %d, want 100", got)
	}
	if got := Origin(word); got != 2048+10 {
		t.Errorf("Origin() = %d, want %d", got, 2048+10)
	}
}

func TestScale(t *testing.T) {
	tests := []struct {
		name    string
		word    uint32
		nominal int
		want    int
	}{
		{"unity", 3<<28 | ScaleDenominator, 1080, 1080},
		{"half", 3<<28 | ScaleDenominator/2, 1080, 540},
		{"truncates", 3<<28 | 1000, 3, 1},
		{"disabled", 1000, 480, 480},
		{"one enable bit", 1<<28 | 1000, 480, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeScale(tt.word).Apply(tt.nominal); got != tt.want {
				t.Errorf("Apply(%d) = %d, want %d", tt.nominal, got, tt.want)
			}
		})
	}
}

func TestFormatNameFollowsLayer(t *testing.T) {
	tests := []struct {
		layer Layer
		code  HWFormat
		bpp   int
		want  string
	}{
		{LayerVideo, YUVFmt420, 8, "YUV420"},
		{LayerVideo, YUVFmtYUYV, 8, "YUYV"},
		{LayerRGB0, HWFormat(0), 32, "RGB(0x00000000)"},
		{LayerRGB1, HWFormat(2 << 16), 16, "RGB(0x00020000)"},
		{LayerRGB0, RGBFmtR8G8B8, 32, "X8R8G8B8"},
		{LayerRGB0, RGBFmtR8G8B8, 24, "R8G8B8"},
		{LayerVideo, RGBFmtR5G6B5, 16, "YUV(0x44320000)"},
	}

	for _, tt := range tests {
		if got := tt.code.Name(tt.layer, tt.bpp); got != tt.want {
			t.Errorf("Name(%s, 0x%x, %d) = %q, want %q", tt.layer, uint32(tt.code), tt.bpp, got, tt.want)
		}
	}
}

func TestRegistersLayout(t *testing.T) {
	regs := &Registers{}
	regs.ControlT = 0x11111111
	regs.BGColor = 0x22222222
	regs.RGB[1].Control = 0x33333333
	regs.RGB[1].Address = 0x44444444
	regs.YUV.LeftRight = 0x55555555
	regs.YUV.ChEnh[3] = 0x66666666
	regs.RGB2.Address = 0x77777777
	regs.GammaCont = 0x88888888
	regs.ClockEnable = 0x99999999

	data, err := regs.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() failed: %v", err)
	}
	if len(data) != RegistersSize {
		t.Fatalf("Expected %d bytes, got %d", RegistersSize, len(data))
	}

	checks := []struct {
		name string
		off  int
		want uint32
	}{
		{"controlt", OffControlT, 0x11111111},
		{"bgcolor", OffBGColor, 0x22222222},
		{"rgb1 control", RGBBase(1) + rgbOffControl, 0x33333333},
		{"rgb1 address", RGBBase(1) + rgbOffAddress, 0x44444444},
		{"yuv leftright", OffYUVBase + yuvOffLeftRight, 0x55555555},
		{"yuv chenh3", OffYUVBase + yuvOffChEnh + 12, 0x66666666},
		{"rgb2 address", OffRGB2Base + rgbOffAddress, 0x77777777},
		{"gammacont", OffGammaCont, 0x88888888},
		{"clockenable", 0x3C0, 0x99999999},
	}
	for _, c := range checks {
		if got := binary.LittleEndian.Uint32(data[c.off:]); got != c.want {
			t.Errorf("%s at 0x%03x = 0x%08x, want 0x%08x", c.name, c.off, got, c.want)
		}
	}

	var back Registers
	if err := back.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary() failed: %v", err)
	}
	if !back.Equal(regs) {
		t.Error("Decoded registers differ from the original")
	}

	if err := back.UnmarshalBinary(data[:RegistersSize-1]); err == nil {
		t.Error("Expected error for short register image")
	}
}

func TestDecodeRGB(t *testing.T) {
	regs := &Registers{}
	regs.RGB[1] = RGBLayer{
		LeftRight: coords(16, 815),
		TopBottom: coords(8, 487),
		Control:   uint32(RGBFmtR8G8B8) | FieldLayerEnb.Mask(),
		HStride:   4,
		VStride:   3328,
		Address:   0x70000000,
	}

	st, err := Decode(regs, LayerRGB1)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	if !st.Enabled {
		t.Error("Expected layer to be enabled")
	}
	if st.Format != RGBFmtR8G8B8 || st.BPP != 32 {
		t.Errorf("Format = %s/%d, want R8G8B8/32", st.Format.Name(st.Layer, st.BPP), st.BPP)
	}
	g := st.Geometry
	if g.X != 16 || g.Y != 8 {
		t.Errorf("Origin = %d,%d, want 16,8", g.X, g.Y)
	}
	if g.SrcWidth != 832 || g.SrcHeight != 480 {
		t.Errorf("Source = %dx%d, want 832x480", g.SrcWidth, g.SrcHeight)
	}
	want := []PlaneSpec{{Address: 0x70000000, Pitch: 3328, Rows: 480}}
	if len(st.Planes) != 1 || st.Planes[0] != want[0] {
		t.Errorf("Planes = %+v, want %+v", st.Planes, want)
	}
}

func TestDecodeYUV(t *testing.T) {
	base := YUVLayer{
		LeftRight: coords(0, 1279),
		TopBottom: coords(0, 719),
		VStride:   1280,
		Address:   0x60000000,
		AddressCb: 0x60100000,
		AddressCr: 0x60200000,
		VStrideCb: 640,
		VStrideCr: 640,
		HScale:    3<<28 | 1024,
		VScale:    3<<28 | 1024,
	}

	tests := []struct {
		name      string
		format    HWFormat
		srcWidth  int
		srcHeight int
		planes    []PlaneSpec
	}{
		{
			name:      "yuyv",
			format:    YUVFmtYUYV,
			srcWidth:  640,
			srcHeight: 360,
			planes:    []PlaneSpec{{0x60000000, 1280, 360}},
		},
		{
			name:      "planar 420",
			format:    YUVFmt420,
			srcWidth:  1280,
			srcHeight: 360,
			planes: []PlaneSpec{
				{0x60000000, 1280, 360},
				{0x60100000, 640, 180},
				{0x60200000, 640, 180},
			},
		},
		{
			name:      "planar 422",
			format:    YUVFmt422,
			srcWidth:  1280,
			srcHeight: 360,
			planes: []PlaneSpec{
				{0x60000000, 1280, 360},
				{0x60100000, 640, 360},
				{0x60200000, 640, 360},
			},
		},
		{
			name:      "semi-planar 420",
			format:    YUVFmt420CbCr,
			srcWidth:  1280,
			srcHeight: 360,
			planes: []PlaneSpec{
				{0x60000000, 1280, 360},
				{0x60100000, 640, 180},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regs := &Registers{YUV: base}
			regs.YUV.Control = uint32(tt.format) | FieldLayerEnb.Mask()

			st, err := Decode(regs, LayerVideo)
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}
			if st.Format != tt.format {
				t.Errorf("Format = 0x%x, want 0x%x", uint32(st.Format), uint32(tt.format))
			}
			g := st.Geometry
			if g.Width != 1280 || g.Height != 720 {
				t.Errorf("On-screen size = %dx%d, want 1280x720", g.Width, g.Height)
			}
			if g.SrcWidth != tt.srcWidth || g.SrcHeight != tt.srcHeight {
				t.Errorf("Source = %dx%d, want %dx%d", g.SrcWidth, g.SrcHeight, tt.srcWidth, tt.srcHeight)
			}
			if len(st.Planes) != len(tt.planes) {
				t.Fatalf("Expected %d planes, got %d", len(tt.planes), len(st.Planes))
			}
			for i := range tt.planes {
				if st.Planes[i] != tt.planes[i] {
					t.Errorf("Plane %d = %+v, want %+v", i, st.Planes[i], tt.planes[i])
				}
			}
		})
	}
}

func TestDecodeRejectsEmptyGeometry(t *testing.T) {
	tests := []struct {
		name  string
		layer Layer
		regs  *Registers
	}{
		{
			name:  "zero registers",
			layer: LayerRGB0,
			regs:  &Registers{},
		},
		{
			name:  "inverted extent",
			layer: LayerRGB0,
			regs: &Registers{RGB: [2]RGBLayer{{
				LeftRight: coords(100, 10),
				TopBottom: coords(0, 9),
				HStride:   2,
				VStride:   200,
			}}},
		},
		{
			name:  "rgb pitch beyond limit",
			layer: LayerRGB1,
			regs: &Registers{RGB: [2]RGBLayer{{}, {
				LeftRight: coords(0, 9),
				TopBottom: coords(0, 9),
				HStride:   4,
				VStride:   0x7FFFFFFC,
			}}},
		},
		{
			name:  "video luma pitch beyond limit",
			layer: LayerVideo,
			regs: &Registers{YUV: YUVLayer{
				Control:   uint32(YUVFmtYUYV),
				LeftRight: coords(0, 9),
				TopBottom: coords(0, 9),
				VStride:   0x80000000,
			}},
		},
		{
			name:  "video chroma pitch beyond limit",
			layer: LayerVideo,
			regs: &Registers{YUV: YUVLayer{
				Control:   uint32(YUVFmt420CbCr),
				LeftRight: coords(0, 9),
				TopBottom: coords(0, 9),
				VStride:   16,
				VStrideCb: MaxPitch + 1,
			}},
		},
		{
			name:  "video rows beyond limit",
			layer: LayerVideo,
			regs: &Registers{YUV: YUVLayer{
				Control:   uint32(YUVFmt420),
				LeftRight: coords(0, 9),
				TopBottom: coords(0, 2047),
				VStride:   16,
				VStrideCb: 8,
				VStrideCr: 8,
				VScale:    3<<28 | 0x7FFFFF,
			}},
		},
		{
			name:  "video scaled to zero",
			layer: LayerVideo,
			regs: &Registers{YUV: YUVLayer{
				LeftRight: coords(0, 9),
				TopBottom: coords(0, 9),
				VStride:   16,
				VScale:    3 << 28,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.regs, tt.layer)
			if !errors.Is(err, ErrGeometry) {
				t.Errorf("Expected ErrGeometry, got %v", err)
			}
		})
	}

	if _, err := Decode(&Registers{}, Layer(3)); !errors.Is(err, ErrInvalidLayer) {
		t.Errorf("Expected ErrInvalidLayer, got %v", err)
	}
}

func TestRegistrySnapshot(t *testing.T) {
	saved := &Registers{BGColor: 0xABCDEF}
	saved.RGB[0].Address = 0x12345678

	w, err := MemWindowFrom(saved)
	if err != nil {
		t.Fatalf("MemWindowFrom() failed: %v", err)
	}

	reg := NewRegistry()
	if err := reg.Register(1, w); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := reg.Register(1, w); err == nil {
		t.Error("Expected error registering a device twice")
	}
	if err := reg.Register(2, w); !errors.Is(err, ErrInvalidDevice) {
		t.Errorf("Expected ErrInvalidDevice, got %v", err)
	}

	got, err := reg.Snapshot(1)
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if !got.Equal(saved) {
		t.Error("Snapshot differs from window contents")
	}

	if _, err := reg.Snapshot(0); !errors.Is(err, ErrNotMapped) {
		t.Errorf("Expected ErrNotMapped, got %v", err)
	}
}

func TestApplyProperties(t *testing.T) {
	live := NewMemWindow()
	live.Write32(OffControlT, 0x0C02)
	live.Write32(RGBBase(0)+rgbOffControl, uint32(RGBFmtA8R8G8B8)|FieldLayerEnb.Mask())
	live.Write32(RGBBase(1)+rgbOffControl, uint32(RGBFmtR5G6B5))
	live.Write32(OffYUVBase+yuvOffControl, uint32(YUVFmt420)|FieldLayerEnb.Mask())
	live.Write32(OffGammaCont, 0xFFF)

	saved := &Registers{
		ControlT: 2 << 8,
		BGColor:  0x00FF00,
	}
	saved.RGB[0].Control = FieldLayerEnb.Mask() | FieldBlendEnb.Mask() | FieldTPEnb.Mask()
	saved.RGB[0].TPColor = 0x010203
	saved.RGB[0].InvColor = 0x040506
	saved.RGB[1].TPColor = 0xDEAD
	saved.YUV.Control = FieldBlendEnb.Mask()
	saved.YUV.InvColor = 0x070809
	saved.YUV.LuEnh = 0x1234
	saved.YUV.ChEnh = [4]uint32{1, 2, 3, 4}

	updated := ApplyProperties(live, saved, ApplyOptions{GammaOff: true})
	if updated != 2 {
		t.Errorf("Expected 2 updated layers, got %d", updated)
	}

	if got := live.Read32(OffControlT); got != 0x0E02 {
		t.Errorf("controlt = 0x%x, want 0xe02", got)
	}
	if got := live.Read32(OffBGColor); got != 0x00FF00 {
		t.Errorf("bgcolor = 0x%x, want 0xff00", got)
	}

	ctrl := live.Read32(RGBBase(0) + rgbOffControl)
	wantCtrl := uint32(RGBFmtA8R8G8B8) | FieldLayerEnb.Mask() | FieldDirty.Mask() | FieldBlendEnb.Mask() | FieldTPEnb.Mask()
	if ctrl != wantCtrl {
		t.Errorf("rgb0 control = 0x%08x, want 0x%08x", ctrl, wantCtrl)
	}
	if got := live.Read32(RGBBase(0) + rgbOffTPColor); got != 0x010203 {
		t.Errorf("rgb0 tpcolor = 0x%x, want 0x10203", got)
	}

	// Disabled layers are left alone.
	if got := live.Read32(RGBBase(1) + rgbOffTPColor); got != 0 {
		t.Errorf("rgb1 tpcolor = 0x%x, want 0", got)
	}
	if got := live.Read32(RGBBase(1) + rgbOffControl); got != uint32(RGBFmtR5G6B5) {
		t.Errorf("rgb1 control = 0x%08x, want unchanged", got)
	}

	yctrl := live.Read32(OffYUVBase + yuvOffControl)
	if FieldBlendEnb.Get(yctrl) != 1 || FieldDirty.Get(yctrl) != 1 {
		t.Errorf("yuv control = 0x%08x, want blend and dirty set", yctrl)
	}
	if got := live.Read32(OffYUVBase + yuvOffChEnh + 8); got != 3 {
		t.Errorf("yuv chenh[2] = %d, want 3", got)
	}
	if got := live.Read32(OffGammaCont); got != 0 {
		t.Errorf("gammacont = 0x%x, want 0", got)
	}
}

func TestDump(t *testing.T) {
	regs := &Registers{ScreenSize: 1279 | 719<<16}
	regs.RGB[0] = RGBLayer{
		LeftRight: coords(0, 1279),
		TopBottom: coords(0, 719),
		Control:   uint32(RGBFmtB8G8R8) | FieldLayerEnb.Mask(),
		HStride:   4,
		VStride:   5120,
	}

	var buf bytes.Buffer
	if err := Dump(&buf, 0, regs); err != nil {
		t.Fatalf("Dump() failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"MLC.0 - RGB.0", "MLC.0 - YUV", "1280 x 720", "X8B8G8R8", "screen:1279x719"} {
		if !strings.Contains(out, want) {
			t.Errorf("Dump output missing %q", want)
		}
	}
}
