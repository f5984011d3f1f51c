package mlc

import (
	"fmt"
	"io"
)

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func (d *dumper) reg(name string, v uint32) {
	d.printf(" %-24s : 0x%08x\n", name, v)
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// DumpLayer writes the raw registers of one layer.
func DumpLayer(w io.Writer, dev int, layer Layer, regs *Registers) error {
	d := &dumper{w: w}
	d.layer(dev, layer, regs)
	return d.err
}

// Dump writes the full register image of a device followed by a decoded
// summary.
func Dump(w io.Writer, dev int, regs *Registers) error {
	d := &dumper{w: w}

	d.printf("MLC.%d\n", dev)
	d.reg("controlt", regs.ControlT)
	d.reg("screensize", regs.ScreenSize)
	d.reg("bgcolor", regs.BGColor)
	for _, l := range []Layer{LayerRGB0, LayerRGB1, LayerVideo} {
		d.layer(dev, l, regs)
	}

	d.printf("MLC.%d Gamma\n", dev)
	d.reg("palettetable2", regs.PaletteTable2)
	d.reg("gammacont", regs.GammaCont)
	d.reg("rgammatable", regs.RGammaTable)
	d.reg("ggammatable", regs.GGammaTable)
	d.reg("bgammatable", regs.BGammaTable)
	d.reg("yuvgamma_red", regs.YUVGammaRed)
	d.reg("yuvgamma_green", regs.YUVGammaGreen)
	d.reg("yuvgamma_blue", regs.YUVGammaBlue)
	d.printf("\n")

	d.summary(regs)
	return d.err
}

func (d *dumper) layer(dev int, layer Layer, regs *Registers) {
	switch layer {
	case LayerRGB0, LayerRGB1:
		r := &regs.RGB[layer]
		d.printf("MLC.%d - RGB.%d\n", dev, int(layer))
		d.reg("leftright", r.LeftRight)
		d.reg("topbottom", r.TopBottom)
		d.reg("invalidleftright0", r.InvalidLeftRight0)
		d.reg("invalidtopbottom0", r.InvalidTopBottom0)
		d.reg("invalidleftright1", r.InvalidLeftRight1)
		d.reg("invalidtopbottom1", r.InvalidTopBottom1)
		d.reg("control", r.Control)
		d.reg("hstride", uint32(r.HStride))
		d.reg("vstride", uint32(r.VStride))
		d.reg("tpcolor", r.TPColor)
		d.reg("invcolor", r.InvColor)
		d.reg("address", r.Address)
	case LayerVideo:
		r := &regs.YUV
		d.printf("MLC.%d - YUV\n", dev)
		d.reg("leftright", r.LeftRight)
		d.reg("topbottom", r.TopBottom)
		d.reg("control", r.Control)
		d.reg("vstride", r.VStride)
		d.reg("tpcolor", r.TPColor)
		d.reg("invcolor", r.InvColor)
		d.reg("address", r.Address)
		d.reg("addresscb", r.AddressCb)
		d.reg("addresscr", r.AddressCr)
		d.reg("vstridecb", uint32(r.VStrideCb))
		d.reg("vstridecr", uint32(r.VStrideCr))
		d.reg("hscale", r.HScale)
		d.reg("vscale", r.VScale)
		d.reg("luenh", r.LuEnh)
		for i, v := range r.ChEnh {
			d.reg(fmt.Sprintf("chenh[%d]", i), v)
		}
	default:
		d.printf("MLC.%d - %s: no such layer\n", dev, layer)
	}
}

func (d *dumper) summary(regs *Registers) {
	ct := regs.ControlT
	field := "progressive"
	if FieldField.Get(ct) == 1 {
		field = "interlace"
	}
	d.printf("TOP\n")
	d.printf(" pwr:%-3s, prior:%d, mlc:%-3s, field:%s\n",
		onOff(FieldPower.Get(ct) == 0x3), FieldPriority.Get(ct), onOff(FieldMLCEnb.Get(ct) == 1), field)
	d.printf(" screen:%dx%d, bgcolor:0x%x\n",
		FieldScreenWidth.Get(regs.ScreenSize), FieldScreenHeight.Get(regs.ScreenSize),
		FieldBGColor.Get(regs.BGColor))

	for i := range regs.RGB {
		r := &regs.RGB[i]
		code := HWFormat(r.Control & FieldRGBFormat.Mask())
		bpp := int(r.HStride) * 8
		d.printf("RGB.%d\n", i)
		d.printf(" %-3s, %d x %d (l:%d, t:%d, r:%d, b:%d), stride:%d/%d, %dbpp, %s(0x%x)\n",
			onOff(FieldLayerEnb.Get(r.Control) == 1),
			Extent(r.LeftRight), Extent(r.TopBottom),
			FieldLeft.Get(r.LeftRight), FieldLeft.Get(r.TopBottom),
			FieldRight.Get(r.LeftRight), FieldRight.Get(r.TopBottom),
			r.HStride, r.VStride, bpp, code.Name(Layer(i), bpp), uint32(code))
		d.controls(r.Control)
	}

	y := &regs.YUV
	code := HWFormat(y.Control & FieldYUVFormat.Mask())
	hs, vs := DecodeScale(y.HScale), DecodeScale(y.VScale)
	w, h := Extent(y.LeftRight), Extent(y.TopBottom)
	d.printf("YUV\n")
	d.printf(" %-3s, %d x %d (l:%d, t:%d, r:%d, b:%d), %s(0x%x)\n",
		onOff(FieldLayerEnb.Get(y.Control) == 1), w, h,
		FieldLeft.Get(y.LeftRight), FieldLeft.Get(y.TopBottom),
		FieldRight.Get(y.LeftRight), FieldRight.Get(y.TopBottom),
		code.Name(LayerVideo, 8), uint32(code))
	d.printf(" stride:%d/%d/%d, scale:0x%x,0x%x, %d x %d -> %d x %d, hvfilter: %s/%s\n",
		y.VStride, y.VStrideCb, y.VStrideCr, y.HScale, y.VScale,
		hs.Apply(w), vs.Apply(h), w, h, onOff(hs.Enabled), onOff(vs.Enabled))
	d.controls(y.Control)
	d.printf(" luminance contrast:%d, bright:%d\n",
		FieldLuContrast.Get(y.LuEnh), FieldLuBright.Get(y.LuEnh))
	d.printf(" chrominance 0x%08x, 0x%08x, 0x%08x, 0x%08x\n",
		y.ChEnh[0], y.ChEnh[1], y.ChEnh[2], y.ChEnh[3])

	g := regs.GammaCont
	region := "RGB"
	if FieldGammaAlpha.Get(g) == 1 {
		region = "YUV"
	}
	d.printf("Gamma\n")
	d.printf(" table R:%-3s, G:%-3s, B:%-3s, region[alpha:%s, yuv:%-3s, rgb:%-3s] dither:%-3s\n",
		onOff(FieldGammaR.Get(g) == 0x3), onOff(FieldGammaG.Get(g) == 0x3), onOff(FieldGammaB.Get(g) == 0x3),
		region, onOff(FieldGammaYUV.Get(g) == 1), onOff(FieldGammaRGB.Get(g) == 1),
		onOff(FieldGammaDither.Get(g) == 1))
}

func (d *dumper) controls(control uint32) {
	d.printf(" blend:%-3s, invcolor:%-3s, tpcolor:%-3s\n",
		onOff(FieldBlendEnb.Get(control) == 1),
		onOff(FieldInvEnb.Get(control) == 1),
		onOff(FieldTPEnb.Get(control) == 1))
}
