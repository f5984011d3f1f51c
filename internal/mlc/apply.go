package mlc

// ApplyOptions tunes ApplyProperties.
type ApplyOptions struct {
	// GammaOff clears the gamma control word.
	GammaOff bool
}

// ApplyProperties writes the blending and color properties of a saved
// register image onto a live window. The display driver programs geometry
// and address when the plane is set; what it does not know about (layer
// priority, background, transparency and inversion colors, video
// enhancement) is restored here. Only layers already enabled on the live
// window are touched, and each touched layer gets its dirty bit set so the
// hardware latches the new values.
//
// It returns the number of layers updated.
func ApplyProperties(w Window, saved *Registers, opts ApplyOptions) int {
	updateBits(w, OffControlT, FieldPriority, FieldPriority.Get(saved.ControlT))
	w.Write32(OffBGColor, saved.BGColor)

	updated := 0
	for i := range saved.RGB {
		base := RGBBase(i)
		if FieldLayerEnb.Get(w.Read32(base+rgbOffControl)) == 0 {
			continue
		}
		src := &saved.RGB[i]
		updateBits(w, base+rgbOffControl, FieldRGBControl, FieldRGBControl.Get(src.Control))
		w.Write32(base+rgbOffTPColor, src.TPColor)
		w.Write32(base+rgbOffInvColor, src.InvColor)
		updateBits(w, base+rgbOffControl, FieldDirty, 1)
		updated++
	}

	if FieldLayerEnb.Get(w.Read32(OffYUVBase+yuvOffControl)) == 1 {
		src := &saved.YUV
		updateBits(w, OffYUVBase+yuvOffControl, FieldBlendEnb, FieldBlendEnb.Get(src.Control))
		w.Write32(OffYUVBase+yuvOffInvColor, src.InvColor)
		w.Write32(OffYUVBase+yuvOffLuEnh, src.LuEnh)
		for i, v := range src.ChEnh {
			w.Write32(OffYUVBase+yuvOffChEnh+i*4, v)
		}
		updateBits(w, OffYUVBase+yuvOffControl, FieldDirty, 1)
		updated++
	}

	if opts.GammaOff {
		w.Write32(OffGammaCont, 0)
	}
	return updated
}

func updateBits(w Window, off int, f Field, v uint32) {
	w.Write32(off, f.Set(w.Read32(off), v))
}
