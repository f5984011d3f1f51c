package mlc

// Field is a bit-field of a 32-bit register word.
type Field struct {
	Pos   uint
	Width uint
}

// Mask returns the in-place mask of the field.
func (f Field) Mask() uint32 {
	return f.max() << f.Pos
}

func (f Field) max() uint32 {
	if f.Width >= 32 {
		return 0xFFFFFFFF
	}
	return uint32(1)<<f.Width - 1
}

// Get extracts the field value right-aligned.
func (f Field) Get(word uint32) uint32 {
	return (word >> f.Pos) & f.max()
}

// Set returns word with the field replaced by v. Bits of v above the field
// width are dropped and bits outside the field are preserved.
func (f Field) Set(word, v uint32) uint32 {
	return word&^f.Mask() | (v<<f.Pos)&f.Mask()
}

// Register fields used by the decoder. Extents are 11 bits wide, origins 12.
var (
	FieldRight  = Field{Pos: 0, Width: 11}
	FieldLeft   = Field{Pos: 16, Width: 11}
	FieldOrigin = Field{Pos: 16, Width: 12}

	FieldScreenWidth  = Field{Pos: 0, Width: 12}
	FieldScreenHeight = Field{Pos: 16, Width: 12}
	FieldBGColor      = Field{Pos: 0, Width: 24}

	FieldPower    = Field{Pos: 10, Width: 2}
	FieldPriority = Field{Pos: 8, Width: 2}
	FieldMLCEnb   = Field{Pos: 1, Width: 1}
	FieldField    = Field{Pos: 0, Width: 1}

	FieldLayerEnb   = Field{Pos: 5, Width: 1}
	FieldDirty      = Field{Pos: 4, Width: 1}
	FieldBlendEnb   = Field{Pos: 2, Width: 1}
	FieldInvEnb     = Field{Pos: 1, Width: 1}
	FieldTPEnb      = Field{Pos: 0, Width: 1}
	FieldRGBControl = Field{Pos: 0, Width: 7}

	FieldRGBFormat = Field{Pos: 16, Width: 16}
	FieldYUVFormat = Field{Pos: 16, Width: 3}

	FieldScaleFactor = Field{Pos: 0, Width: 23}
	FieldScaleEnb    = Field{Pos: 28, Width: 2}

	FieldLuContrast = Field{Pos: 0, Width: 3}
	FieldLuBright   = Field{Pos: 8, Width: 8}

	FieldGammaR      = Field{Pos: 2, Width: 2}
	FieldGammaG      = Field{Pos: 8, Width: 2}
	FieldGammaB      = Field{Pos: 10, Width: 2}
	FieldGammaAlpha  = Field{Pos: 5, Width: 1}
	FieldGammaYUV    = Field{Pos: 4, Width: 1}
	FieldGammaRGB    = Field{Pos: 1, Width: 1}
	FieldGammaDither = Field{Pos: 0, Width: 1}
)

// Extent returns right - left + 1 of a packed left/right or top/bottom word.
// The result is signed so inverted coordinates can be rejected by callers.
func Extent(word uint32) int {
	return int(FieldRight.Get(word)) - int(FieldLeft.Get(word)) + 1
}

// Origin returns the 12-bit start coordinate of a packed coordinate word.
func Origin(word uint32) int {
	return int(FieldOrigin.Get(word))
}
