package shaping

import "golang.org/x/image/math/fixed"

// Glyph is one positioned glyph reference, in 26.6 fixed point (1/64 px).
type Glyph struct {
	ID       uint32
	XAdvance fixed.Int26_6
	YAdvance fixed.Int26_6
	XOffset  fixed.Int26_6
	YOffset  fixed.Int26_6
}

// GlyphRun is the shaped form of one line.
type GlyphRun struct {
	Glyphs  []Glyph
	Advance fixed.Int26_6
}

// Width returns the run's advance in pixels.
func (r GlyphRun) Width() float64 { return fixedToFloat(r.Advance) }

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
