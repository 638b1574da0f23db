package shaping

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/gurbanicard/gurbanicard/pkg/fonts"
)

// shadowOffsets are the four cardinal 1px offsets drawn under shadowed text.
var shadowOffsets = [4]image.Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Painter composites rasterized lines onto an image using a Backend.
type Painter struct {
	Backend Backend
}

// PaintLine draws text with its pen origin at origin (x, baseline y) and
// returns the line's advance. With shadow set, an opaque black copy is drawn
// at each cardinal 1px offset first.
func (p Painter) PaintLine(dst draw.Image, src *fonts.Source, text string, size float64, c color.Color, origin image.Point, shadow bool) (float64, error) {
	mask, err := p.Backend.Rasterize(src, text, size)
	if err != nil {
		return 0, err
	}
	p.composite(dst, mask, c, origin, shadow)
	return mask.Advance, nil
}

// PaintCentered draws text so its advance is centered on centerX and
// returns the x position used.
func (p Painter) PaintCentered(dst draw.Image, src *fonts.Source, text string, size float64, c color.Color, centerX, baseline int, shadow bool) (int, error) {
	mask, err := p.Backend.Rasterize(src, text, size)
	if err != nil {
		return 0, err
	}
	x := centerX - int(mask.Advance/2)
	p.composite(dst, mask, c, image.Pt(x, baseline), shadow)
	return x, nil
}

// PaintShadowed draws text once offset by shadowAt in shadowColor and then in
// c at origin. The watermark uses it for its single drop shadow.
func (p Painter) PaintShadowed(dst draw.Image, src *fonts.Source, text string, size float64, c, shadowColor color.Color, origin, shadowAt image.Point) error {
	mask, err := p.Backend.Rasterize(src, text, size)
	if err != nil {
		return err
	}
	drawMask(dst, mask, shadowColor, origin.Add(shadowAt))
	drawMask(dst, mask, c, origin)
	return nil
}

func (p Painter) composite(dst draw.Image, mask *Mask, c color.Color, origin image.Point, shadow bool) {
	if shadow {
		for _, off := range shadowOffsets {
			drawMask(dst, mask, color.Black, origin.Add(off))
		}
	}
	drawMask(dst, mask, c, origin)
}

func drawMask(dst draw.Image, mask *Mask, c color.Color, origin image.Point) {
	if mask.Alpha == nil {
		return
	}
	r := mask.Alpha.Bounds().Add(origin.Add(mask.Offset))
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask.Alpha, image.Point{}, draw.Over)
}
