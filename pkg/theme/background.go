// background.go - Gradient canvas, soft vignette and ornamental frame.
package theme

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"
)

// DefaultVignetteStrength is the opacity of the vignette's black overlay.
const DefaultVignetteStrength = 0.28

// vignetteMargin is the ellipse inset and blur radius as a fraction of the
// shorter canvas side.
const vignetteMargin = 0.08

// The vignette mask is blurred at reduced resolution and scaled back up.
const maskScale = 4

// Gradient fills a w x h canvas with a vertical blend from GradientTop at
// the first row to GradientBottom at the last.
func Gradient(w, h int, t Theme) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	denom := float64(max(1, h-1))
	for y := 0; y < h; y++ {
		f := float64(y) / denom
		c := color.RGBA{
			R: lerp(t.GradientTop.R, t.GradientBottom.R, f),
			G: lerp(t.GradientTop.G, t.GradientBottom.G, f),
			B: lerp(t.GradientTop.B, t.GradientBottom.B, f),
			A: 255,
		}
		row := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for x := 0; x < len(row); x += 4 {
			row[x], row[x+1], row[x+2], row[x+3] = c.R, c.G, c.B, c.A
		}
	}
	return img
}

// lerp truncates toward zero like an integer cast of the blended value.
func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// ApplyVignette darkens img toward its edges in place. The darkening is a
// black overlay of opacity strength seen through a blurred elliptical mask
// that is clear in the middle.
func ApplyVignette(img *image.RGBA, strength float64) {
	if strength <= 0 {
		return
	}
	strength = min(strength, 1)
	b := img.Bounds()
	mask := vignetteMask(b.Dx(), b.Dy())
	overlay := image.NewUniform(color.RGBA{A: uint8(255 * strength)})
	draw.DrawMask(img, b, overlay, image.Point{}, mask, image.Point{}, draw.Over)
}

func vignetteMask(w, h int) *image.Alpha {
	short := min(w, h)
	margin := float64(int(float64(short) * vignetteMargin))
	radius := float64(int(float64(short) * vignetteMargin))

	sw, sh := max(1, w/maskScale), max(1, h/maskScale)
	sx, sy := float64(sw)/float64(w), float64(sh)/float64(h)

	small := image.NewGray(image.Rect(0, 0, sw, sh))
	cx, cy := float64(w)/2*sx, float64(h)/2*sy
	rx, ry := (float64(w)/2-margin)*sx, (float64(h)/2-margin)*sy
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			dx, dy := (float64(x)+0.5-cx)/rx, (float64(y)+0.5-cy)/ry
			if rx <= 0 || ry <= 0 || dx*dx+dy*dy > 1 {
				small.Pix[y*small.Stride+x] = 255
			}
		}
	}

	var soft image.Image = small
	if r := radius / maskScale; r >= 0.5 {
		soft = blur.Gaussian(small, r)
	}
	full := transform.Resize(soft, w, h, transform.Linear)

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	for i := range mask.Pix {
		mask.Pix[i] = full.Pix[4*i]
	}
	return mask
}

// MakeBackground returns the themed gradient with the default vignette.
func MakeBackground(w, h int, t Theme) *image.RGBA {
	img := Gradient(w, h, t)
	ApplyVignette(img, DefaultVignetteStrength)
	return img
}

// FrameThickness returns the outer border width for a w x h canvas.
func FrameThickness(w, h int) int {
	return int(float64(min(w, h)) * 0.01)
}

// OrnamentalFrame grows img outward by three nested borders: thickness px of
// accent, 2px of white, then thickness/2 px of accent. The result is a new
// image larger than img by 2*(thickness+2+thickness/2) on each axis.
func OrnamentalFrame(img image.Image, accent color.RGBA, thickness int) *image.RGBA {
	out := expand(img, thickness, accent)
	out = expand(out, 2, color.RGBA{255, 255, 255, 255})
	return expand(out, thickness/2, accent)
}

func expand(img image.Image, border int, fill color.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()+2*border, b.Dy()+2*border))
	draw.Draw(out, out.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(border, border, border+b.Dx(), border+b.Dy()), img, b.Min, draw.Src)
	return out
}
