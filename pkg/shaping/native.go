//go:build !noshaping

package shaping

import (
	"bytes"
	"image"
	"math"
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	gtshaping "github.com/go-text/typesetting/shaping"
	"github.com/gurbanicard/gurbanicard/pkg/fonts"
	"golang.org/x/image/vector"
)

func init() {
	newNative = func() Backend { return NativeShaping{} }
}

// NativeShaping shapes text with the go-text HarfBuzz port and rasterizes the
// resulting glyph outlines. Ligatures, vowel-sign reordering and mark
// positioning follow the font's OpenType tables.
type NativeShaping struct{}

// HarfbuzzShaper keeps per-font caches and is not safe for concurrent use.
var shaperPool = sync.Pool{
	New: func() any { return &gtshaping.HarfbuzzShaper{} },
}

func (NativeShaping) Name() string { return "native" }

// parsed returns the shared go-text Font. Fonts are read-only and may be
// shared; a Face is created per call because it carries mutable state.
func (NativeShaping) parsed(src *fonts.Source) (*gtfont.Font, error) {
	v, err := src.Memo("gotext", func(data []byte) (any, error) {
		face, err := gtfont.ParseTTF(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return face.Font, nil
	})
	if err != nil {
		return nil, &fonts.FontLoadError{Path: src.Path, Err: err}
	}
	return v.(*gtfont.Font), nil
}

// Shape converts text into positioned glyphs at size pixels.
func (n NativeShaping) Shape(src *fonts.Source, text string, size float64) (GlyphRun, error) {
	f, err := n.parsed(src)
	if err != nil {
		return GlyphRun{}, err
	}
	out := n.shape(gtfont.NewFace(f), text, size)
	run := GlyphRun{Glyphs: make([]Glyph, len(out.Glyphs)), Advance: out.Advance}
	for i, g := range out.Glyphs {
		run.Glyphs[i] = Glyph{
			ID:       uint32(g.GlyphID),
			XAdvance: g.Advance,
			XOffset:  g.XOffset,
			YOffset:  g.YOffset,
		}
	}
	return run, nil
}

func (NativeShaping) shape(face *gtfont.Face, text string, size float64) gtshaping.Output {
	runes := []rune(text)
	script := detectScript(runes)
	dir := di.DirectionLTR
	if script == language.Arabic || script == language.Hebrew {
		dir = di.DirectionRTL
	}

	shaper := shaperPool.Get().(*gtshaping.HarfbuzzShaper)
	defer shaperPool.Put(shaper)

	return shaper.Shape(gtshaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      face,
		Size:      floatToFixed(size),
		Script:    script,
		Language:  languageFor(script),
	})
}

// Measure implements Backend.
func (n NativeShaping) Measure(src *fonts.Source, text string, size float64) (Metrics, error) {
	f, err := n.parsed(src)
	if err != nil {
		return Metrics{}, err
	}
	face := gtfont.NewFace(f)
	ascent, descent := verticalExtents(face, size)
	m := Metrics{Ascent: ascent, Descent: descent, Height: ascent + descent}
	if text != "" {
		m.Advance = fixedToFloat(n.shape(face, text, size).Advance)
	}
	return m, nil
}

// Rasterize implements Backend.
func (n NativeShaping) Rasterize(src *fonts.Source, text string, size float64) (*Mask, error) {
	f, err := n.parsed(src)
	if err != nil {
		return nil, err
	}
	face := gtfont.NewFace(f)
	out := n.shape(face, text, size)
	mask := &Mask{Advance: fixedToFloat(out.Advance)}

	scale := float32(size) / float32(face.Upem())
	var (
		outline [][]opentype.Segment
		origins [][2]float32
	)
	var pen float32
	for _, g := range out.Glyphs {
		if g.GlyphID != gtfont.EmptyGlyph {
			if data, ok := face.GlyphData(g.GlyphID).(gtfont.GlyphOutline); ok && len(data.Segments) > 0 {
				outline = append(outline, data.Segments)
				origins = append(origins, [2]float32{
					pen + float32(fixedToFloat(g.XOffset)),
					-float32(fixedToFloat(g.YOffset)),
				})
			}
		}
		pen += float32(fixedToFloat(g.Advance))
	}
	if len(outline) == 0 {
		return mask, nil
	}

	// Font units are y-up; image space is y-down with the baseline at 0.
	place := func(i int, p opentype.SegmentPoint) (float32, float32) {
		return origins[i][0] + p.X*scale, origins[i][1] - p.Y*scale
	}

	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	for i, segs := range outline {
		for j := range segs {
			for _, p := range segs[j].ArgsSlice() {
				x, y := place(i, p)
				minX, maxX = min(minX, x), max(maxX, x)
				minY, maxY = min(minY, y), max(maxY, y)
			}
		}
	}

	bounds := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	)
	if bounds.Empty() {
		return mask, nil
	}
	dx, dy := float32(-bounds.Min.X), float32(-bounds.Min.Y)

	r := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	for i, segs := range outline {
		open := false
		for j := range segs {
			args := segs[j].ArgsSlice()
			pts := make([]float32, 0, 2*len(args))
			for _, p := range args {
				x, y := place(i, p)
				pts = append(pts, x+dx, y+dy)
			}
			switch segs[j].Op {
			case opentype.SegmentOpMoveTo:
				if open {
					r.ClosePath()
				}
				r.MoveTo(pts[0], pts[1])
				open = true
			case opentype.SegmentOpLineTo:
				r.LineTo(pts[0], pts[1])
			case opentype.SegmentOpQuadTo:
				r.QuadTo(pts[0], pts[1], pts[2], pts[3])
			case opentype.SegmentOpCubeTo:
				r.CubeTo(pts[0], pts[1], pts[2], pts[3], pts[4], pts[5])
			}
		}
		if open {
			r.ClosePath()
		}
	}

	mask.Alpha = image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	r.Draw(mask.Alpha, mask.Alpha.Bounds(), image.Opaque, image.Point{})
	mask.Offset = bounds.Min
	return mask, nil
}

// verticalExtents returns ascent and a positive descent in pixels.
func verticalExtents(face *gtfont.Face, size float64) (float64, float64) {
	upem := float64(face.Upem())
	ext, ok := face.FontHExtents()
	if !ok || ext.Ascender == 0 {
		return size * 0.8, size * 0.2
	}
	return float64(ext.Ascender) * size / upem, math.Abs(float64(ext.Descender)) * size / upem
}

// detectScript returns the script of the first rune that belongs to one.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if s := language.LookupScript(r); s.Strong() && s != language.Unknown {
			return s
		}
	}
	return language.Latin
}

func languageFor(s language.Script) language.Language {
	switch s {
	case language.Gurmukhi:
		return language.NewLanguage("pa")
	case language.Devanagari:
		return language.NewLanguage("hi")
	case language.Arabic:
		return language.NewLanguage("ar")
	case language.Hebrew:
		return language.NewLanguage("he")
	default:
		return language.NewLanguage("en")
	}
}
