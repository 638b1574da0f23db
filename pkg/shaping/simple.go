package shaping

import (
	"image"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/gurbanicard/gurbanicard/pkg/fonts"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// SimpleStringDraw measures and draws strings codepoint by codepoint through
// freetype faces. Complex scripts render without joining or reordering.
type SimpleStringDraw struct{}

// lockedFace guards a truetype face, which caches glyphs internally and is
// not safe for concurrent use.
type lockedFace struct {
	mu   sync.Mutex
	face font.Face
}

// maxFaces bounds the per-font face map. A fit walks dozens of sizes and
// each face keeps its own glyph cache.
const maxFaces = 16

type faceSet struct {
	font *truetype.Font

	mu    sync.Mutex
	faces map[float64]*lockedFace
}

func (fs *faceSet) at(size float64) *lockedFace {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if lf, ok := fs.faces[size]; ok {
		return lf
	}
	if len(fs.faces) >= maxFaces {
		// Callers holding an evicted face keep using it under its own lock.
		clear(fs.faces)
	}
	lf := &lockedFace{face: truetype.NewFace(fs.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})}
	fs.faces[size] = lf
	return lf
}

func (SimpleStringDraw) Name() string { return "simple" }

func (s SimpleStringDraw) face(src *fonts.Source, size float64) (*lockedFace, error) {
	v, err := src.Memo("freetype", func(data []byte) (any, error) {
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, err
		}
		return &faceSet{font: f, faces: make(map[float64]*lockedFace)}, nil
	})
	if err != nil {
		return nil, &fonts.FontLoadError{Path: src.Path, Err: err}
	}
	return v.(*faceSet).at(size), nil
}

// Measure implements Backend.
func (s SimpleStringDraw) Measure(src *fonts.Source, text string, size float64) (Metrics, error) {
	lf, err := s.face(src, size)
	if err != nil {
		return Metrics{}, err
	}
	lf.mu.Lock()
	defer lf.mu.Unlock()

	m := lf.face.Metrics()
	ascent := fixedToFloat(m.Ascent)
	descent := fixedToFloat(m.Descent)
	return Metrics{
		Advance: fixedToFloat(font.MeasureString(lf.face, text)),
		Ascent:  ascent,
		Descent: descent,
		Height:  ascent + descent,
	}, nil
}

// Rasterize implements Backend. The string is drawn with a left-baseline dot.
func (s SimpleStringDraw) Rasterize(src *fonts.Source, text string, size float64) (*Mask, error) {
	lf, err := s.face(src, size)
	if err != nil {
		return nil, err
	}
	lf.mu.Lock()
	defer lf.mu.Unlock()

	bounds, advance := font.BoundString(lf.face, text)
	r := image.Rect(bounds.Min.X.Floor(), bounds.Min.Y.Floor(), bounds.Max.X.Ceil(), bounds.Max.Y.Ceil())
	mask := &Mask{Offset: r.Min, Advance: fixedToFloat(advance)}
	if r.Empty() {
		return mask, nil
	}

	mask.Alpha = image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	d := font.Drawer{
		Dst:  mask.Alpha,
		Src:  image.Opaque,
		Face: lf.face,
		Dot:  fixed.Point26_6{X: fixed.I(-r.Min.X), Y: fixed.I(-r.Min.Y)},
	}
	d.DrawString(text)
	return mask, nil
}
