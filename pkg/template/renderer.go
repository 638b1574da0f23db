// renderer.go - Poster compositor. Paints one verse record onto a themed
// canvas in a fixed order: background, title, subtitle, fitted verse block,
// watermark, frame.
package template

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/gurbanicard/gurbanicard/pkg/fonts"
	"github.com/gurbanicard/gurbanicard/pkg/generator"
	"github.com/gurbanicard/gurbanicard/pkg/layout"
	"github.com/gurbanicard/gurbanicard/pkg/logging"
	"github.com/gurbanicard/gurbanicard/pkg/shaping"
	"github.com/gurbanicard/gurbanicard/pkg/theme"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyVerse is returned for a record whose verse is blank or a '#'
// comment. It is not a failure: batches count such records as skipped.
var ErrEmptyVerse = errors.New("empty verse")

// Layout proportions shared by every poster.
const (
	headerTopRatio    = 0.4  // of padding, above the title
	headerAdvance     = 1.25 // of font size, after title and subtitle
	areaGapRatio      = 0.5  // of padding, between header and verse block
	areaHeightRatio   = 0.55 // of canvas height
	watermarkInset    = 0.6  // of padding, from the bottom-right corner
	watermarkShadowPx = 1
)

// Options configures a Renderer. Zero fields take defaults.
type Options struct {
	Backend    shaping.Backend // default: shaping.Select(shaping.ModeAuto)
	Themes     *theme.Registry // default: theme.Builtin()
	Fonts      *fonts.Cache    // default: fonts.NewCache(fonts.DefaultCapacity)
	SearchDirs []string        // default: fonts.SearchDirs()
}

// Renderer composes posters. It holds no per-render state and is safe for
// concurrent use.
type Renderer struct {
	backend    shaping.Backend
	painter    shaping.Painter
	themes     *theme.Registry
	fonts      *fonts.Cache
	searchDirs []string
}

// NewRenderer creates a renderer from opts.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Backend == nil {
		b, err := shaping.Select(shaping.ModeAuto)
		if err != nil {
			return nil, err
		}
		opts.Backend = b
	}
	if opts.Themes == nil {
		opts.Themes = theme.Builtin()
	}
	if opts.Fonts == nil {
		opts.Fonts = fonts.NewCache(fonts.DefaultCapacity)
	}
	if opts.SearchDirs == nil {
		opts.SearchDirs = fonts.SearchDirs()
	}
	return &Renderer{
		backend:    opts.Backend,
		painter:    shaping.Painter{Backend: opts.Backend},
		themes:     opts.Themes,
		fonts:      opts.Fonts,
		searchDirs: opts.SearchDirs,
	}, nil
}

// Backend returns the shaping backend in use.
func (r *Renderer) Backend() shaping.Backend { return r.backend }

// Themes returns the theme registry in use.
func (r *Renderer) Themes() *theme.Registry { return r.themes }

// Render paints rec onto a new canvas. Unset fields of cfg take
// DefaultConfig values. With the frame enabled the result is larger than
// the configured canvas by the frame's width on every side.
func (r *Renderer) Render(rec LineRecord, cfg RenderConfig) (*image.RGBA, error) {
	verse := norm.NFC.String(strings.TrimSpace(rec.Text))
	if IsEmptyVerse(verse) {
		return nil, ErrEmptyVerse
	}

	cfg = MergeConfig(DefaultConfig(), cfg)
	th, err := r.themes.Lookup(cfg.Theme)
	if err != nil {
		return nil, err
	}
	w, h, err := cfg.Size()
	if err != nil {
		return nil, err
	}
	fp, err := r.loadFonts(cfg)
	if err != nil {
		return nil, err
	}

	pad := float64(cfg.Padding)
	canvas := theme.Gradient(w, h, th)
	theme.ApplyVignette(canvas, cfg.VignetteStrength)

	y := int(pad * headerTopRatio)
	if title := norm.NFC.String(strings.TrimSpace(rec.Title)); title != "" {
		if err := r.paintHeader(canvas, fp.gurmukhi, title, cfg.TitleSize, th.PrimaryText, w/2, y); err != nil {
			return nil, fmt.Errorf("title: %w", err)
		}
		y += int(cfg.TitleSize * headerAdvance)
	}
	if sub := norm.NFC.String(strings.TrimSpace(rec.Subtitle)); sub != "" {
		if err := r.paintHeader(canvas, fp.latin, sub, cfg.SubtitleSize, th.SecondaryText, w/2, y); err != nil {
			return nil, fmt.Errorf("subtitle: %w", err)
		}
		y += int(cfg.SubtitleSize * headerAdvance)
	}

	areaTop := int(float64(y) + pad*areaGapRatio)
	areaH := int(float64(h) * areaHeightRatio)
	areaW := w - 2*cfg.Padding

	fit, err := layout.Fit(verse, r.sizedMeasure(fp.gurmukhi), layout.FitOptions{
		FontPath:    fp.gurmukhi.Path,
		MaxWidth:    float64(areaW),
		MaxHeight:   float64(areaH),
		StartSize:   cfg.GurbaniStartSize,
		MinSize:     cfg.GurbaniMinSize,
		LineSpacing: cfg.LineSpacing,
		Step:        layout.DefaultStep,
	})
	if err != nil {
		return nil, fmt.Errorf("fit verse: %w", err)
	}
	if err := r.paintBlock(canvas, fp.gurmukhi, fit, cfg, th.PrimaryText, w/2, areaTop, areaH); err != nil {
		return nil, fmt.Errorf("verse: %w", err)
	}

	if wm := strings.TrimSpace(cfg.WatermarkText); wm != "" {
		if err := r.paintWatermark(canvas, fp.latin, wm, cfg, th.SecondaryText); err != nil {
			return nil, fmt.Errorf("watermark: %w", err)
		}
	}

	logging.Logger().Debug("poster rendered",
		"size", fit.Size,
		"lines", len(fit.Lines),
		"overflow", fit.Overflow,
		"theme", th.Name,
		"backend", r.backend.Name())

	if cfg.FrameEnabled() {
		return theme.OrnamentalFrame(canvas, th.Accent, theme.FrameThickness(w, h)), nil
	}
	return canvas, nil
}

// RenderPNG renders rec and returns the PNG encoding.
func (r *Renderer) RenderPNG(rec LineRecord, cfg RenderConfig) ([]byte, error) {
	img, err := r.Render(rec, cfg)
	if err != nil {
		return nil, err
	}
	return generator.EncodePNG(img)
}

func (r *Renderer) sizedMeasure(src *fonts.Source) layout.SizedMeasureFunc {
	return func(s string, size float64) (float64, error) {
		m, err := r.backend.Measure(src, s, size)
		return m.Advance, err
	}
}

// paintHeader centers text on centerX with its top edge at top.
func (r *Renderer) paintHeader(dst *image.RGBA, src *fonts.Source, text string, size float64, c color.RGBA, centerX, top int) error {
	m, err := r.backend.Measure(src, text, size)
	if err != nil {
		return err
	}
	_, err = r.painter.PaintCentered(dst, src, text, size, c, centerX, top+int(m.Ascent), false)
	return err
}

// paintBlock draws the fitted lines centered horizontally and vertically
// within the verse area.
func (r *Renderer) paintBlock(dst *image.RGBA, src *fonts.Source, fit layout.FitResult, cfg RenderConfig, c color.RGBA, centerX, areaTop, areaH int) error {
	if len(fit.Lines) == 0 {
		return nil
	}
	m, err := r.backend.Measure(src, "", fit.Size)
	if err != nil {
		return err
	}
	step := layout.LineStep(fit.Size, cfg.LineSpacing)
	blockH := step * len(fit.Lines)
	y := areaTop + int(math.Floor(float64(areaH-blockH)/2))
	for _, line := range fit.Lines {
		if _, err := r.painter.PaintCentered(dst, src, line, fit.Size, c, centerX, y+int(m.Ascent), cfg.ShadowEnabled()); err != nil {
			return err
		}
		y += step
	}
	return nil
}

// paintWatermark right-aligns text near the bottom-right corner with a
// single offset shadow.
func (r *Renderer) paintWatermark(dst *image.RGBA, src *fonts.Source, text string, cfg RenderConfig, c color.RGBA) error {
	m, err := r.backend.Measure(src, text, cfg.WatermarkSize)
	if err != nil {
		return err
	}
	b := dst.Bounds()
	inset := int(float64(cfg.Padding) * watermarkInset)
	x := b.Dx() - int(m.Advance) - inset
	top := b.Dy() - int(cfg.WatermarkSize) - inset
	return r.painter.PaintShadowed(dst, src, text, cfg.WatermarkSize, c, color.Black,
		image.Pt(x, top+int(m.Ascent)), image.Pt(watermarkShadowPx, watermarkShadowPx))
}
