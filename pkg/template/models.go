// Package template composes verse posters: it parses verse records, loads
// render configuration, and paints each record onto a themed canvas.
package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gurbanicard/gurbanicard/pkg/theme"
)

// ── Record types ──

// LineRecord is one verse line with optional title and subtitle.
// Title is drawn in the Gurmukhi font, Subtitle in the Latin font.
type LineRecord struct {
	Text     string `json:"line"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
}

// ── Config types ──

// RenderConfig holds every recognized render setting. Zero values mean
// "unset" so configs can be layered with MergeConfig.
type RenderConfig struct {
	Canvas  string `json:"canvas,omitempty" toml:"canvas,omitempty" yaml:"canvas,omitempty"` // preset name or "WxH"
	Width   int    `json:"width,omitempty" toml:"width,omitempty" yaml:"width,omitempty"`
	Height  int    `json:"height,omitempty" toml:"height,omitempty" yaml:"height,omitempty"`
	Padding int    `json:"padding,omitempty" toml:"padding,omitempty" yaml:"padding,omitempty"`
	Theme   string `json:"theme,omitempty" toml:"theme,omitempty" yaml:"theme,omitempty"`

	GurbaniStartSize float64 `json:"gurbani_size,omitempty" toml:"gurbani_size,omitempty" yaml:"gurbani_size,omitempty"`
	GurbaniMinSize   float64 `json:"gurbani_min_size,omitempty" toml:"gurbani_min_size,omitempty" yaml:"gurbani_min_size,omitempty"`
	LineSpacing      float64 `json:"line_spacing,omitempty" toml:"line_spacing,omitempty" yaml:"line_spacing,omitempty"`
	TitleSize        float64 `json:"title_size,omitempty" toml:"title_size,omitempty" yaml:"title_size,omitempty"`
	SubtitleSize     float64 `json:"subtitle_size,omitempty" toml:"subtitle_size,omitempty" yaml:"subtitle_size,omitempty"`

	WatermarkText string  `json:"watermark,omitempty" toml:"watermark,omitempty" yaml:"watermark,omitempty"`
	WatermarkSize float64 `json:"watermark_size,omitempty" toml:"watermark_size,omitempty" yaml:"watermark_size,omitempty"`

	Frame            *bool   `json:"frame,omitempty" toml:"frame,omitempty" yaml:"frame,omitempty"`   // nil = on
	Shadow           *bool   `json:"shadow,omitempty" toml:"shadow,omitempty" yaml:"shadow,omitempty"` // nil = on
	VignetteStrength float64 `json:"vignette,omitempty" toml:"vignette,omitempty" yaml:"vignette,omitempty"`

	GurmukhiFontPath string `json:"font_gurmukhi,omitempty" toml:"font_gurmukhi,omitempty" yaml:"font_gurmukhi,omitempty"`
	LatinFontPath    string `json:"font_latin,omitempty" toml:"font_latin,omitempty" yaml:"font_latin,omitempty"`
}

// DefaultConfig returns the settings used for anything a config leaves unset.
func DefaultConfig() RenderConfig {
	return RenderConfig{
		Width:            1920,
		Height:           1080,
		Padding:          100,
		Theme:            theme.Default,
		GurbaniStartSize: 96,
		GurbaniMinSize:   24,
		LineSpacing:      1.15,
		TitleSize:        56,
		SubtitleSize:     40,
		WatermarkSize:    28,
		VignetteStrength: theme.DefaultVignetteStrength,
	}
}

// FrameEnabled reports whether the ornamental frame is drawn.
func (c RenderConfig) FrameEnabled() bool { return c.Frame == nil || *c.Frame }

// ShadowEnabled reports whether verse lines get a drop shadow.
func (c RenderConfig) ShadowEnabled() bool { return c.Shadow == nil || *c.Shadow }

// Size returns the canvas dimensions, preferring the Canvas preset.
func (c RenderConfig) Size() (int, int, error) {
	if c.Canvas == "" {
		return c.Width, c.Height, nil
	}
	return ParseCanvas(c.Canvas)
}

// Bool returns a pointer to v for the optional toggles.
func Bool(v bool) *bool { return &v }

// ── Presets for common resolutions ──

// Presets maps preset names to [width, height].
var Presets = map[string][2]int{
	"720p":             {1280, 720},
	"1080p":            {1920, 1080},
	"1440p":            {2560, 1440},
	"4k":               {3840, 2160},
	"portrait":         {1080, 1920},
	"instagram_square": {1080, 1080},
	"instagram_story":  {1080, 1920},
	"youtube_thumb":    {1280, 720},
}

// ParseCanvas resolves a preset name or a "WxH" string to dimensions.
func ParseCanvas(s string) (int, int, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if dims, ok := Presets[key]; ok {
		return dims[0], dims[1], nil
	}
	ws, hs, ok := strings.Cut(key, "x")
	if ok {
		w, werr := strconv.Atoi(ws)
		h, herr := strconv.Atoi(hs)
		if werr == nil && herr == nil && w > 0 && h > 0 {
			return w, h, nil
		}
	}
	return 0, 0, fmt.Errorf("unknown canvas %q: use a preset (%s) or WxH", s, strings.Join(PresetNames(), ", "))
}
