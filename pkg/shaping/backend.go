// Package shaping measures and rasterizes single lines of text.
//
// Two backends implement [Backend]: [NativeShaping] runs a HarfBuzz shaper so
// complex scripts such as Gurmukhi get their ligatures and reordering, and
// [SimpleStringDraw] draws one glyph per codepoint through a freetype face.
// The backend is chosen once with [Select] and injected into the renderer.
package shaping

import (
	"fmt"
	"image"

	"github.com/gurbanicard/gurbanicard/pkg/fonts"
	"github.com/gurbanicard/gurbanicard/pkg/logging"
)

// Metrics describes a measured line in pixels.
// Descent is the positive distance below the baseline.
type Metrics struct {
	Advance float64
	Ascent  float64
	Descent float64
	Height  float64
}

// Mask is a rasterized line. Alpha is nil for text with no visible ink.
type Mask struct {
	Alpha *image.Alpha
	// Offset is the position of Alpha's top-left corner relative to the pen
	// origin on the baseline.
	Offset  image.Point
	Advance float64
}

// Backend measures and rasterizes text. Implementations are deterministic
// for identical (font, text, size) and safe for concurrent use.
type Backend interface {
	Name() string
	Measure(src *fonts.Source, text string, size float64) (Metrics, error)
	Rasterize(src *fonts.Source, text string, size float64) (*Mask, error)
}

// Mode selects a backend.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeNative Mode = "native"
	ModeSimple Mode = "simple"
)

// newNative is set by native.go; it stays nil in builds tagged noshaping.
var newNative func() Backend

// NativeAvailable reports whether the HarfBuzz shaper is compiled in.
func NativeAvailable() bool { return newNative != nil }

// ParseMode converts a flag value to a Mode. Empty means ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeNative, ModeSimple:
		return m, nil
	default:
		return "", fmt.Errorf("unknown shaper %q: use auto, native or simple", s)
	}
}

// Select returns the backend for mode. ModeAuto prefers native shaping.
func Select(mode Mode) (Backend, error) {
	var b Backend
	switch mode {
	case ModeAuto, "":
		if NativeAvailable() {
			b = newNative()
		} else {
			b = SimpleStringDraw{}
		}
	case ModeNative:
		if !NativeAvailable() {
			return nil, fmt.Errorf("native shaping not compiled in (built with -tags noshaping)")
		}
		b = newNative()
	case ModeSimple:
		b = SimpleStringDraw{}
	default:
		return nil, fmt.Errorf("unknown shaper %q", mode)
	}
	logging.Logger().Debug("shaping backend selected", "mode", string(mode), "backend", b.Name())
	return b, nil
}
