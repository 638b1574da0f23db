package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/gurbanicard/gurbanicard/pkg/logging"
)

// DefaultStep is the font size decrement between fit attempts.
const DefaultStep = 2.0

// SizedMeasureFunc returns the width of s rendered at size pixels.
type SizedMeasureFunc func(s string, size float64) (float64, error)

// FitOptions bounds a fit.
type FitOptions struct {
	FontPath    string
	MaxWidth    float64
	MaxHeight   float64
	StartSize   float64
	MinSize     float64
	LineSpacing float64
	Step        float64
}

// FitResult is the chosen size and the wrapped lines at that size.
type FitResult struct {
	FontPath    string
	Size        float64
	Lines       []string
	LineWidths  []float64
	TotalHeight float64
	// Overflow is set when even MinSize did not fit and the MinSize layout
	// was returned anyway.
	Overflow bool
}

// MaxLineWidth returns the widest measured line.
func (r FitResult) MaxLineWidth() float64 {
	var w float64
	for _, lw := range r.LineWidths {
		w = max(w, lw)
	}
	return w
}

var errBadOptions = errors.New("layout: invalid fit options")

// Sizes lists the candidate sizes for opts, largest first: StartSize, then
// the grid MinSize + k*Step below it. Starts on the grid share one candidate
// list, so a larger start never yields a smaller size.
func (opts FitOptions) Sizes() []float64 {
	step := opts.Step
	if step <= 0 {
		step = DefaultStep
	}
	n := int(math.Floor((opts.StartSize-opts.MinSize)/step + 1e-9))
	sizes := make([]float64, 0, n+2)
	if top := opts.MinSize + float64(n)*step; opts.StartSize-top > 1e-9 {
		sizes = append(sizes, opts.StartSize)
	}
	for k := n; k >= 0; k-- {
		sizes = append(sizes, opts.MinSize+float64(k)*step)
	}
	return sizes
}

// LineStep is the whole-pixel baseline-to-baseline distance for size.
func LineStep(size, spacing float64) int { return int(size * spacing) }

// Fit finds the largest candidate size whose wrapped lines fit within
// MaxWidth and whose stacked height fits within MaxHeight. If no size fits,
// the MinSize layout is returned with Overflow set.
func Fit(text string, measure SizedMeasureFunc, opts FitOptions) (FitResult, error) {
	if opts.MinSize <= 0 || opts.StartSize < opts.MinSize || opts.LineSpacing <= 0 {
		return FitResult{}, fmt.Errorf("%w: start %v, min %v, spacing %v",
			errBadOptions, opts.StartSize, opts.MinSize, opts.LineSpacing)
	}

	var last FitResult
	for _, size := range opts.Sizes() {
		res, err := layoutAt(text, measure, size, opts)
		if err != nil {
			return FitResult{}, err
		}
		if res.MaxLineWidth() <= opts.MaxWidth && res.TotalHeight <= opts.MaxHeight {
			return res, nil
		}
		last = res
	}

	last.Overflow = true
	logging.Logger().Warn("text does not fit at minimum size",
		"chars", len([]rune(text)),
		"size", last.Size,
		"height", last.TotalHeight,
		"max_height", opts.MaxHeight)
	return last, nil
}

func layoutAt(text string, measure SizedMeasureFunc, size float64, opts FitOptions) (FitResult, error) {
	at := func(s string) (float64, error) { return measure(s, size) }

	lines, err := Wrap(text, at, opts.MaxWidth)
	if err != nil {
		return FitResult{}, err
	}
	res := FitResult{
		FontPath:    opts.FontPath,
		Size:        size,
		Lines:       lines,
		LineWidths:  make([]float64, len(lines)),
		TotalHeight: float64(len(lines) * LineStep(size, opts.LineSpacing)),
	}
	for i, l := range lines {
		if res.LineWidths[i], err = at(l); err != nil {
			return FitResult{}, err
		}
	}
	return res, nil
}
