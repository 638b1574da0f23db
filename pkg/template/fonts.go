// fonts.go - Resolve and load the Gurmukhi and Latin fonts for a render.
// Paths go through fonts.Resolve, then the renderer's shared cache, so a
// batch parses each file once.
package template

import (
	"fmt"

	"github.com/gurbanicard/gurbanicard/pkg/fonts"
)

// fontPair is the two faces a poster uses.
type fontPair struct {
	gurmukhi *fonts.Source
	latin    *fonts.Source
}

// loadFonts resolves the configured font paths and loads them from cache.
// A path that cannot be loaded fails the render; nothing is substituted.
func (r *Renderer) loadFonts(cfg RenderConfig) (fontPair, error) {
	gurPath, latPath, err := fonts.Resolve(cfg.GurmukhiFontPath, cfg.LatinFontPath, r.searchDirs...)
	if err != nil {
		return fontPair{}, err
	}

	gur, err := r.fonts.Load(gurPath)
	if err != nil {
		return fontPair{}, fmt.Errorf("gurmukhi font: %w", err)
	}
	lat, err := r.fonts.Load(latPath)
	if err != nil {
		return fontPair{}, fmt.Errorf("latin font: %w", err)
	}
	return fontPair{gurmukhi: gur, latin: lat}, nil
}

// Fonts exposes the renderer's font cache, e.g. for registering uploads.
func (r *Renderer) Fonts() *fonts.Cache { return r.fonts }
