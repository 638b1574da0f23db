// theme.go - Poster color themes and the read-only registry that names them.
package theme

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
)

// Default is the theme used when a configuration names none.
const Default = "royal"

// Theme is a complete poster palette. Every field is required.
type Theme struct {
	Name           string
	GradientTop    color.RGBA
	GradientBottom color.RGBA
	Accent         color.RGBA
	PrimaryText    color.RGBA
	SecondaryText  color.RGBA
}

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{r, g, b, 255} }

var builtins = []Theme{
	{
		Name:           "royal",
		GradientTop:    rgb(255, 250, 235),
		GradientBottom: rgb(224, 233, 255),
		Accent:         rgb(212, 175, 55),
		PrimaryText:    rgb(20, 20, 20),
		SecondaryText:  rgb(30, 30, 30),
	},
	{
		Name:           "saffron",
		GradientTop:    rgb(255, 248, 231),
		GradientBottom: rgb(255, 223, 164),
		Accent:         rgb(230, 140, 0),
		PrimaryText:    rgb(25, 20, 15),
		SecondaryText:  rgb(40, 35, 30),
	},
	{
		Name:           "midnight",
		GradientTop:    rgb(20, 24, 44),
		GradientBottom: rgb(5, 6, 14),
		Accent:         rgb(230, 220, 200),
		PrimaryText:    rgb(245, 245, 245),
		SecondaryText:  rgb(230, 230, 230),
	},
}

// UnknownThemeError reports a theme name missing from the registry.
type UnknownThemeError struct {
	Name  string
	Known []string
}

func (e *UnknownThemeError) Error() string {
	return fmt.Sprintf("unknown theme %q (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Spec declares a theme with hex colors, as written in config files.
type Spec struct {
	Name           string `json:"name" toml:"name" yaml:"name"`
	GradientTop    string `json:"gradient_top" toml:"gradient_top" yaml:"gradient_top"`
	GradientBottom string `json:"gradient_bottom" toml:"gradient_bottom" yaml:"gradient_bottom"`
	Accent         string `json:"accent" toml:"accent" yaml:"accent"`
	PrimaryText    string `json:"primary_text" toml:"primary_text" yaml:"primary_text"`
	SecondaryText  string `json:"secondary_text" toml:"secondary_text" yaml:"secondary_text"`
}

// Theme converts s, failing on a missing name or any bad color.
func (s Spec) Theme() (Theme, error) {
	name := strings.ToLower(strings.TrimSpace(s.Name))
	if name == "" {
		return Theme{}, fmt.Errorf("theme: missing name")
	}
	t := Theme{Name: name}
	fields := []struct {
		key string
		hex string
		dst *color.RGBA
	}{
		{"gradient_top", s.GradientTop, &t.GradientTop},
		{"gradient_bottom", s.GradientBottom, &t.GradientBottom},
		{"accent", s.Accent, &t.Accent},
		{"primary_text", s.PrimaryText, &t.PrimaryText},
		{"secondary_text", s.SecondaryText, &t.SecondaryText},
	}
	for _, f := range fields {
		c, err := ParseHex(f.hex)
		if err != nil {
			return Theme{}, fmt.Errorf("theme %q %s: %w", name, f.key, err)
		}
		*f.dst = c
	}
	return t, nil
}

// Spec returns t with its colors written as hex.
func (t Theme) Spec() Spec {
	return Spec{
		Name:           t.Name,
		GradientTop:    Hex(t.GradientTop),
		GradientBottom: Hex(t.GradientBottom),
		Accent:         Hex(t.Accent),
		PrimaryText:    Hex(t.PrimaryText),
		SecondaryText:  Hex(t.SecondaryText),
	}
}

// Registry maps theme names to themes. It is not modified after
// construction and is safe for concurrent reads.
type Registry struct {
	themes map[string]Theme
	names  []string
}

// NewRegistry returns the built-in themes plus custom. A custom theme with a
// built-in's name replaces it.
func NewRegistry(custom ...Spec) (*Registry, error) {
	r := &Registry{themes: make(map[string]Theme, len(builtins)+len(custom))}
	for _, t := range builtins {
		r.themes[t.Name] = t
	}
	for _, s := range custom {
		t, err := s.Theme()
		if err != nil {
			return nil, err
		}
		r.themes[t.Name] = t
	}
	for name := range r.themes {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

var builtinRegistry, _ = NewRegistry()

// Builtin returns the registry of built-in themes.
func Builtin() *Registry { return builtinRegistry }

// Lookup returns the named theme. Names are case-insensitive.
func (r *Registry) Lookup(name string) (Theme, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if t, ok := r.themes[key]; ok {
		return t, nil
	}
	return Theme{}, &UnknownThemeError{Name: name, Known: r.Names()}
}

// Names returns the theme names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
