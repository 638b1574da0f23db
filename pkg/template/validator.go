// validator.go - Check configs and records before any rendering starts.
package template

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gurbanicard/gurbanicard/pkg/theme"
)

// ValidateConfig rejects settings that would fail every render. An unknown
// theme is returned as *theme.UnknownThemeError.
func ValidateConfig(cfg RenderConfig, themes *theme.Registry) error {
	if _, err := themes.Lookup(cfg.Theme); err != nil {
		return err
	}
	w, h, err := cfg.Size()
	if err != nil {
		return err
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("canvas %dx%d: dimensions must be positive", w, h)
	}
	if cfg.Padding < 0 || 2*cfg.Padding >= w {
		return fmt.Errorf("padding %d does not leave room on a %d px wide canvas", cfg.Padding, w)
	}
	if cfg.GurbaniMinSize <= 0 || cfg.GurbaniStartSize < cfg.GurbaniMinSize {
		return fmt.Errorf("gurbani size %v must be at least the minimum %v (> 0)", cfg.GurbaniStartSize, cfg.GurbaniMinSize)
	}
	if cfg.LineSpacing <= 0 {
		return fmt.Errorf("line spacing %v must be positive", cfg.LineSpacing)
	}
	if cfg.TitleSize <= 0 || cfg.SubtitleSize <= 0 || cfg.WatermarkSize <= 0 {
		return fmt.Errorf("title, subtitle and watermark sizes must be positive")
	}
	return nil
}

// ValidateRecords returns warnings (never fatal errors) for records that
// will be skipped.
func ValidateRecords(records []LineRecord) []string {
	var warnings []string
	for i, r := range records {
		if IsEmptyVerse(r.Text) {
			warnings = append(warnings, fmt.Sprintf("record %d has no verse text, skipped", i+1))
		}
	}
	return warnings
}

// PresetNames returns the canvas preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatThemes returns a human-readable listing of the registry's themes.
func FormatThemes(themes *theme.Registry) string {
	var sb strings.Builder
	sb.WriteString("Themes:\n")
	for _, name := range themes.Names() {
		t, _ := themes.Lookup(name)
		fmt.Fprintf(&sb, "  %-10s gradient %s → %s  accent %s  text %s / %s\n",
			name, theme.Hex(t.GradientTop), theme.Hex(t.GradientBottom),
			theme.Hex(t.Accent), theme.Hex(t.PrimaryText), theme.Hex(t.SecondaryText))
	}
	sb.WriteString("\nCanvas presets:\n")
	for _, name := range PresetNames() {
		d := Presets[name]
		fmt.Fprintf(&sb, "  %-17s %dx%d\n", name, d[0], d[1])
	}
	return sb.String()
}
