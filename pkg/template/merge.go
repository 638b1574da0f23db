// merge.go - Layer render configs: defaults, then config file, then flags.
package template

// MergeConfig overlays the set (non-zero) fields of over onto base.
// Canvas replaces explicit dimensions from base so a later preset wins.
func MergeConfig(base, over RenderConfig) RenderConfig {
	out := base

	if over.Canvas != "" {
		out.Canvas = over.Canvas
	}
	if over.Width > 0 || over.Height > 0 {
		// Explicit dimensions beat a preset inherited from base.
		out.Canvas = over.Canvas
		if over.Width > 0 {
			out.Width = over.Width
		}
		if over.Height > 0 {
			out.Height = over.Height
		}
	}
	if over.Padding > 0 {
		out.Padding = over.Padding
	}
	if over.Theme != "" {
		out.Theme = over.Theme
	}
	if over.GurbaniStartSize > 0 {
		out.GurbaniStartSize = over.GurbaniStartSize
	}
	if over.GurbaniMinSize > 0 {
		out.GurbaniMinSize = over.GurbaniMinSize
	}
	if over.LineSpacing > 0 {
		out.LineSpacing = over.LineSpacing
	}
	if over.TitleSize > 0 {
		out.TitleSize = over.TitleSize
	}
	if over.SubtitleSize > 0 {
		out.SubtitleSize = over.SubtitleSize
	}
	if over.WatermarkText != "" {
		out.WatermarkText = over.WatermarkText
	}
	if over.WatermarkSize > 0 {
		out.WatermarkSize = over.WatermarkSize
	}
	if over.Frame != nil {
		out.Frame = over.Frame
	}
	if over.Shadow != nil {
		out.Shadow = over.Shadow
	}
	if over.VignetteStrength != 0 {
		out.VignetteStrength = over.VignetteStrength
	}
	if over.GurmukhiFontPath != "" {
		out.GurmukhiFontPath = over.GurmukhiFontPath
	}
	if over.LatinFontPath != "" {
		out.LatinFontPath = over.LatinFontPath
	}
	return out
}
