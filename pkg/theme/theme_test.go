package theme

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinThemesComplete(t *testing.T) {
	r := Builtin()
	assert.Equal(t, []string{"midnight", "royal", "saffron"}, r.Names())
	for _, name := range r.Names() {
		th, err := r.Lookup(name)
		require.NoError(t, err)
		for _, c := range []color.RGBA{th.GradientTop, th.GradientBottom, th.Accent, th.PrimaryText, th.SecondaryText} {
			assert.Equal(t, uint8(255), c.A, "%s has an unset color", name)
		}
	}
}

func TestLookup(t *testing.T) {
	th, err := Builtin().Lookup("  Saffron ")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{230, 140, 0, 255}, th.Accent)

	_, err = Builtin().Lookup("neon")
	var ute *UnknownThemeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "neon", ute.Name)
	assert.Contains(t, err.Error(), "royal")
}

func TestCustomThemes(t *testing.T) {
	r, err := NewRegistry(Spec{
		Name:           "Lotus",
		GradientTop:    "#ffffff",
		GradientBottom: "#fce4ec",
		Accent:         "#c2185b",
		PrimaryText:    "#222",
		SecondaryText:  "333333",
	})
	require.NoError(t, err)
	th, err := r.Lookup("lotus")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x22, 0x22, 0x22, 255}, th.PrimaryText)
	assert.Equal(t, "#c2185b", Hex(th.Accent))
	assert.Len(t, r.Names(), 4)

	_, err = NewRegistry(Spec{Name: "bad", GradientTop: "#12345"})
	assert.ErrorContains(t, err, "gradient_top")
	_, err = NewRegistry(Spec{GradientTop: "#123456"})
	assert.Error(t, err)
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#D4AF37")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{212, 175, 55, 255}, c)

	for _, bad := range []string{"", "#", "#12", "#gggggg", "#1234567"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestSpecRoundTrip(t *testing.T) {
	for _, name := range Builtin().Names() {
		th, err := Builtin().Lookup(name)
		require.NoError(t, err)
		back, err := th.Spec().Theme()
		require.NoError(t, err)
		assert.Equal(t, th, back, name)
	}
}

// The exact end colors are checked on Gradient, not MakeBackground: the
// vignette MakeBackground adds darkens the margins, so row 0 of a full
// background is darker than GradientTop. The hue ends are still checked on
// the full background below.
func TestGradientScenario(t *testing.T) {
	th := Theme{GradientTop: rgb(255, 0, 0), GradientBottom: rgb(0, 0, 255)}

	bg := MakeBackground(100, 200, th)
	top, bottom := bg.RGBAAt(50, 0), bg.RGBAAt(50, 199)
	assert.Greater(t, top.R, top.B)
	assert.Greater(t, bottom.B, bottom.R)

	img := Gradient(100, 200, th)
	require.Equal(t, image.Rect(0, 0, 100, 200), img.Bounds())

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(99, 199))

	prev := img.RGBAAt(50, 0)
	for y := 1; y < 200; y++ {
		c := img.RGBAAt(50, y)
		assert.LessOrEqual(t, c.R, prev.R, "row %d", y)
		assert.GreaterOrEqual(t, c.B, prev.B, "row %d", y)
		assert.Equal(t, c, img.RGBAAt(0, y), "rows are uniform")
		prev = c
	}
}

func TestGradientSingleRow(t *testing.T) {
	img := Gradient(3, 1, Theme{GradientTop: rgb(10, 20, 30), GradientBottom: rgb(200, 200, 200)})
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, img.RGBAAt(1, 0))
}

func TestVignetteDarkensMargins(t *testing.T) {
	th := Theme{GradientTop: rgb(200, 200, 200), GradientBottom: rgb(200, 200, 200)}
	img := MakeBackground(400, 300, th)

	center := img.RGBAAt(200, 150)
	corner := img.RGBAAt(0, 0)
	assert.InDelta(t, 200, int(center.R), 3, "middle stays clear")
	assert.Less(t, corner.R, center.R)
	// Never darker than the full overlay.
	assert.GreaterOrEqual(t, int(corner.R), int(200*(1-DefaultVignetteStrength))-2)

	// Soft edge: brightness rises gradually from the left edge inward.
	row := 150
	prev := img.RGBAAt(0, row).R
	for x := 1; x <= 200; x++ {
		c := img.RGBAAt(x, row).R
		assert.GreaterOrEqual(t, int(c)+1, int(prev), "x=%d", x)
		prev = c
	}
}

func TestVignetteZeroStrengthIsNoop(t *testing.T) {
	img := Gradient(50, 50, Theme{GradientTop: rgb(9, 9, 9), GradientBottom: rgb(9, 9, 9)})
	ApplyVignette(img, 0)
	assert.Equal(t, color.RGBA{9, 9, 9, 255}, img.RGBAAt(0, 0))
}

func TestOrnamentalFrame(t *testing.T) {
	accent := rgb(212, 175, 55)
	src := Gradient(100, 80, Theme{GradientTop: rgb(1, 2, 3), GradientBottom: rgb(1, 2, 3)})
	out := OrnamentalFrame(src, accent, 10)

	grow := 2 * (10 + 2 + 5)
	require.Equal(t, image.Rect(0, 0, 100+grow, 80+grow), out.Bounds())

	assert.Equal(t, accent, out.RGBAAt(0, 0), "outer accent band")
	assert.Equal(t, accent, out.RGBAAt(4, 40))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, out.RGBAAt(5, 40), "white separator")
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, out.RGBAAt(6, 40))
	assert.Equal(t, accent, out.RGBAAt(7, 40), "inner accent band")
	assert.Equal(t, accent, out.RGBAAt(16, 40))
	assert.Equal(t, rgb(1, 2, 3), out.RGBAAt(17, 40), "original content")

	assert.Equal(t, 10, FrameThickness(1920, 1080))
}
