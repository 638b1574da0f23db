//go:build !noshaping

package shaping

import (
	"os"
	"testing"

	"github.com/go-text/typesetting/language"
	"github.com/gurbanicard/gurbanicard/pkg/fonts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectScript(t *testing.T) {
	assert.Equal(t, language.Gurmukhi, detectScript([]rune("  ੴ ਸਤਿ ਨਾਮੁ")))
	assert.Equal(t, language.Latin, detectScript([]rune("123 Waheguru")))
	assert.Equal(t, language.Arabic, detectScript([]rune("سلام")))
	assert.Equal(t, language.Latin, detectScript([]rune("1, 2, 3")))
	assert.Equal(t, language.NewLanguage("pa"), languageFor(language.Gurmukhi))
}

func TestNativeShape(t *testing.T) {
	src := loadLatin(t)
	var n NativeShaping

	run, err := n.Shape(src, "Hello", 40)
	require.NoError(t, err)
	require.Len(t, run.Glyphs, 5)

	var sum float64
	for _, g := range run.Glyphs {
		assert.NotZero(t, g.ID)
		sum += fixedToFloat(g.XAdvance)
	}
	assert.InDelta(t, run.Width(), sum, 1e-9)

	again, err := n.Shape(src, "Hello", 40)
	require.NoError(t, err)
	assert.Equal(t, run, again)
}

func TestNativeMeasureAgreesWithSimple(t *testing.T) {
	src := loadLatin(t)

	native, err := NativeShaping{}.Measure(src, "Guru Granth Sahib", 48)
	require.NoError(t, err)
	simple, err := SimpleStringDraw{}.Measure(src, "Guru Granth Sahib", 48)
	require.NoError(t, err)

	assert.InDelta(t, simple.Advance, native.Advance, 0.05*simple.Advance)
	assert.Greater(t, native.Ascent, native.Descent)
	assert.InDelta(t, native.Ascent+native.Descent, native.Height, 1e-9)
}

func TestNativeRasterize(t *testing.T) {
	src := loadLatin(t)
	var n NativeShaping

	mask, err := n.Rasterize(src, "Hello", 48)
	require.NoError(t, err)
	require.NotNil(t, mask.Alpha)
	assert.Less(t, mask.Offset.Y, 0)
	assert.Greater(t, inked(mask.Alpha), 0)
	// "H" is drawn from x ~ 0, so the mask starts near the pen.
	assert.InDelta(t, 0, mask.Offset.X, 8)

	blank, err := n.Rasterize(src, "   ", 48)
	require.NoError(t, err)
	assert.Nil(t, blank.Alpha)
	assert.Greater(t, blank.Advance, 0.0)
}

// testdata/NotoSansDevanagari-Regular.ttf is an OFL Indic font with
// conjunct and matra reordering rules.
func loadDevanagari(t *testing.T) *fonts.Source {
	t.Helper()
	data, err := os.ReadFile("testdata/NotoSansDevanagari-Regular.ttf")
	require.NoError(t, err)
	src, err := fonts.NewCache(0).LoadBytes("devanagari", data)
	require.NoError(t, err)
	return src
}

func TestNativeShapeFormsConjunct(t *testing.T) {
	src := loadDevanagari(t)
	const ksha = "क्ष" // ka + virama + ssa

	run, err := NativeShaping{}.Shape(src, ksha, 48)
	require.NoError(t, err)
	require.NotEmpty(t, run.Glyphs)
	assert.Less(t, len(run.Glyphs), len([]rune(ksha)))

	native, err := NativeShaping{}.Measure(src, ksha, 48)
	require.NoError(t, err)
	simple, err := SimpleStringDraw{}.Measure(src, ksha, 48)
	require.NoError(t, err)
	assert.Less(t, native.Advance, simple.Advance)
	assert.InDelta(t, run.Width(), native.Advance, 1e-9)
}

func TestNativeShapeReordersPreBaseMatra(t *testing.T) {
	src := loadDevanagari(t)
	var n NativeShaping

	ka, err := n.Shape(src, "क", 48)
	require.NoError(t, err)
	require.Len(t, ka.Glyphs, 1)

	// The i-matra follows ka in memory but is drawn before it.
	ki, err := n.Shape(src, "कि", 48)
	require.NoError(t, err)
	require.Len(t, ki.Glyphs, 2)
	assert.NotEqual(t, ka.Glyphs[0].ID, ki.Glyphs[0].ID)
	assert.Equal(t, ka.Glyphs[0].ID, ki.Glyphs[1].ID)
}

func TestNativeRasterizeComplexScript(t *testing.T) {
	src := loadDevanagari(t)

	mask, err := NativeShaping{}.Rasterize(src, "क्षत्रिय", 48)
	require.NoError(t, err)
	require.NotNil(t, mask.Alpha)
	assert.Greater(t, inked(mask.Alpha), 0)
	assert.Greater(t, mask.Advance, 0.0)
}
