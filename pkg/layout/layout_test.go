package layout

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monospace measures every rune as half the font size wide.
func monospace(s string, size float64) (float64, error) {
	return float64(len([]rune(s))) * size * 0.5, nil
}

func fixedSize(size float64) MeasureFunc {
	return func(s string) (float64, error) { return monospace(s, size) }
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"empty", "", 100, []string{}},
		{"blank", " \t\n ", 100, []string{}},
		{"single word", "ਵਾਹਿਗੁਰੂ", 100, []string{"ਵਾਹਿਗੁਰੂ"}},
		{"fits on one line", "sat nam", 100, []string{"sat nam"}},
		{"greedy", "aa bb cc dd", 30, []string{"aa bb", "cc dd"}},
		{"overlong word alone", "a supercalifragilistic b", 50, []string{"a", "supercalifragilistic", "b"}},
		{"collapses whitespace", "  aa   bb\tcc  ", 1000, []string{"aa bb cc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Wrap(tt.text, fixedSize(10), tt.width)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrapPreservesWords(t *testing.T) {
	text := "ਸੋਚੈ ਸੋਚਿ ਨ ਹੋਵਈ ਜੇ ਸੋਚੀ ਲਖ ਵਾਰ ਚੁਪੈ ਚੁਪ ਨ ਹੋਵਈ ਜੇ ਲਾਇ ਰਹਾ ਲਿਵ ਤਾਰ"
	measure := fixedSize(12)
	for _, width := range []float64{20, 60, 150, 400, 10000} {
		lines, err := Wrap(text, measure, width)
		require.NoError(t, err)
		assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(lines, " ")))
		for _, l := range lines {
			w, _ := measure(l)
			if strings.Contains(l, " ") {
				assert.LessOrEqual(t, w, width, "multi-word line %q exceeds %v", l, width)
			}
		}
	}
}

func TestWrapPropagatesMeasureError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Wrap("a b", func(string) (float64, error) { return 0, boom }, 10)
	assert.ErrorIs(t, err, boom)
}

func TestSizesStartThenGrid(t *testing.T) {
	assert.Equal(t, []float64{96, 94, 92}, FitOptions{StartSize: 96, MinSize: 92, Step: 2}.Sizes())
	assert.Equal(t, []float64{97, 96, 94, 92}, FitOptions{StartSize: 97, MinSize: 92, Step: 2}.Sizes())
	assert.Equal(t, []float64{24}, FitOptions{StartSize: 24, MinSize: 24}.Sizes())
	assert.Equal(t, []float64{25, 24}, FitOptions{StartSize: 25, MinSize: 24}.Sizes())
}

func TestFitTriesOddStartSize(t *testing.T) {
	opts := FitOptions{MaxWidth: 10000, MaxHeight: 10000, StartSize: 97, MinSize: 24, LineSpacing: 1.15}
	res, err := Fit("short", monospace, opts)
	require.NoError(t, err)
	assert.Equal(t, 97.0, res.Size)
	assert.False(t, res.Overflow)
}

func fitOpts(start float64) FitOptions {
	return FitOptions{
		FontPath:    "g.ttf",
		MaxWidth:    600,
		MaxHeight:   300,
		StartSize:   start,
		MinSize:     24,
		LineSpacing: 1.15,
	}
}

func TestFitPicksLargestFittingSize(t *testing.T) {
	res, err := Fit("ik oankar", monospace, fitOpts(96))
	require.NoError(t, err)
	assert.Equal(t, 96.0, res.Size)
	assert.Equal(t, []string{"ik oankar"}, res.Lines)
	assert.Equal(t, "g.ttf", res.FontPath)
	assert.False(t, res.Overflow)

	text := strings.Repeat("ਸਤਿ ਨਾਮੁ ਕਰਤਾ ਪੁਰਖੁ ", 6)
	res, err = Fit(text, monospace, fitOpts(96))
	require.NoError(t, err)
	assert.False(t, res.Overflow)
	assert.Less(t, res.Size, 96.0)
	assert.LessOrEqual(t, res.MaxLineWidth(), 600.0)
	assert.LessOrEqual(t, res.TotalHeight, 300.0)
	assert.Equal(t, float64(len(res.Lines)*int(res.Size*1.15)), res.TotalHeight)

	// The next size up must not fit.
	bigger := fitOpts(res.Size + 2)
	bigger.MinSize = res.Size + 2
	up, err := Fit(text, monospace, bigger)
	require.NoError(t, err)
	assert.True(t, up.Overflow)
}

func TestFitMonotonicInStartSize(t *testing.T) {
	text := "ਮਨਿ ਜੀਤੈ ਜਗੁ ਜੀਤੁ ਨਾਨਕ ਗੁਰ ਪਰਸਾਦਿ ਹਰਿ ਨਾਮੁ ਧਿਆਇ"
	prev := 0.0
	for start := 24.0; start <= 140; start += 2 {
		res, err := Fit(text, monospace, fitOpts(start))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Size, prev, "start %v", start)
		prev = res.Size

		// An off-grid start adds itself as a candidate on top of the grid.
		odd, err := Fit(text, monospace, fitOpts(start+1))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, odd.Size, res.Size, "start %v", start+1)
	}
}

func TestFitDeterministic(t *testing.T) {
	text := strings.Repeat("ਵਾਹਿਗੁਰੂ ਜੀ ਕਾ ਖਾਲਸਾ ", 4)
	a, err := Fit(text, monospace, fitOpts(96))
	require.NoError(t, err)
	b, err := Fit(text, monospace, fitOpts(96))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFitOverflowTerminates(t *testing.T) {
	text := strings.Repeat("ਅਕਾਲ ਮੂਰਤਿ ", 200)
	res, err := Fit(text, monospace, fitOpts(96))
	require.NoError(t, err)
	assert.True(t, res.Overflow)
	assert.Equal(t, 24.0, res.Size)
	assert.NotEmpty(t, res.Lines)
	assert.Greater(t, res.TotalHeight, 300.0)
}

func TestFitEmptyText(t *testing.T) {
	res, err := Fit("", monospace, fitOpts(96))
	require.NoError(t, err)
	assert.Equal(t, 96.0, res.Size)
	assert.Empty(t, res.Lines)
	assert.Zero(t, res.TotalHeight)
}

func TestFitRejectsBadOptions(t *testing.T) {
	opts := fitOpts(96)
	opts.MinSize = 0
	_, err := Fit("x", monospace, opts)
	assert.ErrorIs(t, err, errBadOptions)

	opts = fitOpts(10)
	_, err = Fit("x", monospace, opts)
	assert.ErrorIs(t, err, errBadOptions)
}

func TestCenterXSymmetric(t *testing.T) {
	for _, w := range []float64{0, 1, 99, 100, 333.7} {
		x := CenterX(500, w)
		left := 500 - x
		right := x + int(w) - 500
		assert.LessOrEqual(t, left-right, 1)
		assert.GreaterOrEqual(t, left-right, -1)
	}
}
