package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordsShabadScenario(t *testing.T) {
	recs, err := ParseRecords([]byte(`{"originalTitle":"T1","englishTitle":"T2","text":{"0":"#skip","1":"Line A","2":"Line B"}}`))
	require.NoError(t, err)
	assert.Equal(t, []LineRecord{
		{Text: "Line A", Title: "T1", Subtitle: "T2"},
		{Text: "Line B", Title: "T1", Subtitle: "T2"},
	}, recs)
}

func TestParseRecordsNumericKeyOrder(t *testing.T) {
	recs, err := ParseRecords([]byte(`{"text":{"10":"ten","2":"two","1":"one","b":"bee","a":"  ay  ","3":"   "}}`))
	require.NoError(t, err)
	var got []string
	for _, r := range recs {
		got = append(got, r.Text)
		assert.Empty(t, r.Title)
	}
	assert.Equal(t, []string{"one", "two", "ten", "ay", "bee"}, got)
}

func TestParseRecordsLists(t *testing.T) {
	recs, err := ParseRecords([]byte(`["ਸਤਿ ਨਾਮੁ", {"line":"a","title":"t"}, {"text":"b","subtitle":"s"}]`))
	require.NoError(t, err)
	assert.Equal(t, []LineRecord{
		{Text: "ਸਤਿ ਨਾਮੁ"},
		{Text: "a", Title: "t"},
		{Text: "b", Subtitle: "s"},
	}, recs)

	for _, key := range []string{"items", "data", "shabads", "lines"} {
		recs, err := ParseRecords([]byte(`{"` + key + `":[{"line":"x"}, "y"]}`))
		require.NoError(t, err, key)
		assert.Equal(t, []LineRecord{{Text: "x"}, {Text: "y"}}, recs, key)
	}
}

func TestParseRecordsKeepsEmptyListEntries(t *testing.T) {
	// Filtering empty verses is the renderer's job for list input.
	recs, err := ParseRecords([]byte(`["a", "", "#c"]`))
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, []string{"record 2 has no verse text, skipped", "record 3 has no verse text, skipped"}, ValidateRecords(recs))
}

func TestParseRecordsUnrecognized(t *testing.T) {
	for _, in := range []string{`{}`, `{"title":"x"}`, `42`, `"just text"`, `null`, `{"items":"nope"}`} {
		recs, err := ParseRecords([]byte(in))
		require.NoError(t, err, in)
		assert.Empty(t, recs, in)
	}
}

func TestParseRecordsShapeErrors(t *testing.T) {
	for _, in := range []string{`{"text":`, `not json`, `[1, 2]`, `["ok", true]`, `{"lines":[[]]}`} {
		_, err := ParseRecords([]byte(in))
		var jse *JSONShapeError
		assert.ErrorAs(t, err, &jse, in)
	}
}

func TestParseRecordsBOM(t *testing.T) {
	recs, err := ParseRecords([]byte("\xef\xbb\xbf[\"a\"]"))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestIsEmptyVerse(t *testing.T) {
	for _, s := range []string{"", "   ", "\t\n", "#", "  #100"} {
		assert.True(t, IsEmptyVerse(s), "%q", s)
	}
	for _, s := range []string{"a", "ਵਾਹਿਗੁਰੂ", "a #b"} {
		assert.False(t, IsEmptyVerse(s), "%q", s)
	}
}

func TestExampleJSONParses(t *testing.T) {
	data, conf := GetExampleJSON()
	recs, err := ParseRecords([]byte(data))
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "ਗੁਰੂ ਗ੍ਰੰਥ ਸਾਹਿਬ ਜੀ", recs[0].Title)
	assert.Equal(t, "Guru Granth Sahib", recs[0].Subtitle)
	assert.Equal(t, "ਮਾਝ ਮਹਲਾ ੫ ॥", recs[3].Text)

	cfg, err := DecodeConfig(".toml", []byte(conf))
	require.NoError(t, err)
	assert.Equal(t, "1080p", cfg.Render.Canvas)
	reg, err := cfg.Registry()
	require.NoError(t, err)
	_, err = reg.Lookup("lotus")
	assert.NoError(t, err)
}
