package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gurbanicard/gurbanicard/pkg/fonts"
	"github.com/gurbanicard/gurbanicard/pkg/shaping"
	"github.com/gurbanicard/gurbanicard/pkg/template"
	"github.com/gurbanicard/gurbanicard/pkg/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	r, err := template.NewRenderer(template.Options{Backend: shaping.SimpleStringDraw{}, SearchDirs: []string{}})
	require.NoError(t, err)

	base := template.DefaultConfig()
	base.Width, base.Height, base.Padding = 320, 240, 16
	base.GurbaniStartSize, base.TitleSize, base.SubtitleSize, base.WatermarkSize = 32, 18, 14, 10
	base.GurmukhiFontPath = fonts.DefaultLatin
	base.LatinFontPath = fonts.DefaultLatin

	s, err := New(r, base)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return ts
}

func postJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const shabad = `{"originalTitle":"T1","englishTitle":"T2","text":{"0":"#skip","1":"Line A","2":"Line B"}}`

func TestParseEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/parse", "application/json", strings.NewReader(shabad))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Records []template.LineRecord `json:"records"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []template.LineRecord{
		{Text: "Line A", Title: "T1", Subtitle: "T2"},
		{Text: "Line B", Title: "T1", Subtitle: "T2"},
	}, out.Records)

	bad, err := http.Post(ts.URL+"/api/parse", "application/json", strings.NewReader(`{"text":`))
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestRenderEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/render", map[string]any{
		"data":   json.RawMessage(shabad),
		"index":  2,
		"config": map[string]any{"theme": "midnight", "frame": false},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	resp = postJSON(t, ts.URL+"/api/render", map[string]any{"record": map[string]any{"line": "#"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/render", map[string]any{
		"record": map[string]any{"line": "x"},
		"config": map[string]any{"theme": "neon"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/render", map[string]any{
		"record": map[string]any{"line": "x"},
		"config": map[string]any{"font_gurmukhi": "/etc/passwd"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/render", map[string]any{"data": json.RawMessage(shabad), "index": 9})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatchEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/batch", map[string]any{
		"data": json.RawMessage(`["one", "", "two", "#x", "three"]`),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "3", resp.Header.Get("X-Rendered"))
	assert.Equal(t, "2", resp.Header.Get("X-Skipped"))
	assert.Equal(t, "0", resp.Header.Get("X-Failed"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	assert.Equal(t, "gurbani_0003.png", zr.File[2].Name)

	resp = postJSON(t, ts.URL+"/api/batch", map[string]any{"data": json.RawMessage(`["a","b"]`), "format": "avi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	head := make([]byte, 12)
	_, err = io.ReadFull(resp.Body, head)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(head[:4]))

	resp = postJSON(t, ts.URL+"/api/batch", map[string]any{"data": json.RawMessage(`[]`)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func uploadFont(t *testing.T, url, name string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	fw.Write(data)
	require.NoError(t, mw.Close())
	resp, err := http.Post(url+"/api/upload/font", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestFontUploadLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := uploadFont(t, ts.URL, "Go Bold.ttf", gobold.TTF)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info assetInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "Go", info.Family)
	assert.Equal(t, len(gobold.TTF), info.Size)

	render := postJSON(t, ts.URL+"/api/render", map[string]any{
		"record": map[string]any{"line": "bold verse"},
		"config": map[string]any{"font_gurmukhi": info.ID},
	})
	assert.Equal(t, http.StatusOK, render.StatusCode)

	list, err := http.Get(ts.URL + "/api/assets")
	require.NoError(t, err)
	defer list.Body.Close()
	var assets []assetInfo
	require.NoError(t, json.NewDecoder(list.Body).Decode(&assets))
	require.Len(t, assets, 1)

	get, err := http.Get(ts.URL + info.URL)
	require.NoError(t, err)
	defer get.Body.Close()
	got, _ := io.ReadAll(get.Body)
	assert.Equal(t, gobold.TTF, got)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+info.URL, nil)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusOK, del.StatusCode)

	gone, err := http.Get(ts.URL + info.URL)
	require.NoError(t, err)
	gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)

	bad := uploadFont(t, ts.URL, "junk.ttf", []byte("not a font"))
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestThemesAndSample(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/themes")
	require.NoError(t, err)
	defer resp.Body.Close()
	var out struct {
		Themes  []theme.Spec `json:"themes"`
		Default string       `json:"default"`
		Shaper  string       `json:"shaper"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Themes, 3)
	assert.Equal(t, "midnight", out.Themes[0].Name)
	assert.Equal(t, "royal", out.Default)
	assert.Equal(t, "simple", out.Shaper)

	sample, err := http.Get(ts.URL + "/api/sample")
	require.NoError(t, err)
	defer sample.Body.Close()
	data, _ := io.ReadAll(sample.Body)
	recs, err := template.ParseRecords(data)
	require.NoError(t, err)
	assert.Len(t, recs, 4)

	index, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer index.Body.Close()
	assert.Equal(t, http.StatusOK, index.StatusCode)
}

func TestRandomIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := randomID()
		assert.Len(t, id, 26)
		assert.Equal(t, id, sanitizeFilename(id))
		assert.False(t, seen[id], id)
		seen[id] = true
	}
}
