// Package server provides the gurbanicard web preview UI and HTTP API.
package server

import (
	"bytes"
	"context"
	"crypto/rand"
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gurbanicard/gurbanicard/pkg/fonts"
	"github.com/gurbanicard/gurbanicard/pkg/generator"
	"github.com/gurbanicard/gurbanicard/pkg/logging"
	"github.com/gurbanicard/gurbanicard/pkg/shaping"
	"github.com/gurbanicard/gurbanicard/pkg/template"
	"github.com/gurbanicard/gurbanicard/pkg/theme"
)

//go:embed web/*
var webContent embed.FS

const (
	maxBodyBytes   = 8 << 20
	maxUploadBytes = 20 << 20
)

// ── Asset Manager ──

type asset struct {
	Name   string
	Data   []byte
	Mime   string
	Path   string // on-disk copy handed to the font cache
	Family string
}

type assetManager struct {
	mu     sync.RWMutex
	assets map[string]*asset
}

func newAssetManager() *assetManager {
	return &assetManager{assets: make(map[string]*asset)}
}

func (am *assetManager) add(id string, a *asset) {
	am.mu.Lock()
	am.assets[id] = a
	am.mu.Unlock()
}

func (am *assetManager) get(id string) (*asset, bool) {
	am.mu.RLock()
	a, ok := am.assets[id]
	am.mu.RUnlock()
	return a, ok
}

type assetInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mime   string `json:"mime"`
	Size   int    `json:"size"`
	Family string `json:"family,omitempty"`
	URL    string `json:"url"`
}

func (am *assetManager) listAll() []assetInfo {
	am.mu.RLock()
	defer am.mu.RUnlock()
	result := make([]assetInfo, 0, len(am.assets))
	for id, a := range am.assets {
		result = append(result, assetInfo{
			ID: id, Name: a.Name, Mime: a.Mime, Size: len(a.Data),
			Family: a.Family, URL: "/api/assets/" + id,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (am *assetManager) remove(id string) (*asset, bool) {
	am.mu.Lock()
	defer am.mu.Unlock()
	a, ok := am.assets[id]
	delete(am.assets, id)
	return a, ok
}

// randomID returns a 26-character base32 ID from crypto/rand.
func randomID() string { return rand.Text() }

// ── Server ──

// Server renders posters over HTTP. Uploaded fonts live in memory and in a
// private temp directory until the server is closed.
type Server struct {
	renderer *template.Renderer
	base     template.RenderConfig
	assets   *assetManager
	tmpDir   string
}

// New creates a server whose requests are layered over base.
func New(renderer *template.Renderer, base template.RenderConfig) (*Server, error) {
	tmpDir, err := os.MkdirTemp("", "gurbanicard-serve-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Server{
		renderer: renderer,
		base:     base,
		assets:   newAssetManager(),
		tmpDir:   tmpDir,
	}, nil
}

// Close removes uploaded fonts from disk.
func (s *Server) Close() error { return os.RemoveAll(s.tmpDir) }

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/parse", s.handleParse)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("POST /api/batch", s.handleBatch)
	mux.HandleFunc("POST /api/upload/font", s.handleUploadFont)
	mux.HandleFunc("GET /api/assets/{id}", s.handleGetAsset)
	mux.HandleFunc("DELETE /api/assets/{id}", s.handleDeleteAsset)
	mux.HandleFunc("GET /api/assets", s.handleListAssets)
	mux.HandleFunc("GET /api/themes", s.handleThemes)
	mux.HandleFunc("GET /api/sample", s.handleSample)

	webFS, err := fs.Sub(webContent, "web")
	if err == nil {
		mux.Handle("/", http.FileServer(http.FS(webFS)))
	}
	return logRequests(mux)
}

// RunServe starts the web UI server. It blocks until ctx is cancelled.
func RunServe(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fset.String("port", "8080", "listen port")
	fset.StringVar(port, "p", "8080", "listen port (shorthand)")
	configPath := fset.String("config", "", "config file (.toml, .yaml, .json)")
	shaper := fset.String("shaper", "auto", "text shaper: auto, native, simple")
	open := fset.Bool("open", true, "open the UI in a browser")
	fset.Parse(args)

	base := template.DefaultConfig()
	themes := theme.Builtin()
	if *configPath != "" {
		cf, err := template.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		if themes, err = cf.Registry(); err != nil {
			return err
		}
		base = template.MergeConfig(base, cf.Render)
	}
	if err := template.ValidateConfig(base, themes); err != nil {
		return err
	}

	mode, err := shaping.ParseMode(*shaper)
	if err != nil {
		return err
	}
	backend, err := shaping.Select(mode)
	if err != nil {
		return err
	}
	renderer, err := template.NewRenderer(template.Options{Backend: backend, Themes: themes})
	if err != nil {
		return err
	}

	s, err := New(renderer, base)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := ":" + *port
	hs := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hs.Shutdown(shutdownCtx)
	}()

	logging.Logger().Info("serving", "url", "http://localhost"+addr, "backend", backend.Name())
	fmt.Printf("gurbanicard UI → http://localhost%s\n", addr)
	if *open {
		go openBrowser("http://localhost" + addr)
	}

	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ── Requests ──

type renderRequest struct {
	Record *template.LineRecord   `json:"record,omitempty"`
	Data   json.RawMessage        `json:"data,omitempty"`  // verse JSON, any accepted shape
	Index  int                    `json:"index,omitempty"` // 1-based record in Data
	Config *template.RenderConfig `json:"config,omitempty"`
}

type batchRequest struct {
	Data            json.RawMessage        `json:"data"`
	Config          *template.RenderConfig `json:"config,omitempty"`
	Format          string                 `json:"format,omitempty"` // zip (default) or avi
	Prefix          string                 `json:"prefix,omitempty"`
	SecondsPerSlide int                    `json:"seconds_per_slide,omitempty"`
}

type httpError struct {
	status int
	err    error
}

func (e *httpError) Error() string { return e.err.Error() }

func badRequest(format string, args ...any) error {
	return &httpError{status: http.StatusBadRequest, err: fmt.Errorf(format, args...)}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var he *httpError
	var ute *theme.UnknownThemeError
	var jse *template.JSONShapeError
	var fle *fonts.FontLoadError
	switch {
	case errors.As(err, &he):
		status = he.status
	case errors.Is(err, template.ErrEmptyVerse):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &ute), errors.As(err, &jse), errors.As(err, &fle),
		errors.Is(err, fonts.ErrNoGurmukhiFont):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return badRequest("read body: %v", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return badRequest("decode request: %v", err)
	}
	return nil
}

// config layers the request's settings over the server's and checks them.
func (s *Server) config(over *template.RenderConfig) (template.RenderConfig, error) {
	cfg := s.base
	if over != nil {
		o := *over
		var err error
		if o.GurmukhiFontPath, err = s.resolveFont(o.GurmukhiFontPath); err != nil {
			return cfg, err
		}
		if o.LatinFontPath, err = s.resolveFont(o.LatinFontPath); err != nil {
			return cfg, err
		}
		cfg = template.MergeConfig(cfg, o)
	}
	if err := template.ValidateConfig(cfg, s.renderer.Themes()); err != nil {
		return cfg, &httpError{status: http.StatusBadRequest, err: err}
	}
	return cfg, nil
}

// resolveFont maps an uploaded font's asset ID to its file. Clients may not
// name arbitrary server paths.
func (s *Server) resolveFont(ref string) (string, error) {
	if ref == "" || strings.HasPrefix(ref, fonts.EmbeddedPrefix) {
		return ref, nil
	}
	a, ok := s.assets.get(ref)
	if !ok {
		return "", badRequest("unknown font asset %q", ref)
	}
	return a.Path, nil
}

// ── Handlers ──

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, badRequest("read body: %v", err))
		return
	}
	records, err := template.ParseRecords(body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"records":  records,
		"warnings": template.ValidateRecords(records),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := req.record()
	if err != nil {
		writeError(w, err)
		return
	}
	cfg, err := s.config(req.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := s.renderer.RenderPNG(rec, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func (req renderRequest) record() (template.LineRecord, error) {
	if req.Record != nil {
		return *req.Record, nil
	}
	if len(req.Data) == 0 {
		return template.LineRecord{}, badRequest("request needs a record or data")
	}
	records, err := template.ParseRecords(req.Data)
	if err != nil {
		return template.LineRecord{}, err
	}
	idx := max(req.Index, 1)
	if idx > len(records) {
		return template.LineRecord{}, badRequest("index %d out of range (have %d records)", idx, len(records))
	}
	return records[idx-1], nil
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	records, err := template.ParseRecords(req.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(records) == 0 {
		writeError(w, badRequest("no lines found in data"))
		return
	}
	cfg, err := s.config(req.Config)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.renderer.RenderBatch(r.Context(), records, cfg, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(res.Images) == 0 {
		writeError(w, &httpError{status: http.StatusUnprocessableEntity, err: errors.New("rendering produced no images")})
		return
	}

	ext, mimeType := ".zip", "application/zip"
	if strings.EqualFold(req.Format, "avi") {
		ext, mimeType = ".avi", "video/avi"
	}
	var buf bytes.Buffer
	opts := generator.Options{Prefix: req.Prefix, SecondsPerSlide: req.SecondsPerSlide}
	if err := generator.GenerateToWriter(&buf, ext, res.Images, opts); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="gurbani_images%s"`, ext))
	w.Header().Set("X-Rendered", strconv.Itoa(len(res.Images)))
	w.Header().Set("X-Skipped", strconv.Itoa(res.Skipped))
	w.Header().Set("X-Failed", strconv.Itoa(len(res.Failures)))
	w.Write(buf.Bytes())
}

func (s *Server) handleUploadFont(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, badRequest("parse upload: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, badRequest("no file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, badRequest("read upload: %v", err))
		return
	}

	id := randomID()
	path := filepath.Join(s.tmpDir, id+"_"+sanitizeFilename(header.Filename))
	src, err := s.renderer.Fonts().LoadBytes(path, data)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		writeError(w, fmt.Errorf("store font: %w", err))
		return
	}

	a := &asset{Name: header.Filename, Data: data, Mime: "font/ttf", Path: path, Family: src.FamilyName()}
	s.assets.add(id, a)
	logging.Logger().Info("font uploaded", "id", id, "name", a.Name, "family", a.Family)

	writeJSON(w, assetInfo{ID: id, Name: a.Name, Mime: a.Mime, Size: len(data), Family: a.Family, URL: "/api/assets/" + id})
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := s.assets.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", a.Mime)
	w.Write(a.Data)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.assets.listAll())
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a, ok := s.assets.remove(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	os.Remove(a.Path)
	writeJSON(w, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	reg := s.renderer.Themes()
	themes := make([]theme.Spec, 0, len(reg.Names()))
	for _, name := range reg.Names() {
		t, _ := reg.Lookup(name)
		themes = append(themes, t.Spec())
	}
	writeJSON(w, map[string]any{
		"themes":  themes,
		"canvas":  template.Presets,
		"default": s.base.Theme,
		"shaper":  s.renderer.Backend().Name(),
	})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	sample, _ := template.GetExampleJSON()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sample.json"`)
	io.WriteString(w, sample)
}

// ── Helpers ──

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Logger().Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"dur", time.Since(start))
	})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")
	return name
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	cmd.Start()
}
