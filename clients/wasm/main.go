//go:build js && wasm

// gurbanicard WASM - client-side poster renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o gurbanicard.wasm ./clients/wasm/
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/gurbanicard/gurbanicard/pkg/generator"
	"github.com/gurbanicard/gurbanicard/pkg/shaping"
	"github.com/gurbanicard/gurbanicard/pkg/template"
	"github.com/gurbanicard/gurbanicard/pkg/theme"
)

// In-memory font store (replaces the server-side asset manager). Fonts are
// also parsed into the renderer's cache; the raw bytes stay here so an
// evicted font can be reloaded without a filesystem.
var (
	fontsMu sync.RWMutex
	fontMem = make(map[string][]byte)
)

var renderer *template.Renderer

func main() {
	backend, err := shaping.Select(shaping.ModeAuto)
	if err == nil {
		renderer, err = template.NewRenderer(template.Options{Backend: backend, SearchDirs: []string{}})
	}
	if err != nil {
		fmt.Println("gurbanicard WASM failed:", err)
		return
	}
	fmt.Println("gurbanicard WASM loaded,", backend.Name())

	// Register JS-callable functions.
	js.Global().Set("goParseRecords", js.FuncOf(parseRecords))
	js.Global().Set("goRenderPoster", js.FuncOf(renderPoster))
	js.Global().Set("goRegisterFont", js.FuncOf(registerFont))
	js.Global().Set("goRemoveFont", js.FuncOf(removeFont))
	js.Global().Set("goExportBatch", js.FuncOf(exportBatch))
	js.Global().Set("goThemes", js.FuncOf(themes))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func errValue(format string, args ...any) js.Value {
	return js.ValueOf("error: " + fmt.Sprintf(format, args...))
}

// goRegisterFont(id, base64Data) validates a font and stores it under id.
// Configs select it with font_gurmukhi / font_latin = id.
func registerFont(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errValue("need id, base64Data")
	}
	id := args[0].String()
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return errValue("invalid base64: %v", err)
	}

	src, err := renderer.Fonts().LoadBytes(id, data)
	if err != nil {
		return errValue("%v", err)
	}

	fontsMu.Lock()
	fontMem[id] = data
	fontsMu.Unlock()

	return js.ValueOf(src.FamilyName())
}

// goRemoveFont(id) forgets a registered font.
func removeFont(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errValue("need id")
	}
	fontsMu.Lock()
	delete(fontMem, args[0].String())
	fontsMu.Unlock()
	return js.ValueOf("ok")
}

// goParseRecords(dataJSON) returns the parsed records as JSON.
func parseRecords(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errValue("need dataJSON")
	}
	records, err := template.ParseRecords([]byte(args[0].String()))
	if err != nil {
		return errValue("%v", err)
	}
	out, err := json.Marshal(records)
	if err != nil {
		return errValue("%v", err)
	}
	return js.ValueOf(string(out))
}

// goRenderPoster(recordJSON, configJSON) renders one record and returns a
// base64 PNG.
func renderPoster(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errValue("need recordJSON, configJSON")
	}

	var rec template.LineRecord
	if err := json.Unmarshal([]byte(args[0].String()), &rec); err != nil {
		return errValue("parse record: %v", err)
	}
	cfg, err := loadConfig(args[1].String())
	if err != nil {
		return errValue("%v", err)
	}

	data, err := renderer.RenderPNG(rec, cfg)
	if err != nil {
		return errValue("render: %v", err)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(data))
}

// goExportBatch(dataJSON, configJSON, format, secondsPerSlide) renders all
// records and returns a base64 ZIP or AVI.
func exportBatch(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return errValue("need dataJSON, configJSON, format")
	}

	records, err := template.ParseRecords([]byte(args[0].String()))
	if err != nil {
		return errValue("%v", err)
	}
	cfg, err := loadConfig(args[1].String())
	if err != nil {
		return errValue("%v", err)
	}
	format := args[2].String()
	secs := 0
	if len(args) > 3 {
		secs = args[3].Int()
	}

	res, err := renderer.RenderBatch(context.Background(), records, cfg, 1)
	if err != nil {
		return errValue("render: %v", err)
	}
	if len(res.Images) == 0 {
		return errValue("nothing rendered: %d skipped, %d failed", res.Skipped, len(res.Failures))
	}

	var buf bytes.Buffer
	opts := generator.Options{SecondsPerSlide: secs}
	if err := generator.GenerateToWriter(&buf, "."+format, res.Images, opts); err != nil {
		return errValue("export: %v", err)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// goThemes() returns the known themes as JSON specs.
func themes(this js.Value, args []js.Value) any {
	reg := renderer.Themes()
	var specs []theme.Spec
	for _, name := range reg.Names() {
		t, _ := reg.Lookup(name)
		specs = append(specs, t.Spec())
	}
	out, err := json.Marshal(specs)
	if err != nil {
		return errValue("%v", err)
	}
	return js.ValueOf(string(out))
}

// loadConfig decodes a JSON render config, fills defaults, makes sure any
// registered fonts it names are resident, and validates it.
func loadConfig(configJSON string) (template.RenderConfig, error) {
	cfg := template.DefaultConfig()
	if configJSON != "" && configJSON != "null" {
		var over template.RenderConfig
		if err := json.Unmarshal([]byte(configJSON), &over); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
		cfg = template.MergeConfig(cfg, over)
	}
	for _, id := range []string{cfg.GurmukhiFontPath, cfg.LatinFontPath} {
		if err := ensureFont(id); err != nil {
			return cfg, err
		}
	}
	return cfg, template.ValidateConfig(cfg, renderer.Themes())
}

func ensureFont(id string) error {
	fontsMu.RLock()
	data, ok := fontMem[id]
	fontsMu.RUnlock()
	if !ok {
		return nil
	}
	if _, err := renderer.Fonts().Load(id); err == nil {
		return nil
	}
	_, err := renderer.Fonts().LoadBytes(id, data)
	return err
}
