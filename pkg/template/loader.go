// loader.go - Load config files and .gurbani (ZIP) bundles.
package template

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gurbanicard/gurbanicard/pkg/fonts"
	"github.com/gurbanicard/gurbanicard/pkg/logging"
	"github.com/gurbanicard/gurbanicard/pkg/theme"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the on-disk configuration: render settings plus any custom
// themes.
type ConfigFile struct {
	Render RenderConfig `json:"render" toml:"render" yaml:"render"`
	Themes []theme.Spec `json:"themes,omitempty" toml:"themes,omitempty" yaml:"themes,omitempty"`
}

// Registry builds the theme registry for this config.
func (c *ConfigFile) Registry() (*theme.Registry, error) {
	if c == nil || len(c.Themes) == 0 {
		return theme.Builtin(), nil
	}
	return theme.NewRegistry(c.Themes...)
}

// LoadConfig reads a .toml, .yaml/.yml or .json config file.
func LoadConfig(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := DecodeConfig(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// DecodeConfig parses config bytes in the format named by ext.
func DecodeConfig(ext string, data []byte) (*ConfigFile, error) {
	var cfg ConfigFile
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .toml, .yaml or .json)", ext)
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Bundle is an extracted .gurbani archive.
type Bundle struct {
	Dir     string
	Records []LineRecord
	Config  *ConfigFile // nil when the bundle carries no config
}

var bundleConfigNames = []string{"config.toml", "config.yaml", "config.yml", "config.json"}

// LoadBundle opens a ZIP holding data.json, an optional config file and an
// optional fonts/ directory. It extracts it to a temp directory and resolves
// font paths in the config against it. The returned cleanup function removes
// the temp directory.
func LoadBundle(path string) (*Bundle, func(), error) {
	noop := func() {}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	tmpDir, err := os.MkdirTemp("", "gurbani-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	if err := extractZip(&r.Reader, tmpDir); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("extract %s: %w", path, err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "data.json"))
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("read data.json: %w", err)
	}
	records, err := ParseRecords(data)
	if err != nil {
		cleanup()
		return nil, noop, err
	}

	b := &Bundle{Dir: tmpDir, Records: records}
	for _, name := range bundleConfigNames {
		p := filepath.Join(tmpDir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if b.Config, err = LoadConfig(p); err != nil {
			cleanup()
			return nil, noop, err
		}
		break
	}
	if b.Config == nil {
		b.Config = &ConfigFile{}
	}
	resolveFontPaths(&b.Config.Render, tmpDir)

	logging.Logger().Debug("bundle loaded", "path", path, "records", len(records), "dir", tmpDir)
	return b, cleanup, nil
}

// resolveFontPaths makes relative font paths absolute using baseDir and
// fills in fonts shipped under baseDir/fonts when none are configured.
func resolveFontPaths(cfg *RenderConfig, baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, fonts.EmbeddedPrefix) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	cfg.GurmukhiFontPath = resolve(cfg.GurmukhiFontPath)
	cfg.LatinFontPath = resolve(cfg.LatinFontPath)

	if cfg.GurmukhiFontPath == "" || cfg.LatinFontPath == "" {
		entries, _ := os.ReadDir(filepath.Join(baseDir, "fonts"))
		var found []string
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".ttf" || ext == ".otf") {
				found = append(found, filepath.Join(baseDir, "fonts", e.Name()))
			}
		}
		// A single bundled font serves the verse; Latin falls back later.
		if cfg.GurmukhiFontPath == "" && len(found) > 0 {
			cfg.GurmukhiFontPath = found[0]
		}
		if cfg.LatinFontPath == "" && len(found) > 1 {
			cfg.LatinFontPath = found[1]
		}
	}
}

// WriteBundle packs records and an optional config into a ZIP readable by
// LoadBundle.
func WriteBundle(w io.Writer, records []LineRecord, cfg *ConfigFile) error {
	zw := zip.NewWriter(w)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := writeEntry(zw, "data.json", data); err != nil {
		return err
	}
	if cfg != nil {
		conf, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		if err := writeEntry(zw, "config.toml", conf); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// extractZip extracts all files from a zip reader into destDir.
func extractZip(r *zip.Reader, destDir string) error {
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)

		// Guard against zip slip.
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in zip: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

// extractFile writes a single zip entry to disk.
func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
