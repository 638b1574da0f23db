// flags.go - Render flags shared by render, preview and watch.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gurbanicard/gurbanicard/pkg/fonts"
	"github.com/gurbanicard/gurbanicard/pkg/shaping"
	"github.com/gurbanicard/gurbanicard/pkg/template"
	"github.com/gurbanicard/gurbanicard/pkg/theme"
)

type renderFlags struct {
	output     string
	dataPath   string
	configPath string
	bundlePath string
	prefix     string
	seconds    int
	shaper     string
	workers    int
	verbose    bool
	noFrame    bool
	noShadow   bool

	over template.RenderConfig
}

func (rf *renderFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&rf.output, "o", "", "Output path (.zip, .avi, .png or directory)")
	fs.StringVar(&rf.output, "output", "", "Output path (.zip, .avi, .png or directory)")
	fs.StringVar(&rf.dataPath, "data", "", "Verse JSON (- for stdin)")
	fs.StringVar(&rf.configPath, "config", "", "Render config (.toml, .yaml, .json)")
	fs.StringVar(&rf.bundlePath, "bundle", "", "Path to .gurbani bundle")
	fs.StringVar(&rf.prefix, "prefix", "", "Entry name prefix")
	fs.IntVar(&rf.seconds, "seconds", 5, "Seconds per slide (AVI only)")
	fs.StringVar(&rf.shaper, "shaper", "auto", "Text shaper: auto, native, simple")
	fs.IntVar(&rf.workers, "workers", 0, "Parallel renders (0 = all CPUs)")
	fs.BoolVar(&rf.verbose, "v", false, "Debug logging")
	fs.BoolVar(&rf.noFrame, "no-frame", false, "Skip the ornamental frame")
	fs.BoolVar(&rf.noShadow, "no-shadow", false, "Skip the verse drop shadow")

	o := &rf.over
	fs.StringVar(&o.Theme, "theme", "", "Theme name")
	fs.StringVar(&o.Canvas, "canvas", "", "Canvas preset or WxH")
	fs.IntVar(&o.Width, "w", 0, "Canvas width")
	fs.IntVar(&o.Width, "width", 0, "Canvas width")
	fs.IntVar(&o.Height, "height", 0, "Canvas height")
	fs.IntVar(&o.Padding, "padding", 0, "Margin around the verse area")
	fs.Float64Var(&o.GurbaniStartSize, "gurbani-size", 0, "Starting verse size")
	fs.Float64Var(&o.GurbaniMinSize, "min-size", 0, "Smallest verse size")
	fs.Float64Var(&o.TitleSize, "title-size", 0, "Title size")
	fs.Float64Var(&o.SubtitleSize, "subtitle-size", 0, "Subtitle size")
	fs.StringVar(&o.WatermarkText, "watermark", "", "Watermark text")
	fs.StringVar(&o.GurmukhiFontPath, "font-gurmukhi", "", "Gurmukhi font file")
	fs.StringVar(&o.LatinFontPath, "font-latin", "", "Latin font file")
}

// overrides returns the config layer set on the command line.
func (rf *renderFlags) overrides() template.RenderConfig {
	o := rf.over
	if rf.noFrame {
		o.Frame = template.Bool(false)
	}
	if rf.noShadow {
		o.Shadow = template.Bool(false)
	}
	return o
}

// inputs lists the files a render reads, for watch.
func (rf *renderFlags) inputs() []string {
	var out []string
	for _, p := range []string{rf.dataPath, rf.configPath, rf.bundlePath} {
		if p != "" && p != "-" {
			out = append(out, p)
		}
	}
	return out
}

// job is everything a render needs once inputs are loaded.
type job struct {
	records []template.LineRecord
	cfg     template.RenderConfig
	themes  *theme.Registry
	cleanup func()
}

// load reads the bundle or data/config files and layers defaults, the
// config file and flags, in that order.
func (rf *renderFlags) load() (*job, error) {
	j := &job{cleanup: func() {}}
	var cf *template.ConfigFile

	switch {
	case rf.bundlePath != "":
		b, cleanup, err := template.LoadBundle(rf.bundlePath)
		if err != nil {
			return nil, fmt.Errorf("load bundle: %w", err)
		}
		j.cleanup = cleanup
		j.records, cf = b.Records, b.Config
	case rf.dataPath != "":
		data, err := readInput(rf.dataPath)
		if err != nil {
			return nil, fmt.Errorf("load data: %w", err)
		}
		if j.records, err = template.ParseRecords(data); err != nil {
			return nil, fmt.Errorf("load data: %w", err)
		}
	default:
		return nil, fmt.Errorf("--data or --bundle is required")
	}

	if rf.configPath != "" {
		var err error
		if cf, err = template.LoadConfig(rf.configPath); err != nil {
			j.cleanup()
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	j.cfg = template.DefaultConfig()
	j.themes = theme.Builtin()
	if cf != nil {
		var err error
		if j.themes, err = cf.Registry(); err != nil {
			j.cleanup()
			return nil, err
		}
		j.cfg = template.MergeConfig(j.cfg, cf.Render)
	}
	j.cfg = template.MergeConfig(j.cfg, rf.overrides())

	if err := template.ValidateConfig(j.cfg, j.themes); err != nil {
		j.cleanup()
		return nil, err
	}
	for _, w := range template.ValidateRecords(j.records) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	return j, nil
}

// renderer builds a Renderer for the selected shaper. A nil cache gets a
// fresh one.
func (rf *renderFlags) renderer(themes *theme.Registry, cache *fonts.Cache) (*template.Renderer, error) {
	mode, err := shaping.ParseMode(rf.shaper)
	if err != nil {
		return nil, err
	}
	backend, err := shaping.Select(mode)
	if err != nil {
		return nil, err
	}
	return template.NewRenderer(template.Options{Backend: backend, Themes: themes, Fonts: cache})
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
