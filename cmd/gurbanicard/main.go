// gurbanicard renders Gurbani verse posters.
//
// Usage:
//
//	gurbanicard -o <file> --data <path> [--config <path>] [options]
//	gurbanicard preview --data <path> --index N [-o preview.png]
//	gurbanicard watch -o <file> --data <path> [options]
//	gurbanicard serve [--port 8080]
//	gurbanicard themes [--config <path>]
//	gurbanicard init
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gurbanicard/gurbanicard/clients/server"
	"github.com/gurbanicard/gurbanicard/pkg/fonts"
	"github.com/gurbanicard/gurbanicard/pkg/generator"
	"github.com/gurbanicard/gurbanicard/pkg/logging"
	"github.com/gurbanicard/gurbanicard/pkg/template"
	"github.com/gurbanicard/gurbanicard/pkg/theme"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupLogging(false)

	var err error
	switch os.Args[1] {
	case "render":
		err = run(ctx, os.Args[2:])
	case "preview":
		err = runPreview(os.Args[2:])
	case "watch":
		err = runWatch(ctx, os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "themes":
		err = runThemes(os.Args[2:])
	case "serve":
		err = server.RunServe(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		// Default: render mode (all flags on root).
		err = run(ctx, os.Args[1:])
	}
	if err != nil {
		stop()
		fatal(err)
	}
}

// setupLogging installs a text handler on stderr. Info and above are shown
// unless verbose is set.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logging.SetLogger(slog.New(h))
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gurbanicard", flag.ExitOnError)
	var rf renderFlags
	rf.register(fs)
	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}
	setupLogging(rf.verbose)

	if rf.output == "" {
		printUsage()
		return fmt.Errorf("output file is required (-o)")
	}
	return renderOnce(ctx, &rf, fonts.NewCache(fonts.DefaultCapacity))
}

// renderOnce loads the inputs named by rf, renders every record and writes
// the result to rf.output.
func renderOnce(ctx context.Context, rf *renderFlags, cache *fonts.Cache) error {
	start := time.Now()

	j, err := rf.load()
	if err != nil {
		return err
	}
	defer j.cleanup()

	renderer, err := rf.renderer(j.themes, cache)
	if err != nil {
		return err
	}

	fmt.Printf("Rendering %d records (%s, theme %s)\n", len(j.records), renderer.Backend().Name(), j.cfg.Theme)
	res, err := renderer.RenderBatch(ctx, j.records, j.cfg, rf.workers)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", f)
	}
	if len(res.Images) == 0 {
		return fmt.Errorf("nothing rendered: %d skipped, %d failed", res.Skipped, len(res.Failures))
	}

	opts := generator.Options{Prefix: rf.prefix, SecondsPerSlide: rf.seconds}
	if err := generator.Generate(rf.output, res.Images, opts); err != nil {
		return err
	}
	printSummary(rf.output, res, time.Since(start))
	return nil
}

func runPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	var rf renderFlags
	rf.register(fs)
	index := fs.Int("index", 1, "Record to render (1-based)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setupLogging(rf.verbose)
	if rf.output == "" {
		rf.output = "preview.png"
	}

	j, err := rf.load()
	if err != nil {
		return err
	}
	defer j.cleanup()

	if *index < 1 || *index > len(j.records) {
		return fmt.Errorf("index %d out of range: %d records", *index, len(j.records))
	}
	renderer, err := rf.renderer(j.themes, nil)
	if err != nil {
		return err
	}

	data, err := renderer.RenderPNG(j.records[*index-1], j.cfg)
	if errors.Is(err, template.ErrEmptyVerse) {
		return fmt.Errorf("record %d has no verse text", *index)
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := generator.Generate(rf.output, [][]byte{data}, generator.Options{}); err != nil {
		return err
	}
	fmt.Printf("Done: %s\n", rf.output)
	return nil
}

func runThemes(args []string) error {
	fs := flag.NewFlagSet("themes", flag.ExitOnError)
	var configPath string
	fs.StringVar(&configPath, "config", "", "Config file declaring extra themes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	themes := theme.Builtin()
	if configPath != "" {
		cf, err := template.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if themes, err = cf.Registry(); err != nil {
			return err
		}
	}
	fmt.Print(template.FormatThemes(themes))
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var dataOut, configOut, bundleOut string
	fs.StringVar(&dataOut, "data", "data.json", "Output path for sample data")
	fs.StringVar(&configOut, "config", "config.toml", "Output path for sample config")
	fs.StringVar(&bundleOut, "bundle", "", "Write a .gurbani bundle instead of loose files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d, c := template.GetExampleJSON()

	if bundleOut != "" {
		return writeSampleBundle(bundleOut, d, c)
	}

	if err := os.WriteFile(dataOut, []byte(d), 0644); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	if err := os.WriteFile(configOut, []byte(c), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Created: %s, %s\n", dataOut, configOut)
	fmt.Printf("Run: gurbanicard -o posters.zip --data %s --config %s\n", dataOut, configOut)
	return nil
}

func writeSampleBundle(path, dataJSON, configTOML string) error {
	records, err := template.ParseRecords([]byte(dataJSON))
	if err != nil {
		return err
	}
	cf, err := template.DecodeConfig(".toml", []byte(configTOML))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := template.WriteBundle(f, records, cf); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("Created: %s\n", path)
	fmt.Printf("Run: gurbanicard -o posters.zip --bundle %s\n", path)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`gurbanicard - Gurbani verse posters

USAGE:
    gurbanicard -o <file> --data <path> [--config <path>] [options]
    gurbanicard -o <file> --bundle <path> [options]
    gurbanicard preview --data <path> [--index N] [-o preview.png]
    gurbanicard watch -o <file> --data <path> [options]
    gurbanicard serve [--port 8080] [--config <path>]
    gurbanicard themes [--config <path>]
    gurbanicard init [--bundle <path>]

INPUT:
    --data <path>            Verse JSON (shabad object, list, or {"items": [...]}); "-" reads stdin
    --config <path>          Render config (.toml, .yaml, .json)
    --bundle <path>          .gurbani archive: data.json, config, fonts/

OUTPUT:
    -o, --output <path>      .zip, .avi, .png, or a directory (no extension)
    --prefix <name>          Entry name prefix (default: gurbani)
    --seconds <n>            Seconds per slide, .avi only (default: 5)

RENDER OPTIONS (override the config file):
    --theme <name>           royal, saffron, midnight, or a config theme
    --canvas <preset|WxH>    1080p, 1440p, 4k, portrait, ... or 1920x1080
    -w, --width <px>         Canvas width
    --height <px>            Canvas height
    --padding <px>           Margin around the verse area
    --gurbani-size <pt>      Starting verse size
    --min-size <pt>          Smallest verse size before overflow
    --title-size <pt>        Title size
    --subtitle-size <pt>     Subtitle size
    --watermark <text>       Bottom-right watermark
    --no-frame               Skip the ornamental frame
    --no-shadow              Skip the verse drop shadow
    --font-gurmukhi <path>   Gurmukhi font file
    --font-latin <path>      Latin font file (or embedded:goregular)
    --shaper <mode>          auto, native, simple (default: auto)
    --workers <n>            Parallel renders (default: all CPUs)
    -v                       Debug logging on stderr

EXAMPLES:
    gurbanicard init
    gurbanicard -o posters.zip --data data.json --config config.toml
    gurbanicard -o slides.avi --data data.json --seconds 8
    gurbanicard preview --data data.json --index 2 --theme midnight
    gurbanicard watch -o out --data data.json
    gurbanicard serve
`)
}
