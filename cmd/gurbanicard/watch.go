// watch.go - Re-render when the data, config or bundle file changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gurbanicard/gurbanicard/pkg/fonts"
	"github.com/gurbanicard/gurbanicard/pkg/logging"
)

func runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var rf renderFlags
	rf.register(fs)
	debounce := fs.Duration("debounce", 300*time.Millisecond, "Quiet period before re-rendering")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setupLogging(rf.verbose)

	if rf.output == "" {
		return fmt.Errorf("output file is required (-o)")
	}
	inputs := rf.inputs()
	if len(inputs) == 0 {
		return fmt.Errorf("--data or --bundle file is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace files instead of writing them in place, so the
	// parent directories are watched and events filtered by name.
	targets := make(map[string]bool, len(inputs))
	dirs := make(map[string]bool)
	for _, p := range inputs {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	cache := fonts.NewCache(fonts.DefaultCapacity)
	build := func() {
		if err := renderOnce(ctx, &rf, cache); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	build()
	fmt.Printf("Watching %d file(s), Ctrl+C to stop\n", len(targets))

	timer := time.NewTimer(*debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] || !relevant(event) {
				continue
			}
			logging.Logger().Debug("input changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(*debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Logger().Warn("watch error", "err", err)
		case <-timer.C:
			build()
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create ||
		event.Op&fsnotify.Rename == fsnotify.Rename
}
