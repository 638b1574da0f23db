// Package generator writes rendered posters to disk or a stream.
//
// All output follows one pipeline: posters arrive as PNG bytes and are
// either written out as files, packed into a ZIP, or decoded and
// containerized as an MJPEG AVI slideshow.
package generator

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Options controls Generate.
type Options struct {
	Prefix          string // entry and file name prefix (default "gurbani")
	SecondsPerSlide int    // AVI only (default 5)
}

// Generate writes images to output. The format is inferred from the
// extension:
//   - ".zip" → archive of prefix_0001.png, ...
//   - ".avi" → MJPEG slideshow
//   - ".png" → the file itself for one image, else output_0001.png, ...
//   - no extension → a directory of prefix_0001.png, ...
func Generate(output string, images [][]byte, opts Options) error {
	if len(images) == 0 {
		return fmt.Errorf("nothing to write: no images")
	}

	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".zip", ".avi":
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		if err := GenerateToWriter(f, ext, images, opts); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case ".png":
		if len(images) == 1 {
			return writePNG(output, images[0])
		}
		base := strings.TrimSuffix(output, filepath.Ext(output))
		for i, data := range images {
			if err := writePNG(fmt.Sprintf("%s_%04d.png", base, i+1), data); err != nil {
				return err
			}
		}
		return nil
	case "":
		if err := os.MkdirAll(output, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		for i, data := range images {
			if err := writePNG(filepath.Join(output, EntryName(opts.Prefix, i)), data); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use .zip, .avi, .png or a directory", ext)
	}
}

// GenerateToWriter writes images to w as a ".zip" or ".avi" stream.
func GenerateToWriter(w io.Writer, ext string, images [][]byte, opts Options) error {
	switch strings.ToLower(ext) {
	case ".zip":
		return WriteZip(w, opts.Prefix, images)
	case ".avi":
		slides, err := decodeAll(images)
		if err != nil {
			return err
		}
		secs := opts.SecondsPerSlide
		if secs <= 0 {
			secs = 5
		}
		return WriteSlideshow(w, slides, secs)
	default:
		return fmt.Errorf("unsupported stream format %q: use .zip or .avi", ext)
	}
}

func decodeAll(images [][]byte) ([]image.Image, error) {
	out := make([]image.Image, len(images))
	for i, data := range images {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode image %d: %w", i+1, err)
		}
		out[i] = img
	}
	return out, nil
}
