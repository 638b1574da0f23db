// png.go - PNG encoding for rendered posters.
package generator

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
)

var encoder = png.Encoder{CompressionLevel: png.BestSpeed}

// EncodePNG returns the PNG encoding of img.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// writePNG writes already-encoded PNG bytes to path.
func writePNG(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
