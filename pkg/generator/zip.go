// zip.go - Package rendered posters into a ZIP archive.
package generator

import (
	"archive/zip"
	"fmt"
	"io"
)

// DefaultPrefix names batch entries gurbani_0001.png, gurbani_0002.png, ...
const DefaultPrefix = "gurbani"

// EntryName returns the archive name of the i-th image (0-based).
func EntryName(prefix string, i int) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s_%04d.png", prefix, i+1)
}

// WriteZip writes images as PNG entries named by EntryName, in order.
// PNG data is already compressed, so entries are stored.
func WriteZip(w io.Writer, prefix string, images [][]byte) error {
	zw := zip.NewWriter(w)
	for i, data := range images {
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:   EntryName(prefix, i),
			Method: zip.Store,
		})
		if err != nil {
			return fmt.Errorf("zip entry %d: %w", i+1, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("zip entry %d: %w", i+1, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}
