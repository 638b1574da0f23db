package fonts

import (
	"os"
	"path/filepath"
)

// Bundled font file names looked up under a "fonts" directory.
const (
	BundledGurmukhi = "AnmolUni.ttf"
	BundledLatin    = "NotoSans-Regular.ttf"
)

// DefaultLatin is used when no Latin font is supplied or bundled.
const DefaultLatin = EmbeddedPrefix + "goregular"

// Resolve picks the Gurmukhi and Latin font paths. An explicit path wins;
// otherwise each dir is searched for fonts/<bundled name>. The Latin font
// falls back to DefaultLatin. Explicit paths are not checked here; loading
// them reports a FontLoadError.
func Resolve(gurmukhi, latin string, dirs ...string) (string, string, error) {
	if gurmukhi == "" {
		gurmukhi = findBundled(BundledGurmukhi, dirs)
	}
	if latin == "" {
		latin = findBundled(BundledLatin, dirs)
	}
	if latin == "" {
		latin = DefaultLatin
	}
	if gurmukhi == "" {
		return "", "", ErrNoGurmukhiFont
	}
	return gurmukhi, latin, nil
}

// SearchDirs returns the working directory and the executable's directory.
func SearchDirs() []string {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	return dirs
}

func findBundled(name string, dirs []string) string {
	for _, dir := range dirs {
		p := filepath.Join(dir, "fonts", name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
