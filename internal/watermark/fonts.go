package watermark

import (
	"bytes"
	"fmt"

	"github.com/golang/freetype/truetype"
	"github.com/spf13/afero"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// BuiltinFont names the embedded fallback face in results and reports.
const BuiltinFont = "builtin:goregular"

// DefaultFontPaths are tried in order before the built-in font.
var DefaultFontPaths = []string{
	"/System/Library/Fonts/Helvetica.ttc",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// LoadFace walks candidates in order and returns the first face that loads at
// size, along with its path. When none loads, the built-in Go Regular face is
// returned; a missing system font is never an error.
func LoadFace(fs afero.Fs, candidates []string, size float64) (font.Face, string, error) {
	for _, path := range candidates {
		if path == "" {
			continue
		}
		face, err := loadFaceFile(fs, path, size)
		if err != nil {
			continue
		}
		return face, path, nil
	}
	face, err := builtinFace(size)
	if err != nil {
		return nil, "", fmt.Errorf("load built-in font: %w", err)
	}
	return face, BuiltinFont, nil
}

func loadFaceFile(fs afero.Fs, path string, size float64) (font.Face, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	// freetype cannot read collections; take the first face through opentype.
	if bytes.HasPrefix(data, []byte("ttcf")) {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, err
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, err
		}
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	return parseTrueType(data, size)
}

func builtinFace(size float64) (font.Face, error) {
	return parseTrueType(goregular.TTF, size)
}

func parseTrueType(data []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
