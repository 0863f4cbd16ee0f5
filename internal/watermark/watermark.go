// Package watermark draws the translucent text overlay that ffmpeg composites
// onto the rendered video.
package watermark

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/spf13/afero"
	"golang.org/x/image/font"

	"manimark/internal/util"
)

// Padding is the transparent margin around the text, in pixels.
const Padding = 4

// DefaultFileName is the overlay's name when written next to the script.
const DefaultFileName = "watermark.png"

// Options describe the overlay to draw.
type Options struct {
	Text       string
	FontSize   int
	Opacity    float64  // 0..1, applied to the text alpha
	FontPaths  []string // Tried in order; the built-in font is the last resort.
	OutputPath string
}

// Image is a written overlay.
type Image struct {
	Path   string
	Font   string // Font file used, or BuiltinFont.
	Width  int
	Height int
}

// Create draws white Text at Opacity on a transparent canvas sized to the text
// bounds plus Padding, and writes it as PNG to OutputPath, replacing any
// previous file.
func Create(fs afero.Fs, opts Options) (Image, error) {
	if opts.OutputPath == "" {
		return Image{}, errors.New("watermark output path is required")
	}
	if opts.FontSize <= 0 {
		return Image{}, fmt.Errorf("invalid font size %d", opts.FontSize)
	}

	face, fontName, err := LoadFace(fs, opts.FontPaths, float64(opts.FontSize))
	if err != nil {
		return Image{}, err
	}
	defer face.Close()

	bounds, _ := font.BoundString(face, opts.Text)
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	textW := bounds.Max.X.Ceil() - minX
	textH := bounds.Max.Y.Ceil() - minY
	if textW < 0 {
		textW = 0
	}
	if textH < 0 {
		textH = 0
	}
	w, h := textW+2*Padding, textH+2*Padding

	dc := gg.NewContext(w, h)
	dc.SetFontFace(face)
	dc.SetRGBA255(255, 255, 255, Alpha(opts.Opacity))
	// DrawString places the baseline at y; shift so the ink box starts at the padding.
	dc.DrawString(opts.Text, float64(Padding-minX), float64(Padding-minY))

	if err := util.EnsureDir(fs, filepath.Dir(opts.OutputPath)); err != nil {
		return Image{}, fmt.Errorf("ensure watermark dir: %w", err)
	}
	f, err := fs.Create(opts.OutputPath)
	if err != nil {
		return Image{}, fmt.Errorf("create watermark: %w", err)
	}
	if err := dc.EncodePNG(f); err != nil {
		f.Close()
		return Image{}, fmt.Errorf("encode watermark: %w", err)
	}
	if err := f.Close(); err != nil {
		return Image{}, fmt.Errorf("write watermark: %w", err)
	}

	return Image{Path: opts.OutputPath, Font: fontName, Width: w, Height: h}, nil
}

// Alpha converts an opacity in [0,1] to an 8-bit alpha, truncating like
// int(opacity*255). Out-of-range values are clamped.
func Alpha(opacity float64) int {
	if math.IsNaN(opacity) || opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return 255
	}
	return int(opacity * 255)
}
