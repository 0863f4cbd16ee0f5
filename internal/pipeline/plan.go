package pipeline

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"manimark/internal/compositor"
	"manimark/internal/discover"
	"manimark/internal/model"
	"manimark/internal/renderer"
	"manimark/internal/watermark"
)

// Plan is everything a run will touch, resolved to absolute paths.
type Plan struct {
	Script        string         `yaml:"script"`
	Scene         string         `yaml:"scene"`
	Quality       string         `yaml:"quality"`
	RenderCommand []string       `yaml:"render_command"`
	WorkDir       string         `yaml:"workdir"`
	MediaDir      string         `yaml:"media_dir"`
	ExpectedVideo string         `yaml:"expected_video"`
	OutDir        string         `yaml:"out_dir"`
	OutputPath    string         `yaml:"output"`
	Watermark     *WatermarkPlan `yaml:"watermark,omitempty"`
	KeepOriginal  bool           `yaml:"keep_original"`
}

// WatermarkPlan describes the overlay step.
type WatermarkPlan struct {
	Text             string   `yaml:"text"`
	Image            string   `yaml:"image"`
	Generate         bool     `yaml:"generate"`
	FontSize         int      `yaml:"font_size"`
	Opacity          float64  `yaml:"opacity"`
	Fonts            []string `yaml:"fonts"`
	CompositeCommand []string `yaml:"composite_command"`
}

// Plan resolves paths and commands for the configured run without executing anything.
func (s *Service) Plan() (Plan, error) {
	o := s.opts
	if o.AnimationFile == "" {
		return Plan{}, errors.New("animation file is required")
	}
	if o.SceneName == "" {
		return Plan{}, errors.New("scene name is required")
	}
	script, err := filepath.Abs(o.AnimationFile)
	if err != nil {
		return Plan{}, fmt.Errorf("resolve %s: %w", o.AnimationFile, err)
	}

	outDir := filepath.Dir(script)
	if o.OutDir != "" {
		if outDir, err = filepath.Abs(o.OutDir); err != nil {
			return Plan{}, fmt.Errorf("resolve output dir: %w", err)
		}
	}
	mediaDir := discover.DefaultMediaDir(script)
	if o.MediaDir != "" {
		if mediaDir, err = filepath.Abs(o.MediaDir); err != nil {
			return Plan{}, fmt.Errorf("resolve media dir: %w", err)
		}
	}

	stem := strings.TrimSuffix(filepath.Base(script), filepath.Ext(script))
	pl := Plan{
		Script:        script,
		Scene:         o.SceneName,
		Quality:       string(o.Quality),
		RenderCommand: append([]string{s.rendererPath}, renderer.BuildArgs(script, o.SceneName, o.Quality)...),
		WorkDir:       filepath.Dir(script),
		MediaDir:      mediaDir,
		ExpectedVideo: filepath.Join(discover.VideosDir(mediaDir), stem, o.Quality.DirFragment(), discover.VideoName(o.SceneName)),
		OutDir:        outDir,
		OutputPath:    filepath.Join(outDir, o.SceneName+".mp4"),
		KeepOriginal:  o.KeepOriginal,
	}

	if !o.NoWatermark {
		wp := &WatermarkPlan{
			Text:     o.WatermarkText,
			Image:    filepath.Join(filepath.Dir(script), watermark.DefaultFileName),
			Generate: true,
			FontSize: o.FontSize,
			Opacity:  o.Opacity,
			Fonts:    o.FontPaths,
		}
		if o.WatermarkImage != "" {
			img, err := filepath.Abs(o.WatermarkImage)
			if err != nil {
				return Plan{}, fmt.Errorf("resolve watermark image: %w", err)
			}
			wp.Image = img
			wp.Generate = false
			wp.Fonts = nil
		}
		wp.CompositeCommand = append([]string{s.ffmpegPath},
			compositor.BuildArgs(pl.ExpectedVideo, wp.Image, pl.OutputPath, wp.Opacity, false)...)
		pl.Watermark = wp
	}
	return pl, nil
}

// Normalize applies defaults and the permissive fallbacks to o, returning a
// human-readable note for every value it had to change. It never fails.
func Normalize(o model.Options) (model.Options, []string) {
	var notes []string

	q, ok := model.ParseQuality(string(o.Quality))
	if !ok && o.Quality != "" {
		notes = append(notes, fmt.Sprintf("unknown quality %q, using %q", o.Quality, q))
	}
	o.Quality = q

	if o.FontSize <= 0 {
		if o.FontSize < 0 {
			notes = append(notes, fmt.Sprintf("invalid font size %d, using %d", o.FontSize, model.DefaultFontSize))
		}
		o.FontSize = model.DefaultFontSize
	}

	switch {
	case math.IsNaN(o.Opacity):
		notes = append(notes, fmt.Sprintf("invalid opacity, using %v", model.DefaultOpacity))
		o.Opacity = model.DefaultOpacity
	case o.Opacity < 0:
		notes = append(notes, fmt.Sprintf("opacity %v below 0, clamped to 0", o.Opacity))
		o.Opacity = 0
	case o.Opacity > 1:
		notes = append(notes, fmt.Sprintf("opacity %v above 1, clamped to 1", o.Opacity))
		o.Opacity = 1
	}

	if o.FontPaths == nil {
		o.FontPaths = append([]string{}, watermark.DefaultFontPaths...)
	}
	if o.RendererBinary == "" {
		o.RendererBinary = "manim"
	}
	if o.FFmpegBinary == "" {
		o.FFmpegBinary = "ffmpeg"
	}
	return o, notes
}
