// Package pipeline runs the render → locate → watermark → composite workflow.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"manimark/internal/compositor"
	"manimark/internal/discover"
	"manimark/internal/model"
	"manimark/internal/probe"
	"manimark/internal/progress"
	"manimark/internal/renderer"
	"manimark/internal/util"
	"manimark/internal/util/format"
	"manimark/internal/watermark"
)

// Fatal conditions. Each run fails with at most one of these, wrapped with detail.
var (
	ErrInputNotFound = errors.New("animation file not found")
	ErrRender        = errors.New("render failed")
	ErrNotFound      = discover.ErrNotFound
	ErrWatermark     = errors.New("watermark failed")
	ErrComposite     = errors.New("composite failed")
	ErrCopy          = errors.New("copy failed")
)

// Service orchestrates one run. Steps execute strictly in sequence.
type Service struct {
	rendererPath string
	ffmpegPath   string
	opts         model.Options
	runner       util.CmdRunner
	reporter     progress.Reporter
	fs           afero.Fs
	prober       probe.Prober
}

// Option configures a Service.
type Option func(*Service)

// WithRendererPath sets the manim binary path.
func WithRendererPath(p string) Option {
	return func(s *Service) {
		s.rendererPath = p
	}
}

// WithFFmpegPath sets the ffmpeg binary path.
func WithFFmpegPath(p string) Option {
	return func(s *Service) {
		s.ffmpegPath = p
	}
}

// WithOptions sets the resolved run options.
func WithOptions(o model.Options) Option {
	return func(s *Service) {
		s.opts = o
	}
}

// WithRunner injects a custom command runner (useful for testing).
func WithRunner(r util.CmdRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithReporter attaches a progress reporter.
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithFs replaces the filesystem used for discovery, copies and cleanup.
func WithFs(fs afero.Fs) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithProber sets the media prober; nil disables probing.
func WithProber(p probe.Prober) Option {
	return func(s *Service) {
		s.prober = p
	}
}

// NewService constructs a Service, filling in defaults for anything not set.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	if s.reporter == nil {
		s.reporter = progress.Discard{}
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	s.opts, _ = Normalize(s.opts)
	if s.rendererPath == "" {
		s.rendererPath = s.opts.RendererBinary
	}
	if s.ffmpegPath == "" {
		s.ffmpegPath = s.opts.FFmpegBinary
	}
	return s
}

// Result describes a finished run.
type Result struct {
	ScriptPath      string
	Rendered        model.RenderedVideo
	Media           model.MediaInfo
	Watermark       *watermark.Image // Generated overlay; nil when supplied or skipped.
	WatermarkPath   string
	Output          model.OutputVideo
	OriginalRemoved bool
	Warnings        []string
}

// Run executes the whole pipeline. The first fatal step aborts the run; the
// returned error wraps one of the package's Err values.
func (s *Service) Run(ctx context.Context) (Result, error) {
	var res Result

	pl, err := s.Plan()
	if err != nil {
		return res, s.fail(progress.StageRender, err)
	}
	res.ScriptPath = pl.Script

	if fi, err := s.fs.Stat(pl.Script); err != nil || fi.IsDir() {
		return res, s.fail(progress.StageRender, fmt.Errorf("%w: %s", ErrInputNotFound, pl.Script))
	}
	if err := util.EnsureDir(s.fs, pl.OutDir); err != nil {
		return res, s.fail(progress.StageRender, fmt.Errorf("create output dir: %w", err))
	}

	// Render
	s.stage(progress.StageRender, fmt.Sprintf("Rendering %s at %s", s.opts.SceneName, s.opts.Quality.Label()))
	if err := renderer.Render(ctx, pl.Script, s.opts.SceneName, s.opts.Quality, renderer.Options{
		RendererPath: s.rendererPath,
		Verbose:      s.opts.Verbose,
		Reporter:     s.reporter,
		Runner:       s.runner,
	}); err != nil {
		return res, s.fail(progress.StageRender, fmt.Errorf("%w: %v", ErrRender, err))
	}

	// Locate
	s.stage(progress.StageLocate, "Locating rendered video")
	rv, err := discover.Find(s.fs, pl.MediaDir, s.opts.SceneName, s.opts.Quality)
	if err != nil {
		return res, s.fail(progress.StageLocate, fmt.Errorf("could not find rendered video for scene %s: %w", s.opts.SceneName, err))
	}
	res.Rendered = rv
	if rv.Fallback {
		s.warn(&res, progress.StageLocate, fmt.Sprintf("no %s render found, using %s (may be from an earlier run)", s.opts.Quality.DirFragment(), rv.Path))
	}
	s.log(progress.StageLocate, "Found video: "+rv.Path)

	// Probe (best-effort)
	if s.prober != nil {
		info, err := s.prober.Probe(rv.Path)
		if err != nil {
			s.log(progress.StageProbe, fmt.Sprintf("probe skipped: %v", err))
		} else {
			res.Media = info
		}
	}

	if s.opts.NoWatermark {
		return s.copyRendered(res, pl)
	}
	return s.watermarkRendered(ctx, res, pl)
}

func (s *Service) copyRendered(res Result, pl Plan) (Result, error) {
	s.stage(progress.StageCopy, "Copying "+filepath.Base(res.Rendered.Path))
	var n int64
	if util.SameFile(s.fs, res.Rendered.Path, pl.OutputPath) {
		fi, err := s.fs.Stat(pl.OutputPath)
		if err != nil {
			return res, s.fail(progress.StageCopy, fmt.Errorf("%w: %v", ErrCopy, err))
		}
		n = fi.Size()
	} else {
		copied, err := util.CopyFile(s.fs, res.Rendered.Path, pl.OutputPath)
		if err != nil {
			return res, s.fail(progress.StageCopy, fmt.Errorf("%w: %v", ErrCopy, err))
		}
		n = copied
	}
	res.Output = model.OutputVideo{OutputPath: pl.OutputPath, Bytes: n}
	s.done(res.Output)
	return res, nil
}

func (s *Service) watermarkRendered(ctx context.Context, res Result, pl Plan) (Result, error) {
	wp := pl.Watermark
	if util.SameFile(s.fs, res.Rendered.Path, pl.OutputPath) {
		return res, s.fail(progress.StageComposite, fmt.Errorf("%w: output %s is the rendered video itself", ErrComposite, pl.OutputPath))
	}

	s.stage(progress.StageWatermark, "Preparing watermark")
	if wp.Generate {
		img, err := watermark.Create(s.fs, watermark.Options{
			Text:       wp.Text,
			FontSize:   wp.FontSize,
			Opacity:    wp.Opacity,
			FontPaths:  wp.Fonts,
			OutputPath: wp.Image,
		})
		if err != nil {
			return res, s.fail(progress.StageWatermark, fmt.Errorf("%w: %v", ErrWatermark, err))
		}
		res.Watermark = &img
		s.log(progress.StageWatermark, fmt.Sprintf("Watermark %dx%d using %s", img.Width, img.Height, img.Font))
	} else if _, err := s.fs.Stat(wp.Image); err != nil {
		return res, s.fail(progress.StageWatermark, fmt.Errorf("%w: watermark image not found: %s", ErrWatermark, wp.Image))
	}
	res.WatermarkPath = wp.Image

	s.stage(progress.StageComposite, "Compositing watermark")
	n, err := compositor.Composite(ctx, res.Rendered.Path, wp.Image, compositor.Options{
		FFmpegPath:  s.ffmpegPath,
		Verbose:     s.opts.Verbose,
		OutputPath:  pl.OutputPath,
		Opacity:     wp.Opacity,
		DurationSec: res.Media.DurationSec,
		Reporter:    s.reporter,
		Runner:      s.runner,
		Fs:          s.fs,
	})
	if err != nil {
		return res, s.fail(progress.StageComposite, fmt.Errorf("%w: %v", ErrComposite, err))
	}
	res.Output = model.OutputVideo{OutputPath: pl.OutputPath, Bytes: n, Watermarked: true}

	if !s.opts.KeepOriginal {
		s.stage(progress.StageCleanup, "Removing original render")
		if err := s.fs.Remove(res.Rendered.Path); err != nil {
			s.warn(&res, progress.StageCleanup, fmt.Sprintf("could not remove original: %v", err))
		} else {
			res.OriginalRemoved = true
			s.log(progress.StageCleanup, "Removed original: "+res.Rendered.Path)
		}
	}

	s.done(res.Output)
	return res, nil
}

func (s *Service) stage(st progress.Stage, msg string) {
	s.reporter.Update(progress.Update{Stage: st, Percent: -1, Message: msg})
}

func (s *Service) log(st progress.Stage, line string) {
	s.reporter.Log(progress.Log{Stage: st, Stream: progress.StreamNote, Line: line})
}

func (s *Service) warn(res *Result, st progress.Stage, msg string) {
	res.Warnings = append(res.Warnings, msg)
	s.reporter.Log(progress.Log{Stage: st, Stream: progress.StreamWarning, Line: msg})
}

func (s *Service) fail(st progress.Stage, err error) error {
	s.reporter.Update(progress.Update{Stage: progress.StageError, Percent: -1, Message: fmt.Sprintf("%s: %v", st, err)})
	s.reporter.Result(progress.Result{Err: err})
	return err
}

func (s *Service) done(out model.OutputVideo) {
	s.reporter.Update(progress.Update{
		Stage:   progress.StageCompleted,
		Percent: 100,
		Message: fmt.Sprintf("Saved: %s (%s)", out.OutputPath, format.HumanizeBytes(out.Bytes)),
	})
	s.reporter.Result(progress.Result{OutputPath: out.OutputPath, Bytes: out.Bytes})
}
