// Package compositor overlays the watermark image onto a video with ffmpeg.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"manimark/internal/progress"
	"manimark/internal/util"
)

// Options control ffmpeg execution.
type Options struct {
	FFmpegPath  string
	Verbose     bool
	OutputPath  string  // Full path of desired output file (including extension)
	Opacity     float64 // Alpha multiplier applied to the overlay
	DurationSec float64 // Input duration for progress percentages; 0 if unknown
	Reporter    progress.Reporter
	Runner      util.CmdRunner
	Fs          afero.Fs
}

// Composite runs ffmpeg once to write inputPath with watermarkPath overlaid
// to opts.OutputPath and returns the output size in bytes. On failure the
// partial output is removed and the error carries ffmpeg's stderr.
func Composite(ctx context.Context, inputPath, watermarkPath string, opts Options) (int64, error) {
	if opts.FFmpegPath == "" {
		return 0, errors.New("ffmpeg path is required")
	}
	if opts.OutputPath == "" {
		return 0, errors.New("output path is required")
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	if _, err := fs.Stat(watermarkPath); err != nil {
		return 0, fmt.Errorf("watermark image not found: %w", err)
	}
	if err := util.EnsureDir(fs, filepath.Dir(opts.OutputPath)); err != nil {
		return 0, fmt.Errorf("ensure output dir: %w", err)
	}

	rep := opts.Reporter
	spec := util.CmdSpec{
		Path:    opts.FFmpegPath,
		Args:    BuildArgs(inputPath, watermarkPath, opts.OutputPath, opts.Opacity, rep != nil),
		Verbose: opts.Verbose,
	}
	if rep != nil {
		ps := &ProgressState{}
		spec.StdoutLine = func(line string) {
			if u, ok := ps.UpdateFromLine(line, opts.DurationSec); ok {
				rep.Update(u)
			}
		}
		spec.StderrLine = func(line string) {
			rep.Log(progress.Log{Stage: progress.StageComposite, Stream: progress.StreamStderr, Line: line})
		}
	}

	res, runErr := runner.Run(ctx, spec)
	if runErr != nil {
		_ = util.RemoveIfExists(fs, opts.OutputPath)
		if tail := util.StderrTail(res.Stderr, 0); tail != "" {
			return 0, fmt.Errorf("ffmpeg watermark failed: %w\n%s", runErr, tail)
		}
		return 0, fmt.Errorf("ffmpeg watermark failed: %w", runErr)
	}

	fi, err := fs.Stat(opts.OutputPath)
	if err != nil {
		return 0, fmt.Errorf("stat output: %w", err)
	}
	return fi.Size(), nil
}
