// Package renderer drives the external manim renderer.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"manimark/internal/model"
	"manimark/internal/progress"
	"manimark/internal/util"
)

// Options control the manim invocation.
type Options struct {
	RendererPath string
	Verbose      bool
	Reporter     progress.Reporter
	Runner       util.CmdRunner
}

// BuildArgs returns manim's argument list: <quality flag> <script> <scene>.
func BuildArgs(scriptPath, scene string, q model.Quality) []string {
	return []string{q.RenderFlag(), scriptPath, scene}
}

// Render runs manim for scene in scriptPath and blocks until it exits.
// manim runs from the script's directory, which is where it creates media/.
// A nonzero exit returns an error carrying manim's stderr.
func Render(ctx context.Context, scriptPath, scene string, q model.Quality, opts Options) error {
	if opts.RendererPath == "" {
		return errors.New("renderer path is required")
	}
	if scriptPath == "" || scene == "" {
		return errors.New("script path and scene name are required")
	}
	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	spec := util.CmdSpec{
		Path:    opts.RendererPath,
		Args:    BuildArgs(scriptPath, scene, q),
		Dir:     filepath.Dir(scriptPath),
		Verbose: opts.Verbose,
	}
	if rep := opts.Reporter; rep != nil {
		// manim writes its progress bars to stderr.
		spec.StderrLine = func(line string) {
			if u, ok := ParseProgress(line); ok {
				rep.Update(u)
				return
			}
			rep.Log(progress.Log{Stage: progress.StageRender, Stream: progress.StreamStderr, Line: line})
		}
		spec.StdoutLine = func(line string) {
			rep.Log(progress.Log{Stage: progress.StageRender, Stream: progress.StreamStdout, Line: line})
		}
		spec.CaptureStdout = true
	}

	res, err := runner.Run(ctx, spec)
	if err != nil {
		if tail := util.StderrTail(res.Stderr, 0); tail != "" {
			return fmt.Errorf("manim render failed: %w\n%s", err, tail)
		}
		return fmt.Errorf("manim render failed: %w", err)
	}
	return nil
}
