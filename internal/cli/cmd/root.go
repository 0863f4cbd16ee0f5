package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"manimark/internal/model"
)

const (
	ExitOK      = 0
	ExitFailure = 1
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func fatal(err error) error {
	return &ExitError{Code: ExitFailure, Err: err}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "manimark <animation_file> <scene_name>",
		Short: "Render a Manim scene and stamp a watermark on it",
		Long: "manimark renders one Manim scene, finds the video manim wrote under media/videos, " +
			"and overlays a translucent text watermark in the bottom-right corner with ffmpeg.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{})
		},
	}

	// Persistent flags available to all subcommands
	pf := root.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Show full subprocess commands/output")
	pf.Bool("no-ui", false, "Disable TUI; use plain textual output")
	pf.String("renderer", "", "Path to the manim binary")
	pf.String("ffmpeg", "", "Path to the ffmpeg binary")
	pf.String("config", "", "Config file (default: <config dir>/manimark/config.yaml)")

	// Run flags also live on root, so `manimark scene.py Intro` works without a subcommand.
	bindRunFlags(root.Flags())

	root.AddCommand(newRenderCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newWatermarkCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindRunFlags(fs *pflag.FlagSet) {
	fs.StringP("quality", "q", string(model.DefaultQuality), "Render quality: l (480p15), m (720p30), h (1080p60), k (2160p60)")
	fs.StringP("output", "o", "", "Output directory (default: the animation file's directory)")
	fs.String("media-dir", "", "manim media directory to search (default: <script dir>/media)")
	fs.Bool("no-watermark", false, "Copy the rendered video without a watermark")
	fs.Bool("keep-original", false, "Keep manim's rendered video after watermarking")
	bindWatermarkFlags(fs)
	fs.String("watermark-image", "", "Use this PNG as the overlay instead of drawing text")
}

func bindWatermarkFlags(fs *pflag.FlagSet) {
	fs.StringP("watermark", "w", model.DefaultWatermarkText, "Watermark text")
	fs.Int("font-size", model.DefaultFontSize, "Watermark font size in pixels")
	fs.Float64("opacity", model.DefaultOpacity, "Watermark opacity, 0 to 1")
	fs.StringArray("font", nil, "Font file to try before the system fonts (repeatable)")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// execute runs the CLI with explicit arguments and output streams.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
