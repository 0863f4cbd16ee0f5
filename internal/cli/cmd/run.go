package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"manimark/internal/config"
	"manimark/internal/logging"
	"manimark/internal/model"
	"manimark/internal/pipeline"
	"manimark/internal/probe"
	"manimark/internal/ui"
	"manimark/internal/util"
	"manimark/internal/util/deps"
	"manimark/internal/watermark"
)

// Swapped out in tests.
var (
	newRunner    = util.NewDefaultRunner
	findRenderer = deps.FindRenderer
	findFFmpeg   = deps.FindFFmpeg
	findFFprobe  = deps.FindFFprobe
	isTerminal   = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
)

type runMode struct {
	ForceTUI bool
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "render <animation_file> <scene_name>",
		Short:         "Render a scene and watermark it (same as the root command)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{})
		},
	}
	bindRunFlags(cmd.Flags())
	return cmd
}

func newTuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tui <animation_file> <scene_name>",
		Short:         "Force the interactive progress view",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Force TUI; if stdout is not a terminal, ui.Run will error appropriately.
			return runExecute(cmd, args, runMode{ForceTUI: true})
		},
	}
	bindRunFlags(cmd.Flags())
	return cmd
}

// loadConfig layers config file and environment under cmd's flags.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := config.New()
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.Load(v, cmd.Flags(), cfgFile); err != nil {
		return nil, err
	}
	return v, nil
}

// assembleOptions resolves flags, environment and config into run options.
// Precedence: flag > env > config file > default.
func assembleOptions(cmd *cobra.Command, args []string) (model.Options, error) {
	v, err := loadConfig(cmd)
	if err != nil {
		return model.Options{}, err
	}
	fl := cmd.Flags()
	outDir, _ := fl.GetString("output")
	mediaDir, _ := fl.GetString("media-dir")
	noWatermark, _ := fl.GetBool("no-watermark")
	keepOriginal, _ := fl.GetBool("keep-original")
	wmImage, _ := fl.GetString("watermark-image")

	return model.Options{
		AnimationFile:  args[0],
		SceneName:      args[1],
		Quality:        model.Quality(v.GetString(config.KeyQuality)),
		OutDir:         outDir,
		MediaDir:       mediaDir,
		NoWatermark:    noWatermark,
		KeepOriginal:   keepOriginal,
		WatermarkText:  v.GetString(config.KeyWatermark),
		WatermarkImage: wmImage,
		FontSize:       v.GetInt(config.KeyFontSize),
		Opacity:        v.GetFloat64(config.KeyOpacity),
		FontPaths:      fontChain(v.GetStringSlice(config.KeyFontPaths)),
		RendererBinary: v.GetString(config.KeyRenderer),
		FFmpegBinary:   v.GetString(config.KeyFFmpeg),
		Verbose:        v.GetBool(config.KeyVerbose),
		NoUI:           v.GetBool(config.KeyNoUI),
	}, nil
}

// fontChain puts user fonts ahead of the system defaults.
func fontChain(user []string) []string {
	out := make([]string, 0, len(user)+len(watermark.DefaultFontPaths))
	out = append(out, user...)
	return append(out, watermark.DefaultFontPaths...)
}

// serviceOptions locates the external tools and builds the pipeline options.
func serviceOptions(opts model.Options, log *logging.Logger) ([]pipeline.Option, error) {
	rendererPath, err := findRenderer(opts.RendererBinary)
	if err != nil {
		return nil, err
	}
	svcOpts := []pipeline.Option{
		pipeline.WithOptions(opts),
		pipeline.WithRendererPath(rendererPath),
		pipeline.WithRunner(newRunner()),
	}

	ffmpegPath, err := findFFmpeg(opts.FFmpegBinary)
	switch {
	case err == nil:
		svcOpts = append(svcOpts, pipeline.WithFFmpegPath(ffmpegPath))
	case !opts.NoWatermark:
		return nil, err
	}

	if p, err := findFFprobe(); err == nil {
		log.Debug("ffprobe: %s", p)
		svcOpts = append(svcOpts, pipeline.WithProber(probe.FFprobe{}))
	} else {
		log.Debug("%v", err)
	}
	return svcOpts, nil
}

func runExecute(cmd *cobra.Command, args []string, mode runMode) error {
	opts, err := assembleOptions(cmd, args)
	if err != nil {
		return fatal(err)
	}
	log := logging.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Verbose)

	opts, notes := pipeline.Normalize(opts)
	for _, n := range notes {
		log.Warn("%s", n)
	}

	svcOpts, err := serviceOptions(opts, log)
	if err != nil {
		return fatal(err)
	}

	// TUI path (forced or auto if TTY and not disabled)
	if mode.ForceTUI || (!opts.NoUI && isTerminal()) {
		quiet := opts
		quiet.Verbose = false // subprocess echo would tear the view
		if _, err := ui.Run(cmd.Context(), opts, append(svcOpts, pipeline.WithOptions(quiet))...); err != nil {
			return fatal(err)
		}
		return nil
	}

	svc := pipeline.NewService(append(svcOpts, pipeline.WithReporter(newLogReporter(log)))...)
	if _, err := svc.Run(cmd.Context()); err != nil {
		return fatal(fmt.Errorf("%s: %w", opts.SceneName, err))
	}
	return nil
}
