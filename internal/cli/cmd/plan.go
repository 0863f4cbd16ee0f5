package cmd

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"manimark/internal/logging"
	"manimark/internal/pipeline"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plan <animation_file> <scene_name>",
		Short:         "Print the commands and paths a run would use, as YAML, without running anything",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := assembleOptions(cmd, args)
			if err != nil {
				return fatal(err)
			}
			log := logging.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Verbose)
			opts, notes := pipeline.Normalize(opts)
			for _, n := range notes {
				log.Warn("%s", n)
			}

			// Missing tools are not fatal here; the plan shows the names that would be looked up.
			svcOpts := []pipeline.Option{pipeline.WithOptions(opts)}
			if p, err := findRenderer(opts.RendererBinary); err == nil {
				svcOpts = append(svcOpts, pipeline.WithRendererPath(p))
			} else {
				log.Warn("%v", err)
			}
			if !opts.NoWatermark {
				if p, err := findFFmpeg(opts.FFmpegBinary); err == nil {
					svcOpts = append(svcOpts, pipeline.WithFFmpegPath(p))
				} else {
					log.Warn("%v", err)
				}
			}

			pl, err := pipeline.NewService(svcOpts...).Plan()
			if err != nil {
				return fatal(err)
			}
			out, err := yaml.Marshal(pl)
			if err != nil {
				return fatal(fmt.Errorf("encode plan: %w", err))
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	bindRunFlags(cmd.Flags())
	return cmd
}
