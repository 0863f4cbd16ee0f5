package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"manimark/internal/config"
	"manimark/internal/logging"
	"manimark/internal/model"
	"manimark/internal/pipeline"
	"manimark/internal/watermark"
)

func newWatermarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "watermark [text]",
		Short:         "Only draw the watermark PNG",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd)
			if err != nil {
				return fatal(err)
			}
			log := logging.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), v.GetBool(config.KeyVerbose))

			text := v.GetString(config.KeyWatermark)
			if len(args) == 1 {
				text = args[0]
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = watermark.DefaultFileName
			}
			if out, err = filepath.Abs(out); err != nil {
				return fatal(err)
			}

			norm, notes := pipeline.Normalize(model.Options{
				FontSize: v.GetInt(config.KeyFontSize),
				Opacity:  v.GetFloat64(config.KeyOpacity),
			})
			for _, n := range notes {
				log.Warn("%s", n)
			}

			img, err := watermark.Create(afero.NewOsFs(), watermark.Options{
				Text:       text,
				FontSize:   norm.FontSize,
				Opacity:    norm.Opacity,
				FontPaths:  fontChain(v.GetStringSlice(config.KeyFontPaths)),
				OutputPath: out,
			})
			if err != nil {
				return fatal(fmt.Errorf("%w: %v", pipeline.ErrWatermark, err))
			}
			log.Debug("font: %s", img.Font)
			log.Success("Saved: %s (%dx%d)", img.Path, img.Width, img.Height)
			return nil
		},
	}
	bindWatermarkFlags(cmd.Flags())
	cmd.Flags().StringP("out", "o", "", "Output PNG path (default: ./watermark.png)")
	return cmd
}
