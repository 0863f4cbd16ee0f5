package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"manimark/internal/config"
	"manimark/internal/model"
	"manimark/internal/watermark"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (manim, ffmpeg, ffprobe) and the watermark font",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := loadConfig(cmd)
			if err != nil {
				return fatal(err)
			}
			w := cmd.OutOrStdout()

			mn, merr := findRenderer(v.GetString(config.KeyRenderer))
			if merr != nil {
				return fatal(merr)
			}
			ff, ferr := findFFmpeg(v.GetString(config.KeyFFmpeg))
			if ferr != nil {
				return fatal(ferr)
			}
			fmt.Fprintf(w, "Renderer: %s\n", mn)
			fmt.Fprintf(w, "FFmpeg:   %s\n", ff)
			if fp, err := findFFprobe(); err == nil {
				fmt.Fprintf(w, "FFprobe:  %s\n", fp)
			} else {
				fmt.Fprintf(w, "FFprobe:  not found (optional)\n")
			}

			face, font, err := watermark.LoadFace(afero.NewOsFs(), fontChain(v.GetStringSlice(config.KeyFontPaths)), model.DefaultFontSize)
			if err != nil {
				return fatal(err)
			}
			_ = face.Close()
			fmt.Fprintf(w, "Font:     %s\n", font)
			return nil
		},
	}
}
