// Package config layers flags, MANIMARK_* environment variables, the config
// file and built-in defaults through viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"manimark/internal/dirs"
	"manimark/internal/model"
)

// Keys understood in the config file and as MANIMARK_<KEY> variables.
const (
	KeyQuality   = "quality"
	KeyWatermark = "watermark"
	KeyFontSize  = "font_size"
	KeyOpacity   = "opacity"
	KeyFontPaths = "font_paths"
	KeyRenderer  = "renderer"
	KeyFFmpeg    = "ffmpeg"
	KeyVerbose   = "verbose"
	KeyNoUI      = "no_ui"
)

// flagKeys maps flag names onto config keys.
var flagKeys = map[string]string{
	"quality":   KeyQuality,
	"watermark": KeyWatermark,
	"font-size": KeyFontSize,
	"opacity":   KeyOpacity,
	"font":      KeyFontPaths,
	"renderer":  KeyRenderer,
	"ffmpeg":    KeyFFmpeg,
	"verbose":   KeyVerbose,
	"no-ui":     KeyNoUI,
}

// New returns a viper instance with defaults, env lookup and the config
// search path set up. Nothing is read yet.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyQuality, string(model.DefaultQuality))
	v.SetDefault(KeyWatermark, model.DefaultWatermarkText)
	v.SetDefault(KeyFontSize, model.DefaultFontSize)
	v.SetDefault(KeyOpacity, model.DefaultOpacity)
	v.SetDefault(KeyFontPaths, []string{})
	v.SetDefault(KeyRenderer, "")
	v.SetDefault(KeyFFmpeg, "")
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyNoUI, false)

	// Environment variables: MANIMARK_*
	v.SetEnvPrefix("MANIMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config") // supports config.{yaml|yml|json|toml}
	if cfgDir, err := dirs.ConfigDir(); err == nil {
		v.AddConfigPath(cfgDir)
	}
	return v
}

// Load binds every known flag present in flags and reads the config file.
// cfgFile overrides the search path when set. A missing config file in the
// search path is not an error; an explicit or unparseable one is.
func Load(v *viper.Viper, flags *pflag.FlagSet, cfgFile string) error {
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
