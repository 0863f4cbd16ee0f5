package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("quality", "q", "h", "")
	fs.Int("font-size", 24, "")
	fs.Float64("opacity", 0.7, "")
	fs.StringArray("font", nil, "")
	fs.String("renderer", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := New()
	require.NoError(t, Load(v, testFlags(), ""))

	assert.Equal(t, "h", v.GetString(KeyQuality))
	assert.Equal(t, 24, v.GetInt(KeyFontSize))
	assert.InDelta(t, 0.7, v.GetFloat64(KeyOpacity), 1e-9)
	assert.Equal(t, "© Vibe Ask", v.GetString(KeyWatermark))
	assert.Empty(t, v.GetStringSlice(KeyFontPaths))
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("quality: l\nfont_size: 30\nopacity: 0.4\nrenderer: /opt/manim\n"), 0o644))
	t.Setenv("MANIMARK_FONT_SIZE", "36")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--opacity", "0.9"}))

	v := New()
	require.NoError(t, Load(v, fs, cfg))

	assert.Equal(t, "l", v.GetString(KeyQuality), "config beats default")
	assert.Equal(t, 36, v.GetInt(KeyFontSize), "env beats config")
	assert.InDelta(t, 0.9, v.GetFloat64(KeyOpacity), 1e-9, "flag beats config")
	assert.Equal(t, "/opt/manim", v.GetString(KeyRenderer))
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	v := New()
	err := Load(v, testFlags(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_SearchPath(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "manimark"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "manimark", "config.yaml"), []byte("watermark: studio\n"), 0o644))

	v := New()
	require.NoError(t, Load(v, testFlags(), ""))
	if v.ConfigFileUsed() == "" {
		t.Skip("config dir is not XDG based on this platform")
	}
	assert.Equal(t, "studio", v.GetString(KeyWatermark))
}
