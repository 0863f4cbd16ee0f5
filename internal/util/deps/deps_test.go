package deps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRenderer_CustomPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "manim")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	got, err := FindRenderer(bin)
	require.NoError(t, err)
	assert.Equal(t, bin, got)
}

func TestFindRenderer_LooksUpPATH(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "manim")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir)

	got, err := FindRenderer("")
	require.NoError(t, err)
	assert.Equal(t, bin, got)
}

func TestFindFFmpeg_Missing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := FindFFmpeg("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg")

	_, err = FindFFmpeg(filepath.Join(t.TempDir(), "no-such-ffmpeg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-ffmpeg")
}

func TestFind_RejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATH", t.TempDir())
	_, err := FindFFmpeg(dir)
	require.Error(t, err)
}
