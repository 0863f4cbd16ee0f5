package deps

import (
	"fmt"
	"os"
	"os/exec"
)

// FindRenderer returns the path to the manim binary.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindRenderer(customPath string) (string, error) {
	return find(customPath, "manim", "could not find manim in PATH. Install it with: pip install manim")
}

// FindFFmpeg returns the path to the ffmpeg binary.
func FindFFmpeg(customPath string) (string, error) {
	return find(customPath, "ffmpeg", "could not find ffmpeg in PATH. Please install ffmpeg.")
}

// FindFFprobe returns the path to ffprobe. It is optional: only used to
// report duration and resolution.
func FindFFprobe() (string, error) {
	return find("", "ffprobe", "could not find ffprobe in PATH (optional, ships with ffmpeg)")
}

func find(customPath, name, missing string) (string, error) {
	if customPath != "" {
		if fi, err := os.Stat(customPath); err == nil && !fi.IsDir() {
			return customPath, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("could not find %s at %q", name, customPath)
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%s", missing)
}
