package compositor

import (
	"fmt"
	"strconv"
)

// Overlay margin from the bottom-right corner, in pixels.
const margin = 10

// FilterGraph builds the -filter_complex expression: scale the overlay's
// alpha by opacity, then place it margin pixels from the bottom-right corner.
func FilterGraph(opacity float64) string {
	return fmt.Sprintf("[1:v]format=rgba,colorchannelmixer=aa=%s[wm];[0:v][wm]overlay=W-w-%d:H-h-%d",
		FormatOpacity(opacity), margin, margin)
}

// FormatOpacity prints opacity in its shortest decimal form (0.7, 1, 0.25).
func FormatOpacity(opacity float64) string {
	return strconv.FormatFloat(opacity, 'f', -1, 64)
}

// BuildArgs constructs the ffmpeg arguments for compositing watermarkPath onto
// inputPath. Audio streams are copied untouched. The output path is always last.
func BuildArgs(inputPath, watermarkPath, outputPath string, opacity float64, includeProgress bool) []string {
	args := []string{
		"-y",
		"-i", inputPath,
		"-i", watermarkPath,
		"-filter_complex", FilterGraph(opacity),
		"-c:a", "copy",
	}

	if includeProgress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}

	args = append(args, outputPath)
	return args
}
