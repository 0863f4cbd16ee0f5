// Package probe reads duration and resolution of a rendered video via ffprobe.
package probe

import (
	"encoding/json"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"manimark/internal/model"
)

// Prober inspects a media file.
type Prober interface {
	Probe(path string) (model.MediaInfo, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(path string) (model.MediaInfo, error)

func (f ProberFunc) Probe(path string) (model.MediaInfo, error) { return f(path) }

// FFprobe runs the ffprobe binary from PATH.
type FFprobe struct{}

func (FFprobe) Probe(path string) (model.MediaInfo, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return model.MediaInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return Parse([]byte(out))
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// Parse extracts MediaInfo from ffprobe's -show_format -show_streams JSON.
// Duration comes from the container, falling back to the first video stream.
func Parse(data []byte) (model.MediaInfo, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return model.MediaInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var info model.MediaInfo
	info.DurationSec = parseSeconds(out.Format.Duration)
	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		info.Width, info.Height = s.Width, s.Height
		if info.DurationSec == 0 {
			info.DurationSec = parseSeconds(s.Duration)
		}
		break
	}
	return info, nil
}

func parseSeconds(s string) float64 {
	if s == "" || s == "N/A" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
