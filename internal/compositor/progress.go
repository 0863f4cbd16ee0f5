package compositor

import (
	"strconv"
	"strings"

	"manimark/internal/progress"
)

// ProgressState tracks ffmpeg's -progress key=value stream between blocks.
type ProgressState struct {
	OutTimeUs int64
	SpeedStr  string
}

// UpdateFromLine folds one progress line into the state and returns an update
// when a block ends (the "progress=" key). Percent is -1 when durationSec is unknown.
func (ps *ProgressState) UpdateFromLine(line string, durationSec float64) (u progress.Update, ok bool) {
	key, val, found := strings.Cut(line, "=")
	if !found {
		return progress.Update{}, false
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	switch key {
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds; out_time_ms is misnamed in ffmpeg.
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.OutTimeUs = v
		}
	case "speed":
		ps.SpeedStr = val
	case "progress":
		percent := -1.0
		if durationSec > 0 {
			percent = float64(ps.OutTimeUs) / (durationSec * 1_000_000) * 100.0
			if percent > 100 {
				percent = 100
			}
			if percent < 0 {
				percent = 0
			}
		}
		if val == "end" {
			percent = 100
		}

		var speedPtr *string
		if ps.SpeedStr != "" && ps.SpeedStr != "N/A" {
			s := ps.SpeedStr
			speedPtr = &s
		}

		return progress.Update{
			Stage:   progress.StageComposite,
			Percent: percent,
			Speed:   speedPtr,
			Message: "Compositing watermark",
		}, true
	}

	return progress.Update{}, false
}
