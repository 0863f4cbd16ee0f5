package renderer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"manimark/internal/progress"
)

// ParseProgress parses manim's per-animation progress bars.
// Lines look like:
//
//	Animation 3 : Write(MathTex): 45%|####5     | 27/60 [00:01<00:01, 20.04it/s]
//	Animation 0: Create(Square): 100%|██████████| 15/15 [00:00<00:00, 63.86it/s]
//
// Returns ok=false for anything else.
func ParseProgress(line string) (u progress.Update, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "Animation ") {
		return progress.Update{}, false
	}
	bar := strings.Index(line, "%|")
	if bar == -1 {
		return progress.Update{}, false
	}

	// Percent is the token right before "%|".
	head := line[:bar]
	start := strings.LastIndexAny(head, " :") + 1
	percent, err := strconv.ParseFloat(strings.TrimSpace(head[start:]), 64)
	if err != nil {
		return progress.Update{}, false
	}

	anim := strings.TrimSpace(strings.TrimPrefix(line, "Animation "))
	if idx := strings.IndexAny(anim, " :"); idx != -1 {
		anim = anim[:idx]
	}

	var eta *time.Duration
	var speed *string
	if lb := strings.LastIndex(line, "["); lb != -1 {
		stats := strings.TrimSuffix(line[lb+1:], "]")
		timing, rate, _ := strings.Cut(stats, ",")
		if _, remaining, found := strings.Cut(timing, "<"); found {
			if d, err := parseClock(strings.TrimSpace(remaining)); err == nil {
				eta = &d
			}
		}
		if r := strings.TrimSpace(rate); r != "" {
			speed = &r
		}
	}

	return progress.Update{
		Stage:   progress.StageRender,
		Percent: percent,
		ETA:     eta,
		Speed:   speed,
		Message: fmt.Sprintf("Rendering animation %s", anim),
	}, true
}

// parseClock parses tqdm clock strings like "00:04" or "01:23:45".
func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("bad clock %q", s)
	}
	var total time.Duration
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, err
		}
		total = total*60 + time.Duration(n)
	}
	return total * time.Second, nil
}
