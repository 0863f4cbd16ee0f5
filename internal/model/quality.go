package model

import "strings"

// ParseQuality maps a user-supplied code onto a known Quality.
// Unknown codes yield DefaultQuality and ok=false; they are never an error.
func ParseQuality(s string) (q Quality, ok bool) {
	switch Quality(strings.ToLower(strings.TrimSpace(s))) {
	case QualityLow:
		return QualityLow, true
	case QualityMedium:
		return QualityMedium, true
	case QualityHigh:
		return QualityHigh, true
	case Quality4K:
		return Quality4K, true
	default:
		return DefaultQuality, false
	}
}

// RenderFlag returns the manim command-line flag for q.
func (q Quality) RenderFlag() string {
	switch q {
	case QualityLow:
		return "-pql"
	case QualityMedium:
		return "-pqm"
	case Quality4K:
		return "-pqk"
	case QualityHigh:
		fallthrough
	default:
		return "-pqh"
	}
}

// DirFragment returns the directory name manim writes q renders under,
// e.g. media/videos/<script>/1080p60/<Scene>.mp4.
func (q Quality) DirFragment() string {
	switch q {
	case QualityLow:
		return "480p15"
	case QualityMedium:
		return "720p30"
	case Quality4K:
		return "2160p60"
	case QualityHigh:
		fallthrough
	default:
		return "1080p60"
	}
}

// Label is a short human-readable description used in reports.
func (q Quality) Label() string {
	switch q {
	case QualityLow:
		return "low (480p15)"
	case QualityMedium:
		return "medium (720p30)"
	case Quality4K:
		return "4k (2160p60)"
	default:
		return "high (1080p60)"
	}
}
