// Package format renders sizes and durations for status lines.
package format

import "strconv"

var byteUnits = []string{"KB", "MB", "GB", "TB", "PB"}

// HumanizeBytes renders b in binary units with one decimal, e.g. "1.5 MB".
// Counts below 1 KB are printed exactly.
func HumanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit && exp < len(byteUnits)-1; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + byteUnits[exp]
}
