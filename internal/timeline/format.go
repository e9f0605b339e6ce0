package timeline

import (
	"fmt"
	"math"
)

// FormatTimecode renders seconds as "MM:SS.mmm", adding an hours field once
// the time reaches an hour. Negative times are clamped to zero.
func FormatTimecode(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	totalMs := int(math.Round(seconds * 1000))
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	sec := totalSec % 60
	totalMin := totalSec / 60
	min := totalMin % 60
	hours := totalMin / 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", hours, min, sec, ms)
	}
	return fmt.Sprintf("%02d:%02d.%03d", min, sec, ms)
}
