package usage

import (
	"fmt"
	"time"
)

// FormatTokenCount formats a token count for display, matching the
// abbreviation scheme CLI output uses throughout: exact below 1,000,
// one decimal of "k" below 10,000, whole "k" below 1,000,000, one decimal
// of "m" above that.
func FormatTokenCount(count int) string {
	switch {
	case count <= 0:
		return "0"
	case count >= 1_000_000:
		return fmt.Sprintf("%.1fm", float64(count)/1_000_000)
	case count >= 10_000:
		return fmt.Sprintf("%dk", count/1_000)
	case count >= 1_000:
		return fmt.Sprintf("%.1fk", float64(count)/1_000)
	default:
		return fmt.Sprintf("%d", count)
	}
}

// FormatDuration formats a duration for display in run summaries.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}
