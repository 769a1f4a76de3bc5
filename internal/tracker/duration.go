package tracker

import (
	"strconv"
	"strings"
	"time"
)

// FormatDuration renders d as "1h 2m 3s", omitting zero leading units.
// Non-positive durations render as "unavailable".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "unavailable"
	}
	secs := int64(d / time.Second)
	h, m, s := secs/3600, secs%3600/60, secs%60

	var parts []string
	if h > 0 {
		parts = append(parts, strconv.FormatInt(h, 10)+"h")
	}
	if m > 0 {
		parts = append(parts, strconv.FormatInt(m, 10)+"m")
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, strconv.FormatInt(s, 10)+"s")
	}
	return strings.Join(parts, " ")
}
