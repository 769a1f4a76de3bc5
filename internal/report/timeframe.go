package report

import (
	"fmt"
	"time"
)

// Timeframe names a listing window ending now.
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
	TimeframeAll   Timeframe = "all"
)

// ParseTimeframe validates a timeframe name. Empty means all.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(s); tf {
	case TimeframeWeek, TimeframeMonth, TimeframeYear, TimeframeAll:
		return tf, nil
	case "":
		return TimeframeAll, nil
	}
	return "", fmt.Errorf("invalid timeframe %q", s)
}

// Range returns the window [start, now] for the timeframe in now's location.
// Weeks start on Monday. TimeframeAll returns a zero start.
func (tf Timeframe) Range(now time.Time) (start, end time.Time) {
	switch tf {
	case TimeframeWeek:
		return StartOfWeek(now), now
	case TimeframeMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now
	case TimeframeYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), now
	}
	return time.Time{}, now
}

// StartOfWeek returns midnight of the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
}
