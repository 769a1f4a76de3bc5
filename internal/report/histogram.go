package report

import (
	"fmt"
	"sort"
	"time"
)

// BinSize is the width of a histogram bucket.
type BinSize string

const (
	BinDay   BinSize = "day"
	BinWeek  BinSize = "week"
	BinMonth BinSize = "month"
	BinYear  BinSize = "year"
)

// ParseBinSize validates a bin size name.
func ParseBinSize(s string) (BinSize, error) {
	switch b := BinSize(s); b {
	case BinDay, BinWeek, BinMonth, BinYear:
		return b, nil
	}
	return "", fmt.Errorf("invalid bin size %q", s)
}

// Point is one dated value.
type Point struct {
	At    time.Time
	Value float64
}

// Bin is one histogram bucket covering [Start, End).
type Bin struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
	Value float64   `json:"value"`
}

func (b BinSize) floor(t time.Time) time.Time {
	switch b {
	case BinWeek:
		return StartOfWeek(t)
	case BinMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case BinYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (b BinSize) next(t time.Time) time.Time {
	switch b {
	case BinWeek:
		return t.AddDate(0, 0, 7)
	case BinMonth:
		return t.AddDate(0, 1, 0)
	case BinYear:
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 0, 1)
}

func (b BinSize) label(start, end time.Time) string {
	switch b {
	case BinWeek:
		return start.Format("Jan 2") + " - " + end.AddDate(0, 0, -1).Format("Jan 2")
	case BinMonth:
		return start.Format("Jan 06")
	case BinYear:
		return start.Format("2006")
	}
	return start.Format("Jan 2")
}

// Histogram sums points into consecutive buckets from the bucket containing
// start through the bucket containing end. A zero start or end falls back to
// the earliest or latest point. Points outside the range are dropped.
func Histogram(points []Point, size BinSize, start, end time.Time) []Bin {
	if len(points) == 0 && (start.IsZero() || end.IsZero()) {
		return nil
	}
	sorted := append([]Point(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })
	if start.IsZero() {
		start = sorted[0].At
	}
	if end.IsZero() {
		end = sorted[len(sorted)-1].At
	}
	if end.Before(start) {
		return nil
	}

	var bins []Bin
	for cur := size.floor(start); !cur.After(end); cur = size.next(cur) {
		next := size.next(cur)
		bins = append(bins, Bin{Start: cur, End: next, Label: size.label(cur, next)})
	}

	for _, p := range sorted {
		if p.At.Before(start) || p.At.After(end) {
			continue
		}
		i := sort.Search(len(bins), func(i int) bool { return p.At.Before(bins[i].End) })
		if i < len(bins) {
			bins[i].Value += p.Value
		}
	}
	return bins
}
