package aggregation

import (
	"fmt"
	"time"
)

// DateRange selects the calendar window an aggregation covers.
type DateRange string

const (
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
	RangeYear  DateRange = "year"
	RangeAll   DateRange = "all"
)

const day = 24 * time.Hour

// ParseDateRange validates a dateRange query value.
// An empty value falls back to def; anything outside the enum is an error.
func ParseDateRange(s string, def DateRange) (DateRange, error) {
	switch DateRange(s) {
	case "":
		return def, nil
	case RangeWeek, RangeMonth, RangeYear, RangeAll:
		return DateRange(s), nil
	}
	return "", fmt.Errorf("invalid date range %q (must be week, month, year, or all)", s)
}

// Window is a half-open [Start, End) interval of instants.
// A zero Start or End means the window is unbounded on that side.
type Window struct {
	Range DateRange
	Start time.Time
	End   time.Time
}

// WindowFor anchors r at base, interpreted in UTC.
//
//	week:  [day(base) - 7d, day(base) + 1d)
//	month: the calendar month containing base
//	year:  the calendar year containing base
//	all:   unbounded
func WindowFor(r DateRange, base time.Time) Window {
	anchor := TruncateToDay(base)
	switch r {
	case RangeWeek:
		return Window{Range: r, Start: anchor.Add(-7 * day), End: anchor.Add(day)}
	case RangeMonth:
		start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{Range: r, Start: start, End: start.AddDate(0, 1, 0)}
	case RangeYear:
		start := time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return Window{Range: r, Start: start, End: start.AddDate(1, 0, 0)}
	}
	return Window{Range: RangeAll}
}

// TruncateToDay truncates a timestamp to 00:00:00 UTC of its calendar day.
// Every aggregation buckets by this day regardless of window size.
func TruncateToDay(t time.Time) time.Time {
	year, month, d := t.UTC().Date()
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
