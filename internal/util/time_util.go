package util

import (
	"fmt"
	"portfolioanalysis/internal/domain"
	"time"
)

const layout = "2006-01-02"

func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func DateLte(t1, t2 time.Time) bool {
	return t1.Before(t2) || t1.Format(layout) == t2.Format(layout)
}

// TruncateToDate drops the time of day, keeping the calendar date in UTC
func TruncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// HistoryWindow resolves an optional start/end pair. A missing end is
// today and a missing start is `days` before the end.
func HistoryWindow(start, end string, days int, now time.Time) (time.Time, time.Time, error) {
	endDate := TruncateToDate(now)
	if end != "" {
		parsed, err := time.Parse(layout, end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end %q", domain.ErrInvalidDateFormat, end)
		}
		endDate = parsed
	}
	if days <= 0 {
		days = 30
	}
	startDate := endDate.AddDate(0, 0, -days)
	if start != "" {
		parsed, err := time.Parse(layout, start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q", domain.ErrInvalidDateFormat, start)
		}
		startDate = parsed
	}
	return startDate, endDate, nil
}
