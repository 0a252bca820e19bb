package pipeline

import (
	"fmt"
	"time"

	"github.com/mediaharvest/mediaharvest/internal/clock"
)

var (
	dayFormats   = []string{"2006-01-02", "2006/01/02", "20060102"}
	monthFormats = []string{"2006-01", "2006/01", "200601"}
)

// ExpandDateParam resolves a date run parameter into the list of days the
// run should cover. A day-shaped value yields that single day; a
// month-shaped value expands to every day of the month; an empty value
// defaults to yesterday.
func ExpandDateParam(raw string, clk clock.Clock) ([]time.Time, error) {
	if raw == "" {
		return []time.Time{clk.Now().AddDate(0, 0, -1)}, nil
	}

	for _, layout := range dayFormats {
		if day, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return []time.Time{day}, nil
		}
	}
	for _, layout := range monthFormats {
		if month, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return expandMonth(month), nil
		}
	}
	return nil, fmt.Errorf("invalid date parameter %q", raw)
}

func expandMonth(month time.Time) []time.Time {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.Local)
	days := first.AddDate(0, 1, -1).Day()

	out := make([]time.Time, 0, days)
	for d := 0; d < days; d++ {
		out = append(out, first.AddDate(0, 0, d))
	}
	return out
}
