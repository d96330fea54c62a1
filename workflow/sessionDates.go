package workflow

import (
	"sort"
	"time"
)

// SessionDates returns the ascending calendar dates of the given month whose
// weekday is in days. Pure and recomputed on demand; an empty weekday set
// yields an empty result.
func SessionDates(year int, month time.Month, days []time.Weekday) []time.Time {
	if len(days) == 0 {
		return nil
	}

	inSet := make(map[time.Weekday]bool, len(days))
	for _, day := range days {
		inSet[day] = true
	}

	var dates []time.Time
	current := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for current.Month() == month {
		if inSet[current.Weekday()] {
			dates = append(dates, current)
		}
		current = current.AddDate(0, 0, 1)
	}
	return dates
}

// MergeSessionDates combines generated session dates with ad-hoc extra
// training dates into one ascending, deduplicated sequence.
func MergeSessionDates(scheduled []time.Time, extra []time.Time) []time.Time {
	seen := make(map[string]bool, len(scheduled)+len(extra))
	merged := make([]time.Time, 0, len(scheduled)+len(extra))
	for _, date := range scheduled {
		key := date.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			merged = append(merged, date)
		}
	}
	for _, date := range extra {
		key := date.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			merged = append(merged, date)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Before(merged[j]) })
	return merged
}
