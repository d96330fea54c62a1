package workflow

import (
	"time"

	"github.com/Jasemalbateni/academybase-sub001/models"
)

// Classify answers "what is this member's status on date" against an
// immutable, chronologically ordered period list. With overlapping input the
// earliest matching period wins; the function never attempts to repair
// overlaps.
func Classify(date time.Time, periods []SubscriptionPeriod) models.EligibilityStatus {
	if len(periods) == 0 || dateBefore(date, periods[0].StartDate) {
		return models.EligibilityStatusNotSubscribed
	}
	for _, period := range periods {
		if dateBefore(date, period.StartDate) {
			continue
		}
		if period.EndDate == nil || !dateBefore(*period.EndDate, date) {
			return models.EligibilityStatusActive
		}
	}
	return models.EligibilityStatusExpired
}

// IsActiveInMonth reports whether any period's [start, end] window intersects
// the month's [first day, last day] range. Open-ended periods extend to
// infinity. Decides roster membership independent of any specific day.
func IsActiveInMonth(periods []SubscriptionPeriod, year int, month time.Month) bool {
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstDay.AddDate(0, 1, -1)

	for _, period := range periods {
		if dateBefore(lastDay, period.StartDate) {
			continue
		}
		if period.EndDate == nil || !dateBefore(*period.EndDate, firstDay) {
			return true
		}
	}
	return false
}

// dateBefore compares by calendar date only, so period boundaries stay
// inclusive regardless of any clock component on stored dates.
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
