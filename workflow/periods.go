package workflow

import (
	"time"

	"github.com/Jasemalbateni/academybase-sub001/models"
)

// sessionWalkBound caps the day-by-day walk of session-count mode so it
// always terminates, even on sparse training-day sets.
const sessionWalkBound = 365

// SubscriptionPeriod is one continuous active window. A nil end date means
// the period is open-ended. Periods are always derived fresh from payment
// rows; they are never stored.
type SubscriptionPeriod struct {
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// ResolvePeriods derives a member's ordered period list from their payment
// rows (ascending by start date). Rows without a stored end date get a
// synthetic one from the member's subscription mode; the member record's
// authoritative end date, when set, replaces the last period's end whatever
// was computed or stored. Malformed dates and missing branch data degrade to
// open-ended periods instead of erroring.
func ResolvePeriods(member *models.Member, branch *models.Branch, rows []*models.Payment) []SubscriptionPeriod {
	if member == nil || len(rows) == 0 {
		return nil
	}

	var trainingDays []time.Weekday
	if branch != nil {
		trainingDays = branch.TrainingWeekdays()
	}

	periods := make([]SubscriptionPeriod, 0, len(rows))
	for _, row := range rows {
		period := SubscriptionPeriod{StartDate: row.StartDate}
		switch {
		case row.StartDate.IsZero():
			// unusable start, leave the window open rather than guessing
		case row.EndDate != nil && !row.EndDate.IsZero():
			end := *row.EndDate
			period.EndDate = &end
		case member.SubscriptionMode == models.SubscriptionModeSessionCount:
			period.EndDate = sessionCountEnd(row.StartDate, trainingDays, member.SessionTarget)
		default:
			end := calendarMonthEnd(row.StartDate)
			period.EndDate = &end
		}
		periods = append(periods, period)
	}

	// manual extensions always win for the most recent period
	if member.EndDate != nil && !member.EndDate.IsZero() {
		end := *member.EndDate
		periods[len(periods)-1].EndDate = &end
	}

	return periods
}

// calendarMonthEnd computes the inclusive end of a one-month window: the day
// before the same day-of-month one calendar month later. When the later month
// is too short for that day-of-month, the end clamps to its last valid day
// (a start on Jan 31 ends on Feb 28/29).
func calendarMonthEnd(start time.Time) time.Time {
	year, month, day := start.Date()
	lastOfNext := time.Date(year, month+2, 0, 0, 0, 0, 0, start.Location())
	if day > lastOfNext.Day() {
		return lastOfNext
	}
	return time.Date(year, month+1, day-1, 0, 0, 0, 0, start.Location())
}

// sessionCountEnd walks forward from start, counting dates whose weekday is
// in the training-day set, and returns the date on which the target count is
// reached. Returns nil (open-ended) when the branch has no training days, the
// target is not positive, or the bounded walk runs out.
func sessionCountEnd(start time.Time, trainingDays []time.Weekday, target int) *time.Time {
	if len(trainingDays) == 0 || target <= 0 {
		return nil
	}

	inSet := make(map[time.Weekday]bool, len(trainingDays))
	for _, day := range trainingDays {
		inSet[day] = true
	}

	counted := 0
	current := start
	for i := 0; i < sessionWalkBound; i++ {
		if inSet[current.Weekday()] {
			counted++
			if counted == target {
				end := current
				return &end
			}
		}
		current = current.AddDate(0, 0, 1)
	}
	return nil
}
