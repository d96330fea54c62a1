package workflow

import (
	"testing"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}

func paymentRow(start time.Time, end *time.Time) *models.Payment {
	return &models.Payment{StartDate: start, EndDate: end}
}

func TestCalendarMonthEnd(t *testing.T) {
	cases := []struct {
		start time.Time
		want  time.Time
	}{
		{date(2024, time.January, 15), date(2024, time.February, 14)},
		{date(2024, time.March, 1), date(2024, time.March, 31)},
		// short next month clamps to its last day
		{date(2024, time.January, 31), date(2024, time.February, 29)},
		{date(2023, time.January, 31), date(2023, time.February, 28)},
		{date(2024, time.March, 31), date(2024, time.April, 30)},
		// year rollover
		{date(2024, time.December, 15), date(2025, time.January, 14)},
	}
	for _, tc := range cases {
		got := calendarMonthEnd(tc.start)
		if !got.Equal(tc.want) {
			t.Fatalf("calendarMonthEnd(%s) = %s, want %s",
				tc.start.Format("2006-01-02"), got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

func TestSessionCountEnd(t *testing.T) {
	// Saturday start, training on Saturday and Tuesday, four sessions:
	// Mar 2 (Sat), Mar 5 (Tue), Mar 9 (Sat), Mar 12 (Tue)
	start := date(2024, time.March, 2)
	days := []time.Weekday{time.Saturday, time.Tuesday}

	end := sessionCountEnd(start, days, 4)
	if end == nil {
		t.Fatal("expected an end date, got nil")
	}
	if want := date(2024, time.March, 12); !end.Equal(want) {
		t.Fatalf("end = %s, want %s", end.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	// the start date itself counts when it is a training day
	end = sessionCountEnd(start, days, 1)
	if end == nil || !end.Equal(start) {
		t.Fatalf("target 1 should end on the start date, got %v", end)
	}

	if end := sessionCountEnd(start, nil, 4); end != nil {
		t.Fatalf("no training days should give open end, got %s", end.Format("2006-01-02"))
	}
	if end := sessionCountEnd(start, days, 0); end != nil {
		t.Fatalf("zero target should give open end, got %s", end.Format("2006-01-02"))
	}
}

func TestResolvePeriodsCalendarMonth(t *testing.T) {
	member := &models.Member{SubscriptionMode: models.SubscriptionModeCalendarMonth}
	rows := []*models.Payment{
		paymentRow(date(2024, time.January, 15), nil),
		paymentRow(date(2024, time.February, 20), nil),
	}

	periods := ResolvePeriods(member, nil, rows)
	if len(periods) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(periods))
	}
	if want := date(2024, time.February, 14); periods[0].EndDate == nil || !periods[0].EndDate.Equal(want) {
		t.Fatalf("first period end = %v, want %s", periods[0].EndDate, want.Format("2006-01-02"))
	}
	if want := date(2024, time.March, 19); periods[1].EndDate == nil || !periods[1].EndDate.Equal(want) {
		t.Fatalf("second period end = %v, want %s", periods[1].EndDate, want.Format("2006-01-02"))
	}
}

func TestResolvePeriodsStoredEndWins(t *testing.T) {
	member := &models.Member{SubscriptionMode: models.SubscriptionModeCalendarMonth}
	rows := []*models.Payment{
		paymentRow(date(2024, time.January, 1), datePtr(2024, time.March, 15)),
	}

	periods := ResolvePeriods(member, nil, rows)
	if want := date(2024, time.March, 15); periods[0].EndDate == nil || !periods[0].EndDate.Equal(want) {
		t.Fatalf("stored end should pass through verbatim, got %v", periods[0].EndDate)
	}
}

func TestResolvePeriodsMemberOverride(t *testing.T) {
	member := &models.Member{
		SubscriptionMode: models.SubscriptionModeCalendarMonth,
		EndDate:          datePtr(2024, time.May, 1),
	}
	rows := []*models.Payment{
		paymentRow(date(2024, time.March, 1), nil),
		paymentRow(date(2024, time.April, 10), nil),
	}

	periods := ResolvePeriods(member, nil, rows)
	// only the last period is overridden
	if want := date(2024, time.March, 31); !periods[0].EndDate.Equal(want) {
		t.Fatalf("first period end = %v, want %s", periods[0].EndDate, want.Format("2006-01-02"))
	}
	if want := date(2024, time.May, 1); !periods[1].EndDate.Equal(want) {
		t.Fatalf("override should replace the last end, got %v", periods[1].EndDate)
	}
}

func TestResolvePeriodsSessionCountWithoutBranch(t *testing.T) {
	member := &models.Member{
		SubscriptionMode: models.SubscriptionModeSessionCount,
		SessionTarget:    8,
	}
	rows := []*models.Payment{paymentRow(date(2024, time.March, 2), nil)}

	periods := ResolvePeriods(member, nil, rows)
	if periods[0].EndDate != nil {
		t.Fatalf("no branch means no training days, expected open end, got %v", periods[0].EndDate)
	}
}

func TestResolvePeriodsSessionCountWithBranch(t *testing.T) {
	member := &models.Member{
		SubscriptionMode: models.SubscriptionModeSessionCount,
		SessionTarget:    4,
	}
	branch := &models.Branch{TrainingDays: "6,2"} // Saturday, Tuesday
	rows := []*models.Payment{paymentRow(date(2024, time.March, 2), nil)}

	periods := ResolvePeriods(member, branch, rows)
	if want := date(2024, time.March, 12); periods[0].EndDate == nil || !periods[0].EndDate.Equal(want) {
		t.Fatalf("session-count end = %v, want %s", periods[0].EndDate, want.Format("2006-01-02"))
	}
}

func TestResolvePeriodsEmpty(t *testing.T) {
	member := &models.Member{}
	if periods := ResolvePeriods(member, nil, nil); periods != nil {
		t.Fatalf("no payments should yield no periods, got %d", len(periods))
	}
	if periods := ResolvePeriods(nil, nil, []*models.Payment{paymentRow(date(2024, time.March, 1), nil)}); periods != nil {
		t.Fatalf("nil member should yield no periods, got %d", len(periods))
	}
}
