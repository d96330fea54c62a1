package workflow

import (
	"testing"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/models"
)

func TestClassify(t *testing.T) {
	periods := []SubscriptionPeriod{
		{StartDate: date(2024, time.January, 10), EndDate: datePtr(2024, time.February, 9)},
		{StartDate: date(2024, time.March, 1), EndDate: datePtr(2024, time.March, 31)},
	}

	cases := []struct {
		date time.Time
		want models.EligibilityStatus
	}{
		{date(2024, time.January, 9), models.EligibilityStatusNotSubscribed},
		{date(2024, time.January, 10), models.EligibilityStatusActive},
		{date(2024, time.February, 9), models.EligibilityStatusActive}, // end date inclusive
		{date(2024, time.February, 15), models.EligibilityStatusExpired},
		{date(2024, time.March, 1), models.EligibilityStatusActive},
		{date(2024, time.April, 1), models.EligibilityStatusExpired},
	}
	for _, tc := range cases {
		if got := Classify(tc.date, periods); got != tc.want {
			t.Fatalf("Classify(%s) = %s, want %s", tc.date.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestClassifyNoPeriods(t *testing.T) {
	if got := Classify(date(2024, time.March, 1), nil); got != models.EligibilityStatusNotSubscribed {
		t.Fatalf("no periods should classify not_subscribed, got %s", got)
	}
}

func TestClassifyOpenEnd(t *testing.T) {
	periods := []SubscriptionPeriod{{StartDate: date(2024, time.January, 1)}}
	if got := Classify(date(2030, time.December, 31), periods); got != models.EligibilityStatusActive {
		t.Fatalf("open-ended period should stay active, got %s", got)
	}
}

func TestClassifyIgnoresClockComponent(t *testing.T) {
	end := time.Date(2024, time.February, 9, 23, 30, 0, 0, time.UTC)
	periods := []SubscriptionPeriod{{StartDate: date(2024, time.January, 10), EndDate: &end}}
	probe := time.Date(2024, time.February, 9, 8, 0, 0, 0, time.UTC)
	if got := Classify(probe, periods); got != models.EligibilityStatusActive {
		t.Fatalf("same calendar day should be active regardless of clock, got %s", got)
	}
}

func TestIsActiveInMonth(t *testing.T) {
	periods := []SubscriptionPeriod{
		{StartDate: date(2024, time.January, 20), EndDate: datePtr(2024, time.February, 19)},
	}

	cases := []struct {
		year  int
		month time.Month
		want  bool
	}{
		{2023, time.December, false},
		{2024, time.January, true},
		{2024, time.February, true},
		{2024, time.March, false},
	}
	for _, tc := range cases {
		if got := IsActiveInMonth(periods, tc.year, tc.month); got != tc.want {
			t.Fatalf("IsActiveInMonth(%d-%02d) = %v, want %v", tc.year, tc.month, got, tc.want)
		}
	}

	open := []SubscriptionPeriod{{StartDate: date(2024, time.January, 1)}}
	if !IsActiveInMonth(open, 2026, time.June) {
		t.Fatal("open-ended period should intersect any later month")
	}
}
