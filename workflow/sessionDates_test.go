package workflow

import (
	"testing"
	"time"
)

func TestSessionDates(t *testing.T) {
	// March 2024 Saturdays: 2, 9, 16, 23, 30. Tuesdays: 5, 12, 19, 26.
	dates := SessionDates(2024, time.March, []time.Weekday{time.Saturday, time.Tuesday})
	if len(dates) != 9 {
		t.Fatalf("expected 9 session dates, got %d", len(dates))
	}
	if !dates[0].Equal(date(2024, time.March, 2)) {
		t.Fatalf("first date = %s, want 2024-03-02", dates[0].Format("2006-01-02"))
	}
	if !dates[len(dates)-1].Equal(date(2024, time.March, 30)) {
		t.Fatalf("last date = %s, want 2024-03-30", dates[len(dates)-1].Format("2006-01-02"))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			t.Fatalf("dates out of order at %d: %s then %s", i,
				dates[i-1].Format("2006-01-02"), dates[i].Format("2006-01-02"))
		}
	}
}

func TestSessionDatesEmptySet(t *testing.T) {
	if dates := SessionDates(2024, time.March, nil); len(dates) != 0 {
		t.Fatalf("empty weekday set should yield no dates, got %d", len(dates))
	}
}

func TestMergeSessionDates(t *testing.T) {
	scheduled := []time.Time{
		date(2024, time.March, 2),
		date(2024, time.March, 9),
	}
	extra := []time.Time{
		date(2024, time.March, 9), // duplicate of a scheduled date
		date(2024, time.March, 4),
	}

	merged := MergeSessionDates(scheduled, extra)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged dates, got %d", len(merged))
	}
	want := []time.Time{
		date(2024, time.March, 2),
		date(2024, time.March, 4),
		date(2024, time.March, 9),
	}
	for i := range want {
		if !merged[i].Equal(want[i]) {
			t.Fatalf("merged[%d] = %s, want %s", i,
				merged[i].Format("2006-01-02"), want[i].Format("2006-01-02"))
		}
	}
}
