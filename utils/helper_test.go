package utils

import (
	"testing"
	"time"
)

func TestMonthKeyRoundTrip(t *testing.T) {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	key := MonthKey(start)
	if key != "2024-03" {
		t.Fatalf("got %q, want 2024-03", key)
	}
	parsed, err := ParseMonth(key)
	if err != nil {
		t.Fatalf("ParseMonth: %v", err)
	}
	if !parsed.Equal(start) {
		t.Fatalf("got %v, want %v", parsed, start)
	}
}

func TestParseMonthRejectsBadKeys(t *testing.T) {
	for _, key := range []string{"2024-3", "2024/03", "March 2024", ""} {
		if _, err := ParseMonth(key); err == nil {
			t.Fatalf("ParseMonth(%q): expected error", key)
		}
	}
}

func TestPrevMonthKey(t *testing.T) {
	cases := map[string]string{
		"2024-03": "2024-02",
		"2024-01": "2023-12",
	}
	for in, want := range cases {
		got, err := PrevMonthKey(in)
		if err != nil {
			t.Fatalf("PrevMonthKey(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("PrevMonthKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMonthRange(t *testing.T) {
	from, to, err := MonthRange("2024-12")
	if err != nil {
		t.Fatalf("MonthRange: %v", err)
	}
	if from.Month() != time.December || to.Year() != 2025 || to.Month() != time.January {
		t.Fatalf("got [%v, %v)", from, to)
	}
}

func TestGetPeriodRange(t *testing.T) {
	now := time.Now()

	start, end, err := GetPeriodRange("thisMonth")
	if err != nil {
		t.Fatalf("thisMonth: %v", err)
	}
	if start.Day() != 1 || start.Month() != now.Month() {
		t.Fatalf("thisMonth start = %v", start)
	}
	if end.Before(start) {
		t.Fatalf("thisMonth end %v before start %v", end, start)
	}

	start, end, err = GetPeriodRange("previousMonth")
	if err != nil {
		t.Fatalf("previousMonth: %v", err)
	}
	if start.Day() != 1 || !end.Before(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())) {
		t.Fatalf("previousMonth = [%v, %v]", start, end)
	}

	start, end, err = GetPeriodRange("last6months")
	if err != nil {
		t.Fatalf("last6months: %v", err)
	}
	if months := end.Sub(start).Hours() / 24; months < 180 {
		t.Fatalf("last6months span = %v days", months)
	}

	if _, _, err := GetPeriodRange("lastCentury"); err == nil {
		t.Fatal("expected error for unknown filter type")
	}
}

func TestDereferencePtr(t *testing.T) {
	v := 7
	if got := DereferencePtr(&v); got != 7 {
		t.Fatalf("got %d", got)
	}
	if got := DereferencePtr[int](nil); got != 0 {
		t.Fatalf("got %d, want zero value", got)
	}
	if got := DereferencePtr(nil, 42); got != 42 {
		t.Fatalf("got %d, want default 42", got)
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{3, 1, 3, 2, 1})
	if len(got) != 3 {
		t.Fatalf("got %v", got)
	}
}
