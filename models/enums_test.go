package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMyDateStringUnmarshal(t *testing.T) {
	var d MyDateString
	if err := json.Unmarshal([]byte(`"2024-03-09"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	if !d.Time().Equal(want) {
		t.Fatalf("got %v, want %v", d.Time(), want)
	}
}

func TestMyDateStringUnmarshalNull(t *testing.T) {
	var d MyDateString
	if err := json.Unmarshal([]byte(`null`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.IsZero() {
		t.Fatalf("expected zero date, got %v", d.Time())
	}
}

func TestMyDateStringUnmarshalRejectsGarbage(t *testing.T) {
	var d MyDateString
	if err := json.Unmarshal([]byte(`"09/03/2024"`), &d); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}

func TestMyDateStringMarshalRoundTrip(t *testing.T) {
	d := MyDateString(time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC))
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-03-09"` {
		t.Fatalf("got %s", b)
	}
}

func TestInsightSeverityRank(t *testing.T) {
	if InsightSeverityCritical.Rank() >= InsightSeverityWarning.Rank() {
		t.Fatal("critical must sort before warning")
	}
	if InsightSeverityWarning.Rank() >= InsightSeverityInfo.Rank() {
		t.Fatal("warning must sort before info")
	}
	if InsightSeverity("bogus").Rank() <= InsightSeverityInfo.Rank() {
		t.Fatal("unknown severities sort last")
	}
}

func TestParseSubscriptionMode(t *testing.T) {
	mode, err := ParseSubscriptionMode("calendar_month")
	if err != nil || mode != SubscriptionModeCalendarMonth {
		t.Fatalf("got %v, %v", mode, err)
	}
	if _, err := ParseSubscriptionMode("weekly"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestParseCalendarEventTypeRejectsUnknown(t *testing.T) {
	if _, err := ParseCalendarEventType("party"); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}
