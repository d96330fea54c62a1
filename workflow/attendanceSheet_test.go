package workflow

import (
	"testing"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/models"
)

func TestAnnotateSheetTogglability(t *testing.T) {
	periods := []SubscriptionPeriod{
		{StartDate: date(2024, time.March, 5), EndDate: datePtr(2024, time.March, 20)},
	}
	dates := []time.Time{
		date(2024, time.March, 2),  // before the period
		date(2024, time.March, 9),  // inside
		date(2024, time.March, 23), // after
	}

	entries := AnnotateSheet(dates, periods, false, date(2024, time.March, 15), nil)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Status != models.EligibilityStatusNotSubscribed || entries[0].Togglable {
		t.Fatalf("pre-period date should be not_subscribed and locked, got %+v", entries[0])
	}
	if entries[1].Status != models.EligibilityStatusActive || !entries[1].Togglable {
		t.Fatalf("in-period date should be active and togglable, got %+v", entries[1])
	}
	if entries[2].Status != models.EligibilityStatusExpired || entries[2].Togglable {
		t.Fatalf("post-period date should be expired and locked, got %+v", entries[2])
	}
}

func TestAnnotateSheetPausedFreezesPresentAndFuture(t *testing.T) {
	periods := []SubscriptionPeriod{
		{StartDate: date(2024, time.March, 1), EndDate: datePtr(2024, time.March, 31)},
	}
	dates := []time.Time{
		date(2024, time.March, 9),  // past
		date(2024, time.March, 15), // today
		date(2024, time.March, 23), // future
	}

	entries := AnnotateSheet(dates, periods, true, date(2024, time.March, 15), nil)
	if !entries[0].Togglable {
		t.Fatal("pause must not lock past dates")
	}
	if entries[1].Togglable || entries[2].Togglable {
		t.Fatal("pause must lock today and future dates")
	}
}

func TestAnnotateSheetCarriesStoredPresence(t *testing.T) {
	periods := []SubscriptionPeriod{
		{StartDate: date(2024, time.March, 1), EndDate: datePtr(2024, time.March, 31)},
	}
	dates := []time.Time{
		date(2024, time.March, 2),
		date(2024, time.March, 5),
	}
	presence := map[string]bool{"2024-03-02": true}

	entries := AnnotateSheet(dates, periods, false, date(2024, time.March, 15), presence)
	if entries[0].Present == nil || !*entries[0].Present {
		t.Fatalf("stored mark should surface, got %v", entries[0].Present)
	}
	if entries[1].Present != nil {
		t.Fatalf("unmarked date should stay nil, got %v", entries[1].Present)
	}
}
