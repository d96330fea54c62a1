package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/utils"
)

func TestToggleFlipsAndPersists(t *testing.T) {
	var persisted []bool
	ledger := NewPresenceLedger(func(ctx context.Context, memberId int, d time.Time, present bool) error {
		persisted = append(persisted, present)
		return nil
	})

	day := date(2024, time.March, 5)
	result, err := ledger.Toggle(context.Background(), ToggleCommand{MemberId: 7, Date: day})
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !result.Present {
		t.Fatal("first toggle of an unmarked key should turn present on")
	}
	result, err = ledger.Toggle(context.Background(), ToggleCommand{MemberId: 7, Date: day})
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if result.Present {
		t.Fatal("second toggle should turn present off")
	}
	if len(persisted) != 2 || persisted[0] != true || persisted[1] != false {
		t.Fatalf("persist calls = %v, want [true false]", persisted)
	}
}

func TestToggleRollsBackOnPersistFailure(t *testing.T) {
	boom := errors.New("storage down")
	ledger := NewPresenceLedger(func(ctx context.Context, memberId int, d time.Time, present bool) error {
		return boom
	})

	day := date(2024, time.March, 5)
	ledger.Seed(7, day, true)

	if _, err := ledger.Toggle(context.Background(), ToggleCommand{MemberId: 7, Date: day}); !errors.Is(err, boom) {
		t.Fatalf("expected persist error, got %v", err)
	}
	value, ok := ledger.Current(7, day)
	if !ok || !value {
		t.Fatalf("failed toggle must restore the prior value, got (%v, %v)", value, ok)
	}
}

func TestToggleRejectsSecondInFlight(t *testing.T) {
	persistEntered := make(chan struct{})
	release := make(chan struct{})
	ledger := NewPresenceLedger(func(ctx context.Context, memberId int, d time.Time, present bool) error {
		close(persistEntered)
		<-release
		return nil
	})

	day := date(2024, time.March, 5)
	done := make(chan error, 1)
	go func() {
		_, err := ledger.Toggle(context.Background(), ToggleCommand{MemberId: 7, Date: day})
		done <- err
	}()

	<-persistEntered
	if _, err := ledger.Toggle(context.Background(), ToggleCommand{MemberId: 7, Date: day}); !errors.Is(err, utils.ErrorToggleInFlight) {
		t.Fatalf("expected in-flight rejection, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first toggle should succeed, got %v", err)
	}
}

func TestToggleDistinctKeysDoNotBlock(t *testing.T) {
	ledger := NewPresenceLedger(func(ctx context.Context, memberId int, d time.Time, present bool) error {
		return nil
	})

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			day := date(2024, time.March, 1+i%28)
			_, err := ledger.Toggle(context.Background(), ToggleCommand{MemberId: i, Date: day})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("distinct keys should never reject, got %v", err)
		}
	}
}

func TestSeedNeverClobbersExistingEntry(t *testing.T) {
	ledger := NewPresenceLedger(func(ctx context.Context, memberId int, d time.Time, present bool) error {
		return nil
	})

	day := date(2024, time.March, 5)
	if _, err := ledger.Toggle(context.Background(), ToggleCommand{MemberId: 7, Date: day}); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	// a seed arriving after the toggle must not overwrite it
	ledger.Seed(7, day, false)
	if value, _ := ledger.Current(7, day); !value {
		t.Fatal("late seed overwrote a toggled value")
	}
}
