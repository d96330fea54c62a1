package calsync

import (
	"testing"
	"time"
)

func TestSyncIntervalDefault(t *testing.T) {
	t.Setenv("CAL_SYNC_INTERVAL_MINUTES", "")
	if got := syncInterval(); got != 30*time.Minute {
		t.Fatalf("got %v, want 30m", got)
	}
}

func TestSyncIntervalFromEnv(t *testing.T) {
	t.Setenv("CAL_SYNC_INTERVAL_MINUTES", "5")
	if got := syncInterval(); got != 5*time.Minute {
		t.Fatalf("got %v, want 5m", got)
	}
}

func TestSyncIntervalIgnoresBadValues(t *testing.T) {
	for _, raw := range []string{"0", "-3", "soon"} {
		t.Setenv("CAL_SYNC_INTERVAL_MINUTES", raw)
		if got := syncInterval(); got != 30*time.Minute {
			t.Fatalf("raw=%q: got %v, want default 30m", raw, got)
		}
	}
}
