package workflow

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/utils"
)

// PersistFunc writes one presence mark to durable storage.
type PersistFunc func(ctx context.Context, memberId int, date time.Time, present bool) error

// PresenceLedger keeps the optimistic in-memory view of presence marks.
// A toggle flips the value immediately, then runs the persist function;
// on failure the flip is rolled back. While a key is in flight a second
// toggle on the same key is rejected instead of queued.
type PresenceLedger struct {
	mu       sync.Mutex
	values   map[string]bool
	inflight map[string]bool
	persist  PersistFunc
}

type ToggleCommand struct {
	MemberId int       `json:"member_id"`
	Date     time.Time `json:"date"`
}

type ToggleResult struct {
	MemberId int       `json:"member_id"`
	Date     time.Time `json:"date"`
	Present  bool      `json:"present"`
}

func NewPresenceLedger(persist PersistFunc) *PresenceLedger {
	return &PresenceLedger{
		values:   map[string]bool{},
		inflight: map[string]bool{},
		persist:  persist,
	}
}

func presenceKey(memberId int, date time.Time) string {
	return date.Format("2006-01-02") + "#" + strconv.Itoa(memberId)
}

// Seed preloads a stored mark. Existing entries win so a late seed can
// never clobber a toggle already applied this session.
func (l *PresenceLedger) Seed(memberId int, date time.Time, present bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := presenceKey(memberId, date)
	if _, ok := l.values[key]; ok {
		return
	}
	l.values[key] = present
}

// Current returns the ledger's view of one mark.
func (l *PresenceLedger) Current(memberId int, date time.Time) (bool, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	value, ok := l.values[presenceKey(memberId, date)]
	return value, ok
}

// Toggle flips one mark optimistically and persists the new value. The
// rolled-back value is returned with the error when persistence fails.
func (l *PresenceLedger) Toggle(ctx context.Context, cmd ToggleCommand) (*ToggleResult, error) {
	key := presenceKey(cmd.MemberId, cmd.Date)

	l.mu.Lock()
	if l.inflight[key] {
		l.mu.Unlock()
		return nil, utils.ErrorToggleInFlight
	}
	previous := l.values[key]
	next := !previous
	l.values[key] = next
	l.inflight[key] = true
	l.mu.Unlock()

	err := l.persist(ctx, cmd.MemberId, cmd.Date, next)

	l.mu.Lock()
	delete(l.inflight, key)
	if err != nil {
		l.values[key] = previous
		l.mu.Unlock()
		return nil, err
	}
	l.mu.Unlock()

	return &ToggleResult{
		MemberId: cmd.MemberId,
		Date:     cmd.Date,
		Present:  next,
	}, nil
}
