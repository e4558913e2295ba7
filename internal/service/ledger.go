package service

import "sync"

// DefaultLedgerCapacity bounds each ledger before it is cleared.
const DefaultLedgerCapacity = 100

// Ledger remembers which reminder occurrences were already delivered during
// this process lifetime. It is not persisted.
//
// Growth is bounded by clearing: when a new key arrives while the set already
// holds more than capacity keys, the whole set is dropped first. Keys embed
// the calendar date, so the only realistic re-fire after a clear is a key for
// the current day.
type Ledger struct {
	mu       sync.Mutex
	capacity int
	keys     map[string]struct{}
}

func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultLedgerCapacity
	}
	return &Ledger{capacity: capacity, keys: make(map[string]struct{})}
}

func (l *Ledger) HasFired(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.keys[key]
	return ok
}

// MarkFired records key. It reports whether the set was cleared to make room.
func (l *Ledger) MarkFired(key string) (cleared bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.keys[key]; ok {
		return false
	}
	if len(l.keys) > l.capacity {
		l.keys = make(map[string]struct{})
		cleared = true
	}
	l.keys[key] = struct{}{}
	return cleared
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}
