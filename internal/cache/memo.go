package cache

import "sync"

// Memo is a process-lifetime memoization map. Entries are populated on first
// successful computation and never evicted.
type Memo[V any] struct {
	mu      sync.Mutex
	entries map[string]V
}

// NewMemo returns an empty memo.
func NewMemo[V any]() *Memo[V] {
	return &Memo[V]{entries: make(map[string]V)}
}

// Do returns the memoized value for key or computes it with fn. A failed
// computation is returned to the caller and not stored, so the next call
// tries again. The lock is held while fn runs; callers are expected to run
// one operation at a time.
func (m *Memo[V]) Do(key string, fn func() (V, error)) (V, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]V)
	}
	if v, ok := m.entries[key]; ok {
		return v, true, nil
	}
	v, err := fn()
	if err != nil {
		var zero V
		return zero, false, err
	}
	m.entries[key] = v
	return v, false, nil
}

