package app

import "sync"

// RequestTracker hands out increasing tokens so that a fetch result can be
// dropped when a newer request was issued while it was in flight.
type RequestTracker struct {
	mu     sync.Mutex
	latest uint64
}

// Begin issues a token and supersedes every earlier one.
func (t *RequestTracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest++
	return t.latest
}

// IsCurrent reports whether token is still the latest issued.
func (t *RequestTracker) IsCurrent(token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return token == t.latest
}

// Cancel supersedes every outstanding token without issuing a usable one.
func (t *RequestTracker) Cancel() {
	t.Begin()
}
