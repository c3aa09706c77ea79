package clock

import (
	"sync"
	"time"
)

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
}

// TimeClocker is the production clock implementation backed by time.Now.
type TimeClocker struct{}

// New returns a TimeClocker that reads the current system time.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// FixedClocker always reports the same instant until it is moved.
type FixedClocker struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixed returns a FixedClocker pinned at t.
func NewFixed(t time.Time) *FixedClocker {
	return &FixedClocker{now: t}
}

// Now returns the pinned instant.
func (f *FixedClocker) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Advance moves the pinned instant forward by d.
func (f *FixedClocker) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
