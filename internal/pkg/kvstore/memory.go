package kvstore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

type clocker interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type memoryItem struct {
	value     string
	expiresAt time.Time
}

func (it memoryItem) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && !now.Before(it.expiresAt)
}

// MemoryOption customizes a Memory store.
type MemoryOption func(*Memory)

// WithClock replaces the time source used for expiry.
func WithClock(c clocker) MemoryOption {
	return func(m *Memory) { m.clock = c }
}

// WithJanitor sets how often expired keys are swept. Zero disables the sweep;
// expired keys are still hidden on read.
func WithJanitor(interval time.Duration) MemoryOption {
	return func(m *Memory) { m.janitor = interval }
}

// Memory is an in-process Store. Data is lost on restart and is not shared
// between replicas.
type Memory struct {
	mu      sync.Mutex
	items   map[string]memoryItem
	clock   clocker
	janitor time.Duration
	closed  *atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// NewMemory returns an empty Memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items:   make(map[string]memoryItem),
		clock:   systemClock{},
		janitor: time.Minute,
		closed:  atomic.NewBool(false),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.janitor > 0 {
		go m.sweepLoop()
	} else {
		close(m.done)
	}

	return m
}

func (m *Memory) sweepLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.janitor)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	for k, it := range m.items {
		if it.expired(now) {
			delete(m.items, k)
		}
	}
}

func (m *Memory) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.clock.Now().Add(ttl)
}

// lookup must be called with mu held.
func (m *Memory) lookup(key string) (memoryItem, bool) {
	it, ok := m.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if it.expired(m.clock.Now()) {
		delete(m.items, key)
		return memoryItem{}, false
	}
	return it, true
}

func (m *Memory) check(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := m.check(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = memoryItem{value: value, expiresAt: m.deadline(ttl)}
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	if err := m.check(ctx); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.lookup(key)
	if !ok {
		return "", ErrNotFound
	}
	return it.value, nil
}

func (m *Memory) Delete(ctx context.Context, keys ...string) error {
	if err := m.check(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *Memory) Incr(ctx context.Context, key string) (int64, error) {
	if err := m.check(ctx); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.lookup(key)
	if !ok {
		m.items[key] = memoryItem{value: "1"}
		return 1, nil
	}

	n, err := strconv.ParseInt(it.value, 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}

	n++
	it.value = strconv.FormatInt(n, 10)
	m.items[key] = it
	return n, nil
}

func (m *Memory) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := m.check(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.lookup(key)
	if !ok {
		return nil
	}
	if ttl <= 0 {
		delete(m.items, key)
		return nil
	}

	it.expiresAt = m.deadline(ttl)
	m.items[key] = it
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	if err := m.check(ctx); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.lookup(key)
	return ok, nil
}

func (m *Memory) Write(ctx context.Context, b Batch) error {
	if err := m.check(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range b.Sets {
		m.items[e.Key] = memoryItem{value: e.Value, expiresAt: m.deadline(e.TTL)}
	}
	for _, k := range b.Deletes {
		delete(m.items, k)
	}
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return m.check(ctx)
}

// Close stops the janitor. Further calls fail with ErrClosed.
func (m *Memory) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(m.stop)
	<-m.done
	return nil
}
