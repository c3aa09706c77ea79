package kvstore

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key is absent or expired.
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrNotInteger is returned by Incr when the stored value is not an integer.
	ErrNotInteger = errors.New("kvstore: value is not an integer")

	// ErrClosed is returned once the store has been closed.
	ErrClosed = errors.New("kvstore: store closed")

	// ErrUnknownDriver is returned by the factory for an unsupported driver name.
	ErrUnknownDriver = errors.New("kvstore: unknown driver")
)

// Entry is a single value written with a time-to-live. A zero TTL keeps the
// key until it is deleted.
type Entry struct {
	Key   string
	Value string
	TTL   time.Duration
}

// Batch groups writes that must become visible together.
type Batch struct {
	Sets    []Entry
	Deletes []string
}

// Store is the contract shared by every driver.
type Store interface {
	io.Closer

	// Set stores value under key, replacing any previous value and TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Delete removes the keys; missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically adds one to the integer under key, creating it at 1.
	// An existing TTL is kept.
	Incr(ctx context.Context, key string) (int64, error)
	// Expire sets a TTL on an existing key. It is a no-op for missing keys.
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// Exists reports whether key is present and not expired.
	Exists(ctx context.Context, key string) (bool, error)
	// Write applies every set and delete of b as one atomic step.
	Write(ctx context.Context, b Batch) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}
