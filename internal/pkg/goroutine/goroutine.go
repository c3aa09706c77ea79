// Package goroutine runs fire-and-forget background work, such as audit
// event publishing, with bounded concurrency and panic recovery.
package goroutine

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/memberauth/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used per CPU when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// Manager runs functions in goroutines with a configurable concurrency limit.
//
// Tasks outlive the request that scheduled them: they receive a context that
// keeps the caller's values but not its cancellation. Task errors and panics
// are logged, not returned.
type Manager struct {
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go schedules f under the given task name. It returns false when the
// manager is closed or at capacity, in which case f never runs.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(ctx, "goroutine manager is closed, task skipped", "task", name)
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "goroutine limit reached, task skipped", "task", name)
		return false
	}

	taskCtx := context.WithoutCancel(ctx)
	g.wg.Go(func() {
		defer func() {
			<-g.sema

			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(taskCtx, "panic occurred in goroutine", "task", name, "panic", rvr, "stack", paths)
					return
				}
				slog.ErrorContext(taskCtx, "panic occurred in goroutine", "task", name, "panic", rvr, "stack", string(stack))
			}
		}()

		if err := f(taskCtx); err != nil {
			slog.ErrorContext(taskCtx, "background task failed", "task", name, "error", err)
		}
	})

	return true
}

// Wait stops accepting tasks and blocks until running ones finish or ctx is done.
func (g *Manager) Wait(ctx context.Context) error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
