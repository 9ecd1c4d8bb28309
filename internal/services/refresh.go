package services

import (
	"context"
	"sync"
	"time"

	"platescout/internal/logging"
)

// refresher launches refresh-after-serve tasks. Each task runs detached
// from the caller's context: the caller has already been answered from
// local data, so cancelling the caller must not cancel the refresh. A
// per-task timeout bounds how long a refresh may hold resources.
type refresher struct {
	log     logging.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func newRefresher(log logging.Logger, timeout time.Duration) *refresher {
	return &refresher{log: log, timeout: timeout}
}

// Go runs fn in the background under a fresh, timeout-bounded context.
// Failures are logged and otherwise invisible; the data already served
// locally remains valid.
func (r *refresher) Go(task string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.log.Warn(ctx, "background refresh failed", "task", task, "error", err)
		}
	}()
}

// Wait blocks until every task launched so far has returned.
func (r *refresher) Wait() {
	r.wg.Wait()
}
