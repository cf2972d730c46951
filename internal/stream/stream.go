// Package stream implements the bounded-concurrency, completion-order
// fan-out primitive shared by the resolver group and the WHOIS client:
// at most n tasks in flight, results yielded as they complete rather
// than in submission order, with an optional breaker predicate that
// stops pulling further upstream work once a yielded item satisfies
// it.
package stream

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task produces one item, or an error if the task itself failed to run
// (as opposed to the item representing a failed outcome: callers that
// want all errors captured as outcomes, never aborting siblings, should
// make Task's own error return always nil and encode failure inside T).
type Task[T any] func(ctx context.Context) (T, error)

// Breaker reports whether a yielded item should stop the stream from
// pulling any further upstream tasks. A nil Breaker never stops early.
type Breaker[T any] func(item T) bool

// Run drives tasks with at most n concurrently in flight, sends each
// completed result to the returned channel in completion order, and
// closes it once all tasks have completed, the breaker fires, or ctx is
// cancelled. Cancelling ctx aborts all in-flight tasks.
//
// The first non-nil error returned by a Task aborts the whole stream
// (the construction-time failure path; per-query failures are encoded
// inside T instead).
func Run[T any](ctx context.Context, n int, tasks []Task[T], breaker Breaker[T]) (<-chan T, *errgroup.Group) {
	out := make(chan T)
	g, gctx := errgroup.WithContext(ctx)
	if n > 0 {
		g.SetLimit(n)
	}

	stop := make(chan struct{})
	var stopOnce sync.Once
	trip := func() { stopOnce.Do(func() { close(stop) }) }

	go func() {
		// Wait for in-flight tasks before closing out: a task that
		// completes after the breaker trips still holds a send on out,
		// and closing early would turn that send into a panic.
		defer close(out)
		defer func() { _ = g.Wait() }()
		for _, task := range tasks {
			select {
			case <-stop:
				return
			case <-gctx.Done():
				return
			default:
			}
			task := task
			g.Go(func() error {
				select {
				case <-stop:
					return nil
				default:
				}
				item, err := task(gctx)
				if err != nil {
					return err
				}
				select {
				case out <- item:
				case <-gctx.Done():
					return nil
				}
				if breaker != nil && breaker(item) {
					trip()
				}
				return nil
			})
		}
	}()

	return out, g
}

// Collect runs tasks to completion and returns every yielded item in
// completion order, along with the first task error (if any), or ctx's
// error when cancellation stopped the stream before every task yielded.
// It is the non-streaming convenience wrapper most call sites want.
func Collect[T any](ctx context.Context, n int, tasks []Task[T], breaker Breaker[T]) ([]T, error) {
	out, g := Run(ctx, n, tasks, breaker)
	items := make([]T, 0, len(tasks))
	for item := range out {
		items = append(items, item)
	}
	err := g.Wait()
	if err == nil && len(items) < len(tasks) {
		err = ctx.Err()
	}
	return items, err
}
