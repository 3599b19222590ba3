// Package fanout runs independent upstream calls concurrently and reports a
// per-branch result instead of failing the whole batch. One slow or broken
// provider never takes the request down with it
package fanout

import (
	"context"
	"fmt"
)

// Result wraps one branch outcome
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) OK() bool { return r.Err == nil }

// Gather runs every branch in its own goroutine and waits for all of them.
// A panic inside a branch is converted into that branch's error; siblings keep
// running. Results are returned in branch order
func Gather[T any](ctx context.Context, branches ...func(ctx context.Context) (T, error)) []Result[T] {
	results := make([]Result[T], len(branches))
	done := make(chan struct{}, len(branches))

	for i, fn := range branches {
		go func(i int, fn func(ctx context.Context) (T, error)) {
			defer func() {
				if rec := recover(); rec != nil {
					results[i].Err = fmt.Errorf("branch %d panicked: %v", i, rec)
				}
				done <- struct{}{}
			}()
			results[i].Value, results[i].Err = fn(ctx)
		}(i, fn)
	}

	for range branches {
		<-done
	}
	return results
}

// First tries branches in order and returns the first success; used for
// primary-then-fallback provider chains. All errors are joined when every
// branch fails
func First[T any](ctx context.Context, branches ...func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for _, fn := range branches {
		v, err := func() (v T, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("branch panicked: %v", rec)
				}
			}()
			return fn(ctx)
		}()
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no branches provided")
	}
	return zero, lastErr
}
