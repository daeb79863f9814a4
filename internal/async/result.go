// Package async provides the discriminated result type used by all
// asynchronous gateway operations: loading -> (success | error).
package async

import "context"

// State is the phase of an asynchronous operation.
type State int

const (
	// StateLoading means the operation has started but not completed.
	StateLoading State = iota
	// StateFailed means the operation completed with an error.
	StateFailed
	// StateLoaded means the operation completed successfully.
	StateLoaded
)

// Result is the discriminated outcome of an asynchronous operation.
// Exactly one of Value or Err is meaningful, selected by State.
type Result[T any] struct {
	State State
	Value T
	Err   error
}

// Loading returns a result in the loading state.
func Loading[T any]() Result[T] {
	return Result[T]{State: StateLoading}
}

// Failure returns a failed result carrying err.
func Failure[T any](err error) Result[T] {
	return Result[T]{State: StateFailed, Err: err}
}

// Success returns a loaded result carrying v.
func Success[T any](v T) Result[T] {
	return Result[T]{State: StateLoaded, Value: v}
}

// Terminal reports whether the result is a final state.
func (r Result[T]) Terminal() bool {
	return r.State != StateLoading
}

// Unwrap returns the value and error of a terminal result.
func (r Result[T]) Unwrap() (T, error) {
	return r.Value, r.Err
}

// Run executes fn on its own goroutine and returns a channel that yields
// a loading result immediately, then exactly one terminal result, then
// closes. The channel is buffered, so the caller never blocks the worker.
//
// Dependent operations must be serialized by the caller: start the next
// Run only after the previous terminal result arrived. Independent
// operations may be in flight concurrently.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 2)
	out <- Loading[T]()

	go func() {
		defer close(out)

		if err := ctx.Err(); err != nil {
			out <- Failure[T](err)
			return
		}

		v, err := fn(ctx)
		if err != nil {
			out <- Failure[T](err)
			return
		}
		out <- Success(v)
	}()

	return out
}

// Await drains a result channel and returns its terminal result.
func Await[T any](ch <-chan Result[T]) Result[T] {
	var last Result[T]
	for r := range ch {
		last = r
	}
	return last
}
