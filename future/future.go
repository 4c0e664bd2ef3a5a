// Package future implements a single-assignment result cell with
// completion callbacks (spec.md §3, §4.2), plus Coroutine/AwaitOn/
// RunCoroutine, the coroutine-driver primitives plugins use to suspend on a
// Future (spec.md §4.3; see coroutine.go).
//
// Futures are not safe for concurrent use by multiple goroutines racing to
// complete or read the same Future. The engine/controller/cache are
// single-threaded and cooperative by design (spec.md §5); the coroutine
// driver's own goroutine use is an implementation detail for expressing
// suspension in Go (see SPEC_FULL.md §4.3), not a concurrency feature of
// Future itself.
package future

// OnCallbackPanic, if non-nil, is invoked with the recovered panic value
// whenever a done callback panics. It mirrors the teacher's package-level
// logging seam (eventloop.SetStructuredLogger) for a cross-cutting concern
// that every Future instance shares; callers typically set this once at
// startup to route the value into the problog logger.
var OnCallbackPanic func(recovered any)

type state int

const (
	pending state = iota
	fulfilled
	failed
)

// Future is a single-assignment cell that eventually holds either a result
// of type T or a failure. SetResult and SetFailure are each legal only while
// pending; both transitions are one-way and run every queued callback in
// registration order.
type Future[T any] struct {
	st        state
	value     T
	err       error
	callbacks []func(*Future[T])
}

// New returns a pending Future.
func New[T any]() *Future[T] {
	return &Future[T]{}
}

// Completed returns an already-fulfilled Future holding v.
func Completed[T any](v T) *Future[T] {
	f := New[T]()
	f.SetResult(v)
	return f
}

// Failed returns an already-failed Future holding err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	f.SetFailure(err)
	return f
}

// Done reports whether the Future has transitioned out of pending.
func (f *Future[T]) Done() bool {
	return f.st != pending
}

// SetResult fulfills the Future with v. Panics if the Future is not
// pending.
func (f *Future[T]) SetResult(v T) {
	if f.st != pending {
		panic("future: SetResult on non-pending Future")
	}
	f.value = v
	f.st = fulfilled
	f.runCallbacks()
}

// SetFailure fails the Future with err. Panics if the Future is not
// pending, or if err is nil.
func (f *Future[T]) SetFailure(err error) {
	if f.st != pending {
		panic("future: SetFailure on non-pending Future")
	}
	if err == nil {
		panic("future: SetFailure with nil error")
	}
	f.err = err
	f.st = failed
	f.runCallbacks()
}

// Result returns the fulfillment value. Only defined once Done() is true
// and the Future was fulfilled, not failed.
func (f *Future[T]) Result() T {
	if f.st != fulfilled {
		panic("future: Result on a Future that is not fulfilled")
	}
	return f.value
}

// Failure returns the failure reason. Only defined once Done() is true and
// the Future failed.
func (f *Future[T]) Failure() error {
	if f.st != failed {
		panic("future: Failure on a Future that did not fail")
	}
	return f.err
}

// Outcome returns (value, nil) if fulfilled, or (zero, err) if failed.
// Panics if the Future is still pending.
func (f *Future[T]) Outcome() (T, error) {
	switch f.st {
	case fulfilled:
		return f.value, nil
	case failed:
		var zero T
		return zero, f.err
	default:
		panic("future: Outcome on a pending Future")
	}
}

// AddDoneCallback registers cb to run once the Future becomes terminal. If
// the Future is already terminal, cb runs immediately and synchronously.
// This synchronous-on-done rule is load-bearing: AwaitOn relies on it to
// resume suspended plugins without an extra scheduling round-trip.
//
// A callback that panics is recovered and dropped; remaining callbacks
// still run, mirroring the original's "swallow exception from callback and
// keep going" behavior (see nssct/future.py Future._run_callbacks).
func (f *Future[T]) AddDoneCallback(cb func(*Future[T])) {
	if f.st != pending {
		f.invoke(cb)
		return
	}
	f.callbacks = append(f.callbacks, cb)
}

func (f *Future[T]) runCallbacks() {
	cbs := f.callbacks
	f.callbacks = nil
	for _, cb := range cbs {
		f.invoke(cb)
	}
}

func (f *Future[T]) invoke(cb func(*Future[T])) {
	defer func() {
		if r := recover(); r != nil && OnCallbackPanic != nil {
			// swallow: a misbehaving callback must not prevent the
			// remaining callbacks (or the caller) from observing
			// completion.
			OnCallbackPanic(r)
		}
	}()
	cb(f)
}
