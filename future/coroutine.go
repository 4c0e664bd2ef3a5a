package future

// Coroutine is a handle a suspendable plugin body uses to await Futures
// (spec.md §4.3's "GeneratedFuture"). A plugin body runs on its own
// goroutine, started by RunCoroutine, and suspends only by calling
// AwaitOn(co, f): this hands control back to whichever goroutine is driving
// the awaited Future to completion, and blocks until that goroutine resumes
// it. Exactly one of {the driver, the plugin body} is ever doing unblocked
// work at a time — see SPEC_FULL.md §4.3 for why this preserves the
// single-threaded cooperative contract of spec.md §5 despite using real
// goroutines as the suspension mechanism.
type Coroutine struct {
	yield  chan registerFn
	resume chan resumeMsg
}

// registerFn is produced by a suspension point: it is handed the driver's
// notify callback and is responsible for arranging for notify to be called
// exactly once, with the awaited Future's eventual outcome.
type registerFn func(notify func(value any, err error))

type resumeMsg struct {
	value any
	err   error
}

// AwaitOn suspends the coroutine co is driving until f becomes terminal,
// then returns f's outcome. Must only be called from within the function
// passed to RunCoroutine that produced co.
func AwaitOn[T any](co *Coroutine, f *Future[T]) (T, error) {
	co.yield <- func(notify func(value any, err error)) {
		f.AddDoneCallback(func(f *Future[T]) {
			v, err := f.Outcome()
			notify(v, err)
		})
	}
	res := <-co.resume
	if res.err != nil {
		var zero T
		return zero, res.err
	}
	return res.value.(T), nil
}

// RunCoroutine starts body on a dedicated goroutine and returns a Future
// that is fulfilled when body returns nil, or fails with body's returned
// error (or a recovered panic). RunCoroutine drives body synchronously up
// to its first suspension point or return before returning itself, matching
// the synchronous "invoke immediately, capture immediate failure" behavior
// spec.md §4.5 describes for Controller.StartPlugin. Thereafter, the
// returned outer Future advances only as awaited Futures complete.
func RunCoroutine(body func(co *Coroutine) error) *Future[struct{}] {
	outer := New[struct{}]()
	co := &Coroutine{
		yield:  make(chan registerFn),
		resume: make(chan resumeMsg),
	}

	type finish struct {
		err error
	}
	finishedCh := make(chan finish, 1)

	go func() {
		var result finish
		func() {
			defer func() {
				if r := recover(); r != nil {
					result.err = panicError{value: r}
				}
			}()
			result.err = body(co)
		}()
		finishedCh <- result
		close(co.yield)
	}()

	var pump func()
	pump = func() {
		req, ok := <-co.yield
		if !ok {
			f := <-finishedCh
			if f.err != nil {
				outer.SetFailure(f.err)
			} else {
				outer.SetResult(struct{}{})
			}
			return
		}
		req(func(value any, err error) {
			co.resume <- resumeMsg{value: value, err: err}
			pump()
		})
	}
	pump()

	return outer
}

// panicError wraps a recovered panic value as an error, for coroutine
// bodies that panic instead of returning an error.
type panicError struct {
	value any
}

func (p panicError) Error() string {
	return "future: coroutine panicked: " + errString(p.value)
}

func errString(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "non-error panic value"
}
