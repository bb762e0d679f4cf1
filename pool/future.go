// Package pool implements a static pool of worker goroutines, each driven
// by its own FIFO task queue. Tasks are addressed to a specific worker, so
// a caller can partition work deterministically and rely on per-worker
// execution order. The pool is created lazily at first use with one worker
// per CPU and can be resized at runtime.
package pool

import (
	"github.com/tbellamy/epicycle/errs"
)

// Future holds the eventual result of an enqueued task.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Wait blocks until the task has run. It never reports the outcome.
func (f *Future[T]) Wait() {
	<-f.done
}

// Get blocks until the task has run and returns its result. A task that
// panicked reports an errs.TaskError carrying the recovered value. Get may
// be called any number of times and always reports the same outcome.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

// settle records the outcome and releases the waiters.
func (f *Future[T]) settle(value T, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// FutureList collects futures so that a batch of tasks can be waited on
// and drained as a unit.
type FutureList[T any] struct {
	futures []*Future[T]
}

// PushBack appends a future to the list.
func (l *FutureList[T]) PushBack(f *Future[T]) {
	l.futures = append(l.futures, f)
}

// WaitAll blocks until every task in the list has run, ignoring outcomes.
// Waiting on everything before inspecting any result keeps shared output
// buffers quiescent even when some tasks fail.
func (l *FutureList[T]) WaitAll() {
	for _, f := range l.futures {
		f.Wait()
	}
}

// GetAll drains every future and returns the first error encountered, if
// any. Values are discarded: tasks are expected to deposit their results
// through captured references.
func (l *FutureList[T]) GetAll() error {
	var first error
	for _, f := range l.futures {
		if _, err := f.Get(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// wrapTask builds the nullary closure run by a worker: it executes f,
// converts a panic into an error and settles the future.
func wrapTask[T any](f func() (T, error), fut *Future[T]) func() {
	return func() {
		var (
			value T
			err   error
		)
		defer func() {
			if r := recover(); r != nil {
				err = errs.WrapPanic(r)
			}
			fut.settle(value, err)
		}()
		value, err = f()
	}
}
