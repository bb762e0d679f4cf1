package pool

import (
	"errors"
	"sync"

	"github.com/tbellamy/epicycle/errs"
	"github.com/tbellamy/epicycle/internal/logging"
	"github.com/tbellamy/epicycle/settings"
)

// ErrStopped is reported when a task is enqueued while the pool, or one of
// its queues, is shutting down.
var ErrStopped = errors.New("cannot enqueue task while the task queue is stopping")

// The pool is package-level state, created lazily on first use with
// settings.NumThreads workers and the current binding policy (off by
// default). The policy survives Shutdown.
var (
	mu     sync.Mutex
	queues []*taskQueue
	bind   bool
	booted bool
)

// lockedQueues returns the current queue set, booting the pool if needed.
// Callers must hold mu.
func lockedQueues() []*taskQueue {
	if !booted {
		n := settings.NumThreads()
		queues = makeQueues(n, bind)
		booted = true
		poolSize.Set(float64(n))
		settings.Logger().Info("thread pool initialised", logging.Int("workers", n))
	}
	return queues
}

func makeQueues(n int, bind bool) []*taskQueue {
	qs := make([]*taskQueue, n)
	for i := range qs {
		qs[i] = newTaskQueue(i, bind)
	}
	return qs
}

// Enqueue adds a task to the n-th worker of the pool. Tasks addressed to
// the same worker run sequentially in submission order. The returned
// future reports the task's result or captured panic.
func Enqueue[T any](n int, f func() (T, error)) (*Future[T], error) {
	mu.Lock()
	qs := lockedQueues()
	if n < 0 || n >= len(qs) {
		mu.Unlock()
		return nil, errs.NewInvalidArgument(
			"the thread index %d is out of range, the thread pool contains only %d threads", n, len(qs))
	}
	q := qs[n]
	mu.Unlock()
	fut := newFuture[T]()
	if err := q.push(wrapTask(f, fut)); err != nil {
		return nil, err
	}
	tasksEnqueued.Inc()
	return fut, nil
}

// Size returns the number of workers in the pool.
func Size() int {
	mu.Lock()
	defer mu.Unlock()
	return len(lockedQueues())
}

// Resize changes the pool to contain n workers. The old workers are
// forbidden new tasks, drained of pending ones and joined before the call
// returns; the new workers take over immediately.
func Resize(n int) error {
	if n <= 0 {
		return errs.NewInvalidArgument("cannot resize the thread pool to %d threads", n)
	}
	mu.Lock()
	lockedQueues()
	old := queues
	queues = makeQueues(n, bind)
	mu.Unlock()
	for _, q := range old {
		q.stop()
	}
	poolSize.Set(float64(n))
	poolResizes.Inc()
	settings.Logger().Info("thread pool resized", logging.Int("workers", n))
	return nil
}

// SetBinding sets the CPU binding policy. With binding enabled each worker
// is pinned to a distinct CPU; binding errors are ignored. Changing the
// policy rebuilds the pool the same way Resize does.
func SetBinding(flag bool) {
	mu.Lock()
	lockedQueues()
	if flag == bind {
		mu.Unlock()
		return
	}
	bind = flag
	old := queues
	queues = makeQueues(len(old), bind)
	mu.Unlock()
	for _, q := range old {
		q.stop()
	}
}

// Binding returns the active CPU binding policy.
func Binding() bool {
	mu.Lock()
	defer mu.Unlock()
	return bind
}

// Shutdown stops and joins all workers. Subsequent use of the pool boots a
// fresh one. Intended for program teardown and tests.
func Shutdown() {
	mu.Lock()
	old := queues
	queues = nil
	booted = false
	mu.Unlock()
	for _, q := range old {
		q.stop()
	}
}

// UseThreads suggests how many pool workers to use for workSize units of
// work, so that each worker gets at least minWorkPerThread units. The
// suggestion is always at least one and never exceeds the pool size.
func UseThreads(workSize, minWorkPerThread int) (int, error) {
	if workSize <= 0 {
		return 0, errs.NewInvalidArgument(
			"invalid value of %d for work size (it must be strictly positive)", workSize)
	}
	if minWorkPerThread <= 0 {
		return 0, errs.NewInvalidArgument(
			"invalid value of %d for minimum work per thread (it must be strictly positive)", minWorkPerThread)
	}
	n := Size()
	if workSize/n >= minWorkPerThread {
		return n, nil
	}
	return max(1, workSize/minWorkPerThread), nil
}
