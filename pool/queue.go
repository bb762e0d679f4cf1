package pool

import (
	"runtime"
	"sync"

	"github.com/tbellamy/epicycle/internal/logging"
	"github.com/tbellamy/epicycle/settings"
)

// taskQueue is a FIFO of pending tasks consumed by a single worker
// goroutine. Inspired by https://github.com/progschj/ThreadPool.
type taskQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	stopped bool
	tasks   []func()
	// binding policy the worker was started with
	bound bool
	// closed when the worker goroutine exits
	done chan struct{}
}

// newTaskQueue spawns the worker for queue n. With bind set, the worker
// wires itself to an OS thread and asks the scheduler to keep that thread
// on CPU n; failures to bind are logged and ignored.
func newTaskQueue(n int, bind bool) *taskQueue {
	q := &taskQueue{bound: bind, done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run(n, bind)
	return q
}

func (q *taskQueue) run(n int, bind bool) {
	defer close(q.done)
	if bind {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := bindToCPU(n); err != nil {
			// Don't stop if we cannot bind.
			settings.Logger().Debug("could not bind worker to cpu",
				logging.Int("worker", n), logging.Err(err))
		}
	}
	for {
		q.mu.Lock()
		for !q.stopped && len(q.tasks) == 0 {
			q.cond.Wait()
		}
		if q.stopped && len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()
		task()
	}
}

// push appends a task. It fails once the queue has been stopped.
func (q *taskQueue) push(task func()) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return ErrStopped
	}
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
	q.cond.Signal()
	return nil
}

// stop forbids further pushes, waits for the worker to drain the pending
// tasks and exit. It is idempotent.
func (q *taskQueue) stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.stopped = true
	q.mu.Unlock()
	q.cond.Signal()
	<-q.done
}
