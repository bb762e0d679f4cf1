// Package taskgroup runs ad-hoc groups of tasks on dedicated goroutines,
// outside the worker pool. Each task's failure is retained individually, so
// the group can be waited on without losing errors and inspected any number
// of times. A Group must not be copied after first use.
package taskgroup

import (
	"sync"

	"github.com/tbellamy/epicycle/errs"
)

// future retains the outcome of one task.
type future struct {
	done chan struct{}
	err  error
}

// Group is a collection of tasks, each running on its own goroutine.
// Adding tasks is not safe for concurrent use; waiting and inspecting are.
type Group struct {
	mu      sync.Mutex
	futures []*future
}

// Add spawns fn on a new goroutine. The task's returned error, or a
// recovered panic converted to an errs.TaskError, is retained for Err.
func (g *Group) Add(fn func() error) {
	f := &future{done: make(chan struct{})}
	g.mu.Lock()
	g.futures = append(g.futures, f)
	g.mu.Unlock()
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = errs.WrapPanic(r)
			}
		}()
		f.err = fn()
	}()
}

// Size returns the number of tasks added so far.
func (g *Group) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.futures)
}

// Wait blocks until every task has finished. It never reports errors and
// may be called any number of times, including concurrently with Err.
func (g *Group) Wait() {
	for _, f := range g.snapshot() {
		<-f.done
	}
}

// Err waits for every task and returns the first retained error, if any.
// The retained errors survive the call: Err reports the same outcome every
// time it is invoked.
func (g *Group) Err() error {
	var first error
	for _, f := range g.snapshot() {
		<-f.done
		if f.err != nil && first == nil {
			first = f.err
		}
	}
	return first
}

// Errs waits for every task and returns all retained errors in task
// submission order.
func (g *Group) Errs() []error {
	var out []error
	for _, f := range g.snapshot() {
		<-f.done
		if f.err != nil {
			out = append(out, f.err)
		}
	}
	return out
}

func (g *Group) snapshot() []*future {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.futures[:len(g.futures):len(g.futures)]
}
