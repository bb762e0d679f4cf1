// Package cvector provides a concurrent-initialisation vector: a slice
// wrapper whose bulk operations (construction, copy, resize) run their
// element work in parallel when the vector is large enough to justify it.
// The split policy comes from the settings package: work is divided among
// settings.NumThreads goroutines only when each would receive at least
// settings.MinWorkPerThread elements.
//
// Allocation is pluggable so embedders can recycle backing arrays through
// a pool when vectors of the same size class are built repeatedly.
package cvector

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tbellamy/epicycle/errs"
	"github.com/tbellamy/epicycle/settings"
)

// Allocator supplies and recycles backing slices.
type Allocator[T any] interface {
	// Allocate returns a slice of length n. Contents may be stale when the
	// slice comes from a recycling pool; the vector overwrites every
	// element it exposes.
	Allocate(n int) []T
	// Release returns a slice to the allocator.
	Release(s []T)
}

// HeapAllocator allocates from the garbage-collected heap and recycles
// nothing. It is the default.
type HeapAllocator[T any] struct{}

func (HeapAllocator[T]) Allocate(n int) []T { return make([]T, n) }
func (HeapAllocator[T]) Release([]T)        {}

// PoolAllocator recycles backing slices through a sync.Pool. Released
// slices are reused by later allocations of equal or smaller length.
type PoolAllocator[T any] struct {
	pool sync.Pool
}

func (p *PoolAllocator[T]) Allocate(n int) []T {
	if v := p.pool.Get(); v != nil {
		if s := v.([]T); cap(s) >= n {
			return s[:n]
		}
	}
	return make([]T, n)
}

func (p *PoolAllocator[T]) Release(s []T) {
	if cap(s) > 0 {
		p.pool.Put(s[:0])
	}
}

// Vector is a slice with parallel bulk operations. The zero value is an
// empty vector using the heap allocator. Element access is not
// synchronised; bulk operations must not overlap with other access.
type Vector[T any] struct {
	data  []T
	alloc Allocator[T]
}

// Option configures a Vector at construction.
type Option[T any] func(*Vector[T])

// WithAllocator installs a custom allocator.
func WithAllocator[T any](a Allocator[T]) Option[T] {
	return func(v *Vector[T]) { v.alloc = a }
}

// New returns a vector of n zero-valued elements.
func New[T any](n int, opts ...Option[T]) (*Vector[T], error) {
	if n < 0 {
		return nil, errs.NewInvalidArgument("invalid vector size %d", n)
	}
	v := &Vector[T]{alloc: HeapAllocator[T]{}}
	for _, opt := range opts {
		opt(v)
	}
	v.data = v.alloc.Allocate(n)
	if err := v.fill(func(i int) (T, error) {
		var zero T
		return zero, nil
	}); err != nil {
		v.releaseData()
		return nil, err
	}
	return v, nil
}

// NewWithInit returns a vector of n elements, each produced by init. The
// calls to init may run concurrently; a failure or panic in any of them
// releases the storage and reports the first error.
func NewWithInit[T any](n int, init func(i int) (T, error), opts ...Option[T]) (*Vector[T], error) {
	if n < 0 {
		return nil, errs.NewInvalidArgument("invalid vector size %d", n)
	}
	v := &Vector[T]{alloc: HeapAllocator[T]{}}
	for _, opt := range opts {
		opt(v)
	}
	v.data = v.alloc.Allocate(n)
	if err := v.fill(init); err != nil {
		v.releaseData()
		return nil, err
	}
	return v, nil
}

// allocator returns the configured allocator, defaulting to the heap so
// the zero value stays usable.
func (v *Vector[T]) allocator() Allocator[T] {
	if v.alloc == nil {
		return HeapAllocator[T]{}
	}
	return v.alloc
}

// Clone returns a parallel copy of the vector, sharing its allocator.
func (v *Vector[T]) Clone() (*Vector[T], error) {
	alloc := v.allocator()
	out := &Vector[T]{alloc: alloc, data: alloc.Allocate(len(v.data))}
	if err := out.fill(func(i int) (T, error) {
		return v.data[i], nil
	}); err != nil {
		out.releaseData()
		return nil, err
	}
	return out, nil
}

// CopyFrom replaces the contents with a parallel copy of other. On failure
// the receiver is unchanged.
func (v *Vector[T]) CopyFrom(other *Vector[T]) error {
	alloc := v.allocator()
	tmp := alloc.Allocate(len(other.data))
	w := &Vector[T]{alloc: alloc, data: tmp}
	if err := w.fill(func(i int) (T, error) {
		return other.data[i], nil
	}); err != nil {
		alloc.Release(tmp)
		return err
	}
	old := v.data
	v.data = tmp
	alloc.Release(old)
	return nil
}

// Resize changes the length to n, preserving the common prefix and
// zero-filling any growth. On failure the receiver is unchanged.
func (v *Vector[T]) Resize(n int) error {
	if n < 0 {
		return errs.NewInvalidArgument("invalid vector size %d", n)
	}
	if n == len(v.data) {
		return nil
	}
	alloc := v.allocator()
	tmp := alloc.Allocate(n)
	keep := min(n, len(v.data))
	w := &Vector[T]{alloc: alloc, data: tmp}
	if err := w.fill(func(i int) (T, error) {
		if i < keep {
			return v.data[i], nil
		}
		var zero T
		return zero, nil
	}); err != nil {
		alloc.Release(tmp)
		return err
	}
	old := v.data
	v.data = tmp
	alloc.Release(old)
	return nil
}

// Swap exchanges the contents and allocators of two vectors.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.data, other.data = other.data, v.data
	v.alloc, other.alloc = other.alloc, v.alloc
}

// Clear releases the storage and leaves the vector empty.
func (v *Vector[T]) Clear() {
	v.releaseData()
	v.data = nil
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return len(v.data) }

// At returns the element at index i.
func (v *Vector[T]) At(i int) T { return v.data[i] }

// Set stores x at index i.
func (v *Vector[T]) Set(i int, x T) { v.data[i] = x }

// Data exposes the backing slice. Mutations through it are visible to the
// vector.
func (v *Vector[T]) Data() []T { return v.data }

func (v *Vector[T]) releaseData() {
	if v.alloc != nil && v.data != nil {
		v.alloc.Release(v.data)
	}
}

// fill populates every element by index, splitting the range into
// contiguous blocks when the parallel policy allows.
func (v *Vector[T]) fill(gen func(i int) (T, error)) error {
	n := len(v.data)
	if n == 0 {
		return nil
	}
	nThreads := settings.NumThreads()
	minWork := settings.MinWorkPerThread()
	if nThreads <= 1 || n/nThreads < minWork {
		return fillBlock(v.data, 0, gen)
	}
	blockSize := n / nThreads
	var g errgroup.Group
	for i := 0; i < nThreads; i++ {
		b := i * blockSize
		e := (i + 1) * blockSize
		if i == nThreads-1 {
			e = n
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errs.WrapPanic(r)
				}
			}()
			return fillBlock(v.data[b:e], b, gen)
		})
	}
	return g.Wait()
}

func fillBlock[T any](dst []T, offset int, gen func(i int) (T, error)) error {
	for i := range dst {
		x, err := gen(offset + i)
		if err != nil {
			return err
		}
		dst[i] = x
	}
	return nil
}
