package pool

import (
	"time"

	"github.com/tbellamy/epicycle/errs"
)

// Transform applies op to every element of in and stores the results at
// the matching indices of out, splitting the work into nThreads contiguous
// blocks executed on the pool (the last block absorbs the remainder).
// Block i runs on worker i, so the partitioning is deterministic. With
// nThreads of one the transform runs inline on the calling goroutine.
//
// All blocks are waited on before any result is inspected; the first error
// or captured panic is reported, and out is fully written for the
// successful blocks.
func Transform[T, U any](nThreads int, in []T, out []U, op func(T) (U, error)) error {
	if nThreads <= 0 {
		return errs.NewInvalidArgument("invalid number of threads")
	}
	if len(in) != len(out) {
		return errs.NewInvalidArgument("mismatched vector sizes")
	}
	start := time.Now()
	err := transform(nThreads, in, out, op)
	transformDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		transformsTotal.WithLabelValues("error").Inc()
		return err
	}
	transformsTotal.WithLabelValues("ok").Inc()
	return nil
}

func transform[T, U any](nThreads int, in []T, out []U, op func(T) (U, error)) error {
	if nThreads == 1 {
		return transformBlock(in, out, op)
	}
	blockSize := len(in) / nThreads
	var list FutureList[struct{}]
	var enqueueErr error
	for i := 0; i < nThreads; i++ {
		b := i * blockSize
		e := (i + 1) * blockSize
		if i == nThreads-1 {
			e = len(in)
		}
		fut, err := Enqueue(i, func() (struct{}, error) {
			return struct{}{}, transformBlock(in[b:e], out[b:e], op)
		})
		if err != nil {
			enqueueErr = err
			break
		}
		list.PushBack(fut)
	}
	// Wait on everything before surfacing any failure, so no block is
	// still writing into out when the caller regains control.
	list.WaitAll()
	if enqueueErr != nil {
		return enqueueErr
	}
	return list.GetAll()
}

func transformBlock[T, U any](in []T, out []U, op func(T) (U, error)) error {
	for i := range in {
		u, err := op(in[i])
		if err != nil {
			return err
		}
		out[i] = u
	}
	return nil
}
