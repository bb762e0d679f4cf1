// Package settings stores the global runtime knobs of the library: the
// number of threads the concurrent components may use and the minimum
// amount of work that justifies handing a chunk to a separate thread. All
// functions are safe for concurrent use.
package settings

import (
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/tbellamy/epicycle/errs"
	"github.com/tbellamy/epicycle/internal/logging"
)

// EnvNumThreads, when set to a positive integer, overrides the initial
// thread count.
const EnvNumThreads = "EPICYCLE_NUM_THREADS"

const defaultMinWorkPerThread = 50

var (
	mu               sync.Mutex
	nThreads         = initNumThreads()
	minWorkPerThread = defaultMinWorkPerThread
)

var logger logging.Logger = logging.NopLogger{}

func initNumThreads() int {
	if s := os.Getenv(EnvNumThreads); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return max(runtime.NumCPU(), 1)
}

// NumThreads returns the number of threads available for use by the
// library. The initial value is runtime.NumCPU, unless overridden through
// the EPICYCLE_NUM_THREADS environment variable.
func NumThreads() int {
	mu.Lock()
	defer mu.Unlock()
	return nThreads
}

// SetNumThreads sets the number of threads available for use by the
// library.
func SetNumThreads(n int) error {
	if n <= 0 {
		return errs.NewInvalidArgument("the number of threads must be strictly positive")
	}
	mu.Lock()
	defer mu.Unlock()
	nThreads = n
	return nil
}

// ResetNumThreads restores the thread count to its startup value.
func ResetNumThreads() {
	mu.Lock()
	defer mu.Unlock()
	nThreads = initNumThreads()
}

// MinWorkPerThread returns the minimum number of work units that justifies
// assigning a chunk of work to a separate thread.
func MinWorkPerThread() int {
	mu.Lock()
	defer mu.Unlock()
	return minWorkPerThread
}

// SetMinWorkPerThread sets the minimum number of work units per thread.
func SetMinWorkPerThread(n int) error {
	if n <= 0 {
		return errs.NewInvalidArgument("the minimum work per thread must be strictly positive")
	}
	mu.Lock()
	defer mu.Unlock()
	minWorkPerThread = n
	return nil
}

// ResetMinWorkPerThread restores the minimum work per thread to its
// default.
func ResetMinWorkPerThread() {
	mu.Lock()
	defer mu.Unlock()
	minWorkPerThread = defaultMinWorkPerThread
}

// Logger returns the logger used by the library components. The default
// discards everything.
func Logger() logging.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetLogger installs the logger used by the library components. A nil
// value restores the no-op default.
func SetLogger(l logging.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		logger = logging.NopLogger{}
		return
	}
	logger = l
}
