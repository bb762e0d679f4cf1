package settings

import (
	"errors"
	"testing"

	"github.com/tbellamy/epicycle/errs"
	"github.com/tbellamy/epicycle/internal/logging"
)

func TestNumThreads(t *testing.T) {
	t.Cleanup(ResetNumThreads)

	if NumThreads() < 1 {
		t.Fatalf("NumThreads() = %d, want >= 1", NumThreads())
	}

	if err := SetNumThreads(3); err != nil {
		t.Fatalf("SetNumThreads failed: %v", err)
	}
	if got := NumThreads(); got != 3 {
		t.Errorf("NumThreads() = %d, want 3", got)
	}

	if err := SetNumThreads(0); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("SetNumThreads(0): got %v, want invalid argument", err)
	}

	ResetNumThreads()
	if NumThreads() < 1 {
		t.Errorf("NumThreads() = %d after reset, want >= 1", NumThreads())
	}
}

func TestMinWorkPerThread(t *testing.T) {
	t.Cleanup(ResetMinWorkPerThread)

	if got := MinWorkPerThread(); got != 50 {
		t.Errorf("default MinWorkPerThread() = %d, want 50", got)
	}
	if err := SetMinWorkPerThread(200); err != nil {
		t.Fatalf("SetMinWorkPerThread failed: %v", err)
	}
	if got := MinWorkPerThread(); got != 200 {
		t.Errorf("MinWorkPerThread() = %d, want 200", got)
	}
	if err := SetMinWorkPerThread(-5); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("SetMinWorkPerThread(-5): got %v, want invalid argument", err)
	}
}

func TestLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	if Logger() == nil {
		t.Fatal("default logger is nil")
	}

	l := logging.NewDefaultLogger()
	SetLogger(l)
	if Logger() != logging.Logger(l) {
		t.Error("installed logger not returned")
	}

	SetLogger(nil)
	if _, ok := Logger().(logging.NopLogger); !ok {
		t.Errorf("nil logger should restore the no-op default, got %T", Logger())
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv(EnvNumThreads, "7")
	t.Cleanup(ResetNumThreads)

	ResetNumThreads()
	if got := NumThreads(); got != 7 {
		t.Errorf("NumThreads() = %d with %s=7, want 7", got, EnvNumThreads)
	}

	t.Setenv(EnvNumThreads, "not a number")
	ResetNumThreads()
	if NumThreads() < 1 {
		t.Errorf("NumThreads() = %d with malformed override, want >= 1", NumThreads())
	}
}
