//go:build linux

package pool

import "golang.org/x/sys/unix"

// bindToCPU asks the scheduler to keep the calling thread on the given CPU.
// The caller must have locked the goroutine to its OS thread first.
func bindToCPU(cpu int) error {
	var set unix.CPUSet
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
