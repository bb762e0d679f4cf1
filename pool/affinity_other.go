//go:build !linux

package pool

import "errors"

func bindToCPU(int) error {
	return errors.New("cpu binding is not supported on this platform")
}
