//go:build !gmp

package monomial

import "math/big"

// binomial returns C(n, k) for k >= 0.
func binomial(n, k int64) *big.Int {
	return new(big.Int).Binomial(n, k)
}
