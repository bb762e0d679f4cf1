//go:build gmp

package monomial

import (
	"math/big"

	gmp "github.com/ncw/gmp"
)

// binomial returns C(n, k) for k >= 0, computed with GMP integers via the
// multiplicative formula and converted back to math/big for the caller.
func binomial(n, k int64) *big.Int {
	res := gmp.NewInt(1)
	num := gmp.NewInt(0)
	den := gmp.NewInt(0)
	for i := int64(1); i <= k; i++ {
		num.SetInt64(n - k + i)
		den.SetInt64(i)
		res.Mul(res, num)
		res.Quo(res, den)
	}
	out := new(big.Int)
	out.SetBytes(res.Bytes())
	if res.Sign() < 0 {
		out.Neg(out)
	}
	return out
}
