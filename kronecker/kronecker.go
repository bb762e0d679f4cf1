// Package kronecker encodes bounded vectors of signed integers into single
// int64 codes ("Kronecker substitution") and decodes them back.
//
// The encoding is a mixed-radix positional scheme: each component, shifted
// into a symmetric non-negative range, is a digit in a place-value system
// whose per-position base is sized so that the maximum possible code never
// overflows int64. For every supported vector length the valid component
// and code ranges are recorded in a process-wide Limits table, computed once
// on first use and read-only afterward. Within those ranges the mapping is
// a bijection.
package kronecker

import (
	"math"
	"math/big"
	"math/rand"
	"sync"

	"github.com/tbellamy/epicycle/errs"
)

// Limit describes the codification bounds for one vector length.
type Limit struct {
	// MinMax holds the absolute value of the lower/upper bound for each
	// component: component i must lie in [-MinMax[i], MinMax[i]].
	MinMax []int64
	// HMin is the minimum value for the integer encoding the vector.
	HMin int64
	// HMax is the maximum value for the integer encoding the vector.
	HMax int64
	// Span is HMax - HMin.
	Span int64
}

// limits is the process-wide Limits table, built exactly once. Index i holds
// the bounds for encoding i-dimensional vectors; index 0 is all zeroes.
var limits = sync.OnceValue(determineLimits)

// Limits returns the full table of codification bounds. The returned slice
// is shared and must not be modified; its length determines the maximum
// encodable vector length (see MaxSize).
func Limits() []Limit {
	return limits()
}

// MaxSize returns the maximum vector length that can be encoded in an int64.
func MaxSize() int {
	return len(limits()) - 1
}

// LimitFor returns the codification bounds for vectors of length n. It fails
// with an InvalidArgument error if n is negative or exceeds MaxSize.
func LimitFor(n int) (Limit, error) {
	lt := limits()
	if n < 0 || n >= len(lt) {
		return Limit{}, errs.NewInvalidArgument("no codification limits for vectors of size %d", n)
	}
	return lt[n], nil
}

// Encode packs the vector v into a single int64 code. A vector of size 0 is
// always encoded as 0.
//
// Encoding fails with an Overflow error if the length of v exceeds MaxSize
// or if any component lies outside the bounds reported by Limits; the value
// is never silently truncated or wrapped.
func Encode(v []int64) (int64, error) {
	lt := limits()
	size := len(v)
	if size >= len(lt) {
		return 0, errs.NewOverflow("encoding: vector size exceeds the codification limits")
	}
	if size == 0 {
		return 0, nil
	}
	l := lt[size]
	for i, x := range v {
		if x < -l.MinMax[i] || x > l.MinMax[i] {
			return 0, errs.NewOverflow("encoding: vector component out of bounds")
		}
	}
	// Shift each component into [0, 2*MinMax[i]] and accumulate digits.
	// All intermediate quantities stay within [0, Span] by construction of
	// the limits table.
	code := v[0] + l.MinMax[0]
	radix := 2*l.MinMax[0] + 1
	for i := 1; i < size; i++ {
		code += (v[i] + l.MinMax[i]) * radix
		radix *= 2*l.MinMax[i] + 1
	}
	return code + l.HMin, nil
}

// Decode unpacks code into dst, whose length selects the vector size. A
// destination of length 0 requires a zero code.
//
// Decoding a (code, length) pair previously validated against Limits cannot
// fail; otherwise it fails with an InvalidArgument error and dst is left in
// an unspecified state.
func Decode(dst []int64, code int64) error {
	lt := limits()
	size := len(dst)
	if size >= len(lt) {
		return errs.NewInvalidArgument("decoding: vector size %d exceeds the codification limits", size)
	}
	if size == 0 {
		if code != 0 {
			return errs.NewInvalidArgument("a vector of size 0 must always be encoded as 0")
		}
		return nil
	}
	l := lt[size]
	if code < l.HMin || code > l.HMax {
		return errs.NewInvalidArgument("the code %d is out of bounds for vectors of size %d", code, size)
	}
	shifted := code - l.HMin
	mod := 2*l.MinMax[0] + 1
	dst[0] = shifted%mod - l.MinMax[0]
	for i := 1; i < size; i++ {
		radix := 2*l.MinMax[i] + 1
		dst[i] = (shifted%(mod*radix))/mod - l.MinMax[i]
		mod *= radix
	}
	return nil
}

// DecodeNew is a convenience wrapper around Decode that allocates the
// destination vector.
func DecodeNew(code int64, size int) ([]int64, error) {
	dst := make([]int64, size)
	if err := Decode(dst, code); err != nil {
		return nil, err
	}
	return dst, nil
}

// The bounds for each vector length are not uniform across positions: they
// are grown iteratively, doubling each per-position base and perturbing it
// to the next prime after a small pseudo-random nudge, until the encoded
// range no longer fits in an int64. The bounds preceding the failing
// iteration are recorded. The perturbation breaks up regular stride
// patterns in the codes, which would otherwise cluster badly in the hash
// containers consuming them; seeding the generator with the vector length
// keeps the table identical across processes.

// perturb advances x by a pseudo-random relative nudge in [-5%, 5%] and then
// to the next prime.
func perturb(x *big.Int, rng *rand.Rand) {
	d := int64(rng.Intn(11) - 5)
	nudge := new(big.Int).Mul(x, big.NewInt(d))
	nudge.Quo(nudge, big.NewInt(100))
	x.Add(x, nudge)
	nextPrime(x)
}

// nextPrime replaces x with the smallest prime strictly greater than x.
func nextPrime(x *big.Int) {
	one := big.NewInt(1)
	for {
		x.Add(x, one)
		if x.ProbablyPrime(32) {
			return
		}
	}
}

func dotProduct(a, b []*big.Int) *big.Int {
	acc := new(big.Int)
	tmp := new(big.Int)
	for i := range a {
		acc.Add(acc, tmp.Mul(a[i], b[i]))
	}
	return acc
}

func bigVec(n int, f func(i int) *big.Int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func cloneVec(v []*big.Int) []*big.Int {
	return bigVec(len(v), func(i int) *big.Int { return new(big.Int).Set(v[i]) })
}

// determineLimit computes the codification bounds for m-dimensional vectors,
// m >= 1. It returns a Limit with an empty MinMax when m components cannot
// be encoded in an int64 at all.
func determineLimit(m int) Limit {
	rng := rand.New(rand.NewSource(int64(m)))
	maxInt := big.NewInt(math.MaxInt64)
	minInt := big.NewInt(math.MinInt64)
	fits := func(x *big.Int) bool {
		return x.Cmp(minInt) >= 0 && x.Cmp(maxInt) <= 0
	}
	// Initial coding and minmax vectors: every component in [-1, 1], so the
	// coding vector is the powers of 3.
	cVec := make([]*big.Int, 0, m)
	cVec = append(cVec, big.NewInt(1))
	for i := 1; i < m; i++ {
		cVec = append(cVec, new(big.Int).Mul(cVec[i-1], big.NewInt(3)))
	}
	mVec := bigVec(m, func(int) *big.Int { return big.NewInt(-1) })
	mMax := bigVec(m, func(int) *big.Int { return big.NewInt(1) })
	var prevC, prevM, prevMax []*big.Int
	one := big.NewInt(1)
	for {
		hMin := dotProduct(cVec, mVec)
		hMax := dotProduct(cVec, mMax)
		diff := new(big.Int).Sub(hMax, hMin)
		// The product of all the radixes equals Span+1 and appears while
		// decoding the last component, so it must be representable too.
		diffP1 := new(big.Int).Add(diff, one)
		if !fits(hMin) || !fits(hMax) || !fits(diffP1) {
			if prevC == nil {
				// Overflow on the very first iteration: m components are
				// too many for this integer width.
				return Limit{}
			}
			pMin := dotProduct(prevC, prevM)
			pMax := dotProduct(prevC, prevMax)
			minmax := make([]int64, m)
			for i := range minmax {
				minmax[i] = prevMax[i].Int64()
			}
			return Limit{
				MinMax: minmax,
				HMin:   pMin.Int64(),
				HMax:   pMax.Int64(),
				Span:   new(big.Int).Sub(pMax, pMin).Int64(),
			}
		}
		prevC = cloneVec(cVec)
		prevM = cloneVec(mVec)
		prevMax = cloneVec(mMax)
		// Generate the coding vector for the next iteration: double each
		// per-position base, perturb it, and fold back into the running
		// radix product.
		for i := 1; i < m; i++ {
			delta := new(big.Int).Quo(cVec[i], prevC[i-1])
			delta.Mul(delta, big.NewInt(2))
			perturb(delta, rng)
			cVec[i] = delta.Mul(delta, cVec[i-1])
		}
		// Derive the minmax bounds from the new coding vector, apart from
		// the last component which does not appear in it.
		for i := 0; i+1 < m; i++ {
			base := new(big.Int).Quo(cVec[i+1], cVec[i])
			base.Sub(base, one)
			mMax[i] = base.Quo(base, big.NewInt(2))
			mVec[i] = new(big.Int).Neg(mMax[i])
		}
		last := new(big.Int).Mul(mMax[m-1], big.NewInt(4))
		last.Add(last, one)
		last.Quo(last, big.NewInt(2))
		perturb(last, rng)
		mMax[m-1] = last
		mVec[m-1] = new(big.Int).Neg(last)
	}
}

func determineLimits() []Limit {
	// Index 0: the empty vector, encoded as 0.
	out := []Limit{{MinMax: nil, HMin: 0, HMax: 0, Span: 0}}
	for m := 1; ; m++ {
		l := determineLimit(m)
		if len(l.MinMax) == 0 {
			return out
		}
		out = append(out, l)
	}
}
