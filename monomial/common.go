package monomial

import (
	"math"

	"github.com/tbellamy/epicycle/errs"
	"github.com/tbellamy/epicycle/kronecker"
	"github.com/tbellamy/epicycle/symbols"
)

// unpack decodes code into a fresh vector sized after set.
func unpack(set symbols.Set, code int64) ([]int64, error) {
	return kronecker.DecodeNew(code, set.Len())
}

// addChecked adds two multipliers, failing with an Overflow error instead of
// wrapping.
func addChecked(a, b int64) (int64, error) {
	if b >= 0 {
		if a > math.MaxInt64-b {
			return 0, errs.NewOverflow("the addition of two multipliers")
		}
	} else {
		if a < math.MinInt64-b {
			return 0, errs.NewOverflow("the addition of two multipliers")
		}
	}
	return a + b, nil
}

// mergeArgs re-encodes code, interpreted against origArgs, into the extended
// reference set newArgs, inserting zero multipliers for the new symbols.
// newArgs must be a strict superset of origArgs.
func mergeArgs(origArgs, newArgs symbols.Set, code int64) (int64, error) {
	if newArgs.Len() <= origArgs.Len() || !newArgs.IsSupersetOf(origArgs) {
		return 0, errs.NewInvalidArgument("invalid symbol sets for argument merging")
	}
	old, err := unpack(origArgs, code)
	if err != nil {
		return 0, err
	}
	merged := make([]int64, 0, newArgs.Len())
	j := 0
	for i := 0; i < newArgs.Len(); i++ {
		if j < origArgs.Len() && newArgs.At(i) == origArgs.At(j) {
			merged = append(merged, old[j])
			j++
		} else {
			merged = append(merged, 0)
		}
	}
	return kronecker.Encode(merged)
}

// trim re-encodes code with the multipliers of the symbols in trimArgs
// removed from the reference set origArgs.
func trim(trimArgs, origArgs symbols.Set, code int64) (int64, error) {
	v, err := unpack(origArgs, code)
	if err != nil {
		return 0, err
	}
	kept := make([]int64, 0, len(v))
	for i := range v {
		if !trimArgs.Contains(origArgs.At(i)) {
			kept = append(kept, v[i])
		}
	}
	return kronecker.Encode(kept)
}

// trimIdentify removes from candidates every symbol whose multiplier in code
// is non-zero, returning the surviving candidates.
func trimIdentify(candidates, args symbols.Set, code int64) (symbols.Set, error) {
	v, err := unpack(args, code)
	if err != nil {
		return symbols.Set{}, err
	}
	keep := make([]symbols.Symbol, 0, candidates.Len())
	for i := 0; i < candidates.Len(); i++ {
		sym := candidates.At(i)
		j := args.Index(sym)
		if j < 0 || v[j] == 0 {
			keep = append(keep, sym)
		}
	}
	return symbols.NewSet(keep...), nil
}

// canonicalizeVec flips the signs of all multipliers when the first non-zero
// one is negative, reporting whether a flip happened. The vector is modified
// in place.
func canonicalizeVec(v []int64) bool {
	signChange := false
	for i := range v {
		if signChange || v[i] < 0 {
			v[i] = -v[i]
			signChange = true
		} else if v[i] > 0 {
			break
		}
	}
	return signChange
}

// sumChecked accumulates values with overflow checking; abs selects whether
// the absolute values are summed instead.
func sumChecked(v []int64, abs bool) (int64, error) {
	var acc int64
	var err error
	for _, x := range v {
		if abs && x < 0 {
			// Safe: the codification ranges are symmetric, so -x is always
			// representable.
			x = -x
		}
		if acc, err = addChecked(acc, x); err != nil {
			return 0, err
		}
	}
	return acc, nil
}

// pickChecked is the positional variant of sumChecked, restricted to the
// positions in p.
func pickChecked(v []int64, p []int, abs bool) (int64, error) {
	var acc int64
	var err error
	for _, i := range p {
		if i < 0 || i >= len(v) {
			return 0, errs.NewInvalidArgument("invalid position %d for a monomial of size %d", i, len(v))
		}
		x := v[i]
		if abs && x < 0 {
			x = -x
		}
		if acc, err = addChecked(acc, x); err != nil {
			return 0, err
		}
	}
	return acc, nil
}
