// Package monomial implements the Kronecker-coded monomial keys used by the
// sparse series layer: a polynomial Monomial whose decoded vector holds
// exponents, and a TrigMonomial whose decoded vector holds the multipliers
// of a sine or cosine argument.
//
// A key stores only its integer code; the number of components is implied by
// the reference symbol set each operation receives. Operations borrow the
// set and never retain it. All operations are pure: they work on local
// copies and commit only on success, so a failed call never leaves a key
// half-mutated, and any number of goroutines may operate on distinct keys
// without synchronisation.
package monomial

import (
	"strconv"
	"strings"

	"github.com/tbellamy/epicycle/errs"
	"github.com/tbellamy/epicycle/kronecker"
	"github.com/tbellamy/epicycle/symbols"
)

// Monomial is a polynomial Kronecker monomial: a vector of signed integer
// exponents packed into one int64 code. The zero value is the unit monomial
// for any reference set.
type Monomial struct {
	code int64
}

// FromExponents encodes the given exponent vector into a Monomial.
func FromExponents(exps []int64) (Monomial, error) {
	code, err := kronecker.Encode(exps)
	if err != nil {
		return Monomial{}, err
	}
	return Monomial{code: code}, nil
}

// FromCode wraps a raw code without validation. The caller is expected to
// check IsCompatible against the reference set before using the key.
func FromCode(code int64) Monomial {
	return Monomial{code: code}
}

// Code returns the internal integer code.
func (m Monomial) Code() int64 { return m.code }

// Hash returns the code reinterpreted as an unsigned hash value.
func (m Monomial) Hash() uint64 { return uint64(m.code) }

// Equal reports whether two monomials carry the same code.
func (m Monomial) Equal(other Monomial) bool { return m.code == other.code }

// Unpack decodes the monomial into an exponent vector sized after set.
func (m Monomial) Unpack(set symbols.Set) ([]int64, error) {
	return unpack(set, m.code)
}

// IsCompatible reports whether the stored code corresponds to a valid
// exponent vector for the given reference set. It never fails: a key that
// cannot be interpreted is simply incompatible.
func (m Monomial) IsCompatible(set symbols.Set) bool {
	s := set.Len()
	if s == 0 {
		return m.code == 0
	}
	if s > kronecker.MaxSize() {
		return false
	}
	l, err := kronecker.LimitFor(s)
	if err != nil {
		return false
	}
	return m.code >= l.HMin && m.code <= l.HMax
}

// IsIgnorable always reports false: whether a polynomial term vanishes is a
// property of its coefficient, never of the key alone.
func (m Monomial) IsIgnorable(symbols.Set) bool { return false }

// IsUnitary reports whether all exponents are zero.
func (m Monomial) IsUnitary(set symbols.Set) (bool, error) {
	if !m.IsCompatible(set) {
		return false, errs.NewInvalidArgument("monomial is not compatible with the reference set")
	}
	return m.code == 0, nil
}

// MergeArgs returns a copy of the monomial re-encoded against the extended
// reference set newArgs, with zero exponents for the symbols newArgs adds
// over origArgs. newArgs must be a strict superset of origArgs.
func (m Monomial) MergeArgs(origArgs, newArgs symbols.Set) (Monomial, error) {
	code, err := mergeArgs(origArgs, newArgs, m.code)
	if err != nil {
		return Monomial{}, err
	}
	return Monomial{code: code}, nil
}

// Mul multiplies two monomials by component-wise exponent addition, checking
// each component for overflow before re-encoding.
func Mul(a, b Monomial, set symbols.Set) (Monomial, error) {
	va, err := a.Unpack(set)
	if err != nil {
		return Monomial{}, err
	}
	vb, err := b.Unpack(set)
	if err != nil {
		return Monomial{}, err
	}
	for i := range va {
		if va[i], err = addChecked(va[i], vb[i]); err != nil {
			return Monomial{}, err
		}
	}
	code, err := kronecker.Encode(va)
	if err != nil {
		return Monomial{}, err
	}
	return Monomial{code: code}, nil
}

// Degree returns the total degree, the checked sum of all exponents.
func (m Monomial) Degree(set symbols.Set) (int64, error) {
	v, err := m.Unpack(set)
	if err != nil {
		return 0, err
	}
	return sumChecked(v, false)
}

// PartialDegree returns the degree restricted to the exponents at the given
// positions.
func (m Monomial) PartialDegree(p []int, set symbols.Set) (int64, error) {
	v, err := m.Unpack(set)
	if err != nil {
		return 0, err
	}
	return pickChecked(v, p, false)
}

// Partial returns the partial derivative with respect to the symbol at
// position pos as a (scalar, key) pair: the exponent at pos and a copy of
// the monomial with that exponent decremented. A zero exponent yields
// (0, unit monomial).
func (m Monomial) Partial(pos int, set symbols.Set) (int64, Monomial, error) {
	v, err := m.Unpack(set)
	if err != nil {
		return 0, Monomial{}, err
	}
	if pos < 0 || pos >= len(v) {
		return 0, Monomial{}, errs.NewInvalidArgument("invalid position %d for differentiation", pos)
	}
	if v[pos] == 0 {
		return 0, Monomial{}, nil
	}
	n := v[pos]
	v[pos]--
	code, err := kronecker.Encode(v)
	if err != nil {
		return 0, Monomial{}, err
	}
	return n, Monomial{code: code}, nil
}

// Integrate returns the antiderivative with respect to sym as a
// (scalar, key) pair: the incremented exponent and a copy of the monomial
// with sym's exponent incremented. If sym is absent from set, the result
// carries an extra exponent of 1 at the position sym would occupy and must
// be interpreted against the extended set. Integrating an exponent of -1
// is not expressible as a monomial and fails.
func (m Monomial) Integrate(sym symbols.Symbol, set symbols.Set) (int64, Monomial, error) {
	v, err := m.Unpack(set)
	if err != nil {
		return 0, Monomial{}, err
	}
	var expo int64
	out := make([]int64, 0, len(v)+1)
	for i := 0; i < set.Len(); i++ {
		if expo == 0 && sym < set.At(i) {
			// Went past sym's position without integrating, so the
			// extended set gains a new exponent here.
			out = append(out, 1)
			expo = 1
		}
		out = append(out, v[i])
		if set.At(i) == sym {
			if v[i] == -1 {
				return 0, Monomial{}, errs.NewInvalidArgument("integration of a monomial with exponent -1 is not a monomial")
			}
			out[len(out)-1] = v[i] + 1
			expo = out[len(out)-1]
		}
	}
	if expo == 0 {
		out = append(out, 1)
		expo = 1
	}
	code, err := kronecker.Encode(out)
	if err != nil {
		return 0, Monomial{}, err
	}
	return expo, Monomial{code: code}, nil
}

// Trim returns a copy with the exponents of the symbols in trimArgs removed
// from the reference set origArgs.
func (m Monomial) Trim(trimArgs, origArgs symbols.Set) (Monomial, error) {
	code, err := trim(trimArgs, origArgs, m.code)
	if err != nil {
		return Monomial{}, err
	}
	return Monomial{code: code}, nil
}

// TrimIdentify removes from candidates the symbols whose exponent in the
// monomial is non-zero, returning the symbols still eligible for trimming.
func (m Monomial) TrimIdentify(candidates, args symbols.Set) (symbols.Set, error) {
	return trimIdentify(candidates, args, m.code)
}

// String renders the monomial against set, e.g. "x**2*z". The unit monomial
// renders as an empty string.
func (m Monomial) String(set symbols.Set) string {
	v, err := m.Unpack(set)
	if err != nil {
		return "<incompatible>"
	}
	var b strings.Builder
	for i, e := range v {
		if e == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('*')
		}
		b.WriteString(string(set.At(i)))
		if e != 1 {
			b.WriteString("**")
			b.WriteString(strconv.FormatInt(e, 10))
		}
	}
	return b.String()
}
