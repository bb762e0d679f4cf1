package monomial

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/tbellamy/epicycle/errs"
	"github.com/tbellamy/epicycle/kronecker"
	"github.com/tbellamy/epicycle/symbols"
)

// TrigMonomial is a trigonometric Kronecker monomial: the key of a term of
// the form cos(n1*x1 + n2*x2 + ...) or sin(...), with the integer
// multipliers packed into one int64 code and the flavour selecting cosine
// (true) or sine (false). The zero value is cos of the empty angle, the
// multiplicative unit.
//
// The canonical form has the first nonzero multiplier positive; operations
// that can violate it restore it and report the implied coefficient sign
// change to the caller.
type TrigMonomial struct {
	code    int64
	flavour bool
}

// NewTrig returns the unit monomial: all multipliers zero, cosine flavour.
func NewTrig() TrigMonomial {
	return TrigMonomial{flavour: true}
}

// TrigFromMultipliers encodes the given multiplier vector into a cosine
// monomial.
func TrigFromMultipliers(mults []int64) (TrigMonomial, error) {
	code, err := kronecker.Encode(mults)
	if err != nil {
		return TrigMonomial{}, err
	}
	return TrigMonomial{code: code, flavour: true}, nil
}

// TrigFromCode wraps a raw code and flavour without validation.
func TrigFromCode(code int64, flavour bool) TrigMonomial {
	return TrigMonomial{code: code, flavour: flavour}
}

// Code returns the internal integer code.
func (t TrigMonomial) Code() int64 { return t.code }

// Flavour reports whether the monomial is a cosine.
func (t TrigMonomial) Flavour() bool { return t.flavour }

// WithFlavour returns a copy with the given flavour.
func (t TrigMonomial) WithFlavour(f bool) TrigMonomial {
	return TrigMonomial{code: t.code, flavour: f}
}

// Hash returns the code reinterpreted as an unsigned hash value. The
// flavour does not contribute: plus/minus pairs from multiplication land in
// nearby buckets, which is the access pattern of series multiplication.
func (t TrigMonomial) Hash() uint64 { return uint64(t.code) }

// Equal reports whether code and flavour both match.
func (t TrigMonomial) Equal(other TrigMonomial) bool {
	return t.code == other.code && t.flavour == other.flavour
}

// Less orders by code, with the flavour breaking ties (sine before cosine).
func (t TrigMonomial) Less(other TrigMonomial) bool {
	if t.code != other.code {
		return t.code < other.code
	}
	return !t.flavour && other.flavour
}

// Unpack decodes the monomial into a multiplier vector sized after set.
func (t TrigMonomial) Unpack(set symbols.Set) ([]int64, error) {
	return unpack(set, t.code)
}

// IsCompatible reports whether the stored code corresponds to a valid
// multiplier vector for the given reference set, in canonical form (first
// nonzero multiplier positive).
func (t TrigMonomial) IsCompatible(set symbols.Set) bool {
	s := set.Len()
	if s == 0 {
		return t.code == 0
	}
	if s > kronecker.MaxSize() {
		return false
	}
	l, err := kronecker.LimitFor(s)
	if err != nil {
		return false
	}
	if t.code < l.HMin || t.code > l.HMax {
		return false
	}
	v, err := unpack(set, t.code)
	if err != nil {
		return false
	}
	for _, m := range v {
		if m < 0 {
			return false
		}
		if m > 0 {
			break
		}
	}
	return true
}

// IsIgnorable reports whether the monomial annihilates any term it keys:
// sin of the empty angle is identically zero.
func (t TrigMonomial) IsIgnorable(symbols.Set) bool {
	return t.code == 0 && !t.flavour
}

// IsUnitary reports whether the monomial is cos of the empty angle.
func (t TrigMonomial) IsUnitary(set symbols.Set) (bool, error) {
	if !t.IsCompatible(set) {
		return false, errs.NewInvalidArgument("trigonometric monomial is not compatible with the reference set")
	}
	return t.code == 0 && t.flavour, nil
}

// Canonicalize returns a canonical copy of the monomial and reports whether
// the multiplier signs had to be flipped to get there.
func (t TrigMonomial) Canonicalize(set symbols.Set) (TrigMonomial, bool, error) {
	v, err := unpack(set, t.code)
	if err != nil {
		return TrigMonomial{}, false, err
	}
	if !canonicalizeVec(v) {
		return t, false, nil
	}
	code, err := kronecker.Encode(v)
	if err != nil {
		return TrigMonomial{}, false, err
	}
	return TrigMonomial{code: code, flavour: t.flavour}, true, nil
}

// MulResult is the outcome of a trigonometric product. Prosthaphaeresis
// turns one product into two terms, keyed by the sum and the difference of
// the multiplier vectors; NegatePlus and NegateMinus tell the caller to
// negate the corresponding coefficient. The implied division of the
// coefficients by two is left to the caller.
type MulResult struct {
	Plus        TrigMonomial
	Minus       TrigMonomial
	NegatePlus  bool
	NegateMinus bool
}

// MulTrig multiplies two trigonometric monomials. Both result keys carry
// the same flavour: cosine when the factors agree in flavour, sine
// otherwise. The coefficient sign flags fold together the identity applied
// (sin*sin negates the plus term, cos*sin the minus term) and any
// canonicalisation of a resulting sine key.
func MulTrig(a, b TrigMonomial, set symbols.Set) (MulResult, error) {
	var res MulResult
	switch {
	case !a.flavour && !b.flavour:
		res.NegatePlus = true
	case a.flavour && !b.flavour:
		res.NegateMinus = true
	}
	va, err := unpack(set, a.code)
	if err != nil {
		return MulResult{}, err
	}
	vb, err := unpack(set, b.code)
	if err != nil {
		return MulResult{}, err
	}
	plus := make([]int64, len(va))
	minus := make([]int64, len(va))
	for i := range va {
		if plus[i], err = addChecked(va[i], vb[i]); err != nil {
			return MulResult{}, err
		}
		// The component ranges are symmetric, so -vb[i] is always
		// representable.
		if minus[i], err = addChecked(va[i], -vb[i]); err != nil {
			return MulResult{}, err
		}
	}
	signPlus := canonicalizeVec(plus)
	signMinus := canonicalizeVec(minus)
	codePlus, err := kronecker.Encode(plus)
	if err != nil {
		return MulResult{}, err
	}
	codeMinus, err := kronecker.Encode(minus)
	if err != nil {
		return MulResult{}, err
	}
	f := a.flavour == b.flavour
	res.Plus = TrigMonomial{code: codePlus, flavour: f}
	res.Minus = TrigMonomial{code: codeMinus, flavour: f}
	// A multiplier sign flip on a sine key negates the term.
	if signPlus && !f {
		res.NegatePlus = !res.NegatePlus
	}
	if signMinus && !f {
		res.NegateMinus = !res.NegateMinus
	}
	return res, nil
}

// Degree returns the trigonometric degree, the checked sum of the
// multipliers.
func (t TrigMonomial) Degree(set symbols.Set) (int64, error) {
	v, err := unpack(set, t.code)
	if err != nil {
		return 0, err
	}
	return sumChecked(v, false)
}

// PartialDegree returns the trigonometric degree restricted to the
// multipliers at the given positions.
func (t TrigMonomial) PartialDegree(p []int, set symbols.Set) (int64, error) {
	v, err := unpack(set, t.code)
	if err != nil {
		return 0, err
	}
	return pickChecked(v, p, false)
}

// Order returns the trigonometric order, the checked sum of the absolute
// values of the multipliers.
func (t TrigMonomial) Order(set symbols.Set) (int64, error) {
	v, err := unpack(set, t.code)
	if err != nil {
		return 0, err
	}
	return sumChecked(v, true)
}

// PartialOrder returns the trigonometric order restricted to the
// multipliers at the given positions.
func (t TrigMonomial) PartialOrder(p []int, set symbols.Set) (int64, error) {
	v, err := unpack(set, t.code)
	if err != nil {
		return 0, err
	}
	return pickChecked(v, p, true)
}

// Partial returns the partial derivative with respect to the symbol at
// position pos as a (scalar, key) pair. The flavour flips, and for a cosine
// the multiplier changes sign, following the elementary differentiation
// rules. A zero multiplier at pos yields (0, unit monomial).
func (t TrigMonomial) Partial(pos int, set symbols.Set) (int64, TrigMonomial, error) {
	v, err := unpack(set, t.code)
	if err != nil {
		return 0, TrigMonomial{}, err
	}
	if pos < 0 || pos >= len(v) {
		return 0, TrigMonomial{}, errs.NewInvalidArgument("invalid position %d for differentiation", pos)
	}
	if v[pos] == 0 {
		return 0, NewTrig(), nil
	}
	n := v[pos]
	if t.flavour {
		n = -n
	}
	return n, TrigMonomial{code: t.code, flavour: !t.flavour}, nil
}

// Integrate returns the antiderivative with respect to sym as a
// (scalar, key) pair. The flavour flips, and for a sine the multiplier
// changes sign. If sym is not in set, or its multiplier is zero, the result
// is (0, unit monomial): the caller must detect the zero scalar and refuse
// to divide by it.
func (t TrigMonomial) Integrate(sym symbols.Symbol, set symbols.Set) (int64, TrigMonomial, error) {
	v, err := unpack(set, t.code)
	if err != nil {
		return 0, TrigMonomial{}, err
	}
	i := set.Index(sym)
	if i < 0 || v[i] == 0 {
		return 0, NewTrig(), nil
	}
	n := v[i]
	if !t.flavour {
		n = -n
	}
	return n, TrigMonomial{code: t.code, flavour: !t.flavour}, nil
}

// Evaluate computes cos or sin of the linear combination of vals with the
// multipliers. vals must carry exactly one value per symbol in set. An
// empty set evaluates to 1 for a cosine and 0 for a sine.
func (t TrigMonomial) Evaluate(vals []float64, set symbols.Set) (float64, error) {
	if len(vals) != set.Len() {
		return 0, errs.NewInvalidArgument("evaluation requires %d values, got %d", set.Len(), len(vals))
	}
	v, err := unpack(set, t.code)
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		if t.flavour {
			return 1, nil
		}
		return 0, nil
	}
	var acc float64
	for i := range v {
		acc += vals[i] * float64(v[i])
	}
	if t.flavour {
		return math.Cos(acc), nil
	}
	return math.Sin(acc), nil
}

// SubsTerm is one term in the expansion produced by a substitution: a
// scalar factor and the residual key it multiplies.
type SubsTerm struct {
	Scalar float64
	Key    TrigMonomial
}

// Subs substitutes the value x for the symbol sym via the angle sum
// identities: with the angle split as n*sym + b, a cosine expands to
// cos(nx)*cos(b) - sin(nx)*sin(b) and a sine to sin(nx)*cos(b) +
// cos(nx)*sin(b). The residual keys share one code, with the symbol's
// multiplier zeroed; if canonicalising that code flips the multiplier
// signs, the sine branch absorbs the sign change. A symbol not in set
// behaves as n = 0.
func (t TrigMonomial) Subs(sym symbols.Symbol, x float64, set symbols.Set) ([2]SubsTerm, error) {
	v, err := unpack(set, t.code)
	if err != nil {
		return [2]SubsTerm{}, err
	}
	sCos, sSin := 1.0, 0.0
	for i := range v {
		if set.At(i) == sym {
			sCos = math.Cos(float64(v[i]) * x)
			sSin = math.Sin(float64(v[i]) * x)
			v[i] = 0
		}
	}
	signChanged := canonicalizeVec(v)
	code, err := kronecker.Encode(v)
	if err != nil {
		return [2]SubsTerm{}, err
	}
	cosKey := TrigMonomial{code: code, flavour: true}
	sinKey := TrigMonomial{code: code, flavour: false}
	var out [2]SubsTerm
	if t.flavour {
		out[0] = SubsTerm{Scalar: sCos, Key: cosKey}
		out[1] = SubsTerm{Scalar: sSin, Key: sinKey}
		// The sin*sin product carries a minus sign unless canonicalisation
		// already flipped it.
		if !signChanged {
			out[1].Scalar = -out[1].Scalar
		}
	} else {
		out[0] = SubsTerm{Scalar: sSin, Key: cosKey}
		out[1] = SubsTerm{Scalar: sCos, Key: sinKey}
		if signChanged {
			out[1].Scalar = -out[1].Scalar
		}
	}
	return out, nil
}

// TSubs substitutes known values c = cos(sym) and s = sin(sym) for the
// trigonometric functions of sym. cos(n*sym) and sin(n*sym) are expanded
// with the multiple angle formulae, as binomial sums over powers of c and
// s, and then combined with the residual key exactly as in Subs.
func (t TrigMonomial) TSubs(sym symbols.Symbol, c, s float64, set symbols.Set) ([2]SubsTerm, error) {
	v, err := unpack(set, t.code)
	if err != nil {
		return [2]SubsTerm{}, err
	}
	var n int64
	for i := range v {
		if set.At(i) == sym {
			n = v[i]
			v[i] = 0
		}
	}
	absN := n
	if absN < 0 {
		absN = -absN
	}
	// Power tables for c and s up to absN.
	cPow := make([]float64, absN+1)
	sPow := make([]float64, absN+1)
	cPow[0], sPow[0] = 1, 1
	for k := int64(0); k < absN; k++ {
		cPow[k+1] = cPow[k] * c
		sPow[k+1] = sPow[k] * s
	}
	cosNx := cosPhase(absN) * binomialFloat(absN, 0) * sPow[absN]
	sinNx := sinPhase(absN) * binomialFloat(absN, 0) * sPow[absN]
	for k := int64(0); k < absN; k++ {
		p := absN - (k + 1)
		tmp := binomialFloat(absN, k+1) * cPow[k+1] * sPow[p]
		cosNx += cosPhase(p) * tmp
		sinNx += sinPhase(p) * tmp
	}
	if absN != n {
		sinNx = -sinNx
	}
	signChanged := canonicalizeVec(v)
	code, err := kronecker.Encode(v)
	if err != nil {
		return [2]SubsTerm{}, err
	}
	cosKey := TrigMonomial{code: code, flavour: true}
	sinKey := TrigMonomial{code: code, flavour: false}
	var out [2]SubsTerm
	if t.flavour {
		out[0] = SubsTerm{Scalar: cosNx, Key: cosKey}
		out[1] = SubsTerm{Scalar: sinNx, Key: sinKey}
		if !signChanged {
			out[1].Scalar = -out[1].Scalar
		}
	} else {
		out[0] = SubsTerm{Scalar: sinNx, Key: cosKey}
		out[1] = SubsTerm{Scalar: cosNx, Key: sinKey}
		if signChanged {
			out[1].Scalar = -out[1].Scalar
		}
	}
	return out, nil
}

// cosPhase and sinPhase pick the sign of the leading term of the multiple
// angle expansion from the residue of n modulo 4.

func cosPhase(n int64) float64 {
	v := [4]float64{1, 0, -1, 0}
	return v[n%4]
}

func sinPhase(n int64) float64 {
	v := [4]float64{0, 1, 0, -1}
	return v[n%4]
}

func binomialFloat(n, k int64) float64 {
	f, _ := new(big.Float).SetInt(binomial(n, k)).Float64()
	return f
}

// MergeArgs returns a copy re-encoded against the extended reference set
// newArgs, with zero multipliers for the added symbols.
func (t TrigMonomial) MergeArgs(origArgs, newArgs symbols.Set) (TrigMonomial, error) {
	code, err := mergeArgs(origArgs, newArgs, t.code)
	if err != nil {
		return TrigMonomial{}, err
	}
	return TrigMonomial{code: code, flavour: t.flavour}, nil
}

// Trim returns a copy with the multipliers of the symbols in trimArgs
// removed from the reference set origArgs.
func (t TrigMonomial) Trim(trimArgs, origArgs symbols.Set) (TrigMonomial, error) {
	code, err := trim(trimArgs, origArgs, t.code)
	if err != nil {
		return TrigMonomial{}, err
	}
	return TrigMonomial{code: code, flavour: t.flavour}, nil
}

// TrimIdentify removes from candidates the symbols whose multiplier in the
// monomial is non-zero.
func (t TrigMonomial) TrimIdentify(candidates, args symbols.Set) (symbols.Set, error) {
	return trimIdentify(candidates, args, t.code)
}

// String renders the monomial against set, e.g. "cos(2*x-y)". The empty
// angle renders as an empty string regardless of flavour.
func (t TrigMonomial) String(set symbols.Set) string {
	if t.code == 0 {
		return ""
	}
	v, err := unpack(set, t.code)
	if err != nil {
		return "<incompatible>"
	}
	var b strings.Builder
	if t.flavour {
		b.WriteString("cos(")
	} else {
		b.WriteString("sin(")
	}
	empty := true
	for i, m := range v {
		if m == 0 {
			continue
		}
		if m > 0 && !empty {
			b.WriteByte('+')
		}
		if m == -1 {
			b.WriteByte('-')
		} else if m != 1 {
			b.WriteString(strconv.FormatInt(m, 10))
			b.WriteByte('*')
		}
		b.WriteString(string(set.At(i)))
		empty = false
	}
	b.WriteByte(')')
	return b.String()
}
