package monomial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbellamy/epicycle/errs"
	"github.com/tbellamy/epicycle/symbols"
)

func mustTrig(t *testing.T, flavour bool, mults ...int64) TrigMonomial {
	t.Helper()
	tm, err := TrigFromMultipliers(mults)
	require.NoError(t, err)
	return tm.WithFlavour(flavour)
}

func TestTrigZeroValue(t *testing.T) {
	set := symbols.NewSet("x")

	unit := NewTrig()
	assert.True(t, unit.Flavour())
	assert.Zero(t, unit.Code())
	assert.False(t, unit.IsIgnorable(set))

	u, err := unit.IsUnitary(set)
	require.NoError(t, err)
	assert.True(t, u)

	// sin of the empty angle is identically zero
	sinZero := unit.WithFlavour(false)
	assert.True(t, sinZero.IsIgnorable(set))
	u, err = sinZero.IsUnitary(set)
	require.NoError(t, err)
	assert.False(t, u)
}

func TestTrigCompatibility(t *testing.T) {
	set := symbols.NewSet("x", "y")

	assert.True(t, mustTrig(t, true, 1, -2).IsCompatible(set))
	assert.True(t, mustTrig(t, true, 0, 2).IsCompatible(set))

	// first nonzero multiplier negative: not canonical
	assert.False(t, mustTrig(t, true, -1, 2).IsCompatible(set))
	assert.False(t, mustTrig(t, true, 0, -2).IsCompatible(set))

	// zero-size set requires a zero code
	empty := symbols.NewSet()
	assert.True(t, NewTrig().IsCompatible(empty))
	assert.False(t, TrigFromCode(3, true).IsCompatible(empty))
}

func TestTrigCanonicalize(t *testing.T) {
	set := symbols.NewSet("x", "y")

	t.Run("already canonical", func(t *testing.T) {
		tm := mustTrig(t, true, 1, -2)
		got, changed, err := tm.Canonicalize(set)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.True(t, got.Equal(tm))
	})

	t.Run("flips all signs", func(t *testing.T) {
		tm := mustTrig(t, false, -1, 2)
		got, changed, err := tm.Canonicalize(set)
		require.NoError(t, err)
		assert.True(t, changed)
		v, err := got.Unpack(set)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, -2}, v)
		assert.False(t, got.Flavour())
	})

	t.Run("leading zeros skipped", func(t *testing.T) {
		tm := mustTrig(t, true, 0, -3)
		got, changed, err := tm.Canonicalize(set)
		require.NoError(t, err)
		assert.True(t, changed)
		v, err := got.Unpack(set)
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 3}, v)
	})
}

// cos(2x)*cos(3x) = [cos(5x) + cos(x)]/2: the plus and minus keys come out
// as cos(5x) and cos(-x), the latter canonicalised to cos(x) with no sign
// change.
func TestMulTrigCosCos(t *testing.T) {
	set := symbols.NewSet("x")

	res, err := MulTrig(mustTrig(t, true, 2), mustTrig(t, true, 3), set)
	require.NoError(t, err)

	vPlus, err := res.Plus.Unpack(set)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, vPlus)
	assert.True(t, res.Plus.Flavour())
	assert.False(t, res.NegatePlus)

	vMinus, err := res.Minus.Unpack(set)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, vMinus)
	assert.True(t, res.Minus.Flavour())
	assert.False(t, res.NegateMinus)
}

func TestMulTrigFlavourTable(t *testing.T) {
	set := symbols.NewSet("x")
	a := mustTrig(t, true, 2)

	cases := []struct {
		name        string
		f1, f2      bool
		wantFlavour bool
		negPlus     bool
		negMinus    bool
	}{
		{"cos cos", true, true, true, false, false},
		{"sin sin", false, false, true, true, false},
		{"sin cos", false, true, false, false, false},
		{"cos sin", true, false, false, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := MulTrig(a.WithFlavour(tc.f1), mustTrig(t, tc.f2, 3), set)
			require.NoError(t, err)
			assert.Equal(t, tc.wantFlavour, res.Plus.Flavour())
			assert.Equal(t, tc.wantFlavour, res.Minus.Flavour())
			assert.Equal(t, tc.negPlus, res.NegatePlus, "plus")
			// the minus key is 2x-3x = -x, canonicalised to x: on a sine
			// result that flip negates the coefficient once more
			negMinus := tc.negMinus
			if !tc.wantFlavour {
				negMinus = !negMinus
			}
			assert.Equal(t, negMinus, res.NegateMinus, "minus")
		})
	}
}

// Numerically validate the product identities at a sample angle.
func TestMulTrigNumeric(t *testing.T) {
	set := symbols.NewSet("x", "y")
	vals := []float64{0.7, -1.3}

	flavours := []bool{true, false}
	for _, f1 := range flavours {
		for _, f2 := range flavours {
			a := mustTrig(t, f1, 2, -1)
			b := mustTrig(t, f2, 1, 3)

			res, err := MulTrig(a, b, set)
			require.NoError(t, err)

			ea, err := a.Evaluate(vals, set)
			require.NoError(t, err)
			eb, err := b.Evaluate(vals, set)
			require.NoError(t, err)

			ep, err := res.Plus.Evaluate(vals, set)
			require.NoError(t, err)
			em, err := res.Minus.Evaluate(vals, set)
			require.NoError(t, err)
			if res.NegatePlus {
				ep = -ep
			}
			if res.NegateMinus {
				em = -em
			}
			assert.InDelta(t, ea*eb, (ep+em)/2, 1e-12,
				"flavours %v %v", f1, f2)
		}
	}
}

func TestTrigDegreeOrder(t *testing.T) {
	set := symbols.NewSet("x", "y", "z")
	tm := mustTrig(t, true, 2, -5, 1)

	d, err := tm.Degree(set)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), d)

	o, err := tm.Order(set)
	require.NoError(t, err)
	assert.Equal(t, int64(8), o)

	pd, err := tm.PartialDegree([]int{0, 1}, set)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), pd)

	po, err := tm.PartialOrder([]int{1}, set)
	require.NoError(t, err)
	assert.Equal(t, int64(5), po)
}

func TestTrigPartial(t *testing.T) {
	set := symbols.NewSet("x", "y")

	t.Run("cosine", func(t *testing.T) {
		n, d, err := mustTrig(t, true, 3, 1).Partial(0, set)
		require.NoError(t, err)
		// d/dx cos(3x+y) = -3 sin(3x+y)
		assert.Equal(t, int64(-3), n)
		assert.False(t, d.Flavour())
		v, err := d.Unpack(set)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 1}, v)
	})

	t.Run("sine", func(t *testing.T) {
		n, d, err := mustTrig(t, false, 3, 1).Partial(0, set)
		require.NoError(t, err)
		// d/dx sin(3x+y) = 3 cos(3x+y)
		assert.Equal(t, int64(3), n)
		assert.True(t, d.Flavour())
	})

	t.Run("zero multiplier", func(t *testing.T) {
		n, d, err := mustTrig(t, true, 0, 1).Partial(0, set)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.True(t, d.Equal(NewTrig()))
	})

	t.Run("bad position", func(t *testing.T) {
		_, _, err := mustTrig(t, true, 1, 0).Partial(5, set)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})
}

func TestTrigIntegrate(t *testing.T) {
	set := symbols.NewSet("x", "y")

	t.Run("cosine", func(t *testing.T) {
		n, im, err := mustTrig(t, true, 3, 1).Integrate("x", set)
		require.NoError(t, err)
		// ∫ cos(3x+y) dx = sin(3x+y)/3
		assert.Equal(t, int64(3), n)
		assert.False(t, im.Flavour())
	})

	t.Run("sine", func(t *testing.T) {
		n, im, err := mustTrig(t, false, 3, 1).Integrate("x", set)
		require.NoError(t, err)
		// ∫ sin(3x+y) dx = -cos(3x+y)/3
		assert.Equal(t, int64(-3), n)
		assert.True(t, im.Flavour())
	})

	t.Run("absent symbol", func(t *testing.T) {
		n, im, err := mustTrig(t, true, 3, 1).Integrate("w", set)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.True(t, im.Equal(NewTrig()))
	})
}

func TestTrigEvaluate(t *testing.T) {
	set := symbols.NewSet("x", "y")
	vals := []float64{0.5, 1.25}

	got, err := mustTrig(t, true, 2, -1).Evaluate(vals, set)
	require.NoError(t, err)
	assert.InDelta(t, math.Cos(2*0.5-1.25), got, 1e-15)

	got, err = mustTrig(t, false, 2, -1).Evaluate(vals, set)
	require.NoError(t, err)
	assert.InDelta(t, math.Sin(2*0.5-1.25), got, 1e-15)

	t.Run("empty set", func(t *testing.T) {
		empty := symbols.NewSet()
		got, err := NewTrig().Evaluate(nil, empty)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got)

		got, err = NewTrig().WithFlavour(false).Evaluate(nil, empty)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := mustTrig(t, true, 1, 0).Evaluate([]float64{1}, set)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})
}

// Substituting x in cos(n*x + b) must agree numerically with direct
// evaluation.
func TestTrigSubs(t *testing.T) {
	set := symbols.NewSet("x", "y")
	const xVal, yVal = 0.35, -0.8

	for _, flavour := range []bool{true, false} {
		for _, nx := range []int64{3, 0, -2} {
			tm, err := TrigFromMultipliers([]int64{nx, -1})
			require.NoError(t, err)
			tm = tm.WithFlavour(flavour)

			terms, err := tm.Subs("x", xVal, set)
			require.NoError(t, err)

			var got float64
			for _, term := range terms {
				kv, err := term.Key.Evaluate([]float64{xVal, yVal}, set)
				require.NoError(t, err)
				got += term.Scalar * kv
			}
			want, err := tm.Evaluate([]float64{xVal, yVal}, set)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-12, "flavour %v n %d", flavour, nx)

			// the substituted keys no longer mention x
			for _, term := range terms {
				v, err := term.Key.Unpack(set)
				require.NoError(t, err)
				assert.Zero(t, v[0])
			}
		}
	}
}

func TestTrigSubsAbsentSymbol(t *testing.T) {
	set := symbols.NewSet("x")
	tm := mustTrig(t, true, 2)

	terms, err := tm.Subs("q", 1.0, set)
	require.NoError(t, err)
	// cos nx -> 1, sin nx -> 0 and the key is unchanged
	assert.Equal(t, 1.0, terms[0].Scalar)
	assert.True(t, terms[0].Key.Equal(tm))
	assert.Equal(t, 0.0, -terms[1].Scalar)
}

// TSubs replaces cos(x) and sin(x) with known values; against exact values
// of cos and sin the expansion must reproduce direct evaluation.
func TestTrigTSubs(t *testing.T) {
	set := symbols.NewSet("x", "y")
	const xVal, yVal = 0.6, 1.1
	c, s := math.Cos(xVal), math.Sin(xVal)

	for _, flavour := range []bool{true, false} {
		for _, nx := range []int64{4, 1, 0, -3} {
			tm, err := TrigFromMultipliers([]int64{nx, -2})
			require.NoError(t, err)
			tm = tm.WithFlavour(flavour)

			terms, err := tm.TSubs("x", c, s, set)
			require.NoError(t, err)

			var got float64
			for _, term := range terms {
				kv, err := term.Key.Evaluate([]float64{xVal, yVal}, set)
				require.NoError(t, err)
				got += term.Scalar * kv
			}
			want, err := tm.Evaluate([]float64{xVal, yVal}, set)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-10, "flavour %v n %d", flavour, nx)
		}
	}
}

func TestTrigMergeArgsAndTrim(t *testing.T) {
	orig := symbols.NewSet("x", "z")
	merged := symbols.NewSet("x", "y", "z")
	tm := mustTrig(t, false, 2, -3)

	em, err := tm.MergeArgs(orig, merged)
	require.NoError(t, err)
	v, err := em.Unpack(merged)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 0, -3}, v)
	assert.False(t, em.Flavour())

	t.Run("trim preserves flavour", func(t *testing.T) {
		args := symbols.NewSet("x", "y", "z")
		tm := mustTrig(t, false, 2, 0, -3)
		trimmed, err := tm.Trim(symbols.NewSet("y"), args)
		require.NoError(t, err)
		assert.False(t, trimmed.Flavour())
		v, err := trimmed.Unpack(symbols.NewSet("x", "z"))
		require.NoError(t, err)
		assert.Equal(t, []int64{2, -3}, v)
	})

	t.Run("identify", func(t *testing.T) {
		args := symbols.NewSet("x", "y", "z")
		tm := mustTrig(t, true, 2, 0, -3)
		candidates, err := tm.TrimIdentify(args, args)
		require.NoError(t, err)
		assert.True(t, candidates.Equal(symbols.NewSet("y")))
	})
}

func TestTrigString(t *testing.T) {
	set := symbols.NewSet("x", "y")

	assert.Equal(t, "", NewTrig().String(set))
	assert.Equal(t, "", NewTrig().WithFlavour(false).String(set))
	assert.Equal(t, "cos(2*x-y)", mustTrig(t, true, 2, -1).String(set))
	assert.Equal(t, "sin(x+3*y)", mustTrig(t, false, 1, 3).String(set))
	assert.Equal(t, "cos(-x+y)", mustTrig(t, true, -1, 1).String(set))
}

func TestTrigEqualLess(t *testing.T) {
	a := mustTrig(t, true, 1)
	b := mustTrig(t, false, 1)

	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(b.WithFlavour(true)))
	assert.True(t, b.Less(a))
	assert.False(t, a.Less(b))
	assert.Equal(t, a.Hash(), b.Hash())
}
