package kronecker

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbellamy/epicycle/errs"
)

func TestLimits(t *testing.T) {
	ls := Limits()
	require.NotEmpty(t, ls)
	require.Greater(t, MaxSize(), 0)

	for n := 1; n <= MaxSize(); n++ {
		l, err := LimitFor(n)
		require.NoError(t, err)
		require.Len(t, l.MinMax, n)
		for _, m := range l.MinMax {
			assert.Positive(t, m, "component bound for size %d", n)
		}
		assert.Less(t, l.HMin, l.HMax, "bounds for size %d", n)
		assert.Equal(t, l.Span, l.HMax-l.HMin)
	}

	t.Run("out of range", func(t *testing.T) {
		_, err := LimitFor(0)
		assert.Error(t, err)
		_, err = LimitFor(MaxSize() + 1)
		assert.Error(t, err)
	})
}

func TestEncodeDecode(t *testing.T) {
	t.Run("empty vector", func(t *testing.T) {
		code, err := Encode(nil)
		require.NoError(t, err)
		assert.Zero(t, code)
	})

	t.Run("zero vector maps to zero", func(t *testing.T) {
		code, err := Encode([]int64{0, 0, 0})
		require.NoError(t, err)
		assert.Zero(t, code)
	})

	t.Run("round trip", func(t *testing.T) {
		cases := [][]int64{
			{0},
			{1},
			{-1},
			{5, -3},
			{1, 2, 3},
			{-7, 0, 7},
			{1, -1, 1, -1, 1},
		}
		for _, v := range cases {
			code, err := Encode(v)
			require.NoError(t, err)
			got, err := DecodeNew(code, len(v))
			require.NoError(t, err)
			assert.Equal(t, v, got, "vector %v (code %d)", v, code)
		}
	})

	t.Run("component bounds round trip", func(t *testing.T) {
		for n := 1; n <= 3; n++ {
			l, err := LimitFor(n)
			require.NoError(t, err)
			lo := make([]int64, n)
			hi := make([]int64, n)
			for i := range lo {
				lo[i] = -l.MinMax[i]
				hi[i] = l.MinMax[i]
			}
			for _, v := range [][]int64{lo, hi} {
				code, err := Encode(v)
				require.NoError(t, err)
				got, err := DecodeNew(code, n)
				require.NoError(t, err)
				assert.Equal(t, v, got)
			}
		}
	})

	t.Run("component out of bounds", func(t *testing.T) {
		l, err := LimitFor(2)
		require.NoError(t, err)
		_, err = Encode([]int64{l.MinMax[0] + 1, 0})
		assert.ErrorIs(t, err, errs.ErrOverflow)
	})

	t.Run("oversized vector", func(t *testing.T) {
		v := make([]int64, MaxSize()+1)
		_, err := Encode(v)
		assert.ErrorIs(t, err, errs.ErrOverflow)
	})

	t.Run("decode validation", func(t *testing.T) {
		_, err := DecodeNew(0, MaxSize()+1)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)

		_, err = DecodeNew(1, 0)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)

		l, lerr := LimitFor(1)
		require.NoError(t, lerr)
		_, err = DecodeNew(l.HMax+1, 1)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})

	t.Run("decode zero size zero code", func(t *testing.T) {
		got, err := DecodeNew(0, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

// Encoding must be a bijection on its domain: decode(encode(v)) == v for
// every in-bounds vector, across a spread of sizes.
func TestCodecRoundTrip_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	for size := 1; size <= 5; size++ {
		l, err := LimitFor(size)
		require.NoError(t, err)

		// One shared component range keeps the generated vectors inside
		// the bounds of every component.
		bound := l.MinMax[0]
		for _, m := range l.MinMax {
			if m < bound {
				bound = m
			}
		}

		properties.Property("round trip at size "+string(rune('0'+size)), prop.ForAll(
			func(vals []int64) bool {
				code, err := Encode(vals)
				if err != nil {
					return false
				}
				if code < l.HMin || code > l.HMax {
					return false
				}
				got, err := DecodeNew(code, len(vals))
				if err != nil {
					return false
				}
				for i := range vals {
					if got[i] != vals[i] {
						return false
					}
				}
				return true
			},
			gen.SliceOfN(size, gen.Int64Range(-bound, bound)),
		))
	}

	properties.TestingRun(t)
}
