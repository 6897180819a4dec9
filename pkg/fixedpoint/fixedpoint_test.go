package fixedpoint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func assertBig(t *testing.T, expected, actual *big.Int) {
	t.Helper()
	require.NotNil(t, actual)
	assert.Equal(t, expected.String(), actual.String())
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name     string
		x, y, z  int64
		roundUp  bool
		expected int64
	}{
		{name: "truncates", x: 10, y: 10, z: 3, expected: 33},
		{name: "rounds_up_on_remainder", x: 10, y: 10, z: 3, roundUp: true, expected: 34},
		{name: "exact_division_no_round", x: 10, y: 3, z: 3, roundUp: true, expected: 10},
		{name: "negative_truncates_toward_zero", x: -10, y: 10, z: 3, expected: -33},
		{name: "negative_rounds_magnitude_up", x: -10, y: 10, z: 3, roundUp: true, expected: -34},
		{name: "negative_denominator", x: 10, y: 10, z: -3, roundUp: true, expected: -34},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MulDivRounded(bi(tt.x), bi(tt.y), bi(tt.z), tt.roundUp)
			assertBig(t, bi(tt.expected), got)
		})
	}
}

func TestMulDivZeroDenominatorPanics(t *testing.T) {
	assert.Panics(t, func() { MulDiv(bi(1), bi(1), bi(0)) })
}

func TestMulDivDoesNotMutateInputs(t *testing.T) {
	x, y, z := bi(7), bi(9), bi(2)
	_ = MulDivRoundUp(x, y, z)
	assertBig(t, bi(7), x)
	assertBig(t, bi(9), y)
	assertBig(t, bi(2), z)
}

func TestDivRoundUp(t *testing.T) {
	assertBig(t, bi(4), DivRoundUp(bi(10), bi(3)))
	assertBig(t, bi(5), DivRoundUp(bi(10), bi(2)))
	assertBig(t, bi(-3), DivRoundUp(bi(-10), bi(3)))
	assertBig(t, bi(0), DivRoundUp(bi(0), bi(3)))
}

func TestAvg(t *testing.T) {
	t.Run("ignores_nil", func(t *testing.T) {
		assertBig(t, bi(3), Avg(bi(2), nil, bi(4)))
	})
	t.Run("all_nil_is_undefined", func(t *testing.T) {
		assert.Nil(t, Avg(nil, nil))
		assert.Nil(t, Avg())
	})
	t.Run("zero_average_is_not_nil", func(t *testing.T) {
		got := Avg(bi(-1), bi(1))
		require.NotNil(t, got)
		assert.Equal(t, 0, got.Sign())
	})
}

func TestClampMinMax(t *testing.T) {
	assertBig(t, bi(5), Clamp(bi(10), bi(0), bi(5)))
	assertBig(t, bi(0), Clamp(bi(-3), bi(0), bi(5)))
	assertBig(t, bi(3), Clamp(bi(3), bi(0), bi(5)))
	assertBig(t, bi(-2), Min(bi(-2), bi(1)))
	assertBig(t, bi(1), Max(bi(-2), bi(1)))
	assertBig(t, bi(2), Abs(bi(-2)))
}

func TestApplySlippageToMinOut(t *testing.T) {
	assertBig(t, bi(10000), ApplySlippageToMinOut(0, bi(10000)))
	assertBig(t, bi(9900), ApplySlippageToMinOut(100, bi(10000)))
}

func TestApplySlippageToPrice(t *testing.T) {
	price := bi(100_000)
	assertBig(t, bi(101_000), ApplySlippageToPrice(100, price, true, true))
	assertBig(t, bi(99_000), ApplySlippageToPrice(100, price, true, false))
	assertBig(t, bi(99_000), ApplySlippageToPrice(100, price, false, true))
	assertBig(t, bi(101_000), ApplySlippageToPrice(100, price, false, false))
}

func TestBasisPoints(t *testing.T) {
	assertBig(t, bi(3333), GetBasisPoints(bi(1), bi(3), false))
	assertBig(t, bi(3334), GetBasisPoints(bi(1), bi(3), true))
	assertBig(t, bi(-3334), GetBasisPoints(bi(-1), bi(3), true))
	assertBig(t, bi(5000), GetBasisPoints(bi(1), bi(2), true))

	factor := BasisPointsToFactor(bi(50))
	assertBig(t, ExpandDecimals(bi(5), 27), factor)
	assertBig(t, bi(5), ApplyFactor(bi(1000), factor))
}

func TestApplyImpactFactor(t *testing.T) {
	t.Run("below_one_unit_is_zero", func(t *testing.T) {
		got := ApplyImpactFactor(ExpandDecimals(bi(5), 29), Precision, ExpandDecimals(bi(2), 30))
		assert.Equal(t, 0, got.Sign())
	})
	t.Run("linear_exponent", func(t *testing.T) {
		diff := ExpandDecimals(bi(1000), 30)
		factor := ExpandDecimals(bi(1), 28) // 1%
		got := ApplyImpactFactor(diff, factor, Precision)
		assertBig(t, ExpandDecimals(bi(10), 30), got)
	})
	t.Run("quadratic_exponent", func(t *testing.T) {
		diff := ExpandDecimals(bi(1000), 30)
		factor := ExpandDecimals(bi(1), 24)
		got := ApplyImpactFactor(diff, factor, ExpandDecimals(bi(2), 30))
		// 1000^2 * 1e-6 = 1 USD
		assertBig(t, Precision, got)
	})
	t.Run("fractional_exponent", func(t *testing.T) {
		diff := ExpandDecimals(bi(100), 30)
		exponent := new(big.Int).Quo(ExpandDecimals(bi(15), 30), bi(10))
		got := ApplyImpactFactor(diff, Precision, exponent)
		// 100^1.5 = 1000
		lo := ExpandDecimals(bi(999), 30)
		hi := ExpandDecimals(bi(1001), 30)
		assert.True(t, got.Cmp(lo) > 0 && got.Cmp(hi) < 0, "got %s", got)
	})
}

func TestToU256(t *testing.T) {
	assert.Equal(t, 0, ToU256(nil).Sign())
	assert.Equal(t, 0, ToU256(bi(-5)).Sign())
	assertBig(t, bi(5), ToU256(bi(5)))
	over := new(big.Int).Add(MaxUint256, bi(1))
	assertBig(t, MaxUint256, ToU256(over))
}

func TestOrZero(t *testing.T) {
	assert.Equal(t, 0, OrZero(nil).Sign())
	v := bi(9)
	assert.Same(t, v, OrZero(v))
}
