package fixedpoint

import (
	"math/big"

	ethmath "github.com/ethereum/go-ethereum/common/math"
)

// Shared fixed-point scales. USD values, prices and factors all carry Precision.
var (
	// Precision is the 10^30 scale used for USD amounts, prices and ratio factors.
	Precision = ExpandDecimals(big.NewInt(1), 30)
	// WeiPrecision is the 10^18 scale used where 10^30 products could overflow uint256.
	WeiPrecision = ExpandDecimals(big.NewInt(1), 18)
	// BasisPointsDivisor is 100% expressed in basis points.
	BasisPointsDivisor = big.NewInt(10_000)
	// MaxUint256 is the largest value the contracts can hold.
	MaxUint256 = ethmath.MaxBig256
)

// BasisPoints is the integer form of BasisPointsDivisor for int-typed slippage inputs.
const BasisPoints = 10_000

// ExpandDecimals returns n * 10^decimals.
func ExpandDecimals(n *big.Int, decimals int) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return scale.Mul(scale, n)
}

// Pow10 returns 10^decimals.
func Pow10(decimals int) *big.Int {
	return ExpandDecimals(big.NewInt(1), decimals)
}

// MulDiv returns x*y/z truncated toward zero. It panics when z is zero.
func MulDiv(x, y, z *big.Int) *big.Int {
	product := new(big.Int).Mul(x, y)
	return product.Quo(product, z)
}

// MulDivRoundUp returns x*y/z with the magnitude rounded away from zero when
// the division leaves a remainder.
func MulDivRoundUp(x, y, z *big.Int) *big.Int {
	product := new(big.Int).Mul(x, y)
	return RoundUpMagnitudeDivision(product, z)
}

// MulDivRounded dispatches to MulDiv or MulDivRoundUp.
func MulDivRounded(x, y, z *big.Int, roundUpMagnitude bool) *big.Int {
	if roundUpMagnitude {
		return MulDivRoundUp(x, y, z)
	}
	return MulDiv(x, y, z)
}

// RoundUpMagnitudeDivision divides a by b and, on a non-zero remainder, moves
// the quotient one step away from zero.
func RoundUpMagnitudeDivision(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() == 0 {
		return q
	}
	if a.Sign()*b.Sign() < 0 {
		return q.Sub(q, big.NewInt(1))
	}
	return q.Add(q, big.NewInt(1))
}

// DivRoundUp returns ceil(a/b).
func DivRoundUp(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 && a.Sign()*b.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// Avg averages the non-nil values. It returns nil when every value is nil.
func Avg(values ...*big.Int) *big.Int {
	sum := new(big.Int)
	count := int64(0)
	for _, v := range values {
		if v == nil {
			continue
		}
		sum.Add(sum, v)
		count++
	}
	if count == 0 {
		return nil
	}
	return sum.Quo(sum, big.NewInt(count))
}

// Min returns a copy of the smaller value.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Max returns a copy of the larger value.
func Max(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Abs returns |a|.
func Abs(a *big.Int) *big.Int {
	return new(big.Int).Abs(a)
}

// Neg returns -a.
func Neg(a *big.Int) *big.Int {
	return new(big.Int).Neg(a)
}

// Clamp bounds value to [lo, hi].
func Clamp(value, lo, hi *big.Int) *big.Int {
	if value.Cmp(lo) < 0 {
		return new(big.Int).Set(lo)
	}
	if value.Cmp(hi) > 0 {
		return new(big.Int).Set(hi)
	}
	return new(big.Int).Set(value)
}

// ApplyFactor returns value*factor/Precision.
func ApplyFactor(value, factor *big.Int) *big.Int {
	return MulDiv(value, factor, Precision)
}

// GetBasisPoints expresses numerator/denominator in basis points. With
// shouldRoundUp the magnitude is rounded away from zero on a remainder.
func GetBasisPoints(numerator, denominator *big.Int, shouldRoundUp bool) *big.Int {
	scaled := new(big.Int).Mul(numerator, BasisPointsDivisor)
	q, r := new(big.Int).QuoRem(scaled, denominator, new(big.Int))
	if shouldRoundUp && r.Sign() != 0 {
		if q.Sign() < 0 || (q.Sign() == 0 && scaled.Sign()*denominator.Sign() < 0) {
			return q.Sub(q, big.NewInt(1))
		}
		return q.Add(q, big.NewInt(1))
	}
	return q
}

// BasisPointsToFactor converts basis points into a Precision-scaled factor.
func BasisPointsToFactor(bps *big.Int) *big.Int {
	return MulDiv(bps, Precision, BasisPointsDivisor)
}

// ApplySlippageToMinOut lowers minOutputAmount by slippage basis points.
func ApplySlippageToMinOut(slippageBps int64, minOutputAmount *big.Int) *big.Int {
	slippageBasisPoints := big.NewInt(BasisPoints - slippageBps)
	return MulDiv(minOutputAmount, slippageBasisPoints, BasisPointsDivisor)
}

// ApplySlippageToPrice moves price against the trader: up for long increases
// and short decreases, down otherwise.
func ApplySlippageToPrice(slippageBps int64, price *big.Int, isIncrease, isLong bool) *big.Int {
	shouldIncreasePrice := isLong
	if !isIncrease {
		shouldIncreasePrice = !isLong
	}
	slippageBasisPoints := int64(BasisPoints) - slippageBps
	if shouldIncreasePrice {
		slippageBasisPoints = int64(BasisPoints) + slippageBps
	}
	return MulDiv(price, big.NewInt(slippageBasisPoints), BasisPointsDivisor)
}

// ToU256 clamps a signed value into the uint256 range the contracts accept.
func ToU256(v *big.Int) *big.Int {
	if v == nil || v.Sign() <= 0 {
		return new(big.Int)
	}
	if v.Cmp(MaxUint256) > 0 {
		return new(big.Int).Set(MaxUint256)
	}
	return new(big.Int).Set(v)
}

// OrZero returns v, or a fresh zero when v is nil.
func OrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
