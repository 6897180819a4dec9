package fixedpoint

import (
	"math"
	"math/big"
)

var floatToWeiDivisor = Pow10(12)

// ApplyImpactFactor returns (diff^exponent)*factor/Precision, where diff and
// exponent are Precision-scaled. Diffs below one unit produce no impact.
// Whole-number exponents are evaluated exactly at 10^18 precision; fractional
// exponents fall back to float64 pow.
func ApplyImpactFactor(diff, factor, exponent *big.Int) *big.Int {
	if diff.Cmp(Precision) < 0 {
		return new(big.Int)
	}
	powered := applyExponentFactor(diff, exponent)
	return MulDiv(powered, factor, Precision)
}

func applyExponentFactor(value, exponent *big.Int) *big.Int {
	if exponent.Cmp(Precision) == 0 {
		return new(big.Int).Set(value)
	}

	whole, rem := new(big.Int).QuoRem(exponent, Precision, new(big.Int))
	if rem.Sign() == 0 && whole.Sign() > 0 && whole.IsInt64() {
		wei := new(big.Int).Quo(value, floatToWeiDivisor)
		result := new(big.Int).Set(wei)
		for i := int64(1); i < whole.Int64(); i++ {
			result.Mul(result, wei)
			result.Quo(result, WeiPrecision)
		}
		return result.Mul(result, floatToWeiDivisor)
	}

	base, _ := new(big.Float).Quo(new(big.Float).SetInt(value), new(big.Float).SetInt(Precision)).Float64()
	exp, _ := new(big.Float).Quo(new(big.Float).SetInt(exponent), new(big.Float).SetInt(Precision)).Float64()
	powered := math.Round(math.Pow(base, exp) * 1e30)
	if math.IsInf(powered, 0) || math.IsNaN(powered) {
		return new(big.Int).Set(MaxUint256)
	}
	out, _ := new(big.Float).SetFloat64(powered).Int(nil)
	return out
}
