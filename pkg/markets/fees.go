package markets

import (
	"math/big"

	"perpsdk/pkg/fixedpoint"
)

// ReferralInfo carries the trader's referral tier. Both factors are
// Precision-scaled; DiscountFactor is the trader's share of the rebate.
type ReferralInfo struct {
	TotalRebateFactor *big.Int
	DiscountFactor    *big.Int
}

// PositionFee is the fee breakdown of a position size change.
type PositionFee struct {
	PositionFeeUsd *big.Int
	DiscountUsd    *big.Int
	TotalRebateUsd *big.Int
	UIFeeUsd       *big.Int
}

// GetSwapFee applies the market's swap fee factor to amount, which may be a
// token amount or USD. Atomic swaps use their own factor.
func GetSwapFee(m *MarketInfo, amount *big.Int, balanceWasImproved, isAtomicSwap bool) *big.Int {
	var factor *big.Int
	switch {
	case isAtomicSwap:
		factor = m.AtomicSwapFeeFactor
	case balanceWasImproved:
		factor = m.SwapFeeFactorForPositiveImpact
	default:
		factor = m.SwapFeeFactorForNegativeImpact
	}
	return fixedpoint.ApplyFactor(amount, fixedpoint.OrZero(factor))
}

// GetPositionFee prices a position size change. A referral discount comes out
// of the fee; the ui fee is charged on top.
func GetPositionFee(m *MarketInfo, sizeDeltaUsd *big.Int, balanceWasImproved bool, referral *ReferralInfo, uiFeeFactor *big.Int) PositionFee {
	factor := m.PositionFeeFactorForNegativeImpact
	if balanceWasImproved {
		factor = m.PositionFeeFactorForPositiveImpact
	}
	fee := PositionFee{
		PositionFeeUsd: fixedpoint.ApplyFactor(sizeDeltaUsd, fixedpoint.OrZero(factor)),
		DiscountUsd:    new(big.Int),
		TotalRebateUsd: new(big.Int),
		UIFeeUsd:       fixedpoint.ApplyFactor(sizeDeltaUsd, fixedpoint.OrZero(uiFeeFactor)),
	}
	if referral == nil {
		return fee
	}
	fee.TotalRebateUsd = fixedpoint.ApplyFactor(fee.PositionFeeUsd, fixedpoint.OrZero(referral.TotalRebateFactor))
	fee.DiscountUsd = fixedpoint.ApplyFactor(fee.TotalRebateUsd, fixedpoint.OrZero(referral.DiscountFactor))
	fee.PositionFeeUsd.Sub(fee.PositionFeeUsd, fee.DiscountUsd)
	return fee
}
