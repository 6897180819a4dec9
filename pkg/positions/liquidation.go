package positions

import (
	"math/big"

	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/markets"
	"perpsdk/pkg/tokens"
)

// LiquidationPriceParams describes a position for liquidation pricing.
type LiquidationPriceParams struct {
	Market                  *markets.MarketInfo
	CollateralToken         *tokens.Token
	SizeInUsd               *big.Int
	SizeInTokens            *big.Int
	CollateralAmount        *big.Int
	CollateralUsd           *big.Int
	PendingFundingFeesUsd   *big.Int
	PendingBorrowingFeesUsd *big.Int
	PendingImpactAmount     *big.Int
	MinCollateralUsd        *big.Int
	IsLong                  bool
	// UseMaxPriceImpact assumes the worst impact the market allows on close.
	UseMaxPriceImpact bool
	Referral          *markets.ReferralInfo
}

// GetLiquidationPrice returns the index price at which remaining collateral
// falls to the liquidation threshold, or nil when no such positive price
// exists. Each quotient is truncated before scaling to index decimals.
func GetLiquidationPrice(p LiquidationPriceParams) *big.Int {
	if p.SizeInUsd == nil || p.SizeInUsd.Sign() <= 0 || p.SizeInTokens == nil || p.SizeInTokens.Sign() <= 0 {
		return nil
	}
	m := p.Market
	indexToken := m.IndexToken

	closingFeeUsd := markets.GetPositionFee(m, p.SizeInUsd, false, p.Referral, nil).PositionFeeUsd
	pendingFeesUsd := GetPositionPendingFeesUsd(p.PendingFundingFeesUsd, p.PendingBorrowingFeesUsd)
	totalFeesUsd := new(big.Int).Add(pendingFeesUsd, closingFeeUsd)

	maxNegativeImpactUsd := fixedpoint.ApplyFactor(p.SizeInUsd, fixedpoint.OrZero(m.MaxPositionImpactFactorForLiquidations))
	maxNegativeImpactUsd.Neg(maxNegativeImpactUsd)

	impactUsd := maxNegativeImpactUsd
	if !p.UseMaxPriceImpact {
		impactUsd = closeImpactUsd(p, maxNegativeImpactUsd)
	}

	liquidationCollateralUsd := fixedpoint.ApplyFactor(p.SizeInUsd, fixedpoint.OrZero(m.MinCollateralFactor))
	if minUsd := fixedpoint.OrZero(p.MinCollateralUsd); liquidationCollateralUsd.Cmp(minUsd) < 0 {
		liquidationCollateralUsd = new(big.Int).Set(minUsd)
	}

	unit := fixedpoint.Pow10(indexToken.Decimals)
	var price *big.Int
	if tokens.GetIsEquivalentTokens(p.CollateralToken, indexToken) {
		collateralAmount := fixedpoint.OrZero(p.CollateralAmount)
		numerator := new(big.Int)
		denominator := new(big.Int)
		if p.IsLong {
			denominator.Add(p.SizeInTokens, collateralAmount)
			numerator.Add(p.SizeInUsd, liquidationCollateralUsd)
			numerator.Sub(numerator, impactUsd)
			numerator.Add(numerator, totalFeesUsd)
		} else {
			denominator.Sub(p.SizeInTokens, collateralAmount)
			numerator.Sub(p.SizeInUsd, liquidationCollateralUsd)
			numerator.Add(numerator, impactUsd)
			numerator.Sub(numerator, totalFeesUsd)
		}
		if denominator.Sign() == 0 {
			return nil
		}
		price = numerator.Quo(numerator, denominator)
		price.Mul(price, unit)
	} else {
		remainingCollateralUsd := new(big.Int).Add(fixedpoint.OrZero(p.CollateralUsd), impactUsd)
		remainingCollateralUsd.Sub(remainingCollateralUsd, pendingFeesUsd)
		remainingCollateralUsd.Sub(remainingCollateralUsd, closingFeeUsd)

		numerator := new(big.Int).Sub(liquidationCollateralUsd, remainingCollateralUsd)
		denominator := new(big.Int).Set(p.SizeInTokens)
		if p.IsLong {
			numerator.Add(numerator, p.SizeInUsd)
		} else {
			numerator.Sub(numerator, p.SizeInUsd)
			denominator.Neg(denominator)
		}
		price = numerator.Quo(numerator, denominator)
		price.Mul(price, unit)
	}

	if price.Sign() <= 0 {
		return nil
	}
	return price
}

// closeImpactUsd estimates the impact of closing the whole position: the
// capped market impact plus the pending impact share, within
// [maxNegativeImpactUsd, 0].
func closeImpactUsd(p LiquidationPriceParams, maxNegativeImpactUsd *big.Int) *big.Int {
	m := p.Market
	decrease := new(big.Int).Neg(p.SizeInUsd)
	impactUsd, err := markets.GetPriceImpactForPosition(m, decrease, p.IsLong)
	if err != nil {
		impactUsd = new(big.Int)
	}
	impactUsd = markets.CapPositionImpactUsdByMaxPriceImpactFactor(m, decrease, impactUsd)
	impactUsd = markets.CapPositionImpactUsdByMaxImpactPool(m, impactUsd)

	_, pendingUsd := GetProportionalPendingImpactValues(p.SizeInUsd, p.SizeInUsd, p.PendingImpactAmount, m.IndexToken)
	impactUsd.Add(impactUsd, pendingUsd)

	return fixedpoint.Clamp(impactUsd, maxNegativeImpactUsd, new(big.Int))
}
