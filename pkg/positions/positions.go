package positions

import (
	"math/big"

	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/markets"
	"perpsdk/pkg/tokens"
)

// PnlParams describes a position for pnl evaluation.
type PnlParams struct {
	Market       *markets.MarketInfo
	SizeInUsd    *big.Int
	SizeInTokens *big.Int
	MarkPrice    *big.Int
	IsLong       bool
}

// LeverageParams describes a position for leverage evaluation. A nil Pnl
// counts as zero.
type LeverageParams struct {
	SizeInUsd               *big.Int
	CollateralUsd           *big.Int
	Pnl                     *big.Int
	PendingFundingFeesUsd   *big.Int
	PendingBorrowingFeesUsd *big.Int
}

// NetValueParams lists every component of a position's close-out value.
type NetValueParams struct {
	CollateralUsd           *big.Int
	PendingFundingFeesUsd   *big.Int
	PendingBorrowingFeesUsd *big.Int
	Pnl                     *big.Int
	ClosingFeeUsd           *big.Int
	UIFeeUsd                *big.Int
	PendingImpactUsd        *big.Int
}

// GetEntryPrice is sizeInUsd per whole index token, or nil for an empty position.
func GetEntryPrice(sizeInUsd, sizeInTokens *big.Int, indexToken *tokens.Token) *big.Int {
	if sizeInTokens == nil || sizeInTokens.Sign() <= 0 || sizeInUsd == nil {
		return nil
	}
	return fixedpoint.MulDiv(sizeInUsd, fixedpoint.Pow10(indexToken.Decimals), sizeInTokens)
}

// GetPositionValueUsd values sizeInTokens at markPrice.
func GetPositionValueUsd(indexToken *tokens.Token, sizeInTokens, markPrice *big.Int) *big.Int {
	return tokens.ConvertToUsd(sizeInTokens, indexToken.Decimals, markPrice)
}

// GetPositionPnlUsd returns the position's pnl at markPrice. Profits are
// scaled down by the same ratio the pool's capped pnl bears to its raw pnl.
func GetPositionPnlUsd(p PnlParams) *big.Int {
	value := GetPositionValueUsd(p.Market.IndexToken, p.SizeInTokens, p.MarkPrice)
	if value == nil {
		return nil
	}
	var totalPnl *big.Int
	if p.IsLong {
		totalPnl = value.Sub(value, p.SizeInUsd)
	} else {
		totalPnl = new(big.Int).Sub(p.SizeInUsd, value)
	}
	if totalPnl.Sign() <= 0 {
		return totalPnl
	}

	poolPnl := markets.GetMarketPnl(p.Market, p.IsLong, true)
	poolUsd := markets.GetPoolUsdWithoutPnl(p.Market, p.IsLong, markets.MinPrice)
	cappedPnl := markets.GetCappedPoolPnl(p.Market, poolUsd, poolPnl, p.IsLong)

	if cappedPnl.Cmp(poolPnl) != 0 && cappedPnl.Sign() > 0 && poolPnl.Sign() > 0 {
		// reduced precision keeps the product inside uint256
		cappedWei := new(big.Int).Quo(cappedPnl, fixedpoint.WeiPrecision)
		poolWei := new(big.Int).Quo(poolPnl, fixedpoint.WeiPrecision)
		if poolWei.Sign() == 0 {
			return totalPnl
		}
		return fixedpoint.MulDiv(totalPnl, cappedWei, poolWei)
	}
	return totalPnl
}

// GetPositionPendingFeesUsd sums pending funding and borrowing fees.
func GetPositionPendingFeesUsd(pendingFundingFeesUsd, pendingBorrowingFeesUsd *big.Int) *big.Int {
	return new(big.Int).Add(fixedpoint.OrZero(pendingFundingFeesUsd), fixedpoint.OrZero(pendingBorrowingFeesUsd))
}

// GetPositionNetValue is what closing the position would return in USD.
func GetPositionNetValue(p NetValueParams) *big.Int {
	pendingFees := GetPositionPendingFeesUsd(p.PendingFundingFeesUsd, p.PendingBorrowingFeesUsd)
	net := new(big.Int).Set(fixedpoint.OrZero(p.CollateralUsd))
	net.Sub(net, pendingFees)
	net.Sub(net, fixedpoint.OrZero(p.ClosingFeeUsd))
	net.Sub(net, fixedpoint.OrZero(p.UIFeeUsd))
	net.Add(net, fixedpoint.OrZero(p.Pnl))
	return net.Add(net, fixedpoint.OrZero(p.PendingImpactUsd))
}

// GetLeverage returns size over remaining collateral in basis points, or nil
// when nothing remains.
func GetLeverage(p LeverageParams) *big.Int {
	if p.SizeInUsd == nil || p.CollateralUsd == nil {
		return nil
	}
	pendingFees := GetPositionPendingFeesUsd(p.PendingFundingFeesUsd, p.PendingBorrowingFeesUsd)
	remaining := new(big.Int).Add(p.CollateralUsd, fixedpoint.OrZero(p.Pnl))
	remaining.Sub(remaining, pendingFees)
	if remaining.Sign() <= 0 {
		return nil
	}
	return fixedpoint.MulDiv(p.SizeInUsd, fixedpoint.BasisPointsDivisor, remaining)
}

// GetMinCollateralFactorForPosition raises the market's min collateral
// factor in proportion to the side's open interest after openInterestDelta.
func GetMinCollateralFactorForPosition(m *markets.MarketInfo, openInterestDelta *big.Int, isLong bool) *big.Int {
	openInterest := markets.GetOpenInterestUsd(m, isLong)
	openInterest.Add(openInterest, fixedpoint.OrZero(openInterestDelta))
	if openInterest.Sign() < 0 {
		openInterest.SetInt64(0)
	}
	multiplier := m.MinCollateralFactorForOpenInterestShort
	if isLong {
		multiplier = m.MinCollateralFactorForOpenInterestLong
	}
	forOpenInterest := fixedpoint.ApplyFactor(openInterest, fixedpoint.OrZero(multiplier))
	return fixedpoint.Max(fixedpoint.OrZero(m.MinCollateralFactor), forOpenInterest)
}

// GetProportionalPendingImpactValues returns the share of a position's
// pending impact realised by closing sizeDeltaUsd of sizeInUsd, in index
// tokens and in USD. Negative shares round their magnitude up.
func GetProportionalPendingImpactValues(sizeInUsd, sizeDeltaUsd, pendingImpactAmount *big.Int, indexToken *tokens.Token) (amount, usd *big.Int) {
	pending := fixedpoint.OrZero(pendingImpactAmount)
	amount = new(big.Int)
	if sizeDeltaUsd.Sign() != 0 && sizeInUsd.Sign() != 0 {
		amount = fixedpoint.MulDivRounded(pending, sizeDeltaUsd, sizeInUsd, pending.Sign() < 0)
	}
	price := indexToken.Prices.MaxPrice
	if amount.Sign() > 0 {
		price = indexToken.Prices.MinPrice
	}
	usd = fixedpoint.OrZero(tokens.ConvertToUsd(amount, indexToken.Decimals, price))
	return amount, usd
}
