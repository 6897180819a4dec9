package swap

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/markets"
	"perpsdk/pkg/tokens"
)

// SwapStats is the outcome of routing usdIn through one market.
type SwapStats struct {
	MarketAddress   common.Address `json:"marketAddress"`
	TokenInAddress  common.Address `json:"tokenInAddress"`
	TokenOutAddress common.Address `json:"tokenOutAddress"`
	IsWrap          bool           `json:"isWrap"`
	IsUnwrap        bool           `json:"isUnwrap"`

	SwapFeeAmount       *big.Int `json:"swapFeeAmount"`
	SwapFeeUsd          *big.Int `json:"swapFeeUsd"`
	PriceImpactDeltaUsd *big.Int `json:"priceImpactDeltaUsd"`
	AmountIn            *big.Int `json:"amountIn"`
	AmountInAfterFees   *big.Int `json:"amountInAfterFees"`
	UsdIn               *big.Int `json:"usdIn"`
	AmountOut           *big.Int `json:"amountOut"`
	UsdOut              *big.Int `json:"usdOut"`

	// IsOutLiquidity and IsOutCapacity are advisory; the contracts enforce them.
	IsOutLiquidity bool `json:"isOutLiquidity"`
	IsOutCapacity  bool `json:"isOutCapacity"`
}

// StatsParams describes one hop.
type StatsParams struct {
	Market                 *markets.MarketInfo
	TokenInAddress         common.Address
	TokenOutAddress        common.Address
	UsdIn                  *big.Int
	ShouldApplyPriceImpact bool
	IsAtomicSwap           bool
}

// GetSwapStats prices a single hop. A price impact failure does not
// propagate: the hop degrades to zero output flagged as out of liquidity.
// A nil market or usdIn leaves every amount nil.
func GetSwapStats(p StatsParams) SwapStats {
	stats := SwapStats{
		TokenInAddress:  p.TokenInAddress,
		TokenOutAddress: p.TokenOutAddress,
		IsWrap:          tokens.IsNativeAddress(p.TokenInAddress),
		IsUnwrap:        tokens.IsNativeAddress(p.TokenOutAddress),
	}
	m := p.Market
	if m == nil || p.UsdIn == nil {
		return stats
	}
	stats.MarketAddress = m.MarketTokenAddress
	stats.UsdIn = new(big.Int).Set(p.UsdIn)

	tokenInIsLong := markets.GetTokenPoolType(m, p.TokenInAddress) == markets.PoolLong
	tokenOutIsLong := markets.GetTokenPoolType(m, p.TokenOutAddress) == markets.PoolLong
	tokenIn, tokenOut := sideToken(m, tokenInIsLong), sideToken(m, tokenOutIsLong)

	priceIn := tokenIn.Prices.MinPrice
	priceOut := tokenOut.Prices.MaxPrice
	amountIn := fixedpoint.OrZero(tokens.ConvertToTokenAmount(p.UsdIn, tokenIn.Decimals, priceIn))
	stats.AmountIn = amountIn

	impactUsd, err := markets.GetPriceImpactForSwap(m, tokenIn, tokenOut, p.UsdIn, new(big.Int).Neg(p.UsdIn))
	if err != nil {
		stats.SwapFeeAmount = new(big.Int)
		stats.SwapFeeUsd = new(big.Int)
		stats.PriceImpactDeltaUsd = new(big.Int)
		stats.AmountInAfterFees = new(big.Int).Set(amountIn)
		stats.AmountOut = new(big.Int)
		stats.UsdOut = new(big.Int)
		stats.IsOutLiquidity = true
		return stats
	}

	balanceWasImproved := impactUsd.Sign() > 0
	stats.SwapFeeAmount = markets.GetSwapFee(m, amountIn, balanceWasImproved, p.IsAtomicSwap)
	stats.SwapFeeUsd = markets.GetSwapFee(m, p.UsdIn, balanceWasImproved, p.IsAtomicSwap)

	// Impact adjusts the input before conversion. Positive impact is paid in
	// tokenOut up to its impact pool; the excess spills over into tokenIn up
	// to that pool. The reported impact is what the pools actually pay.
	amountInAfterFees := new(big.Int).Sub(amountIn, stats.SwapFeeAmount)
	positiveImpactAmount := new(big.Int)
	impactInAmount := new(big.Int)
	if impactUsd.Sign() > 0 {
		if out, capErr := markets.ApplySwapImpactWithCap(m, tokenOut, impactUsd); capErr == nil {
			positiveImpactAmount = out.ImpactDeltaAmount
			if out.CappedDiffUsd.Sign() > 0 {
				if in, inErr := markets.ApplySwapImpactWithCap(m, tokenIn, out.CappedDiffUsd); inErr == nil {
					impactInAmount = in.ImpactDeltaAmount
				}
			}
		}
	} else if in, capErr := markets.ApplySwapImpactWithCap(m, tokenIn, impactUsd); capErr == nil {
		impactInAmount = in.ImpactDeltaAmount
	}
	stats.PriceImpactDeltaUsd = new(big.Int).Add(
		fixedpoint.OrZero(tokens.ConvertToUsd(positiveImpactAmount, tokenOut.Decimals, priceOut)),
		fixedpoint.OrZero(tokens.ConvertToUsd(impactInAmount, tokenIn.Decimals, priceIn)),
	)
	if p.ShouldApplyPriceImpact {
		amountInAfterFees.Add(amountInAfterFees, impactInAmount)
	}

	usdInAfterFees := fixedpoint.OrZero(tokens.ConvertToUsd(amountInAfterFees, tokenIn.Decimals, priceIn))
	amountOut := fixedpoint.OrZero(tokens.ConvertToTokenAmount(usdInAfterFees, tokenOut.Decimals, priceOut))
	if p.ShouldApplyPriceImpact {
		amountOut.Add(amountOut, positiveImpactAmount)
	}

	if amountOut.Sign() < 0 {
		amountOut.SetInt64(0)
	}
	usdOut := fixedpoint.OrZero(tokens.ConvertToUsd(amountOut, tokenOut.Decimals, priceOut))

	stats.AmountInAfterFees = amountInAfterFees
	stats.AmountOut = amountOut
	stats.UsdOut = usdOut

	liquidityUsd := markets.GetAvailableUsdLiquidityForCollateral(m, tokenOutIsLong)
	liquidity := fixedpoint.OrZero(tokens.ConvertToTokenAmount(liquidityUsd, tokenOut.Decimals, priceOut))
	stats.IsOutLiquidity = liquidity.Cmp(amountOut) < 0

	poolAmount := m.ShortPoolAmount
	maxPoolAmount := m.MaxShortPoolAmount
	if tokenInIsLong {
		poolAmount, maxPoolAmount = m.LongPoolAmount, m.MaxLongPoolAmount
	}
	if maxPoolAmount != nil {
		nextPool := new(big.Int).Add(fixedpoint.OrZero(poolAmount), amountInAfterFees)
		stats.IsOutCapacity = nextPool.Cmp(maxPoolAmount) > 0
	}
	return stats
}

func sideToken(m *markets.MarketInfo, isLong bool) *tokens.Token {
	if isLong {
		return m.LongToken
	}
	return m.ShortToken
}
