package swap

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/markets"
	"perpsdk/pkg/tokens"
)

// SwapPathStats aggregates the hops of a swap path.
type SwapPathStats struct {
	SwapPath                     []common.Address `json:"swapPath"`
	TokenInAddress               common.Address   `json:"tokenInAddress"`
	TokenOutAddress              common.Address   `json:"tokenOutAddress"`
	TargetMarketAddress          common.Address   `json:"targetMarketAddress"`
	SwapSteps                    []SwapStats      `json:"swapSteps"`
	UsdOut                       *big.Int         `json:"usdOut"`
	AmountOut                    *big.Int         `json:"amountOut"`
	TotalSwapFeeUsd              *big.Int         `json:"totalSwapFeeUsd"`
	TotalSwapPriceImpactDeltaUsd *big.Int         `json:"totalSwapPriceImpactDeltaUsd"`
	TotalFeesDeltaUsd            *big.Int         `json:"totalFeesDeltaUsd"`
}

// PathParams describes a multi-hop swap.
type PathParams struct {
	MarketsInfoData          markets.MarketsInfoData
	SwapPath                 []common.Address
	InitialCollateralAddress common.Address
	WrappedNativeAddress     common.Address
	UsdIn                    *big.Int
	ShouldUnwrapNativeToken  bool
	ShouldApplyPriceImpact   bool
	IsAtomicSwap             bool
}

// GetSwapPathStats folds GetSwapStats over the path, feeding each hop's
// usdOut into the next hop's usdIn. It returns nil for an empty path or one
// that references an unknown market or a token a hop cannot take, and when
// usdIn is undefined.
func GetSwapPathStats(p PathParams) *SwapPathStats {
	if len(p.SwapPath) == 0 || p.UsdIn == nil {
		return nil
	}
	steps := make([]SwapStats, 0, len(p.SwapPath))
	usdOut := new(big.Int).Set(p.UsdIn)
	tokenInAddress := p.InitialCollateralAddress
	totalFeeUsd := new(big.Int)
	totalImpactUsd := new(big.Int)

	for i, marketAddress := range p.SwapPath {
		m := p.MarketsInfoData[marketAddress]
		if m == nil {
			return nil
		}
		tokenOut := markets.GetOppositeCollateral(m, tokenInAddress)
		if tokenOut == nil {
			return nil
		}
		tokenOutAddress := tokenOut.Address
		if i == len(p.SwapPath)-1 && p.ShouldUnwrapNativeToken && tokenOutAddress == p.WrappedNativeAddress {
			tokenOutAddress = tokens.NativeTokenAddress
		}

		step := GetSwapStats(StatsParams{
			Market:                 m,
			TokenInAddress:         tokenInAddress,
			TokenOutAddress:        tokenOutAddress,
			UsdIn:                  usdOut,
			ShouldApplyPriceImpact: p.ShouldApplyPriceImpact,
			IsAtomicSwap:           p.IsAtomicSwap,
		})
		totalFeeUsd.Add(totalFeeUsd, step.SwapFeeUsd)
		totalImpactUsd.Add(totalImpactUsd, step.PriceImpactDeltaUsd)
		usdOut = step.UsdOut
		tokenInAddress = step.TokenOutAddress
		steps = append(steps, step)
	}

	last := steps[len(steps)-1]
	totalFeesDelta := new(big.Int).Sub(totalImpactUsd, totalFeeUsd)
	return &SwapPathStats{
		SwapPath:                     append([]common.Address(nil), p.SwapPath...),
		TokenInAddress:               p.InitialCollateralAddress,
		TokenOutAddress:              last.TokenOutAddress,
		TargetMarketAddress:          last.MarketAddress,
		SwapSteps:                    steps,
		UsdOut:                       new(big.Int).Set(last.UsdOut),
		AmountOut:                    new(big.Int).Set(last.AmountOut),
		TotalSwapFeeUsd:              totalFeeUsd,
		TotalSwapPriceImpactDeltaUsd: totalImpactUsd,
		TotalFeesDeltaUsd:            totalFeesDelta,
	}
}

// OutputAddresses is the token a swap path delivers and the market it ends in.
type OutputAddresses struct {
	OutTokenAddress  *common.Address
	OutMarketAddress *common.Address
}

// GetSwapPathOutputAddresses resolves what a path delivers without pricing
// it. An empty path passes the collateral through, wrapping native tokens on
// increase and unwrapping on decrease when asked. Both fields are nil when a
// market on the path is unknown.
func GetSwapPathOutputAddresses(marketsData markets.MarketsInfoData, initialCollateralAddress common.Address, swapPath []common.Address, wrappedNativeAddress common.Address, shouldUnwrapNativeToken, isIncrease bool) OutputAddresses {
	if len(swapPath) == 0 {
		out := initialCollateralAddress
		switch {
		case isIncrease && tokens.IsNativeAddress(initialCollateralAddress):
			out = wrappedNativeAddress
		case !isIncrease && shouldUnwrapNativeToken && initialCollateralAddress == wrappedNativeAddress:
			out = tokens.NativeTokenAddress
		}
		return OutputAddresses{OutTokenAddress: &out}
	}

	tokenAddress := initialCollateralAddress
	var outMarket common.Address
	for _, marketAddress := range swapPath {
		m := marketsData[marketAddress]
		if m == nil {
			return OutputAddresses{}
		}
		tokenOut := markets.GetOppositeCollateral(m, tokenAddress)
		if tokenOut == nil {
			return OutputAddresses{}
		}
		tokenAddress = tokenOut.Address
		outMarket = marketAddress
	}
	if shouldUnwrapNativeToken && tokenAddress == wrappedNativeAddress {
		tokenAddress = tokens.NativeTokenAddress
	}
	return OutputAddresses{OutTokenAddress: &tokenAddress, OutMarketAddress: &outMarket}
}

// GetMaxSwapPathLiquidity is the smallest collateral liquidity of any hop's
// output side, or zero when the path is empty or unresolvable.
func GetMaxSwapPathLiquidity(marketsData markets.MarketsInfoData, swapPath []common.Address, initialCollateralAddress common.Address) *big.Int {
	if len(swapPath) == 0 {
		return new(big.Int)
	}
	minLiquidity := new(big.Int).Set(fixedpoint.MaxUint256)
	tokenInAddress := initialCollateralAddress
	for _, marketAddress := range swapPath {
		m := marketsData[marketAddress]
		if m == nil {
			return new(big.Int)
		}
		tokenOut := markets.GetOppositeCollateral(m, tokenInAddress)
		if tokenOut == nil {
			return new(big.Int)
		}
		isTokenOutLong := markets.GetTokenPoolType(m, tokenOut.Address) == markets.PoolLong
		liquidity := markets.GetAvailableUsdLiquidityForCollateral(m, isTokenOutLong)
		if liquidity.Cmp(minLiquidity) < 0 {
			minLiquidity = liquidity
		}
		tokenInAddress = tokenOut.Address
	}
	if minLiquidity.Cmp(fixedpoint.MaxUint256) == 0 {
		return new(big.Int)
	}
	return minLiquidity
}
