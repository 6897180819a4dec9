package markets

import (
	"errors"
	"fmt"
	"math/big"

	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/tokens"
)

var (
	// ErrNegativePoolAmount is returned when a delta would drain a pool below zero.
	ErrNegativePoolAmount = errors.New("markets: negative pool amount")
	// ErrInvalidSwapTokens is returned when swap tokens are not the market's collaterals.
	ErrInvalidSwapTokens = errors.New("markets: invalid swap tokens")
)

// ImpactParams is the before/after balance of two sides plus the curve.
type ImpactParams struct {
	CurrentLongUsd  *big.Int
	CurrentShortUsd *big.Int
	NextLongUsd     *big.Int
	NextShortUsd    *big.Int
	FactorPositive  *big.Int
	FactorNegative  *big.Int
	ExponentFactor  *big.Int
}

// SwapImpact is the token amount of a swap impact after the pool cap, plus
// the USD that did not fit.
type SwapImpact struct {
	ImpactDeltaAmount *big.Int
	CappedDiffUsd     *big.Int
}

// GetPriceImpactUsd prices a change in pool balance. Moving towards balance is
// positive, away from it negative. A side crossing over pays the negative
// curve on its new imbalance and is credited the positive curve on the old.
func GetPriceImpactUsd(p ImpactParams) (*big.Int, error) {
	if p.NextLongUsd.Sign() < 0 || p.NextShortUsd.Sign() < 0 {
		return nil, ErrNegativePoolAmount
	}
	currentDiff := new(big.Int).Abs(new(big.Int).Sub(p.CurrentLongUsd, p.CurrentShortUsd))
	nextDiff := new(big.Int).Abs(new(big.Int).Sub(p.NextLongUsd, p.NextShortUsd))

	exponent := fixedpoint.OrZero(p.ExponentFactor)
	factorPositive := fixedpoint.OrZero(p.FactorPositive)
	factorNegative := fixedpoint.OrZero(p.FactorNegative)

	isSameSideRebalance := (p.CurrentLongUsd.Cmp(p.CurrentShortUsd) < 0) == (p.NextLongUsd.Cmp(p.NextShortUsd) < 0)
	if isSameSideRebalance {
		hasPositiveImpact := nextDiff.Cmp(currentDiff) < 0
		factor := factorNegative
		if hasPositiveImpact {
			factor = factorPositive
		}
		currentImpact := fixedpoint.ApplyImpactFactor(currentDiff, factor, exponent)
		nextImpact := fixedpoint.ApplyImpactFactor(nextDiff, factor, exponent)
		delta := currentImpact.Sub(currentImpact, nextImpact).Abs(currentImpact)
		if hasPositiveImpact {
			return delta, nil
		}
		return delta.Neg(delta), nil
	}

	positiveImpact := fixedpoint.ApplyImpactFactor(currentDiff, factorPositive, exponent)
	negativeImpact := fixedpoint.ApplyImpactFactor(nextDiff, factorNegative, exponent)
	delta := new(big.Int).Sub(positiveImpact, negativeImpact)
	return delta, nil
}

// GetPriceImpactForSwap prices swapping usdDeltaA of tokenA for usdDeltaB of
// tokenB against the pool at mid prices, and against the virtual inventory
// when one is configured. The worse of the two applies to negative impact.
func GetPriceImpactForSwap(m *MarketInfo, tokenA, tokenB *tokens.Token, usdDeltaA, usdDeltaB *big.Int) (*big.Int, error) {
	poolTypeA := GetTokenPoolType(m, tokenA.Address)
	poolTypeB := GetTokenPoolType(m, tokenB.Address)
	if poolTypeA == PoolNone || poolTypeB == PoolNone || (poolTypeA == poolTypeB && !m.IsSameCollaterals) {
		return nil, fmt.Errorf("%w: %s -> %s in %s", ErrInvalidSwapTokens, tokenA.Address.Hex(), tokenB.Address.Hex(), m.MarketTokenAddress.Hex())
	}

	longToken, shortToken := tokenB, tokenA
	longDelta, shortDelta := usdDeltaB, usdDeltaA
	if poolTypeA == PoolLong {
		longToken, shortToken = tokenA, tokenB
		longDelta, shortDelta = usdDeltaA, usdDeltaB
	}

	params := nextPoolParams(longToken, shortToken, fixedpoint.OrZero(m.LongPoolAmount), fixedpoint.OrZero(m.ShortPoolAmount), longDelta, shortDelta)
	params.FactorPositive = m.SwapImpactFactorPositive
	params.FactorNegative = m.SwapImpactFactorNegative
	params.ExponentFactor = m.SwapImpactExponentFactor
	impact, err := GetPriceImpactUsd(params)
	if err != nil {
		return nil, err
	}
	if impact.Sign() > 0 {
		return impact, nil
	}

	virtualLong := fixedpoint.OrZero(m.VirtualPoolAmountForLongToken)
	virtualShort := fixedpoint.OrZero(m.VirtualPoolAmountForShortToken)
	if virtualLong.Sign() <= 0 || virtualShort.Sign() <= 0 {
		return impact, nil
	}
	virtual := nextPoolParams(longToken, shortToken, virtualLong, virtualShort, longDelta, shortDelta)
	virtual.FactorPositive = m.SwapImpactFactorPositive
	virtual.FactorNegative = m.SwapImpactFactorNegative
	virtual.ExponentFactor = m.SwapImpactExponentFactor
	virtualImpact, err := GetPriceImpactUsd(virtual)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Min(impact, virtualImpact), nil
}

func nextPoolParams(longToken, shortToken *tokens.Token, longAmount, shortAmount, longDelta, shortDelta *big.Int) ImpactParams {
	longUsd := fixedpoint.OrZero(tokens.ConvertToUsd(longAmount, longToken.Decimals, tokens.GetMidPrice(longToken.Prices)))
	shortUsd := fixedpoint.OrZero(tokens.ConvertToUsd(shortAmount, shortToken.Decimals, tokens.GetMidPrice(shortToken.Prices)))
	return ImpactParams{
		CurrentLongUsd:  longUsd,
		CurrentShortUsd: shortUsd,
		NextLongUsd:     new(big.Int).Add(longUsd, longDelta),
		NextShortUsd:    new(big.Int).Add(shortUsd, shortDelta),
	}
}

// GetPriceImpactForPosition prices a change of sizeDeltaUsd (negative when
// decreasing) in one side's open interest.
func GetPriceImpactForPosition(m *MarketInfo, sizeDeltaUsd *big.Int, isLong bool) (*big.Int, error) {
	params := nextOpenInterestParams(GetOpenInterestUsd(m, true), GetOpenInterestUsd(m, false), sizeDeltaUsd, isLong)
	params.FactorPositive = m.PositionImpactFactorPositive
	params.FactorNegative = m.PositionImpactFactorNegative
	params.ExponentFactor = m.PositionImpactExponentFactor
	impact, err := GetPriceImpactUsd(params)
	if err != nil {
		return nil, err
	}
	if impact.Sign() > 0 {
		return impact, nil
	}

	inventory := fixedpoint.OrZero(m.VirtualInventoryForPositions)
	if inventory.Sign() == 0 {
		return impact, nil
	}
	currentLong, currentShort := new(big.Int), new(big.Int)
	if inventory.Sign() > 0 {
		currentShort.Set(inventory)
	} else {
		currentLong.Neg(inventory)
	}
	if sizeDeltaUsd.Sign() < 0 {
		offset := new(big.Int).Abs(sizeDeltaUsd)
		currentLong.Add(currentLong, offset)
		currentShort.Add(currentShort, offset)
	}
	virtual := nextOpenInterestParams(currentLong, currentShort, sizeDeltaUsd, isLong)
	virtual.FactorPositive = m.PositionImpactFactorPositive
	virtual.FactorNegative = m.PositionImpactFactorNegative
	virtual.ExponentFactor = m.PositionImpactExponentFactor
	virtualImpact, err := GetPriceImpactUsd(virtual)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Min(impact, virtualImpact), nil
}

func nextOpenInterestParams(currentLong, currentShort, usdDelta *big.Int, isLong bool) ImpactParams {
	nextLong := new(big.Int).Set(currentLong)
	nextShort := new(big.Int).Set(currentShort)
	if isLong {
		nextLong.Add(nextLong, usdDelta)
	} else {
		nextShort.Add(nextShort, usdDelta)
	}
	return ImpactParams{
		CurrentLongUsd:  currentLong,
		CurrentShortUsd: currentShort,
		NextLongUsd:     nextLong,
		NextShortUsd:    nextShort,
	}
}

// CapPositionImpactUsdByMaxPriceImpactFactor bounds |impact| by the market's
// max impact factor for its sign. The positive cap never exceeds the negative.
func CapPositionImpactUsdByMaxPriceImpactFactor(m *MarketInfo, sizeDeltaUsd, impactUsd *big.Int) *big.Int {
	maxPositive := fixedpoint.OrZero(m.MaxPositionImpactFactorPositive)
	maxNegative := fixedpoint.OrZero(m.MaxPositionImpactFactorNegative)
	if maxPositive.Cmp(maxNegative) > 0 {
		maxPositive = maxNegative
	}
	factor := maxNegative
	if impactUsd.Sign() > 0 {
		factor = maxPositive
	}
	maxImpact := fixedpoint.ApplyFactor(new(big.Int).Abs(sizeDeltaUsd), factor)
	if new(big.Int).Abs(impactUsd).Cmp(maxImpact) <= 0 {
		return new(big.Int).Set(impactUsd)
	}
	if impactUsd.Sign() > 0 {
		return maxImpact
	}
	return maxImpact.Neg(maxImpact)
}

// CapPositionImpactUsdByMaxImpactPool bounds positive impact by what the
// position impact pool can pay out at the index min price.
func CapPositionImpactUsdByMaxImpactPool(m *MarketInfo, impactUsd *big.Int) *big.Int {
	if impactUsd.Sign() < 0 {
		return new(big.Int).Set(impactUsd)
	}
	poolAmount := fixedpoint.OrZero(m.PositionImpactPoolAmount)
	maxImpact := fixedpoint.OrZero(tokens.ConvertToUsd(poolAmount, m.IndexToken.Decimals, m.IndexToken.Prices.MinPrice))
	return fixedpoint.Min(impactUsd, maxImpact)
}

// GetCappedPositionImpactUsd prices a position change and applies both caps
// to positive impact. Negative impact is only capped by the factor.
func GetCappedPositionImpactUsd(m *MarketInfo, sizeDeltaUsd *big.Int, isLong, isIncrease bool) (*big.Int, error) {
	delta := new(big.Int).Set(sizeDeltaUsd)
	if !isIncrease {
		delta.Neg(delta)
	}
	impact, err := GetPriceImpactForPosition(m, delta, isLong)
	if err != nil {
		return nil, err
	}
	capped := CapPositionImpactUsdByMaxPriceImpactFactor(m, delta, impact)
	if capped.Sign() < 0 {
		return capped, nil
	}
	return CapPositionImpactUsdByMaxImpactPool(m, capped), nil
}

// ApplySwapImpactWithCap converts a swap impact into token amount. Positive
// impact is paid from the token's swap impact pool and capped there; the
// excess is returned as CappedDiffUsd. Negative impact rounds its magnitude up.
func ApplySwapImpactWithCap(m *MarketInfo, token *tokens.Token, impactUsd *big.Int) (SwapImpact, error) {
	poolType := GetTokenPoolType(m, token.Address)
	if poolType == PoolNone {
		return SwapImpact{}, fmt.Errorf("%w: %s not in %s", ErrInvalidSwapTokens, token.Address.Hex(), m.MarketTokenAddress.Hex())
	}
	unit := fixedpoint.Pow10(token.Decimals)
	if impactUsd.Sign() > 0 {
		price := token.Prices.MaxPrice
		amount := fixedpoint.MulDiv(impactUsd, unit, price)
		maxAmount := pick(poolType == PoolLong, m.SwapImpactPoolAmountLong, m.SwapImpactPoolAmountShort)
		cappedDiffUsd := new(big.Int)
		if amount.Cmp(maxAmount) > 0 {
			excess := new(big.Int).Sub(amount, maxAmount)
			cappedDiffUsd = fixedpoint.MulDiv(excess, price, unit)
			amount = new(big.Int).Set(maxAmount)
		}
		return SwapImpact{ImpactDeltaAmount: amount, CappedDiffUsd: cappedDiffUsd}, nil
	}
	scaled := new(big.Int).Mul(impactUsd, unit)
	return SwapImpact{
		ImpactDeltaAmount: fixedpoint.RoundUpMagnitudeDivision(scaled, token.Prices.MinPrice),
		CappedDiffUsd:     new(big.Int),
	}, nil
}
