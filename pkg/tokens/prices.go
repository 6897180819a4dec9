package tokens

import (
	"math/big"

	"perpsdk/pkg/fixedpoint"
)

// ConvertToUsd returns tokenAmount*price/10^decimals, or nil when an operand
// is missing or the price is not positive.
func ConvertToUsd(tokenAmount *big.Int, decimals int, price *big.Int) *big.Int {
	if tokenAmount == nil || price == nil || price.Sign() <= 0 {
		return nil
	}
	return fixedpoint.MulDiv(tokenAmount, price, fixedpoint.Pow10(decimals))
}

// ConvertToTokenAmount is the inverse of ConvertToUsd: usd*10^decimals/price.
func ConvertToTokenAmount(usd *big.Int, decimals int, price *big.Int) *big.Int {
	if usd == nil || price == nil || price.Sign() <= 0 {
		return nil
	}
	return fixedpoint.MulDiv(usd, fixedpoint.Pow10(decimals), price)
}

// GetMidPrice returns floor((min+max)/2).
func GetMidPrice(prices TokenPrices) *big.Int {
	sum := new(big.Int).Add(prices.MinPrice, prices.MaxPrice)
	return sum.Quo(sum, big.NewInt(2))
}

// ConvertToContractPrice scales a 10^30 USD price down to the per-unit form
// the contracts store (30 - decimals). The truncation is intentional.
func ConvertToContractPrice(price *big.Int, decimals int) *big.Int {
	return new(big.Int).Quo(price, fixedpoint.Pow10(decimals))
}

// ConvertToContractTokenPrices applies ConvertToContractPrice to both sides.
func ConvertToContractTokenPrices(prices TokenPrices, decimals int) TokenPrices {
	return TokenPrices{
		MinPrice: ConvertToContractPrice(prices.MinPrice, decimals),
		MaxPrice: ConvertToContractPrice(prices.MaxPrice, decimals),
	}
}

// ParseContractPrice scales a stored contract price back to 10^30 per token.
func ParseContractPrice(price *big.Int, decimals int) *big.Int {
	return new(big.Int).Mul(price, fixedpoint.Pow10(decimals))
}

// GetShouldUseMaxPrice reports whether execution prices at the max side:
// long increases and short decreases pay the max price.
func GetShouldUseMaxPrice(isIncrease, isLong bool) bool {
	if isIncrease {
		return isLong
	}
	return !isLong
}

// GetMarkPrice picks the execution side of prices for a position change.
func GetMarkPrice(prices TokenPrices, isIncrease, isLong bool) *big.Int {
	if GetShouldUseMaxPrice(isIncrease, isLong) {
		return new(big.Int).Set(prices.MaxPrice)
	}
	return new(big.Int).Set(prices.MinPrice)
}

// GetTokensRatioByPrice orders two tokens by price and returns how many of the
// cheaper one buy the dearer one.
func GetTokensRatioByPrice(fromToken, toToken *Token, fromPrice, toPrice *big.Int) TokensRatio {
	largest, smallest := toToken, fromToken
	largestPrice, smallestPrice := toPrice, fromPrice
	if fromPrice.Cmp(toPrice) > 0 {
		largest, smallest = fromToken, toToken
		largestPrice, smallestPrice = fromPrice, toPrice
	}
	ratio := new(big.Int)
	if smallestPrice.Sign() > 0 {
		ratio = fixedpoint.MulDiv(largestPrice, fixedpoint.Precision, smallestPrice)
	}
	return TokensRatio{Ratio: ratio, LargestToken: largest, SmallestToken: smallest}
}

// GetTokensRatioByAmounts derives the same ratio from an exchanged pair of
// amounts. The side with the larger normalised amount is the cheaper token.
func GetTokensRatioByAmounts(fromToken, toToken *Token, fromAmount, toAmount *big.Int) TokensRatio {
	adjustedFrom := fixedpoint.MulDiv(fromAmount, fixedpoint.Precision, fixedpoint.Pow10(fromToken.Decimals))
	adjustedTo := fixedpoint.MulDiv(toAmount, fixedpoint.Precision, fixedpoint.Pow10(toToken.Decimals))

	smallest, largest := fromToken, toToken
	more, less := adjustedFrom, adjustedTo
	if adjustedFrom.Cmp(adjustedTo) <= 0 {
		smallest, largest = toToken, fromToken
		more, less = adjustedTo, adjustedFrom
	}
	ratio := new(big.Int)
	if less.Sign() > 0 {
		ratio = fixedpoint.MulDiv(more, fixedpoint.Precision, less)
	}
	return TokensRatio{Ratio: ratio, LargestToken: largest, SmallestToken: smallest}
}
