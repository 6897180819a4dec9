package markets

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/tokens"
)

// defaultMaxLeverage is 100x in basis points.
var defaultMaxLeverage = big.NewInt(100 * fixedpoint.BasisPoints)

// GetMarketFullName renders "ETH/USD [WETH-USDC]", or "SWAP-ONLY [..]" for
// spot-only markets.
func GetMarketFullName(m *MarketInfo) string {
	if m == nil || m.LongToken == nil || m.ShortToken == nil {
		return ""
	}
	pool := fmt.Sprintf("[%s-%s]", m.LongToken.Symbol, m.ShortToken.Symbol)
	if m.IsSpotOnly || m.IndexToken == nil {
		return "SWAP-ONLY " + pool
	}
	return fmt.Sprintf("%s/USD %s", m.IndexToken.Symbol, pool)
}

// GetTokenPoolType reports which collateral side holds address. The native
// token maps to whichever side holds the wrapped token; same-collateral
// markets resolve to the long side.
func GetTokenPoolType(m *MarketInfo, address common.Address) PoolType {
	if m == nil || m.LongToken == nil || m.ShortToken == nil {
		return PoolNone
	}
	isNative := tokens.IsNativeAddress(address)
	if address == m.LongToken.Address || (isNative && m.LongToken.IsWrapped) {
		return PoolLong
	}
	if address == m.ShortToken.Address || (isNative && m.ShortToken.IsWrapped) {
		return PoolShort
	}
	return PoolNone
}

// GetOppositeCollateral returns the collateral token on the other side of
// address, or nil if address is not a collateral of the market.
func GetOppositeCollateral(m *MarketInfo, address common.Address) *tokens.Token {
	switch GetTokenPoolType(m, address) {
	case PoolLong:
		return m.ShortToken
	case PoolShort:
		return m.LongToken
	default:
		return nil
	}
}

// GetPoolUsdWithoutPnl values one side's pool at the requested price.
func GetPoolUsdWithoutPnl(m *MarketInfo, isLong bool, priceType PriceType) *big.Int {
	poolAmount := pick(isLong, m.LongPoolAmount, m.ShortPoolAmount)
	token := m.ShortToken
	if isLong {
		token = m.LongToken
	}
	var price *big.Int
	switch priceType {
	case MinPrice:
		price = token.Prices.MinPrice
	case MaxPrice:
		price = token.Prices.MaxPrice
	default:
		price = tokens.GetMidPrice(token.Prices)
	}
	return fixedpoint.OrZero(tokens.ConvertToUsd(poolAmount, token.Decimals, price))
}

// GetOpenInterestUsd returns the side's open interest in USD.
func GetOpenInterestUsd(m *MarketInfo, isLong bool) *big.Int {
	return new(big.Int).Set(pick(isLong, m.LongInterestUsd, m.ShortInterestUsd))
}

// GetOpenInterestInTokens returns the side's open interest in index tokens.
func GetOpenInterestInTokens(m *MarketInfo, isLong bool) *big.Int {
	return new(big.Int).Set(pick(isLong, m.LongInterestInTokens, m.ShortInterestInTokens))
}

// GetMaxOpenInterestUsd returns the configured open interest cap.
func GetMaxOpenInterestUsd(m *MarketInfo, isLong bool) *big.Int {
	return new(big.Int).Set(pick(isLong, m.MaxOpenInterestLong, m.MaxOpenInterestShort))
}

// GetPriceForPnl picks the index price that maximises or minimises the pnl
// of the given side.
func GetPriceForPnl(prices tokens.TokenPrices, isLong, maximize bool) *big.Int {
	if isLong {
		if maximize {
			return prices.MaxPrice
		}
		return prices.MinPrice
	}
	if maximize {
		return prices.MinPrice
	}
	return prices.MaxPrice
}

// GetMarketPnl returns the aggregate trader pnl of one side.
func GetMarketPnl(m *MarketInfo, isLong, maximize bool) *big.Int {
	openInterestUsd := GetOpenInterestUsd(m, isLong)
	openInterestInTokens := GetOpenInterestInTokens(m, isLong)
	if openInterestUsd.Sign() == 0 || openInterestInTokens.Sign() == 0 {
		return new(big.Int)
	}
	price := GetPriceForPnl(m.IndexToken.Prices, isLong, maximize)
	value := fixedpoint.OrZero(tokens.ConvertToUsd(openInterestInTokens, m.IndexToken.Decimals, price))
	if isLong {
		return value.Sub(value, openInterestUsd)
	}
	return openInterestUsd.Sub(openInterestUsd, value)
}

// GetCappedPoolPnl caps positive pool pnl at poolUsd*maxPnlFactor. Losses
// pass through unchanged.
func GetCappedPoolPnl(m *MarketInfo, poolUsd, poolPnl *big.Int, isLong bool) *big.Int {
	if poolPnl.Sign() < 0 {
		return new(big.Int).Set(poolPnl)
	}
	maxPnlFactor := pick(isLong, m.MaxPnlFactorForTradersLong, m.MaxPnlFactorForTradersShort)
	maxPnl := fixedpoint.ApplyFactor(poolUsd, maxPnlFactor)
	return fixedpoint.Min(poolPnl, maxPnl)
}

// GetReservedUsd is the USD the pool must hold back for open positions.
// Longs reserve their current index value, shorts their entry notional.
func GetReservedUsd(m *MarketInfo, isLong bool) *big.Int {
	if isLong {
		inTokens := fixedpoint.OrZero(m.LongInterestInTokens)
		return fixedpoint.OrZero(tokens.ConvertToUsd(inTokens, m.IndexToken.Decimals, m.IndexToken.Prices.MaxPrice))
	}
	return new(big.Int).Set(fixedpoint.OrZero(m.ShortInterestUsd))
}

// GetMaxReservedUsd applies the stricter of the reserve and open interest
// reserve factors to the pool value at min price.
func GetMaxReservedUsd(m *MarketInfo, isLong bool) *big.Int {
	poolUsd := GetPoolUsdWithoutPnl(m, isLong, MinPrice)
	reserveFactor := pick(isLong, m.ReserveFactorLong, m.ReserveFactorShort)
	openInterestReserveFactor := pick(isLong, m.OpenInterestReserveFactorLong, m.OpenInterestReserveFactorShort)
	factor := fixedpoint.Min(reserveFactor, openInterestReserveFactor)
	return fixedpoint.MulDiv(poolUsd, factor, fixedpoint.Precision)
}

// GetAvailableUsdLiquidityForPosition is the USD of new open interest the
// side can take. Spot-only markets have none.
func GetAvailableUsdLiquidityForPosition(m *MarketInfo, isLong bool) *big.Int {
	if m.IsSpotOnly {
		return new(big.Int)
	}
	byReserve := new(big.Int).Sub(GetMaxReservedUsd(m, isLong), GetReservedUsd(m, isLong))
	byOpenInterest := new(big.Int).Sub(GetMaxOpenInterestUsd(m, isLong), GetOpenInterestUsd(m, isLong))
	available := fixedpoint.Min(byReserve, byOpenInterest)
	if available.Sign() < 0 {
		return new(big.Int)
	}
	return available
}

// GetAvailableUsdLiquidityForCollateral is the USD that can leave the side's
// pool without breaching the reserve requirement.
func GetAvailableUsdLiquidityForCollateral(m *MarketInfo, isLong bool) *big.Int {
	poolUsd := GetPoolUsdWithoutPnl(m, isLong, MinPrice)
	if m.IsSpotOnly {
		return poolUsd
	}
	reserveFactor := pick(isLong, m.ReserveFactorLong, m.ReserveFactorShort)
	if reserveFactor.Sign() == 0 {
		return new(big.Int)
	}
	minPoolUsd := fixedpoint.MulDiv(GetReservedUsd(m, isLong), fixedpoint.Precision, reserveFactor)
	return poolUsd.Sub(poolUsd, minPoolUsd)
}

// GetMaxLeverageByMinCollateralFactor converts a min collateral factor into
// max leverage in basis points, rounded to a whole multiple. Missing or zero
// factors yield 100x.
func GetMaxLeverageByMinCollateralFactor(minCollateralFactor *big.Int) *big.Int {
	if minCollateralFactor == nil || minCollateralFactor.Sign() <= 0 {
		return new(big.Int).Set(defaultMaxLeverage)
	}
	raw := fixedpoint.MulDiv(fixedpoint.BasisPointsDivisor, fixedpoint.Precision, minCollateralFactor)
	half := big.NewInt(fixedpoint.BasisPoints / 2)
	raw.Add(raw, half).Quo(raw, fixedpoint.BasisPointsDivisor)
	return raw.Mul(raw, fixedpoint.BasisPointsDivisor)
}
