package markets

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/tokens"
)

// PriceType selects which side of a min/max price pair values a pool.
type PriceType int

const (
	MinPrice PriceType = iota
	MaxPrice
	MidPrice
)

// PoolType identifies the long or short collateral side of a market.
type PoolType int

const (
	PoolNone PoolType = iota
	PoolLong
	PoolShort
)

// MarketInfo is a snapshot of one market's on-chain state. Every amount is
// in token units, every USD value and factor is Precision-scaled. Nil fields
// read as zero.
type MarketInfo struct {
	MarketTokenAddress common.Address `json:"marketTokenAddress"`
	Name               string         `json:"name,omitempty"`

	IndexToken *tokens.Token `json:"indexToken"`
	LongToken  *tokens.Token `json:"longToken"`
	ShortToken *tokens.Token `json:"shortToken"`

	IsSpotOnly        bool `json:"isSpotOnly,omitempty"`
	IsSameCollaterals bool `json:"isSameCollaterals,omitempty"`
	IsDisabled        bool `json:"isDisabled,omitempty"`

	LongPoolAmount     *big.Int `json:"longPoolAmount"`
	ShortPoolAmount    *big.Int `json:"shortPoolAmount"`
	MaxLongPoolAmount  *big.Int `json:"maxLongPoolAmount"`
	MaxShortPoolAmount *big.Int `json:"maxShortPoolAmount"`

	LongInterestUsd       *big.Int `json:"longInterestUsd"`
	ShortInterestUsd      *big.Int `json:"shortInterestUsd"`
	LongInterestInTokens  *big.Int `json:"longInterestInTokens"`
	ShortInterestInTokens *big.Int `json:"shortInterestInTokens"`
	MaxOpenInterestLong   *big.Int `json:"maxOpenInterestLong"`
	MaxOpenInterestShort  *big.Int `json:"maxOpenInterestShort"`

	ReserveFactorLong              *big.Int `json:"reserveFactorLong"`
	ReserveFactorShort             *big.Int `json:"reserveFactorShort"`
	OpenInterestReserveFactorLong  *big.Int `json:"openInterestReserveFactorLong"`
	OpenInterestReserveFactorShort *big.Int `json:"openInterestReserveFactorShort"`
	MaxPnlFactorForTradersLong     *big.Int `json:"maxPnlFactorForTradersLong"`
	MaxPnlFactorForTradersShort    *big.Int `json:"maxPnlFactorForTradersShort"`

	PositionImpactPoolAmount               *big.Int `json:"positionImpactPoolAmount"`
	PositionImpactFactorPositive           *big.Int `json:"positionImpactFactorPositive"`
	PositionImpactFactorNegative           *big.Int `json:"positionImpactFactorNegative"`
	PositionImpactExponentFactor           *big.Int `json:"positionImpactExponentFactor"`
	MaxPositionImpactFactorPositive        *big.Int `json:"maxPositionImpactFactorPositive"`
	MaxPositionImpactFactorNegative        *big.Int `json:"maxPositionImpactFactorNegative"`
	MaxPositionImpactFactorForLiquidations *big.Int `json:"maxPositionImpactFactorForLiquidations"`

	SwapImpactPoolAmountLong  *big.Int `json:"swapImpactPoolAmountLong"`
	SwapImpactPoolAmountShort *big.Int `json:"swapImpactPoolAmountShort"`
	SwapImpactFactorPositive  *big.Int `json:"swapImpactFactorPositive"`
	SwapImpactFactorNegative  *big.Int `json:"swapImpactFactorNegative"`
	SwapImpactExponentFactor  *big.Int `json:"swapImpactExponentFactor"`

	VirtualPoolAmountForLongToken  *big.Int `json:"virtualPoolAmountForLongToken"`
	VirtualPoolAmountForShortToken *big.Int `json:"virtualPoolAmountForShortToken"`
	VirtualInventoryForPositions   *big.Int `json:"virtualInventoryForPositions"`

	PositionFeeFactorForPositiveImpact *big.Int `json:"positionFeeFactorForPositiveImpact"`
	PositionFeeFactorForNegativeImpact *big.Int `json:"positionFeeFactorForNegativeImpact"`
	SwapFeeFactorForPositiveImpact     *big.Int `json:"swapFeeFactorForPositiveImpact"`
	SwapFeeFactorForNegativeImpact     *big.Int `json:"swapFeeFactorForNegativeImpact"`
	AtomicSwapFeeFactor                *big.Int `json:"atomicSwapFeeFactor"`

	MinCollateralFactor                     *big.Int `json:"minCollateralFactor"`
	MinCollateralFactorForOpenInterestLong  *big.Int `json:"minCollateralFactorForOpenInterestLong"`
	MinCollateralFactorForOpenInterestShort *big.Int `json:"minCollateralFactorForOpenInterestShort"`
}

// MarketsInfoData indexes markets by market token address.
type MarketsInfoData map[common.Address]*MarketInfo

// pick returns the long or short variant of a paired field.
func pick(isLong bool, long, short *big.Int) *big.Int {
	if isLong {
		return fixedpoint.OrZero(long)
	}
	return fixedpoint.OrZero(short)
}
