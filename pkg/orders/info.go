package orders

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/markets"
	"perpsdk/pkg/positions"
	"perpsdk/pkg/swap"
	"perpsdk/pkg/tokens"
)

// DefaultSlippageBps is the slippage a limit swap's min output was derived
// with when no explicit trigger ratio was stored.
const DefaultSlippageBps = 30

// OrderInfo is an order enriched with resolved tokens and markets. It is
// implemented by *SwapOrderInfo and *PositionOrderInfo only.
type OrderInfo interface {
	Raw() *Order
	Twap() TwapInfo
	isOrderInfo()
}

// SwapOrderInfo enriches a market or limit swap.
type SwapOrderInfo struct {
	Order
	TwapInfo

	InitialCollateralToken *tokens.Token       `json:"initialCollateralToken"`
	TargetCollateralToken  *tokens.Token       `json:"targetCollateralToken"`
	SwapPathStats          *swap.SwapPathStats `json:"swapPathStats,omitempty"`
	// TriggerRatio is set for limit swaps only.
	TriggerRatio *tokens.TokensRatio `json:"triggerRatio,omitempty"`
}

// PositionOrderInfo enriches an increase, decrease or liquidation order.
type PositionOrderInfo struct {
	Order
	TwapInfo

	Market                 *markets.MarketInfo  `json:"market"`
	IndexToken             *tokens.Token        `json:"indexToken"`
	InitialCollateralToken *tokens.Token        `json:"initialCollateralToken"`
	TargetCollateralToken  *tokens.Token        `json:"targetCollateralToken"`
	SwapPathStats          *swap.SwapPathStats  `json:"swapPathStats,omitempty"`
	AcceptablePrice        *big.Int             `json:"acceptablePrice"`
	TriggerPrice           *big.Int             `json:"triggerPrice"`
	TriggerThresholdType   TriggerThresholdType `json:"triggerThresholdType,omitempty"`
}

func (o *SwapOrderInfo) Raw() *Order    { return &o.Order }
func (o *SwapOrderInfo) Twap() TwapInfo { return o.TwapInfo }
func (*SwapOrderInfo) isOrderInfo()     {}

func (o *PositionOrderInfo) Raw() *Order    { return &o.Order }
func (o *PositionOrderInfo) Twap() TwapInfo { return o.TwapInfo }
func (*PositionOrderInfo) isOrderInfo()     {}

// InfoParams is the snapshot GetOrderInfo resolves an order against.
type InfoParams struct {
	MarketsInfoData      markets.MarketsInfoData
	TokensData           tokens.TokensData
	WrappedNativeAddress common.Address
	Order                *Order
}

// GetOrderInfo enriches a raw order. It returns nil when any referenced
// token or market is missing from the snapshot.
func GetOrderInfo(p InfoParams) OrderInfo {
	if p.Order == nil {
		return nil
	}
	if IsSwapOrderType(p.Order.OrderType) {
		if info := getSwapOrderInfo(p); info != nil {
			return info
		}
		return nil
	}
	if info := getPositionOrderInfo(p); info != nil {
		return info
	}
	return nil
}

func getSwapOrderInfo(p InfoParams) *SwapOrderInfo {
	order := p.Order
	initial := tokens.GetTokenData(p.TokensData, order.InitialCollateralTokenAddress, tokens.ConvertNone)
	out := swap.GetSwapPathOutputAddresses(p.MarketsInfoData, order.InitialCollateralTokenAddress, order.SwapPath, p.WrappedNativeAddress, order.ShouldUnwrapNativeToken, false)
	if initial == nil || out.OutTokenAddress == nil {
		return nil
	}
	target := tokens.GetTokenData(p.TokensData, *out.OutTokenAddress, tokens.ConvertNone)
	if target == nil {
		return nil
	}

	info := &SwapOrderInfo{
		Order:                  *order,
		TwapInfo:               DecodeTwapUIFeeReceiver(order.UIFeeReceiver),
		InitialCollateralToken: initial,
		TargetCollateralToken:  target,
		SwapPathStats:          pathStats(p, initial),
	}
	if IsLimitSwapOrderType(order.OrderType) {
		ratio := swapTriggerRatio(order, initial, target)
		info.TriggerRatio = &ratio
	}
	return info
}

// swapTriggerRatio reads a stored trigger ratio. Orders that only stored a
// min output are assumed to have applied DefaultSlippageBps to it.
func swapTriggerRatio(order *Order, initial, target *tokens.Token) tokens.TokensRatio {
	fromAmount := fixedpoint.OrZero(order.InitialCollateralDeltaAmount)
	if trigger := order.ContractTriggerPrice; trigger != nil && trigger.Sign() > 0 {
		ratio := tokens.GetTokensRatioByPrice(initial, target, initial.Prices.MinPrice, target.Prices.MaxPrice)
		ratio.Ratio = new(big.Int).Set(trigger)
		return ratio
	}
	toAmount := fixedpoint.MulDiv(
		fixedpoint.OrZero(order.MinOutputAmount),
		fixedpoint.BasisPointsDivisor,
		big.NewInt(fixedpoint.BasisPoints-DefaultSlippageBps),
	)
	return tokens.GetTokensRatioByAmounts(initial, target, fromAmount, toAmount)
}

func getPositionOrderInfo(p InfoParams) *PositionOrderInfo {
	order := p.Order
	m := p.MarketsInfoData[order.MarketAddress]
	initial := tokens.GetTokenData(p.TokensData, order.InitialCollateralTokenAddress, tokens.ConvertNone)
	out := swap.GetSwapPathOutputAddresses(p.MarketsInfoData, order.InitialCollateralTokenAddress, order.SwapPath, p.WrappedNativeAddress, order.ShouldUnwrapNativeToken, IsIncreaseOrderType(order.OrderType))
	if m == nil || m.IndexToken == nil || initial == nil || out.OutTokenAddress == nil {
		return nil
	}
	target := tokens.GetTokenData(p.TokensData, *out.OutTokenAddress, tokens.ConvertNone)
	if target == nil {
		return nil
	}

	threshold, _ := GetTriggerThresholdType(order.OrderType, order.IsLong)
	return &PositionOrderInfo{
		Order:                  *order,
		TwapInfo:               DecodeTwapUIFeeReceiver(order.UIFeeReceiver),
		Market:                 m,
		IndexToken:             m.IndexToken,
		InitialCollateralToken: initial,
		TargetCollateralToken:  target,
		SwapPathStats:          pathStats(p, initial),
		AcceptablePrice:        tokens.ParseContractPrice(fixedpoint.OrZero(order.ContractAcceptablePrice), m.IndexToken.Decimals),
		TriggerPrice:           tokens.ParseContractPrice(fixedpoint.OrZero(order.ContractTriggerPrice), m.IndexToken.Decimals),
		TriggerThresholdType:   threshold,
	}
}

func pathStats(p InfoParams, initial *tokens.Token) *swap.SwapPathStats {
	usdIn := tokens.ConvertToUsd(p.Order.InitialCollateralDeltaAmount, initial.Decimals, initial.Prices.MinPrice)
	if usdIn == nil || len(p.Order.SwapPath) == 0 {
		return nil
	}
	return swap.GetSwapPathStats(swap.PathParams{
		MarketsInfoData:          p.MarketsInfoData,
		SwapPath:                 p.Order.SwapPath,
		InitialCollateralAddress: p.Order.InitialCollateralTokenAddress,
		WrappedNativeAddress:     p.WrappedNativeAddress,
		UsdIn:                    usdIn,
		ShouldUnwrapNativeToken:  p.Order.ShouldUnwrapNativeToken,
		ShouldApplyPriceImpact:   true,
	})
}

// IsOrderForPosition reports whether info targets the position with the
// given colon-joined key. Limit orders match on the collateral they will
// deliver, trigger decreases on the collateral they were placed with.
func IsOrderForPosition(info OrderInfo, positionKey string) bool {
	positionOrder, ok := info.(*PositionOrderInfo)
	if !ok || positionOrder == nil {
		return false
	}
	key, err := positions.ParsePositionKey(positionKey)
	if err != nil {
		return false
	}
	order := &positionOrder.Order
	if order.Account != common.HexToAddress(key.Account) ||
		order.MarketAddress != common.HexToAddress(key.MarketAddress) ||
		order.IsLong != key.IsLong {
		return false
	}
	collateral := common.HexToAddress(key.CollateralAddress)
	switch {
	case IsLimitOrderType(order.OrderType):
		target := positionOrder.TargetCollateralToken
		targetAddress := target.Address
		if target.IsNative && target.WrappedAddress != nil {
			targetAddress = *target.WrappedAddress
		}
		return targetAddress == collateral
	case IsTriggerDecreaseOrderType(order.OrderType):
		return order.InitialCollateralTokenAddress == collateral
	default:
		return true
	}
}
