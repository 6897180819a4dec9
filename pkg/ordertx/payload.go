package ordertx

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"perpsdk/pkg/chain"
	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/orders"
	"perpsdk/pkg/tokens"
)

var (
	// ErrInvalidOrderType is returned when a builder is handed an order type
	// of another family.
	ErrInvalidOrderType = errors.New("ordertx: invalid order type")
	// ErrMissingIndexToken is returned when a position order lacks the index
	// token needed to scale contract prices.
	ErrMissingIndexToken = errors.New("ordertx: index token is required")
)

// OrderParams are shared by every create builder.
type OrderParams struct {
	Contracts            chain.Contracts
	Receiver             common.Address
	CancellationReceiver common.Address
	CallbackContract     common.Address
	CallbackGasLimit     *big.Int
	UIFeeReceiver        common.Address
	ReferralCode         [32]byte
	DataList             [][32]byte
	ExecutionFee         *big.Int
	AllowedSlippageBps   int64
	ValidFromTime        *big.Int
	AutoCancel           bool
	// ExternalCalls routes the initial collateral to the external handler
	// instead of the order vault.
	ExternalCalls *ExternalCalls
}

// SwapOrderParams describe a market or limit swap.
type SwapOrderParams struct {
	OrderParams
	OrderType        orders.OrderType
	FromTokenAddress common.Address
	FromTokenAmount  *big.Int
	ToTokenAddress   common.Address
	SwapPath         []common.Address
	MinOutputAmount  *big.Int
	// TriggerRatio is stored as the trigger price of limit swaps.
	TriggerRatio *big.Int
}

// IncreaseOrderParams describe an order opening or growing a position.
// Prices are USD values; they are converted to contract prices here.
type IncreaseOrderParams struct {
	OrderParams
	OrderType                     orders.OrderType
	MarketAddress                 common.Address
	IndexToken                    *tokens.Token
	InitialCollateralTokenAddress common.Address
	InitialCollateralDeltaAmount  *big.Int
	SwapPath                      []common.Address
	MinOutputAmount               *big.Int
	SizeDeltaUsd                  *big.Int
	AcceptablePrice               *big.Int
	TriggerPrice                  *big.Int
	IsLong                        bool
}

// DecreaseOrderParams describe an order shrinking or closing a position.
type DecreaseOrderParams struct {
	OrderParams
	OrderType                     orders.OrderType
	MarketAddress                 common.Address
	IndexToken                    *tokens.Token
	InitialCollateralTokenAddress common.Address
	InitialCollateralDeltaAmount  *big.Int
	SwapPath                      []common.Address
	ReceiveTokenAddress           common.Address
	SizeDeltaUsd                  *big.Int
	AcceptablePrice               *big.Int
	TriggerPrice                  *big.Int
	MinOutputUsd                  *big.Int
	DecreasePositionSwapType      orders.DecreasePositionSwapType
	IsLong                        bool
}

// UpdateOrderParams change a pending order. IndexToken is nil for limit
// swaps, whose trigger ratio is passed through unscaled.
type UpdateOrderParams struct {
	OrderKey          common.Hash
	IndexToken        *tokens.Token
	SizeDeltaUsd      *big.Int
	AcceptablePrice   *big.Int
	TriggerPrice      *big.Int
	MinOutputAmount   *big.Int
	ValidFromTime     *big.Int
	AutoCancel        bool
	ExecutionFeeTopUp *big.Int
}

// BuildSwapOrderPayload builds the createOrder payload and transfers of a swap.
func BuildSwapOrderPayload(p SwapOrderParams) (CreateOrderTxnParams, error) {
	if !orders.IsSwapOrderType(p.OrderType) {
		return CreateOrderTxnParams{}, fmt.Errorf("%w: %s is not a swap", ErrInvalidOrderType, p.OrderType)
	}
	if len(p.SwapPath) == 0 {
		return CreateOrderTxnParams{}, errors.New("ordertx: swap path is required")
	}
	triggerPrice := new(big.Int)
	if orders.IsLimitSwapOrderType(p.OrderType) {
		triggerPrice = fixedpoint.OrZero(p.TriggerRatio)
	}
	minOutput := fixedpoint.ApplySlippageToMinOut(p.AllowedSlippageBps, fixedpoint.OrZero(p.MinOutputAmount))
	isNativeReceive := tokens.IsNativeAddress(p.ToTokenAddress)

	payload := p.createPayload(p.FromTokenAddress, common.Address{}, p.SwapPath, CreateOrderNumbers{
		SizeDeltaUsd:                 new(big.Int),
		InitialCollateralDeltaAmount: fixedpoint.OrZero(p.FromTokenAmount),
		TriggerPrice:                 triggerPrice,
		AcceptablePrice:              new(big.Int),
		MinOutputAmount:              minOutput,
	})
	payload.OrderType = uint8(p.OrderType)
	payload.ShouldUnwrapNativeToken = isNativeReceive
	payload.DecreasePositionSwapType = uint8(orders.NoSwap)

	return CreateOrderTxnParams{
		OrderPayload:         payload,
		TokenTransfersParams: p.transfersParams(p.FromTokenAddress, p.FromTokenAmount, p.SwapPath, minOutput, isNativeReceive),
	}, nil
}

// BuildIncreaseOrderPayload builds the createOrder payload and transfers of an
// increase. Market orders get the allowed slippage applied to the acceptable
// price.
func BuildIncreaseOrderPayload(p IncreaseOrderParams) (CreateOrderTxnParams, error) {
	if !orders.IsIncreaseOrderType(p.OrderType) {
		return CreateOrderTxnParams{}, fmt.Errorf("%w: %s is not an increase", ErrInvalidOrderType, p.OrderType)
	}
	if p.IndexToken == nil {
		return CreateOrderTxnParams{}, ErrMissingIndexToken
	}
	acceptablePrice := fixedpoint.OrZero(p.AcceptablePrice)
	if orders.IsMarketOrderType(p.OrderType) {
		acceptablePrice = fixedpoint.ApplySlippageToPrice(p.AllowedSlippageBps, acceptablePrice, true, p.IsLong)
	}
	triggerPrice := new(big.Int)
	if !orders.IsMarketOrderType(p.OrderType) {
		triggerPrice = tokens.ConvertToContractPrice(fixedpoint.OrZero(p.TriggerPrice), p.IndexToken.Decimals)
	}
	minOutput := fixedpoint.OrZero(p.MinOutputAmount)

	payload := p.createPayload(p.InitialCollateralTokenAddress, p.MarketAddress, p.SwapPath, CreateOrderNumbers{
		SizeDeltaUsd:                 fixedpoint.OrZero(p.SizeDeltaUsd),
		InitialCollateralDeltaAmount: fixedpoint.OrZero(p.InitialCollateralDeltaAmount),
		TriggerPrice:                 triggerPrice,
		AcceptablePrice:              tokens.ConvertToContractPrice(acceptablePrice, p.IndexToken.Decimals),
		MinOutputAmount:              minOutput,
	})
	payload.OrderType = uint8(p.OrderType)
	payload.DecreasePositionSwapType = uint8(orders.NoSwap)
	payload.IsLong = p.IsLong

	return CreateOrderTxnParams{
		OrderPayload:         payload,
		TokenTransfersParams: p.transfersParams(p.InitialCollateralTokenAddress, p.InitialCollateralDeltaAmount, p.SwapPath, minOutput, false),
	}, nil
}

// BuildDecreaseOrderPayload builds the createOrder payload and transfers of a
// decrease. Only the execution fee is transferred.
func BuildDecreaseOrderPayload(p DecreaseOrderParams) (CreateOrderTxnParams, error) {
	if !orders.IsDecreaseOrderType(p.OrderType) {
		return CreateOrderTxnParams{}, fmt.Errorf("%w: %s is not a decrease", ErrInvalidOrderType, p.OrderType)
	}
	if p.IndexToken == nil {
		return CreateOrderTxnParams{}, ErrMissingIndexToken
	}
	acceptablePrice := fixedpoint.OrZero(p.AcceptablePrice)
	if orders.IsMarketOrderType(p.OrderType) {
		acceptablePrice = fixedpoint.ApplySlippageToPrice(p.AllowedSlippageBps, acceptablePrice, false, p.IsLong)
	}
	triggerPrice := new(big.Int)
	if !orders.IsMarketOrderType(p.OrderType) {
		triggerPrice = tokens.ConvertToContractPrice(fixedpoint.OrZero(p.TriggerPrice), p.IndexToken.Decimals)
	}
	minOutput := fixedpoint.ApplySlippageToMinOut(p.AllowedSlippageBps, fixedpoint.OrZero(p.MinOutputUsd))
	isNativeReceive := tokens.IsNativeAddress(p.ReceiveTokenAddress)

	payload := p.createPayload(p.InitialCollateralTokenAddress, p.MarketAddress, p.SwapPath, CreateOrderNumbers{
		SizeDeltaUsd:                 fixedpoint.OrZero(p.SizeDeltaUsd),
		InitialCollateralDeltaAmount: fixedpoint.OrZero(p.InitialCollateralDeltaAmount),
		TriggerPrice:                 triggerPrice,
		AcceptablePrice:              tokens.ConvertToContractPrice(acceptablePrice, p.IndexToken.Decimals),
		MinOutputAmount:              minOutput,
	})
	payload.OrderType = uint8(p.OrderType)
	payload.DecreasePositionSwapType = uint8(p.DecreasePositionSwapType)
	payload.IsLong = p.IsLong
	payload.ShouldUnwrapNativeToken = isNativeReceive

	transfers := p.transfersParams(p.InitialCollateralTokenAddress, nil, p.SwapPath, minOutput, isNativeReceive)
	transfers.InitialCollateralDeltaAmount = fixedpoint.OrZero(p.InitialCollateralDeltaAmount)
	return CreateOrderTxnParams{OrderPayload: payload, TokenTransfersParams: transfers}, nil
}

// BuildUpdateOrderPayload converts USD prices to contract prices and carries
// the execution fee top-up along.
func BuildUpdateOrderPayload(p UpdateOrderParams) UpdateOrderTxnParams {
	acceptablePrice := fixedpoint.OrZero(p.AcceptablePrice)
	triggerPrice := fixedpoint.OrZero(p.TriggerPrice)
	if p.IndexToken != nil {
		acceptablePrice = tokens.ConvertToContractPrice(acceptablePrice, p.IndexToken.Decimals)
		triggerPrice = tokens.ConvertToContractPrice(triggerPrice, p.IndexToken.Decimals)
	}
	return UpdateOrderTxnParams{
		UpdatePayload: UpdateOrderPayload{
			OrderKey:        p.OrderKey,
			SizeDeltaUsd:    fixedpoint.OrZero(p.SizeDeltaUsd),
			AcceptablePrice: acceptablePrice,
			TriggerPrice:    triggerPrice,
			MinOutputAmount: fixedpoint.OrZero(p.MinOutputAmount),
			ValidFromTime:   fixedpoint.OrZero(p.ValidFromTime),
			AutoCancel:      p.AutoCancel,
		},
		ExecutionFeeTopUp: fixedpoint.OrZero(p.ExecutionFeeTopUp),
	}
}

// createPayload fills the fields every order type shares. The native token
// is replaced by its wrapped counterpart since the vault only holds ERC20s.
func (p OrderParams) createPayload(collateral, market common.Address, swapPath []common.Address, numbers CreateOrderNumbers) CreateOrderPayload {
	if tokens.IsNativeAddress(collateral) {
		collateral = p.Contracts.WrappedNativeToken
	}
	numbers.ExecutionFee = fixedpoint.OrZero(p.ExecutionFee)
	numbers.CallbackGasLimit = fixedpoint.OrZero(p.CallbackGasLimit)
	numbers.ValidFromTime = fixedpoint.OrZero(p.ValidFromTime)
	return CreateOrderPayload{
		Addresses: CreateOrderAddresses{
			Receiver:               p.Receiver,
			CancellationReceiver:   p.CancellationReceiver,
			CallbackContract:       p.CallbackContract,
			UIFeeReceiver:          p.UIFeeReceiver,
			Market:                 market,
			InitialCollateralToken: collateral,
			SwapPath:               append([]common.Address{}, swapPath...),
		},
		Numbers:      numbers,
		AutoCancel:   p.AutoCancel,
		ReferralCode: p.ReferralCode,
		DataList:     append([][32]byte{}, p.DataList...),
	}
}

// transfersParams lists the native execution fee first, then the collateral
// deposit when amount is positive. Both go to the order vault unless external
// calls redirect the collateral.
func (p OrderParams) transfersParams(collateral common.Address, amount *big.Int, swapPath []common.Address, minOutput *big.Int, isNativeReceive bool) TokenTransfersParams {
	destination := p.Contracts.OrderVault
	if p.ExternalCalls != nil {
		destination = p.Contracts.ExternalHandler
	}
	var transfers []TokenTransfer
	if fee := p.ExecutionFee; fee != nil && fee.Sign() > 0 {
		transfers = append(transfers, TokenTransfer{TokenAddress: tokens.NativeTokenAddress, Destination: p.Contracts.OrderVault, Amount: fee})
	}
	if amount != nil && amount.Sign() > 0 {
		transfers = append(transfers, TokenTransfer{TokenAddress: collateral, Destination: destination, Amount: amount})
	}
	combined, value := CombineTransfers(transfers)
	return TokenTransfersParams{
		IsNativePayment:               tokens.IsNativeAddress(collateral) && amount != nil && amount.Sign() > 0,
		IsNativeReceive:               isNativeReceive,
		InitialCollateralTokenAddress: collateral,
		InitialCollateralDeltaAmount:  fixedpoint.OrZero(amount),
		MinOutputAmount:               new(big.Int).Set(minOutput),
		SwapPath:                      append([]common.Address{}, swapPath...),
		TokenTransfers:                combined,
		Value:                         value,
		ExternalCalls:                 p.ExternalCalls,
	}
}
