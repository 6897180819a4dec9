package ordertx

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Call is one router method invocation inside a multicall.
type Call struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// MulticallPayload is an ordered call list plus the native value that must
// accompany the outer multicall transaction.
type MulticallPayload struct {
	Calls []Call   `json:"calls"`
	Value *big.Int `json:"value"`
}

// CreateOrderAddresses mirrors IBaseOrderUtils.CreateOrderParamsAddresses.
type CreateOrderAddresses struct {
	Receiver               common.Address   `abi:"receiver" json:"receiver"`
	CancellationReceiver   common.Address   `abi:"cancellationReceiver" json:"cancellationReceiver"`
	CallbackContract       common.Address   `abi:"callbackContract" json:"callbackContract"`
	UIFeeReceiver          common.Address   `abi:"uiFeeReceiver" json:"uiFeeReceiver"`
	Market                 common.Address   `abi:"market" json:"market"`
	InitialCollateralToken common.Address   `abi:"initialCollateralToken" json:"initialCollateralToken"`
	SwapPath               []common.Address `abi:"swapPath" json:"swapPath"`
}

// CreateOrderNumbers mirrors IBaseOrderUtils.CreateOrderParamsNumbers.
// Prices are contract prices.
type CreateOrderNumbers struct {
	SizeDeltaUsd                 *big.Int `abi:"sizeDeltaUsd" json:"sizeDeltaUsd"`
	InitialCollateralDeltaAmount *big.Int `abi:"initialCollateralDeltaAmount" json:"initialCollateralDeltaAmount"`
	TriggerPrice                 *big.Int `abi:"triggerPrice" json:"triggerPrice"`
	AcceptablePrice              *big.Int `abi:"acceptablePrice" json:"acceptablePrice"`
	ExecutionFee                 *big.Int `abi:"executionFee" json:"executionFee"`
	CallbackGasLimit             *big.Int `abi:"callbackGasLimit" json:"callbackGasLimit"`
	MinOutputAmount              *big.Int `abi:"minOutputAmount" json:"minOutputAmount"`
	ValidFromTime                *big.Int `abi:"validFromTime" json:"validFromTime"`
}

// CreateOrderPayload is the createOrder argument.
type CreateOrderPayload struct {
	Addresses                CreateOrderAddresses `abi:"addresses" json:"addresses"`
	Numbers                  CreateOrderNumbers   `abi:"numbers" json:"numbers"`
	OrderType                uint8                `abi:"orderType" json:"orderType"`
	DecreasePositionSwapType uint8                `abi:"decreasePositionSwapType" json:"decreasePositionSwapType"`
	IsLong                   bool                 `abi:"isLong" json:"isLong"`
	ShouldUnwrapNativeToken  bool                 `abi:"shouldUnwrapNativeToken" json:"shouldUnwrapNativeToken"`
	AutoCancel               bool                 `abi:"autoCancel" json:"autoCancel"`
	ReferralCode             [32]byte             `abi:"referralCode" json:"referralCode"`
	DataList                 [][32]byte           `abi:"dataList" json:"dataList"`
}

// UpdateOrderPayload is the updateOrder argument list.
type UpdateOrderPayload struct {
	OrderKey        common.Hash `json:"orderKey"`
	SizeDeltaUsd    *big.Int    `json:"sizeDeltaUsd"`
	AcceptablePrice *big.Int    `json:"acceptablePrice"`
	TriggerPrice    *big.Int    `json:"triggerPrice"`
	MinOutputAmount *big.Int    `json:"minOutputAmount"`
	ValidFromTime   *big.Int    `json:"validFromTime"`
	AutoCancel      bool        `json:"autoCancel"`
}

// TokenTransfer moves Amount of TokenAddress to Destination ahead of order
// creation. The native token is sent as wrapped native via sendWnt.
type TokenTransfer struct {
	TokenAddress common.Address `json:"tokenAddress"`
	Destination  common.Address `json:"destination"`
	Amount       *big.Int       `json:"amount"`
}

// ExternalCalls are arbitrary calls the router performs through the external
// handler, typically an aggregator swap feeding the order's collateral.
type ExternalCalls struct {
	Targets         []common.Address `json:"targets"`
	DataList        [][]byte         `json:"dataList"`
	RefundTokens    []common.Address `json:"refundTokens"`
	RefundReceivers []common.Address `json:"refundReceivers"`
}

// TokenTransfersParams describe the funds an order needs moved into custody.
type TokenTransfersParams struct {
	IsNativePayment               bool             `json:"isNativePayment"`
	IsNativeReceive               bool             `json:"isNativeReceive"`
	InitialCollateralTokenAddress common.Address   `json:"initialCollateralTokenAddress"`
	InitialCollateralDeltaAmount  *big.Int         `json:"initialCollateralDeltaAmount"`
	MinOutputAmount               *big.Int         `json:"minOutputAmount"`
	SwapPath                      []common.Address `json:"swapPath"`
	TokenTransfers                []TokenTransfer  `json:"tokenTransfers"`
	Value                         *big.Int         `json:"value"`
	ExternalCalls                 *ExternalCalls   `json:"externalCalls,omitempty"`
}

// CreateOrderTxnParams is one order to create.
type CreateOrderTxnParams struct {
	OrderPayload         CreateOrderPayload   `json:"orderPayload"`
	TokenTransfersParams TokenTransfersParams `json:"tokenTransfersParams"`
}

// UpdateOrderTxnParams is one order to update. ExecutionFeeTopUp is sent to
// the order vault first when positive.
type UpdateOrderTxnParams struct {
	UpdatePayload     UpdateOrderPayload `json:"updatePayload"`
	ExecutionFeeTopUp *big.Int           `json:"executionFeeTopUp"`
}

// BatchOrderTxnParams groups every order change of one transaction.
type BatchOrderTxnParams struct {
	CreateOrderParams []CreateOrderTxnParams `json:"createOrderParams"`
	UpdateOrderParams []UpdateOrderTxnParams `json:"updateOrderParams"`
	CancelOrderParams []common.Hash          `json:"cancelOrderParams"`
}
