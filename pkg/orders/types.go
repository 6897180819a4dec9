package orders

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// OrderType mirrors the contracts' Order.OrderType enum.
type OrderType uint8

const (
	MarketSwap OrderType = iota
	LimitSwap
	MarketIncrease
	LimitIncrease
	MarketDecrease
	LimitDecrease
	StopLossDecrease
	Liquidation
	StopIncrease
)

var orderTypeNames = map[OrderType]string{
	MarketSwap:       "MarketSwap",
	LimitSwap:        "LimitSwap",
	MarketIncrease:   "MarketIncrease",
	LimitIncrease:    "LimitIncrease",
	MarketDecrease:   "MarketDecrease",
	LimitDecrease:    "LimitDecrease",
	StopLossDecrease: "StopLossDecrease",
	Liquidation:      "Liquidation",
	StopIncrease:     "StopIncrease",
}

func (t OrderType) String() string {
	if name, ok := orderTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// ParseOrderType resolves an order type by its String name, case-insensitively.
func ParseOrderType(name string) (OrderType, bool) {
	for t, n := range orderTypeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return 0, false
}

// DecreasePositionSwapType mirrors Order.DecreasePositionSwapType.
type DecreasePositionSwapType uint8

const (
	NoSwap DecreasePositionSwapType = iota
	SwapPnlTokenToCollateralToken
	SwapCollateralTokenToPnlToken
)

// TriggerThresholdType is the comparison a trigger order waits for.
type TriggerThresholdType string

const (
	TriggerAbove TriggerThresholdType = ">"
	TriggerBelow TriggerThresholdType = "<"
)

// Order is the order struct as read from the data store. Contract prices are
// scaled to 30 minus the index token decimals.
type Order struct {
	Key                           common.Hash              `json:"key"`
	Account                       common.Address           `json:"account"`
	Receiver                      common.Address           `json:"receiver"`
	CallbackContract              common.Address           `json:"callbackContract"`
	UIFeeReceiver                 common.Address           `json:"uiFeeReceiver"`
	MarketAddress                 common.Address           `json:"marketAddress"`
	InitialCollateralTokenAddress common.Address           `json:"initialCollateralTokenAddress"`
	SwapPath                      []common.Address         `json:"swapPath"`
	OrderType                     OrderType                `json:"orderType"`
	DecreasePositionSwapType      DecreasePositionSwapType `json:"decreasePositionSwapType"`

	SizeDeltaUsd                 *big.Int `json:"sizeDeltaUsd"`
	InitialCollateralDeltaAmount *big.Int `json:"initialCollateralDeltaAmount"`
	ContractTriggerPrice         *big.Int `json:"contractTriggerPrice"`
	ContractAcceptablePrice      *big.Int `json:"contractAcceptablePrice"`
	ExecutionFee                 *big.Int `json:"executionFee"`
	CallbackGasLimit             *big.Int `json:"callbackGasLimit"`
	MinOutputAmount              *big.Int `json:"minOutputAmount"`
	UpdatedAtTime                *big.Int `json:"updatedAtTime"`
	ValidFromTime                *big.Int `json:"validFromTime"`

	IsLong                  bool `json:"isLong"`
	ShouldUnwrapNativeToken bool `json:"shouldUnwrapNativeToken"`
	IsFrozen                bool `json:"isFrozen"`
	AutoCancel              bool `json:"autoCancel"`
}
