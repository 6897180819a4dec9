package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"perpsdk/internal/config"
	"perpsdk/pkg/chain"
	"perpsdk/pkg/orders"
	"perpsdk/pkg/ordertx"
	"perpsdk/pkg/tokens"
)

// batchFile is the JSON document perpcalc turns into one multicall. Amounts
// accept decimal or 0x-prefixed hex strings; USD values carry 30 decimals.
type batchFile struct {
	Account common.Address  `json:"account"`
	Orders  []orderRequest  `json:"orders"`
	Updates []updateRequest `json:"updates"`
	Cancels []common.Hash   `json:"cancels"`
	// Prices are the oracle prices used when simulating.
	Prices []*tokens.Token `json:"prices"`
}

type orderRequest struct {
	Type               string                `json:"type"`
	Market             common.Address        `json:"market"`
	IndexTokenDecimals int                   `json:"indexTokenDecimals"`
	CollateralToken    common.Address        `json:"collateralToken"`
	CollateralAmount   *math.HexOrDecimal256 `json:"collateralAmount"`
	ReceiveToken       common.Address        `json:"receiveToken"`
	SwapPath           []common.Address      `json:"swapPath"`
	SizeDeltaUsd       *math.HexOrDecimal256 `json:"sizeDeltaUsd"`
	AcceptablePrice    *math.HexOrDecimal256 `json:"acceptablePrice"`
	TriggerPrice       *math.HexOrDecimal256 `json:"triggerPrice"`
	TriggerRatio       *math.HexOrDecimal256 `json:"triggerRatio"`
	MinOutput          *math.HexOrDecimal256 `json:"minOutput"`
	DecreaseSwapType   uint8                 `json:"decreaseSwapType"`
	IsLong             bool                  `json:"isLong"`
	AutoCancel         bool                  `json:"autoCancel"`
}

type updateRequest struct {
	OrderKey           common.Hash           `json:"orderKey"`
	IndexTokenDecimals *int                  `json:"indexTokenDecimals"`
	SizeDeltaUsd       *math.HexOrDecimal256 `json:"sizeDeltaUsd"`
	AcceptablePrice    *math.HexOrDecimal256 `json:"acceptablePrice"`
	TriggerPrice       *math.HexOrDecimal256 `json:"triggerPrice"`
	MinOutput          *math.HexOrDecimal256 `json:"minOutput"`
	ExecutionFeeTopUp  *math.HexOrDecimal256 `json:"executionFeeTopUp"`
	AutoCancel         bool                  `json:"autoCancel"`
}

func readBatch(path string) (*batchFile, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open batch %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	return decodeBatch(r)
}

func decodeBatch(r io.Reader) (*batchFile, error) {
	var batch batchFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return &batch, nil
}

// buildBatch converts the batch into builder params using the configured
// order defaults and contract addresses.
func buildBatch(batch *batchFile, defaults config.OrderDefaults, contracts chain.Contracts) (ordertx.BatchOrderTxnParams, error) {
	base := ordertx.OrderParams{
		Contracts:          contracts,
		Receiver:           batch.Account,
		ReferralCode:       defaults.ReferralCodeBytes(),
		ExecutionFee:       defaults.ExecutionFee(),
		AllowedSlippageBps: defaults.AllowedSlippageBps,
	}
	if defaults.UIFeeReceiver != "" {
		base.UIFeeReceiver = common.HexToAddress(defaults.UIFeeReceiver)
	}

	var out ordertx.BatchOrderTxnParams
	for i, req := range batch.Orders {
		created, err := buildOrder(base, req)
		if err != nil {
			return ordertx.BatchOrderTxnParams{}, fmt.Errorf("order %d: %w", i, err)
		}
		out.CreateOrderParams = append(out.CreateOrderParams, created)
	}
	for _, req := range batch.Updates {
		params := ordertx.UpdateOrderParams{
			OrderKey:          req.OrderKey,
			SizeDeltaUsd:      bigOf(req.SizeDeltaUsd),
			AcceptablePrice:   bigOf(req.AcceptablePrice),
			TriggerPrice:      bigOf(req.TriggerPrice),
			MinOutputAmount:   bigOf(req.MinOutput),
			AutoCancel:        req.AutoCancel,
			ExecutionFeeTopUp: bigOf(req.ExecutionFeeTopUp),
		}
		if req.IndexTokenDecimals != nil {
			params.IndexToken = &tokens.Token{Decimals: *req.IndexTokenDecimals}
		}
		out.UpdateOrderParams = append(out.UpdateOrderParams, ordertx.BuildUpdateOrderPayload(params))
	}
	out.CancelOrderParams = append(out.CancelOrderParams, batch.Cancels...)
	return out, nil
}

func buildOrder(base ordertx.OrderParams, req orderRequest) (ordertx.CreateOrderTxnParams, error) {
	orderType, ok := orders.ParseOrderType(req.Type)
	if !ok {
		return ordertx.CreateOrderTxnParams{}, fmt.Errorf("%w: %q", ordertx.ErrInvalidOrderType, req.Type)
	}
	base.AutoCancel = req.AutoCancel
	indexToken := &tokens.Token{Decimals: req.IndexTokenDecimals}

	switch {
	case orders.IsSwapOrderType(orderType):
		return ordertx.BuildSwapOrderPayload(ordertx.SwapOrderParams{
			OrderParams:      base,
			OrderType:        orderType,
			FromTokenAddress: req.CollateralToken,
			FromTokenAmount:  bigOf(req.CollateralAmount),
			ToTokenAddress:   req.ReceiveToken,
			SwapPath:         req.SwapPath,
			MinOutputAmount:  bigOf(req.MinOutput),
			TriggerRatio:     bigOf(req.TriggerRatio),
		})
	case orders.IsIncreaseOrderType(orderType):
		return ordertx.BuildIncreaseOrderPayload(ordertx.IncreaseOrderParams{
			OrderParams:                   base,
			OrderType:                     orderType,
			MarketAddress:                 req.Market,
			IndexToken:                    indexToken,
			InitialCollateralTokenAddress: req.CollateralToken,
			InitialCollateralDeltaAmount:  bigOf(req.CollateralAmount),
			SwapPath:                      req.SwapPath,
			MinOutputAmount:               bigOf(req.MinOutput),
			SizeDeltaUsd:                  bigOf(req.SizeDeltaUsd),
			AcceptablePrice:               bigOf(req.AcceptablePrice),
			TriggerPrice:                  bigOf(req.TriggerPrice),
			IsLong:                        req.IsLong,
		})
	default:
		return ordertx.BuildDecreaseOrderPayload(ordertx.DecreaseOrderParams{
			OrderParams:                   base,
			OrderType:                     orderType,
			MarketAddress:                 req.Market,
			IndexToken:                    indexToken,
			InitialCollateralTokenAddress: req.CollateralToken,
			InitialCollateralDeltaAmount:  bigOf(req.CollateralAmount),
			SwapPath:                      req.SwapPath,
			ReceiveTokenAddress:           req.ReceiveToken,
			SizeDeltaUsd:                  bigOf(req.SizeDeltaUsd),
			AcceptablePrice:               bigOf(req.AcceptablePrice),
			TriggerPrice:                  bigOf(req.TriggerPrice),
			MinOutputUsd:                  bigOf(req.MinOutput),
			DecreasePositionSwapType:      orders.DecreasePositionSwapType(req.DecreaseSwapType),
			IsLong:                        req.IsLong,
		})
	}
}

func bigOf(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(v))
}
