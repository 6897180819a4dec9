package ordertx

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"perpsdk/pkg/chain"
	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/tokens"
)

type transferKey struct {
	token       common.Address
	destination common.Address
}

// CombineTransfers nets transfers sharing (token, destination) into one, in
// first-seen order, and returns the native amount the transaction must carry.
// Nil or non-positive amounts are dropped. The input is not modified.
func CombineTransfers(transfers []TokenTransfer) ([]TokenTransfer, *big.Int) {
	value := new(big.Int)
	index := make(map[transferKey]int, len(transfers))
	var combined []TokenTransfer
	for _, t := range transfers {
		if t.Amount == nil || t.Amount.Sign() <= 0 {
			continue
		}
		if tokens.IsNativeAddress(t.TokenAddress) {
			value.Add(value, t.Amount)
		}
		key := transferKey{token: t.TokenAddress, destination: t.Destination}
		if i, ok := index[key]; ok {
			combined[i].Amount = new(big.Int).Add(combined[i].Amount, t.Amount)
			continue
		}
		index[key] = len(combined)
		combined = append(combined, TokenTransfer{
			TokenAddress: t.TokenAddress,
			Destination:  t.Destination,
			Amount:       new(big.Int).Set(t.Amount),
		})
	}
	return combined, value
}

// BuildTokenTransfersMulticall turns transfers into sendWnt / sendTokens calls.
func BuildTokenTransfersMulticall(transfers []TokenTransfer) MulticallPayload {
	combined, value := CombineTransfers(transfers)
	calls := make([]Call, 0, len(combined))
	for _, t := range combined {
		if tokens.IsNativeAddress(t.TokenAddress) {
			calls = append(calls, Call{Method: MethodSendWnt, Params: []any{t.Destination, t.Amount}})
			continue
		}
		calls = append(calls, Call{Method: MethodSendTokens, Params: []any{t.TokenAddress, t.Destination, t.Amount}})
	}
	return MulticallPayload{Calls: calls, Value: value}
}

// BuildCreateOrderMulticall emits the transfers, then the external calls, then
// createOrder. The router needs custody of the funds before the order exists.
func BuildCreateOrderMulticall(p CreateOrderTxnParams) MulticallPayload {
	payload := BuildTokenTransfersMulticall(p.TokenTransfersParams.TokenTransfers)
	if ext := p.TokenTransfersParams.ExternalCalls; ext != nil && len(ext.Targets) > 0 {
		payload.Calls = append(payload.Calls, Call{
			Method: MethodMakeExternalCalls,
			Params: []any{
				append([]common.Address{}, ext.Targets...),
				append([][]byte{}, ext.DataList...),
				append([]common.Address{}, ext.RefundTokens...),
				append([]common.Address{}, ext.RefundReceivers...),
			},
		})
	}
	payload.Calls = append(payload.Calls, Call{Method: MethodCreateOrder, Params: []any{p.OrderPayload}})
	return payload
}

// BuildUpdateOrderMulticall emits the execution fee top-up, when positive,
// followed by updateOrder.
func BuildUpdateOrderMulticall(p UpdateOrderTxnParams, orderVault common.Address) MulticallPayload {
	payload := MulticallPayload{Value: new(big.Int)}
	if topUp := p.ExecutionFeeTopUp; topUp != nil && topUp.Sign() > 0 {
		payload.Calls = append(payload.Calls, Call{Method: MethodSendWnt, Params: []any{orderVault, new(big.Int).Set(topUp)}})
		payload.Value.Set(topUp)
	}
	u := p.UpdatePayload
	payload.Calls = append(payload.Calls, Call{
		Method: MethodUpdateOrder,
		Params: []any{
			u.OrderKey,
			fixedpoint.OrZero(u.SizeDeltaUsd),
			fixedpoint.OrZero(u.AcceptablePrice),
			fixedpoint.OrZero(u.TriggerPrice),
			fixedpoint.OrZero(u.MinOutputAmount),
			fixedpoint.OrZero(u.ValidFromTime),
			u.AutoCancel,
		},
	})
	return payload
}

// BuildCancelOrderMulticall emits a single cancelOrder.
func BuildCancelOrderMulticall(key common.Hash) MulticallPayload {
	return MulticallPayload{
		Calls: []Call{{Method: MethodCancelOrder, Params: []any{key}}},
		Value: new(big.Int),
	}
}

// BuildBatchOrderMulticallPayload concatenates creates, updates and cancels
// into one multicall and sums the native value of all of them.
func BuildBatchOrderMulticallPayload(params BatchOrderTxnParams, contracts chain.Contracts) MulticallPayload {
	batch := MulticallPayload{Value: new(big.Int)}
	add := func(p MulticallPayload) {
		batch.Calls = append(batch.Calls, p.Calls...)
		batch.Value.Add(batch.Value, p.Value)
	}
	for _, p := range params.CreateOrderParams {
		add(BuildCreateOrderMulticall(p))
	}
	for _, p := range params.UpdateOrderParams {
		add(BuildUpdateOrderMulticall(p, contracts.OrderVault))
	}
	for _, key := range params.CancelOrderParams {
		add(BuildCancelOrderMulticall(key))
	}
	return batch
}
