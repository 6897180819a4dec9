package ordertx

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpsdk/pkg/chain"
	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/orders"
	"perpsdk/pkg/tokens"
)

var (
	routerAddr  = common.HexToAddress("0x5aC4e27341e4cCcb3e5FD62f9E62db2Adf43dd57")
	vaultAddr   = common.HexToAddress("0x31eF83a530Fde1B38EE9A18093A333D8Bbbc40D5")
	wethAddr    = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")
	handlerAddr = common.HexToAddress("0x389CEf541397e872dC04421f166B5Bc2E0b374a5")
	usdcAddr    = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	marketAddr  = common.HexToAddress("0x70d95587d40A2caf56bd97485aB3Eec10Bee6336")
	accountAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")

	contracts = chain.Contracts{
		ExchangeRouter:     routerAddr,
		OrderVault:         vaultAddr,
		WrappedNativeToken: wethAddr,
		ExternalHandler:    handlerAddr,
	}
	weth = &tokens.Token{Address: wethAddr, Symbol: "WETH", Decimals: 18, IsWrapped: true}
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func exp(v int64, decimals int) *big.Int { return fixedpoint.ExpandDecimals(big.NewInt(v), decimals) }

func usd(v int64) *big.Int { return exp(v, 30) }

func assertBig(t *testing.T, expected, actual *big.Int) {
	t.Helper()
	require.NotNil(t, actual)
	assert.Equal(t, expected.String(), actual.String())
}

func methods(p MulticallPayload) []string {
	out := make([]string, 0, len(p.Calls))
	for _, c := range p.Calls {
		out = append(out, c.Method)
	}
	return out
}

func baseParams() OrderParams {
	return OrderParams{
		Contracts:          contracts,
		Receiver:           accountAddr,
		ExecutionFee:       exp(1, 15),
		AllowedSlippageBps: 30,
	}
}

func TestCombineTransfers(t *testing.T) {
	first := bi(100)
	input := []TokenTransfer{
		{TokenAddress: usdcAddr, Destination: vaultAddr, Amount: first},
		{TokenAddress: tokens.NativeTokenAddress, Destination: vaultAddr, Amount: bi(5)},
		{TokenAddress: usdcAddr, Destination: vaultAddr, Amount: bi(50)},
		{TokenAddress: usdcAddr, Destination: handlerAddr, Amount: bi(10)},
		{TokenAddress: tokens.NativeTokenAddress, Destination: vaultAddr, Amount: bi(7)},
		{TokenAddress: wethAddr, Destination: vaultAddr},
		{TokenAddress: wethAddr, Destination: vaultAddr, Amount: bi(0)},
	}

	combined, value := CombineTransfers(input)
	require.Len(t, combined, 3)
	assert.Equal(t, usdcAddr, combined[0].TokenAddress)
	assert.Equal(t, vaultAddr, combined[0].Destination)
	assertBig(t, bi(150), combined[0].Amount)
	assert.Equal(t, tokens.NativeTokenAddress, combined[1].TokenAddress)
	assertBig(t, bi(12), combined[1].Amount)
	assert.Equal(t, handlerAddr, combined[2].Destination)
	assertBig(t, bi(10), combined[2].Amount)
	assertBig(t, bi(12), value)

	assertBig(t, bi(100), first)
	assert.Len(t, input, 7)

	empty, zero := CombineTransfers(nil)
	assert.Empty(t, empty)
	assert.Equal(t, 0, zero.Sign())
}

func TestBuildTokenTransfersMulticall(t *testing.T) {
	payload := BuildTokenTransfersMulticall([]TokenTransfer{
		{TokenAddress: tokens.NativeTokenAddress, Destination: vaultAddr, Amount: bi(3)},
		{TokenAddress: usdcAddr, Destination: vaultAddr, Amount: bi(9)},
	})
	assert.Equal(t, []string{MethodSendWnt, MethodSendTokens}, methods(payload))
	require.Len(t, payload.Calls[0].Params, 2)
	assert.Equal(t, vaultAddr, payload.Calls[0].Params[0])
	assertBig(t, bi(3), payload.Calls[0].Params[1].(*big.Int))
	require.Len(t, payload.Calls[1].Params, 3)
	assert.Equal(t, usdcAddr, payload.Calls[1].Params[0])
	assert.Equal(t, vaultAddr, payload.Calls[1].Params[1])
	assertBig(t, bi(9), payload.Calls[1].Params[2].(*big.Int))
	assertBig(t, bi(3), payload.Value)
}

func TestBuildIncreaseOrderPayload(t *testing.T) {
	t.Run("market_long_native_collateral", func(t *testing.T) {
		got, err := BuildIncreaseOrderPayload(IncreaseOrderParams{
			OrderParams:                   baseParams(),
			OrderType:                     orders.MarketIncrease,
			MarketAddress:                 marketAddr,
			IndexToken:                    weth,
			InitialCollateralTokenAddress: tokens.NativeTokenAddress,
			InitialCollateralDeltaAmount:  exp(1, 18),
			SizeDeltaUsd:                  usd(10_000),
			AcceptablePrice:               usd(3000),
			IsLong:                        true,
		})
		require.NoError(t, err)

		payload := got.OrderPayload
		assert.Equal(t, wethAddr, payload.Addresses.InitialCollateralToken)
		assert.Equal(t, marketAddr, payload.Addresses.Market)
		assert.Equal(t, uint8(orders.MarketIncrease), payload.OrderType)
		assert.True(t, payload.IsLong)
		assertBig(t, exp(3009, 12), payload.Numbers.AcceptablePrice)
		assert.Equal(t, 0, payload.Numbers.TriggerPrice.Sign())
		assertBig(t, usd(10_000), payload.Numbers.SizeDeltaUsd)
		assertBig(t, exp(1, 15), payload.Numbers.ExecutionFee)

		transfers := got.TokenTransfersParams
		assert.True(t, transfers.IsNativePayment)
		require.Len(t, transfers.TokenTransfers, 1)
		assert.Equal(t, vaultAddr, transfers.TokenTransfers[0].Destination)
		assertBig(t, exp(1001, 15), transfers.TokenTransfers[0].Amount)
		assertBig(t, exp(1001, 15), transfers.Value)
	})

	t.Run("limit_short_erc20_collateral", func(t *testing.T) {
		got, err := BuildIncreaseOrderPayload(IncreaseOrderParams{
			OrderParams:                   baseParams(),
			OrderType:                     orders.LimitIncrease,
			MarketAddress:                 marketAddr,
			IndexToken:                    weth,
			InitialCollateralTokenAddress: usdcAddr,
			InitialCollateralDeltaAmount:  exp(500, 6),
			SizeDeltaUsd:                  usd(5_000),
			AcceptablePrice:               usd(3090),
			TriggerPrice:                  usd(3100),
		})
		require.NoError(t, err)
		assertBig(t, exp(3100, 12), got.OrderPayload.Numbers.TriggerPrice)
		assertBig(t, exp(3090, 12), got.OrderPayload.Numbers.AcceptablePrice)
		assert.Equal(t, usdcAddr, got.OrderPayload.Addresses.InitialCollateralToken)
		assert.False(t, got.TokenTransfersParams.IsNativePayment)
		require.Len(t, got.TokenTransfersParams.TokenTransfers, 2)
		assert.Equal(t, tokens.NativeTokenAddress, got.TokenTransfersParams.TokenTransfers[0].TokenAddress)
		assert.Equal(t, usdcAddr, got.TokenTransfersParams.TokenTransfers[1].TokenAddress)
		assertBig(t, exp(1, 15), got.TokenTransfersParams.Value)
	})

	t.Run("external_calls_redirect_collateral", func(t *testing.T) {
		params := baseParams()
		params.ExternalCalls = &ExternalCalls{
			Targets:         []common.Address{handlerAddr},
			DataList:        [][]byte{{0xde, 0xad}},
			RefundTokens:    []common.Address{usdcAddr},
			RefundReceivers: []common.Address{accountAddr},
		}
		got, err := BuildIncreaseOrderPayload(IncreaseOrderParams{
			OrderParams:                   params,
			OrderType:                     orders.MarketIncrease,
			MarketAddress:                 marketAddr,
			IndexToken:                    weth,
			InitialCollateralTokenAddress: usdcAddr,
			InitialCollateralDeltaAmount:  exp(500, 6),
			SizeDeltaUsd:                  usd(5_000),
			AcceptablePrice:               usd(3000),
			IsLong:                        true,
		})
		require.NoError(t, err)
		assert.Equal(t, vaultAddr, got.TokenTransfersParams.TokenTransfers[0].Destination)
		assert.Equal(t, handlerAddr, got.TokenTransfersParams.TokenTransfers[1].Destination)

		multicall := BuildCreateOrderMulticall(got)
		assert.Equal(t, []string{MethodSendWnt, MethodSendTokens, MethodMakeExternalCalls, MethodCreateOrder}, methods(multicall))
	})

	t.Run("erc20_collateral_sends_fee_first", func(t *testing.T) {
		params := baseParams()
		params.ExecutionFee = bi(1000)
		got, err := BuildIncreaseOrderPayload(IncreaseOrderParams{
			OrderParams:                   params,
			OrderType:                     orders.MarketIncrease,
			MarketAddress:                 marketAddr,
			IndexToken:                    weth,
			InitialCollateralTokenAddress: usdcAddr,
			InitialCollateralDeltaAmount:  exp(5, 6),
			SizeDeltaUsd:                  usd(50),
			AcceptablePrice:               usd(3000),
			IsLong:                        true,
		})
		require.NoError(t, err)

		batch := BuildBatchOrderMulticallPayload(BatchOrderTxnParams{CreateOrderParams: []CreateOrderTxnParams{got}}, contracts)
		assert.Equal(t, []string{MethodSendWnt, MethodSendTokens, MethodCreateOrder}, methods(batch))
		assertBig(t, bi(1000), batch.Value)
		assert.Equal(t, vaultAddr, batch.Calls[0].Params[0])
		assertBig(t, bi(1000), batch.Calls[0].Params[1].(*big.Int))
		assertBig(t, exp(5, 6), batch.Calls[1].Params[2].(*big.Int))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := BuildIncreaseOrderPayload(IncreaseOrderParams{OrderParams: baseParams(), OrderType: orders.MarketDecrease, IndexToken: weth})
		assert.True(t, errors.Is(err, ErrInvalidOrderType))

		_, err = BuildIncreaseOrderPayload(IncreaseOrderParams{OrderParams: baseParams(), OrderType: orders.MarketIncrease})
		assert.ErrorIs(t, err, ErrMissingIndexToken)
	})
}

func TestBuildDecreaseOrderPayload(t *testing.T) {
	got, err := BuildDecreaseOrderPayload(DecreaseOrderParams{
		OrderParams:                   baseParams(),
		OrderType:                     orders.MarketDecrease,
		MarketAddress:                 marketAddr,
		IndexToken:                    weth,
		InitialCollateralTokenAddress: wethAddr,
		InitialCollateralDeltaAmount:  exp(2, 17),
		ReceiveTokenAddress:           tokens.NativeTokenAddress,
		SizeDeltaUsd:                  usd(2_000),
		AcceptablePrice:               usd(3000),
		MinOutputUsd:                  usd(1000),
		DecreasePositionSwapType:      orders.SwapPnlTokenToCollateralToken,
		IsLong:                        true,
	})
	require.NoError(t, err)

	payload := got.OrderPayload
	assertBig(t, exp(2991, 12), payload.Numbers.AcceptablePrice)
	assertBig(t, usd(997), payload.Numbers.MinOutputAmount)
	assertBig(t, exp(2, 17), payload.Numbers.InitialCollateralDeltaAmount)
	assert.True(t, payload.ShouldUnwrapNativeToken)
	assert.Equal(t, uint8(orders.SwapPnlTokenToCollateralToken), payload.DecreasePositionSwapType)

	transfers := got.TokenTransfersParams
	assert.True(t, transfers.IsNativeReceive)
	require.Len(t, transfers.TokenTransfers, 1)
	assert.Equal(t, tokens.NativeTokenAddress, transfers.TokenTransfers[0].TokenAddress)
	assertBig(t, exp(1, 15), transfers.Value)

	t.Run("stop_loss_keeps_price", func(t *testing.T) {
		got, err := BuildDecreaseOrderPayload(DecreaseOrderParams{
			OrderParams:     baseParams(),
			OrderType:       orders.StopLossDecrease,
			MarketAddress:   marketAddr,
			IndexToken:      weth,
			SizeDeltaUsd:    usd(2_000),
			AcceptablePrice: usd(2700),
			TriggerPrice:    usd(2750),
			IsLong:          true,
		})
		require.NoError(t, err)
		assertBig(t, exp(2700, 12), got.OrderPayload.Numbers.AcceptablePrice)
		assertBig(t, exp(2750, 12), got.OrderPayload.Numbers.TriggerPrice)
	})
}

func TestBuildSwapOrderPayload(t *testing.T) {
	got, err := BuildSwapOrderPayload(SwapOrderParams{
		OrderParams:      baseParams(),
		OrderType:        orders.LimitSwap,
		FromTokenAddress: usdcAddr,
		FromTokenAmount:  exp(3000, 6),
		ToTokenAddress:   tokens.NativeTokenAddress,
		SwapPath:         []common.Address{marketAddr},
		MinOutputAmount:  exp(1, 18),
		TriggerRatio:     usd(2900),
	})
	require.NoError(t, err)

	payload := got.OrderPayload
	assert.Equal(t, common.Address{}, payload.Addresses.Market)
	assert.Equal(t, []common.Address{marketAddr}, payload.Addresses.SwapPath)
	assertBig(t, usd(2900), payload.Numbers.TriggerPrice)
	assertBig(t, exp(997, 15), payload.Numbers.MinOutputAmount)
	assert.True(t, payload.ShouldUnwrapNativeToken)
	assert.Equal(t, uint8(orders.LimitSwap), payload.OrderType)

	market, err := BuildSwapOrderPayload(SwapOrderParams{
		OrderParams:      baseParams(),
		OrderType:        orders.MarketSwap,
		FromTokenAddress: usdcAddr,
		FromTokenAmount:  exp(3000, 6),
		ToTokenAddress:   wethAddr,
		SwapPath:         []common.Address{marketAddr},
		TriggerRatio:     usd(2900),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, market.OrderPayload.Numbers.TriggerPrice.Sign())
	assert.False(t, market.OrderPayload.ShouldUnwrapNativeToken)

	_, err = BuildSwapOrderPayload(SwapOrderParams{OrderParams: baseParams(), OrderType: orders.MarketSwap})
	assert.Error(t, err)
	_, err = BuildSwapOrderPayload(SwapOrderParams{OrderParams: baseParams(), OrderType: orders.LimitIncrease, SwapPath: []common.Address{marketAddr}})
	assert.ErrorIs(t, err, ErrInvalidOrderType)
}

func TestBuildUpdateOrderMulticall(t *testing.T) {
	key := common.HexToHash("0x01")
	tests := []struct {
		name     string
		topUp    *big.Int
		expected []string
		value    *big.Int
	}{
		{"with_top_up", exp(2, 14), []string{MethodSendWnt, MethodUpdateOrder}, exp(2, 14)},
		{"zero_top_up", bi(0), []string{MethodUpdateOrder}, bi(0)},
		{"nil_top_up", nil, []string{MethodUpdateOrder}, bi(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := BuildUpdateOrderPayload(UpdateOrderParams{
				OrderKey:          key,
				IndexToken:        weth,
				SizeDeltaUsd:      usd(1000),
				AcceptablePrice:   usd(3050),
				TriggerPrice:      usd(3000),
				ExecutionFeeTopUp: tt.topUp,
			})
			assertBig(t, exp(3050, 12), update.UpdatePayload.AcceptablePrice)
			assertBig(t, exp(3000, 12), update.UpdatePayload.TriggerPrice)

			payload := BuildUpdateOrderMulticall(update, vaultAddr)
			assert.Equal(t, tt.expected, methods(payload))
			assertBig(t, tt.value, payload.Value)
		})
	}

	swapUpdate := BuildUpdateOrderPayload(UpdateOrderParams{OrderKey: key, TriggerPrice: usd(2900)})
	assertBig(t, usd(2900), swapUpdate.UpdatePayload.TriggerPrice)
}

func sampleBatch(t *testing.T) BatchOrderTxnParams {
	t.Helper()
	create, err := BuildIncreaseOrderPayload(IncreaseOrderParams{
		OrderParams:                   baseParams(),
		OrderType:                     orders.MarketIncrease,
		MarketAddress:                 marketAddr,
		IndexToken:                    weth,
		InitialCollateralTokenAddress: usdcAddr,
		InitialCollateralDeltaAmount:  exp(500, 6),
		SizeDeltaUsd:                  usd(5_000),
		AcceptablePrice:               usd(3000),
		IsLong:                        true,
	})
	require.NoError(t, err)
	return BatchOrderTxnParams{
		CreateOrderParams: []CreateOrderTxnParams{create},
		UpdateOrderParams: []UpdateOrderTxnParams{BuildUpdateOrderPayload(UpdateOrderParams{
			OrderKey:          common.HexToHash("0x02"),
			IndexToken:        weth,
			ExecutionFeeTopUp: exp(3, 14),
		})},
		CancelOrderParams: []common.Hash{common.HexToHash("0x03")},
	}
}

func TestBuildBatchOrderMulticallPayload(t *testing.T) {
	batch := BuildBatchOrderMulticallPayload(sampleBatch(t), contracts)
	assert.Equal(t, []string{
		MethodSendWnt, MethodSendTokens, MethodCreateOrder,
		MethodSendWnt, MethodUpdateOrder,
		MethodCancelOrder,
	}, methods(batch))
	assertBig(t, exp(13, 14), batch.Value)

	empty := BuildBatchOrderMulticallPayload(BatchOrderTxnParams{}, contracts)
	assert.Empty(t, empty.Calls)
	assert.Equal(t, 0, empty.Value.Sign())
}

func TestEncodeMulticall(t *testing.T) {
	batch := BuildBatchOrderMulticallPayload(sampleBatch(t), contracts)

	data, err := EncodeMulticall(batch)
	require.NoError(t, err)
	multicall := RouterABI.Methods[MethodMulticall]
	assert.Equal(t, multicall.ID, data[:4])

	args, err := multicall.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	inner, ok := args[0].([][]byte)
	require.True(t, ok)
	require.Len(t, inner, len(batch.Calls))
	for i, call := range batch.Calls {
		assert.Equal(t, RouterABI.Methods[call.Method].ID, inner[i][:4], call.Method)
	}

	sendWnt := RouterABI.Methods[MethodSendWnt]
	decoded, err := sendWnt.Inputs.Unpack(inner[0][4:])
	require.NoError(t, err)
	assert.Equal(t, vaultAddr, decoded[0])
	assertBig(t, exp(1, 15), decoded[1].(*big.Int))

	_, err = EncodeCall(Call{Method: "withdraw"})
	assert.ErrorContains(t, err, "unknown router method")

	_, err = EncodeCall(Call{Method: MethodCancelOrder, Params: []any{"not a hash"}})
	assert.Error(t, err)
}

func TestDigest(t *testing.T) {
	first, err := Digest(BuildBatchOrderMulticallPayload(sampleBatch(t), contracts))
	require.NoError(t, err)
	second, err := Digest(BuildBatchOrderMulticallPayload(sampleBatch(t), contracts))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	changed := BuildBatchOrderMulticallPayload(sampleBatch(t), contracts)
	changed.Value = new(big.Int).Add(changed.Value, bi(1))
	third, err := Digest(changed)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}
