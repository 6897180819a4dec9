package simulation

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpsdk/pkg/ordertx"
	"perpsdk/pkg/tokens"
)

var (
	routerAddr = common.HexToAddress("0x5aC4e27341e4cCcb3e5FD62f9E62db2Adf43dd57")
	vaultAddr  = common.HexToAddress("0x31eF83a530Fde1B38EE9A18093A333D8Bbbc40D5")
)

type revertError struct {
	data string
}

func (e revertError) Error() string          { return "execution reverted" }
func (e revertError) ErrorCode() int         { return 3 }
func (e revertError) ErrorData() interface{} { return e.data }

type fakeCaller struct {
	results []error
	msgs    []ethereum.CallMsg
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.msgs = append(f.msgs, msg)
	i := len(f.msgs) - 1
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return nil, f.results[i]
}

func customRevert(t *testing.T, name string, args ...any) error {
	t.Helper()
	def, ok := ordertx.RouterABI.Errors[name]
	require.True(t, ok, name)
	packed, err := def.Inputs.Pack(args...)
	require.NoError(t, err)
	data := append(append([]byte{}, def.ID[:4]...), packed...)
	return revertError{data: hexutil.Encode(data)}
}

func stringRevert(t *testing.T, reason string) error {
	t.Helper()
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(t, err)
	data := append([]byte{0x08, 0xc3, 0x79, 0xa0}, packed...)
	return revertError{data: hexutil.Encode(data)}
}

func samplePayload() ordertx.MulticallPayload {
	return ordertx.MulticallPayload{
		Calls: []ordertx.Call{{Method: ordertx.MethodSendWnt, Params: []any{vaultAddr, big.NewInt(1_000)}}},
		Value: big.NewInt(1_000),
	}
}

func newTestSimulator(caller ContractCaller, retries int) *Simulator {
	return NewSimulator(caller, routerAddr,
		WithRetryPolicy(RetryPolicy{MaxRetries: retries, Delay: time.Millisecond}),
		WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }),
	)
}

func TestSimulateExecuteOrder(t *testing.T) {
	end := func(t *testing.T) error { return customRevert(t, errEndOfSimulation) }
	stale := func(t *testing.T) error { return customRevert(t, errStaleOracle, big.NewInt(10), big.NewInt(20)) }

	tests := []struct {
		name      string
		results   func(t *testing.T) []error
		wantCalls int
		check     func(t *testing.T, err error)
	}{
		{
			name:      "end_of_simulation_is_success",
			results:   func(t *testing.T) []error { return []error{end(t)} },
			wantCalls: 1,
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name:      "no_revert_is_success",
			results:   func(t *testing.T) []error { return []error{nil} },
			wantCalls: 1,
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name:      "stale_block_recovers",
			results:   func(t *testing.T) []error { return []error{stale(t), stale(t), end(t)} },
			wantCalls: 3,
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name:      "stale_block_exhausts_two_retries",
			results:   func(t *testing.T) []error { return []error{stale(t)} },
			wantCalls: 3,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrStaleOracleBlock)
				var simErr *SimulationError
				require.ErrorAs(t, err, &simErr)
				assert.Equal(t, errStaleOracle, simErr.Name)
				require.Len(t, simErr.Args, 2)
				assert.Equal(t, "10", simErr.Args[0].(*big.Int).String())
			},
		},
		{
			name: "other_custom_error_is_not_retried",
			results: func(t *testing.T) []error {
				return []error{customRevert(t, "InsufficientExecutionFee", big.NewInt(1), big.NewInt(2))}
			},
			wantCalls: 1,
			check: func(t *testing.T, err error) {
				var simErr *SimulationError
				require.ErrorAs(t, err, &simErr)
				assert.Equal(t, "InsufficientExecutionFee", simErr.Name)
				assert.False(t, errors.Is(err, ErrStaleOracleBlock))
				assert.Contains(t, err.Error(), "InsufficientExecutionFee")
			},
		},
		{
			name:      "string_revert",
			results:   func(t *testing.T) []error { return []error{stringRevert(t, "order size too small")} },
			wantCalls: 1,
			check: func(t *testing.T, err error) {
				var simErr *SimulationError
				require.ErrorAs(t, err, &simErr)
				assert.Equal(t, "order size too small", simErr.Reason)
			},
		},
		{
			name:      "unknown_selector",
			results:   func(t *testing.T) []error { return []error{revertError{data: "0xdeadbeef"}} },
			wantCalls: 1,
			check: func(t *testing.T, err error) {
				var simErr *SimulationError
				require.ErrorAs(t, err, &simErr)
				assert.Contains(t, simErr.Reason, "0xdeadbeef")
			},
		},
		{
			name:      "transport_error_propagates",
			results:   func(t *testing.T) []error { return []error{errors.New("connection refused")} },
			wantCalls: 1,
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				var simErr *SimulationError
				assert.False(t, errors.As(err, &simErr))
				assert.Contains(t, err.Error(), "connection refused")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &fakeCaller{results: tt.results(t)}
			err := newTestSimulator(caller, 2).SimulateExecuteOrder(context.Background(), samplePayload(), Options{})
			tt.check(t, err)
			assert.Len(t, caller.msgs, tt.wantCalls)
		})
	}
}

func TestSimulateExecuteOrderCallMessage(t *testing.T) {
	caller := &fakeCaller{results: []error{customRevert(t, errEndOfSimulation)}}
	weth := &tokens.Token{
		Address:  common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"),
		Decimals: 18,
		Prices: tokens.TokenPrices{
			MinPrice: new(big.Int).Mul(big.NewInt(3000), new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)),
			MaxPrice: new(big.Int).Mul(big.NewInt(3001), new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)),
		},
	}
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")

	err := newTestSimulator(caller, 2).SimulateExecuteOrder(context.Background(), samplePayload(), Options{
		From:           from,
		PriceOverrides: []*tokens.Token{weth, nil},
	})
	require.NoError(t, err)
	require.Len(t, caller.msgs, 1)

	msg := caller.msgs[0]
	require.NotNil(t, msg.To)
	assert.Equal(t, routerAddr, *msg.To)
	assert.Equal(t, from, msg.From)
	assert.Equal(t, "1000", msg.Value.String())

	multicall := ordertx.RouterABI.Methods[ordertx.MethodMulticall]
	assert.Equal(t, multicall.ID, msg.Data[:4])
	args, err := multicall.Inputs.Unpack(msg.Data[4:])
	require.NoError(t, err)
	inner := args[0].([][]byte)
	require.Len(t, inner, 2)
	assert.Equal(t, ordertx.RouterABI.Methods[ordertx.MethodSendWnt].ID, inner[0][:4])
	assert.Equal(t, ordertx.RouterABI.Methods[ordertx.MethodSimulateExecute].ID, inner[1][:4])
}

func TestSimulateExecuteOrderRetryPolicy(t *testing.T) {
	stale := customRevert(t, errStaleOracle, big.NewInt(1), big.NewInt(2))

	t.Run("zero_retries", func(t *testing.T) {
		caller := &fakeCaller{results: []error{stale}}
		err := newTestSimulator(caller, 0).SimulateExecuteOrder(context.Background(), samplePayload(), Options{})
		assert.ErrorIs(t, err, ErrStaleOracleBlock)
		assert.Len(t, caller.msgs, 1)
	})

	t.Run("cancelled_while_waiting", func(t *testing.T) {
		caller := &fakeCaller{results: []error{stale}}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sim := NewSimulator(caller, routerAddr, WithRetryPolicy(RetryPolicy{MaxRetries: 2, Delay: time.Hour}))
		err := sim.SimulateExecuteOrder(ctx, samplePayload(), Options{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, caller.msgs, 1)
	})

	t.Run("default_policy", func(t *testing.T) {
		assert.Equal(t, RetryPolicy{MaxRetries: 2, Delay: 200 * time.Millisecond}, DefaultRetryPolicy())
	})

	t.Run("missing_router", func(t *testing.T) {
		sim := NewSimulator(&fakeCaller{results: []error{nil}}, common.Address{})
		assert.ErrorIs(t, sim.SimulateExecuteOrder(context.Background(), samplePayload(), Options{}), ErrNoRouter)
	})
}
