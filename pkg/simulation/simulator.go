package simulation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/zeromicro/go-zero/core/logx"

	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/ordertx"
	"perpsdk/pkg/tokens"
)

const (
	errEndOfSimulation = "EndOfOracleSimulation"
	errStaleOracle     = "OracleTimestampsAreSmallerThanRequired"
)

var (
	// ErrStaleOracleBlock marks a revert caused by the node serving a block
	// older than the simulated oracle prices. It is retried.
	ErrStaleOracleBlock = errors.New("simulation: oracle timestamps are smaller than required")
	// ErrNoRouter is returned when the simulator has no exchange router.
	ErrNoRouter = errors.New("simulation: exchange router address is required")
)

// ContractCaller performs read-only calls. *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// SimulationError is a decoded router revert other than the end-of-simulation
// marker.
type SimulationError struct {
	Name   string
	Args   []any
	Reason string
	Data   []byte
	cause  error
}

func (e *SimulationError) Error() string {
	var b strings.Builder
	b.WriteString("simulation: reverted")
	if e.Name != "" {
		b.WriteString(" with ")
		b.WriteString(e.Name)
	}
	if len(e.Args) > 0 {
		fmt.Fprintf(&b, "%v", e.Args)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *SimulationError) Unwrap() error { return e.cause }

// Options tune a single simulation.
type Options struct {
	From common.Address
	// PriceOverrides are the oracle prices the keeper would sign, taken from
	// each token's current min/max prices.
	PriceOverrides []*tokens.Token
	// MinTimestamp and MaxTimestamp bound the simulated oracle prices. Zero
	// values default to the simulator clock.
	MinTimestamp uint64
	MaxTimestamp uint64
	BlockNumber  *big.Int
}

// Simulator dry-runs order multicalls against a node.
type Simulator struct {
	caller ContractCaller
	router common.Address
	policy RetryPolicy
	now    func() time.Time
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(s *Simulator) {
		s.policy = policy
	}
}

// WithClock overrides the clock used for default oracle timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSimulator builds a simulator calling the exchange router at router.
func NewSimulator(caller ContractCaller, router common.Address, opts ...Option) *Simulator {
	s := &Simulator{
		caller: caller,
		router: router,
		policy: DefaultRetryPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type priceProps struct {
	Min *big.Int `abi:"min"`
	Max *big.Int `abi:"max"`
}

type simulatePricesParams struct {
	PrimaryTokens []common.Address `abi:"primaryTokens"`
	PrimaryPrices []priceProps     `abi:"primaryPrices"`
	MinTimestamp  *big.Int         `abi:"minTimestamp"`
	MaxTimestamp  *big.Int         `abi:"maxTimestamp"`
}

// SimulateExecuteOrder appends simulateExecuteLatestOrder to payload and
// eth_calls the multicall. A revert with EndOfOracleSimulation means the
// order would execute; stale-block reverts are retried per the policy.
func (s *Simulator) SimulateExecuteOrder(ctx context.Context, payload ordertx.MulticallPayload, opts Options) error {
	if s.caller == nil {
		return errors.New("simulation: contract caller is required")
	}
	if s.router == (common.Address{}) {
		return ErrNoRouter
	}
	data, err := ordertx.EncodeMulticall(s.withSimulateCall(payload, opts))
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	router := s.router
	msg := ethereum.CallMsg{
		From:  opts.From,
		To:    &router,
		Value: new(big.Int).Set(fixedpoint.OrZero(payload.Value)),
		Data:  data,
	}

	logger := logx.WithContext(ctx)
	return s.policy.do(ctx, func() error {
		_, callErr := s.caller.CallContract(ctx, msg, opts.BlockNumber)
		return decodeCallError(callErr)
	}, func(attempt int, err error) {
		logger.Infof("simulation: stale oracle block, retry %d/%d in %s: %v", attempt, s.policy.normalised().MaxRetries, s.policy.Delay, err)
	})
}

func (s *Simulator) withSimulateCall(payload ordertx.MulticallPayload, opts Options) ordertx.MulticallPayload {
	params := simulatePricesParams{
		PrimaryTokens: make([]common.Address, 0, len(opts.PriceOverrides)),
		PrimaryPrices: make([]priceProps, 0, len(opts.PriceOverrides)),
	}
	for _, token := range opts.PriceOverrides {
		if token == nil || token.Prices.MinPrice == nil || token.Prices.MaxPrice == nil {
			continue
		}
		prices := tokens.ConvertToContractTokenPrices(token.Prices, token.Decimals)
		params.PrimaryTokens = append(params.PrimaryTokens, token.Address)
		params.PrimaryPrices = append(params.PrimaryPrices, priceProps{Min: prices.MinPrice, Max: prices.MaxPrice})
	}
	now := uint64(s.now().Unix())
	minTs, maxTs := opts.MinTimestamp, opts.MaxTimestamp
	if minTs == 0 {
		minTs = now
	}
	if maxTs == 0 {
		maxTs = now
	}
	params.MinTimestamp = new(big.Int).SetUint64(minTs)
	params.MaxTimestamp = new(big.Int).SetUint64(maxTs)

	calls := make([]ordertx.Call, 0, len(payload.Calls)+1)
	calls = append(calls, payload.Calls...)
	calls = append(calls, ordertx.Call{Method: ordertx.MethodSimulateExecute, Params: []any{params}})
	return ordertx.MulticallPayload{Calls: calls, Value: payload.Value}
}

// decodeCallError maps an eth_call failure to nil (end of simulation), a
// stale-block error, a *SimulationError, or the transport error itself.
func decodeCallError(err error) error {
	if err == nil {
		return nil
	}
	data, ok := revertData(err)
	if !ok {
		return fmt.Errorf("simulation: call: %w", err)
	}
	if len(data) < 4 {
		return &SimulationError{Reason: err.Error(), Data: data, cause: err}
	}

	selector := data[:4]
	for name, abiErr := range ordertx.RouterABI.Errors {
		if !bytes.Equal(abiErr.ID[:4], selector) {
			continue
		}
		if name == errEndOfSimulation {
			return nil
		}
		args, unpackErr := abiErr.Inputs.Unpack(data[4:])
		if unpackErr != nil {
			args = nil
		}
		simErr := &SimulationError{Name: name, Args: args, Data: data, cause: err}
		if name == errStaleOracle {
			simErr.cause = ErrStaleOracleBlock
		}
		return simErr
	}

	if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
		return &SimulationError{Name: "Error", Reason: reason, Data: data, cause: err}
	}
	return &SimulationError{Reason: "unrecognised revert " + hexutil.Encode(selector), Data: data, cause: err}
}

// revertData extracts the revert payload nodes attach to execution errors.
func revertData(err error) ([]byte, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil, false
	}
	switch v := dataErr.ErrorData().(type) {
	case string:
		data, decodeErr := hexutil.Decode(v)
		if decodeErr != nil {
			return nil, false
		}
		return data, true
	case []byte:
		return v, true
	default:
		return nil, false
	}
}
