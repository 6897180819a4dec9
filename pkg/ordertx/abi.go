package ordertx

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Router methods emitted by the builders.
const (
	MethodMulticall         = "multicall"
	MethodSendWnt           = "sendWnt"
	MethodSendTokens        = "sendTokens"
	MethodCreateOrder       = "createOrder"
	MethodUpdateOrder       = "updateOrder"
	MethodCancelOrder       = "cancelOrder"
	MethodMakeExternalCalls = "makeExternalCalls"
	MethodSimulateExecute   = "simulateExecuteLatestOrder"
)

const exchangeRouterABI = `[
  {"type":"function","name":"multicall","stateMutability":"payable",
   "inputs":[{"name":"data","type":"bytes[]"}],
   "outputs":[{"name":"results","type":"bytes[]"}]},
  {"type":"function","name":"sendWnt","stateMutability":"payable",
   "inputs":[{"name":"receiver","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"sendTokens","stateMutability":"payable",
   "inputs":[{"name":"token","type":"address"},{"name":"receiver","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"createOrder","stateMutability":"payable",
   "inputs":[{"name":"params","type":"tuple","components":[
     {"name":"addresses","type":"tuple","components":[
       {"name":"receiver","type":"address"},
       {"name":"cancellationReceiver","type":"address"},
       {"name":"callbackContract","type":"address"},
       {"name":"uiFeeReceiver","type":"address"},
       {"name":"market","type":"address"},
       {"name":"initialCollateralToken","type":"address"},
       {"name":"swapPath","type":"address[]"}]},
     {"name":"numbers","type":"tuple","components":[
       {"name":"sizeDeltaUsd","type":"uint256"},
       {"name":"initialCollateralDeltaAmount","type":"uint256"},
       {"name":"triggerPrice","type":"uint256"},
       {"name":"acceptablePrice","type":"uint256"},
       {"name":"executionFee","type":"uint256"},
       {"name":"callbackGasLimit","type":"uint256"},
       {"name":"minOutputAmount","type":"uint256"},
       {"name":"validFromTime","type":"uint256"}]},
     {"name":"orderType","type":"uint8"},
     {"name":"decreasePositionSwapType","type":"uint8"},
     {"name":"isLong","type":"bool"},
     {"name":"shouldUnwrapNativeToken","type":"bool"},
     {"name":"autoCancel","type":"bool"},
     {"name":"referralCode","type":"bytes32"},
     {"name":"dataList","type":"bytes32[]"}]}],
   "outputs":[{"name":"","type":"bytes32"}]},
  {"type":"function","name":"updateOrder","stateMutability":"payable",
   "inputs":[
     {"name":"key","type":"bytes32"},
     {"name":"sizeDeltaUsd","type":"uint256"},
     {"name":"acceptablePrice","type":"uint256"},
     {"name":"triggerPrice","type":"uint256"},
     {"name":"minOutputAmount","type":"uint256"},
     {"name":"validFromTime","type":"uint256"},
     {"name":"autoCancel","type":"bool"}],"outputs":[]},
  {"type":"function","name":"cancelOrder","stateMutability":"payable",
   "inputs":[{"name":"key","type":"bytes32"}],"outputs":[]},
  {"type":"function","name":"makeExternalCalls","stateMutability":"payable",
   "inputs":[
     {"name":"externalCallTargets","type":"address[]"},
     {"name":"externalCallDataList","type":"bytes[]"},
     {"name":"refundTokens","type":"address[]"},
     {"name":"refundReceivers","type":"address[]"}],"outputs":[]},
  {"type":"function","name":"simulateExecuteLatestOrder","stateMutability":"payable",
   "inputs":[{"name":"simulatedOracleParams","type":"tuple","components":[
     {"name":"primaryTokens","type":"address[]"},
     {"name":"primaryPrices","type":"tuple[]","components":[
       {"name":"min","type":"uint256"},
       {"name":"max","type":"uint256"}]},
     {"name":"minTimestamp","type":"uint256"},
     {"name":"maxTimestamp","type":"uint256"}]}],"outputs":[]},
  {"type":"error","name":"EndOfOracleSimulation","inputs":[]},
  {"type":"error","name":"OracleTimestampsAreSmallerThanRequired","inputs":[
     {"name":"minOracleTimestamp","type":"uint256"},
     {"name":"expectedTimestamp","type":"uint256"}]},
  {"type":"error","name":"InsufficientExecutionFee","inputs":[
     {"name":"executionFee","type":"uint256"},
     {"name":"minExecutionFee","type":"uint256"}]},
  {"type":"error","name":"OrderNotFound","inputs":[{"name":"key","type":"bytes32"}]}
]`

// RouterABI is the subset of the exchange router interface the builders and
// the simulator speak.
var RouterABI = mustParseABI(exchangeRouterABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("ordertx: parse router abi: %v", err))
	}
	return parsed
}
