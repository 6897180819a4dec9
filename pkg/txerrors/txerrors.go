// Package txerrors sorts transport failures of order transactions into the
// few categories a caller can act on.
package txerrors

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	"perpsdk/pkg/chain"
)

// Category is the class of a transaction error.
type Category string

const (
	CategoryNone              Category = ""
	CategoryInsufficientFunds Category = "insufficient_funds"
	CategoryUserDenied        Category = "user_denied"
	CategorySlippage          Category = "slippage"
	CategoryNetworkChanged    Category = "network_changed"
	CategoryExpired           Category = "expired"
	CategoryRPC               Category = "rpc"
	CategoryUnknown           Category = "unknown"
)

const userDeniedCode = 4001

// rpcCodes are JSON-RPC server error codes that mean the node, not the
// transaction, failed.
var rpcCodes = []int{-32603, -32002, -32005, -32000}

type pattern struct {
	category Category
	messages []string
}

// patterns are checked in order; the first match wins.
var patterns = []pattern{
	{
		category: CategoryUserDenied,
		messages: []string{"user rejected", "user denied", "rejected the request", "action_rejected"},
	},
	{
		category: CategoryInsufficientFunds,
		messages: []string{"insufficient funds", "not enough funds", "insufficient balance", "exceeds balance"},
	},
	{
		category: CategorySlippage,
		messages: []string{
			"slippage",
			"mark price lower than limit",
			"mark price higher than limit",
			"ordernotfulfillableatacceptableprice",
			"insufficientswapoutputamount",
			"insufficientoutputamount",
			"pricesimpactexceedsmax",
		},
	},
	{
		category: CategoryNetworkChanged,
		messages: []string{"network changed", "underlying network changed", "chain mismatch", "chain id mismatch"},
	},
	{
		category: CategoryExpired,
		messages: []string{"expired", "nonce too low", "nonce has already been used"},
	},
	{
		category: CategoryRPC,
		messages: []string{
			"internal json-rpc error",
			"could not coalesce error",
			"header not found",
			"too many requests",
			"rate limit",
			"request timeout",
			"missing response",
		},
	},
}

var descriptions = map[Category]string{
	CategoryInsufficientFunds: "Insufficient funds to cover the transaction amount and network fee.",
	CategoryUserDenied:        "Transaction was rejected by the signer.",
	CategorySlippage:          "Price moved beyond the allowed slippage.",
	CategoryNetworkChanged:    "Network changed while the transaction was pending.",
	CategoryExpired:           "Transaction expired before it was included.",
	CategoryRPC:               "RPC node error, try again or switch node.",
}

// Classify returns the category of err, CategoryNone for nil and
// CategoryUnknown when no pattern matches.
func Classify(err error) Category {
	if err == nil {
		return CategoryNone
	}
	if errors.Is(err, chain.ErrChainIDMismatch) {
		return CategoryNetworkChanged
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryRPC
	}

	code, hasCode := errorCode(err)
	if hasCode && code == userDeniedCode {
		return CategoryUserDenied
	}
	message := strings.ToLower(err.Error())
	for _, p := range patterns {
		for _, m := range p.messages {
			if strings.Contains(message, m) {
				return p.category
			}
		}
	}
	if hasCode && slices.Contains(rpcCodes, code) {
		return CategoryRPC
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) && (httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= http.StatusInternalServerError) {
		return CategoryRPC
	}
	return CategoryUnknown
}

// Describe returns a user-facing explanation of err. Unclassified errors are
// surfaced raw.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if text, ok := descriptions[Classify(err)]; ok {
		return text
	}
	return err.Error()
}

func errorCode(err error) (int, bool) {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}
