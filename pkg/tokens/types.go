package tokens

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NativeTokenAddress is the pseudo-address under which the chain's native
// token is listed. Contracts only ever see the wrapped token.
var NativeTokenAddress = common.Address{}

// TokenPrices is a min/max oracle price pair, USD * 10^30 per whole token.
type TokenPrices struct {
	MinPrice *big.Int `json:"minPrice"`
	MaxPrice *big.Int `json:"maxPrice"`
}

// Token describes an ERC20 (or the native token) together with its prices.
type Token struct {
	Address        common.Address  `json:"address"`
	Symbol         string          `json:"symbol"`
	Decimals       int             `json:"decimals"`
	Prices         TokenPrices     `json:"prices"`
	IsNative       bool            `json:"isNative,omitempty"`
	IsWrapped      bool            `json:"isWrapped,omitempty"`
	IsSynthetic    bool            `json:"isSynthetic,omitempty"`
	WrappedAddress *common.Address `json:"wrappedAddress,omitempty"`
}

// TokensData indexes tokens by address.
type TokensData map[common.Address]*Token

// ConvertTo selects the wrapped or native twin in GetTokenData.
type ConvertTo int

const (
	// ConvertNone returns the token as listed.
	ConvertNone ConvertTo = iota
	// ConvertToWrapped maps the native token to its wrapped twin.
	ConvertToWrapped
	// ConvertToNative maps the wrapped token to the native one.
	ConvertToNative
)

// TokensRatio expresses how many smallest tokens buy one largest token,
// Precision-scaled.
type TokensRatio struct {
	Ratio         *big.Int
	LargestToken  *Token
	SmallestToken *Token
}
