package tokens

import (
	"github.com/ethereum/go-ethereum/common"
)

// GetIsEquivalentTokens reports whether two tokens settle as the same asset:
// same address, a native/wrapped pair, or synthetics sharing a symbol.
func GetIsEquivalentTokens(a, b *Token) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Address == b.Address {
		return true
	}
	if a.WrappedAddress != nil && *a.WrappedAddress == b.Address {
		return true
	}
	if b.WrappedAddress != nil && *b.WrappedAddress == a.Address {
		return true
	}
	if (a.IsSynthetic || b.IsSynthetic) && a.Symbol == b.Symbol {
		return true
	}
	return false
}

// GetTokenData looks up a token, optionally swapping the native token for its
// wrapped twin or vice versa. It returns nil for unknown addresses.
func GetTokenData(data TokensData, address common.Address, convertTo ConvertTo) *Token {
	token, ok := data[address]
	if !ok || token == nil {
		return nil
	}
	switch convertTo {
	case ConvertToWrapped:
		if token.IsNative && token.WrappedAddress != nil {
			return data[*token.WrappedAddress]
		}
	case ConvertToNative:
		if token.IsWrapped {
			return data[NativeTokenAddress]
		}
	}
	return token
}

// GetIsWrap reports a native -> wrapped conversion.
func GetIsWrap(from, to *Token) bool {
	return from != nil && to != nil && from.IsNative && to.IsWrapped
}

// GetIsUnwrap reports a wrapped -> native conversion.
func GetIsUnwrap(from, to *Token) bool {
	return from != nil && to != nil && from.IsWrapped && to.IsNative
}

// IsNativeAddress reports whether address is the native token pseudo-address.
func IsNativeAddress(address common.Address) bool {
	return address == NativeTokenAddress
}
