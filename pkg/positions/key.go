package positions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PositionKey is the parsed form of a colon-joined position key.
type PositionKey struct {
	Account           string
	MarketAddress     string
	CollateralAddress string
	IsLong            bool
}

// GetPositionKey joins the identifying fields of a position with colons.
func GetPositionKey(account, marketAddress, collateralAddress string, isLong bool) string {
	return strings.Join([]string{account, marketAddress, collateralAddress, strconv.FormatBool(isLong)}, ":")
}

// ParsePositionKey splits a key built by GetPositionKey.
func ParsePositionKey(key string) (PositionKey, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 4 {
		return PositionKey{}, fmt.Errorf("positions: malformed position key %q", key)
	}
	return PositionKey{
		Account:           parts[0],
		MarketAddress:     parts[1],
		CollateralAddress: parts[2],
		IsLong:            parts[3] == "true",
	}, nil
}

var positionKeyArgs = mustArguments("address", "address", "address", "bool")

// GetPositionContractKey is the key the contracts store the position under:
// keccak256(abi.encode(account, market, collateralToken, isLong)).
func GetPositionContractKey(account, market, collateralToken common.Address, isLong bool) (common.Hash, error) {
	encoded, err := positionKeyArgs.Pack(account, market, collateralToken, isLong)
	if err != nil {
		return common.Hash{}, fmt.Errorf("positions: encode position key: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

func mustArguments(types ...string) abi.Arguments {
	args := make(abi.Arguments, 0, len(types))
	for _, name := range types {
		typ, err := abi.NewType(name, "", nil)
		if err != nil {
			panic(fmt.Sprintf("positions: abi type %s: %v", name, err))
		}
		args = append(args, abi.Argument{Type: typ})
	}
	return args
}
