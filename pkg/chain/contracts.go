package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Contracts are the protocol deployments an order payload is addressed to.
type Contracts struct {
	ExchangeRouter     common.Address
	OrderVault         common.Address
	WrappedNativeToken common.Address
	// ExternalHandler receives tokens for external swap calls. Optional.
	ExternalHandler common.Address
}

// Validate reports the first required contract left unset.
func (c Contracts) Validate() error {
	required := []struct {
		name string
		addr common.Address
	}{
		{"exchange_router", c.ExchangeRouter},
		{"order_vault", c.OrderVault},
		{"wrapped_native_token", c.WrappedNativeToken},
	}
	for _, r := range required {
		if r.addr == (common.Address{}) {
			return fmt.Errorf("chain: %s address is required", r.name)
		}
	}
	return nil
}
