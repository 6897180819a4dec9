package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrChainIDMismatch is returned when the RPC endpoint serves another chain.
var ErrChainIDMismatch = errors.New("chain: rpc chain id mismatch")

// Dial connects to the network's RPC endpoint and checks its chain id.
func (n *NetworkConfig) Dial(ctx context.Context) (*ethclient.Client, error) {
	if n.RPCURL == "" {
		return nil, errors.New("chain: rpc_url is not configured")
	}
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}
	client, err := ethclient.DialContext(ctx, n.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial rpc: %w", err)
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("chain: query chain id: %w", err)
	}
	if id.Cmp(big.NewInt(n.ChainID)) != 0 {
		client.Close()
		return nil, fmt.Errorf("%w: want %d, got %s", ErrChainIDMismatch, n.ChainID, id)
	}
	return client, nil
}
