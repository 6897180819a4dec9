package chain_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpsdk/pkg/chain"
)

const arbitrumYAML = `
default: arbitrum
networks:
  arbitrum:
    chain_id: 42161
    rpc_url: ${PERPSDK_TEST_RPC}
    exchange_router: 0x5aC4e27341e4cCcb3e5FD62f9E62db2Adf43dd57
    order_vault: 0x31eF83a530Fde1B38EE9A18093A333D8Bbbc40D5
    wrapped_native_token: 0x82aF49447D8a07e3bd95BD0d56f35241523fBab1
    timeout: 15s
    simulation:
      retry_delay: 50ms
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PERPSDK_TEST_RPC", "https://arb1.example.org")

	cfg, err := chain.LoadConfig(writeConfig(t, arbitrumYAML))
	require.NoError(t, err)

	network, err := cfg.Network("")
	require.NoError(t, err)
	assert.Equal(t, int64(42161), network.ChainID)
	assert.Equal(t, "https://arb1.example.org", network.RPCURL)
	assert.Equal(t, 15*time.Second, network.Timeout)
	assert.Equal(t, 2, network.Simulation.Retries())
	assert.Equal(t, 50*time.Millisecond, network.Simulation.RetryDelay)

	contracts := network.Contracts()
	assert.Equal(t, common.HexToAddress("0x31eF83a530Fde1B38EE9A18093A333D8Bbbc40D5"), contracts.OrderVault)
	assert.Equal(t, common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"), contracts.WrappedNativeToken)
	assert.Equal(t, common.Address{}, contracts.ExternalHandler)

	_, err = cfg.Network("avalanche")
	assert.Error(t, err)
}

func TestLoadConfigDefaultsSimulation(t *testing.T) {
	body := strings.Replace(arbitrumYAML, "    simulation:\n      retry_delay: 50ms\n", "", 1)
	cfg, err := chain.LoadConfig(writeConfig(t, body))
	require.NoError(t, err)

	network, err := cfg.Network("arbitrum")
	require.NoError(t, err)
	assert.Equal(t, 2, network.Simulation.Retries())
	assert.Equal(t, 200*time.Millisecond, network.Simulation.RetryDelay)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "empty",
			body:    "networks: {}\n",
			wantErr: "networks cannot be empty",
		},
		{
			name:    "unknown_default",
			body:    strings.Replace(arbitrumYAML, "default: arbitrum", "default: base", 1),
			wantErr: `default network "base"`,
		},
		{
			name:    "missing_chain_id",
			body:    strings.Replace(arbitrumYAML, "chain_id: 42161", "chain_id: 0", 1),
			wantErr: "chain_id",
		},
		{
			name:    "bad_address",
			body:    strings.Replace(arbitrumYAML, "0x31eF83a530Fde1B38EE9A18093A333D8Bbbc40D5", "vault", 1),
			wantErr: "invalid order_vault",
		},
		{
			name:    "missing_router",
			body:    strings.Replace(arbitrumYAML, "    exchange_router: 0x5aC4e27341e4cCcb3e5FD62f9E62db2Adf43dd57\n", "", 1),
			wantErr: "exchange_router address is required",
		},
		{
			name:    "bad_timeout",
			body:    strings.Replace(arbitrumYAML, "timeout: 15s", "timeout: soon", 1),
			wantErr: "invalid timeout",
		},
		{
			name:    "negative_retries",
			body:    strings.Replace(arbitrumYAML, "retry_delay: 50ms", "max_retries: -1", 1),
			wantErr: "max_retries",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chain.LoadConfigFromReader(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestContractsValidate(t *testing.T) {
	c := chain.Contracts{
		ExchangeRouter:     common.HexToAddress("0x01"),
		OrderVault:         common.HexToAddress("0x02"),
		WrappedNativeToken: common.HexToAddress("0x03"),
	}
	assert.NoError(t, c.Validate())

	c.OrderVault = common.Address{}
	assert.ErrorContains(t, c.Validate(), "order_vault")
}
