package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"perpsdk/internal/config"
	"perpsdk/pkg/chain"
	"perpsdk/pkg/confkit"
)

func TestConfigSummaryLines(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, []string{"Configuration: <nil>"}, ConfigSummaryLines(nil))
	})

	t.Run("without_chain", func(t *testing.T) {
		cfg := &config.Config{Env: "test", Orders: config.OrderDefaults{AllowedSlippageBps: 30}}
		lines := ConfigSummaryLines(cfg)
		assert.Equal(t, []string{
			"Environment: test",
			"Network: <default>",
			"Allowed slippage: 30 bps",
			"Execution fee: not configured",
			"UI fee receiver: not configured",
			"Chain config: not configured",
		}, lines)
	})

	t.Run("with_chain", func(t *testing.T) {
		retries := 3
		cfg := &config.Config{
			Env:     "prod",
			Network: "arbitrum",
			Orders:  config.OrderDefaults{AllowedSlippageBps: 50, ExecutionFeeWei: "1000"},
			Chain: confkit.Section[chain.Config]{
				File: "/etc/perpsdk/chain.yaml",
				Value: &chain.Config{
					Default: "arbitrum",
					Networks: map[string]*chain.NetworkConfig{
						"arbitrum": {ChainID: 42161, RPCURL: "http://node", Simulation: chain.SimulationConfig{MaxRetries: &retries}},
					},
				},
			},
		}
		lines := ConfigSummaryLines(cfg)
		assert.Contains(t, lines, "Execution fee: configured")
		assert.Contains(t, lines, "Chain config: /etc/perpsdk/chain.yaml")
		assert.Contains(t, lines, "Chain ID: 42161")
		assert.Contains(t, lines, "RPC: configured")
		assert.Contains(t, lines, "Simulation retries: 3 every 0s")
	})
}
