package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"perpsdk/internal/config"
	"perpsdk/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Network: %s", orDefault(cfg.Network)),
		fmt.Sprintf("Allowed slippage: %d bps", cfg.Orders.AllowedSlippageBps),
		fmt.Sprintf("Execution fee: %s", presence(cfg.Orders.ExecutionFee() != nil)),
		fmt.Sprintf("UI fee receiver: %s", presence(strings.TrimSpace(cfg.Orders.UIFeeReceiver) != "")),
		sectionLine("Chain config", cfg.Chain),
	}
	if network, err := cfg.ChainNetwork(); err == nil {
		lines = append(lines,
			fmt.Sprintf("Chain ID: %d", network.ChainID),
			fmt.Sprintf("RPC: %s", presence(network.RPCURL != "")),
			fmt.Sprintf("Simulation retries: %d every %s", network.Simulation.Retries(), network.Simulation.RetryDelay),
		)
	}
	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return "<default>"
	}
	return name
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
