package chain

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const (
	defaultSimulationRetries = 2
	defaultSimulationDelay   = 200 * time.Millisecond
)

// Config captures one or more networks the library can build payloads for.
type Config struct {
	Default  string                    `yaml:"default"`
	Networks map[string]*NetworkConfig `yaml:"networks"`
}

// NetworkConfig describes a single deployment.
type NetworkConfig struct {
	ChainID            int64  `yaml:"chain_id"`
	RPCURL             string `yaml:"rpc_url"`
	ExchangeRouter     string `yaml:"exchange_router"`
	OrderVault         string `yaml:"order_vault"`
	WrappedNativeToken string `yaml:"wrapped_native_token"`
	ExternalHandler    string `yaml:"external_handler"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`

	Simulation SimulationConfig `yaml:"simulation"`

	contracts Contracts
}

// SimulationConfig bounds the stale-block retry loop of order simulation.
type SimulationConfig struct {
	MaxRetries    *int          `yaml:"max_retries"`
	RetryDelayRaw string        `yaml:"retry_delay"`
	RetryDelay    time.Duration `yaml:"-"`
}

// Retries returns the configured retry count, defaulting to 2.
func (s SimulationConfig) Retries() int {
	if s.MaxRetries == nil {
		return defaultSimulationRetries
	}
	return *s.MaxRetries
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chain config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read chain config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal chain config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Network returns the named network, or the default one when name is empty.
func (c *Config) Network(name string) (*NetworkConfig, error) {
	if strings.TrimSpace(name) == "" {
		name = c.Default
	}
	network, ok := c.Networks[name]
	if !ok {
		return nil, fmt.Errorf("chain config: network %q not defined", name)
	}
	return network, nil
}

// Contracts returns the parsed contract addresses of the network.
func (n *NetworkConfig) Contracts() Contracts {
	return n.contracts
}

func (c *Config) normalise() error {
	if c.Networks == nil {
		c.Networks = make(map[string]*NetworkConfig)
	}
	c.Default = strings.TrimSpace(os.ExpandEnv(c.Default))
	for name, network := range c.Networks {
		if network == nil {
			network = &NetworkConfig{}
			c.Networks[name] = network
		}
		network.expandEnv()
		if err := network.parseDurations(name); err != nil {
			return err
		}
		if err := network.parseAddresses(name); err != nil {
			return err
		}
	}
	return nil
}

func (n *NetworkConfig) expandEnv() {
	n.RPCURL = strings.TrimSpace(os.ExpandEnv(n.RPCURL))
	n.ExchangeRouter = strings.TrimSpace(os.ExpandEnv(n.ExchangeRouter))
	n.OrderVault = strings.TrimSpace(os.ExpandEnv(n.OrderVault))
	n.WrappedNativeToken = strings.TrimSpace(os.ExpandEnv(n.WrappedNativeToken))
	n.ExternalHandler = strings.TrimSpace(os.ExpandEnv(n.ExternalHandler))
	n.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(n.TimeoutRaw))
	n.Simulation.RetryDelayRaw = strings.TrimSpace(os.ExpandEnv(n.Simulation.RetryDelayRaw))
}

func (n *NetworkConfig) parseDurations(name string) error {
	n.Timeout = 0
	if n.TimeoutRaw != "" {
		d, err := time.ParseDuration(n.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("chain network %s: invalid timeout %q: %w", name, n.TimeoutRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("chain network %s: timeout must be positive, got %s", name, d)
		}
		n.Timeout = d
	}

	n.Simulation.RetryDelay = defaultSimulationDelay
	if n.Simulation.RetryDelayRaw != "" {
		d, err := time.ParseDuration(n.Simulation.RetryDelayRaw)
		if err != nil {
			return fmt.Errorf("chain network %s: invalid simulation retry_delay %q: %w", name, n.Simulation.RetryDelayRaw, err)
		}
		if d < 0 {
			return fmt.Errorf("chain network %s: simulation retry_delay cannot be negative, got %s", name, d)
		}
		n.Simulation.RetryDelay = d
	}
	return nil
}

func (n *NetworkConfig) parseAddresses(name string) error {
	fields := []struct {
		key string
		raw string
		dst *common.Address
	}{
		{"exchange_router", n.ExchangeRouter, &n.contracts.ExchangeRouter},
		{"order_vault", n.OrderVault, &n.contracts.OrderVault},
		{"wrapped_native_token", n.WrappedNativeToken, &n.contracts.WrappedNativeToken},
		{"external_handler", n.ExternalHandler, &n.contracts.ExternalHandler},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		if !common.IsHexAddress(f.raw) {
			return fmt.Errorf("chain network %s: invalid %s %q", name, f.key, f.raw)
		}
		*f.dst = common.HexToAddress(f.raw)
	}
	return nil
}

// Validate ensures all networks have sane configuration.
func (c *Config) Validate() error {
	if len(c.Networks) == 0 {
		return fmt.Errorf("chain config: networks cannot be empty")
	}
	if c.Default != "" {
		if _, ok := c.Networks[c.Default]; !ok {
			return fmt.Errorf("chain config: default network %q not defined", c.Default)
		}
	}
	for name, network := range c.Networks {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("chain config: network name cannot be empty")
		}
		if err := network.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (n *NetworkConfig) validate(name string) error {
	if n == nil {
		return fmt.Errorf("chain config: network %s is nil", name)
	}
	if n.ChainID <= 0 {
		return fmt.Errorf("chain config: network %s requires a positive chain_id", name)
	}
	if err := n.contracts.Validate(); err != nil {
		return fmt.Errorf("chain config: network %s: %w", name, err)
	}
	if n.Simulation.Retries() < 0 {
		return fmt.Errorf("chain config: network %s simulation max_retries cannot be negative", name)
	}
	return nil
}
