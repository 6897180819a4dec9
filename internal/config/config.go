package config

import (
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeromicro/go-zero/core/logx"

	"perpsdk/pkg/chain"
	"perpsdk/pkg/confkit"
	"perpsdk/pkg/fixedpoint"
)

// OrderDefaults are applied to every order the CLI builds unless the batch
// overrides them.
type OrderDefaults struct {
	AllowedSlippageBps int64  `json:",default=30"`
	ExecutionFeeWei    string `json:",optional"`
	UIFeeReceiver      string `json:",optional"`
	ReferralCode       string `json:",optional"`
}

type Config struct {
	// Env indicates the running environment: test | dev | prod.
	Env     string        `json:",default=test"`
	Log     logx.LogConf  `json:",optional"`
	Network string        `json:",optional"`
	Orders  OrderDefaults `json:",optional"`

	Chain confkit.Section[chain.Config] `json:",optional"`

	mainPath string
	baseDir  string
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}
	cfg, err := confkit.LoadFile[Config](absPath, true)
	if err != nil {
		return nil, err
	}
	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Chain.Hydrate(cfg.baseDir, chain.LoadConfig); err != nil {
		return nil, fmt.Errorf("load chain config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	switch c.Env {
	case "":
		c.Env = "test"
	case "test", "dev", "prod":
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	return c.Orders.validate()
}

func (o OrderDefaults) validate() error {
	if o.AllowedSlippageBps < 0 || o.AllowedSlippageBps >= fixedpoint.BasisPoints {
		return fmt.Errorf("config: orders.allowedSlippageBps must be in [0, %d), got %d", fixedpoint.BasisPoints, o.AllowedSlippageBps)
	}
	if o.ExecutionFeeWei != "" {
		if _, ok := new(big.Int).SetString(o.ExecutionFeeWei, 10); !ok {
			return fmt.Errorf("config: orders.executionFeeWei %q is not a decimal integer", o.ExecutionFeeWei)
		}
	}
	if o.UIFeeReceiver != "" && !common.IsHexAddress(o.UIFeeReceiver) {
		return fmt.Errorf("config: orders.uiFeeReceiver %q is not an address", o.UIFeeReceiver)
	}
	if len(o.ReferralCode) > 32 {
		return errors.New("config: orders.referralCode exceeds 32 bytes")
	}
	return nil
}

// ExecutionFee returns the configured execution fee in wei, or nil.
func (o OrderDefaults) ExecutionFee() *big.Int {
	if o.ExecutionFeeWei == "" {
		return nil
	}
	fee, ok := new(big.Int).SetString(o.ExecutionFeeWei, 10)
	if !ok {
		return nil
	}
	return fee
}

// ReferralCodeBytes right-pads the referral code to bytes32.
func (o OrderDefaults) ReferralCodeBytes() [32]byte {
	var out [32]byte
	copy(out[:], o.ReferralCode)
	return out
}

// ChainNetwork returns the selected network of the chain section.
func (c *Config) ChainNetwork() (*chain.NetworkConfig, error) {
	chainCfg, err := c.Chain.Get()
	if err != nil {
		return nil, fmt.Errorf("config: chain section: %w", err)
	}
	return chainCfg.Network(c.Network)
}

func (c *Config) IsTestEnv() bool {
	return c.Env == "test" || c.Env == ""
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
