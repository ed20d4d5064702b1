package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/detector"
	"github.com/vietddude/dormancy-watcher/internal/infra/rpc/routing"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content, expanding environment variables first.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "dormancy:alerts"
	}

	for i := range cfg.Chains {
		c := &cfg.Chains[i]
		if c.Type == "" {
			c.Type = domain.ChainTypeEVM
		}
		if c.ScanInterval == 0 {
			c.ScanInterval = 12 * time.Second
		}
		if c.Workers <= 0 {
			c.Workers = 8
		}
		if c.Retry.MaxAttempts == 0 {
			c.Retry = routing.DefaultRetryConfig
		}
		c.Throttle = c.Throttle.WithDefaults()
		for j := range c.Providers {
			if c.Providers[j].Timeout == 0 {
				c.Providers[j].Timeout = 10 * time.Second
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have no sensible default.
func (c *AppConfig) Validate() error {
	if _, err := c.Detector.Thresholds(); err != nil {
		return err
	}
	// The detector compares the two most recent records; a smaller page never alerts.
	if c.Etherscan.PageSize != 0 && c.Etherscan.PageSize < 2 {
		return fmt.Errorf("etherscan page_size must be 0 or at least 2, got %d", c.Etherscan.PageSize)
	}
	seen := make(map[domain.ChainID]struct{}, len(c.Chains))
	for _, chain := range c.Chains {
		if chain.ChainID == "" {
			return errors.New("chain id is required")
		}
		if _, dup := seen[chain.ChainID]; dup {
			return fmt.Errorf("chain %s configured twice", chain.ChainID)
		}
		seen[chain.ChainID] = struct{}{}
		if chain.Type != domain.ChainTypeEVM {
			return fmt.Errorf("chain %s: unsupported type %q", chain.ChainID, chain.Type)
		}
		if len(chain.Providers) == 0 {
			return fmt.Errorf("chain %s: at least one provider is required", chain.ChainID)
		}
		if chain.Detector != nil {
			if _, err := chain.Detector.Thresholds(); err != nil {
				return fmt.Errorf("chain %s: %w", chain.ChainID, err)
			}
		}
	}
	return nil
}

// Thresholds converts the file representation into detector.Config.
// Empty fields are left zero so the detector applies its defaults.
func (d DetectorConfig) Thresholds() (detector.Config, error) {
	cfg := detector.Config{
		InactiveSeconds: d.InactiveSeconds,
		Decimals:        d.Decimals,
		Symbol:          d.Symbol,
	}
	if d.InactiveSeconds < 0 {
		return cfg, fmt.Errorf("detector inactive_seconds must not be negative: %d", d.InactiveSeconds)
	}
	if d.HighVolume != "" {
		v, ok := new(big.Int).SetString(d.HighVolume, 10)
		if !ok || v.Sign() < 0 {
			return cfg, fmt.Errorf("detector high_volume is not a non-negative integer: %q", d.HighVolume)
		}
		cfg.HighVolume = v
	}
	return cfg, nil
}

// DetectorFor returns the thresholds for chain, falling back to the global ones.
func (c *AppConfig) DetectorFor(chain ChainConfig) detector.Config {
	src := c.Detector
	if chain.Detector != nil {
		src = *chain.Detector
	}
	// Validate has already parsed every DetectorConfig.
	cfg, _ := src.Thresholds()
	return cfg
}
