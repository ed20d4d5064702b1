package config

import (
	"time"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/indexing/throttle"
	"github.com/vietddude/dormancy-watcher/internal/infra/etherscan"
	redisclient "github.com/vietddude/dormancy-watcher/internal/infra/redis"
	"github.com/vietddude/dormancy-watcher/internal/infra/rpc/routing"
	"github.com/vietddude/dormancy-watcher/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Logging   LoggingConfig      `yaml:"logging"`
	Etherscan EtherscanConfig    `yaml:"etherscan"`
	Detector  DetectorConfig     `yaml:"detector"`
	Chains    []ChainConfig      `yaml:"chains"`
	Redis     redisclient.Config `yaml:"redis"`
	Database  postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// EtherscanConfig configures the history service.
type EtherscanConfig struct {
	etherscan.Config `yaml:",inline"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
}

// DetectorConfig holds the alert thresholds as written in the file.
type DetectorConfig struct {
	HighVolume      string `yaml:"high_volume"` // smallest units, base 10
	InactiveSeconds int64  `yaml:"inactive_seconds"`
	Decimals        int32  `yaml:"decimals"`
	Symbol          string `yaml:"symbol"`
}

// ChainConfig holds settings for a specific blockchain.
type ChainConfig struct {
	ChainID        domain.ChainID      `yaml:"id"`
	InternalCode   domain.ChainName    `yaml:"name"`
	Type           domain.ChainType    `yaml:"type"` // only "evm"
	FinalityBlocks uint64              `yaml:"finality_blocks"`
	ScanInterval   time.Duration       `yaml:"scan_interval"`
	StartBlock     uint64              `yaml:"start_block"` // 0 = chain head
	Workers        int                 `yaml:"workers"`
	Retry          routing.RetryConfig `yaml:"retry"`
	Throttle       throttle.Config     `yaml:"throttle"`
	Providers      []ProviderConfig    `yaml:"providers"`
	Detector       *DetectorConfig     `yaml:"detector"` // overrides the global thresholds
}

// ProviderConfig holds settings for an RPC provider.
type ProviderConfig struct {
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}
