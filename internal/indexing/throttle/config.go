package throttle

import "time"

// Config holds configuration for adaptive throttling behavior.
type Config struct {
	// Enabled controls whether adaptive throttling is active
	Enabled bool `yaml:"enabled"`

	// Interval bounds
	MinScanInterval time.Duration `yaml:"min_scan_interval"` // Fastest polling rate (default: 500ms)
	MaxScanInterval time.Duration `yaml:"max_scan_interval"` // Slowest polling rate (default: 60s)

	// Head caching
	HeadCacheTTL time.Duration `yaml:"head_cache_ttl"` // How long to cache the chain head (default: 3s)

	// Lag thresholds for interval adjustment
	LagNormalThreshold int64 `yaml:"lag_normal"` // Below this = normal interval (default: 5)
	LagBurstThreshold  int64 `yaml:"lag_burst"`  // Above this = max speed (default: 50)

	// Blocks walked per scan
	MinBatchSize int `yaml:"min_batch_size"` // default: 1
	MaxBatchSize int `yaml:"max_batch_size"` // default: 20

	// Above this average evaluation time per block the batch shrinks to the
	// minimum; history lookups are the slow part (default: 2s)
	SlowBlockThreshold time.Duration `yaml:"slow_block_threshold"`
}

// DefaultConfig returns sensible defaults for adaptive throttling.
func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		MinScanInterval:    500 * time.Millisecond,
		MaxScanInterval:    60 * time.Second,
		HeadCacheTTL:       3 * time.Second,
		LagNormalThreshold: 5,
		LagBurstThreshold:  50,
		MinBatchSize:       1,
		MaxBatchSize:       20,
		SlowBlockThreshold: 2 * time.Second,
	}
}

// WithDefaults fills zero fields from DefaultConfig, keeping Enabled as set.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	d.Enabled = c.Enabled
	if c.MinScanInterval > 0 {
		d.MinScanInterval = c.MinScanInterval
	}
	if c.MaxScanInterval > 0 {
		d.MaxScanInterval = c.MaxScanInterval
	}
	if c.HeadCacheTTL > 0 {
		d.HeadCacheTTL = c.HeadCacheTTL
	}
	if c.LagNormalThreshold > 0 {
		d.LagNormalThreshold = c.LagNormalThreshold
	}
	if c.LagBurstThreshold > 0 {
		d.LagBurstThreshold = c.LagBurstThreshold
	}
	if c.MinBatchSize > 0 {
		d.MinBatchSize = c.MinBatchSize
	}
	if c.MaxBatchSize > 0 {
		d.MaxBatchSize = c.MaxBatchSize
	}
	if c.SlowBlockThreshold > 0 {
		d.SlowBlockThreshold = c.SlowBlockThreshold
	}
	return d
}
