package throttle

import (
	"sync"
	"time"
)

// Controller picks the scan interval and batch size from the current lag
// and the time recent blocks took to evaluate.
type Controller struct {
	baseScanInterval time.Duration
	config           Config

	mu               sync.Mutex
	currentInterval  time.Duration
	currentBatchSize int
}

// NewController creates a new adaptive controller.
func NewController(baseScanInterval time.Duration, config Config) *Controller {
	return &Controller{
		baseScanInterval: baseScanInterval,
		config:           config,
		currentInterval:  baseScanInterval,
		currentBatchSize: config.MinBatchSize,
	}
}

// Interval calculates the scan interval based on lag.
//
// Algorithm:
//   - lag ≤ 0: Use base interval (at chain head, save API calls)
//   - lag < normal: Use base interval × 0.5 (slightly behind)
//   - lag < burst: Use min interval × 2 (catching up)
//   - lag ≥ burst: Use min interval (maximum catchup speed)
func (c *Controller) Interval(lag int64) time.Duration {
	if !c.config.Enabled {
		return c.baseScanInterval
	}

	var interval time.Duration
	switch {
	case lag <= 0:
		interval = c.baseScanInterval
	case lag < c.config.LagNormalThreshold:
		interval = c.baseScanInterval / 2
	case lag < c.config.LagBurstThreshold:
		interval = c.config.MinScanInterval * 2
	default:
		interval = c.config.MinScanInterval
	}

	interval = max(interval, c.config.MinScanInterval)
	interval = min(interval, c.config.MaxScanInterval)

	c.mu.Lock()
	c.currentInterval = interval
	c.mu.Unlock()
	return interval
}

// BatchSize calculates how many blocks to walk based on lag and the average
// evaluation time per block.
//
// Algorithm:
//   - slow blocks: Use min batch size (history service is struggling)
//   - lag ≤ 0: Batch size 1 (at head, just check next block)
//   - lag < 10: Batch size 3
//   - lag < 100: Batch size 10
//   - lag ≥ 100: Max batch size (maximum catchup)
func (c *Controller) BatchSize(lag int64, avgBlockTime time.Duration) int {
	if !c.config.Enabled {
		return c.config.MinBatchSize
	}

	var batchSize int
	switch {
	case avgBlockTime > c.config.SlowBlockThreshold:
		batchSize = c.config.MinBatchSize
	case lag <= 0:
		batchSize = 1
	case lag < 10:
		batchSize = 3
	case lag < 100:
		batchSize = 10
	default:
		batchSize = c.config.MaxBatchSize
	}

	batchSize = max(batchSize, c.config.MinBatchSize)
	batchSize = min(batchSize, c.config.MaxBatchSize)

	c.mu.Lock()
	c.currentBatchSize = batchSize
	c.mu.Unlock()
	return batchSize
}

// Current returns the last computed interval and batch size.
func (c *Controller) Current() (time.Duration, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentInterval, c.currentBatchSize
}
