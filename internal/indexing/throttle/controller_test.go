package throttle

import (
	"testing"
	"time"
)

func TestInterval(t *testing.T) {
	config := DefaultConfig()
	controller := NewController(12*time.Second, config)

	tests := []struct {
		name     string
		lag      int64
		expected time.Duration
	}{
		{name: "at chain head (lag=0)", lag: 0, expected: 12 * time.Second},
		{name: "slightly behind (lag=3)", lag: 3, expected: 6 * time.Second},
		{name: "catching up (lag=20)", lag: 20, expected: 1 * time.Second},
		{name: "far behind (lag=100)", lag: 100, expected: 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := controller.Interval(tt.lag)
			if result != tt.expected {
				t.Errorf("Interval(%d) = %v, want %v", tt.lag, result, tt.expected)
			}
		})
	}

	if interval, _ := controller.Current(); interval != 500*time.Millisecond {
		t.Errorf("Current interval = %v, want last computed value", interval)
	}
}

func TestIntervalClampedToMax(t *testing.T) {
	config := DefaultConfig()
	config.MaxScanInterval = 5 * time.Second
	controller := NewController(12*time.Second, config)

	if got := controller.Interval(0); got != 5*time.Second {
		t.Errorf("Interval(0) = %v, want max 5s", got)
	}
}

func TestBatchSize(t *testing.T) {
	controller := NewController(12*time.Second, DefaultConfig())

	tests := []struct {
		name      string
		lag       int64
		blockTime time.Duration
		expected  int
	}{
		{name: "at chain head", lag: 0, blockTime: 100 * time.Millisecond, expected: 1},
		{name: "slightly behind", lag: 5, blockTime: 100 * time.Millisecond, expected: 3},
		{name: "catching up", lag: 50, blockTime: 100 * time.Millisecond, expected: 10},
		{name: "far behind", lag: 200, blockTime: 100 * time.Millisecond, expected: 20},
		{name: "slow blocks - conservative batch", lag: 200, blockTime: 3 * time.Second, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := controller.BatchSize(tt.lag, tt.blockTime)
			if result != tt.expected {
				t.Errorf("BatchSize(lag=%d, blockTime=%v) = %d, want %d",
					tt.lag, tt.blockTime, result, tt.expected)
			}
		})
	}
}

func TestDisabled(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = false
	controller := NewController(12*time.Second, config)

	if got := controller.Interval(100); got != 12*time.Second {
		t.Errorf("Interval with disabled config = %v, want base interval", got)
	}
	if got := controller.BatchSize(100, 0); got != 1 {
		t.Errorf("BatchSize with disabled config = %d, want 1", got)
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{Enabled: true, MaxBatchSize: 50}.WithDefaults()
	if !cfg.Enabled || cfg.MaxBatchSize != 50 {
		t.Errorf("explicit fields lost: %+v", cfg)
	}
	if cfg.MinScanInterval != 500*time.Millisecond || cfg.HeadCacheTTL != 3*time.Second {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	if (Config{}).WithDefaults().Enabled {
		t.Error("WithDefaults must not enable throttling")
	}
}
