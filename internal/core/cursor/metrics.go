package cursor

import (
	"time"
)

// blockRecord holds timing data for a processed block.
type blockRecord struct {
	BlockNumber uint64
	ProcessedAt time.Time
}

// Throughput holds scan speed for one chain.
type Throughput struct {
	BlocksPerSecond  float64
	AverageBlockTime time.Duration
	LastBlock        uint64
}

// ThroughputCollector tracks block processing times in a sliding window.
// It is not safe for concurrent use; DefaultManager guards it.
type ThroughputCollector struct {
	windowSize int
	blockTimes []blockRecord
}

// RecordBlock records timing for a processed block.
func (tc *ThroughputCollector) RecordBlock(blockNumber uint64, processedAt time.Time) {
	record := blockRecord{
		BlockNumber: blockNumber,
		ProcessedAt: processedAt,
	}

	if len(tc.blockTimes) >= tc.windowSize {
		// Shift elements left, drop oldest
		copy(tc.blockTimes, tc.blockTimes[1:])
		tc.blockTimes[len(tc.blockTimes)-1] = record
	} else {
		tc.blockTimes = append(tc.blockTimes, record)
	}
}

// Snapshot returns the current throughput.
func (tc *ThroughputCollector) Snapshot() Throughput {
	var t Throughput
	if len(tc.blockTimes) == 0 {
		return t
	}
	first := tc.blockTimes[0]
	last := tc.blockTimes[len(tc.blockTimes)-1]
	t.LastBlock = last.BlockNumber

	duration := last.ProcessedAt.Sub(first.ProcessedAt)
	if len(tc.blockTimes) >= 2 && duration > 0 {
		blockCount := float64(len(tc.blockTimes) - 1)
		t.BlocksPerSecond = blockCount / duration.Seconds()
		t.AverageBlockTime = time.Duration(float64(duration) / blockCount)
	}
	return t
}
