// Package cursor tracks the scan position for each blockchain.
//
// The cursor is the watcher's bookmark: the last block whose transactions were
// handed to the detector, plus that block's hash. Positions only move forward
// one block at a time, so a skipped block surfaces as ErrBlockGap instead of
// silently leaving transactions unevaluated.
//
//	manager := cursor.NewManager(repo)
//	c, _ := manager.Initialize(ctx, "1", 19_000_000)
//	manager.Advance(ctx, "1", 19_000_001, "0xabc...") // ok
//	manager.Advance(ctx, "1", 19_000_005, "0xdef...") // ErrBlockGap
package cursor

import (
	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/infra/storage"
)

// Cursor represents the scan position for a chain.
type Cursor = domain.Cursor

// NewManager creates a new cursor manager with the given repository.
func NewManager(repo storage.CursorRepository) *DefaultManager {
	return &DefaultManager{
		repo:       repo,
		throughput: make(map[domain.ChainID]*ThroughputCollector),
	}
}

// NewThroughputCollector creates a collector over the last windowSize blocks.
func NewThroughputCollector(windowSize int) *ThroughputCollector {
	if windowSize <= 0 {
		windowSize = 100
	}
	return &ThroughputCollector{
		windowSize: windowSize,
		blockTimes: make([]blockRecord, 0, windowSize),
	}
}
