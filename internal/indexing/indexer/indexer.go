package indexer

import (
	"context"
	"time"

	"github.com/vietddude/dormancy-watcher/internal/core/cursor"
	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/indexing/metrics"
	"github.com/vietddude/dormancy-watcher/internal/indexing/throttle"
	"github.com/vietddude/dormancy-watcher/internal/infra/chain"
)

// Indexer scans one chain and feeds every transaction to the detector.
type Indexer interface {
	// Start begins the scan loop and blocks until ctx is done or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the indexer
	Stop() error

	// GetStatus returns current indexing status
	GetStatus() Status
}

type Status struct {
	ChainID         domain.ChainID
	CurrentBlock    uint64
	LatestBlock     uint64
	Lag             int64
	Running         bool
	BlocksPerSecond float64
	AlertsRaised    uint64
	Reorgs          uint64
}

// Detector evaluates a single transaction.
type Detector interface {
	HandleTransaction(ctx context.Context, tx domain.TransactionEvent) ([]domain.Alert, error)
}

// Buffer holds alert envelopes until their block is final.
type Buffer interface {
	QueueEvent(ctx context.Context, event *domain.Event) error
	OnNewBlock(ctx context.Context, currentBlock uint64) error
	DiscardFrom(fromBlock uint64) int
}

// Config holds indexer configuration
type Config struct {
	ChainID      domain.ChainID
	ChainAdapter chain.Adapter
	Cursor       cursor.Manager
	Detector     Detector
	Buffer       Buffer
	Metrics      *metrics.Pipeline
	// Head overrides where the chain tip is read from, e.g. a throttle.HeadCache.
	Head throttle.HeadSource
	// Throttle adapts ScanInterval and BatchSize to the lag when set.
	Throttle *throttle.Controller

	ScanInterval time.Duration
	// BatchSize caps how many blocks one tick walks.
	BatchSize int
	// Workers bounds concurrent transaction evaluations within a block.
	Workers int
	// StartBlock is the first block scanned on a fresh cursor; 0 starts at the chain head.
	StartBlock     uint64
	FinalityBlocks uint64
}

func (c Config) withDefaults() Config {
	if c.ScanInterval <= 0 {
		c.ScanInterval = 12 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.Workers <= 0 {
		c.Workers = 8
	}
	if c.Head == nil {
		c.Head = c.ChainAdapter
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NewPipeline(c.ChainID)
	}
	return c
}
