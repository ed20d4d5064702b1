package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/dormancy-watcher/internal/core/cursor"
	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

// Pipeline implements the Indexer interface
type Pipeline struct {
	cfg      Config
	log      *slog.Logger
	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	// set once the stored cursor has been rewound past unconfirmed blocks
	resumed atomic.Bool

	current atomic.Uint64
	latest  atomic.Uint64
	alerts  atomic.Uint64
	reorgs  atomic.Uint64
	// average evaluation time per block in the last tick, in nanoseconds
	blockCost atomic.Int64
}

// NewPipeline creates a new indexing pipeline
func NewPipeline(cfg Config) *Pipeline {
	cfg = cfg.withDefaults()
	return &Pipeline{
		cfg:  cfg,
		log:  slog.Default().With("chain", cfg.ChainID),
		stop: make(chan struct{}),
	}
}

// Start begins the indexing loop
func (p *Pipeline) Start(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return fmt.Errorf("pipeline already running")
	}
	defer p.running.Store(false)

	p.log.Info("Indexer started", "interval", p.cfg.ScanInterval, "workers", p.cfg.Workers)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.stop:
			return nil
		case <-timer.C:
		}

		err := p.Tick(ctx)
		if err != nil && ctx.Err() == nil {
			p.log.Error("Scan failed", "error", err)
		}
		timer.Reset(p.nextInterval(err))
	}
}

// nextInterval falls back to the configured interval after a failure so a
// broken provider is not hammered at burst speed.
func (p *Pipeline) nextInterval(err error) time.Duration {
	if err != nil || p.cfg.Throttle == nil {
		return p.cfg.ScanInterval
	}
	return p.cfg.Throttle.Interval(p.lag())
}

func (p *Pipeline) lag() int64 {
	latest, current := p.latest.Load(), p.current.Load()
	if latest <= current {
		return 0
	}
	return int64(latest - current)
}

func (p *Pipeline) batchSize() int {
	if p.cfg.Throttle == nil {
		return p.cfg.BatchSize
	}
	return p.cfg.Throttle.BatchSize(p.lag(), time.Duration(p.blockCost.Load()))
}

// Stop stops the pipeline
func (p *Pipeline) Stop() error {
	p.stopOnce.Do(func() { close(p.stop) })
	return nil
}

// GetStatus returns the current status
func (p *Pipeline) GetStatus() Status {
	current, latest := p.current.Load(), p.latest.Load()
	status := Status{
		ChainID:      p.cfg.ChainID,
		CurrentBlock: current,
		LatestBlock:  latest,
		Running:      p.running.Load(),
		AlertsRaised: p.alerts.Load(),
		Reorgs:       p.reorgs.Load(),
	}
	if latest > 0 {
		status.Lag = int64(latest) - int64(current)
	}
	if p.cfg.Cursor != nil {
		status.BlocksPerSecond = p.cfg.Cursor.GetThroughput(p.cfg.ChainID).BlocksPerSecond
	}
	return status
}

// Tick walks at most BatchSize blocks from the cursor towards the chain head.
func (p *Pipeline) Tick(ctx context.Context) error {
	latest, err := p.cfg.Head.GetLatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest block: %w", err)
	}
	p.latest.Store(latest)
	p.cfg.Metrics.ObserveHead(latest)

	cur, err := p.loadCursor(ctx, latest)
	if err != nil {
		return err
	}
	p.current.Store(cur.BlockNumber)

	started := time.Now()
	processed := 0
	defer func() {
		if processed > 0 {
			p.blockCost.Store(int64(time.Since(started)) / int64(processed))
		}
	}()

	for range p.batchSize() {
		if cur.BlockNumber >= latest {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		next := cur.BlockNumber + 1
		block, err := p.cfg.ChainAdapter.GetBlock(ctx, next)
		if err != nil {
			return fmt.Errorf("failed to get block %d: %w", next, err)
		}
		if block == nil {
			return nil
		}

		if isReorg(cur, block) {
			return p.handleReorg(ctx, cur, block)
		}

		if err := p.processBlock(ctx, block); err != nil {
			return fmt.Errorf("block %d: %w", next, err)
		}

		cur = &domain.Cursor{ChainID: p.cfg.ChainID, BlockNumber: block.Number, BlockHash: block.Hash}
		p.current.Store(block.Number)
		processed++
	}
	return nil
}

func (p *Pipeline) loadCursor(ctx context.Context, latest uint64) (*domain.Cursor, error) {
	cur, err := p.cfg.Cursor.Get(ctx, p.cfg.ChainID)
	if err == nil {
		if p.resumed.Load() {
			return cur, nil
		}
		return p.resume(ctx, cur)
	}
	if !errors.Is(err, cursor.ErrCursorNotFound) {
		return nil, fmt.Errorf("failed to get cursor: %w", err)
	}
	p.resumed.Store(true)

	// The cursor records the last evaluated block.
	start := latest
	if p.cfg.StartBlock > 0 {
		start = p.cfg.StartBlock
	}
	if start > 0 {
		start--
	}
	p.log.Info("Initializing cursor", "start_block", start+1)
	return p.cfg.Cursor.Initialize(ctx, p.cfg.ChainID, start)
}

// resume rewinds a cursor left by an earlier run by the finality depth.
// Alerts for those blocks were still waiting for confirmations in memory when
// that run stopped, so the blocks are scanned again to raise them.
func (p *Pipeline) resume(ctx context.Context, cur *domain.Cursor) (*domain.Cursor, error) {
	depth := p.cfg.FinalityBlocks
	floor := uint64(0)
	if p.cfg.StartBlock > 0 {
		floor = p.cfg.StartBlock - 1
	}
	if depth == 0 || cur.BlockNumber <= floor {
		p.resumed.Store(true)
		return cur, nil
	}

	safe := floor
	if cur.BlockNumber > floor+depth {
		safe = cur.BlockNumber - depth
	}
	safeBlock, err := p.cfg.ChainAdapter.GetBlock(ctx, safe)
	if err != nil {
		return nil, fmt.Errorf("failed to get resume block %d: %w", safe, err)
	}
	var safeHash string
	if safeBlock != nil {
		safeHash = safeBlock.Hash
	}
	if err := p.cfg.Cursor.Rollback(ctx, p.cfg.ChainID, safe, safeHash); err != nil {
		return nil, fmt.Errorf("resume rollback failed: %w", err)
	}
	p.resumed.Store(true)

	p.log.Info("Resuming below stored cursor", "cursor", cur.BlockNumber, "resume_from", safe+1)
	return &domain.Cursor{ChainID: p.cfg.ChainID, BlockNumber: safe, BlockHash: safeHash}, nil
}

func isReorg(cur *domain.Cursor, block *domain.Block) bool {
	if cur.BlockHash == "" || block.ParentHash == "" {
		return false
	}
	return !strings.EqualFold(cur.BlockHash, block.ParentHash)
}

// handleReorg rewinds the cursor by the finality depth and drops alerts that
// were queued for the abandoned blocks. They are re-raised on rescan.
func (p *Pipeline) handleReorg(ctx context.Context, cur *domain.Cursor, block *domain.Block) error {
	depth := max(p.cfg.FinalityBlocks, 1)
	var safe uint64
	if cur.BlockNumber > depth {
		safe = cur.BlockNumber - depth
	}

	var safeHash string
	safeBlock, err := p.cfg.ChainAdapter.GetBlock(ctx, safe)
	if err != nil {
		return fmt.Errorf("failed to get safe block %d: %w", safe, err)
	}
	if safeBlock != nil {
		safeHash = safeBlock.Hash
	}

	if err := p.cfg.Cursor.Rollback(ctx, p.cfg.ChainID, safe, safeHash); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	dropped := p.cfg.Buffer.DiscardFrom(safe + 1)

	p.reorgs.Add(1)
	p.current.Store(safe)
	p.cfg.Metrics.ObserveReorg()
	p.log.Warn("Reorg detected",
		"block", block.Number,
		"expected_parent", cur.BlockHash,
		"got_parent", block.ParentHash,
		"safe_block", safe,
		"dropped_alerts", dropped,
	)
	return nil
}

// processBlock evaluates every transaction of block, queues the resulting
// alerts in transaction order and advances the cursor.
func (p *Pipeline) processBlock(ctx context.Context, block *domain.Block) error {
	started := time.Now()

	results := make([][]domain.Alert, len(block.Transactions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, tx := range block.Transactions {
		g.Go(func() error {
			alerts, err := p.cfg.Detector.HandleTransaction(gctx, tx)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidEvent) {
					p.log.Debug("Skipping transaction", "tx", tx.Hash, "error", err)
					return nil
				}
				return fmt.Errorf("tx %s: %w", tx.Hash, err)
			}
			results[i] = alerts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// Lookups cut short by shutdown degrade to "no history"; do not let them pass the block.
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, alerts := range results {
		for _, alert := range alerts {
			event := domain.NewAlertEvent(block.Transactions[i], alert)
			if err := p.cfg.Buffer.QueueEvent(ctx, event); err != nil {
				return fmt.Errorf("failed to queue alert: %w", err)
			}
			p.alerts.Add(1)
		}
	}

	if err := p.cfg.Buffer.OnNewBlock(ctx, block.Number); err != nil {
		p.log.Error("Failed to flush finalized alerts", "block", block.Number, "error", err)
	}

	if err := p.cfg.Cursor.Advance(ctx, p.cfg.ChainID, block.Number, block.Hash); err != nil {
		return fmt.Errorf("cursor advance failed: %w", err)
	}

	p.cfg.Metrics.ObserveBlock(block.Number, started)
	return nil
}
