package cursor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/infra/storage"
)

var (
	// ErrCursorNotFound is returned when a cursor doesn't exist.
	ErrCursorNotFound = storage.ErrCursorNotFound

	// ErrBlockGap is returned when a gap is detected during Advance.
	ErrBlockGap = errors.New("block gap detected")
)

// Manager handles cursor operations.
type Manager interface {
	// Get retrieves the current cursor for a chain.
	Get(ctx context.Context, chainID domain.ChainID) (*domain.Cursor, error)

	// Initialize creates a new cursor at starting block.
	Initialize(ctx context.Context, chainID domain.ChainID, startBlock uint64) (*domain.Cursor, error)

	// Advance moves cursor forward by exactly one block.
	Advance(ctx context.Context, chainID domain.ChainID, blockNumber uint64, blockHash string) error

	// Rollback moves cursor back to a safe block after a reorg.
	Rollback(ctx context.Context, chainID domain.ChainID, safeBlock uint64, safeHash string) error

	// GetLag returns blocks behind current chain tip.
	GetLag(ctx context.Context, chainID domain.ChainID, latestBlock uint64) (int64, error)

	// GetThroughput returns scan speed for a chain.
	GetThroughput(chainID domain.ChainID) Throughput
}

// DefaultManager implements Manager on top of a storage.CursorRepository.
type DefaultManager struct {
	repo       storage.CursorRepository
	mu         sync.Mutex
	throughput map[domain.ChainID]*ThroughputCollector
}

// Get retrieves the current cursor for a chain.
func (m *DefaultManager) Get(ctx context.Context, chainID domain.ChainID) (*domain.Cursor, error) {
	return m.repo.Get(ctx, chainID)
}

// Initialize creates a new cursor at starting block.
func (m *DefaultManager) Initialize(
	ctx context.Context,
	chainID domain.ChainID,
	startBlock uint64,
) (*domain.Cursor, error) {
	cursor := &domain.Cursor{
		ChainID:     chainID,
		BlockNumber: startBlock,
		UpdatedAt:   time.Now(),
	}

	if err := m.repo.Save(ctx, cursor); err != nil {
		return nil, fmt.Errorf("failed to save cursor: %w", err)
	}

	m.mu.Lock()
	m.throughput[chainID] = NewThroughputCollector(100)
	m.mu.Unlock()

	return cursor, nil
}

// Advance moves cursor forward after a block has been evaluated.
func (m *DefaultManager) Advance(
	ctx context.Context,
	chainID domain.ChainID,
	blockNumber uint64,
	blockHash string,
) error {
	cursor, err := m.repo.Get(ctx, chainID)
	if err != nil {
		return fmt.Errorf("failed to get cursor: %w", err)
	}

	// Check for idempotency (duplicate delivery / re-process)
	if blockNumber == cursor.BlockNumber {
		if blockHash == cursor.BlockHash {
			return nil
		}
		return fmt.Errorf(
			"idempotency check failed: cursor at %d with hash %s, got same block %d with hash %s",
			cursor.BlockNumber,
			cursor.BlockHash,
			blockNumber,
			blockHash,
		)
	}

	// Block must be exactly current + 1
	expectedBlock := cursor.BlockNumber + 1
	if blockNumber != expectedBlock {
		return fmt.Errorf("%w: expected block %d, got %d", ErrBlockGap, expectedBlock, blockNumber)
	}

	now := time.Now()
	cursor.BlockNumber = blockNumber
	cursor.BlockHash = blockHash
	cursor.UpdatedAt = now
	if err := m.repo.Save(ctx, cursor); err != nil {
		return fmt.Errorf("failed to update cursor: %w", err)
	}

	m.mu.Lock()
	collector, ok := m.throughput[chainID]
	if !ok {
		collector = NewThroughputCollector(100)
		m.throughput[chainID] = collector
	}
	collector.RecordBlock(blockNumber, now)
	m.mu.Unlock()

	return nil
}

// Rollback moves cursor back for reorg handling.
func (m *DefaultManager) Rollback(
	ctx context.Context,
	chainID domain.ChainID,
	safeBlock uint64,
	safeHash string,
) error {
	cursor, err := m.repo.Get(ctx, chainID)
	if err != nil {
		return fmt.Errorf("failed to get cursor: %w", err)
	}
	if safeBlock > cursor.BlockNumber {
		return fmt.Errorf("cannot roll back forward: cursor at %d, safe block %d", cursor.BlockNumber, safeBlock)
	}

	cursor.BlockNumber = safeBlock
	cursor.BlockHash = safeHash
	cursor.UpdatedAt = time.Now()
	if err := m.repo.Save(ctx, cursor); err != nil {
		return fmt.Errorf("failed to rollback cursor: %w", err)
	}
	return nil
}

// GetLag returns how many blocks behind the chain tip.
func (m *DefaultManager) GetLag(
	ctx context.Context,
	chainID domain.ChainID,
	latestBlock uint64,
) (int64, error) {
	cursor, err := m.repo.Get(ctx, chainID)
	if err != nil {
		return 0, fmt.Errorf("failed to get cursor: %w", err)
	}

	return int64(latestBlock) - int64(cursor.BlockNumber), nil
}

// GetThroughput returns scan speed for a chain.
func (m *DefaultManager) GetThroughput(chainID domain.ChainID) Throughput {
	m.mu.Lock()
	defer m.mu.Unlock()

	if collector, ok := m.throughput[chainID]; ok {
		return collector.Snapshot()
	}
	return Throughput{}
}
