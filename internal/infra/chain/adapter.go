package chain

import (
	"context"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

// Adapter defines the chain-level read interface the watcher scans through.
type Adapter interface {
	// GetLatestBlock returns the latest block number on the chain
	GetLatestBlock(ctx context.Context) (uint64, error)

	// GetBlock fetches a block with its transactions.
	// A nil block and nil error mean the block does not exist yet.
	GetBlock(ctx context.Context, blockNumber uint64) (*domain.Block, error)

	// GetChainID returns the chain identifier
	GetChainID() domain.ChainID
}
