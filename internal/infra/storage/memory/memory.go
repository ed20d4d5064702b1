package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/infra/storage"
)

// CursorRepo keeps cursors in process memory. Positions are lost on restart,
// so the watcher resumes from each chain's configured start block.
type CursorRepo struct {
	cursors map[domain.ChainID]domain.Cursor
	mu      sync.RWMutex
}

func NewCursorRepo() *CursorRepo {
	return &CursorRepo{cursors: make(map[domain.ChainID]domain.Cursor)}
}

func (r *CursorRepo) Get(ctx context.Context, chainID domain.ChainID) (*domain.Cursor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cursors[chainID]
	if !ok {
		return nil, storage.ErrCursorNotFound
	}
	return &c, nil
}

func (r *CursorRepo) Save(ctx context.Context, cursor *domain.Cursor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *cursor
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	r.cursors[c.ChainID] = c
	return nil
}
