package storage

import (
	"context"
	"errors"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

var (
	// ErrCursorNotFound is returned when a cursor doesn't exist
	ErrCursorNotFound = errors.New("cursor not found")
)

// CursorRepository handles cursor storage operations
type CursorRepository interface {
	// Get retrieves the cursor for a chain, or ErrCursorNotFound
	Get(ctx context.Context, chainID domain.ChainID) (*domain.Cursor, error)

	// Save inserts or replaces the cursor for cursor.ChainID
	Save(ctx context.Context, cursor *domain.Cursor) error
}
