package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/infra/storage"
)

const (
	getCursorQuery = `SELECT chain_id, block_number, block_hash, updated_at
FROM cursors WHERE chain_id = $1`

	listCursorsQuery = `SELECT chain_id, block_number, block_hash, updated_at
FROM cursors ORDER BY chain_id`

	upsertCursorQuery = `INSERT INTO cursors (chain_id, block_number, block_hash, updated_at)
VALUES (:chain_id, :block_number, :block_hash, :updated_at)
ON CONFLICT (chain_id) DO UPDATE SET
    block_number = EXCLUDED.block_number,
    block_hash   = EXCLUDED.block_hash,
    updated_at   = EXCLUDED.updated_at`
)

type cursorRow struct {
	ChainID     string `db:"chain_id"`
	BlockNumber int64  `db:"block_number"`
	BlockHash   string `db:"block_hash"`
	UpdatedAt   int64  `db:"updated_at"`
}

// CursorRepo implements storage.CursorRepository using PostgreSQL.
type CursorRepo struct {
	db *DB
}

// NewCursorRepo creates a new PostgreSQL cursor repository.
func NewCursorRepo(db *DB) *CursorRepo {
	return &CursorRepo{db: db}
}

// Save saves a cursor to the database.
func (r *CursorRepo) Save(ctx context.Context, cursor *domain.Cursor) error {
	updatedAt := cursor.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := r.db.NamedExecContext(ctx, upsertCursorQuery, cursorRow{
		ChainID:     string(cursor.ChainID),
		BlockNumber: int64(cursor.BlockNumber),
		BlockHash:   cursor.BlockHash,
		UpdatedAt:   updatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	return nil
}

// Get retrieves a cursor by chain ID.
func (r *CursorRepo) Get(ctx context.Context, chainID domain.ChainID) (*domain.Cursor, error) {
	var row cursorRow
	err := r.db.GetContext(ctx, &row, getCursorQuery, string(chainID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrCursorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cursor: %w", err)
	}

	return row.toDomain(), nil
}

// List returns every stored cursor ordered by chain ID.
func (r *CursorRepo) List(ctx context.Context) ([]*domain.Cursor, error) {
	var rows []cursorRow
	if err := r.db.SelectContext(ctx, &rows, listCursorsQuery); err != nil {
		return nil, fmt.Errorf("failed to list cursors: %w", err)
	}
	out := make([]*domain.Cursor, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (row cursorRow) toDomain() *domain.Cursor {
	return &domain.Cursor{
		ChainID:     domain.ChainID(row.ChainID),
		BlockNumber: uint64(row.BlockNumber),
		BlockHash:   row.BlockHash,
		UpdatedAt:   time.Unix(row.UpdatedAt, 0),
	}
}
