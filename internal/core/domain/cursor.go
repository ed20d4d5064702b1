package domain

import "time"

// Cursor is the host's scan position for one chain.
type Cursor struct {
	ChainID     ChainID
	BlockNumber uint64
	BlockHash   string
	UpdatedAt   time.Time
}
