package domain

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidEvent is returned when a transaction event is missing a field the detector needs.
var ErrInvalidEvent = errors.New("invalid transaction event")

// TransactionEvent is a single observed transaction handed to the detector.
type TransactionEvent struct {
	ChainID        ChainID  `json:"chain_id"`
	Hash           string   `json:"tx_hash"`
	BlockNumber    uint64   `json:"block_number"`
	From           string   `json:"from_address"`
	To             string   `json:"to_address"`
	Value          *big.Int `json:"value"` // smallest currency unit
	BlockTimestamp uint64   `json:"block_timestamp"`
}

// Validate reports whether the event carries a sender and a non-negative value.
func (e TransactionEvent) Validate() error {
	if e.From == "" {
		return fmt.Errorf("%w: empty sender", ErrInvalidEvent)
	}
	if e.Value == nil {
		return fmt.Errorf("%w: missing value", ErrInvalidEvent)
	}
	if e.Value.Sign() < 0 {
		return fmt.Errorf("%w: negative value %s", ErrInvalidEvent, e.Value)
	}
	return nil
}

// HistoryRecord is one prior transaction of an address as reported by the history service.
type HistoryRecord struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"block_number"`
	Timestamp   uint64 `json:"timestamp"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
}
