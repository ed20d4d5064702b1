package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope the host emits for every alert.
type Event struct {
	ID          string    `json:"id"`
	EventType   EventType `json:"event_type"`
	ChainID     ChainID   `json:"chain_id"`
	BlockNumber uint64    `json:"block_number"`
	TxHash      string    `json:"tx_hash"`
	EmittedAt   uint64    `json:"emitted_at"`
	Alert       Alert     `json:"alert"`
}

type EventType string

const (
	EventTypeAlertRaised EventType = "alert_raised"
)

// NewAlertEvent wraps an alert raised for tx into an envelope with a fresh ID.
func NewAlertEvent(tx TransactionEvent, alert Alert) *Event {
	return &Event{
		ID:          uuid.NewString(),
		EventType:   EventTypeAlertRaised,
		ChainID:     tx.ChainID,
		BlockNumber: tx.BlockNumber,
		TxHash:      tx.Hash,
		EmittedAt:   uint64(time.Now().Unix()),
		Alert:       alert,
	}
}
