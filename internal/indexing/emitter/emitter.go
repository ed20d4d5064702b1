package emitter

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

// Emitter defines the interface for delivering alert events
type Emitter interface {
	// Emit sends a single event
	Emit(ctx context.Context, event *domain.Event) error

	// EmitBatch sends multiple events
	EmitBatch(ctx context.Context, events []*domain.Event) error

	// Close closes the emitter connection
	Close() error
}

// LogEmitter writes every event to the structured log.
type LogEmitter struct {
	log *slog.Logger
}

func NewLogEmitter() *LogEmitter {
	return &LogEmitter{log: slog.Default()}
}

func (e *LogEmitter) Emit(ctx context.Context, event *domain.Event) error {
	e.log.Warn("Alert raised",
		"chain", event.ChainID,
		"block", event.BlockNumber,
		"tx", event.TxHash,
		"alert_id", event.Alert.AlertID,
		"severity", event.Alert.Severity,
		"description", event.Alert.Description,
	)
	return nil
}

func (e *LogEmitter) EmitBatch(ctx context.Context, events []*domain.Event) error {
	for _, ev := range events {
		_ = e.Emit(ctx, ev)
	}
	return nil
}

func (e *LogEmitter) Close() error { return nil }

// MultiEmitter fans every event out to all of its emitters.
// A failing emitter does not stop delivery to the others.
type MultiEmitter struct {
	emitters []Emitter
}

func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

func (m *MultiEmitter) Emit(ctx context.Context, event *domain.Event) error {
	var errs []error
	for _, e := range m.emitters {
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiEmitter) EmitBatch(ctx context.Context, events []*domain.Event) error {
	var errs []error
	for _, e := range m.emitters {
		if err := e.EmitBatch(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiEmitter) Close() error {
	var errs []error
	for _, e := range m.emitters {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
