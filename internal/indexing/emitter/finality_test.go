package emitter

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

// MockEmitter for testing
type MockEmitter struct {
	EmittedEvents     []*domain.Event
	EmittedBatchCount int
	Err               error
	Closed            bool
}

func (m *MockEmitter) Emit(ctx context.Context, event *domain.Event) error {
	if m.Err != nil {
		return m.Err
	}
	m.EmittedEvents = append(m.EmittedEvents, event)
	return nil
}

func (m *MockEmitter) EmitBatch(ctx context.Context, events []*domain.Event) error {
	if m.Err != nil {
		return m.Err
	}
	m.EmittedEvents = append(m.EmittedEvents, events...)
	m.EmittedBatchCount++
	return nil
}

func (m *MockEmitter) Close() error {
	m.Closed = true
	return nil
}

func TestFinalityBuffer_QueueAndEmit(t *testing.T) {
	mock := &MockEmitter{}
	buffer := NewFinalityBuffer(mock, 10) // 10 confirmations required
	ctx := context.Background()

	event1 := &domain.Event{BlockNumber: 100, ID: "event1"}
	event2 := &domain.Event{BlockNumber: 101, ID: "event2"}

	buffer.QueueEvent(ctx, event1)
	buffer.QueueEvent(ctx, event2)

	if count := buffer.PendingCount(100); count != 1 {
		t.Errorf("expected 1 pending event for block 100, got %d", count)
	}

	// New block 105: (105 - 100 = 5) < 10. Should NOT emit.
	buffer.OnNewBlock(ctx, 105)
	if len(mock.EmittedEvents) != 0 {
		t.Errorf("expected 0 emitted events, got %d", len(mock.EmittedEvents))
	}

	// New block 110: block 100 is final, block 101 is not.
	buffer.OnNewBlock(ctx, 110)

	if len(mock.EmittedEvents) != 1 {
		t.Fatalf("expected 1 emitted event, got %d", len(mock.EmittedEvents))
	}
	if mock.EmittedEvents[0].ID != "event1" {
		t.Errorf("expected event1 to be emitted, got %s", mock.EmittedEvents[0].ID)
	}
	if count := buffer.PendingCount(100); count != 0 {
		t.Errorf("expected 0 pending for block 100, got %d", count)
	}
	if count := buffer.PendingCount(101); count != 1 {
		t.Errorf("expected 1 pending for block 101, got %d", count)
	}
}

func TestFinalityBuffer_DiscardFrom(t *testing.T) {
	mock := &MockEmitter{}
	buffer := NewFinalityBuffer(mock, 10)
	ctx := context.Background()

	buffer.QueueEvent(ctx, &domain.Event{BlockNumber: 99})
	buffer.QueueEvent(ctx, &domain.Event{BlockNumber: 100})
	buffer.QueueEvent(ctx, &domain.Event{BlockNumber: 101})
	buffer.QueueEvent(ctx, &domain.Event{BlockNumber: 101})

	if dropped := buffer.DiscardFrom(100); dropped != 3 {
		t.Errorf("expected 3 dropped events, got %d", dropped)
	}
	if count := buffer.PendingCount(99); count != 1 {
		t.Errorf("block 99 should survive the discard, got %d pending", count)
	}

	buffer.OnNewBlock(ctx, 200)

	if len(mock.EmittedEvents) != 1 || mock.EmittedEvents[0].BlockNumber != 99 {
		t.Errorf("expected only block 99 emitted, got %+v", mock.EmittedEvents)
	}
}

func TestFinalityBuffer_ZeroConfirmations(t *testing.T) {
	mock := &MockEmitter{}
	buffer := NewFinalityBuffer(mock, 0)
	ctx := context.Background()

	buffer.QueueEvent(ctx, &domain.Event{BlockNumber: 100})

	if len(mock.EmittedEvents) != 1 {
		t.Errorf("expected 1 emitted event immediately, got %d", len(mock.EmittedEvents))
	}
}

func TestFinalityBuffer_MultipleBlocksEmitInOrder(t *testing.T) {
	mock := &MockEmitter{}
	buffer := NewFinalityBuffer(mock, 5)
	ctx := context.Background()

	buffer.QueueEvent(ctx, &domain.Event{BlockNumber: 102})
	buffer.QueueEvent(ctx, &domain.Event{BlockNumber: 100})
	buffer.QueueEvent(ctx, &domain.Event{BlockNumber: 101})

	// Jump to block 200 (finalizes all)
	buffer.OnNewBlock(ctx, 200)

	if len(mock.EmittedEvents) != 3 {
		t.Fatalf("expected 3 emitted events, got %d", len(mock.EmittedEvents))
	}
	for i, ev := range mock.EmittedEvents {
		if ev.BlockNumber != uint64(100+i) {
			t.Errorf("event %d: expected block %d, got %d", i, 100+i, ev.BlockNumber)
		}
	}
	if mock.EmittedBatchCount != 3 {
		t.Errorf("expected one batch per block, got %d", mock.EmittedBatchCount)
	}
}

func TestFinalityBuffer_EmitErrorKeepsPending(t *testing.T) {
	mock := &MockEmitter{Err: errors.New("redis down")}
	buffer := NewFinalityBuffer(mock, 1)
	ctx := context.Background()

	buffer.QueueEvent(ctx, &domain.Event{BlockNumber: 100})

	if err := buffer.OnNewBlock(ctx, 105); err == nil {
		t.Fatal("expected emit error")
	}
	if count := buffer.PendingCount(100); count != 1 {
		t.Errorf("failed block should stay pending, got %d", count)
	}

	mock.Err = nil
	if err := buffer.OnNewBlock(ctx, 106); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.EmittedEvents) != 1 {
		t.Errorf("expected retry to emit, got %d", len(mock.EmittedEvents))
	}
}

func TestFinalityBuffer_BelowDepth(t *testing.T) {
	mock := &MockEmitter{}
	buffer := NewFinalityBuffer(mock, 10)
	ctx := context.Background()

	buffer.QueueEvent(ctx, &domain.Event{BlockNumber: 0})
	if err := buffer.OnNewBlock(ctx, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.EmittedEvents) != 0 {
		t.Errorf("expected nothing emitted before depth is reached, got %d", len(mock.EmittedEvents))
	}
}
