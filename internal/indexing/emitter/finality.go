package emitter

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

// FinalityBuffer wraps an Emitter and holds alerts until their block is
// 'confirmations' deep, so alerts from orphaned blocks can be dropped.
type FinalityBuffer struct {
	inner         Emitter
	confirmations uint64
	pending       map[uint64][]*domain.Event // blockNum -> events
	mu            sync.Mutex
}

// NewFinalityBuffer creates a new buffer that waits for 'confirmations' blocks before emitting.
func NewFinalityBuffer(inner Emitter, confirmations uint64) *FinalityBuffer {
	return &FinalityBuffer{
		inner:         inner,
		confirmations: confirmations,
		pending:       make(map[uint64][]*domain.Event),
	}
}

// QueueEvent adds an event to the buffer. It is NOT emitted yet.
func (f *FinalityBuffer) QueueEvent(ctx context.Context, event *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// If 0 confirmations required, emit immediately
	if f.confirmations == 0 {
		return f.inner.Emit(ctx, event)
	}

	blockNum := event.BlockNumber
	f.pending[blockNum] = append(f.pending[blockNum], event)
	return nil
}

// OnNewBlock notifies the buffer of the current chain tip and emits, in block
// order, every pending event that has reached finality.
func (f *FinalityBuffer) OnNewBlock(ctx context.Context, currentBlock uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if currentBlock < f.confirmations {
		return nil
	}
	safeBlock := currentBlock - f.confirmations

	var blocksToEmit []uint64
	for blockNum := range f.pending {
		if blockNum <= safeBlock {
			blocksToEmit = append(blocksToEmit, blockNum)
		}
	}
	slices.Sort(blocksToEmit)

	for _, blockNum := range blocksToEmit {
		events := f.pending[blockNum]
		if len(events) > 0 {
			if err := f.inner.EmitBatch(ctx, events); err != nil {
				return fmt.Errorf("failed to emit finalized events for block %d: %w", blockNum, err)
			}
		}
		delete(f.pending, blockNum)
	}

	return nil
}

// DiscardFrom drops pending events for fromBlock and every later block.
// Used after a reorg: those blocks are rescanned and their alerts re-raised.
func (f *FinalityBuffer) DiscardFrom(fromBlock uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	dropped := 0
	for blockNum, events := range f.pending {
		if blockNum >= fromBlock {
			dropped += len(events)
			delete(f.pending, blockNum)
		}
	}
	return dropped
}

// PendingCount returns the number of pending events for a block.
func (f *FinalityBuffer) PendingCount(blockNum uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending[blockNum])
}
