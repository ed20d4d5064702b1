package metrics

import (
	"time"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

// Pipeline records scan progress for one chain.
type Pipeline struct {
	chain string
}

// NewPipeline constructs a metrics collector for a chain scanner.
func NewPipeline(chainID domain.ChainID) *Pipeline {
	chain := string(chainID)
	if chain == "" {
		chain = "unknown"
	}
	return &Pipeline{chain: chain}
}

// ObserveHead records the chain tip.
func (m *Pipeline) ObserveHead(latest uint64) {
	ChainLatestBlock.WithLabelValues(m.chain).Set(float64(latest))
}

// ObserveBlock records a fully evaluated block.
func (m *Pipeline) ObserveBlock(number uint64, started time.Time) {
	BlocksProcessed.WithLabelValues(m.chain).Inc()
	IndexerLatestBlock.WithLabelValues(m.chain).Set(float64(number))
	blockDuration.WithLabelValues(m.chain).Observe(time.Since(started).Seconds())
}

// ObserveReorg counts a detected reorganization.
func (m *Pipeline) ObserveReorg() {
	reorgsDetected.WithLabelValues(m.chain).Inc()
}
