// Package control assembles the dormancy watcher: storage, alert sinks,
// per-chain scan pipelines and the health server.
package control

import (
	"errors"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/indexing/indexer"
	"github.com/vietddude/dormancy-watcher/internal/indexing/throttle"
	"github.com/vietddude/dormancy-watcher/internal/infra/etherscan"
	"github.com/vietddude/dormancy-watcher/internal/infra/rpc"
)

// chainRuntime is everything the watcher runs for one chain.
type chainRuntime struct {
	id       domain.ChainID
	name     domain.ChainName
	head     *throttle.HeadCache
	client   *rpc.Client
	explorer *etherscan.Client
	pipeline indexer.Indexer
}

func (rt *chainRuntime) close() error {
	return errors.Join(rt.client.Close(), rt.explorer.Close())
}

// ChainStatus is the scan progress of one chain.
type ChainStatus struct {
	Name domain.ChainName
	indexer.Status
}

// Status returns the scan progress of every chain in configuration order.
func (w *Watcher) Status() []ChainStatus {
	out := make([]ChainStatus, 0, len(w.order))
	for _, id := range w.order {
		rt := w.chains[id]
		out = append(out, ChainStatus{Name: rt.name, Status: rt.pipeline.GetStatus()})
	}
	return out
}
