package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestDetectorRecords(t *testing.T) {
	m := NewDetector("")

	if inc := delta(t, transactionsEvaluated.WithLabelValues("unknown", "low_volume"), func() {
		m.ObserveOutcome("low_volume")
	}); inc != 1 {
		t.Fatalf("expected outcome counter increment, got %v", inc)
	}

	if inc := delta(t, alertsRaised.WithLabelValues("unknown", "FORTA-1"), func() {
		m.ObserveAlert("FORTA-1")
	}); inc != 1 {
		t.Fatalf("expected alert counter increment, got %v", inc)
	}
}

func TestHistoryRecords(t *testing.T) {
	m := NewHistory()
	start := time.Now().Add(-time.Second)

	if inc := delta(t, historyFetchTotal.WithLabelValues("degraded"), func() {
		m.Observe(true, start)
	}); inc != 1 {
		t.Fatalf("expected degraded counter increment, got %v", inc)
	}

	if inc := delta(t, historyFetchTotal.WithLabelValues("success"), func() {
		m.Observe(false, start)
	}); inc != 1 {
		t.Fatalf("expected success counter increment, got %v", inc)
	}

	if inc := delta(t, historyRetries, m.ObserveRetry); inc != 1 {
		t.Fatalf("expected retry counter increment, got %v", inc)
	}
}

func TestRPCClientRecords(t *testing.T) {
	m := NewRPCClient()
	start := time.Now().Add(-200 * time.Millisecond)

	if inc := delta(t, RPCCallsTotal.WithLabelValues("alchemy", "eth_blockNumber", "success"), func() {
		m.Observe("alchemy", "eth_blockNumber", nil, start)
	}); inc != 1 {
		t.Fatalf("expected rpc call counter increment, got %v", inc)
	}

	if inc := delta(t, RPCCallsTotal.WithLabelValues("alchemy", "eth_blockNumber", "error"), func() {
		m.Observe("alchemy", "eth_blockNumber", errors.New("oops"), start)
	}); inc != 1 {
		t.Fatalf("expected rpc error counter increment, got %v", inc)
	}
}

func TestPipelineRecords(t *testing.T) {
	m := NewPipeline("8453")

	m.ObserveHead(120)
	if got := testutil.ToFloat64(ChainLatestBlock.WithLabelValues("8453")); got != 120 {
		t.Fatalf("expected head gauge 120, got %v", got)
	}

	if inc := delta(t, BlocksProcessed.WithLabelValues("8453"), func() {
		m.ObserveBlock(100, time.Now())
	}); inc != 1 {
		t.Fatalf("expected blocks processed increment, got %v", inc)
	}
	if got := testutil.ToFloat64(IndexerLatestBlock.WithLabelValues("8453")); got != 100 {
		t.Fatalf("expected indexer gauge 100, got %v", got)
	}

	if inc := delta(t, reorgsDetected.WithLabelValues("8453"), m.ObserveReorg); inc != 1 {
		t.Fatalf("expected reorg counter increment, got %v", inc)
	}
}
