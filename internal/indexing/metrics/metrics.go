package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BlocksProcessed tracks total blocks processed per chain
	BlocksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watcher_blocks_processed_total",
			Help: "Total number of blocks processed",
		},
		[]string{"chain"},
	)

	// RPCCallsTotal tracks node RPC calls per provider
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watcher_rpc_calls_total",
			Help: "Total number of RPC calls",
		},
		[]string{"provider", "method", "status"},
	)

	// RPCLatency tracks RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watcher_rpc_latency_seconds",
			Help:    "RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "method"},
	)

	// ChainLatestBlock tracks the latest block height of the chain
	ChainLatestBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watcher_chain_latest_block",
			Help: "Latest block height of the chain",
		},
		[]string{"chain"},
	)

	// IndexerLatestBlock tracks the latest block scanned by the watcher
	IndexerLatestBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watcher_indexer_latest_block",
			Help: "Latest block height scanned by the watcher",
		},
		[]string{"chain"},
	)

	reorgsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watcher_reorgs_total",
			Help: "Chain reorganizations detected while scanning",
		},
		[]string{"chain"},
	)

	blockDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watcher_block_processing_duration_seconds",
			Help:    "Time to fetch and evaluate one block",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain"},
	)

	transactionsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dormancy_transactions_evaluated_total",
			Help: "Transactions evaluated by the detector, by outcome",
		},
		[]string{"chain", "outcome"},
	)

	alertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dormancy_alerts_total",
			Help: "Alerts raised by the detector",
		},
		[]string{"chain", "alert_id"},
	)

	historyFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dormancy_history_fetch_total",
			Help: "History lookups against the ledger-indexing service, by status",
		},
		[]string{"status"},
	)

	historyFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dormancy_history_fetch_duration_seconds",
			Help:    "Duration of history lookups including the retry",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	historyRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dormancy_history_retries_total",
			Help: "History fetch attempts that failed and were retried",
		},
	)
)
