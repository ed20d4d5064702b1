// Package health provides system health monitoring and status reporting.
package health

import (
	"time"

	"github.com/vietddude/dormancy-watcher/internal/infra/rpc/provider"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ChainHealth contains health metrics for a specific blockchain chain.
type ChainHealth struct {
	ChainID         string                           `json:"chain_id"`
	Status          SystemStatus                     `json:"status"`
	LatestBlock     uint64                           `json:"latest_block"`
	BlockLag        uint64                           `json:"block_lag"`
	BlocksPerSecond float64                          `json:"blocks_per_second"`
	AvgBlockTime    time.Duration                    `json:"avg_block_time"`
	Providers       map[string]provider.HealthStatus `json:"providers,omitempty"`
	Error           string                           `json:"error,omitempty"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus           `json:"system_status"`
	Chains       map[string]ChainHealth `json:"chains"`
	Dependencies map[string]string      `json:"dependencies,omitempty"` // name -> "ok" or error
}

// worse returns the more severe of two statuses.
func worse(a, b SystemStatus) SystemStatus {
	rank := map[SystemStatus]int{StatusHealthy: 0, StatusDegraded: 1, StatusCritical: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
