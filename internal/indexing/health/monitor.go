package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/dormancy-watcher/internal/core/cursor"
	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/infra/rpc/provider"
)

const (
	degradedLag = 10
	criticalLag = 100
)

// BlockHeightFetcher fetches the latest block height for a chain.
type BlockHeightFetcher interface {
	GetLatestHeight(ctx context.Context, chainID domain.ChainID) (uint64, error)
}

// ProviderSource lists the RPC providers configured for a chain.
type ProviderSource interface {
	Providers(chainID domain.ChainID) []provider.Provider
}

// CursorReader is the part of cursor.Manager the monitor reads.
type CursorReader interface {
	GetLag(ctx context.Context, chainID domain.ChainID, latestBlock uint64) (int64, error)
	GetThroughput(chainID domain.ChainID) cursor.Throughput
}

// Check probes an external dependency such as the database.
type Check func(ctx context.Context) error

// Monitor aggregates health status from various system components.
type Monitor struct {
	chains        []domain.ChainID
	cursors       CursorReader
	heightFetcher BlockHeightFetcher
	providers     ProviderSource
	checks        map[string]Check
	cacheTTL      time.Duration
	lastCheck     time.Time
	lastReport    HealthReport
	mu            sync.Mutex
}

// NewMonitor creates a new health monitor. providers may be nil.
func NewMonitor(
	chains []domain.ChainID,
	cursors CursorReader,
	heightFetcher BlockHeightFetcher,
	providers ProviderSource,
) *Monitor {
	return &Monitor{
		chains:        chains,
		cursors:       cursors,
		heightFetcher: heightFetcher,
		providers:     providers,
		checks:        make(map[string]Check),
		cacheTTL:      10 * time.Second,
	}
}

// AddCheck registers a dependency probe reported under name.
func (m *Monitor) AddCheck(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = check
}

// CheckHealth performs a health check for all chains.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit checks to avoid spamming RPC
	if time.Since(m.lastCheck) < m.cacheTTL && m.lastReport.Chains != nil {
		return m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Chains:       make(map[string]ChainHealth, len(m.chains)),
	}

	for _, chainID := range m.chains {
		health := m.checkChain(ctx, chainID)
		report.Chains[string(chainID)] = health
		report.SystemStatus = worse(report.SystemStatus, health.Status)
	}

	if len(m.checks) > 0 {
		report.Dependencies = make(map[string]string, len(m.checks))
		for name, check := range m.checks {
			if err := check(ctx); err != nil {
				report.Dependencies[name] = err.Error()
				report.SystemStatus = worse(report.SystemStatus, StatusDegraded)
				continue
			}
			report.Dependencies[name] = "ok"
		}
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}

func (m *Monitor) checkChain(ctx context.Context, chainID domain.ChainID) ChainHealth {
	health := ChainHealth{
		ChainID: string(chainID),
		Status:  StatusHealthy,
	}

	tp := m.cursors.GetThroughput(chainID)
	health.BlocksPerSecond = tp.BlocksPerSecond
	health.AvgBlockTime = tp.AverageBlockTime

	latest, err := m.heightFetcher.GetLatestHeight(ctx, chainID)
	if err != nil {
		// If we can't get height, that's degradation
		health.Status = StatusDegraded
		health.Error = err.Error()
	} else {
		health.LatestBlock = latest
		lag, err := m.cursors.GetLag(ctx, chainID, latest)
		if err != nil {
			health.Status = StatusDegraded
			health.Error = err.Error()
		}
		if lag > 0 {
			health.BlockLag = uint64(lag)
		}
	}

	if health.BlockLag > criticalLag {
		health.Status = StatusCritical
	} else if health.BlockLag > degradedLag {
		health.Status = worse(health.Status, StatusDegraded)
	}

	if m.providers != nil {
		list := m.providers.Providers(chainID)
		health.Providers = make(map[string]provider.HealthStatus, len(list))
		available := 0
		for _, p := range list {
			health.Providers[p.GetName()] = p.GetHealth()
			if p.IsAvailable() {
				available++
			}
		}
		if len(list) > 0 && available == 0 {
			health.Status = StatusCritical
		} else if available < len(list) {
			health.Status = worse(health.Status, StatusDegraded)
		}
	}

	return health
}
