// Package history resolves an address to its prior transactions.
//
// Records are ordered newest first. Callers rely on that ordering as a
// contract: index 0 is the transaction that was just observed and index 1 is
// the transaction before it. The ordering comes from the remote service
// (sort=desc) and is not re-derived here.
package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/infra/rpc/routing"
)

type (
	// Provider returns an address's history, newest first. It never fails;
	// an unavailable history is reported as an empty slice.
	Provider interface {
		GetHistory(ctx context.Context, address string) []domain.HistoryRecord
	}

	// Fetcher performs the remote lookup and may fail.
	Fetcher interface {
		FetchHistory(ctx context.Context, address string) ([]domain.HistoryRecord, error)
	}

	// Metrics records lookup outcomes.
	Metrics interface {
		Observe(degraded bool, started time.Time)
		ObserveRetry()
	}
)

// RetryingProvider adapts a Fetcher into a Provider. A failed fetch is
// retried exactly once; if the retry also fails the result is empty.
type RetryingProvider struct {
	fetcher Fetcher
	retry   routing.RetryConfig
	metrics Metrics
	log     *slog.Logger
}

// NewRetryingProvider creates a provider on top of fetcher. A nil metrics
// disables instrumentation.
func NewRetryingProvider(fetcher Fetcher, metrics Metrics) *RetryingProvider {
	return &RetryingProvider{
		fetcher: fetcher,
		retry:   routing.SingleRetryConfig,
		metrics: metrics,
		log:     slog.Default(),
	}
}

// WithRetryDelay sets a pause between the first attempt and the retry.
func (p *RetryingProvider) WithRetryDelay(d time.Duration) *RetryingProvider {
	p.retry.InitialDelay = d
	return p
}

// GetHistory implements Provider.
func (p *RetryingProvider) GetHistory(ctx context.Context, address string) []domain.HistoryRecord {
	started := time.Now()

	cfg := p.retry
	cfg.OnRetry = func(attempt int, err error) {
		p.log.Warn("history fetch failed, retrying", "address", address, "attempt", attempt, "error", err)
		if p.metrics != nil {
			p.metrics.ObserveRetry()
		}
	}

	records, err := routing.Do(ctx, cfg, func(ctx context.Context) ([]domain.HistoryRecord, error) {
		return p.fetcher.FetchHistory(ctx, address)
	})
	if p.metrics != nil {
		p.metrics.Observe(err != nil, started)
	}
	if err != nil {
		p.log.Warn("history unavailable, treating as empty", "address", address, "error", err)
		return []domain.HistoryRecord{}
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return records
}
