// Package detector flags high-volume transactions sent from addresses that
// have been inactive for a long time.
package detector

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/history"
)

// Outcomes reported to Metrics.
const (
	OutcomeRejected       = "rejected"
	OutcomeLowVolume      = "low_volume"
	OutcomeNoHistory      = "no_history"
	OutcomeRecentlyActive = "recently_active"
	OutcomeAlerted        = "alerted"
)

// Metrics records detector outcomes.
type Metrics interface {
	ObserveOutcome(outcome string)
	ObserveAlert(alertID string)
}

// Detector evaluates one transaction at a time. It holds no mutable state
// and is safe for concurrent use.
type Detector struct {
	history history.Provider
	cfg     Config
	metrics Metrics
	log     *slog.Logger
}

// New creates a detector that looks up sender history through provider.
// Zero fields of cfg take their defaults. A nil metrics disables instrumentation.
func New(provider history.Provider, cfg Config, metrics Metrics) *Detector {
	return &Detector{
		history: provider,
		cfg:     cfg.withDefaults(),
		metrics: metrics,
		log:     slog.Default(),
	}
}

// HandleTransaction returns at most one alert for tx. The only error is a
// wrapped domain.ErrInvalidEvent for events without a sender or value.
func (d *Detector) HandleTransaction(ctx context.Context, tx domain.TransactionEvent) ([]domain.Alert, error) {
	if err := tx.Validate(); err != nil {
		d.observe(OutcomeRejected)
		return nil, err
	}

	if tx.Value.Cmp(d.cfg.HighVolume) < 0 {
		d.observe(OutcomeLowVolume)
		return []domain.Alert{}, nil
	}

	// Record 0 is the transaction being handled, record 1 the one before it.
	records := d.history.GetHistory(ctx, tx.From)
	if len(records) < 2 {
		d.observe(OutcomeNoHistory)
		return []domain.Alert{}, nil
	}

	inactive := int64(tx.BlockTimestamp) - int64(records[1].Timestamp)
	if inactive < d.cfg.InactiveSeconds {
		d.observe(OutcomeRecentlyActive)
		return []domain.Alert{}, nil
	}

	alert := d.newAlert(tx, inactive)
	d.observe(OutcomeAlerted)
	if d.metrics != nil {
		d.metrics.ObserveAlert(alert.AlertID)
	}
	d.log.Debug("dormant sender moved high volume",
		"chain", tx.ChainID,
		"tx", tx.Hash,
		"from", tx.From,
		"value", tx.Value.String(),
		"inactive_seconds", inactive,
	)

	return []domain.Alert{alert}, nil
}

func (d *Detector) newAlert(tx domain.TransactionEvent, inactive int64) domain.Alert {
	volume := decimal.NewFromBigInt(tx.Value, -d.cfg.Decimals)
	days := inactive / secondsPerDay

	return domain.Alert{
		Name:        AlertName,
		Description: fmt.Sprintf("High volume (%s %s) after %d days inactive", volume.String(), d.cfg.Symbol, days),
		AlertID:     AlertID,
		Severity:    domain.SeverityCritical,
		Category:    domain.CategorySuspicious,
		Metadata: map[string]any{
			domain.MetadataFrom:            tx.From,
			domain.MetadataValue:           new(big.Int).Set(tx.Value),
			domain.MetadataInactiveSeconds: inactive,
		},
	}
}

func (d *Detector) observe(outcome string) {
	if d.metrics != nil {
		d.metrics.ObserveOutcome(outcome)
	}
}
