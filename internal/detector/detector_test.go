package detector

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

// MockProvider implements history.Provider for testing
type MockProvider struct {
	Records []domain.HistoryRecord
	Calls   int
}

func (m *MockProvider) GetHistory(ctx context.Context, address string) []domain.HistoryRecord {
	m.Calls++
	return m.Records
}

// MockMetrics implements Metrics for testing
type MockMetrics struct {
	Outcomes []string
	Alerts   []string
}

func (m *MockMetrics) ObserveOutcome(outcome string) { m.Outcomes = append(m.Outcomes, outcome) }
func (m *MockMetrics) ObserveAlert(alertID string)   { m.Alerts = append(m.Alerts, alertID) }

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func txEvent(value *big.Int, blockTimestamp uint64) domain.TransactionEvent {
	return domain.TransactionEvent{
		ChainID:        domain.ChainIDEthereum,
		Hash:           "0xtx",
		BlockNumber:    1,
		From:           "0xsender",
		Value:          value,
		BlockTimestamp: blockTimestamp,
	}
}

func historyOf(timestamps ...uint64) []domain.HistoryRecord {
	records := make([]domain.HistoryRecord, len(timestamps))
	for i, ts := range timestamps {
		records[i] = domain.HistoryRecord{Timestamp: ts}
	}
	return records
}

func TestDetector_LowVolumeSkipsHistory(t *testing.T) {
	tests := []struct {
		name  string
		value *big.Int
	}{
		{"zero", big.NewInt(0)},
		{"one wei below threshold", new(big.Int).Sub(eth(100), big.NewInt(1))},
		{"99 eth", eth(99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockProvider{Records: historyOf(0, 1)}
			metrics := &MockMetrics{}
			d := New(provider, DefaultConfig(), metrics)

			alerts, err := d.HandleTransaction(context.Background(), txEvent(tt.value, uint64(DefaultInactiveSeconds)*10))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(alerts) != 0 {
				t.Errorf("expected no alerts, got %d", len(alerts))
			}
			if provider.Calls != 0 {
				t.Errorf("history provider must not be queried, got %d calls", provider.Calls)
			}
			if len(metrics.Outcomes) != 1 || metrics.Outcomes[0] != OutcomeLowVolume {
				t.Errorf("expected low_volume outcome, got %v", metrics.Outcomes)
			}
		})
	}
}

func TestDetector_InsufficientHistory(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.HistoryRecord
	}{
		{"nil", nil},
		{"empty", []domain.HistoryRecord{}},
		{"single record", historyOf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockProvider{Records: tt.records}
			d := New(provider, DefaultConfig(), nil)

			alerts, err := d.HandleTransaction(context.Background(), txEvent(eth(1000), uint64(DefaultInactiveSeconds)*10))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(alerts) != 0 {
				t.Errorf("expected no alerts, got %d", len(alerts))
			}
			if provider.Calls != 1 {
				t.Errorf("expected 1 history call, got %d", provider.Calls)
			}
		})
	}
}

func TestDetector_RecentlyActive(t *testing.T) {
	tests := []struct {
		name      string
		blockTime uint64
		records   []domain.HistoryRecord
	}{
		{"one second short", uint64(DefaultInactiveSeconds), historyOf(0, 1)},
		{"active yesterday", 1_700_000_000, historyOf(1_700_000_000, 1_700_000_000-86_400)},
		{"previous tx newer than block", 100, historyOf(100, 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockProvider{Records: tt.records}
			d := New(provider, DefaultConfig(), nil)

			alerts, err := d.HandleTransaction(context.Background(), txEvent(eth(100), tt.blockTime))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(alerts) != 0 {
				t.Errorf("expected no alerts, got %d", len(alerts))
			}
		})
	}
}

func TestDetector_AlertsOnDormantHighVolume(t *testing.T) {
	value := new(big.Int).Add(eth(12345), big.NewInt(1))
	blockTime := uint64(1_700_000_000)
	previous := blockTime - 3*uint64(DefaultInactiveSeconds)

	provider := &MockProvider{Records: historyOf(blockTime, previous, 10)}
	metrics := &MockMetrics{}
	d := New(provider, DefaultConfig(), metrics)

	tx := txEvent(value, blockTime)
	alerts, err := d.HandleTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected exactly 1 alert, got %d", len(alerts))
	}

	alert := alerts[0]
	if alert.Severity != domain.SeverityCritical {
		t.Errorf("expected critical severity, got %s", alert.Severity)
	}
	if alert.Category != domain.CategorySuspicious {
		t.Errorf("expected suspicious category, got %s", alert.Category)
	}
	if alert.AlertID != AlertID || alert.Name != AlertName {
		t.Errorf("unexpected id/name: %s / %s", alert.AlertID, alert.Name)
	}

	gotValue, ok := alert.Metadata[domain.MetadataValue].(*big.Int)
	if !ok || gotValue.Cmp(value) != 0 {
		t.Errorf("expected metadata value %s, got %v", value, alert.Metadata[domain.MetadataValue])
	}
	if gotValue == tx.Value {
		t.Error("metadata value must not alias the event value")
	}
	if got := alert.Metadata[domain.MetadataInactiveSeconds]; got != int64(blockTime-previous) {
		t.Errorf("expected inactiveSeconds %d, got %v", blockTime-previous, got)
	}
	if got := alert.Metadata[domain.MetadataFrom]; got != "0xsender" {
		t.Errorf("expected from 0xsender, got %v", got)
	}
	if !strings.Contains(alert.Description, "12345.000000000000000001 ETH") {
		t.Errorf("description should carry the exact coin amount: %s", alert.Description)
	}
	if !strings.Contains(alert.Description, "1098 days") {
		t.Errorf("description should carry whole days: %s", alert.Description)
	}

	if len(metrics.Alerts) != 1 || metrics.Alerts[0] != AlertID {
		t.Errorf("expected alert metric, got %v", metrics.Alerts)
	}
}

func TestDetector_InclusiveBoundaries(t *testing.T) {
	blockTime := uint64(DefaultInactiveSeconds) + 1000
	provider := &MockProvider{Records: historyOf(blockTime, 1000)}
	d := New(provider, DefaultConfig(), nil)

	alerts, err := d.HandleTransaction(context.Background(), txEvent(eth(100), blockTime))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("value and inactivity exactly at threshold should alert, got %d alerts", len(alerts))
	}
	if got := alerts[0].Metadata[domain.MetadataInactiveSeconds]; got != DefaultInactiveSeconds {
		t.Errorf("expected inactiveSeconds %d, got %v", DefaultInactiveSeconds, got)
	}
}

func TestDetector_Scenario(t *testing.T) {
	provider := &MockProvider{Records: []domain.HistoryRecord{{}, {Timestamp: 1}}}
	d := New(provider, DefaultConfig(), nil)

	alerts, err := d.HandleTransaction(context.Background(), txEvent(eth(100), 31_622_401))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}

	want := "High volume (100 ETH) after 365 days inactive"
	if alerts[0].Description != want {
		t.Errorf("description = %q, want %q", alerts[0].Description, want)
	}
}

func TestDetector_RejectsMalformedEvents(t *testing.T) {
	tests := []struct {
		name string
		tx   domain.TransactionEvent
	}{
		{"missing sender", domain.TransactionEvent{Value: eth(500)}},
		{"missing value", domain.TransactionEvent{From: "0xsender"}},
		{"negative value", domain.TransactionEvent{From: "0xsender", Value: big.NewInt(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockProvider{Records: historyOf(0, 1)}
			metrics := &MockMetrics{}
			d := New(provider, DefaultConfig(), metrics)

			alerts, err := d.HandleTransaction(context.Background(), tt.tx)
			if !errors.Is(err, domain.ErrInvalidEvent) {
				t.Fatalf("expected ErrInvalidEvent, got %v", err)
			}
			if len(alerts) != 0 {
				t.Errorf("expected no alerts, got %d", len(alerts))
			}
			if provider.Calls != 0 {
				t.Errorf("history provider must not be queried, got %d calls", provider.Calls)
			}
			if len(metrics.Outcomes) != 1 || metrics.Outcomes[0] != OutcomeRejected {
				t.Errorf("expected rejected outcome, got %v", metrics.Outcomes)
			}
		})
	}
}

func TestDetector_CustomConfig(t *testing.T) {
	cfg := Config{
		HighVolume:      big.NewInt(5_000_000),
		InactiveSeconds: 86_400,
		Decimals:        6,
		Symbol:          "USDC",
	}
	provider := &MockProvider{Records: historyOf(0, 0)}
	d := New(provider, cfg, nil)

	alerts, err := d.HandleTransaction(context.Background(), txEvent(big.NewInt(7_500_000), 2*86_400))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if want := "High volume (7.5 USDC) after 2 days inactive"; alerts[0].Description != want {
		t.Errorf("description = %q, want %q", alerts[0].Description, want)
	}
}

func TestDetector_ConfigIsCopied(t *testing.T) {
	threshold := eth(100)
	d := New(&MockProvider{}, Config{HighVolume: threshold}, nil)

	threshold.SetInt64(0)
	if d.cfg.HighVolume.Cmp(eth(100)) != 0 {
		t.Errorf("detector threshold changed with caller's big.Int: %s", d.cfg.HighVolume)
	}
	if d.cfg.InactiveSeconds != DefaultInactiveSeconds || d.cfg.Symbol != DefaultSymbol {
		t.Errorf("expected defaults for zero fields, got %+v", d.cfg)
	}
}
