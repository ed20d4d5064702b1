package emitter

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

// MockPublisher records published payloads.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, channel string, payload []byte) (int64, error)
	Channels    []string
	Payloads    [][]byte
	Closed      bool
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	m.Channels = append(m.Channels, channel)
	m.Payloads = append(m.Payloads, payload)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, channel, payload)
	}
	return 1, nil
}

func (m *MockPublisher) Close() error {
	m.Closed = true
	return nil
}

func alertEvent() *domain.Event {
	value, _ := new(big.Int).SetString("100000000000000000000", 10)
	return &domain.Event{
		ID:          "evt-1",
		EventType:   domain.EventTypeAlertRaised,
		ChainID:     domain.ChainIDEthereum,
		BlockNumber: 42,
		TxHash:      "0xabc",
		Alert: domain.Alert{
			Name:        "High volume after long inactivity",
			Description: "High volume (100 ETH) after 365 days inactive",
			AlertID:     "FORTA-1",
			Severity:    domain.SeverityCritical,
			Category:    domain.CategorySuspicious,
			Metadata: map[string]any{
				domain.MetadataFrom:            "0xsender",
				domain.MetadataValue:           value,
				domain.MetadataInactiveSeconds: int64(31_622_401),
			},
		},
	}
}

func TestRedisEmitter_PublishesJSON(t *testing.T) {
	pub := &MockPublisher{}
	e := NewRedisEmitter(pub, "dormancy:alerts")

	if err := e.Emit(context.Background(), alertEvent()); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if len(pub.Payloads) != 1 || pub.Channels[0] != "dormancy:alerts" {
		t.Fatalf("expected one publish on dormancy:alerts, got %v", pub.Channels)
	}

	var decoded struct {
		ID        string `json:"id"`
		EventType string `json:"event_type"`
		Alert     struct {
			AlertID  string                     `json:"alert_id"`
			Metadata map[string]json.RawMessage `json:"metadata"`
		} `json:"alert"`
	}
	if err := json.Unmarshal(pub.Payloads[0], &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded.ID != "evt-1" || decoded.EventType != "alert_raised" || decoded.Alert.AlertID != "FORTA-1" {
		t.Errorf("unexpected envelope: %+v", decoded)
	}
	// Values keep full precision as a JSON number.
	if got := string(decoded.Alert.Metadata["value"]); got != "100000000000000000000" {
		t.Errorf("expected exact value in metadata, got %s", got)
	}
}

func TestRedisEmitter_BatchStopsOnError(t *testing.T) {
	boom := errors.New("connection reset")
	pub := &MockPublisher{
		PublishFunc: func(ctx context.Context, channel string, payload []byte) (int64, error) {
			return 0, boom
		},
	}
	e := NewRedisEmitter(pub, "alerts")

	err := e.EmitBatch(context.Background(), []*domain.Event{alertEvent(), alertEvent()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if len(pub.Payloads) != 1 {
		t.Errorf("expected batch to stop after first failure, got %d publishes", len(pub.Payloads))
	}

	if err := e.Close(); err != nil || !pub.Closed {
		t.Errorf("expected Close to close the publisher")
	}
}

func TestMultiEmitter_FansOut(t *testing.T) {
	boom := errors.New("down")
	ok := &MockEmitter{}
	failing := &MockEmitter{Err: boom}
	m := NewMultiEmitter(failing, ok)

	err := m.Emit(context.Background(), alertEvent())
	if !errors.Is(err, boom) {
		t.Errorf("expected joined error to contain failure, got %v", err)
	}
	if len(ok.EmittedEvents) != 1 {
		t.Errorf("healthy emitter should still receive the event")
	}

	failing.Err = nil
	if err := m.EmitBatch(context.Background(), []*domain.Event{alertEvent(), alertEvent()}); err != nil {
		t.Fatalf("EmitBatch failed: %v", err)
	}
	if len(ok.EmittedEvents) != 3 || len(failing.EmittedEvents) != 2 {
		t.Errorf("unexpected fan-out counts: ok=%d failing=%d", len(ok.EmittedEvents), len(failing.EmittedEvents))
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !ok.Closed || !failing.Closed {
		t.Error("expected all emitters closed")
	}
}

func TestLogEmitter(t *testing.T) {
	e := NewLogEmitter()
	if err := e.EmitBatch(context.Background(), []*domain.Event{alertEvent()}); err != nil {
		t.Fatalf("EmitBatch failed: %v", err)
	}
}
