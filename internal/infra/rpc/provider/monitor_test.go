package provider

import (
	"testing"
	"time"
)

func TestMonitor_AverageLatency(t *testing.T) {
	m := NewProviderMonitor()

	m.RecordRequest(100 * time.Millisecond)
	m.RecordRequest(300 * time.Millisecond)

	if avg := m.GetAverageLatency(); avg != 200*time.Millisecond {
		t.Errorf("expected 200ms average, got %v", avg)
	}
}

func TestMonitor_LatencyWindow(t *testing.T) {
	m := NewProviderMonitor()

	for i := 0; i < 150; i++ {
		m.RecordRequest(time.Millisecond)
	}
	if len(m.recentLatencies) != m.maxLatencyWindow {
		t.Errorf("expected window of %d, got %d", m.maxLatencyWindow, len(m.recentLatencies))
	}
}

func TestMonitor_Degraded(t *testing.T) {
	m := NewProviderMonitor()

	for i := 0; i < 11; i++ {
		m.RecordRequest(5 * time.Second)
	}
	if status := m.CheckProviderStatus(); status != StatusDegraded {
		t.Errorf("expected degraded, got %s", status)
	}
}

func TestMonitor_Blocked(t *testing.T) {
	m := NewProviderMonitor()

	m.RecordThrottle(403, "")
	if status := m.CheckProviderStatus(); status != StatusBlocked {
		t.Errorf("expected blocked, got %s", status)
	}
	if m.GetRetryAfter() <= 0 {
		t.Error("expected positive retry-after")
	}
}

func TestMonitor_ThrottledAfterRepeated429(t *testing.T) {
	m := NewProviderMonitor()

	for i := 0; i < 5; i++ {
		m.RecordThrottle(429, "30")
	}
	if status := m.CheckProviderStatus(); status != StatusHealthy {
		t.Errorf("expected healthy below threshold, got %s", status)
	}

	m.RecordThrottle(429, "30")
	stats := m.GetStats()
	if stats.Status != StatusThrottled {
		t.Errorf("expected throttled, got %s", stats.Status)
	}
	if stats.ThrottleCount429 != 6 {
		t.Errorf("expected 6 throttles, got %d", stats.ThrottleCount429)
	}
	if stats.RetryAfter > 30*time.Second {
		t.Errorf("expected Retry-After header to be honoured, got %v", stats.RetryAfter)
	}
}

func TestMonitor_DetectThrottlePattern(t *testing.T) {
	m := NewProviderMonitor()

	tests := []struct {
		msg  string
		want bool
	}{
		{"Max rate limit reached", true},
		{"Too Many Requests", true},
		{"execution reverted", false},
	}
	for _, tt := range tests {
		if got := m.DetectThrottlePattern(tt.msg); got != tt.want {
			t.Errorf("DetectThrottlePattern(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
