package redis

import (
	"strings"
	"testing"
)

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(Config{URL: "not-a-redis-url"})
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
	if !strings.Contains(err.Error(), "parse redis URL") {
		t.Errorf("unexpected error: %v", err)
	}
}
