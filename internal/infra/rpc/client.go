package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/infra/rpc/routing"
)

// ErrNoProviders is returned when a client has nothing to call.
var ErrNoProviders = errors.New("no rpc providers configured")

// Metrics records the outcome of every provider attempt.
type Metrics interface {
	Observe(provider, method string, err error, started time.Time)
}

// Client is the high-level interface for making RPC calls.
// This is what application layers should use.
type Client struct {
	chainID   domain.ChainID
	providers []Provider
	retry     routing.RetryConfig
	metrics   Metrics
	log       *slog.Logger

	mu      sync.Mutex
	current int
}

// NewClient creates a new RPC client over providers in preference order.
func NewClient(chainID domain.ChainID, providers []Provider, retry routing.RetryConfig, metrics Metrics) *Client {
	return &Client{
		chainID:   chainID,
		providers: providers,
		retry:     retry,
		metrics:   metrics,
		log:       slog.Default().With("chain", chainID),
	}
}

// Call makes an RPC call with retry and ordered failover.
func (c *Client) Call(ctx context.Context, method string, params []any) (any, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoProviders
	}

	var errs []error
	for _, idx := range c.order() {
		p := c.providers[idx]

		result, err := routing.DoClassified(ctx, c.retry, func(ctx context.Context) (any, error) {
			started := time.Now()
			res, err := p.Call(ctx, method, params)
			if c.metrics != nil {
				c.metrics.Observe(p.GetName(), method, err, started)
			}
			return res, err
		})
		if err == nil {
			c.setCurrent(idx)
			return result, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// The request itself is wrong; another node will reject it too.
		if routing.ClassifyError(err) == routing.ActionFatal {
			return nil, fmt.Errorf("%s via %s: %w", method, p.GetName(), err)
		}

		c.log.Warn("RPC provider failed, failing over",
			"provider", p.GetName(),
			"method", method,
			"error", err,
		)
		errs = append(errs, fmt.Errorf("%s: %w", p.GetName(), err))
	}

	return nil, fmt.Errorf("all providers failed for %s: %w", method, errors.Join(errs...))
}

// order returns provider indexes starting at the preferred one. Providers that
// report themselves unavailable go last instead of being skipped.
func (c *Client) order() []int {
	c.mu.Lock()
	start := c.current
	c.mu.Unlock()

	n := len(c.providers)
	available := make([]int, 0, n)
	var unavailable []int
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if c.providers[idx].IsAvailable() {
			available = append(available, idx)
		} else {
			unavailable = append(unavailable, idx)
		}
	}
	return append(available, unavailable...)
}

func (c *Client) setCurrent(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != idx {
		c.log.Info("Switched RPC provider", "provider", c.providers[idx].GetName())
		c.current = idx
	}
}

// Providers returns the configured providers in preference order.
func (c *Client) Providers() []Provider {
	return c.providers
}

// Close closes every provider.
func (c *Client) Close() error {
	var errs []error
	for _, p := range c.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
