// Package rpc provides a resilient JSON-RPC client for blockchain nodes.
//
// A Client holds the ordered provider list for one chain. Every call is retried
// on the current provider with the configured backoff and, when that provider
// is exhausted, rate limited or blocked, fails over to the next one. The last
// provider that answered stays preferred for later calls.
//
//	client := rpc.NewClient("1", []rpc.Provider{
//	    rpc.NewHTTPProvider("alchemy", alchemyURL, 10*time.Second),
//	    rpc.NewHTTPProvider("public", publicURL, 10*time.Second),
//	}, routing.DefaultRetryConfig, metrics.NewRPCClient())
//
//	result, err := client.Call(ctx, "eth_blockNumber", nil)
package rpc

import (
	"time"

	"github.com/vietddude/dormancy-watcher/internal/infra/rpc/provider"
	"github.com/vietddude/dormancy-watcher/internal/infra/rpc/routing"
)

// Provider is the core interface for RPC endpoints.
type Provider = provider.Provider

// HTTPProvider implements Provider for JSON-RPC over HTTP.
type HTTPProvider = provider.HTTPProvider

// RetryConfig defines retry behavior.
type RetryConfig = routing.RetryConfig

// DefaultRetryConfig provides sensible defaults for node RPC calls.
var DefaultRetryConfig = routing.DefaultRetryConfig

// NewHTTPProvider creates a new HTTP-based RPC provider.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return provider.NewHTTPProvider(name, endpoint, timeout)
}
