package metrics

import "time"

// RPCClient records node RPC call outcomes.
type RPCClient struct{}

// NewRPCClient constructs a metrics collector for node RPC calls.
func NewRPCClient() *RPCClient {
	return &RPCClient{}
}

// Observe records a single RPC call outcome and duration.
func (RPCClient) Observe(provider, method string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RPCCallsTotal.WithLabelValues(provider, method, status).Inc()
	RPCLatency.WithLabelValues(provider, method).Observe(time.Since(started).Seconds())
}
