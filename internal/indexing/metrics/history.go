package metrics

import "time"

// History records history lookup outcomes.
type History struct{}

// NewHistory constructs a metrics collector for the history provider.
func NewHistory() *History {
	return &History{}
}

// Observe records a finished lookup. degraded is true when every attempt failed.
func (History) Observe(degraded bool, started time.Time) {
	status := "success"
	if degraded {
		status = "degraded"
	}
	historyFetchTotal.WithLabelValues(status).Inc()
	historyFetchDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
}

// ObserveRetry records one failed attempt that is about to be retried.
func (History) ObserveRetry() {
	historyRetries.Inc()
}
