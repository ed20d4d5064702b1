package metrics

import "github.com/vietddude/dormancy-watcher/internal/core/domain"

// Detector records detector outcomes for one chain.
type Detector struct {
	chain string
}

// NewDetector constructs a metrics collector for the detector.
func NewDetector(chainID domain.ChainID) *Detector {
	chain := string(chainID)
	if chain == "" {
		chain = "unknown"
	}
	return &Detector{chain: chain}
}

// ObserveOutcome counts one evaluated transaction.
func (m *Detector) ObserveOutcome(outcome string) {
	transactionsEvaluated.WithLabelValues(m.chain, outcome).Inc()
}

// ObserveAlert counts one raised alert.
func (m *Detector) ObserveAlert(alertID string) {
	alertsRaised.WithLabelValues(m.chain, alertID).Inc()
}
