package domain

// Severity of an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Category classifies what an alert is about.
type Category string

const (
	CategoryInfo       Category = "info"
	CategorySuspicious Category = "suspicious"
	CategoryExploit    Category = "exploit"
	CategoryDegraded   Category = "degraded"
)

// Metadata keys set on every dormancy alert.
const (
	MetadataFrom            = "from"
	MetadataValue           = "value"
	MetadataInactiveSeconds = "inactiveSeconds"
)

// Alert is a finding produced by the detector for the scanning host.
type Alert struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	AlertID     string         `json:"alert_id"`
	Severity    Severity       `json:"severity"`
	Category    Category       `json:"category"`
	Metadata    map[string]any `json:"metadata"`
}
