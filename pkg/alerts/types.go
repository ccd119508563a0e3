package alerts

import "context"

// AlertLevel indicates the severity of a bill alert.
type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"  // Grand total reached the warning level
	AlertCritical AlertLevel = "critical" // Grand total reached the critical level; new actions are dropped
)

// Alert represents a bill threshold notification.
type Alert struct {
	Level         AlertLevel `json:"level"`
	GrandTotal    float64    `json:"grand_total"`
	WarningLevel  float64    `json:"warning_level"`
	CriticalLevel float64    `json:"critical_level"`
	Message       string     `json:"message"`
}

// Notifier sends alerts to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}
