package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ogulcanaydogan/settings-bill/pkg/alerts"
)

// Snapshot is the state of a SettingsBill that the Monitor evaluates.
type Snapshot struct {
	Level      Level
	GrandTotal float64
	Settings   Settings
}

// Snap captures the current level, grand total and settings of b.
func (b *SettingsBill) Snap() Snapshot {
	return Snapshot{
		Level:      b.Level(),
		GrandTotal: b.grandTotal(),
		Settings:   b.settings,
	}
}

// Monitor watches snapshots and dispatches alerts when the level rises.
// It is safe for concurrent use.
type Monitor struct {
	notifiers []alerts.Notifier
	logger    *slog.Logger

	mu   sync.Mutex
	last Level
}

// NewMonitor creates a monitor that starts from the normal level.
func NewMonitor(notifiers []alerts.Notifier, logger *slog.Logger) *Monitor {
	return &Monitor{
		notifiers: notifiers,
		logger:    logger,
		last:      LevelNormal,
	}
}

// Observe transitions to the snapshot level and sends the resulting alert,
// if any. It returns whether an alert was sent.
func (m *Monitor) Observe(ctx context.Context, snap Snapshot) bool {
	alert := m.Transition(snap)
	if alert == nil {
		return false
	}
	m.Notify(ctx, *alert)
	return true
}

// Transition records the snapshot level and returns the alert to send when
// it is above the previously recorded one, or nil. Callers that change the
// bill from several goroutines must call Transition under the same lock as
// the change, so levels are recorded in the order they happened. Notify can
// then run after the lock is released.
func (m *Monitor) Transition(snap Snapshot) *alerts.Alert {
	m.mu.Lock()
	prev := m.last
	m.last = snap.Level
	m.mu.Unlock()

	if snap.Level.Rank() <= prev.Rank() {
		return nil
	}

	level := alerts.AlertWarning
	if snap.Level == LevelCritical {
		level = alerts.AlertCritical
	}

	m.logger.Warn("bill level crossed",
		"level", snap.Level,
		"previous", prev,
		"grand_total", snap.GrandTotal,
		"warning_level", snap.Settings.WarningLevel,
		"critical_level", snap.Settings.CriticalLevel,
	)

	return &alerts.Alert{
		Level:         level,
		GrandTotal:    snap.GrandTotal,
		WarningLevel:  snap.Settings.WarningLevel,
		CriticalLevel: snap.Settings.CriticalLevel,
		Message: fmt.Sprintf("Bill total %s reached the %s level",
			FormatAmount(snap.GrandTotal), snap.Level),
	}
}

// Notify sends alert to every notifier. Failures are logged.
func (m *Monitor) Notify(ctx context.Context, alert alerts.Alert) {
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, alert); err != nil {
			m.logger.Error("send alert failed",
				"notifier", notifier.Name(),
				"level", alert.Level,
				"error", err,
			)
		}
	}
}

// Last returns the most recently observed level.
func (m *Monitor) Last() Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
