package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ogulcanaydogan/settings-bill/pkg/model"
)

// Metrics holds the Prometheus collectors of the bill.
type Metrics struct {
	ActionsRecorded *prometheus.CounterVec
	ActionsDropped  *prometheus.CounterVec
	Resets          *prometheus.CounterVec
	SettingsChanges prometheus.Counter
	GrandTotal      prometheus.Gauge
	Level           prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all collectors on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ActionsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settingsbill_actions_recorded_total",
				Help: "Total number of actions added to the bill",
			},
			[]string{"type"},
		),
		ActionsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settingsbill_actions_dropped_total",
				Help: "Total number of actions dropped at the critical level",
			},
			[]string{"type"},
		),
		Resets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settingsbill_resets_total",
				Help: "Total number of action log resets",
			},
			[]string{"reason"},
		),
		SettingsChanges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "settingsbill_settings_changes_total",
				Help: "Total number of settings updates",
			},
		),
		GrandTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "settingsbill_grand_total",
				Help: "Current unrounded grand total of the action log",
			},
		),
		Level: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "settingsbill_level",
				Help: "Current bill level (0 normal, 1 warning, 2 critical)",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.ActionsRecorded,
		m.ActionsDropped,
		m.Resets,
		m.SettingsChanges,
		m.GrandTotal,
		m.Level,
	)
	return m
}

// Handler exposes the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

func (m *Metrics) observeAction(actionType model.ActionType, recorded bool) {
	if m == nil {
		return
	}
	label := typeLabel(actionType)
	if recorded {
		m.ActionsRecorded.WithLabelValues(label).Inc()
	} else {
		m.ActionsDropped.WithLabelValues(label).Inc()
	}
}

// typeLabel folds free-form action types into "other" to bound cardinality.
func typeLabel(actionType model.ActionType) string {
	switch actionType {
	case model.ActionCall, model.ActionSMS:
		return string(actionType)
	default:
		return "other"
	}
}

func (m *Metrics) observeReset(reason string) {
	if m == nil {
		return
	}
	m.Resets.WithLabelValues(reason).Inc()
}

func (m *Metrics) observeSettings() {
	if m == nil {
		return
	}
	m.SettingsChanges.Inc()
}

func (m *Metrics) observeState(grandTotal float64, level model.Level) {
	if m == nil {
		return
	}
	m.GrandTotal.Set(grandTotal)
	m.Level.Set(float64(level.Rank()))
}
