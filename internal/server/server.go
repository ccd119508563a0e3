package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ogulcanaydogan/settings-bill/pkg/alerts"
	"github.com/ogulcanaydogan/settings-bill/pkg/model"
	"github.com/ogulcanaydogan/settings-bill/pkg/storage"
	"github.com/ogulcanaydogan/settings-bill/pkg/tracker"
)

// Reset reasons recorded in the journal and metrics.
const (
	ResetManual   = "manual"
	ResetSchedule = "schedule"
)

// Server serves the settings bill web app and its JSON API.
//
// A SettingsBill does no locking of its own; every call into it goes
// through mu, as do level transitions. Side effects (journal, alert
// delivery) run after mu is released.
type Server struct {
	mu   sync.Mutex
	bill *tracker.SettingsBill

	journal storage.Journal
	monitor *tracker.Monitor
	metrics *Metrics
	views   *views
	mux     *http.ServeMux
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithJournal appends every change to j.
func WithJournal(j storage.Journal) Option {
	return func(s *Server) { s.journal = j }
}

// WithMonitor dispatches threshold alerts through m.
func WithMonitor(m *tracker.Monitor) Option {
	return func(s *Server) { s.monitor = m }
}

// WithMetrics records Prometheus metrics and serves them at /metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer creates a server around bill.
func NewServer(bill *tracker.SettingsBill, logger *slog.Logger, opts ...Option) (*Server, error) {
	v, err := loadViews()
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}

	s := &Server{
		bill:   bill,
		views:  v,
		mux:    http.NewServeMux(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()

	s.mu.Lock()
	snap := s.bill.Snap()
	s.metrics.observeState(snap.GrandTotal, snap.Level)
	s.mu.Unlock()

	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /settings", s.handleSettings)
	s.mux.HandleFunc("POST /action", s.handleAction)
	s.mux.HandleFunc("GET /actions", s.handleActions)
	s.mux.HandleFunc("GET /actions/{actionType}", s.handleActionsFor)
	s.mux.HandleFunc("POST /resetButton", s.handleReset)
	s.mux.Handle("GET /static/", staticHandler())

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/summary", s.handleSummary)
	s.mux.HandleFunc("GET /api/v1/actions", s.handleAPIActions)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ApplySettings replaces the bill settings.
func (s *Server) ApplySettings(ctx context.Context, settings model.Settings) {
	s.mu.Lock()
	s.bill.SetSettings(settings)
	alert := s.settle()
	s.mu.Unlock()

	s.logger.Info("settings updated",
		"call_cost", settings.CallCost,
		"sms_cost", settings.SmsCost,
		"warning_level", settings.WarningLevel,
		"critical_level", settings.CriticalLevel,
	)
	s.metrics.observeSettings()
	if s.journal != nil {
		if err := s.journal.RecordSettings(ctx, settings, time.Now()); err != nil {
			s.logger.Error("journal settings", "error", err)
		}
	}
	s.notify(ctx, alert)
}

// Record adds one action of the given type. It returns false when the bill
// is at the critical level and the action was dropped.
func (s *Server) Record(ctx context.Context, actionType model.ActionType) (model.Action, bool) {
	s.mu.Lock()
	action, ok := s.bill.RecordAction(actionType)
	var alert *alerts.Alert
	if ok {
		alert = s.settle()
	}
	s.mu.Unlock()

	s.metrics.observeAction(actionType, ok)
	if !ok {
		s.logger.Info("action dropped at critical level", "type", actionType)
		return action, false
	}

	s.logger.Debug("action recorded", "id", action.ID, "type", action.Type, "cost", action.Cost)
	if s.journal != nil {
		if err := s.journal.RecordAction(ctx, action); err != nil {
			s.logger.Error("journal action", "error", err)
		}
	}
	s.notify(ctx, alert)
	return action, true
}

// Reset clears the action log. Settings are kept.
func (s *Server) Reset(ctx context.Context, reason string) error {
	s.mu.Lock()
	s.bill.Reset()
	alert := s.settle()
	s.mu.Unlock()

	s.logger.Info("action log reset", "reason", reason)
	s.metrics.observeReset(reason)
	s.notify(ctx, alert)

	if s.journal != nil {
		if err := s.journal.RecordReset(ctx, reason, time.Now()); err != nil {
			return fmt.Errorf("journal reset: %w", err)
		}
	}
	return nil
}

// settle publishes the bill state to the gauges and the monitor. It must be
// called with s.mu held so that transitions are seen in order.
func (s *Server) settle() *alerts.Alert {
	snap := s.bill.Snap()
	s.metrics.observeState(snap.GrandTotal, snap.Level)
	if s.monitor == nil {
		return nil
	}
	return s.monitor.Transition(snap)
}

func (s *Server) notify(ctx context.Context, alert *alerts.Alert) {
	if alert != nil {
		s.monitor.Notify(ctx, *alert)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	data := indexView{
		Settings: s.bill.Settings(),
		Totals:   s.bill.Totals(),
		Level:    s.bill.Level(),
	}
	s.mu.Unlock()

	s.renderPage(w, "index.html", data)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	s.ApplySettings(r.Context(), model.Settings{
		CallCost:      model.ParseAmount(r.PostFormValue("callCost")),
		SmsCost:       model.ParseAmount(r.PostFormValue("smsCost")),
		WarningLevel:  model.ParseAmount(r.PostFormValue("warningLevel")),
		CriticalLevel: model.ParseAmount(r.PostFormValue("criticalLevel")),
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	s.Record(r.Context(), model.ActionType(r.PostFormValue("actionType")))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleActions(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	actions := s.bill.Actions()
	s.mu.Unlock()

	s.renderPage(w, "actions.html", actionsView{Title: "All actions", Actions: actions})
}

func (s *Server) handleActionsFor(w http.ResponseWriter, r *http.Request) {
	actionType := model.ActionType(r.PathValue("actionType"))

	s.mu.Lock()
	actions := s.bill.ActionsFor(actionType)
	s.mu.Unlock()

	s.renderPage(w, "actions.html", actionsView{
		Title:   fmt.Sprintf("Actions: %s", actionType),
		Actions: actions,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.Reset(r.Context(), ResetManual); err != nil {
		s.logger.Error("reset", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) renderPage(w http.ResponseWriter, page string, data any) {
	if err := s.views.render(w, page, data); err != nil {
		s.logger.Error("render page", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type summaryResponse struct {
	Settings model.Settings `json:"settings"`
	Totals   model.Totals   `json:"totals"`
	Level    model.Level    `json:"level"`
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := summaryResponse{
		Settings: s.bill.Settings(),
		Totals:   s.bill.Totals(),
		Level:    s.bill.Level(),
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleAPIActions(w http.ResponseWriter, r *http.Request) {
	actionType := model.ActionType(r.URL.Query().Get("type"))

	s.mu.Lock()
	var actions []model.Action
	if actionType == "" {
		actions = s.bill.Actions()
	} else {
		actions = s.bill.ActionsFor(actionType)
	}
	s.mu.Unlock()

	if actions == nil {
		actions = []model.Action{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(actions)
}
