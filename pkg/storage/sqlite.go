package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/settings-bill/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Journal interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) RecordAction(ctx context.Context, action model.Action) error {
	if action.ID == "" {
		action.ID = uuid.New().String()
	}
	if action.Timestamp.IsZero() {
		action.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (id, action_type, cost, timestamp) VALUES (?, ?, ?, ?)`,
		action.ID, string(action.Type), nullFloat(action.Cost), action.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

func (s *SQLite) RecordSettings(ctx context.Context, settings model.Settings, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings_history (id, call_cost, sms_cost, warning_level, critical_level, changed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(),
		nullFloat(settings.CallCost), nullFloat(settings.SmsCost),
		nullFloat(settings.WarningLevel), nullFloat(settings.CriticalLevel),
		at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert settings: %w", err)
	}
	return nil
}

func (s *SQLite) RecordReset(ctx context.Context, reason string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resets (id, reason, reset_at) VALUES (?, ?, ?)`,
		uuid.New().String(), reason, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert reset: %w", err)
	}
	return nil
}

// LatestSettings returns the most recently journaled settings, or nil if
// none were recorded.
func (s *SQLite) LatestSettings(ctx context.Context) (*model.Settings, error) {
	var callCost, smsCost, warning, critical sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT call_cost, sms_cost, warning_level, critical_level
		 FROM settings_history ORDER BY changed_at DESC, rowid DESC LIMIT 1`,
	).Scan(&callCost, &smsCost, &warning, &critical)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest settings: %w", err)
	}
	return &model.Settings{
		CallCost:      floatOrNaN(callCost),
		SmsCost:       floatOrNaN(smsCost),
		WarningLevel:  floatOrNaN(warning),
		CriticalLevel: floatOrNaN(critical),
	}, nil
}

// CountResets returns the number of journaled resets in the filter window.
func (s *SQLite) CountResets(ctx context.Context, filter model.ActionFilter) (int64, error) {
	query := "SELECT COUNT(*) FROM resets"
	var conditions []string
	var args []any
	if !filter.StartTime.IsZero() {
		conditions = append(conditions, "reset_at >= ?")
		args = append(args, filter.StartTime.UTC())
	}
	if !filter.EndTime.IsZero() {
		conditions = append(conditions, "reset_at < ?")
		args = append(args, filter.EndTime.UTC())
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count resets: %w", err)
	}
	return n, nil
}

func (s *SQLite) QueryActions(ctx context.Context, filter model.ActionFilter) ([]model.Action, error) {
	query := "SELECT id, action_type, cost, timestamp FROM actions"
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY timestamp DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var actions []model.Action
	for rows.Next() {
		var a model.Action
		var actionType string
		var cost sql.NullFloat64
		if err := rows.Scan(&a.ID, &actionType, &cost, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scan action row: %w", err)
		}
		a.Type = model.ActionType(actionType)
		a.Cost = floatOrNaN(cost)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Summarize aggregates action costs. SUM skips NULL (NaN) costs, so a
// summary never turns NaN the way a live bill total does.
func (s *SQLite) Summarize(ctx context.Context, filter model.ActionFilter) (*model.JournalSummary, error) {
	query := "SELECT action_type, COALESCE(SUM(cost), 0), COUNT(*) FROM actions"
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " GROUP BY action_type"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summarize actions: %w", err)
	}
	defer rows.Close()

	summary := &model.JournalSummary{
		ByType:      make(map[model.ActionType]float64),
		CountByType: make(map[model.ActionType]int64),
	}
	for rows.Next() {
		var actionType string
		var total float64
		var count int64
		if err := rows.Scan(&actionType, &total, &count); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		summary.ByType[model.ActionType(actionType)] = total
		summary.CountByType[model.ActionType(actionType)] = count
		summary.TotalCost += total
		summary.ActionCount += count
	}
	return summary, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// buildWhereClause constructs a SQL WHERE clause from an ActionFilter.
func buildWhereClause(filter model.ActionFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Type != "" {
		conditions = append(conditions, "action_type = ?")
		args = append(args, string(filter.Type))
	}
	if !filter.StartTime.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.StartTime.UTC())
	}
	if !filter.EndTime.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, filter.EndTime.UTC())
	}

	return strings.Join(conditions, " AND "), args
}

// nullFloat maps NaN and infinities to NULL; SQLite has no NaN.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
