package storage_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ogulcanaydogan/settings-bill/pkg/model"
	"github.com/ogulcanaydogan/settings-bill/pkg/storage"
)

func newTestDB(t *testing.T) *storage.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite_RecordAction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	err := db.RecordAction(ctx, model.Action{ID: "a-1", Type: model.ActionCall, Cost: 3.35, Timestamp: now})
	require.NoError(t, err)

	actions, err := db.QueryActions(ctx, model.ActionFilter{})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "a-1", actions[0].ID)
	assert.Equal(t, model.ActionCall, actions[0].Type)
	assert.Equal(t, 3.35, actions[0].Cost)
	assert.True(t, now.Equal(actions[0].Timestamp))
}

func TestSQLite_RecordAction_GeneratesID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RecordAction(ctx, model.Action{Type: model.ActionSMS, Cost: 0.65}))

	actions, err := db.QueryActions(ctx, model.ActionFilter{})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.NotEmpty(t, actions[0].ID)
	assert.False(t, actions[0].Timestamp.IsZero())
}

func TestSQLite_RecordAction_NaNCost(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RecordAction(ctx, model.Action{Type: model.ActionCall, Cost: math.NaN()}))
	require.NoError(t, db.RecordAction(ctx, model.Action{Type: model.ActionCall, Cost: 2}))

	actions, err := db.QueryActions(ctx, model.ActionFilter{})
	require.NoError(t, err)
	require.Len(t, actions, 2)

	var nanCount int
	for _, a := range actions {
		if math.IsNaN(a.Cost) {
			nanCount++
		}
	}
	assert.Equal(t, 1, nanCount)

	summary, err := db.Summarize(ctx, model.ActionFilter{})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, summary.TotalCost, 0.001)
	assert.Equal(t, int64(2), summary.ActionCount)
}

func TestSQLite_QueryActions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Minute)
	actions := []model.Action{
		{Type: model.ActionCall, Cost: 3.35, Timestamp: base},
		{Type: model.ActionSMS, Cost: 2.35, Timestamp: base.Add(time.Second)},
		{Type: model.ActionCall, Cost: 3.35, Timestamp: base.Add(2 * time.Second)},
		{Type: "fax", Cost: 0, Timestamp: base.Add(3 * time.Second)},
	}
	for _, a := range actions {
		require.NoError(t, db.RecordAction(ctx, a))
	}

	all, err := db.QueryActions(ctx, model.ActionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, model.ActionType("fax"), all[0].Type, "newest first")

	calls, err := db.QueryActions(ctx, model.ActionFilter{Type: model.ActionCall})
	require.NoError(t, err)
	assert.Len(t, calls, 2)

	limited, err := db.QueryActions(ctx, model.ActionFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := db.QueryActions(ctx, model.ActionFilter{Type: "voicemail"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite_QueryActions_TimeFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, db.RecordAction(ctx, model.Action{Type: model.ActionCall, Cost: 1, Timestamp: now}))

	results, err := db.QueryActions(ctx, model.ActionFilter{
		StartTime: now.Add(-1 * time.Hour),
		EndTime:   now.Add(1 * time.Hour),
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = db.QueryActions(ctx, model.ActionFilter{
		StartTime: now.Add(1 * time.Hour),
		EndTime:   now.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.Len(t, results, 0)
}

func TestSQLite_Summarize(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, a := range []model.Action{
		{Type: model.ActionCall, Cost: 3.35},
		{Type: model.ActionCall, Cost: 3.35},
		{Type: model.ActionSMS, Cost: 2.35},
		{Type: "fax", Cost: 0},
	} {
		require.NoError(t, db.RecordAction(ctx, a))
	}

	summary, err := db.Summarize(ctx, model.ActionFilter{})
	require.NoError(t, err)
	assert.InDelta(t, 9.05, summary.TotalCost, 0.001)
	assert.Equal(t, int64(4), summary.ActionCount)
	assert.InDelta(t, 6.70, summary.ByType[model.ActionCall], 0.001)
	assert.InDelta(t, 2.35, summary.ByType[model.ActionSMS], 0.001)
	assert.Equal(t, int64(2), summary.CountByType[model.ActionCall])
	assert.Equal(t, int64(1), summary.CountByType["fax"])

	smsOnly, err := db.Summarize(ctx, model.ActionFilter{Type: model.ActionSMS})
	require.NoError(t, err)
	assert.Equal(t, int64(1), smsOnly.ActionCount)
}

func TestSQLite_Summarize_Empty(t *testing.T) {
	db := newTestDB(t)

	summary, err := db.Summarize(context.Background(), model.ActionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.TotalCost)
	assert.Equal(t, int64(0), summary.ActionCount)
}

func TestSQLite_Settings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	latest, err := db.LatestSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	now := time.Now().UTC()
	require.NoError(t, db.RecordSettings(ctx, model.UnsetSettings(), now.Add(-time.Minute)))
	want := model.Settings{CallCost: 3.35, SmsCost: 2.35, WarningLevel: 30, CriticalLevel: math.NaN()}
	require.NoError(t, db.RecordSettings(ctx, want, now))

	latest, err = db.LatestSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 3.35, latest.CallCost)
	assert.Equal(t, 2.35, latest.SmsCost)
	assert.Equal(t, 30.0, latest.WarningLevel)
	assert.True(t, math.IsNaN(latest.CriticalLevel))
}

func TestSQLite_Resets(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, db.RecordReset(ctx, "manual", now))
	require.NoError(t, db.RecordReset(ctx, "schedule", now.Add(-48*time.Hour)))

	all, err := db.CountResets(ctx, model.ActionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all)

	recent, err := db.CountResets(ctx, model.ActionFilter{StartTime: now.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), recent)
}

func TestSQLite_MigrationIdempotency(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	// Open and close twice to verify migration idempotency
	db1, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	db1.Close()

	db2, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	db2.Close()
}
