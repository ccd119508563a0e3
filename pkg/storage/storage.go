package storage

import (
	"context"
	"time"

	"github.com/ogulcanaydogan/settings-bill/pkg/model"
)

// Journal is an append-only audit trail of bill activity. It is never read
// back into a SettingsBill.
type Journal interface {
	// RecordAction appends a recorded action.
	RecordAction(ctx context.Context, action model.Action) error

	// RecordSettings appends a settings change.
	RecordSettings(ctx context.Context, settings model.Settings, at time.Time) error

	// RecordReset appends a reset of the action log.
	RecordReset(ctx context.Context, reason string, at time.Time) error

	// QueryActions returns journaled actions matching the filter, newest first.
	QueryActions(ctx context.Context, filter model.ActionFilter) ([]model.Action, error)

	// Summarize aggregates journaled action costs matching the filter.
	Summarize(ctx context.Context, filter model.ActionFilter) (*model.JournalSummary, error)

	// Close releases the underlying resources.
	Close() error
}
