package tariff_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/settings-bill/pkg/model"
	"github.com/ogulcanaydogan/settings-bill/pkg/tariff"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeTariff(t, dir, "call_cost: 1\n")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := tariff.NewWatcher(path, 20*time.Millisecond, logger)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	applied := make(chan model.Settings, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, func(s model.Settings) { applied <- s }) }()

	// Give the watch loop a moment to start before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("call_cost: 4.5\ncritical_level: 20\n"), 0o644))

	select {
	case s := <-applied:
		assert.Equal(t, 4.5, s.CallCost)
		assert.Equal(t, 20.0, s.CriticalLevel)
	case <-time.After(2 * time.Second):
		t.Fatal("tariff was not reloaded")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeTariff(t, dir, "call_cost: 1\n")

	w, err := tariff.NewWatcher(path, 10*time.Millisecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	applied := make(chan model.Settings, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx, func(s model.Settings) { applied <- s })

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("call_cost: 9\n"), 0o644))

	select {
	case <-applied:
		t.Fatal("unexpected reload for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := tariff.NewWatcher("/nonexistent/dir/tariff.yaml", 0, nil)
	assert.Error(t, err)
}
