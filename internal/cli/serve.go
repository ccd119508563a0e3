package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/ogulcanaydogan/settings-bill/internal/config"
	"github.com/ogulcanaydogan/settings-bill/internal/cycle"
	"github.com/ogulcanaydogan/settings-bill/internal/server"
	"github.com/ogulcanaydogan/settings-bill/pkg/model"
	"github.com/ogulcanaydogan/settings-bill/pkg/storage"
	"github.com/ogulcanaydogan/settings-bill/pkg/tariff"
	"github.com/ogulcanaydogan/settings-bill/pkg/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the settings bill web app",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Listen port (default from config or PORT)")
	serveCmd.Flags().String("tariff", "", "Tariff file applied at start-up")
	serveCmd.Flags().Bool("journal", false, "Journal actions to SQLite")
}

// app is the wired web app: server, optional journal, tariff watcher and
// billing cycle scheduler.
type app struct {
	server    *server.Server
	journal   *storage.SQLite
	watcher   *tariff.Watcher
	scheduler *cycle.Scheduler
	logger    *slog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{logger: logger}

	var opts []server.Option
	if cfg.Journal.Enabled {
		journal, err := openJournal(cfg)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		a.journal = journal
		opts = append(opts, server.WithJournal(journal))
	}
	if notifiers := initNotifiers(cfg); len(notifiers) > 0 {
		opts = append(opts, server.WithMonitor(tracker.NewMonitor(notifiers, logger)))
	}
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		opts = append(opts, server.WithMetrics(server.NewMetrics(registry)))
	}

	srv, err := server.NewServer(tracker.New(), logger, opts...)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create server: %w", err)
	}
	a.server = srv

	if cfg.Tariff.File != "" {
		settings, err := tariff.Load(cfg.Tariff.File)
		if err != nil {
			a.close()
			return nil, err
		}
		srv.ApplySettings(ctx, settings)

		if cfg.Tariff.Watch {
			var debounce time.Duration
			if cfg.Tariff.Debounce != "" {
				debounce, err = time.ParseDuration(cfg.Tariff.Debounce)
				if err != nil {
					a.close()
					return nil, fmt.Errorf("invalid tariff debounce %q: %w", cfg.Tariff.Debounce, err)
				}
			}
			w, err := tariff.NewWatcher(cfg.Tariff.File, debounce, logger)
			if err != nil {
				a.close()
				return nil, err
			}
			a.watcher = w
		}
	}

	a.scheduler = cycle.NewScheduler(cfg.Cycle.ResetSchedule, func(ctx context.Context) error {
		return srv.Reset(ctx, server.ResetSchedule)
	}, logger)

	return a, nil
}

// start launches the background workers. They stop when ctx is cancelled.
func (a *app) start(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	if a.watcher != nil {
		go func() {
			err := a.watcher.Watch(ctx, func(s model.Settings) {
				a.server.ApplySettings(ctx, s)
			})
			if err != nil {
				a.logger.Error("tariff watcher", "error", err)
			}
		}()
	}
	return nil
}

func (a *app) close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.journal != nil {
		a.journal.Close()
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if file, _ := cmd.Flags().GetString("tariff"); file != "" {
		cfg.Tariff.File = file
	}
	if journal, _ := cmd.Flags().GetBool("journal"); journal {
		cfg.Journal.Enabled = true
	}

	logger := newLogger(cfg, os.Stderr)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.start(ctx); err != nil {
		return err
	}

	readTimeout, _ := time.ParseDuration(cfg.Server.ReadTimeout)
	if readTimeout == 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout, _ := time.ParseDuration(cfg.Server.WriteTimeout)
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.server.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("app started", "port", cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "Settings Bill listening on port %d\n", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("app stopped")
	return nil
}
