package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"kdrama-dashboard/internal/config"
	"kdrama-dashboard/internal/events"
	"kdrama-dashboard/internal/httpapi"
	"kdrama-dashboard/internal/quiz"
	"kdrama-dashboard/internal/quiz/redisstore"
	"kdrama-dashboard/internal/quiz/sqlite"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addrFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and quiz JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx, addrFlag)
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "", "HTTP listen address (overrides server.addr)")
	return cmd
}

func runServe(cmdCtx context.Context, ctx *commandContext, addrOverride string) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	addr := cfg.Server.Addr
	if addrOverride != "" {
		addr = addrOverride
	}

	lock, err := acquireServeLock(cfg.Server.LockPath)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	data, err := ctx.loadDataset(signalCtx)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded",
		slog.String("source", cfg.Dataset.Path),
		slog.Int("records", data.Len()),
		slog.Int("playable", len(data.AllWithEpisodes())),
	)

	engine, err := ctx.newEngine(data)
	if err != nil {
		return err
	}

	store, closeStore, err := openSessionStore(signalCtx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher quiz.EventPublisher
	if cfg.EventsEnabled() {
		eventPublisher, err := events.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logger)
		if err != nil {
			// The quiz works without events; keep serving.
			logger.Warn("event publishing disabled", slog.String("error", err.Error()))
		} else {
			defer eventPublisher.Close()
			publisher = eventPublisher
		}
	}

	service := quiz.NewService(engine, store, publisher, logger)
	go runSweeper(signalCtx, service, cfg.SweepInterval(), logger)

	server := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(service, data, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("kdrama server listening",
			slog.String("addr", addr),
			slog.String("sessions", cfg.Sessions.Backend),
		)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-signalCtx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// acquireServeLock keeps two servers from sharing one lock path, and with it
// one SQLite session file.
func acquireServeLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another kdrama server holds %s", path)
	}
	return lock, nil
}

func openSessionStore(ctx context.Context, cfg *config.Config) (quiz.SessionStore, func(), error) {
	ttl := cfg.SessionTTL()

	switch cfg.Sessions.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Sessions.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create session directory: %w", err)
		}
		store, err := sqlite.NewSQLiteStore(cfg.Sessions.SQLitePath, ttl)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite sessions: %w", err)
		}
		return store, closer(store), nil
	case config.BackendRedis:
		store, err := redisstore.Open(ctx, cfg.Sessions.RedisAddr, cfg.Sessions.RedisPassword, cfg.Sessions.RedisDB, ttl)
		if err != nil {
			return nil, nil, err
		}
		return store, closer(store), nil
	default:
		return quiz.NewMemoryStore(ttl), func() {}, nil
	}
}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}

func runSweeper(ctx context.Context, service *quiz.Service, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted, err := service.Sweep(ctx)
			if err != nil {
				logger.Warn("session sweep failed", slog.String("error", err.Error()))
				continue
			}
			if evicted > 0 {
				logger.Debug("expired sessions evicted", slog.Int("count", evicted))
			}
		}
	}
}
