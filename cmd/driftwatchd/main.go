// Command driftwatchd runs the drift monitoring daemon: a versioned cache
// engine in front of a record store, an invalidation coordinator that logs
// every attempt, and a REST API for poking at all three.
package main

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

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"

	"github.com/goforj/driftwatch"
	"github.com/goforj/driftwatch/analyzer"
	"github.com/goforj/driftwatch/audit"
	"github.com/goforj/driftwatch/coordinator"
	"github.com/goforj/driftwatch/httpapi"
	"github.com/goforj/driftwatch/record"
)

type config struct {
	Addr         string  `env:"DRIFTWATCH_ADDR" envDefault:":8080"`
	CacheDriver  string  `env:"DRIFTWATCH_CACHE_DRIVER" envDefault:"memory"`
	RedisAddr    string  `env:"DRIFTWATCH_REDIS_ADDR" envDefault:"localhost:6379"`
	RecordsPath  string  `env:"DRIFTWATCH_RECORDS_DB" envDefault:""`
	AuditPath    string  `env:"DRIFTWATCH_AUDIT_DB" envDefault:""`
	FailureRate  float64 `env:"DRIFTWATCH_FAILURE_RATE" envDefault:"0.2"`
	DelayMs      int     `env:"DRIFTWATCH_DELAY_MS" envDefault:"100"`
	TTLSeconds   int     `env:"DRIFTWATCH_TTL_SECONDS" envDefault:"300"`
	LogLevel     string  `env:"DRIFTWATCH_LOG_LEVEL" envDefault:"info"`
	ShutdownWait int     `env:"DRIFTWATCH_SHUTDOWN_WAIT_SECONDS" envDefault:"10"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "driftwatchd:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newEntryStore(cfg)
	if err != nil {
		return err
	}

	engine := driftwatch.NewEngine(store,
		driftwatch.WithDefaultTTL(time.Duration(cfg.TTLSeconds)*time.Second),
		driftwatch.WithNetworkDelay(time.Duration(cfg.DelayMs)*time.Millisecond),
		driftwatch.WithFailureRate(cfg.FailureRate),
		driftwatch.WithObserver(driftwatch.NewLogObserver(logger)),
	)

	records, closeRecords, err := newRecordStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRecords()

	log, closeAudit, err := newAuditLog(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAudit()

	coord := coordinator.New(records, engine, log, logger)
	analyze := analyzer.New(records, engine, logger)

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.NewRouter(httpapi.RouterDeps{
			Engine:      engine,
			Coordinator: coord,
			Analyzer:    analyze,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "driver", cfg.CacheDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownWait)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newEntryStore(cfg config) (driftwatch.EntryStore, error) {
	switch driftwatch.Driver(cfg.CacheDriver) {
	case driftwatch.DriverMemory:
		return driftwatch.NewMemoryStore(), nil
	case driftwatch.DriverNull:
		return driftwatch.NewNullStore(), nil
	case driftwatch.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return driftwatch.NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.CacheDriver)
	}
}

func newRecordStore(ctx context.Context, cfg config) (record.Store, func(), error) {
	if cfg.RecordsPath == "" {
		return record.NewMemoryStore(), func() {}, nil
	}
	s, err := record.OpenSQLite(ctx, cfg.RecordsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open records db: %w", err)
	}
	return s, func() { s.Close() }, nil
}

func newAuditLog(ctx context.Context, cfg config) (audit.Log, func(), error) {
	if cfg.AuditPath == "" {
		return audit.NewMemoryLog(), func() {}, nil
	}
	l, err := audit.OpenSQLite(ctx, cfg.AuditPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit db: %w", err)
	}
	return l, func() { l.Close() }, nil
}
