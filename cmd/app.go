package main

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/clock"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/config"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/database"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/logging"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/repository"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// app holds the wired layers shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool

	schedule      *repository.ScheduleStore
	registrations *repository.RegistrationLog
	svc           *service.BookingService
}

// newApp loads configuration, opens storage and loads both stores into memory.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	// ── 1. Open storage ──────────────────────────────────────────────────
	var (
		scheduleBackend     repository.ScheduleBackend
		registrationBackend repository.RegistrationBackend
	)
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("database: %w", err)
		}
		a.pool = pool
		if err := database.Migrate(ctx, pool, logger); err != nil {
			a.Close()
			return nil, err
		}
		logger.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host))
		scheduleBackend = repository.NewPostgresScheduleBackend(pool)
		registrationBackend = repository.NewPostgresRegistrationBackend(pool)
	default:
		logger.Info("using file storage",
			zap.String("schedule", cfg.SchedulePath()),
			zap.String("registrations", cfg.RegistrationsPath()))
		scheduleBackend = repository.NewFileScheduleBackend(cfg.SchedulePath())
		registrationBackend = repository.NewFileRegistrationBackend(cfg.RegistrationsPath(), logger)
	}

	// ── 2. Load state ────────────────────────────────────────────────────
	a.schedule = repository.NewScheduleStore(scheduleBackend, logger)
	if _, err := a.schedule.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.registrations = repository.NewRegistrationLog(registrationBackend, logger)
	if _, err := a.registrations.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	// ── 3. Wire up the service ───────────────────────────────────────────
	a.svc = service.NewBookingService(a.schedule, a.registrations, clock.NewSystem(), logger)
	return a, nil
}

// Close releases the database pool, if any, and flushes the logger.
func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.logger.Sync()
}
