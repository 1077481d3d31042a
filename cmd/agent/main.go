package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/route-agent/internal/agent"
	"github.com/jwebster45206/route-agent/internal/config"
	"github.com/jwebster45206/route-agent/internal/logger"
	"github.com/jwebster45206/route-agent/internal/services"
	"github.com/jwebster45206/route-agent/pkg/milestone"
	"github.com/jwebster45206/route-agent/pkg/nav"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting route agent",
		"environment", cfg.Environment,
		"emulator_url", cfg.EmulatorURL,
		"cycle_interval", cfg.CycleInterval)

	storage := services.NewRedisService(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := storage.WaitForConnection(storageCtx); err != nil {
		storageCancel()
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	storageCancel()

	host := services.NewEmulatorService(cfg.EmulatorURL, cfg.RefreshTimeout, log)

	route, checkpoints := milestone.DefaultRoute()
	engine, err := milestone.NewEngine(route, storage, log)
	if err != nil {
		log.Error("Invalid milestone route", "error", err)
		os.Exit(1)
	}

	if cfg.RunID != "" {
		if err := restoreRun(engine, storage, cfg.RunID, log); err != nil {
			// Inconsistent persisted progress is fatal by design; silently
			// continuing risks corrupting the record.
			log.Error("Failed to restore run", "run_id", cfg.RunID, "error", err)
			os.Exit(1)
		}
	}

	router := milestone.NewRouter(engine, checkpoints)
	tracker := nav.NewOutcomeTracker(nav.DefaultTrackerConfig(), log)
	sync := agent.NewSynchronizer(host, cfg.RefreshTimeout, cfg.FailureThreshold, log)
	loop := agent.NewLoop(sync, engine, router, tracker, host, agent.PathFollower{}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = loop.Run(ctx, cfg.CycleInterval)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(log, err).Error("Agent loop stopped")
	}

	if err := host.Close(); err != nil {
		log.Error("Failed to close emulator connection", "error", err)
	}
	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", "error", err)
	}
	log.Info("Shutdown complete")
}

func restoreRun(engine *milestone.Engine, storage services.Storage, runID string, log *slog.Logger) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ps, err := storage.LoadProgress(ctx, id)
	if err != nil {
		return err
	}
	if ps == nil {
		return errors.New("no progress record for run")
	}
	if err := engine.Restore(ps); err != nil {
		return err
	}
	log.Info("Run restored", "run_id", runID, "savestate", ps.SaveStateRef)
	return nil
}
