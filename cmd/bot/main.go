package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/matchbot/internal/app"
	"github.com/oggyb/matchbot/internal/backup"
	"github.com/oggyb/matchbot/internal/cache"
	"github.com/oggyb/matchbot/internal/config"
	"github.com/oggyb/matchbot/internal/db"
	"github.com/oggyb/matchbot/internal/dialog"
	"github.com/oggyb/matchbot/internal/logger"
	"github.com/oggyb/matchbot/internal/server"
	"github.com/oggyb/matchbot/internal/transport/telegram"
)

const (
	queueSize       = 256
	shutdownTimeout = 30 * time.Second
	demoBaseID      = 9_000_000_000
	demoProfiles    = 20
)

func main() {
	if err := run(); err != nil {
		logger.Error("bot stopped with error", "err", err)
		os.Exit(1)
	}
	logger.Info("bot stopped")
}

func run() error {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return err
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Warn("db close failed", "err", err)
		}
	}()

	// Init Redis; an empty REDIS_ADDR runs without a cache
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return err
	}
	defer redisCache.Close()

	if cfg.App.ENV == "development" {
		if err := db.SeedDemoData(database, demoBaseID, demoProfiles); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	appCtx := app.New(database, redisCache, log, cfg)

	client, err := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.PollTimeout, log)
	if err != nil {
		log.Error("failed to init telegram client", "err", err)
		return err
	}

	services := dialog.NewServices(appCtx, client)
	machine := dialog.NewMachine(appCtx, client, services)
	dispatcher := dialog.NewDispatcher(machine, cfg.Telegram.Workers, queueSize, log)

	health := server.NewHealthRegistrar()
	services.Admin.OnMaintenance(health.SetMaintenance)
	if settings, err := appCtx.Store.Moderation.GetMaintenanceStatus(context.Background()); err == nil {
		health.SetMaintenance(settings.MaintenanceMode)
	}

	snapshots, err := newBackupService(cfg, appCtx)
	if err != nil {
		log.Error("failed to init backups", "err", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(func() error { return client.Start(gctx, dispatcher) })
	g.Go(func() error { return snapshots.Run(gctx, cfg.Backup.Interval) })
	g.Go(func() error { return server.StartGRPCServer(gctx, cfg, log, health) })

	log.Info("bot started", "workers", cfg.Telegram.Workers, "dry_run", client.DryRun())
	runErr := g.Wait()

	// every goroutine is done here, so the snapshot sees all handled events
	health.Shutdown()
	finalCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if _, err := snapshots.SnapshotNow(finalCtx); err != nil {
		log.Error("final snapshot failed", "err", err)
	}

	return runErr
}

func newBackupService(cfg *config.Config, appCtx *app.AppContext) (*backup.Service, error) {
	var uploader backup.Uploader
	if cfg.S3Enabled() {
		s3, err := backup.NewS3Uploader(cfg)
		if err != nil {
			return nil, err
		}
		uploader = s3
	}
	return backup.NewService(appCtx.DB, cfg.Backup.Dir, uploader, appCtx.Logger), nil
}
