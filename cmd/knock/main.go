// Command knock ingests movies and performances into canonical records.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/keaunsolNa/knock-crawling/internal/adapters/driven/config/file"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driven/metrics"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driven/notify/discord"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driven/storage/sqlite"
	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/cli"
	"github.com/keaunsolNa/knock-crawling/internal/connectors"
	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/services"
	"github.com/keaunsolNa/knock-crawling/internal/logger"
)

// version is set by the release build with -ldflags.
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the adapters and services for one command.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("config store: %w", err)
	}
	settings := services.NewSettingsService(configStore)

	cfg, err := settings.Get()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	dataDir := cfg.DataDir
	if dataDir == "" && opts.ConfigDir != "" {
		dataDir = filepath.Join(opts.ConfigDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	logger.Debug("database: %s", store.Path())

	lockDir := filepath.Dir(store.Path())
	recorder := metrics.NewRecorder()
	ingestion := services.NewIngestionOrchestrator(
		services.IngestionDeps{
			Records:       store.RecordStore(),
			Categories:    store.CategoryStore(),
			Authoritative: store.AuthoritativeStore(),
			Collectors:    connectors.NewRegistry(settings.Get, nil),
			Notifier:      discord.New(cfg.Notify.DiscordWebhook, cfg.Notify.Timeout),
			Metrics:       recorder,
		},
		ingestOptions(cfg, lockDir),
	)

	return &cli.Services{
		Ingestion: ingestion,
		Records:   services.NewRecordService(store.RecordStore(), store.AuthoritativeStore()),
		Settings:  settings,
		Scheduler: services.NewScheduler(cfg.Scheduler, store.SchedulerStore(), ingestion),
		Metrics:   recorder.Handler(),
		WatchConfig: func(ctx context.Context, onChange func()) error {
			return configStore.Watch(ctx, file.DefaultDebounce, onChange)
		},
		Reload: func() error {
			next, err := settings.Get()
			if err != nil {
				return err
			}
			ingestion.SetOptions(ingestOptions(next, lockDir))
			logger.Info("configuration reloaded")
			return nil
		},
		Close: store.Close,
	}, nil
}

func ingestOptions(cfg *domain.IngestConfig, lockDir string) services.IngestOptions {
	return services.IngestOptions{
		Crawl:    cfg.Crawl,
		Identity: cfg.Identity,
		LockPath: filepath.Join(lockDir, "knock.lock"),
	}
}
