package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/vietddude/stylelog"

	"github.com/campusdining/dininghours/internal/core/config"
	"github.com/campusdining/dininghours/internal/core/domain"
	"github.com/campusdining/dininghours/internal/infra/browser"
	redisclient "github.com/campusdining/dininghours/internal/infra/redis"
	"github.com/campusdining/dininghours/internal/infra/storage"
	"github.com/campusdining/dininghours/internal/infra/storage/memory"
	"github.com/campusdining/dininghours/internal/infra/storage/postgres"
	"github.com/campusdining/dininghours/internal/ingest/fetch"
	"github.com/campusdining/dininghours/internal/ingest/persist"
	"github.com/campusdining/dininghours/internal/ingest/pipeline"
	"github.com/campusdining/dininghours/internal/ops"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	date := flag.String("date", "", "Target date (YYYY-MM-DD); defaults to today")
	offset := flag.Int("offset", 0, "Day offset applied when -date is not set")
	isDebug := flag.Bool("debug", false, "Enable debug logging")
	headful := flag.Bool("headful", false, "Run the browser with a visible window")
	flag.Parse()

	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	// Load Configuration first (before setting up logger)
	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			stylelog.InitDefault()
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	slogLevel := slog.LevelInfo
	if *isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	// Initialize stylelog with tint.Options for level control
	stylelog.InitDefault(
		&tint.Options{
			Level:      slogLevel,
			TimeFormat: time.RFC3339,
		})

	targetDate := *date
	if targetDate == "" {
		targetDate = domain.DateForOffset(*offset)
	}

	ctx := context.Background()

	// Storage: PostgreSQL when configured, memory otherwise (dry runs).
	var (
		locations storage.LocationRepository
		hours     storage.HoursRepository
	)
	checks := map[string]ops.Check{}

	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			slog.Error("Failed to init db", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate("migrations"); err != nil {
			slog.Error("Failed to migrate db", "error", err)
			os.Exit(1)
		}

		locations = postgres.NewLocationRepo(db)
		hours = postgres.NewHoursRepo(db)
		checks["database"] = func(ctx context.Context) error { return db.PingContext(ctx) }
		slog.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		locations = memory.NewLocationRepo(store)
		hours = memory.NewHoursRepo(store)
		slog.Warn("No database URL configured, results will not be persisted")
	}

	// Redis side channels are optional.
	var (
		reporter persist.FailureReporter
		locker   pipeline.Locker
	)
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		reporter = redisclient.NewFailedLocationQueue(rc)
		locker = rc
	}

	// Ops server is optional; useful when a scheduler runs this repeatedly.
	if cfg.Server.Port > 0 {
		server := ops.NewServer(cfg.Server.Port, checks)
		go func() {
			if err := server.Start(); err != nil {
				slog.Error("Ops server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	session := browser.NewChromeSession(browser.Options{
		UserAgent: cfg.Upstream.UserAgent,
		Locale:    cfg.Upstream.Locale,
		Headless:  !*headful,
	})
	defer session.Close()

	ingestor := pipeline.New(
		fetch.New(session, cfg.Upstream),
		persist.NewWriter(locations, hours, reporter),
		locker,
	)

	result := ingestor.Ingest(ctx, targetDate)
	if !result.OK {
		slog.Error("Ingest failed",
			"date", targetDate, "kind", result.Err.Kind, "error", result.Err.Message)
		os.Exit(1)
	}

	valid, failed := 0, 0
	for _, rec := range result.Data {
		if rec.Valid() {
			valid++
		} else {
			failed++
		}
	}
	slog.Info("Ingest succeeded", "date", targetDate, "locations", valid, "failed", failed)
}
