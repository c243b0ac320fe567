package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/esgboard/internal/clientdata"
	"github.com/verdantlabs/esgboard/internal/clients/alphavantage"
	"github.com/verdantlabs/esgboard/internal/clients/fundamentals"
	"github.com/verdantlabs/esgboard/internal/clients/newsapi"
	"github.com/verdantlabs/esgboard/internal/config"
	"github.com/verdantlabs/esgboard/internal/database"
	"github.com/verdantlabs/esgboard/internal/events"
	"github.com/verdantlabs/esgboard/internal/modules/analysis"
	"github.com/verdantlabs/esgboard/internal/modules/financial"
	"github.com/verdantlabs/esgboard/internal/modules/market"
	"github.com/verdantlabs/esgboard/internal/modules/news"
	"github.com/verdantlabs/esgboard/internal/modules/scoring"
	"github.com/verdantlabs/esgboard/internal/modules/sentiment"
	"github.com/verdantlabs/esgboard/internal/reliability"
	"github.com/verdantlabs/esgboard/internal/scheduler"
	"github.com/verdantlabs/esgboard/internal/server"
	"github.com/verdantlabs/esgboard/pkg/logger"
)

func main() {
	// Load configuration first so the log level is configurable
	cfg, err := config.Load()
	if err != nil {
		bootstrap := logger.New(logger.Config{Level: "info", Pretty: true})
		bootstrap.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting ESG analysis server")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create data directory")
	}

	// Database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Events
	bus := events.NewBus(log)
	eventManager := events.NewManager(bus, log)

	// API clients share one persistent response cache
	cacheRepo := clientdata.NewRepository(db.Conn())
	marketClient := fundamentals.NewClient(cacheRepo, log)
	avClient := alphavantage.NewClient(cfg.AlphaVantageKey, cacheRepo, log)

	var headlines news.HeadlineFetcher
	if cfg.NewsAPIKey != "" {
		headlines = newsapi.NewClient(cfg.NewsAPIKey, cacheRepo, log)
	}
	var feed news.FeedFetcher
	var overviews financial.OverviewFetcher
	if cfg.AlphaVantageKey != "" {
		feed = avClient
		overviews = avClient
	}

	// Domain services
	newsService := news.NewService(headlines, feed, log)
	financialService := financial.NewService(marketClient, overviews, log)
	analyzer := sentiment.NewAnalyzer(log)

	aggregator, err := scoring.NewAggregator(
		scoring.Weights{
			Environmental: cfg.WeightEnvironmental,
			Social:        cfg.WeightSocial,
			Governance:    cfg.WeightGovernance,
		},
		scoring.Thresholds{
			Low:        cfg.RiskThresholdLow,
			MediumLow:  cfg.RiskThresholdMediumLow,
			Medium:     cfg.RiskThresholdMedium,
			MediumHigh: cfg.RiskThresholdMediumHigh,
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid scoring configuration")
	}

	analysisRepo := analysis.NewRepository(db.Conn())
	analysisService := analysis.NewService(
		financialService, newsService, analyzer, aggregator, analysisRepo, eventManager, log,
	)
	marketRepo := market.NewRepository(db.Conn())

	// Background jobs
	sched := scheduler.New(log)
	registerJobs(sched, cfg, db, analysisService, marketClient, marketRepo, avClient, cacheRepo, eventManager, log)
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:         cfg.Port,
		Log:          log,
		DB:           db,
		Analysis:     analysisService,
		Market:       marketRepo,
		Bus:          bus,
		AlphaVantage: avClient,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	db *database.DB,
	analysisService *analysis.Service,
	marketClient fundamentals.Provider,
	marketRepo *market.Repository,
	avClient *alphavantage.Client,
	cacheRepo *clientdata.Repository,
	eventManager *events.Manager,
	log zerolog.Logger,
) {
	addJob := func(schedule string, job scheduler.Job) {
		if err := sched.AddJob(schedule, job); err != nil {
			log.Fatal().Err(err).Str("job", job.Name()).Msg("Failed to register job")
		}
	}

	addJob("@daily", clientdata.NewCleanupJob(cacheRepo, log))
	addJob("@hourly", market.NewIndicesSyncJob(marketClient, marketRepo, eventManager, log))
	addJob("0 0 * * *", alphavantage.NewResetJob(avClient))

	if len(cfg.TrackedSymbols) > 0 {
		addJob("30 2 * * *", analysis.NewRefreshJob(analysisService, cfg.TrackedSymbols, eventManager, log))
	}

	var uploader reliability.Uploader
	if cfg.BackupBucket != "" {
		s3up, err := reliability.NewS3Uploader(context.Background(), reliability.S3Config{
			Bucket:    cfg.BackupBucket,
			Endpoint:  cfg.BackupEndpoint,
			AccessKey: cfg.BackupAccessKey,
			SecretKey: cfg.BackupSecretKey,
		}, log)
		if err != nil {
			log.Error().Err(err).Msg("Off-site backups disabled")
		} else {
			uploader = s3up
		}
	}
	backupService := reliability.NewBackupService(db, filepath.Join(cfg.DataDir, "backups"), uploader, log)
	addJob("0 3 * * *", reliability.NewBackupJob(backupService))
}
