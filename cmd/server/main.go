package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/anomaly"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/api"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/attribution"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/config"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/pkg/logger"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/reporting"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/repository/postgres"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/tracking"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/tracklink"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/webhooks"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Ledgers: Postgres when a database is configured, in-memory otherwise.
	var clicks ledger.ClickLedger
	var convs ledger.ConversionLedger
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		if err := db.Ping(); err != nil {
			log.Fatalf("ping database: %v", err)
		}
		defer db.Close()
		clicks = postgres.NewClickRepo(db)
		convs = postgres.NewConversionRepo(db)
		logger.Info("ledgers backed by postgres")
	} else {
		clicks = ledger.NewMemoryClickLedger()
		convs = ledger.NewMemoryConversionLedger()
		logger.Warn("no DATABASE_URL set, click and conversion history is in-memory only")
	}

	// Link store: Redis shares links across instances; memory is
	// single-process.
	var store tracklink.Store
	switch cfg.Links.StoreBackend {
	case "redis":
		rs, err := tracklink.NewRedisStoreFromURL(context.Background(), cfg.Redis.URL, cfg.LinkTTL())
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		store = rs
		logger.Info("link store backed by redis")
	default:
		store = tracklink.NewMemoryStore(cfg.LinkTTL(), cfg.SweepInterval())
	}
	defer store.Close()

	// Click sink: channel keeps everything in-process; sqs fans clicks out
	// to a queue and drains it here as well.
	var sink tracking.Sink
	var consumer *tracking.Consumer
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	switch cfg.Dispatch.Backend {
	case "sqs":
		awsCfg, err := awsconfig.LoadDefaultConfig(rootCtx, awsconfig.WithRegion(cfg.Dispatch.AWSRegion))
		if err != nil {
			log.Fatalf("aws config: %v", err)
		}
		sqsClient := sqs.NewFromConfig(awsCfg)
		sink = tracking.NewPublisher(sqsClient, cfg.Dispatch.SQSQueueURL)
		consumer = tracking.NewConsumer(sqsClient, cfg.Dispatch.SQSQueueURL, clicks)
		consumer.Start(rootCtx)
	default:
		sink = tracking.NewDispatcher(clicks, cfg.Dispatch.BufferSize)
	}
	defer sink.Close()

	rules := cfg.Rules()
	factory := tracklink.NewFactory([]byte(cfg.Links.SigningSecret), cfg.Links.BaseURL, cfg.LinkTTL())
	engine := attribution.NewEngine(clicks, convs, rules,
		attribution.Model(cfg.Attribution.Model), cfg.AttributionWindow())

	redirects := tracking.NewHandler(tracking.NewResolver(store, sink))
	hooks := webhooks.NewHandler(engine, webhooks.Secrets{
		Shared: []byte(cfg.Webhooks.Secret),
		Impact: []byte(cfg.Webhooks.ImpactSecret),
		Amazon: []byte(cfg.Webhooks.AmazonSecret),
	}, time.Duration(cfg.Webhooks.TimeoutSeconds)*time.Second)

	handlers := api.NewHandlers(factory, store, rules,
		reporting.NewAggregator(clicks, convs),
		anomaly.NewDetector(clicks, convs, anomaly.FraudConfig{
			MaxConversionsPerFingerprint: cfg.Fraud.MaxConversionsPerFingerprint,
			MinSecondsToPurchase:         int64(cfg.Fraud.MinSecondsToPurchase),
			HighValueOrderThreshold:      cfg.Fraud.HighValueOrderThreshold,
			Lookback:                     24 * time.Hour,
		}),
		anomaly.NewMonitor(clicks, convs))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.SetupRoutes(handlers, redirects, hooks),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if consumer != nil {
		consumer.Stop()
	}
	rootCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err.Error())
	}
}
