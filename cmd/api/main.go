package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/analytics"
	"github.com/retailops/backoffice/internal/audit"
	"github.com/retailops/backoffice/internal/config"
	"github.com/retailops/backoffice/internal/httpx"
	"github.com/retailops/backoffice/internal/inventory"
	kafkax "github.com/retailops/backoffice/internal/kafka"
	"github.com/retailops/backoffice/internal/postgres"
	"github.com/retailops/backoffice/internal/product"
	"github.com/retailops/backoffice/internal/redisx"
	"github.com/retailops/backoffice/internal/sales"
	"github.com/retailops/backoffice/internal/user"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresConns)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer func() { _ = rdb.Close() }()

	// Kafka producer for audit events; optional, the recorder works without it.
	var producer *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafkax.NewProducer(cfg.KafkaBrokers, audit.TopicAuditRecorded, 1024, logger)
		producer.Start(ctx)
	}

	// Stores and services
	products := &product.PGStore{DB: db}
	users := &user.PGStore{DB: db}
	saleStore := &sales.PGStore{DB: db}
	ledger := &inventory.PGLedger{DB: db}

	recorder := &audit.Recorder{
		Store:   &audit.PGStore{DB: db},
		Logger:  logger,
		Service: cfg.ServiceName,
	}
	if producer != nil {
		recorder.Publisher = producer
	}

	processor := sales.NewProcessor(ledger, saleStore, products, users, recorder, logger)
	aggregator := analytics.NewAggregator(products, saleStore, users)

	// Router
	router := httpx.NewRouter()
	(&httpx.SalesHandler{Processor: processor, Timeout: cfg.RequestTimeout, Logger: logger}).Register(router)
	(&httpx.ProductsHandler{Store: products, Ledger: ledger, Recorder: recorder, Timeout: cfg.RequestTimeout, Logger: logger}).Register(router)
	(&httpx.UsersHandler{Store: users, Recorder: recorder, Timeout: cfg.RequestTimeout, Logger: logger}).Register(router)
	(&httpx.AuditHandler{Recorder: recorder, Timeout: cfg.RequestTimeout, Logger: logger}).Register(router)
	(&httpx.AnalyticsHandler{Aggregator: aggregator, Redis: rdb, CacheTTL: cfg.SummaryCacheTTL, Timeout: cfg.RequestTimeout, Logger: logger}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)

	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
}
