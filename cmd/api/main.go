package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/auth"
	"github.com/ariefcatur/go-custom-goods/internal/catalog"
	"github.com/ariefcatur/go-custom-goods/internal/config"
	"github.com/ariefcatur/go-custom-goods/internal/httpx"
	kafkax "github.com/ariefcatur/go-custom-goods/internal/kafka"
	"github.com/ariefcatur/go-custom-goods/internal/logging"
	"github.com/ariefcatur/go-custom-goods/internal/pipeline"
	"github.com/ariefcatur/go-custom-goods/internal/postgres"
	"github.com/ariefcatur/go-custom-goods/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.CheckJWTSecret(); err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	pipelineSvc := &pipeline.Service{
		Store:    &pipeline.Repo{DB: db},
		CacheTTL: cfg.CacheTTL,
		Producer: cfg.ServiceName,
		Log:      logger.Named("pipeline"),
	}
	catalogSvc := &catalog.Service{
		Store:    &catalog.Repo{DB: db},
		CacheTTL: cfg.CacheTTL,
		Log:      logger.Named("catalog"),
	}
	authSvc := &auth.Service{
		Store:  &auth.Repo{DB: db},
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.TokenTTL,
		Issuer: cfg.ServiceName,
	}

	// Redis
	if cfg.CacheEnabled() {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		cache := &redisx.Cache{RDB: rdb}
		pipelineSvc.Cache = cache
		catalogSvc.Cache = cache
		authSvc.Revoked = &redisx.Denylist{RDB: rdb}
	} else {
		logger.Warn("REDIS_ADDR not set, caching and logout revocation disabled")
	}

	// Kafka producer
	var prod *kafkax.Producer
	if cfg.EventsEnabled() {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, pipeline.TopicCustomerEvents, 1024, logger.Named("producer"))
		prod.Start(ctx)
		pipelineSvc.Events = prod
	}

	httpLog := logger.Named("http")
	router := httpx.NewRouter(httpLog)
	admin := httpx.RequireAdmin(authSvc, httpLog)
	(&httpx.AdminHandler{Auth: authSvc, Log: httpLog}).Register(router, admin)
	(&httpx.CustomersHandler{Pipeline: pipelineSvc, Log: httpLog}).Register(router, admin)
	(&httpx.ListingsHandler{Catalog: catalogSvc, Log: httpLog}).Register(router, admin)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if prod != nil {
		prod.Close()      // flush inbox, then close writer
		prod.WaitClosed() // drain before ctx is cancelled
	}
}
