package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-custom-goods/internal/config"
	kafkax "github.com/ariefcatur/go-custom-goods/internal/kafka"
	"github.com/ariefcatur/go-custom-goods/internal/logging"
	"github.com/ariefcatur/go-custom-goods/internal/notify"
	"github.com/ariefcatur/go-custom-goods/internal/pipeline"
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

	if !cfg.EventsEnabled() {
		logger.Fatal("KAFKA_BROKERS is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &notify.Service{
		Sink: notify.LogSink{Log: logger.Named("notify")},
		Log:  logger,
	}
	if cfg.CacheEnabled() {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Dedup = &redisx.Deduper{RDB: rdb, Service: "notifier"}
	} else {
		logger.Warn("REDIS_ADDR not set, redelivered events will notify twice")
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, pipeline.TopicCustomerEvents, cfg.NotifierWorkers, logger.Named("consumer"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("notifier consumer started",
			zap.String("group", cfg.NotifierGroup),
			zap.String("topic", pipeline.TopicCustomerEvents),
			zap.Int("workers", cfg.NotifierWorkers),
		)
		if err := cons.Start(ctx, svc.HandleEvent); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumer")
	cancel()
	<-done
}
