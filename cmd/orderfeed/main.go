package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"shopcart/internal/application/orderfeed"
	"shopcart/internal/config"
	"shopcart/internal/domain/repository"
	"shopcart/internal/infrastructure/encoding/csvexport"
	kafkainfra "shopcart/internal/infrastructure/messaging/kafka"
	"shopcart/internal/infrastructure/persistence/file"
	"shopcart/pkg/logger"
)

// orderfeed follows the order topic and prints every new order as a ledger
// CSV row on stdout, optionally keeping a replica ledger snapshot.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	appLog, err := logger.NewZapLoggerWithOptions(logger.Options{Env: cfg.App.Env, File: cfg.App.LogFile, Output: "stderr"})
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer appLog.Sync()

	if !cfg.Kafka.Enabled() {
		appLog.Fatal("KAFKA_BOOTSTRAP_SERVERS and KAFKA_ORDER_TOPIC are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var replica repository.LedgerRepository
	if cfg.Storage.FeedLedgerPath != "" {
		repo, err := file.NewLedgerRepository(cfg.Storage.FeedLedgerPath)
		if err != nil {
			appLog.Fatal("Failed to open replica ledger", logger.Error(err))
		}
		replica = repo
	}

	svc := orderfeed.NewService(replica, csvexport.NewFormatter(nil), os.Stdout, appLog)
	if n, err := svc.Prime(ctx); err != nil {
		appLog.Warn("Replica ledger could not be read, starting empty", logger.Error(err))
	} else if n > 0 {
		appLog.Info("Replica ledger loaded", logger.Int("orders", n))
	}

	consumer := kafkainfra.NewOrderFeedConsumer(cfg.Kafka, svc, appLog)
	defer consumer.Close()

	appLog.Info("Following order events",
		logger.Any("brokers", cfg.Kafka.Brokers),
		logger.String("topic", cfg.Kafka.OrderTopic),
		logger.String("group", cfg.Kafka.ConsumerGroup),
	)
	if err := consumer.Start(ctx); err != nil {
		appLog.Error("Order feed stopped", logger.Error(err))
		os.Exit(1)
	}
}
