package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"cloudbase/internal/notifier"
	"cloudbase/pkg/config"
	"cloudbase/pkg/kafka"
	kafka_config "cloudbase/pkg/kafka/config"
	kafkamw "cloudbase/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	kafkaCfg := kafka_config.Load()

	worker := notifier.NewWorker(notifier.NewLogSender(cfg.Log), cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.TopicNotifications,
		kafkaCfg.ConsumerGroupID,
		kafkaCfg.TopicNotifications+".dlq",
		worker.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafkamw.LoggingConsumerMiddleware())
		consumer.Use(kafkamw.MetricsConsumerMiddleware())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	consumerErrors := make(chan error, 1)
	go func() {
		cfg.Log.Info("Starting notification consumer",
			"topic", kafkaCfg.TopicNotifications,
			"group_id", kafkaCfg.ConsumerGroupID,
		)
		consumerErrors <- consumer.Start(ctx)
	}()

	select {
	case err := <-consumerErrors:
		if err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Fatal("Consumer failed", "error", err)
		}

	case sig := <-shutdown:
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close consumer", "error", err)
		}
	}

	cfg.Log.Info("Notification consumer stopped")
}
