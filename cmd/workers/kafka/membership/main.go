package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	kafkalib "github.com/s21platform/kafka-lib"
	logger_lib "github.com/s21platform/logger-lib"
	"github.com/s21platform/metrics-lib/pkg"

	"github.com/s21platform/group-chat-service/internal/config"
	"github.com/s21platform/group-chat-service/internal/databus/membership"
	"github.com/s21platform/group-chat-service/internal/repository/postgres"
)

const membershipConsumerGroupID = "group-chat-membership-updater"

// subscribeFunc attaches the membership handler to a consumer; it runs only
// after the consumer was built.
type subscribeFunc func(ctx context.Context)

func main() {
	cfg := config.MustLoad()
	logger := logger_lib.New(cfg.Logger.Host, cfg.Logger.Port, cfg.Service.Name, cfg.Platform.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbRepo := postgres.New(cfg)
	defer dbRepo.Close()

	if err := dbRepo.Ping(ctx); err != nil {
		logger.Error(fmt.Sprintf("postgres is unavailable: %v", err))
		return
	}

	metrics, err := pkg.NewMetrics(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Service.Name, cfg.Platform.Env)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to connect graphite: %v", err))
		return
	}

	ctx = context.WithValue(ctx, config.KeyMetrics, metrics)
	ctx = context.WithValue(ctx, config.KeyLogger, logger)

	handler := membership.New(dbRepo)
	start := func() (subscribeFunc, error) {
		consumer, err := kafkalib.NewConsumer(kafkalib.DefaultConsumerConfig(
			cfg.Kafka.Host,
			cfg.Kafka.Port,
			cfg.Kafka.MembershipTopic,
			membershipConsumerGroupID,
		), metrics)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) {
			consumer.RegisterHandler(ctx, handler.Handler)
		}, nil
	}

	if err := consume(ctx, logger, cfg.Kafka.MembershipTopic, start); err != nil {
		logger.Error(err.Error())
		return
	}
}

// consume builds the consumer, subscribes the handler and blocks until ctx
// is done.
func consume(ctx context.Context, logger logger_lib.LoggerInterface, topic string, start func() (subscribeFunc, error)) error {
	subscribe, err := start()
	if err != nil {
		return fmt.Errorf("failed to create consumer for %s: %v", topic, err)
	}
	subscribe(ctx)
	logger.Info(fmt.Sprintf("consuming membership events from %s", topic))

	<-ctx.Done()
	logger.Info("membership worker stopped")
	return nil
}
