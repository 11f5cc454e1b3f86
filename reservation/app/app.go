package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/court-booking/pkg/events"
	"github.com/Astemirdum/court-booking/pkg/kafka"
	"github.com/Astemirdum/court-booking/pkg/lock"
	"github.com/Astemirdum/court-booking/pkg/logger"
	"github.com/Astemirdum/court-booking/pkg/postgres"
	"github.com/Astemirdum/court-booking/pkg/rabbitmq"
	"github.com/Astemirdum/court-booking/pkg/server"
	"github.com/Astemirdum/court-booking/reservation/config"
	"github.com/Astemirdum/court-booking/reservation/internal/handler"
	"github.com/Astemirdum/court-booking/reservation/internal/repository"
	"github.com/Astemirdum/court-booking/reservation/internal/service"
	"github.com/Astemirdum/court-booking/reservation/migrations"
	"go.uber.org/zap"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "reservation")
	ctx := context.Background()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	repo, closeRepo, err := newRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeRepo)

	locker, closeLocker, err := newLocker(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeLocker)

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	closers = append(closers, func() {
		if err := publisher.Close(); err != nil {
			log.Error("publisher.Close", zap.Error(err))
		}
	})

	svc := service.NewService(repo, locker, publisher, log, service.WithLocation(loc))
	h := handler.New(svc, svc, cfg.Auth, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr", net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)),
		zap.String("storage", cfg.StorageDriver),
		zap.String("lock", cfg.LockDriver),
		zap.String("events", cfg.EventsDriver))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
	return nil
}

func newRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Repository, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return repository.NewInMemory(defaultFacilities()...), func() {}, nil
	case config.StoragePostgres:
		db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
		if err != nil {
			return nil, nil, fmt.Errorf("db init %v", err)
		}
		repo, err := repository.NewRepository(db, log)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("repo %v", err)
		}
		return repo, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func newLocker(ctx context.Context, cfg *config.Config, log *zap.Logger) (lock.Locker, func(), error) {
	switch cfg.LockDriver {
	case config.LockLocal:
		return lock.NewLocal(), func() {}, nil
	case config.LockRedis:
		client, err := lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return lock.NewRedis(client, cfg.Redis.TTL, log), func() {
			if err := client.Close(); err != nil {
				log.Error("redis.Close", zap.Error(err))
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown lock driver %q", cfg.LockDriver)
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventsDriver {
	case config.EventsNone, "":
		return events.NewNoop(), nil
	case config.EventsKafka:
		if err := kafka.CreateTopics(cfg.Kafka); err != nil {
			return nil, fmt.Errorf("kafka.CreateTopics: %w", err)
		}
		producer, err := kafka.NewSyncProducer(cfg.Kafka)
		if err != nil {
			return nil, fmt.Errorf("kafka.NewSyncProducer: %w", err)
		}
		return kafka.NewPublisher(producer, kafka.ReservationTopic), nil
	case config.EventsRabbitMQ:
		return rabbitmq.NewPublisher(cfg.RabbitMQ)
	}
	return nil, fmt.Errorf("unknown events driver %q", cfg.EventsDriver)
}
