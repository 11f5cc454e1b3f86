package app

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/court-booking/pkg/kafka"
	"github.com/Astemirdum/court-booking/pkg/logger"
	"github.com/Astemirdum/court-booking/pkg/postgres"
	"github.com/Astemirdum/court-booking/pkg/server"
	"github.com/Astemirdum/court-booking/stats/config"
	"github.com/Astemirdum/court-booking/stats/internal/handler"
	"github.com/Astemirdum/court-booking/stats/internal/repository"
	"github.com/Astemirdum/court-booking/stats/internal/service"
	"github.com/Astemirdum/court-booking/stats/migrations"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "stats")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	repo, closeRepo, err := newRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()
	svc := service.NewService(repo, log)

	consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.StatsConsumerGroup)
	if err != nil {
		return fmt.Errorf("kafka.NewConsumer %w", err)
	}

	h := handler.New(svc, cfg.Auth, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return kafka.Consume(gCtx, consumer, handler.NewConsumer(svc.Record, log), kafka.ReservationTopic)
	})
	g.Go(func() error {
		if err := srv.Run(); err != nil {
			return fmt.Errorf("server run: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown", zap.Error(context.Cause(gCtx)))

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := srv.Stop(closeCtx); err != nil {
			log.Error("srv.Stop", zap.Error(err))
		}
		return consumer.Close()
	})

	err = g.Wait()
	log.Info("Graceful shutdown finished")
	return err
}

func newRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Repository, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return repository.NewInMemory(), func() {}, nil
	case config.StoragePostgres:
		db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
		if err != nil {
			return nil, nil, fmt.Errorf("db init %w", err)
		}
		repo, err := repository.NewRepository(db, log)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("repo %w", err)
		}
		return repo, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
