package service

import (
	"context"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/Astemirdum/court-booking/pkg/events"
	"github.com/Astemirdum/court-booking/stats/internal/errs"
	"github.com/Astemirdum/court-booking/stats/internal/model"
	statsRepo "github.com/Astemirdum/court-booking/stats/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Service struct {
	log  *zap.Logger
	repo statsRepo.Repository
}

func NewService(repo statsRepo.Repository, log *zap.Logger) *Service {
	return &Service{
		log:  log.Named("service"),
		repo: repo,
	}
}

// GetStats is available to administrators only.
func (s *Service) GetStats(ctx context.Context, caller auth.Caller) (model.StatsInfo, error) {
	if !caller.IsAdmin() {
		return model.StatsInfo{}, errs.ErrForbidden
	}
	info, err := s.repo.GetStats(ctx)
	if err != nil {
		return model.StatsInfo{}, errors.Wrap(err, "repo.GetStats")
	}
	if info.Data == nil {
		info.Data = []model.FacilityStats{}
	}
	return info, nil
}

// Record is used by the kafka consumer. Redelivered events are ignored.
func (s *Service) Record(ctx context.Context, event events.ReservationEvent) error {
	if event.ID == "" || event.FacilityID == "" {
		return errors.Wrap(errs.ErrInvalidEvent, "missing id")
	}
	switch event.Type {
	case events.ReservationCreated, events.ReservationConfirmed, events.ReservationRejected, events.ReservationCancelled:
	default:
		return errors.Wrapf(errs.ErrInvalidEvent, "type %q", event.Type)
	}

	saved, err := s.repo.Save(ctx, event)
	if err != nil {
		return errors.Wrap(err, "repo.Save")
	}
	if !saved {
		s.log.Debug("duplicate event", zap.String("id", event.ID))
	}
	return nil
}
