package service

import (
	"context"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/Astemirdum/court-booking/reservation/internal/errs"
	"github.com/Astemirdum/court-booking/reservation/internal/model"
	"go.uber.org/zap"
)

func (s *Service) ListFacilities(ctx context.Context, showAll bool, page, size int) (model.ListFacilities, error) {
	list, err := s.repo.ListFacilities(ctx, showAll, page, size)
	if err != nil {
		return model.ListFacilities{}, wrap(err, "repo.ListFacilities")
	}
	if list.Items == nil {
		list.Items = []model.Facility{}
	}
	return list, nil
}

func (s *Service) GetFacility(ctx context.Context, id string) (model.Facility, error) {
	f, err := s.repo.GetFacility(ctx, id)
	if err != nil {
		return model.Facility{}, wrap(err, "repo.GetFacility")
	}
	return f, nil
}

func (s *Service) CreateFacility(ctx context.Context, caller auth.Caller, req model.CreateFacilityRequest) (model.Facility, error) {
	if !caller.IsAdmin() {
		return model.Facility{}, errs.ErrForbidden
	}
	f, err := s.repo.CreateFacility(ctx, req)
	if err != nil {
		return model.Facility{}, wrap(err, "repo.CreateFacility")
	}
	s.log.Info("facility created", zap.String("id", f.ID), zap.String("name", f.Name))
	return f, nil
}

func (s *Service) UpdateFacility(ctx context.Context, caller auth.Caller, id string, patch model.FacilityPatch) (model.Facility, error) {
	if !caller.IsAdmin() {
		return model.Facility{}, errs.ErrForbidden
	}
	f, err := s.repo.UpdateFacility(ctx, id, patch)
	if err != nil {
		return model.Facility{}, wrap(err, "repo.UpdateFacility")
	}
	return f, nil
}
