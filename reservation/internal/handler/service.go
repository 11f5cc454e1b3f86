package handler

import (
	"context"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/Astemirdum/court-booking/reservation/internal/model"
	"github.com/Astemirdum/court-booking/reservation/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type ReservationService interface {
	Create(ctx context.Context, caller auth.Caller, req model.CreateReservationRequest) (model.Reservation, error)
	TransitionStatus(ctx context.Context, caller auth.Caller, id string, target model.Status, reason string) (model.Reservation, error)
	Get(ctx context.Context, caller auth.Caller, id string) (model.Reservation, error)
	ListForUser(ctx context.Context, caller auth.Caller, userID string) ([]model.Reservation, error)
	ListAll(ctx context.Context, caller auth.Caller, filter model.ReservationFilter) (model.ListReservations, error)
}

type FacilityService interface {
	ListFacilities(ctx context.Context, showAll bool, page, size int) (model.ListFacilities, error)
	GetFacility(ctx context.Context, id string) (model.Facility, error)
	CreateFacility(ctx context.Context, caller auth.Caller, req model.CreateFacilityRequest) (model.Facility, error)
	UpdateFacility(ctx context.Context, caller auth.Caller, id string, patch model.FacilityPatch) (model.Facility, error)
}

var (
	_ ReservationService = (*service.Service)(nil)
	_ FacilityService    = (*service.Service)(nil)
)
