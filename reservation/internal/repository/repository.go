package repository

import (
	"context"

	"github.com/Astemirdum/court-booking/reservation/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type FacilityRepository interface {
	GetFacility(ctx context.Context, id string) (model.Facility, error)
	ListFacilities(ctx context.Context, showAll bool, page, size int) (model.ListFacilities, error)
	CreateFacility(ctx context.Context, req model.CreateFacilityRequest) (model.Facility, error)
	UpdateFacility(ctx context.Context, id string, patch model.FacilityPatch) (model.Facility, error)
}

type ReservationRepository interface {
	// FindOverlapping returns reservations of the facility on date in one of statuses
	// whose [start, end) interval intersects the given one.
	FindOverlapping(ctx context.Context, facilityID string, date model.Date, start, end model.TimeOfDay, statuses []model.Status) ([]model.Reservation, error)
	// Insert assigns an id when res has none. It fails with errs.ErrSlotConflict when
	// an active reservation of the same facility and date overlaps res.
	Insert(ctx context.Context, res model.Reservation) (model.Reservation, error)
	Get(ctx context.Context, id string) (model.Reservation, error)
	// Update applies patch and bumps the version, or fails with errs.ErrConflict
	// when the stored version differs from patch.ExpectedVersion.
	Update(ctx context.Context, id string, patch model.ReservationPatch) (model.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]model.Reservation, error)
	List(ctx context.Context, filter model.ReservationFilter) (model.ListReservations, error)
}

type Repository interface {
	FacilityRepository
	ReservationRepository
}

const (
	facilityTableName    = `facility`
	reservationTableName = `reservation`
)

func offset(page, size int) (limit, skip uint64, ok bool) {
	if page <= 0 || size <= 0 {
		return 0, 0, false
	}
	return uint64(size), uint64((page - 1) * size), true
}
