package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/Astemirdum/court-booking/pkg/events"
	"github.com/Astemirdum/court-booking/pkg/lock"
	"github.com/Astemirdum/court-booking/reservation/internal/errs"
	"github.com/Astemirdum/court-booking/reservation/internal/model"
	reservationRepo "github.com/Astemirdum/court-booking/reservation/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const publishTimeout = 3 * time.Second

type Service struct {
	log       *zap.Logger
	repo      reservationRepo.Repository
	locker    lock.Locker
	publisher events.Publisher
	now       func() time.Time
	loc       *time.Location
}

type Option func(*Service)

// WithClock replaces time.Now, the source of "today" and of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the time zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(repo reservationRepo.Repository, locker lock.Locker, publisher events.Publisher, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		locker:    locker,
		publisher: publisher,
		now:       time.Now,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() model.Date {
	return model.DateOf(s.now().In(s.loc))
}

func slotKey(facilityID string, date model.Date) string {
	return fmt.Sprintf("reservation:%s:%s", facilityID, date)
}

// Create books [StartTime, EndTime) of the facility on Date as a pending reservation.
func (s *Service) Create(ctx context.Context, caller auth.Caller, req model.CreateReservationRequest) (model.Reservation, error) {
	if !req.StartTime.Valid() || !req.EndTime.Valid() || req.StartTime >= req.EndTime {
		return model.Reservation{}, errs.ErrInvalidTimeRange
	}
	if req.Date.IsZero() || req.Date.Before(s.today()) {
		return model.Reservation{}, errs.ErrInvalidDate
	}
	if caller.UserID == "" {
		return model.Reservation{}, auth.ErrNoCaller
	}
	if req.UserID == "" {
		req.UserID = caller.UserID
	}
	if !caller.IsAdmin() && !caller.Owns(req.UserID) {
		return model.Reservation{}, errs.ErrForbidden
	}

	facility, err := s.repo.GetFacility(ctx, req.FacilityID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Reservation{}, errs.ErrFacilityUnavailable
		}
		return model.Reservation{}, errors.Wrap(err, "repo.GetFacility")
	}
	if !facility.Active {
		return model.Reservation{}, errs.ErrFacilityUnavailable
	}

	unlock, err := s.locker.Lock(ctx, slotKey(req.FacilityID, req.Date))
	if err != nil {
		return model.Reservation{}, errors.Wrap(err, "lock")
	}
	defer unlock()

	overlapping, err := s.repo.FindOverlapping(ctx, req.FacilityID, req.Date, req.StartTime, req.EndTime, model.ActiveStatuses)
	if err != nil {
		return model.Reservation{}, wrap(err, "repo.FindOverlapping")
	}
	if len(overlapping) > 0 {
		s.log.Debug("slot taken",
			zap.String("facilityId", req.FacilityID),
			zap.Stringer("date", req.Date),
			zap.String("holder", overlapping[0].ID))
		return model.Reservation{}, errs.ErrSlotConflict
	}

	now := s.now().UTC()
	res, err := s.repo.Insert(ctx, model.Reservation{
		FacilityID: req.FacilityID,
		UserID:     req.UserID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     model.StatusPending,
		TotalPrice: facility.Price(req.StartTime, req.EndTime),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return model.Reservation{}, wrap(err, "repo.Insert")
	}

	s.publish(ctx, events.ReservationCreated, res, caller.UserID)
	return res, nil
}

// TransitionStatus moves the reservation to target if the caller may do so and the
// state machine allows it.
func (s *Service) TransitionStatus(ctx context.Context, caller auth.Caller, id string, target model.Status, reason string) (model.Reservation, error) {
	if !target.Valid() {
		return model.Reservation{}, errors.Wrapf(errs.ErrUnknownStatus, "%q", target)
	}
	res, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Reservation{}, wrap(err, "repo.Get")
	}
	if err := authorizeTransition(caller, res, target); err != nil {
		return model.Reservation{}, err
	}
	if !res.Status.CanTransitionTo(target) {
		return model.Reservation{}, errors.Wrapf(errs.ErrInvalidTransition, "%s -> %s", res.Status, target)
	}

	patch := model.ReservationPatch{
		Status:          target,
		UpdatedAt:       s.now().UTC(),
		ExpectedVersion: res.Version,
	}
	if target == model.StatusRejected {
		if reason == "" {
			reason = model.DefaultRejectionReason
		}
		patch.RejectionReason = &reason
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return model.Reservation{}, wrap(err, "repo.Update")
	}

	s.publish(ctx, eventType(target), updated, caller.UserID)
	return updated, nil
}

func authorizeTransition(caller auth.Caller, res model.Reservation, target model.Status) error {
	if caller.IsAdmin() {
		return nil
	}
	switch target {
	case model.StatusConfirmed, model.StatusRejected:
		return errs.ErrForbidden
	default:
		if !caller.Owns(res.UserID) {
			return errs.ErrForbidden
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, caller auth.Caller, id string) (model.Reservation, error) {
	res, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Reservation{}, wrap(err, "repo.Get")
	}
	if !caller.IsAdmin() && !caller.Owns(res.UserID) {
		return model.Reservation{}, errs.ErrForbidden
	}
	return res, nil
}

// ListForUser lists userID's reservations; an empty userID means the caller.
func (s *Service) ListForUser(ctx context.Context, caller auth.Caller, userID string) ([]model.Reservation, error) {
	if userID == "" {
		userID = caller.UserID
	}
	if userID == "" {
		return nil, auth.ErrNoCaller
	}
	if !caller.IsAdmin() && !caller.Owns(userID) {
		return nil, errs.ErrForbidden
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrap(err, "repo.ListByUser")
	}
	if items == nil {
		items = []model.Reservation{}
	}
	return items, nil
}

func (s *Service) ListAll(ctx context.Context, caller auth.Caller, filter model.ReservationFilter) (model.ListReservations, error) {
	if !caller.IsAdmin() {
		return model.ListReservations{}, errs.ErrForbidden
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return model.ListReservations{}, errors.Wrapf(errs.ErrUnknownStatus, "%q", filter.Status)
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return model.ListReservations{}, wrap(err, "repo.List")
	}
	if list.Items == nil {
		list.Items = []model.Reservation{}
	}
	return list, nil
}

func (s *Service) publish(ctx context.Context, typ events.Type, res model.Reservation, actorID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := events.ReservationEvent{
		ID:            uuid.NewString(),
		Type:          typ,
		ReservationID: res.ID,
		FacilityID:    res.FacilityID,
		UserID:        res.UserID,
		Date:          res.Date.String(),
		StartTime:     res.StartTime.String(),
		EndTime:       res.EndTime.String(),
		Status:        string(res.Status),
		ActorID:       actorID,
		Timestamp:     res.UpdatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("publish event",
			zap.String("type", string(typ)),
			zap.String("reservationId", res.ID),
			zap.Error(err))
	}
}

func eventType(status model.Status) events.Type {
	switch status {
	case model.StatusConfirmed:
		return events.ReservationConfirmed
	case model.StatusRejected:
		return events.ReservationRejected
	case model.StatusCancelled:
		return events.ReservationCancelled
	}
	return events.ReservationCreated
}

func wrap(err error, op string) error {
	if errs.IsClassified(err) {
		return err
	}
	return errors.Wrap(err, op)
}
