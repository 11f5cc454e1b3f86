package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Astemirdum/court-booking/reservation/internal/errs"
	"github.com/Astemirdum/court-booking/reservation/internal/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type memory struct {
	mu           sync.RWMutex
	facilities   map[string]model.Facility
	reservations map[string]model.Reservation
}

// NewInMemory keeps everything in process memory. Insert re-checks overlaps under
// its own mutex, so it never stores two intersecting active reservations.
func NewInMemory(facilities ...model.Facility) *memory {
	m := &memory{
		facilities:   make(map[string]model.Facility, len(facilities)),
		reservations: make(map[string]model.Reservation),
	}
	for _, f := range facilities {
		m.facilities[f.ID] = f
	}
	return m
}

func (m *memory) GetFacility(_ context.Context, id string) (model.Facility, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.facilities[id]
	if !ok {
		return model.Facility{}, errs.ErrNotFound
	}
	return f, nil
}

func (m *memory) ListFacilities(_ context.Context, showAll bool, page, size int) (model.ListFacilities, error) {
	m.mu.RLock()
	items := make([]model.Facility, 0, len(m.facilities))
	for _, f := range m.facilities {
		if showAll || f.Active {
			items = append(items, f)
		}
	}
	m.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
	total := len(items)
	return model.ListFacilities{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: paginate(items, page, size),
	}, nil
}

func (m *memory) CreateFacility(_ context.Context, req model.CreateFacilityRequest) (model.Facility, error) {
	now := time.Now().UTC()
	f := model.Facility{
		ID:           uuid.NewString(),
		Name:         req.Name,
		PricePerHour: req.PricePerHour,
		Active:       req.Active == nil || *req.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.mu.Lock()
	m.facilities[f.ID] = f
	m.mu.Unlock()
	return f, nil
}

func (m *memory) UpdateFacility(_ context.Context, id string, patch model.FacilityPatch) (model.Facility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facilities[id]
	if !ok {
		return model.Facility{}, errs.ErrNotFound
	}
	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.PricePerHour != nil {
		f.PricePerHour = *patch.PricePerHour
	}
	if patch.Active != nil {
		f.Active = *patch.Active
	}
	f.UpdatedAt = time.Now().UTC()
	m.facilities[id] = f
	return f, nil
}

func (m *memory) FindOverlapping(_ context.Context, facilityID string, date model.Date, start, end model.TimeOfDay, statuses []model.Status) ([]model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := m.overlapping(facilityID, date, start, end, statuses)
	sortReservations(items)
	return items, nil
}

func (m *memory) overlapping(facilityID string, date model.Date, start, end model.TimeOfDay, statuses []model.Status) []model.Reservation {
	var items []model.Reservation
	for _, r := range m.reservations {
		if r.FacilityID != facilityID || !r.Date.Equal(date.Time) || !hasStatus(statuses, r.Status) {
			continue
		}
		if model.Overlaps(r.StartTime, r.EndTime, start, end) {
			items = append(items, clone(r))
		}
	}
	return items
}

func (m *memory) Insert(_ context.Context, res model.Reservation) (model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !res.Status.Valid() {
		return model.Reservation{}, errors.Wrapf(errs.ErrUnknownStatus, "%q", res.Status)
	}
	if _, ok := m.facilities[res.FacilityID]; !ok {
		return model.Reservation{}, errs.ErrFacilityUnavailable
	}
	if res.Status.Active() && len(m.overlapping(res.FacilityID, res.Date, res.StartTime, res.EndTime, model.ActiveStatuses)) > 0 {
		return model.Reservation{}, errs.ErrSlotConflict
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	res = clone(res)
	m.reservations[res.ID] = res
	return clone(res), nil
}

func (m *memory) Get(_ context.Context, id string) (model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reservations[id]
	if !ok {
		return model.Reservation{}, errs.ErrNotFound
	}
	return clone(r), nil
}

func (m *memory) Update(_ context.Context, id string, patch model.ReservationPatch) (model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return model.Reservation{}, errs.ErrNotFound
	}
	if r.Version != patch.ExpectedVersion {
		return model.Reservation{}, errs.ErrConflict
	}
	if !patch.Status.Valid() {
		return model.Reservation{}, errors.Wrapf(errs.ErrUnknownStatus, "%q", patch.Status)
	}
	r.Status = patch.Status
	r.RejectionReason = patch.RejectionReason
	r.UpdatedAt = patch.UpdatedAt
	r.Version++
	r = clone(r)
	m.reservations[id] = r
	return clone(r), nil
}

func (m *memory) ListByUser(_ context.Context, userID string) ([]model.Reservation, error) {
	m.mu.RLock()
	var items []model.Reservation
	for _, r := range m.reservations {
		if r.UserID == userID {
			items = append(items, clone(r))
		}
	}
	m.mu.RUnlock()
	sortReservations(items)
	return items, nil
}

func (m *memory) List(_ context.Context, filter model.ReservationFilter) (model.ListReservations, error) {
	m.mu.RLock()
	items := make([]model.Reservation, 0)
	for _, r := range m.reservations {
		if filter.FacilityID != "" && r.FacilityID != filter.FacilityID {
			continue
		}
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Date != nil && !r.Date.Equal(filter.Date.Time) {
			continue
		}
		items = append(items, clone(r))
	}
	m.mu.RUnlock()

	sortReservations(items)
	total := len(items)
	return model.ListReservations{
		Paging: model.Paging{
			Page:          filter.Page,
			PageSize:      filter.Size,
			TotalElements: total,
		},
		Items: paginate(items, filter.Page, filter.Size),
	}, nil
}

func sortReservations(items []model.Reservation) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func paginate[T any](items []T, page, size int) []T {
	limit, skip, ok := offset(page, size)
	if !ok {
		return items
	}
	if skip >= uint64(len(items)) {
		return items[:0]
	}
	end := skip + limit
	if end > uint64(len(items)) {
		end = uint64(len(items))
	}
	return items[skip:end]
}

func hasStatus(statuses []model.Status, s model.Status) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func clone(r model.Reservation) model.Reservation {
	if r.RejectionReason != nil {
		reason := *r.RejectionReason
		r.RejectionReason = &reason
	}
	return r
}
