package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/court-booking/reservation/internal/errs"
	"github.com/Astemirdum/court-booking/reservation/internal/model"
	"github.com/stretchr/testify/require"
)

var (
	testDate = model.NewDate(2025, 6, 1)
	at       = model.NewTimeOfDay
)

func newTestMemory() *memory {
	return NewInMemory(
		model.Facility{ID: "court-1", Name: "Court 1", PricePerHour: 6000, Active: true},
		model.Facility{ID: "court-2", Name: "Court 2", PricePerHour: 4000, Active: false},
	)
}

func reservation(id, facilityID string, start, end model.TimeOfDay, status model.Status) model.Reservation {
	return model.Reservation{
		ID:         id,
		FacilityID: facilityID,
		UserID:     "u-1",
		Date:       testDate,
		StartTime:  start,
		EndTime:    end,
		Status:     status,
		Version:    1,
		CreatedAt:  time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestMemory_InsertOverlap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory()

	_, err := m.Insert(ctx, reservation("r-1", "court-1", at(18, 0), at(19, 0), model.StatusPending))
	require.NoError(t, err)

	tests := []struct {
		name    string
		res     model.Reservation
		wantErr error
	}{
		{"overlap", reservation("r-2", "court-1", at(18, 30), at(19, 30), model.StatusPending), errs.ErrSlotConflict},
		{"back to back", reservation("r-3", "court-1", at(19, 0), at(20, 0), model.StatusPending), nil},
		{"other facility", reservation("r-4", "court-2", at(18, 0), at(19, 0), model.StatusPending), nil},
		{"unknown facility", reservation("r-5", "court-9", at(8, 0), at(9, 0), model.StatusPending), errs.ErrFacilityUnavailable},
	}
	for _, tt := range tests {
		_, err := m.Insert(ctx, tt.res)
		if tt.wantErr != nil {
			require.ErrorIs(t, err, tt.wantErr, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
	}

	got, err := m.FindOverlapping(ctx, "court-1", testDate, at(17, 0), at(21, 0), model.ActiveStatuses)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "r-1", got[0].ID)
	require.Equal(t, "r-3", got[1].ID)
}

func TestMemory_CancelledSlotIsFree(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory()

	_, err := m.Insert(ctx, reservation("r-1", "court-1", at(18, 0), at(19, 0), model.StatusPending))
	require.NoError(t, err)
	updated, err := m.Update(ctx, "r-1", model.ReservationPatch{Status: model.StatusCancelled, ExpectedVersion: 1})
	require.NoError(t, err)
	require.Equal(t, 2, updated.Version)

	got, err := m.FindOverlapping(ctx, "court-1", testDate, at(18, 0), at(19, 0), model.ActiveStatuses)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = m.FindOverlapping(ctx, "court-1", testDate, at(18, 0), at(19, 0), []model.Status{model.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, got, 1)

	stored, err := m.Insert(ctx, reservation("", "court-1", at(18, 0), at(19, 0), model.StatusPending))
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)
}

func TestMemory_UpdateVersion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory()

	_, err := m.Insert(ctx, reservation("r-1", "court-1", at(18, 0), at(19, 0), model.StatusPending))
	require.NoError(t, err)

	reason := "maintenance"
	res, err := m.Update(ctx, "r-1", model.ReservationPatch{
		Status:          model.StatusRejected,
		RejectionReason: &reason,
		ExpectedVersion: 1,
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusRejected, res.Status)
	require.Equal(t, "maintenance", *res.RejectionReason)

	_, err = m.Update(ctx, "r-1", model.ReservationPatch{Status: model.StatusCancelled, ExpectedVersion: 1})
	require.ErrorIs(t, err, errs.ErrConflict)

	_, err = m.Update(ctx, "r-404", model.ReservationPatch{Status: model.StatusCancelled, ExpectedVersion: 1})
	require.ErrorIs(t, err, errs.ErrNotFound)

	reason = "changed"
	got, err := m.Get(ctx, "r-1")
	require.NoError(t, err)
	require.Equal(t, "maintenance", *got.RejectionReason)
}

func TestMemory_ConcurrentInsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory()

	const n = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Insert(ctx, reservation(fmt.Sprintf("r-%d", i), "court-1", at(18, 0), at(19, 0), model.StatusPending))
			if err == nil {
				mu.Lock()
				inserted++
				mu.Unlock()
				return
			}
			require.ErrorIs(t, err, errs.ErrSlotConflict)
		}(i)
	}
	wg.Wait()
	require.Equal(t, 1, inserted)
}

func TestMemory_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory()

	for i, start := range []int{20, 8, 12} {
		res := reservation(fmt.Sprintf("r-%d", i), "court-1", at(start, 0), at(start+1, 0), model.StatusPending)
		if i == 2 {
			res.UserID = "u-2"
			res.Status = model.StatusConfirmed
		}
		_, err := m.Insert(ctx, res)
		require.NoError(t, err)
	}

	all, err := m.List(ctx, model.ReservationFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, all.TotalElements)
	require.Equal(t, []string{"r-1", "r-2", "r-0"}, ids(all.Items))

	page, err := m.List(ctx, model.ReservationFilter{Page: 2, Size: 2})
	require.NoError(t, err)
	require.Equal(t, 3, page.TotalElements)
	require.Equal(t, []string{"r-0"}, ids(page.Items))

	confirmed, err := m.List(ctx, model.ReservationFilter{Status: model.StatusConfirmed})
	require.NoError(t, err)
	require.Equal(t, []string{"r-2"}, ids(confirmed.Items))

	other := model.NewDate(2025, 6, 2)
	none, err := m.List(ctx, model.ReservationFilter{Date: &other})
	require.NoError(t, err)
	require.Empty(t, none.Items)

	mine, err := m.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, []string{"r-1", "r-0"}, ids(mine))
}

func TestMemory_Facilities(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory()

	active, err := m.ListFacilities(ctx, false, 0, 0)
	require.NoError(t, err)
	require.Len(t, active.Items, 1)

	all, err := m.ListFacilities(ctx, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, all.Items, 2)

	enable := true
	f, err := m.UpdateFacility(ctx, "court-2", model.FacilityPatch{Active: &enable})
	require.NoError(t, err)
	require.True(t, f.Active)

	_, err = m.UpdateFacility(ctx, "court-9", model.FacilityPatch{Active: &enable})
	require.ErrorIs(t, err, errs.ErrNotFound)

	created, err := m.CreateFacility(ctx, model.CreateFacilityRequest{Name: "Padel", PricePerHour: 5000})
	require.NoError(t, err)
	require.True(t, created.Active)
	got, err := m.GetFacility(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func ids(items []model.Reservation) []string {
	out := make([]string, 0, len(items))
	for _, r := range items {
		out = append(out, r.ID)
	}
	return out
}

func TestMemory_ListFacilitiesPaging(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewInMemory(
		model.Facility{ID: "court-1", Name: "Court 1", Active: true},
		model.Facility{ID: "court-2", Name: "Court 2", Active: true},
		model.Facility{ID: "court-3", Name: "Court 3", Active: true},
		model.Facility{ID: "court-4", Name: "Court 4", Active: false},
	)

	page, err := m.ListFacilities(ctx, false, 2, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "court-2", page.Items[0].ID)
	require.Equal(t, 3, page.TotalElements)

	all, err := m.ListFacilities(ctx, true, 1, 3)
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	require.Equal(t, 4, all.TotalElements)
}

func TestMemory_UnknownStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory()

	_, err := m.Insert(ctx, reservation("r-1", "court-1", at(18, 0), at(19, 0), model.Status("pendiente")))
	require.ErrorIs(t, err, errs.ErrUnknownStatus)
	_, err = m.Get(ctx, "r-1")
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = m.Insert(ctx, reservation("r-2", "court-1", at(18, 0), at(19, 0), model.StatusPending))
	require.NoError(t, err)
	_, err = m.Update(ctx, "r-2", model.ReservationPatch{Status: model.Status("2"), ExpectedVersion: 1})
	require.ErrorIs(t, err, errs.ErrUnknownStatus)

	got, err := m.Get(ctx, "r-2")
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, got.Status)
	require.Equal(t, 1, got.Version)
}
