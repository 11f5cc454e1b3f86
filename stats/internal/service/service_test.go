package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/Astemirdum/court-booking/pkg/events"
	"github.com/Astemirdum/court-booking/stats/internal/errs"
	"github.com/Astemirdum/court-booking/stats/internal/repository"
	"github.com/Astemirdum/court-booking/stats/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func event(id string, typ events.Type, facilityID string, ts time.Time) events.ReservationEvent {
	return events.ReservationEvent{ID: id, Type: typ, ReservationID: "r-" + id, FacilityID: facilityID, Timestamp: ts}
}

func TestService_Record(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := service.NewService(repository.NewInMemory(), zap.NewNop())
	t0 := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

	for _, e := range []events.ReservationEvent{
		event("1", events.ReservationCreated, "court-1", t0),
		event("2", events.ReservationConfirmed, "court-1", t0.Add(time.Minute)),
		event("2", events.ReservationConfirmed, "court-1", t0.Add(time.Minute)),
		event("3", events.ReservationCreated, "court-2", t0),
		event("4", events.ReservationCancelled, "court-2", t0.Add(time.Hour)),
		event("5", events.ReservationRejected, "court-2", t0.Add(time.Minute)),
	} {
		require.NoError(t, svc.Record(ctx, e))
	}

	require.ErrorIs(t, svc.Record(ctx, event("6", "reservation.moved", "court-1", t0)), errs.ErrInvalidEvent)
	require.ErrorIs(t, svc.Record(ctx, event("", events.ReservationCreated, "court-1", t0)), errs.ErrInvalidEvent)

	_, err := svc.GetStats(ctx, auth.Caller{UserID: "u-1", Role: auth.RoleUser})
	require.ErrorIs(t, err, errs.ErrForbidden)

	info, err := svc.GetStats(ctx, auth.Caller{UserID: "admin", Role: auth.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, info.Data, 2)

	court1, court2 := info.Data[0], info.Data[1]
	require.Equal(t, "court-1", court1.FacilityID)
	require.Equal(t, int64(1), court1.Created)
	require.Equal(t, int64(1), court1.Confirmed)
	require.Equal(t, t0.Add(time.Minute), court1.LastUpdated)

	require.Equal(t, "court-2", court2.FacilityID)
	require.Equal(t, int64(1), court2.Cancelled)
	require.Equal(t, int64(1), court2.Rejected)
	require.Equal(t, t0.Add(time.Hour), court2.LastUpdated)
}

func TestService_GetStats_Empty(t *testing.T) {
	t.Parallel()
	svc := service.NewService(repository.NewInMemory(), zap.NewNop())
	info, err := svc.GetStats(context.Background(), auth.Caller{UserID: "admin", Role: auth.RoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, info.Data)
	require.Empty(t, info.Data)
}
