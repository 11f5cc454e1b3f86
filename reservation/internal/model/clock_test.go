package model_test

import (
	"encoding/json"
	"testing"

	"github.com/Astemirdum/court-booking/reservation/internal/model"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    model.TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "18:30", want: model.NewTimeOfDay(18, 30)},
		{in: "9:05", want: model.NewTimeOfDay(9, 5)},
		{in: "18:30:00", want: model.NewTimeOfDay(18, 30)},
		{in: "24:00", want: model.EndOfDay},
		{in: "18:30:15", wantErr: true},
		{in: "25:00", wantErr: true},
		{in: "18:60", wantErr: true},
		{in: "1800", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := model.ParseTimeOfDay(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()
	at := model.NewTimeOfDay
	tests := []struct {
		name           string
		s1, e1, s2, e2 model.TimeOfDay
		want           bool
	}{
		{"same", at(18, 0), at(19, 0), at(18, 0), at(19, 0), true},
		{"partial", at(18, 0), at(19, 0), at(18, 30), at(19, 30), true},
		{"inside", at(18, 0), at(20, 0), at(18, 30), at(19, 0), true},
		{"back to back", at(18, 0), at(19, 0), at(19, 0), at(20, 0), false},
		{"before", at(18, 0), at(19, 0), at(16, 0), at(17, 0), false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, model.Overlaps(tt.s1, tt.e1, tt.s2, tt.e2), tt.name)
		require.Equal(t, tt.want, model.Overlaps(tt.s2, tt.e2, tt.s1, tt.e1), tt.name)
	}
}

func TestCreateReservationRequest_JSON(t *testing.T) {
	t.Parallel()
	var req model.CreateReservationRequest
	err := json.Unmarshal([]byte(`{"facilityId":"f-1","date":"2025-06-01","startTime":"18:00","endTime":"19:30"}`), &req)
	require.NoError(t, err)
	require.Equal(t, model.NewDate(2025, 6, 1), req.Date)
	require.Equal(t, model.NewTimeOfDay(18, 0), req.StartTime)
	require.Equal(t, model.NewTimeOfDay(19, 30), req.EndTime)

	err = json.Unmarshal([]byte(`{"date":"01/06/2025"}`), &req)
	require.Error(t, err)

	b, err := json.Marshal(model.Reservation{Date: req.Date, StartTime: req.StartTime, EndTime: req.EndTime})
	require.NoError(t, err)
	require.Contains(t, string(b), `"date":"2025-06-01","startTime":"18:00","endTime":"19:30"`)
}

func TestFacility_Price(t *testing.T) {
	t.Parallel()
	f := model.Facility{PricePerHour: 6000}
	require.Equal(t, int64(9000), f.Price(model.NewTimeOfDay(18, 0), model.NewTimeOfDay(19, 30)))
}
