package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/Astemirdum/court-booking/stats/internal/errs"
	"github.com/Astemirdum/court-booking/stats/internal/handler"
	"github.com/Astemirdum/court-booking/stats/internal/model"
	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	service_mocks "github.com/Astemirdum/court-booking/stats/internal/handler/mocks"
)

func TestHandler_GetStats(t *testing.T) {
	t.Parallel()
	admin := auth.Caller{UserID: "admin-1", Role: auth.RoleAdmin}
	user := auth.Caller{UserID: "u-1", Role: auth.RoleUser}
	type mockBehavior func(r *service_mocks.MockStatsService)

	tests := []struct {
		name         string
		caller       *auth.Caller
		mockBehavior mockBehavior
		expectedCode int
		expectedBody string
	}{
		{
			name:   "ok",
			caller: &admin,
			mockBehavior: func(r *service_mocks.MockStatsService) {
				r.EXPECT().GetStats(gomock.Any(), admin).Return(model.StatsInfo{Data: []model.FacilityStats{{
					FacilityID:  "court-1",
					Created:     3,
					Confirmed:   1,
					Cancelled:   1,
					LastUpdated: time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC),
				}}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"data":[{"facilityId":"court-1","created":3,"confirmed":1,"rejected":0,"cancelled":1,"lastUpdated":"2025-05-20T09:00:00Z"}]}`,
		},
		{
			name:   "not admin",
			caller: &user,
			mockBehavior: func(r *service_mocks.MockStatsService) {
				r.EXPECT().GetStats(gomock.Any(), user).Return(model.StatsInfo{}, errs.ErrForbidden)
			},
			expectedCode: http.StatusForbidden,
			expectedBody: `{"message":"forbidden"}`,
		},
		{
			name:         "no caller",
			mockBehavior: func(r *service_mocks.MockStatsService) {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:   "internal",
			caller: &admin,
			mockBehavior: func(r *service_mocks.MockStatsService) {
				r.EXPECT().GetStats(gomock.Any(), admin).Return(model.StatsInfo{}, errors.New("repo.GetStats: db internal"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"message":"repo.GetStats: db internal"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			svc := service_mocks.NewMockStatsService(c)
			tt.mockBehavior(svc)
			e := handler.New(svc, auth.Config{}, zap.NewNop()).NewRouter()

			r := httptest.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody)
			if tt.caller != nil {
				r.Header.Set(auth.XUserIDHeader, tt.caller.UserID)
				r.Header.Set(auth.XUserRoleHeader, string(tt.caller.Role))
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedBody != "" {
				require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}
