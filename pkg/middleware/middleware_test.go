package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/court-booking/pkg/auth"
	md "github.com/Astemirdum/court-booking/pkg/middleware"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("secret")

func whoAmI(c echo.Context) error {
	caller, err := auth.GetCaller(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return c.String(http.StatusOK, caller.UserID+":"+string(caller.Role))
}

func signToken(t *testing.T, userID, role string, exp time.Time) string {
	t.Helper()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}
	claims.Profile.UserID = userID
	claims.Profile.Role = role
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)
	return s
}

func TestJwtAuthentication(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		header       string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "ok",
			header:       "Bearer " + signToken(t, "u-1", "admin", time.Now().Add(time.Hour)),
			expectedCode: http.StatusOK,
			expectedBody: "u-1:admin",
		},
		{
			name:         "no header",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"No Authorization Header"}`,
		},
		{
			name:         "not bearer",
			header:       "Basic abc",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"Invalid Authorization Header"}`,
		},
		{
			name:         "expired",
			header:       "Bearer " + signToken(t, "u-1", "user", time.Now().Add(-time.Hour)),
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"JwtAccessDenied"}`,
		},
		{
			name:         "unknown role",
			header:       "Bearer " + signToken(t, "u-1", "rol", time.Now().Add(time.Hour)),
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"\"rol\": unknown role"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.GET("/me", whoAmI, md.JwtAuthentication(testKey))

			r := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
			if tt.header != "" {
				r.Header.Set(md.AuthorizationHeader, tt.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestAuthContext(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		userID, role string
		expectedCode int
	}{
		{name: "ok", userID: "u-2", role: "user", expectedCode: http.StatusOK},
		{name: "no user", role: "user", expectedCode: http.StatusUnauthorized},
		{name: "bad role", userID: "u-2", role: "superuser", expectedCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.GET("/me", whoAmI, md.Authentication(auth.Config{}))

			r := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
			r.Header.Set(auth.XUserIDHeader, tt.userID)
			r.Header.Set(auth.XUserRoleHeader, tt.role)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
		})
	}
}
