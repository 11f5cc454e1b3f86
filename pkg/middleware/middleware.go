package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

const (
	AuthorizationHeader = "Authorization"
	bearer              = "Bearer "
)

// JwtAuthentication puts the caller carried by an HS256 token into the request context.
func JwtAuthentication(key []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authorization := c.Request().Header.Get(AuthorizationHeader)
			if authorization == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "No Authorization Header")
			}
			if !strings.HasPrefix(authorization, bearer) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization Header")
			}
			tokenStr := strings.TrimPrefix(authorization, bearer)
			claims := new(auth.Claims)

			token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "JwtAccessDenied")
			}
			if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
				return echo.NewHTTPError(http.StatusUnauthorized, "TokenExpired")
			}
			if claims.Profile.UserID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "user id is empty")
			}
			role, err := auth.ParseRole(claims.Profile.Role)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			req := c.Request()
			c.SetRequest(req.WithContext(auth.SetAuthContext(req.Context(), claims.Profile.UserID, role)))
			return next(c)
		}
	}
}

// AuthContext trusts the identity headers set by the gateway in front of the service.
func AuthContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		userID := req.Header.Get(auth.XUserIDHeader)
		if userID == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "user-id is empty")
		}
		role, err := auth.ParseRole(req.Header.Get(auth.XUserRoleHeader))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		c.SetRequest(req.WithContext(auth.SetAuthContext(req.Context(), userID, role)))
		return next(c)
	}
}

// Authentication picks JwtAuthentication when a signing key is configured.
func Authentication(cfg auth.Config) echo.MiddlewareFunc {
	if cfg.JWTKey != "" {
		return JwtAuthentication([]byte(cfg.JWTKey))
	}
	return AuthContext
}

func NewRateLimiter(rps rate.Limit) echo.MiddlewareFunc {
	return echoMiddleware.RateLimiter(echoMiddleware.NewRateLimiterMemoryStore(rps))
}

func RequestLoggerConfig(log *zap.Logger) echoMiddleware.RequestLoggerConfig {
	log = log.Named("echo")
	return echoMiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Error != nil {
				level = zapcore.ErrorLevel
			}
			log.Log(level, "request",
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}
}
