package handler

import (
	"net/http"

	"github.com/Astemirdum/court-booking/pkg/auth"
	md "github.com/Astemirdum/court-booking/pkg/middleware"
	"github.com/Astemirdum/court-booking/pkg/validate"
	"github.com/Astemirdum/court-booking/stats/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Handler struct {
	statsSvc StatsService
	authCfg  auth.Config
	log      *zap.Logger
}

func New(statsSvc StatsService, authCfg auth.Config, log *zap.Logger) *Handler {
	return &Handler{
		statsSvc: statsSvc,
		authCfg:  authCfg,
		log:      log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{StackSize: 4 << 10}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
		md.Authentication(h.authCfg),
	)
	api.GET("/stats", h.GetStats)
	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	caller, err := auth.GetCaller(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	stat, err := h.statsSvc.GetStats(ctx, caller)
	if err != nil {
		if errors.Is(err, errs.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, stat)
}
