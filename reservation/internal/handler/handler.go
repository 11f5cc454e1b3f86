package handler

import (
	"net/http"
	"strconv"

	"github.com/Astemirdum/court-booking/pkg/auth"
	md "github.com/Astemirdum/court-booking/pkg/middleware"
	"github.com/Astemirdum/court-booking/pkg/validate"
	"github.com/Astemirdum/court-booking/reservation/internal/model"
	_ "github.com/Astemirdum/court-booking/reservation/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	reservationSvc ReservationService
	facilitySvc    FacilityService
	authCfg        auth.Config
	log            *zap.Logger
}

func New(reservationSvc ReservationService, facilitySvc FacilityService, authCfg auth.Config, log *zap.Logger) *Handler {
	return &Handler{
		reservationSvc: reservationSvc,
		facilitySvc:    facilitySvc,
		authCfg:        authCfg,
		log:            log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	api.GET("/facilities", h.ListFacilities)
	api.GET("/facilities/:facilityId", h.GetFacility)

	api = api.Group("", md.Authentication(h.authCfg))
	api.POST("/facilities", h.CreateFacility)
	api.PATCH("/facilities/:facilityId", h.UpdateFacility)

	api.POST("/reservations", h.CreateReservation)
	api.GET("/reservations", h.ListReservations)
	api.GET("/reservations/all", h.ListAllReservations)
	api.GET("/reservations/:reservationId", h.GetReservation)
	api.PATCH("/reservations/:reservationId/status", h.TransitionStatus)
	api.DELETE("/reservations/:reservationId", h.CancelReservation)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func callerOf(c echo.Context) (auth.Caller, error) {
	caller, err := auth.GetCaller(c.Request().Context())
	if err != nil {
		return auth.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return caller, nil
}

func paging(c echo.Context) (page, size int, err error) {
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if page, err = strconv.Atoi(pageParam); err != nil || page < 0 {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "page is invalid")
		}
	}
	if sizeParam := c.QueryParam("size"); sizeParam != "" {
		if size, err = strconv.Atoi(sizeParam); err != nil || size < 0 {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "size is invalid")
		}
	}
	return page, size, nil
}

func (h *Handler) CreateReservation(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req model.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return validationError(err)
	}

	res, err := h.reservationSvc.Create(c.Request().Context(), caller, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListReservations(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	items, err := h.reservationSvc.ListForUser(c.Request().Context(), caller, c.QueryParam("userId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListAllReservations(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	filter := model.ReservationFilter{
		FacilityID: c.QueryParam("facilityId"),
		UserID:     c.QueryParam("userId"),
	}
	if filter.Page, filter.Size, err = paging(c); err != nil {
		return err
	}
	if statusParam := c.QueryParam("status"); statusParam != "" {
		if filter.Status, err = model.ParseStatus(statusParam); err != nil {
			return httpError(err)
		}
	}
	if dateParam := c.QueryParam("date"); dateParam != "" {
		date, err := model.ParseDate(dateParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.Date = &date
	}

	list, err := h.reservationSvc.ListAll(c.Request().Context(), caller, filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetReservation(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	res, err := h.reservationSvc.Get(c.Request().Context(), caller, c.Param("reservationId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) TransitionStatus(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req model.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return validationError(err)
	}
	target, err := model.ParseStatus(req.Status)
	if err != nil {
		return httpError(err)
	}

	res, err := h.reservationSvc.TransitionStatus(c.Request().Context(), caller, c.Param("reservationId"), target, req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) CancelReservation(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	res, err := h.reservationSvc.TransitionStatus(c.Request().Context(), caller, c.Param("reservationId"), model.StatusCancelled, "")
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ListFacilities(c echo.Context) error {
	page, size, err := paging(c)
	if err != nil {
		return err
	}
	var showAll bool
	if showAllParam := c.QueryParam("showAll"); showAllParam != "" {
		if showAll, err = strconv.ParseBool(showAllParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "showAll is invalid")
		}
	}
	list, err := h.facilitySvc.ListFacilities(c.Request().Context(), showAll, page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetFacility(c echo.Context) error {
	f, err := h.facilitySvc.GetFacility(c.Request().Context(), c.Param("facilityId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) CreateFacility(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req model.CreateFacilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return validationError(err)
	}
	f, err := h.facilitySvc.CreateFacility(c.Request().Context(), caller, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) UpdateFacility(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var patch model.FacilityPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(patch); err != nil {
		return validationError(err)
	}
	f, err := h.facilitySvc.UpdateFacility(c.Request().Context(), caller, c.Param("facilityId"), patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, f)
}
