package handler

import (
	"net/http"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/Astemirdum/court-booking/reservation/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var statusByErr = []struct {
	err  error
	code int
}{
	{errs.ErrInvalidTimeRange, http.StatusBadRequest},
	{errs.ErrInvalidDate, http.StatusBadRequest},
	{errs.ErrUnknownStatus, http.StatusBadRequest},
	{auth.ErrNoCaller, http.StatusUnauthorized},
	{errs.ErrForbidden, http.StatusForbidden},
	{errs.ErrNotFound, http.StatusNotFound},
	{errs.ErrSlotConflict, http.StatusConflict},
	{errs.ErrConflict, http.StatusConflict},
	{errs.ErrInvalidTransition, http.StatusConflict},
	{errs.ErrFacilityUnavailable, http.StatusUnprocessableEntity},
}

func httpError(err error) *echo.HTTPError {
	for _, e := range statusByErr {
		if errors.Is(err, e.err) {
			return echo.NewHTTPError(e.code, err.Error())
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func validationError(err error) *echo.HTTPError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp := errs.ValidationErrorResponse{
		Message: errs.ValidationFailed,
		Errors:  make(map[string]string, len(fieldErrs)),
	}
	for _, fe := range fieldErrs {
		resp.Errors[fe.Field()] = fe.Tag()
	}
	return echo.NewHTTPError(http.StatusBadRequest, resp)
}
