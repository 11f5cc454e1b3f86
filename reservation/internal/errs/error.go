package errs

import (
	"github.com/pkg/errors"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidDate         = errors.New("date is in the past")
	ErrInvalidTimeRange    = errors.New("start time must be before end time")
	ErrFacilityUnavailable = errors.New("facility is unavailable")
	ErrSlotConflict        = errors.New("time slot is already booked")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidTransition   = errors.New("status transition is not allowed")
	ErrConflict            = errors.New("reservation was modified concurrently, retry")
	ErrUnknownStatus       = errors.New("unknown reservation status")
)

// IsRetryable reports whether re-reading and re-attempting the operation may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

const ValidationFailed = "validation failed"

// ValidationErrorResponse maps each rejected field to the rule it broke.
type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

var classified = []error{
	ErrNotFound, ErrInvalidDate, ErrInvalidTimeRange, ErrFacilityUnavailable, ErrSlotConflict,
	ErrForbidden, ErrInvalidTransition, ErrConflict, ErrUnknownStatus,
}

// IsClassified reports whether err is one of the errors above.
func IsClassified(err error) bool {
	for _, target := range classified {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
