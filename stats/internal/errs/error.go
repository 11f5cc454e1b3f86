package errs

import "github.com/pkg/errors"

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidEvent = errors.New("invalid reservation event")
)
