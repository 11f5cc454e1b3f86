package model

import (
	"github.com/Astemirdum/court-booking/reservation/internal/errs"
	"github.com/pkg/errors"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses hold their slot; rejected and cancelled reservations free it.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", errors.Wrapf(errs.ErrUnknownStatus, "%q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// CanTransitionTo is the reservation state machine:
//
//	pending   -> confirmed | rejected | cancelled
//	confirmed -> cancelled
//
// rejected and cancelled are terminal.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusRejected || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusCancelled
	case StatusRejected, StatusCancelled:
		return false
	}
	return false
}

func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
