package model

import (
	"time"
)

const DefaultRejectionReason = "rejected by administrator"

type Reservation struct {
	ID              string    `json:"id"`
	FacilityID      string    `json:"facilityId"`
	UserID          string    `json:"userId"`
	Date            Date      `json:"date"`
	StartTime       TimeOfDay `json:"startTime"`
	EndTime         TimeOfDay `json:"endTime"`
	Status          Status    `json:"status"`
	RejectionReason *string   `json:"rejectionReason,omitempty"`
	TotalPrice      int64     `json:"totalPrice"`
	Version         int       `json:"version"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ReservationPatch is applied only while the stored version equals ExpectedVersion.
type ReservationPatch struct {
	Status          Status
	RejectionReason *string
	UpdatedAt       time.Time
	ExpectedVersion int
}

type CreateReservationRequest struct {
	FacilityID string    `json:"facilityId" validate:"required"`
	UserID     string    `json:"userId"`
	Date       Date      `json:"date"`
	StartTime  TimeOfDay `json:"startTime"`
	EndTime    TimeOfDay `json:"endTime"`
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

type ReservationFilter struct {
	FacilityID string
	UserID     string
	Status     Status
	Date       *Date
	Page       int
	Size       int
}

type ListReservations struct {
	Paging `json:",inline"`
	Items  []Reservation `json:"items"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type Facility struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	PricePerHour int64     `json:"pricePerHour" db:"price_per_hour"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Price of booking the facility from start to end.
func (f Facility) Price(start, end TimeOfDay) int64 {
	return f.PricePerHour * int64(end-start) / 60
}

type CreateFacilityRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	PricePerHour int64  `json:"pricePerHour" validate:"gte=0"`
	Active       *bool  `json:"active"`
}

type FacilityPatch struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	PricePerHour *int64  `json:"pricePerHour" validate:"omitempty,gte=0"`
	Active       *bool   `json:"active"`
}

type ListFacilities struct {
	Paging `json:",inline"`
	Items  []Facility `json:"items"`
}
