package app

import (
	"time"

	"github.com/Astemirdum/court-booking/reservation/internal/model"
)

// defaultFacilities mirrors the rows seeded by migrations/00002_facilities.sql.
func defaultFacilities() []model.Facility {
	now := time.Now().UTC()
	facility := func(id, name string, price int64) model.Facility {
		return model.Facility{ID: id, Name: name, PricePerHour: price, Active: true, CreatedAt: now, UpdatedAt: now}
	}
	return []model.Facility{
		facility("9c2f6b1e-4a3d-4d8e-9f1a-2b7c5e8d1a01", "Tennis court 1", 6000),
		facility("9c2f6b1e-4a3d-4d8e-9f1a-2b7c5e8d1a02", "Tennis court 2", 6000),
		facility("9c2f6b1e-4a3d-4d8e-9f1a-2b7c5e8d1a03", "Football pitch", 15000),
		facility("9c2f6b1e-4a3d-4d8e-9f1a-2b7c5e8d1a04", "Padel court", 8000),
	}
}
