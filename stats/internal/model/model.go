package model

import "time"

// FacilityStats counts lifecycle events seen for one facility.
type FacilityStats struct {
	FacilityID  string    `json:"facilityId" db:"facility_id"`
	Created     int64     `json:"created" db:"created"`
	Confirmed   int64     `json:"confirmed" db:"confirmed"`
	Rejected    int64     `json:"rejected" db:"rejected"`
	Cancelled   int64     `json:"cancelled" db:"cancelled"`
	LastUpdated time.Time `json:"lastUpdated" db:"last_updated"`
}

type StatsInfo struct {
	Data []FacilityStats `json:"data"`
}
