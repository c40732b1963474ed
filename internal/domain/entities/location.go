package entities

import (
	"time"
)

// LocationType represents the category of a named location
type LocationType string

const (
	LocationTypeBase     LocationType = "base"
	LocationTypeAED      LocationType = "aed"
	LocationTypeIncident LocationType = "incident"
	LocationTypeHospital LocationType = "hospital"
	LocationTypeWaypoint LocationType = "waypoint"
	LocationTypeOther    LocationType = "other"
)

var locationTypeRank = map[LocationType]int{
	LocationTypeHospital: 0,
	LocationTypeBase:     1,
	LocationTypeAED:      2,
	LocationTypeOther:    3,
	LocationTypeIncident: 4,
	LocationTypeWaypoint: 5,
}

// Valid reports whether the type is a known value
func (t LocationType) Valid() bool {
	_, ok := locationTypeRank[t]
	return ok
}

// Rank returns the display rank of the type
func (t LocationType) Rank() int {
	return locationTypeRank[t]
}

// Location represents a named place a waypoint can reference
type Location struct {
	ID        string       `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Type      LocationType `json:"type" db:"type"`
	Street    string       `json:"street" db:"street"`
	City      string       `json:"city" db:"city"`
	State     string       `json:"state" db:"state"`
	ZipCode   string       `json:"zip_code" db:"zip_code"`
	Country   string       `json:"country" db:"country"`
	Point     Point        `json:"point"`
	Comment   string       `json:"comment" db:"comment"`
	UpdatedBy string       `json:"updated_by" db:"updated_by"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}
