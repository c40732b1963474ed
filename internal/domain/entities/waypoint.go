package entities

import (
	"time"
)

// WaypointStatus represents the visit state of a waypoint
type WaypointStatus string

const (
	WaypointStatusNotVisited WaypointStatus = "not_visited"
	WaypointStatusVisiting   WaypointStatus = "visiting"
	WaypointStatusVisited    WaypointStatus = "visited"
)

var waypointStatuses = map[WaypointStatus]struct{}{
	WaypointStatusNotVisited: {},
	WaypointStatusVisiting:   {},
	WaypointStatusVisited:    {},
}

// Valid reports whether the status is a known value
func (s WaypointStatus) Valid() bool {
	_, ok := waypointStatuses[s]
	return ok
}

// Waypoint represents one ordered stop on an assignment's route.
// An inactive waypoint is a soft remove: it is excluded from the active
// route but never physically deleted.
type Waypoint struct {
	ID              string         `json:"id" db:"id"`
	AmbulanceCallID string         `json:"ambulance_call_id" db:"ambulance_call_id"`
	Order           int            `json:"order" db:"waypoint_order"`
	Status          WaypointStatus `json:"status" db:"status"`
	Active          bool           `json:"active" db:"active"`
	LocationID      *string        `json:"location_id" db:"location_id"`
	UpdatedBy       string         `json:"updated_by" db:"updated_by"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// IsVisited reports whether the waypoint has been visited
func (w *Waypoint) IsVisited() bool {
	return w.Status == WaypointStatusVisited
}

// IsVisiting reports whether the waypoint is currently being visited
func (w *Waypoint) IsVisiting() bool {
	return w.Status == WaypointStatusVisiting
}
