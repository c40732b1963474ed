package entities

import (
	"time"
)

// AmbulanceStatus represents the operational status of an ambulance
type AmbulanceStatus string

const (
	AmbulanceStatusUnknown       AmbulanceStatus = "unknown"
	AmbulanceStatusAvailable     AmbulanceStatus = "available"
	AmbulanceStatusOutOfService  AmbulanceStatus = "out_of_service"
	AmbulanceStatusPatientBound  AmbulanceStatus = "patient_bound"
	AmbulanceStatusAtPatient     AmbulanceStatus = "at_patient"
	AmbulanceStatusHospitalBound AmbulanceStatus = "hospital_bound"
	AmbulanceStatusAtHospital    AmbulanceStatus = "at_hospital"
	AmbulanceStatusBaseBound     AmbulanceStatus = "base_bound"
	AmbulanceStatusAtBase        AmbulanceStatus = "at_base"
	AmbulanceStatusWaypointBound AmbulanceStatus = "waypoint_bound"
	AmbulanceStatusAtWaypoint    AmbulanceStatus = "at_waypoint"
)

// ambulanceStatusRank is the declared display order, sourced once.
var ambulanceStatusRank = map[AmbulanceStatus]int{
	AmbulanceStatusAvailable:     0,
	AmbulanceStatusPatientBound:  1,
	AmbulanceStatusAtPatient:     2,
	AmbulanceStatusHospitalBound: 3,
	AmbulanceStatusAtHospital:    4,
	AmbulanceStatusBaseBound:     5,
	AmbulanceStatusAtBase:        6,
	AmbulanceStatusWaypointBound: 7,
	AmbulanceStatusAtWaypoint:    8,
	AmbulanceStatusOutOfService:  9,
	AmbulanceStatusUnknown:       10,
}

// Valid reports whether the status is a known value
func (s AmbulanceStatus) Valid() bool {
	_, ok := ambulanceStatusRank[s]
	return ok
}

// Rank returns the display rank of the status
func (s AmbulanceStatus) Rank() int {
	return ambulanceStatusRank[s]
}

// AmbulanceCapability represents the care level an ambulance can deliver
type AmbulanceCapability string

const (
	AmbulanceCapabilityBasic    AmbulanceCapability = "basic"
	AmbulanceCapabilityAdvanced AmbulanceCapability = "advanced"
	AmbulanceCapabilityRescue   AmbulanceCapability = "rescue"
)

var ambulanceCapabilityRank = map[AmbulanceCapability]int{
	AmbulanceCapabilityBasic:    0,
	AmbulanceCapabilityAdvanced: 1,
	AmbulanceCapabilityRescue:   2,
}

// Valid reports whether the capability is a known value
func (c AmbulanceCapability) Valid() bool {
	_, ok := ambulanceCapabilityRank[c]
	return ok
}

// Rank returns the display rank of the capability
func (c AmbulanceCapability) Rank() int {
	return ambulanceCapabilityRank[c]
}

// Ambulance represents a fleet vehicle and its last reported state
type Ambulance struct {
	ID               string              `json:"id" db:"id"`
	Identifier       string              `json:"identifier" db:"identifier"`
	Capability       AmbulanceCapability `json:"capability" db:"capability"`
	Status           AmbulanceStatus     `json:"status" db:"status"`
	Orientation      float64             `json:"orientation" db:"orientation"`
	Location         Point               `json:"location"`
	Timestamp        time.Time           `json:"timestamp" db:"timestamp"`
	LocationClientID *string             `json:"location_client_id" db:"location_client_id"`
	EquipmentHolderID string             `json:"equipment_holder_id" db:"equipment_holder_id"`
	Comment          string              `json:"comment" db:"comment"`
	UpdatedBy        string              `json:"updated_by" db:"updated_by"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
}

// AmbulanceUpdate is an immutable history snapshot of an ambulance save.
// Rows are ordered by (ambulance_id, timestamp) and never mutated.
type AmbulanceUpdate struct {
	ID          string          `json:"id" db:"id"`
	AmbulanceID string          `json:"ambulance_id" db:"ambulance_id"`
	Status      AmbulanceStatus `json:"status" db:"status"`
	Orientation float64         `json:"orientation" db:"orientation"`
	Location    Point           `json:"location"`
	Timestamp   time.Time       `json:"timestamp" db:"timestamp"`
	Comment     string          `json:"comment" db:"comment"`
	UpdatedBy   string          `json:"updated_by" db:"updated_by"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
