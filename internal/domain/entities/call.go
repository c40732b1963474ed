package entities

import (
	"time"
)

// CallStatus represents the lifecycle state of a call
type CallStatus string

const (
	CallStatusPending CallStatus = "pending"
	CallStatusStarted CallStatus = "started"
	CallStatusEnded   CallStatus = "ended"
)

var callStatusRank = map[CallStatus]int{
	CallStatusPending: 0,
	CallStatusStarted: 1,
	CallStatusEnded:   2,
}

// Valid reports whether the status is a known value
func (s CallStatus) Valid() bool {
	_, ok := callStatusRank[s]
	return ok
}

// Rank returns the lifecycle rank of the status
func (s CallStatus) Rank() int {
	return callStatusRank[s]
}

// CallPriority represents the clinical priority of a call
type CallPriority string

const (
	CallPriorityResuscitation CallPriority = "resuscitation"
	CallPriorityEmergent      CallPriority = "emergent"
	CallPriorityUrgent        CallPriority = "urgent"
	CallPriorityLessUrgent    CallPriority = "less_urgent"
	CallPriorityNotUrgent     CallPriority = "not_urgent"
	CallPriorityOmega         CallPriority = "omega"
)

var callPriorityRank = map[CallPriority]int{
	CallPriorityResuscitation: 0,
	CallPriorityEmergent:      1,
	CallPriorityUrgent:        2,
	CallPriorityLessUrgent:    3,
	CallPriorityNotUrgent:     4,
	CallPriorityOmega:         5,
}

// Valid reports whether the priority is a known value
func (p CallPriority) Valid() bool {
	_, ok := callPriorityRank[p]
	return ok
}

// Rank returns the display rank of the priority
func (p CallPriority) Rank() int {
	return callPriorityRank[p]
}

// Call represents an incident from creation to termination
type Call struct {
	ID        string       `json:"id" db:"id"`
	Status    CallStatus   `json:"status" db:"status"`
	Details   string       `json:"details" db:"details"`
	Priority  CallPriority `json:"priority" db:"priority"`
	PendingAt *time.Time   `json:"pending_at" db:"pending_at"`
	StartedAt *time.Time   `json:"started_at" db:"started_at"`
	EndedAt   *time.Time   `json:"ended_at" db:"ended_at"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedBy string       `json:"updated_by" db:"updated_by"`
}

// AmbulanceCallStatus represents the state of an ambulance assignment
type AmbulanceCallStatus string

const (
	AmbulanceCallStatusRequested AmbulanceCallStatus = "requested"
	AmbulanceCallStatusOngoing   AmbulanceCallStatus = "ongoing"
	AmbulanceCallStatusDeclined  AmbulanceCallStatus = "declined"
	AmbulanceCallStatusSuspended AmbulanceCallStatus = "suspended"
	AmbulanceCallStatusCompleted AmbulanceCallStatus = "completed"
)

var ambulanceCallStatuses = map[AmbulanceCallStatus]struct{}{
	AmbulanceCallStatusRequested: {},
	AmbulanceCallStatusOngoing:   {},
	AmbulanceCallStatusDeclined:  {},
	AmbulanceCallStatusSuspended: {},
	AmbulanceCallStatusCompleted: {},
}

// Valid reports whether the status is a known value
func (s AmbulanceCallStatus) Valid() bool {
	_, ok := ambulanceCallStatuses[s]
	return ok
}

// AmbulanceCall represents the assignment of one ambulance to one call.
// The (call, ambulance) pair is unique.
type AmbulanceCall struct {
	ID          string              `json:"id" db:"id"`
	CallID      string              `json:"call_id" db:"call_id"`
	AmbulanceID string              `json:"ambulance_id" db:"ambulance_id"`
	Status      AmbulanceCallStatus `json:"status" db:"status"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" db:"updated_at"`
}

// AmbulanceCallHistory is an append-only copy of an assignment save.
// Rows are never mutated or deleted.
type AmbulanceCallHistory struct {
	ID              string              `json:"id" db:"id"`
	AmbulanceCallID string              `json:"ambulance_call_id" db:"ambulance_call_id"`
	CallID          string              `json:"call_id" db:"call_id"`
	AmbulanceID     string              `json:"ambulance_id" db:"ambulance_id"`
	Status          AmbulanceCallStatus `json:"status" db:"status"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
}
