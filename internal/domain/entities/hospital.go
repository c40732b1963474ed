package entities

import (
	"time"
)

// Hospital represents a receiving facility. It exists here at the minimum
// the permission resolver needs: an object kind with an equipment holder.
type Hospital struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Location          Point     `json:"location"`
	EquipmentHolderID string    `json:"equipment_holder_id" db:"equipment_holder_id"`
	Comment           string    `json:"comment" db:"comment"`
	UpdatedBy         string    `json:"updated_by" db:"updated_by"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}
