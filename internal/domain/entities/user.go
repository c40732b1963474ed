package entities

// User represents the identity permissions are resolved for
type User struct {
	ID          string `json:"id" db:"id"`
	Username    string `json:"username" db:"username"`
	IsStaff     bool   `json:"is_staff" db:"is_staff"`
	IsSuperuser bool   `json:"is_superuser" db:"is_superuser"`
}

// Group represents a permission group a user belongs to
type Group struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Priority int    `json:"priority" db:"priority"`
}

// ObjectGrant is one read/write grant over a single object, together with
// the equipment holder the grant derives to.
type ObjectGrant struct {
	ObjectID          string `json:"object_id" db:"object_id"`
	EquipmentHolderID string `json:"equipment_holder_id" db:"equipment_holder_id"`
	CanRead           bool   `json:"can_read" db:"can_read"`
	CanWrite          bool   `json:"can_write" db:"can_write"`
}
