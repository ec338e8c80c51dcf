package model

import "time"

// Audited entity types.
const (
	EntityArea     = "Area"
	EntityPallet   = "Pallet"
	EntityMovement = "Movement"
)

// Audit actions.
const (
	ActionCreate    = "CREATE"
	ActionUpdate    = "UPDATE"
	ActionDelete    = "DELETE"
	ActionConfirmIn = "CONFIRM_IN"
)

// Snapshot is an opaque structured capture of an entity's state.
type Snapshot map[string]any

// AuditEntry is an immutable record of one mutation.
type AuditEntry struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	ChangedBy  *int64    `json:"changed_by"`
	ChangedAt  time.Time `json:"changed_at"`
	Before     Snapshot  `json:"before,omitempty"`
	After      Snapshot  `json:"after,omitempty"`
}

// AuditFilter selects audit entries for the query surface.
type AuditFilter struct {
	EntityType    string
	EntityID      string
	Action        string
	PalletBarcode string
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}
