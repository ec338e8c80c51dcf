package model

import (
	"strings"
	"time"
)

// Pallet is a physical pallet identified by its barcode.
type Pallet struct {
	ID              int64      `json:"id"`
	Barcode         string     `json:"barcode"`
	Type            string     `json:"type,omitempty"`
	Size            string     `json:"size,omitempty"`
	ConditionStatus string     `json:"condition_status"`
	CurrentAreaID   *int64     `json:"current_area_id,omitempty"`
	Owner           string     `json:"owner,omitempty"`
	CreatedBy       int64      `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	CurrentAreaName string `json:"current_area_name,omitempty"`
	CreatorUsername string `json:"creator_username,omitempty"`
}

// Pallet condition statuses.
const (
	ConditionGood    = "Good"
	ConditionDamaged = "Damaged"
	ConditionLost    = "Lost"
	ConditionStolen  = "Stolen"
	ConditionUnfit   = "Unfit"
)

// ValidCondition reports whether s is a known condition status.
func ValidCondition(s string) bool {
	switch s {
	case ConditionGood, ConditionDamaged, ConditionLost, ConditionStolen, ConditionUnfit:
		return true
	}
	return false
}

// NormalizeBarcode trims surrounding whitespace. Lookups compare case-insensitively.
func NormalizeBarcode(barcode string) string {
	return strings.TrimSpace(barcode)
}

// PalletFilter selects pallets for listing.
type PalletFilter struct {
	Barcode         string // substring match
	CurrentAreaID   int64
	ConditionStatus string
	Page            int
	Limit           int
}

// PalletPatch holds the fields of a pallet update. Nil fields are left unchanged.
type PalletPatch struct {
	Type               *string `json:"type"`
	Size               *string `json:"size"`
	Owner              *string `json:"owner"`
	ConditionStatus    *string `json:"condition_status"`
	StatusChangeReason string  `json:"status_change_reason"`
	CurrentAreaID      *int64  `json:"current_area_id"`
}
