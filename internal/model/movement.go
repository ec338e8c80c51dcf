package model

import (
	"fmt"
	"strings"
	"time"
)

// MovementStatus is the lifecycle state of a movement.
type MovementStatus string

// Movement statuses. Cancelled is reserved: nothing transitions into it yet.
const (
	MovementPending   MovementStatus = "Pending"
	MovementCompleted MovementStatus = "Completed"
	MovementCancelled MovementStatus = "Cancelled"
)

// ParseMovementStatus matches s case-insensitively against the known statuses.
func ParseMovementStatus(s string) (MovementStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range []MovementStatus{MovementPending, MovementCompleted, MovementCancelled} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown movement status %q: %w", s, ErrInvalidInput)
}

// Movement is a single transfer of a pallet from one area to another.
type Movement struct {
	ID         int64          `json:"id"`
	PalletID   int64          `json:"pallet_id"`
	FromAreaID *int64         `json:"from_area_id"`
	ToAreaID   int64          `json:"to_area_id"`
	OutBy      int64          `json:"out_by"`
	OutAt      time.Time      `json:"out_at"`
	ETA        *time.Time     `json:"eta,omitempty"`
	InBy       *int64         `json:"in_by"`
	InAt       *time.Time     `json:"in_at"`
	Status     MovementStatus `json:"status"`
	Notes      string         `json:"notes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// MovementView is a movement joined with its pallet, area and user summaries.
type MovementView struct {
	Movement

	PalletBarcode string `json:"pallet_barcode"`
	FromAreaName  string `json:"from_area_name,omitempty"`
	ToAreaName    string `json:"to_area_name"`
	OutByUsername string `json:"out_by_username"`
	InByUsername  string `json:"in_by_username,omitempty"`
}

// MovementFilter selects movements for listing.
type MovementFilter struct {
	PalletID   int64
	Status     MovementStatus
	FromAreaID int64
	ToAreaID   int64
	OrderBy    string
	Order      string
	Page       int
	Limit      int
}

// Movement list ordering columns.
const (
	OrderByOutAt     = "out_at"
	OrderByInAt      = "in_at"
	OrderByCreatedAt = "created_at"
)

// Normalize applies defaults and clamps out-of-range values.
func (f *MovementFilter) Normalize() {
	switch f.OrderBy {
	case OrderByOutAt, OrderByInAt, OrderByCreatedAt:
	default:
		f.OrderBy = OrderByOutAt
	}
	f.Order = strings.ToUpper(f.Order)
	if f.Order != "ASC" {
		f.Order = "DESC"
	}
	f.Page, f.Limit = ClampPage(f.Page, f.Limit)
}
