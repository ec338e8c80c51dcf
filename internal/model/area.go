package model

import "time"

// Area is a storage location pallets move between. Areas form a tree via ParentID.
type Area struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	Capacity  *int      `json:"capacity,omitempty"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ParentName string `json:"parent_name,omitempty"`
}

// AreaPatch holds the fields of an area update. Nil fields are left unchanged.
type AreaPatch struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Capacity    *int    `json:"capacity"`
	ParentID    *int64  `json:"parent_id"`
	ClearParent bool    `json:"clear_parent"`
}
