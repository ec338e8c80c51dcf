// Package audit records immutable before/after snapshots of entity mutations.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/erazemk/palete/internal/model"
	"github.com/erazemk/palete/internal/store"
)

// Recorder appends audit entries. Implementations must return an error when
// the entry was not written; callers treat that as a failure of the whole
// operation.
type Recorder interface {
	Log(ctx context.Context, e model.AuditEntry) error
}

// SQLRecorder writes audit entries to the audit_log table. When ctx carries a
// transaction the entry is written inside it.
type SQLRecorder struct {
	DB  *sql.DB
	Now func() time.Time
}

// NewSQLRecorder creates a recorder backed by db.
func NewSQLRecorder(db *sql.DB) *SQLRecorder {
	return &SQLRecorder{DB: db, Now: time.Now}
}

// Log implements Recorder.
func (r *SQLRecorder) Log(ctx context.Context, e model.AuditEntry) error {
	if e.EntityType == "" || e.EntityID == "" || e.Action == "" {
		return fmt.Errorf("audit entry needs entity type, id and action: %w", model.ErrInvalidInput)
	}
	if e.ChangedAt.IsZero() {
		e.ChangedAt = r.Now()
	}
	if _, err := store.InsertAuditEntry(ctx, r.DB, &e); err != nil {
		return fmt.Errorf("recording %s %s %s: %w", e.Action, e.EntityType, e.EntityID, err)
	}
	return nil
}

// Snapshot captures v as a generic key/value record using its JSON form.
// A nil v yields a nil snapshot.
func Snapshot(v any) (model.Snapshot, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling snapshot: %w", err)
	}
	var s model.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return s, nil
}

// ID formats a numeric entity ID.
func ID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Entry builds an audit entry from before and after values, snapshotting each
// non-nil value.
func Entry(entityType string, entityID int64, action string, changedBy *int64, before, after any) (model.AuditEntry, error) {
	e := model.AuditEntry{
		EntityType: entityType,
		EntityID:   ID(entityID),
		Action:     action,
		ChangedBy:  changedBy,
	}
	var err error
	if e.Before, err = Snapshot(before); err != nil {
		return e, err
	}
	if e.After, err = Snapshot(after); err != nil {
		return e, err
	}
	return e, nil
}
