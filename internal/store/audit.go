package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/palete/internal/model"
)

// InsertAuditEntry appends an entry to the audit log and returns its ID.
// Snapshots are stored as JSON text.
func InsertAuditEntry(ctx context.Context, db *sql.DB, e *model.AuditEntry) (int64, error) {
	before, err := encodeSnapshot(e.Before)
	if err != nil {
		return 0, fmt.Errorf("encoding before snapshot: %w", err)
	}
	after, err := encodeSnapshot(e.After)
	if err != nil {
		return 0, fmt.Errorf("encoding after snapshot: %w", err)
	}

	result, err := conn(ctx, db).ExecContext(ctx,
		`INSERT INTO audit_log (entity_type, entity_id, action, changed_by, changed_at, before_data, after_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.EntityType, e.EntityID, e.Action, e.ChangedBy, utc(e.ChangedAt), before, after,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting audit entry id: %w", err)
	}
	return id, nil
}

// ListAuditEntries returns a page of audit entries, newest first. A pallet
// barcode filter is resolved to the pallet's ID and selects that pallet's
// entries, so it cannot be combined with an entity type or ID. A barcode that
// matches no pallet yields an empty page.
func ListAuditEntries(ctx context.Context, db *sql.DB, f model.AuditFilter) (*model.Page[model.AuditEntry], error) {
	if f.PalletBarcode != "" && (f.EntityType != "" || f.EntityID != "") {
		return nil, fmt.Errorf("pallet barcode filter cannot be combined with entity type or id: %w", model.ErrInvalidInput)
	}
	f.Page, f.Limit = model.ClampPage(f.Page, f.Limit)
	page := &model.Page[model.AuditEntry]{Items: []model.AuditEntry{}, Page: f.Page, Limit: f.Limit}

	if f.PalletBarcode != "" {
		id, err := ResolvePalletBarcode(ctx, db, f.PalletBarcode)
		if errors.Is(err, model.ErrNotFound) {
			return page, nil
		}
		if err != nil {
			return nil, err
		}
		f.EntityType = model.EntityPallet
		f.EntityID = strconv.FormatInt(id, 10)
	}

	where := sq.And{}
	if f.EntityType != "" {
		where = append(where, sq.Eq{"entity_type": f.EntityType})
	}
	if f.EntityID != "" {
		where = append(where, sq.Eq{"entity_id": f.EntityID})
	}
	if f.Action != "" {
		where = append(where, sq.Eq{"action": f.Action})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"changed_at": utc(*f.From)})
	}
	if f.To != nil {
		where = append(where, sq.LtOrEq{"changed_at": utc(*f.To)})
	}

	q := conn(ctx, db)

	countQuery, countArgs, err := sq.Select("COUNT(*)").From("audit_log").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building audit count: %w", err)
	}
	if err := q.QueryRowContext(ctx, countQuery, countArgs...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("counting audit entries: %w", err)
	}

	query, args, err := sq.Select("id", "entity_type", "entity_id", "action", "changed_by", "changed_at", "before_data", "after_data").
		From("audit_log").
		Where(where).
		OrderBy("changed_at DESC", "id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(model.Offset(f.Page, f.Limit))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building audit list: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e model.AuditEntry
		var before, after sql.NullString
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.ChangedBy, &e.ChangedAt, &before, &after); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		if e.Before, err = decodeSnapshot(before); err != nil {
			return nil, fmt.Errorf("decoding before snapshot of entry %d: %w", e.ID, err)
		}
		if e.After, err = decodeSnapshot(after); err != nil {
			return nil, fmt.Errorf("decoding after snapshot of entry %d: %w", e.ID, err)
		}
		page.Items = append(page.Items, e)
	}
	return page, rows.Err()
}

func encodeSnapshot(s model.Snapshot) (sql.NullString, error) {
	if s == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeSnapshot(s sql.NullString) (model.Snapshot, error) {
	if !s.Valid {
		return nil, nil
	}
	var snap model.Snapshot
	if err := json.Unmarshal([]byte(s.String), &snap); err != nil {
		return nil, err
	}
	return snap, nil
}
