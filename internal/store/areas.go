package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/palete/internal/model"
)

const areaColumns = `a.id, a.name, a.type, a.capacity, a.parent_id, a.created_at, a.updated_at, p.name`

// CreateArea creates a new area.
func CreateArea(ctx context.Context, db *sql.DB, a *model.Area) (*model.Area, error) {
	result, err := conn(ctx, db).ExecContext(ctx,
		`INSERT INTO areas (name, type, capacity, parent_id) VALUES (?, ?, ?, ?)`,
		a.Name, nullString(a.Type), a.Capacity, a.ParentID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("parent area: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("creating area: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting area id: %w", err)
	}

	return GetArea(ctx, db, id)
}

// GetArea returns an area by ID.
func GetArea(ctx context.Context, db *sql.DB, id int64) (*model.Area, error) {
	row := conn(ctx, db).QueryRowContext(ctx,
		`SELECT `+areaColumns+`
		 FROM areas a LEFT JOIN areas p ON p.id = a.parent_id
		 WHERE a.id = ?`, id,
	)
	a, err := scanArea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("area", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting area: %w", err)
	}
	return a, nil
}

// ListAreas returns all areas ordered by name.
func ListAreas(ctx context.Context, db *sql.DB) ([]model.Area, error) {
	rows, err := conn(ctx, db).QueryContext(ctx,
		`SELECT `+areaColumns+`
		 FROM areas a LEFT JOIN areas p ON p.id = a.parent_id
		 ORDER BY a.name, a.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing areas: %w", err)
	}
	defer rows.Close()

	areas := []model.Area{}
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning area: %w", err)
		}
		areas = append(areas, *a)
	}
	return areas, rows.Err()
}

// UpdateArea writes an area's name, type, capacity and parent.
func UpdateArea(ctx context.Context, db *sql.DB, a *model.Area) error {
	result, err := conn(ctx, db).ExecContext(ctx,
		`UPDATE areas SET name = ?, type = ?, capacity = ?, parent_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		a.Name, nullString(a.Type), a.Capacity, a.ParentID, a.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("parent area: %w", model.ErrNotFound)
		}
		return fmt.Errorf("updating area: %w", err)
	}
	return requireRow(result, "area", a.ID)
}

// DeleteArea removes an area. Areas still referenced by pallets, movements or
// child areas cannot be deleted.
func DeleteArea(ctx context.Context, db *sql.DB, id int64) error {
	result, err := conn(ctx, db).ExecContext(ctx, `DELETE FROM areas WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("area %d is still referenced: %w", id, model.ErrInUse)
		}
		return fmt.Errorf("deleting area: %w", err)
	}
	return requireRow(result, "area", id)
}

// AreaAncestors returns the IDs on the parent chain starting at id, id included.
func AreaAncestors(ctx context.Context, db *sql.DB, id int64) ([]int64, error) {
	rows, err := conn(ctx, db).QueryContext(ctx,
		`WITH RECURSIVE chain(id, parent_id) AS (
		     SELECT id, parent_id FROM areas WHERE id = ?
		     UNION
		     SELECT a.id, a.parent_id FROM areas a JOIN chain c ON a.id = c.parent_id
		 )
		 SELECT id FROM chain`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("walking area parents: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var aid int64
		if err := rows.Scan(&aid); err != nil {
			return nil, fmt.Errorf("scanning area id: %w", err)
		}
		ids = append(ids, aid)
	}
	return ids, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArea(s scanner) (*model.Area, error) {
	a := &model.Area{}
	var typ, parentName sql.NullString
	var capacity sql.NullInt64
	if err := s.Scan(&a.ID, &a.Name, &typ, &capacity, &a.ParentID, &a.CreatedAt, &a.UpdatedAt, &parentName); err != nil {
		return nil, err
	}
	a.Type = typ.String
	a.ParentName = parentName.String
	if capacity.Valid {
		c := int(capacity.Int64)
		a.Capacity = &c
	}
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRow(result sql.Result, what string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return notFound(what, id)
	}
	return nil
}
