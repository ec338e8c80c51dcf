package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/palete/internal/model"
)

var palletColumns = []string{
	"p.id", "p.barcode", "p.type", "p.size", "p.condition_status", "p.current_area_id", "p.owner",
	"p.created_by", "p.created_at", "p.updated_at", "p.deleted_at", "a.name", "u.username",
}

func palletSelect() sq.SelectBuilder {
	return sq.Select(palletColumns...).
		From("pallets p").
		LeftJoin("areas a ON a.id = p.current_area_id").
		LeftJoin("users u ON u.id = p.created_by")
}

// CreatePallet creates a new pallet. A barcode already used by an active
// pallet (ignoring case) yields model.ErrConflictingIdentity.
func CreatePallet(ctx context.Context, db *sql.DB, p *model.Pallet) (*model.Pallet, error) {
	result, err := conn(ctx, db).ExecContext(ctx,
		`INSERT INTO pallets (barcode, type, size, condition_status, current_area_id, owner, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Barcode, nullString(p.Type), nullString(p.Size), p.ConditionStatus, p.CurrentAreaID,
		nullString(p.Owner), p.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("barcode %q already in use: %w", p.Barcode, model.ErrConflictingIdentity)
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("pallet references: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("creating pallet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting pallet id: %w", err)
	}

	return GetPallet(ctx, db, id)
}

// GetPallet returns an active (not soft-deleted) pallet by ID.
func GetPallet(ctx context.Context, db *sql.DB, id int64) (*model.Pallet, error) {
	query, args, err := palletSelect().
		Where(sq.Eq{"p.id": id, "p.deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building pallet query: %w", err)
	}

	p, err := scanPallet(conn(ctx, db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("pallet", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting pallet: %w", err)
	}
	return p, nil
}

// GetPalletByBarcode returns an active pallet by barcode. Surrounding
// whitespace is ignored and the comparison is case-insensitive.
func GetPalletByBarcode(ctx context.Context, db *sql.DB, barcode string) (*model.Pallet, error) {
	barcode = model.NormalizeBarcode(barcode)
	query, args, err := palletSelect().
		Where(sq.Expr("p.barcode = ? COLLATE NOCASE", barcode)).
		Where(sq.Eq{"p.deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building pallet query: %w", err)
	}

	p, err := scanPallet(conn(ctx, db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pallet %q: %w", barcode, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting pallet by barcode: %w", err)
	}
	return p, nil
}

// ResolvePalletBarcode returns the ID of the pallet with the given barcode,
// preferring an active pallet over soft-deleted ones.
func ResolvePalletBarcode(ctx context.Context, db *sql.DB, barcode string) (int64, error) {
	var id int64
	err := conn(ctx, db).QueryRowContext(ctx,
		`SELECT id FROM pallets WHERE barcode = ? COLLATE NOCASE
		 ORDER BY deleted_at IS NULL DESC, id DESC LIMIT 1`,
		model.NormalizeBarcode(barcode),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("pallet %q: %w", barcode, model.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving pallet barcode: %w", err)
	}
	return id, nil
}

// ListPallets returns a page of active pallets, newest first.
func ListPallets(ctx context.Context, db *sql.DB, f model.PalletFilter) (*model.Page[model.Pallet], error) {
	f.Page, f.Limit = model.ClampPage(f.Page, f.Limit)

	where := sq.And{sq.Eq{"p.deleted_at": nil}}
	if f.Barcode != "" {
		where = append(where, sq.Like{"p.barcode": "%" + model.NormalizeBarcode(f.Barcode) + "%"})
	}
	if f.CurrentAreaID > 0 {
		where = append(where, sq.Eq{"p.current_area_id": f.CurrentAreaID})
	}
	if f.ConditionStatus != "" {
		where = append(where, sq.Eq{"p.condition_status": f.ConditionStatus})
	}

	q := conn(ctx, db)

	countQuery, countArgs, err := sq.Select("COUNT(*)").From("pallets p").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building pallet count: %w", err)
	}
	var total int
	if err := q.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting pallets: %w", err)
	}

	query, args, err := palletSelect().
		Where(where).
		OrderBy("p.created_at DESC", "p.id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(model.Offset(f.Page, f.Limit))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building pallet list: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing pallets: %w", err)
	}
	defer rows.Close()

	page := &model.Page[model.Pallet]{Items: []model.Pallet{}, Total: total, Page: f.Page, Limit: f.Limit}
	for rows.Next() {
		p, err := scanPallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pallet: %w", err)
		}
		page.Items = append(page.Items, *p)
	}
	return page, rows.Err()
}

// UpdatePallet writes a pallet's type, size, owner, condition and current area.
func UpdatePallet(ctx context.Context, db *sql.DB, p *model.Pallet) error {
	result, err := conn(ctx, db).ExecContext(ctx,
		`UPDATE pallets SET type = ?, size = ?, owner = ?, condition_status = ?, current_area_id = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		nullString(p.Type), nullString(p.Size), nullString(p.Owner), p.ConditionStatus, p.CurrentAreaID, p.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("current area: %w", model.ErrNotFound)
		}
		return fmt.Errorf("updating pallet: %w", err)
	}
	return requireRow(result, "pallet", p.ID)
}

// SetPalletArea sets a pallet's current area.
func SetPalletArea(ctx context.Context, db *sql.DB, palletID, areaID int64, at time.Time) error {
	result, err := conn(ctx, db).ExecContext(ctx,
		`UPDATE pallets SET current_area_id = ?, updated_at = ? WHERE id = ?`,
		areaID, utc(at), palletID,
	)
	if err != nil {
		return fmt.Errorf("setting pallet area: %w", err)
	}
	return requireRow(result, "pallet", palletID)
}

// DeletePallet soft-deletes a pallet.
func DeletePallet(ctx context.Context, db *sql.DB, id int64) error {
	result, err := conn(ctx, db).ExecContext(ctx,
		`UPDATE pallets SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting pallet: %w", err)
	}
	return requireRow(result, "pallet", id)
}

func scanPallet(s scanner) (*model.Pallet, error) {
	p := &model.Pallet{}
	var typ, size, owner, areaName, creator sql.NullString
	err := s.Scan(&p.ID, &p.Barcode, &typ, &size, &p.ConditionStatus, &p.CurrentAreaID, &owner,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt, &areaName, &creator)
	if err != nil {
		return nil, err
	}
	p.Type = typ.String
	p.Size = size.String
	p.Owner = owner.String
	p.CurrentAreaName = areaName.String
	p.CreatorUsername = creator.String
	return p, nil
}
