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

const movementColumns = `m.id, m.pallet_id, m.from_area_id, m.to_area_id, m.out_by, m.out_at, m.eta,
	m.in_by, m.in_at, m.status, m.notes, m.created_at, m.updated_at`

var movementViewColumns = []string{
	movementColumns, "p.barcode", "fa.name", "ta.name", "ou.username", "iu.username",
}

func movementViewSelect() sq.SelectBuilder {
	return sq.Select(movementViewColumns...).
		From("movements m").
		Join("pallets p ON p.id = m.pallet_id").
		LeftJoin("areas fa ON fa.id = m.from_area_id").
		Join("areas ta ON ta.id = m.to_area_id").
		Join("users ou ON ou.id = m.out_by").
		LeftJoin("users iu ON iu.id = m.in_by")
}

// CreateMovement inserts a movement and returns its generated ID.
func CreateMovement(ctx context.Context, db *sql.DB, m *model.Movement) (int64, error) {
	result, err := conn(ctx, db).ExecContext(ctx,
		`INSERT INTO movements (pallet_id, from_area_id, to_area_id, out_by, out_at, eta, status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.PalletID, m.FromAreaID, m.ToAreaID, m.OutBy, utc(m.OutAt), utcPtr(m.ETA),
		string(m.Status), nullString(m.Notes), utc(m.CreatedAt), utc(m.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("movement references: %w", model.ErrNotFound)
		}
		return 0, fmt.Errorf("creating movement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting movement id: %w", err)
	}
	return id, nil
}

// GetMovement returns a movement by ID.
func GetMovement(ctx context.Context, db *sql.DB, id int64) (*model.Movement, error) {
	m, err := scanMovement(conn(ctx, db).QueryRowContext(ctx,
		`SELECT `+movementColumns+` FROM movements m WHERE m.id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("movement", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting movement: %w", err)
	}
	return m, nil
}

// GetMovementView returns a movement joined with its pallet, areas and users.
func GetMovementView(ctx context.Context, db *sql.DB, id int64) (*model.MovementView, error) {
	query, args, err := movementViewSelect().Where(sq.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building movement query: %w", err)
	}

	v, err := scanMovementView(conn(ctx, db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("movement", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting movement: %w", err)
	}
	return v, nil
}

// ListMovements returns a page of movements matching f. The filter is
// normalized first, so out-of-range paging and unknown ordering are corrected
// rather than rejected.
func ListMovements(ctx context.Context, db *sql.DB, f model.MovementFilter) (*model.Page[model.MovementView], error) {
	f.Normalize()

	where := sq.And{}
	if f.PalletID > 0 {
		where = append(where, sq.Eq{"m.pallet_id": f.PalletID})
	}
	if f.Status != "" {
		where = append(where, sq.Eq{"m.status": string(f.Status)})
	}
	if f.FromAreaID > 0 {
		where = append(where, sq.Eq{"m.from_area_id": f.FromAreaID})
	}
	if f.ToAreaID > 0 {
		where = append(where, sq.Eq{"m.to_area_id": f.ToAreaID})
	}

	q := conn(ctx, db)

	countQuery, countArgs, err := sq.Select("COUNT(*)").From("movements m").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building movement count: %w", err)
	}
	var total int
	if err := q.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting movements: %w", err)
	}

	// OrderBy and Order are whitelisted by Normalize.
	query, args, err := movementViewSelect().
		Where(where).
		OrderBy(fmt.Sprintf("m.%s %s", f.OrderBy, f.Order), "m.id "+f.Order).
		Limit(uint64(f.Limit)).
		Offset(uint64(model.Offset(f.Page, f.Limit))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building movement list: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	page := &model.Page[model.MovementView]{Items: []model.MovementView{}, Total: total, Page: f.Page, Limit: f.Limit}
	for rows.Next() {
		v, err := scanMovementView(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		page.Items = append(page.Items, *v)
	}
	return page, rows.Err()
}

// CompletedMovements returns the Completed movements of a pallet, excluding
// the movement with ID exclude.
func CompletedMovements(ctx context.Context, db *sql.DB, palletID, exclude int64) ([]model.Movement, error) {
	rows, err := conn(ctx, db).QueryContext(ctx,
		`SELECT `+movementColumns+` FROM movements m
		 WHERE m.pallet_id = ? AND m.status = ? AND m.id <> ?
		 ORDER BY m.out_at, m.id`,
		palletID, string(model.MovementCompleted), exclude,
	)
	if err != nil {
		return nil, fmt.Errorf("listing completed movements: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		movements = append(movements, *m)
	}
	return movements, rows.Err()
}

// CountPendingMovements returns the number of Pending movements of a pallet.
func CountPendingMovements(ctx context.Context, db *sql.DB, palletID int64) (int, error) {
	var n int
	err := conn(ctx, db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movements WHERE pallet_id = ? AND status = ?`,
		palletID, string(model.MovementPending),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting pending movements: %w", err)
	}
	return n, nil
}

// CompleteMovement marks a Pending movement Completed. A movement that is no
// longer Pending yields model.ErrInvalidTransition.
func CompleteMovement(ctx context.Context, db *sql.DB, id, inBy int64, inAt time.Time, notes string, updatedAt time.Time) error {
	result, err := conn(ctx, db).ExecContext(ctx,
		`UPDATE movements SET in_by = ?, in_at = ?, status = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		inBy, utc(inAt), string(model.MovementCompleted), nullString(notes), utc(updatedAt),
		id, string(model.MovementPending),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("completing user: %w", model.ErrNotFound)
		}
		return fmt.Errorf("completing movement: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("movement %d is not pending: %w", id, model.ErrInvalidTransition)
	}
	return nil
}

func scanMovement(s scanner) (*model.Movement, error) {
	m := &model.Movement{}
	var status string
	var notes sql.NullString
	err := s.Scan(&m.ID, &m.PalletID, &m.FromAreaID, &m.ToAreaID, &m.OutBy, &m.OutAt, &m.ETA,
		&m.InBy, &m.InAt, &status, &notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Status = model.MovementStatus(status)
	m.Notes = notes.String
	return m, nil
}

func scanMovementView(s scanner) (*model.MovementView, error) {
	v := &model.MovementView{}
	m := &v.Movement
	var status string
	var notes, fromName, inByName sql.NullString
	err := s.Scan(&m.ID, &m.PalletID, &m.FromAreaID, &m.ToAreaID, &m.OutBy, &m.OutAt, &m.ETA,
		&m.InBy, &m.InAt, &status, &notes, &m.CreatedAt, &m.UpdatedAt,
		&v.PalletBarcode, &fromName, &v.ToAreaName, &v.OutByUsername, &inByName)
	if err != nil {
		return nil, err
	}
	m.Status = model.MovementStatus(status)
	m.Notes = notes.String
	v.FromAreaName = fromName.String
	v.InByUsername = inByName.String
	return v, nil
}
