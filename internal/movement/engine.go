// Package movement implements the pallet movement lifecycle: starting a
// transfer, confirming its arrival, and keeping pallet locations and the
// audit trail consistent with the movement history.
package movement

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/palete/internal/audit"
	"github.com/erazemk/palete/internal/model"
	"github.com/erazemk/palete/internal/store"
)

// Operation names reported to the Observer.
const (
	OpStart   = "start"
	OpConfirm = "confirm"
)

// Observer receives the outcome of every lifecycle operation.
type Observer interface {
	ObserveMovement(op string, err error)
}

// Engine runs movement lifecycle operations. Operations on the same pallet
// are serialized; operations on different pallets run independently.
type Engine struct {
	db       *sql.DB
	tx       *store.TxManager
	recorder audit.Recorder
	locks    *keyedMutex

	now                  func() time.Time
	log                  *slog.Logger
	observer             Observer
	allowMultiplePending bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for out_at, in_at and audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithObserver sets an observer notified after every operation.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// AllowMultiplePending controls whether a pallet may have more than one
// Pending movement at a time. Allowed by default.
func AllowMultiplePending(allow bool) Option {
	return func(e *Engine) { e.allowMultiplePending = allow }
}

// New creates an Engine storing into db and auditing through rec.
func New(db *sql.DB, rec audit.Recorder, opts ...Option) *Engine {
	e := &Engine{
		db:                   db,
		tx:                   store.NewTxManager(db),
		recorder:             rec,
		locks:                newKeyedMutex(),
		now:                  time.Now,
		log:                  slog.Default(),
		allowMultiplePending: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartRequest asks for a pallet to be sent to another area.
type StartRequest struct {
	PalletID int64
	ToAreaID int64
	ETA      *time.Time
	Notes    string
	UserID   int64
}

// ConfirmRequest records a movement's arrival. A nil InAt means now; nil
// Notes keeps the notes given at start.
type ConfirmRequest struct {
	MovementID int64
	UserID     int64
	Notes      *string
	InAt       *time.Time
}

// Start creates a Pending movement of the pallet from its current area to
// req.ToAreaID. The pallet's current area is left unchanged until the
// movement is confirmed.
func (e *Engine) Start(ctx context.Context, req StartRequest) (v *model.MovementView, err error) {
	defer func() { e.observe(OpStart, err) }()

	unlock := e.locks.Lock(req.PalletID)
	defer unlock()

	now := e.now().UTC()

	err = e.tx.RunInTx(ctx, func(ctx context.Context) error {
		pallet, err := store.GetPallet(ctx, e.db, req.PalletID)
		if err != nil {
			return err
		}
		if _, err := store.GetArea(ctx, e.db, req.ToAreaID); err != nil {
			return fmt.Errorf("destination: %w", err)
		}
		if pallet.CurrentAreaID != nil && *pallet.CurrentAreaID == req.ToAreaID {
			return fmt.Errorf("pallet %d is already in area %d: %w", pallet.ID, req.ToAreaID, model.ErrInvalidTransition)
		}
		if !e.allowMultiplePending {
			n, err := store.CountPendingMovements(ctx, e.db, pallet.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("pallet %d already has a pending movement: %w", pallet.ID, model.ErrInvalidTransition)
			}
		}

		m := &model.Movement{
			PalletID:   pallet.ID,
			FromAreaID: pallet.CurrentAreaID,
			ToAreaID:   req.ToAreaID,
			OutBy:      req.UserID,
			OutAt:      now,
			ETA:        req.ETA,
			Status:     model.MovementPending,
			Notes:      req.Notes,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		id, err := store.CreateMovement(ctx, e.db, m)
		if err != nil {
			return err
		}

		created, err := store.GetMovement(ctx, e.db, id)
		if err != nil {
			return err
		}
		if err := e.record(ctx, created.ID, model.ActionCreate, req.UserID, nil, created, now); err != nil {
			return err
		}

		v, err = store.GetMovementView(ctx, e.db, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("starting movement: %w", err)
	}

	e.log.Info("movement started",
		"movement_id", v.ID, "pallet_id", v.PalletID, "to_area_id", v.ToAreaID, "user_id", req.UserID)
	return v, nil
}

// Confirm completes a Pending movement: it checks the occupancy interval
// [out_at, in_at) against the pallet's other completed movements, marks the
// movement Completed, moves the pallet to the destination area and records a
// CONFIRM_IN audit entry, all in one transaction.
func (e *Engine) Confirm(ctx context.Context, req ConfirmRequest) (v *model.MovementView, err error) {
	defer func() { e.observe(OpConfirm, err) }()

	// The pallet never changes, so it is safe to read before locking.
	m, err := store.GetMovement(ctx, e.db, req.MovementID)
	if err != nil {
		return nil, fmt.Errorf("confirming movement: %w", err)
	}

	unlock := e.locks.Lock(m.PalletID)
	defer unlock()

	now := e.now().UTC()
	inAt := now
	if req.InAt != nil {
		inAt = req.InAt.UTC()
	}

	err = e.tx.RunInTx(ctx, func(ctx context.Context) error {
		before, err := store.GetMovement(ctx, e.db, req.MovementID)
		if err != nil {
			return err
		}
		if before.Status != model.MovementPending {
			return fmt.Errorf("movement %d is %s, not pending: %w", before.ID, before.Status, model.ErrInvalidTransition)
		}
		if !inAt.After(before.OutAt) {
			return fmt.Errorf("in_at %s is not after out_at %s: %w",
				inAt.Format(time.RFC3339), before.OutAt.Format(time.RFC3339), model.ErrInvalidInterval)
		}

		others, err := store.CompletedMovements(ctx, e.db, before.PalletID, before.ID)
		if err != nil {
			return err
		}
		candidate := Interval{MovementID: before.ID, Start: before.OutAt, End: inAt}
		if err := CheckOverlap(candidate, intervalsOf(others)); err != nil {
			return err
		}

		notes := before.Notes
		if req.Notes != nil && *req.Notes != "" {
			notes = *req.Notes
		}
		if err := store.CompleteMovement(ctx, e.db, before.ID, req.UserID, inAt, notes, now); err != nil {
			return err
		}

		after, err := store.GetMovement(ctx, e.db, before.ID)
		if err != nil {
			return err
		}
		if err := applyCompletedMovement(ctx, e.db, after, now); err != nil {
			return err
		}
		if err := e.record(ctx, after.ID, model.ActionConfirmIn, req.UserID, before, after, now); err != nil {
			return err
		}

		v, err = store.GetMovementView(ctx, e.db, after.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("confirming movement: %w", err)
	}

	e.log.Info("movement confirmed",
		"movement_id", v.ID, "pallet_id", v.PalletID, "to_area_id", v.ToAreaID, "user_id", req.UserID)
	return v, nil
}

// Get returns a movement with its related pallet, area and user summaries.
func (e *Engine) Get(ctx context.Context, id int64) (*model.MovementView, error) {
	return store.GetMovementView(ctx, e.db, id)
}

// List returns a page of movements matching f.
func (e *Engine) List(ctx context.Context, f model.MovementFilter) (*model.Page[model.MovementView], error) {
	return store.ListMovements(ctx, e.db, f)
}

func (e *Engine) record(ctx context.Context, movementID int64, action string, userID int64, before, after *model.Movement, at time.Time) error {
	var b, a any
	if before != nil {
		b = before
	}
	if after != nil {
		a = after
	}
	entry, err := audit.Entry(model.EntityMovement, movementID, action, &userID, b, a)
	if err != nil {
		return err
	}
	entry.ChangedAt = at
	if err := e.recorder.Log(ctx, entry); err != nil {
		return fmt.Errorf("auditing movement %d: %w", movementID, err)
	}
	return nil
}

func (e *Engine) observe(op string, err error) {
	if e.observer != nil {
		e.observer.ObserveMovement(op, err)
	}
	if err != nil {
		e.log.Debug("movement operation failed", "op", op, "kind", model.ErrorKind(err), "error", err)
	}
}
