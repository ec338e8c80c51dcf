package movement

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/palete/internal/model"
	"github.com/erazemk/palete/internal/store"
)

// applyCompletedMovement moves the pallet into the movement's destination.
// It is the only place a confirmation writes a pallet's current area.
func applyCompletedMovement(ctx context.Context, db *sql.DB, m *model.Movement, at time.Time) error {
	if m.Status != model.MovementCompleted {
		return fmt.Errorf("projecting movement %d in status %s: %w", m.ID, m.Status, model.ErrInvalidTransition)
	}
	if err := store.SetPalletArea(ctx, db, m.PalletID, m.ToAreaID, at); err != nil {
		return fmt.Errorf("projecting movement %d: %w", m.ID, err)
	}
	return nil
}
