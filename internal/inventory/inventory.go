// Package inventory administers areas and pallets. Every mutation is audited
// in the same transaction as the change itself.
package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/erazemk/palete/internal/audit"
	"github.com/erazemk/palete/internal/model"
	"github.com/erazemk/palete/internal/store"
)

// StatusChangeReasonKey is the after-snapshot key holding the reason given
// for a condition change. The reason is not stored on the pallet.
const StatusChangeReasonKey = "statusChangeReason"

// Service manages areas and pallets.
type Service struct {
	db       *sql.DB
	tx       *store.TxManager
	recorder audit.Recorder
	log      *slog.Logger
}

// NewService creates a Service. A nil logger uses slog.Default.
func NewService(db *sql.DB, rec audit.Recorder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, tx: store.NewTxManager(db), recorder: rec, log: log}
}

// GetArea returns an area by ID.
func (s *Service) GetArea(ctx context.Context, id int64) (*model.Area, error) {
	return store.GetArea(ctx, s.db, id)
}

// ListAreas returns all areas.
func (s *Service) ListAreas(ctx context.Context) ([]model.Area, error) {
	return store.ListAreas(ctx, s.db)
}

// CreateArea creates an area.
func (s *Service) CreateArea(ctx context.Context, a model.Area, userID int64) (*model.Area, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return nil, fmt.Errorf("area name is required: %w", model.ErrInvalidInput)
	}
	if a.Capacity != nil && *a.Capacity < 0 {
		return nil, fmt.Errorf("area capacity must not be negative: %w", model.ErrInvalidInput)
	}

	var created *model.Area
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if created, err = store.CreateArea(ctx, s.db, &a); err != nil {
			return err
		}
		return s.record(ctx, model.EntityArea, created.ID, model.ActionCreate, userID, nil, created)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("area created", "area_id", created.ID, "name", created.Name, "user_id", userID)
	return created, nil
}

// UpdateArea applies patch to an area. A parent that would make the area its
// own ancestor is rejected.
func (s *Service) UpdateArea(ctx context.Context, id int64, patch model.AreaPatch, userID int64) (*model.Area, error) {
	var updated *model.Area
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		before, err := store.GetArea(ctx, s.db, id)
		if err != nil {
			return err
		}

		next := *before
		if patch.Name != nil {
			next.Name = strings.TrimSpace(*patch.Name)
			if next.Name == "" {
				return fmt.Errorf("area name is required: %w", model.ErrInvalidInput)
			}
		}
		if patch.Type != nil {
			next.Type = *patch.Type
		}
		if patch.Capacity != nil {
			if *patch.Capacity < 0 {
				return fmt.Errorf("area capacity must not be negative: %w", model.ErrInvalidInput)
			}
			next.Capacity = patch.Capacity
		}
		switch {
		case patch.ClearParent:
			next.ParentID = nil
		case patch.ParentID != nil:
			if err := s.checkParent(ctx, id, *patch.ParentID); err != nil {
				return err
			}
			next.ParentID = patch.ParentID
		}

		if err := store.UpdateArea(ctx, s.db, &next); err != nil {
			return err
		}
		if updated, err = store.GetArea(ctx, s.db, id); err != nil {
			return err
		}
		return s.record(ctx, model.EntityArea, id, model.ActionUpdate, userID, before, updated)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("area updated", "area_id", id, "user_id", userID)
	return updated, nil
}

func (s *Service) checkParent(ctx context.Context, id, parentID int64) error {
	chain, err := store.AreaAncestors(ctx, s.db, parentID)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return fmt.Errorf("parent area %d: %w", parentID, model.ErrNotFound)
	}
	if slices.Contains(chain, id) {
		return fmt.Errorf("area %d cannot be placed under %d: parent cycle: %w", id, parentID, model.ErrInvalidInput)
	}
	return nil
}

// DeleteArea removes an area that nothing references.
func (s *Service) DeleteArea(ctx context.Context, id int64, userID int64) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		before, err := store.GetArea(ctx, s.db, id)
		if err != nil {
			return err
		}
		if err := store.DeleteArea(ctx, s.db, id); err != nil {
			return err
		}
		return s.record(ctx, model.EntityArea, id, model.ActionDelete, userID, before, nil)
	})
	if err != nil {
		return err
	}

	s.log.Info("area deleted", "area_id", id, "user_id", userID)
	return nil
}

// GetPallet returns an active pallet by ID.
func (s *Service) GetPallet(ctx context.Context, id int64) (*model.Pallet, error) {
	return store.GetPallet(ctx, s.db, id)
}

// GetPalletByBarcode returns an active pallet by barcode.
func (s *Service) GetPalletByBarcode(ctx context.Context, barcode string) (*model.Pallet, error) {
	return store.GetPalletByBarcode(ctx, s.db, barcode)
}

// ListPallets returns a page of active pallets.
func (s *Service) ListPallets(ctx context.Context, f model.PalletFilter) (*model.Page[model.Pallet], error) {
	return store.ListPallets(ctx, s.db, f)
}

// CreatePallet registers a pallet created by userID. The barcode is trimmed
// and must not match an active pallet's barcode, ignoring case.
func (s *Service) CreatePallet(ctx context.Context, p model.Pallet, userID int64) (*model.Pallet, error) {
	p.Barcode = model.NormalizeBarcode(p.Barcode)
	if p.Barcode == "" {
		return nil, fmt.Errorf("barcode is required: %w", model.ErrInvalidInput)
	}
	if p.ConditionStatus == "" {
		p.ConditionStatus = model.ConditionGood
	}
	if !model.ValidCondition(p.ConditionStatus) {
		return nil, fmt.Errorf("unknown condition status %q: %w", p.ConditionStatus, model.ErrInvalidInput)
	}
	p.CreatedBy = userID

	var created *model.Pallet
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if p.CurrentAreaID != nil {
			if _, err := store.GetArea(ctx, s.db, *p.CurrentAreaID); err != nil {
				return err
			}
		}
		var err error
		if created, err = store.CreatePallet(ctx, s.db, &p); err != nil {
			return err
		}
		return s.record(ctx, model.EntityPallet, created.ID, model.ActionCreate, userID, nil, created)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("pallet created", "pallet_id", created.ID, "barcode", created.Barcode, "user_id", userID)
	return created, nil
}

// UpdatePallet applies patch to an active pallet. A direct change of the
// current area is audited as a plain UPDATE. A status change reason is kept
// only in the audit entry.
func (s *Service) UpdatePallet(ctx context.Context, id int64, patch model.PalletPatch, userID int64) (*model.Pallet, error) {
	var updated *model.Pallet
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		before, err := store.GetPallet(ctx, s.db, id)
		if err != nil {
			return err
		}

		next := *before
		if patch.Type != nil {
			next.Type = *patch.Type
		}
		if patch.Size != nil {
			next.Size = *patch.Size
		}
		if patch.Owner != nil {
			next.Owner = *patch.Owner
		}
		if patch.ConditionStatus != nil {
			if !model.ValidCondition(*patch.ConditionStatus) {
				return fmt.Errorf("unknown condition status %q: %w", *patch.ConditionStatus, model.ErrInvalidInput)
			}
			next.ConditionStatus = *patch.ConditionStatus
		}
		if patch.CurrentAreaID != nil {
			if _, err := store.GetArea(ctx, s.db, *patch.CurrentAreaID); err != nil {
				return err
			}
			next.CurrentAreaID = patch.CurrentAreaID
		}

		if err := store.UpdatePallet(ctx, s.db, &next); err != nil {
			return err
		}
		if updated, err = store.GetPallet(ctx, s.db, id); err != nil {
			return err
		}

		entry, err := audit.Entry(model.EntityPallet, id, model.ActionUpdate, &userID, before, updated)
		if err != nil {
			return err
		}
		if reason := strings.TrimSpace(patch.StatusChangeReason); reason != "" {
			entry.After[StatusChangeReasonKey] = reason
		}
		return s.recorder.Log(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("pallet updated", "pallet_id", id, "user_id", userID)
	return updated, nil
}

// DeletePallet soft-deletes an active pallet.
func (s *Service) DeletePallet(ctx context.Context, id int64, userID int64) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		before, err := store.GetPallet(ctx, s.db, id)
		if err != nil {
			return err
		}
		if err := store.DeletePallet(ctx, s.db, id); err != nil {
			return err
		}
		return s.record(ctx, model.EntityPallet, id, model.ActionDelete, userID, before, nil)
	})
	if err != nil {
		return err
	}

	s.log.Info("pallet deleted", "pallet_id", id, "user_id", userID)
	return nil
}

func (s *Service) record(ctx context.Context, entityType string, id int64, action string, userID int64, before, after any) error {
	entry, err := audit.Entry(entityType, id, action, &userID, before, after)
	if err != nil {
		return err
	}
	if err := s.recorder.Log(ctx, entry); err != nil {
		return fmt.Errorf("auditing %s %d: %w", entityType, id, err)
	}
	return nil
}
