package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/palete/internal/db"
	"github.com/erazemk/palete/internal/model"
)

func TestInsertAndListAuditEntries(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database, "alice")
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	entries := []model.AuditEntry{
		{EntityType: model.EntityArea, EntityID: "1", Action: model.ActionCreate, ChangedBy: &user.ID, ChangedAt: t0,
			After: model.Snapshot{"name": "Dock"}},
		{EntityType: model.EntityMovement, EntityID: "7", Action: model.ActionConfirmIn, ChangedBy: &user.ID, ChangedAt: t0.Add(time.Hour),
			Before: model.Snapshot{"status": "Pending"}, After: model.Snapshot{"status": "Completed"}},
		{EntityType: model.EntityArea, EntityID: "1", Action: model.ActionDelete, ChangedAt: t0.Add(2 * time.Hour),
			Before: model.Snapshot{"name": "Dock"}},
	}
	for i := range entries {
		if _, err := InsertAuditEntry(ctx, database, &entries[i]); err != nil {
			t.Fatalf("InsertAuditEntry: %v", err)
		}
	}

	page, err := ListAuditEntries(ctx, database, model.AuditFilter{})
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("expected 3 entries, got %d", page.Total)
	}
	if page.Items[0].Action != model.ActionDelete {
		t.Errorf("expected newest entry first, got %q", page.Items[0].Action)
	}
	if page.Items[0].ChangedBy != nil {
		t.Error("expected system entry without user")
	}
	if page.Items[0].After != nil {
		t.Errorf("expected no after snapshot, got %v", page.Items[0].After)
	}

	confirm := page.Items[1]
	if confirm.Before["status"] != "Pending" || confirm.After["status"] != "Completed" {
		t.Errorf("expected snapshots to round-trip, got %v / %v", confirm.Before, confirm.After)
	}

	page, _ = ListAuditEntries(ctx, database, model.AuditFilter{EntityType: model.EntityArea, EntityID: "1"})
	if page.Total != 2 {
		t.Errorf("expected 2 area entries, got %d", page.Total)
	}

	from := t0.Add(30 * time.Minute)
	to := t0.Add(90 * time.Minute)
	page, _ = ListAuditEntries(ctx, database, model.AuditFilter{From: &from, To: &to})
	if page.Total != 1 || page.Items[0].Action != model.ActionConfirmIn {
		t.Errorf("expected only the confirm entry in range, got %d", page.Total)
	}
}

func TestListAuditEntriesByBarcode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database, "alice")
	p := seedPallet(t, database, "PAL-001", nil, user.ID)

	InsertAuditEntry(ctx, database, &model.AuditEntry{
		EntityType: model.EntityPallet, EntityID: "999", Action: model.ActionCreate, ChangedAt: time.Now(),
	})
	InsertAuditEntry(ctx, database, &model.AuditEntry{
		EntityType: model.EntityPallet, EntityID: itoa(p.ID), Action: model.ActionCreate, ChangedAt: time.Now(),
	})

	page, err := ListAuditEntries(ctx, database, model.AuditFilter{PalletBarcode: "pal-001"})
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if page.Total != 1 || page.Items[0].EntityID != itoa(p.ID) {
		t.Errorf("expected the pallet's own entry, got %d entries", page.Total)
	}

	page, err = ListAuditEntries(ctx, database, model.AuditFilter{PalletBarcode: "unknown"})
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("expected empty page for unknown barcode, got %d", page.Total)
	}
}

func TestListAuditEntriesBarcodeWithEntityFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database, "alice")
	seedPallet(t, database, "PAL-001", nil, user.ID)

	filters := []model.AuditFilter{
		{PalletBarcode: "PAL-001", EntityType: model.EntityMovement},
		{PalletBarcode: "PAL-001", EntityID: "7"},
	}
	for _, f := range filters {
		if _, err := ListAuditEntries(ctx, database, f); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for %+v, got %v", f, err)
		}
	}
}
