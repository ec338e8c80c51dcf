package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/palete/internal/db"
	"github.com/erazemk/palete/internal/model"
)

func TestCreateAndGetPallet(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database, "alice")
	area := seedArea(t, database, "Dock")

	p, err := CreatePallet(ctx, database, &model.Pallet{
		Barcode:         "PAL-001",
		Type:            "EUR",
		ConditionStatus: model.ConditionGood,
		CurrentAreaID:   &area.ID,
		Owner:           "Acme",
		CreatedBy:       user.ID,
	})
	if err != nil {
		t.Fatalf("CreatePallet: %v", err)
	}
	if p.CurrentAreaName != "Dock" {
		t.Errorf("expected area name 'Dock', got %q", p.CurrentAreaName)
	}
	if p.CreatorUsername != "alice" {
		t.Errorf("expected creator 'alice', got %q", p.CreatorUsername)
	}
	if p.Owner != "Acme" {
		t.Errorf("expected owner 'Acme', got %q", p.Owner)
	}
}

func TestCreatePalletDuplicateBarcode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database, "alice")
	seedPallet(t, database, "PAL-001", nil, user.ID)

	_, err := CreatePallet(ctx, database, &model.Pallet{
		Barcode:         "pal-001",
		ConditionStatus: model.ConditionGood,
		CreatedBy:       user.ID,
	})
	if !errors.Is(err, model.ErrConflictingIdentity) {
		t.Errorf("expected ErrConflictingIdentity, got %v", err)
	}
}

func TestBarcodeReusableAfterSoftDelete(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database, "alice")
	old := seedPallet(t, database, "PAL-001", nil, user.ID)

	if err := DeletePallet(ctx, database, old.ID); err != nil {
		t.Fatalf("DeletePallet: %v", err)
	}
	if _, err := GetPallet(ctx, database, old.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected soft-deleted pallet to be hidden, got %v", err)
	}

	fresh := seedPallet(t, database, "PAL-001", nil, user.ID)
	if fresh.ID == old.ID {
		t.Error("expected a new pallet id")
	}

	id, err := ResolvePalletBarcode(ctx, database, "PAL-001")
	if err != nil {
		t.Fatalf("ResolvePalletBarcode: %v", err)
	}
	if id != fresh.ID {
		t.Errorf("expected active pallet %d, got %d", fresh.ID, id)
	}
}

func TestGetPalletByBarcode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database, "alice")
	want := seedPallet(t, database, "PAL-001", nil, user.ID)

	got, err := GetPalletByBarcode(ctx, database, "  pal-001 ")
	if err != nil {
		t.Fatalf("GetPalletByBarcode: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("expected pallet %d, got %d", want.ID, got.ID)
	}

	_, err = GetPalletByBarcode(ctx, database, "missing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPallets(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database, "alice")
	dock := seedArea(t, database, "Dock")
	seedPallet(t, database, "PAL-001", &dock.ID, user.ID)
	seedPallet(t, database, "PAL-002", nil, user.ID)
	seedPallet(t, database, "BOX-003", &dock.ID, user.ID)

	page, err := ListPallets(ctx, database, model.PalletFilter{Barcode: "pal"})
	if err != nil {
		t.Fatalf("ListPallets: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Errorf("expected 2 pallets matching 'pal', got total=%d items=%d", page.Total, len(page.Items))
	}

	page, _ = ListPallets(ctx, database, model.PalletFilter{CurrentAreaID: dock.ID, Limit: 1})
	if page.Total != 2 {
		t.Errorf("expected total 2 in dock, got %d", page.Total)
	}
	if len(page.Items) != 1 {
		t.Errorf("expected 1 item on page, got %d", len(page.Items))
	}
	if page.Limit != 1 || page.Page != 1 {
		t.Errorf("expected page 1 limit 1, got page %d limit %d", page.Page, page.Limit)
	}
}

func TestSetPalletArea(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database, "alice")
	dock := seedArea(t, database, "Dock")
	p := seedPallet(t, database, "PAL-001", nil, user.ID)

	if err := SetPalletArea(ctx, database, p.ID, dock.ID, time.Now()); err != nil {
		t.Fatalf("SetPalletArea: %v", err)
	}
	got, _ := GetPallet(ctx, database, p.ID)
	if got.CurrentAreaID == nil || *got.CurrentAreaID != dock.ID {
		t.Errorf("expected current area %d, got %v", dock.ID, got.CurrentAreaID)
	}

	err := SetPalletArea(ctx, database, 999, dock.ID, time.Now())
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
