package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/palete/internal/model"
)

func seedUser(t *testing.T, database *sql.DB, username string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, username, "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func seedArea(t *testing.T, database *sql.DB, name string) *model.Area {
	t.Helper()
	a, err := CreateArea(context.Background(), database, &model.Area{Name: name})
	if err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	return a
}

func seedPallet(t *testing.T, database *sql.DB, barcode string, areaID *int64, createdBy int64) *model.Pallet {
	t.Helper()
	p, err := CreatePallet(context.Background(), database, &model.Pallet{
		Barcode:         barcode,
		ConditionStatus: model.ConditionGood,
		CurrentAreaID:   areaID,
		CreatedBy:       createdBy,
	})
	if err != nil {
		t.Fatalf("CreatePallet: %v", err)
	}
	return p
}

func seedMovement(t *testing.T, database *sql.DB, p *model.Pallet, to, outBy int64, outAt time.Time) int64 {
	t.Helper()
	id, err := CreateMovement(context.Background(), database, &model.Movement{
		PalletID:   p.ID,
		FromAreaID: p.CurrentAreaID,
		ToAreaID:   to,
		OutBy:      outBy,
		OutAt:      outAt,
		Status:     model.MovementPending,
		CreatedAt:  outAt,
		UpdatedAt:  outAt,
	})
	if err != nil {
		t.Fatalf("CreateMovement: %v", err)
	}
	return id
}
