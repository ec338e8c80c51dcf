package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erazemk/palete/internal/auth"
	"github.com/erazemk/palete/internal/db"
	"github.com/erazemk/palete/internal/model"
	"github.com/erazemk/palete/internal/store"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, database, "dock", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := auth.GenerateToken(testJWTSecret, time.Hour, user.ID, user.Username, user.Role)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := auth.ValidateToken(testJWTSecret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	handler := AuthMiddleware(testJWTSecret, database)(okHandler())
	serve := func() int {
		req := httptest.NewRequest("GET", "/api/pallets", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := serve(); code != http.StatusOK {
		t.Fatalf("expected 200 before revocation, got %d", code)
	}

	if err := store.RevokeToken(ctx, database, claims.ID, user.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if code := serve(); code != http.StatusUnauthorized {
		t.Errorf("expected 401 after revocation, got %d", code)
	}
}

func TestRequireRoleFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		minimum string
		want    int
	}{
		{"manager deletes pallet", model.RoleManager, model.RoleManager, http.StatusOK},
		{"user deletes pallet", model.RoleUser, model.RoleManager, http.StatusForbidden},
		{"unknown role in token", "supervisor", model.RoleUser, http.StatusForbidden},
		{"unknown minimum", model.RoleAdmin, "owner", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", "/api/pallets/1", nil)
			req = req.WithContext(context.WithValue(req.Context(), claimsKey, &auth.Claims{Role: tt.role}))
			rec := httptest.NewRecorder()
			RequireRole(tt.minimum)(okHandler()).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	rec := httptest.NewRecorder()
	RequireRole(model.RoleUser)(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/api/pallets", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without claims, got %d", rec.Code)
	}
}
