package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/palete/internal/inventory"
	"github.com/erazemk/palete/internal/metrics"
	"github.com/erazemk/palete/internal/model"
	"github.com/erazemk/palete/internal/movement"
)

// RouterConfig carries the dependencies of the API router.
type RouterConfig struct {
	DB        *sql.DB
	JWTSecret string
	TokenTTL  time.Duration
	Movements *movement.Engine
	Inventory *inventory.Service
	Metrics   *metrics.Metrics
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}
	areasHandler := &AreasHandler{Inventory: cfg.Inventory}
	palletsHandler := &PalletsHandler{Inventory: cfg.Inventory, Movements: cfg.Movements}
	movementsHandler := &MovementsHandler{Movements: cfg.Movements}
	auditHandler := &AuditHandler{DB: cfg.DB}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)
	requireManager := RequireRole(model.RoleManager)

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.DB.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Areas: read (all roles), write (manager+).
	mux.Handle("GET /api/areas", authMW(http.HandlerFunc(areasHandler.List)))
	mux.Handle("POST /api/areas", authMW(requireManager(http.HandlerFunc(areasHandler.Create))))
	mux.Handle("GET /api/areas/{id}", authMW(http.HandlerFunc(areasHandler.Get)))
	mux.Handle("PUT /api/areas/{id}", authMW(requireManager(http.HandlerFunc(areasHandler.Update))))
	mux.Handle("DELETE /api/areas/{id}", authMW(requireManager(http.HandlerFunc(areasHandler.Delete))))

	// Pallets: create and read (all roles), update and delete (manager+).
	mux.Handle("GET /api/pallets", authMW(http.HandlerFunc(palletsHandler.List)))
	mux.Handle("POST /api/pallets", authMW(http.HandlerFunc(palletsHandler.Create)))
	mux.Handle("GET /api/pallets/{id}", authMW(http.HandlerFunc(palletsHandler.Get)))
	mux.Handle("PUT /api/pallets/{id}", authMW(requireManager(http.HandlerFunc(palletsHandler.Update))))
	mux.Handle("DELETE /api/pallets/{id}", authMW(requireManager(http.HandlerFunc(palletsHandler.Delete))))
	mux.Handle("GET /api/pallets/{id}/movements", authMW(http.HandlerFunc(palletsHandler.PalletMovements)))
	mux.Handle("GET /api/pallet-barcodes/{barcode}", authMW(http.HandlerFunc(palletsHandler.GetByBarcode)))

	// Movements (all roles).
	mux.Handle("GET /api/movements", authMW(http.HandlerFunc(movementsHandler.List)))
	mux.Handle("POST /api/movements", authMW(http.HandlerFunc(movementsHandler.Start)))
	mux.Handle("GET /api/movements/{id}", authMW(http.HandlerFunc(movementsHandler.Get)))
	mux.Handle("POST /api/movements/{id}/confirm", authMW(http.HandlerFunc(movementsHandler.Confirm)))

	// Audit log (manager+).
	mux.Handle("GET /api/audit-log", authMW(requireManager(http.HandlerFunc(auditHandler.List))))

	var h http.Handler = mux
	h = LoggingMiddleware(h)
	if cfg.Metrics != nil {
		h = cfg.Metrics.Middleware(h)
	}
	h = RequestIDMiddleware(h)
	h = RecoveryMiddleware(h)
	return h
}
