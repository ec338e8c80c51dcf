package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/palete/internal/model"
	"github.com/erazemk/palete/internal/store"
)

// AuditHandler serves the audit log query surface.
type AuditHandler struct {
	DB *sql.DB
}

// List handles GET /api/audit-log. The barcode parameter selects one pallet's
// entries and is rejected with 400 when combined with entity_type or
// entity_id.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	from, err := queryTime(r, "from")
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, limit, err := pageParams(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	entries, err := store.ListAuditEntries(r.Context(), h.DB, model.AuditFilter{
		EntityType:    q.Get("entity_type"),
		EntityID:      q.Get("entity_id"),
		Action:        q.Get("action"),
		PalletBarcode: q.Get("barcode"),
		From:          from,
		To:            to,
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, entries)
}
