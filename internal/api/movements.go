package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/erazemk/palete/internal/model"
	"github.com/erazemk/palete/internal/movement"
)

// MovementsHandler handles movement endpoints.
type MovementsHandler struct {
	Movements *movement.Engine
}

type startMovementRequest struct {
	PalletID int64  `json:"pallet_id"`
	ToAreaID int64  `json:"to_area_id"`
	ETA      string `json:"eta"`
	Notes    string `json:"notes"`
}

type confirmMovementRequest struct {
	Notes *string `json:"notes"`
	InAt  string  `json:"in_at"`
}

// movementFilter reads the shared movement list query parameters.
func movementFilter(r *http.Request) (model.MovementFilter, error) {
	var f model.MovementFilter
	var err error

	if f.PalletID, err = queryInt64(r, "pallet_id"); err != nil {
		return f, fmt.Errorf("%s: %w", err, model.ErrInvalidInput)
	}
	if f.FromAreaID, err = queryInt64(r, "from_area_id"); err != nil {
		return f, fmt.Errorf("%s: %w", err, model.ErrInvalidInput)
	}
	if f.ToAreaID, err = queryInt64(r, "to_area_id"); err != nil {
		return f, fmt.Errorf("%s: %w", err, model.ErrInvalidInput)
	}
	if f.Page, f.Limit, err = pageParams(r); err != nil {
		return f, fmt.Errorf("%s: %w", err, model.ErrInvalidInput)
	}

	q := r.URL.Query()
	if s := q.Get("status"); s != "" {
		if f.Status, err = model.ParseMovementStatus(s); err != nil {
			return f, err
		}
	}
	f.OrderBy = q.Get("order_by")
	f.Order = q.Get("order")
	return f, nil
}

// List handles GET /api/movements.
func (h *MovementsHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := movementFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.Movements.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

// Start handles POST /api/movements.
func (h *MovementsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PalletID <= 0 || req.ToAreaID <= 0 {
		jsonError(w, http.StatusBadRequest, "pallet_id and to_area_id required")
		return
	}

	var eta *time.Time
	if req.ETA != "" {
		t, err := time.Parse(time.RFC3339, req.ETA)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid eta: expected RFC 3339 time")
			return
		}
		eta = &t
	}

	v, err := h.Movements.Start(r.Context(), movement.StartRequest{
		PalletID: req.PalletID,
		ToAreaID: req.ToAreaID,
		ETA:      eta,
		Notes:    req.Notes,
		UserID:   GetClaims(r.Context()).UserID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, v)
}

// Get handles GET /api/movements/{id}.
func (h *MovementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	v, err := h.Movements.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, v)
}

// Confirm handles POST /api/movements/{id}/confirm. The body is optional;
// an absent or unparseable in_at means now.
func (h *MovementsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	var req confirmMovementRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var inAt *time.Time
	if t, err := time.Parse(time.RFC3339, req.InAt); err == nil {
		inAt = &t
	}

	v, err := h.Movements.Confirm(r.Context(), movement.ConfirmRequest{
		MovementID: id,
		UserID:     GetClaims(r.Context()).UserID,
		Notes:      req.Notes,
		InAt:       inAt,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, v)
}
