package api

import (
	"net/http"

	"github.com/erazemk/palete/internal/inventory"
	"github.com/erazemk/palete/internal/model"
	"github.com/erazemk/palete/internal/movement"
)

// PalletsHandler handles pallet endpoints.
type PalletsHandler struct {
	Inventory *inventory.Service
	Movements *movement.Engine
}

type createPalletRequest struct {
	Barcode         string `json:"barcode"`
	Type            string `json:"type"`
	Size            string `json:"size"`
	ConditionStatus string `json:"condition_status"`
	CurrentAreaID   *int64 `json:"current_area_id"`
	Owner           string `json:"owner"`
}

// List handles GET /api/pallets.
func (h *PalletsHandler) List(w http.ResponseWriter, r *http.Request) {
	areaID, err := queryInt64(r, "area_id")
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
	pallets, err := h.Inventory.ListPallets(r.Context(), model.PalletFilter{
		Barcode:         q.Get("barcode"),
		CurrentAreaID:   areaID,
		ConditionStatus: q.Get("condition"),
		Page:            page,
		Limit:           limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, pallets)
}

// Create handles POST /api/pallets.
func (h *PalletsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPalletRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pallet, err := h.Inventory.CreatePallet(r.Context(), model.Pallet{
		Barcode:         req.Barcode,
		Type:            req.Type,
		Size:            req.Size,
		ConditionStatus: req.ConditionStatus,
		CurrentAreaID:   req.CurrentAreaID,
		Owner:           req.Owner,
	}, GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, pallet)
}

// Get handles GET /api/pallets/{id}.
func (h *PalletsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid pallet id")
		return
	}

	pallet, err := h.Inventory.GetPallet(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, pallet)
}

// GetByBarcode handles GET /api/pallet-barcodes/{barcode}. It lives outside
// /api/pallets/ so that a barcode can never be mistaken for a pallet ID.
func (h *PalletsHandler) GetByBarcode(w http.ResponseWriter, r *http.Request) {
	pallet, err := h.Inventory.GetPalletByBarcode(r.Context(), r.PathValue("barcode"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, pallet)
}

// Update handles PUT /api/pallets/{id}.
func (h *PalletsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid pallet id")
		return
	}

	var patch model.PalletPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pallet, err := h.Inventory.UpdatePallet(r.Context(), id, patch, GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, pallet)
}

// Delete handles DELETE /api/pallets/{id}.
func (h *PalletsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid pallet id")
		return
	}

	if err := h.Inventory.DeletePallet(r.Context(), id, GetClaims(r.Context()).UserID); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "pallet deleted"})
}

// PalletMovements handles GET /api/pallets/{id}/movements.
func (h *PalletsHandler) PalletMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid pallet id")
		return
	}
	if _, err := h.Inventory.GetPallet(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	f, err := movementFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f.PalletID = id

	page, err := h.Movements.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, page)
}
