package api

import (
	"net/http"

	"github.com/erazemk/palete/internal/inventory"
	"github.com/erazemk/palete/internal/model"
)

// AreasHandler handles area endpoints.
type AreasHandler struct {
	Inventory *inventory.Service
}

type createAreaRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Capacity *int   `json:"capacity"`
	ParentID *int64 `json:"parent_id"`
}

// List handles GET /api/areas.
func (h *AreasHandler) List(w http.ResponseWriter, r *http.Request) {
	areas, err := h.Inventory.ListAreas(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, areas)
}

// Create handles POST /api/areas.
func (h *AreasHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAreaRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	area, err := h.Inventory.CreateArea(r.Context(), model.Area{
		Name:     req.Name,
		Type:     req.Type,
		Capacity: req.Capacity,
		ParentID: req.ParentID,
	}, GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, area)
}

// Get handles GET /api/areas/{id}.
func (h *AreasHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid area id")
		return
	}

	area, err := h.Inventory.GetArea(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, area)
}

// Update handles PUT /api/areas/{id}.
func (h *AreasHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid area id")
		return
	}

	var patch model.AreaPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	area, err := h.Inventory.UpdateArea(r.Context(), id, patch, GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, area)
}

// Delete handles DELETE /api/areas/{id}.
func (h *AreasHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid area id")
		return
	}

	if err := h.Inventory.DeleteArea(r.Context(), id, GetClaims(r.Context()).UserID); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "area deleted"})
}
