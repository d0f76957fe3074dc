package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/scam-catalog/httpx"
	"github.com/diewo77/scam-catalog/internal/catalog"
)

// AdminProfileHandler manages profiles, the staff-curated groupings of cases.
type AdminProfileHandler struct {
	svc *catalog.Service
	log *slog.Logger
}

// NewAdminProfileHandler creates a new admin profile handler.
func NewAdminProfileHandler(svc *catalog.Service, log *slog.Logger) *AdminProfileHandler {
	return &AdminProfileHandler{svc: svc, log: orDefault(log)}
}

type profileInput struct {
	Name      string `json:"name"`
	ImagePath string `json:"image_path"`
	CaseIDs   []uint `json:"case_ids"`
}

// Create groups existing cases under a new profile.
func (h *AdminProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in profileInput
	if err := httpx.Decode(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	p, err := h.svc.CreateProfile(r.Context(), in.Name, in.ImagePath, in.CaseIDs)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": p.ID, "name": p.Name})
}

// Aggregate returns the unmasked union of facts across a profile's cases.
func (h *AdminProfileHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	agg, err := h.svc.AggregateProfile(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, agg)
}
