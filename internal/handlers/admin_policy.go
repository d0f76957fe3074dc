package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/scam-catalog/httpx"
	"github.com/diewo77/scam-catalog/internal/catalog"
	"github.com/diewo77/scam-catalog/internal/disclosure"
	"github.com/diewo77/scam-catalog/internal/models"
)

// AdminPolicyHandler lets staff read and change field access tiers.
type AdminPolicyHandler struct {
	svc *catalog.Service
	log *slog.Logger
}

func NewAdminPolicyHandler(svc *catalog.Service, log *slog.Logger) *AdminPolicyHandler {
	return &AdminPolicyHandler{svc: svc, log: orDefault(log)}
}

// List returns every governed field with its tier.
func (h *AdminPolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	policies, err := h.svc.FieldPolicies(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"policies": policies})
}

// Set changes the tier of /policies/{entity}/{field}.
func (h *AdminPolicyHandler) Set(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Tier models.AccessTier `json:"tier"`
	}
	if err := httpx.Decode(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	key := disclosure.FieldKey{EntityType: r.PathValue("entity"), FieldName: r.PathValue("field")}
	if err := h.svc.SetFieldTier(r.Context(), key, in.Tier); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"field": key.String(), "tier": in.Tier})
}
