package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/diewo77/scam-catalog/auth"
	"github.com/diewo77/scam-catalog/httpx"
	"github.com/diewo77/scam-catalog/i18n"
	"github.com/diewo77/scam-catalog/internal/catalog"
	"github.com/diewo77/scam-catalog/internal/models"
	"github.com/diewo77/scam-catalog/internal/store"
)

type reviewFunc func(ctx context.Context, id uint) (*models.Case, error)

type CaseHandler struct {
	svc *catalog.Service
	log *slog.Logger
}

func NewCaseHandler(svc *catalog.Service, log *slog.Logger) *CaseHandler {
	return &CaseHandler{svc: svc, log: orDefault(log)}
}

// List searches approved cases: ?q=&field=&page=.
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := catalog.SearchQuery{
		Query: r.URL.Query().Get("q"),
		Field: store.SearchField(r.URL.Query().Get("field")),
		Page:  httpx.QueryInt(r, "page", 1),
	}
	res, err := h.svc.Search(r.Context(), auth.ViewerFromContext(r.Context()), i18n.LangFrom(r.Context()), q)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Pending lists cases awaiting review.
func (h *CaseHandler) Pending(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Pending(r.Context(), auth.ViewerFromContext(r.Context()), i18n.LangFrom(r.Context()), httpx.QueryInt(r, "page", 1))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// View renders one case for the current viewer.
func (h *CaseHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	d, err := h.svc.RenderCaseDetail(r.Context(), auth.ViewerFromContext(r.Context()), i18n.LangFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// Create submits a new case for review.
func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in catalog.CaseInput
	if err := httpx.Decode(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := h.svc.CreateCase(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": c.ID, "status": c.Status})
}

// AddIdentifier records one more fact on a case.
func (h *CaseHandler) AddIdentifier(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var in catalog.IdentifierInput
	if err := httpx.Decode(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	rec, err := h.svc.AddIdentifier(r.Context(), id, in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

// AddCustomField records a labelled fact on a case.
func (h *CaseHandler) AddCustomField(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var in catalog.CustomFieldInput
	if err := httpx.Decode(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	rec, err := h.svc.AddCustomField(r.Context(), id, in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

// Unlink removes a related-case edge.
func (h *CaseHandler) Unlink(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	other, err := httpx.PathID(r, "other")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.Unlink(r.Context(), id, other); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateIdentifier replaces an identifier's value.
func (h *CaseHandler) UpdateIdentifier(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var in struct {
		Value string `json:"value"`
	}
	if err := httpx.Decode(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	rec, err := h.svc.UpdateIdentifier(r.Context(), id, in.Value)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *CaseHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Approve)
}

func (h *CaseHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Reject)
}

func (h *CaseHandler) review(w http.ResponseWriter, r *http.Request, apply reviewFunc) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	c, err := apply(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": c.ID, "status": c.Status, "approved_at": c.ApprovedAt})
}

// Unlock grants the signed-in user access to a case's premium fields.
// Payment is handled upstream; reaching this handler means it succeeded.
func (h *CaseHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	if err := h.svc.GrantEntitlement(r.Context(), uid, id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"case_id": id, "unlocked": true})
}
