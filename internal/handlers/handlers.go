// Package handlers is the JSON HTTP surface over the catalog service.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/diewo77/scam-catalog/httpx"
	"github.com/diewo77/scam-catalog/i18n"
	"github.com/diewo77/scam-catalog/internal/catalog"
	"github.com/diewo77/scam-catalog/validation"
)

// writeError maps service errors onto HTTP statuses. Messages are
// translated into the request language.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	lang := i18n.LangFrom(r.Context())
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusUnprocessableEntity, i18n.T(lang, "invalid"), translate(lang, verr.Violations))
	case errors.Is(err, catalog.ErrInvalidInput), errors.Is(err, httpx.ErrBadRequest):
		httpx.JSONError(w, http.StatusBadRequest, i18n.T(lang, "invalid"), nil)
	case errors.Is(err, catalog.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, i18n.T(lang, "not_found"), nil)
	default:
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func translate(lang string, v validation.Violations) map[string]string {
	out := make(map[string]string, len(v))
	for field, code := range v {
		out[field] = i18n.T(lang, code)
	}
	return out
}

func orDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
