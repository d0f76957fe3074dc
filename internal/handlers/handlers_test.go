package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/scam-catalog/httpx"
	"github.com/diewo77/scam-catalog/i18n"
	"github.com/diewo77/scam-catalog/internal/catalog"
	"github.com/diewo77/scam-catalog/internal/logging"
	"github.com/diewo77/scam-catalog/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &catalog.ValidationError{Violations: validation.Violations{"name": "required"}}, http.StatusUnprocessableEntity},
		{"invalid input", fmt.Errorf("grant: %w", catalog.ErrInvalidInput), http.StatusBadRequest},
		{"malformed body", fmt.Errorf("%w: eof", httpx.ErrBadRequest), http.StatusBadRequest},
		{"not found", fmt.Errorf("case 3: %w", catalog.ErrNotFound), http.StatusNotFound},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), logging.Discard(), tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestWriteErrorTranslatesViolations(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cases", nil)
	req = req.WithContext(i18n.WithLang(req.Context(), "my"))
	rec := httptest.NewRecorder()
	writeError(rec, req, logging.Discard(), &catalog.ValidationError{Violations: validation.Violations{"identifiers[0].kind": "invalid"}})

	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, i18n.T("my", "invalid"), body.Error)
	assert.Equal(t, i18n.T("my", "invalid"), body.Details["identifiers[0].kind"])
}
