package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diewo77/scam-catalog/auth"
	"github.com/diewo77/scam-catalog/httpx"
	"github.com/diewo77/scam-catalog/i18n"
	"github.com/diewo77/scam-catalog/internal/models"
	"github.com/diewo77/scam-catalog/internal/store"
	"github.com/diewo77/scam-catalog/validation"
)

type AuthHandler struct {
	store    *store.Store
	sessions *auth.Sessions
	log      *slog.Logger
}

func NewAuthHandler(s *store.Store, sessions *auth.Sessions, log *slog.Logger) *AuthHandler {
	return &AuthHandler{store: s, sessions: sessions, log: orDefault(log)}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := httpx.Decode(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	lang := i18n.LangFrom(r.Context())
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	v := validation.Violations{}
	validation.Required("email", in.Email, v)
	validation.MaxLength("email", in.Email, 255, v)
	validation.Required("password", in.Password, v)
	if in.Password != "" && len(in.Password) < auth.MinPasswordLength {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, i18n.T(lang, "invalid"), translate(lang, v))
		return
	}

	if _, err := h.store.UserByEmail(r.Context(), in.Email); err == nil {
		httpx.JSONError(w, http.StatusConflict, i18n.T(lang, "email_taken"), nil)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, r, h.log, err)
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	user := models.User{Email: in.Email, Password: hash, Name: strings.TrimSpace(in.Name)}
	if err := h.store.CreateUser(r.Context(), &user); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.sessions.Create(w, user.ID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.log.Info("user registered", "user_id", user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := httpx.Decode(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	user, err := h.store.UserByEmail(r.Context(), in.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, r, h.log, err)
		return
	}
	if err != nil || !auth.CheckPassword(user.Password, in.Password) {
		httpx.JSONError(w, http.StatusUnauthorized, i18n.T(i18n.LangFrom(r.Context()), "invalid_credentials"), nil)
		return
	}
	if err := h.sessions.Create(w, user.ID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me describes the current viewer.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	v := auth.ViewerFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":       v.UserID,
		"authenticated": v.Authenticated(),
		"staff":         v.Staff,
		"free_trial":    v.FreeTrial,
	})
}
