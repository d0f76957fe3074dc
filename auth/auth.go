// Package auth resolves who is making a request: a signed session cookie
// names a user, and the middleware turns that user into a disclosure viewer.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/scam-catalog/httpx"
	"github.com/diewo77/scam-catalog/i18n"
	"github.com/diewo77/scam-catalog/internal/disclosure"
	"github.com/diewo77/scam-catalog/internal/models"
	"github.com/diewo77/scam-catalog/internal/store"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const (
	sessionCookieName = "session"
	viewerCtxKey      = ctxKey("viewer")
	// DefaultSessionTTL is how long a session cookie stays valid.
	DefaultSessionTTL = 14 * 24 * time.Hour
	// DevSecret signs sessions when no secret is configured in dev mode.
	DevSecret = "devsessionsecret"
)

// Sessions issues and verifies session cookies. The cookie value is an
// HS256 JWT whose subject is the user id.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a Sessions signing with secret.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Create sets a signed cookie for userID.
func (s *Sessions) Create(w http.ResponseWriter, userID uint) error {
	token, err := s.Token(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.now().Add(s.ttl),
	})
	return nil
}

// Token signs a session token for userID.
func (s *Sessions) Token(userID uint) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Clear deletes the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// Parse validates the session cookie and returns its user id.
func (s *Sessions) Parse(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(c.Value, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, false
	}
	id64, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// WithViewer stores the viewer in context.
func WithViewer(ctx context.Context, v disclosure.Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey, v)
}

// ViewerFromContext returns the request viewer; anonymous when unset.
func ViewerFromContext(ctx context.Context) disclosure.Viewer {
	v, _ := ctx.Value(viewerCtxKey).(disclosure.Viewer)
	return v
}

// UserIDFromContext extracts the signed-in user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	v := ViewerFromContext(ctx)
	return v.UserID, v.Authenticated()
}

// UserSource loads the user a session refers to.
type UserSource interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// Middleware attaches the viewer to every request. A session naming a user
// that no longer exists is cleared and the request continues anonymously.
// freeTrial is copied onto every viewer.
func Middleware(sessions *Sessions, users UserSource, freeTrial bool, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := disclosure.Viewer{FreeTrial: freeTrial}
			if uid, ok := sessions.Parse(r); ok {
				u, err := users.GetUser(r.Context(), uid)
				switch {
				case err == nil:
					v.UserID = u.ID
					v.Staff = u.IsStaff
				case errors.Is(err, store.ErrNotFound):
					sessions.Clear(w)
				default:
					log.Warn("session user lookup failed", "user_id", uid, "error", err)
				}
			}
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), v)))
		})
	}
}

// RequireAuth answers 401 unless the viewer is signed in.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ViewerFromContext(r.Context()).Authenticated() {
			httpx.JSONError(w, http.StatusUnauthorized, i18n.T(i18n.LangFrom(r.Context()), "unauthorized"), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff answers 401 for anonymous viewers and 403 for non-staff.
func RequireStaff(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ViewerFromContext(r.Context()).Staff {
			httpx.JSONError(w, http.StatusForbidden, i18n.T(i18n.LangFrom(r.Context()), "forbidden"), nil)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
