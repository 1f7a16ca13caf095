package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/lingua/pkg/jwtx"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
)

// SessionCookie carries the session token for browser navigation.
const SessionCookie = "lingua_session"

// ErrUnknownSubject is returned by a RoleLookup when the token's subject
// no longer exists.
var ErrUnknownSubject = errors.New("httpx: unknown subject")

// RoleLookup returns the current role of subject.
type RoleLookup func(ctx context.Context, subject string) (string, error)

// TokenVerifier verifies session tokens.
type TokenVerifier interface {
	Verify(token string) (jwtx.Claims, error)
}

// BearerToken returns the session token from the Authorization header,
// falling back to the session cookie.
func BearerToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate rejects requests without a valid session token and stores
// the verified claims on the request context.
func Authenticate(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := BearerToken(r)
			if raw == "" {
				writeBearerError(w, http.StatusUnauthorized, "invalid_token", "missing session token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("session token rejected", "error", err)
				writeBearerError(w, http.StatusUnauthorized, "invalid_token", "token verification failed")
				return
			}

			ctx = WithClaims(ctx, claims)
			ctx = slogx.WithUser(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentRole replaces the token's role claim with the subject's current
// role, so demotions and deleted accounts apply before the token expires.
// It must run after Authenticate.
func CurrentRole(lookup RoleLookup) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			role, err := lookup(ctx, UserID(ctx))
			switch {
			case errors.Is(err, ErrUnknownSubject):
				writeBearerError(w, http.StatusUnauthorized, "invalid_token", "session user no longer exists")
				return
			case err != nil:
				slogx.FromContext(ctx).Error("load session role", "error", err)
				WriteJSON(w, http.StatusInternalServerError, map[string]string{
					"error":             "server_error",
					"error_description": "internal server error",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithRole(ctx, role)))
		})
	}
}

// RequireRole admits only callers whose session carries one of roles.
// It must run after Authenticate.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := Role(r.Context())
			for _, role := range roles {
				if have == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeBearerError(w, http.StatusForbidden, "access_denied", "role "+strings.Join(roles, " or ")+" required")
		})
	}
}

// RFC 6750 style bearer challenge.
func writeBearerError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	WriteJSON(w, status, map[string]string{
		"error":             code,
		"error_description": desc,
	})
}
