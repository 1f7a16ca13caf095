package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "lingua", NumKeys: 1})
	require.NoError(t, err)

	mint := func(role string) string {
		tok, err := km.Sign(jwtx.NewSessionClaims(jwtx.SessionParams{
			Subject: "user-" + role, Role: role, Issuer: "lingua",
		}, time.Now()))
		require.NoError(t, err)
		return tok
	}

	var seen string
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httpx.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}), httpx.Authenticate(km.Verifier), httpx.RequireRole("admin"))

	do := func(setup func(*http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
		setup(req)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do(func(*http.Request) {})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")

	rec = do(func(r *http.Request) { r.Header.Set("Authorization", "Bearer junk") })
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+mint("user")) })
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: httpx.SessionCookie, Value: mint("admin")})
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "user-admin", seen)
}

func TestCurrentRoleOverridesClaim(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "lingua", NumKeys: 1})
	require.NoError(t, err)

	tok, err := km.Sign(jwtx.NewSessionClaims(jwtx.SessionParams{
		Subject: "u1", Role: "admin", Issuer: "lingua",
	}, time.Now()))
	require.NoError(t, err)

	stored := map[string]string{"u1": "user"}
	lookup := func(_ context.Context, subject string) (string, error) {
		if subject == "broken" {
			return "", errors.New("database is locked")
		}
		role, ok := stored[subject]
		if !ok {
			return "", httpx.ErrUnknownSubject
		}
		return role, nil
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), httpx.Authenticate(km.Verifier), httpx.CurrentRole(lookup), httpx.RequireRole("admin"))

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	// Demoted after the token was issued.
	require.Equal(t, http.StatusForbidden, do())

	stored["u1"] = "admin"
	require.Equal(t, http.StatusNoContent, do())

	delete(stored, "u1")
	require.Equal(t, http.StatusUnauthorized, do())

	broken, err := km.Sign(jwtx.NewSessionClaims(jwtx.SessionParams{
		Subject: "broken", Role: "admin", Issuer: "lingua",
	}, time.Now()))
	require.NoError(t, err)
	tok = broken
	require.Equal(t, http.StatusInternalServerError, do())
}

func TestBearerTokenPrefersHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: httpx.SessionCookie, Value: "from-cookie"})
	require.Equal(t, "from-cookie", httpx.BearerToken(req))

	req.Header.Set("Authorization", "Bearer from-header")
	require.Equal(t, "from-header", httpx.BearerToken(req))

}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	decode := func(ct, payload string) error {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		var b body
		return httpx.DecodeJSON(httptest.NewRecorder(), req, &b)
	}

	require.NoError(t, decode("application/json", `{"name":"x"}`))
	require.NoError(t, decode("", `{"name":"x"}`))
	require.ErrorIs(t, decode("text/plain", `{"name":"x"}`), httpx.ErrBadBody)
	require.ErrorIs(t, decode("application/json", `{"nom":"x"}`), httpx.ErrBadBody)
	require.ErrorIs(t, decode("application/json", `{"name":"x"}{}`), httpx.ErrBadBody)
	require.ErrorIs(t, decode("application/json", `{`), httpx.ErrBadBody)
}

func TestWantsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.False(t, httpx.WantsJSON(req))
	req.Header.Set("Accept", "application/json")
	require.True(t, httpx.WantsJSON(req))
	req.Header.Set("Accept", "text/html,application/json")
	require.False(t, httpx.WantsJSON(req))
}
