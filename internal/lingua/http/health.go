package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/internal/lingua/store"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
	"github.com/aussiebroadwan/lingua/pkg/routes"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always 200 while the process is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	linguasdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, linguasdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	503 until the database answers, auth has finished initialising and a route table is loaded.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	linguasdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	linguasdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	auth *service.Authority,
	table *routes.Holder,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &linguasdk.HealthChecks{
			Database: "ok",
			Auth:     "ok",
			Routes:   "ok",
		}
		status := "ok"
		code := http.StatusOK
		degrade := func() {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			degrade()
		}
		switch {
		case !auth.IsReady():
			checks.Auth = "initialising"
			degrade()
		case auth.Failed() != nil:
			checks.Auth = "error: " + auth.Failed().Error()
			degrade()
		}
		if table == nil || table.Table() == nil {
			checks.Routes = "error: no route table"
			degrade()
		}

		httpx.WriteJSON(w, code, linguasdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}

// JWKSHandler godoc
//
//	@Summary		Session token verification keys
//	@Description	Ed25519 public keys (RFC 8037) for verifying session tokens.
//	@Tags			Accounts
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(auth *service.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, auth.JWKS())
	}
}
