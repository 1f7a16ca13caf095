package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
)

// BootstrapTokenHeader carries the pre-shared bootstrap token.
const BootstrapTokenHeader = "X-Bootstrap-Token"

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles POST /v1/bootstrap
//
//	@Summary		Create the first admin
//	@Description	One-time setup. Requires the BOOTSTRAP_TOKEN in the X-Bootstrap-Token header and an empty user table.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token"
//	@Param			request				body		linguasdk.BootstrapRequest	true	"Admin account"
//	@Success		201					{object}	linguasdk.UserResponse
//	@Failure		400					{object}	linguasdk.APIError
//	@Failure		403					{object}	linguasdk.APIError	"Invalid bootstrap token"
//	@Failure		409					{object}	linguasdk.APIError	"Already bootstrapped"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.BootstrapRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.BootstrapService.Bootstrap(r.Context(), r.Header.Get(BootstrapTokenHeader),
		req.Username, req.Password, req.PreferredName)
	if err != nil {
		if errors.Is(err, service.ErrBootstrapUnauthorized) {
			linguasdk.ErrAccessDenied.WithDescription("invalid bootstrap token").WriteError(w)
			return
		}
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}
