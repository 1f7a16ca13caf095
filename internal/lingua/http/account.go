package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
)

// AccountHandler serves registration, login and the caller's profile.
type AccountHandler struct {
	Accounts *service.AccountService

	// SecureCookies marks the session cookie Secure. Disable only for
	// plain HTTP development.
	SecureCookies bool
}

// HandleRegister handles POST /v1/auth/register
//
//	@Summary		Register an account
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		linguasdk.RegisterRequest	true	"Account details"
//	@Success		201		{object}	linguasdk.UserResponse
//	@Failure		400		{object}	linguasdk.APIError	"Invalid input"
//	@Failure		409		{object}	linguasdk.APIError	"Username taken"
//	@Failure		429		{object}	linguasdk.APIError	"Rate limited"
//	@Router			/v1/auth/register [post].
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.Accounts.Register(r.Context(), service.Registration{
		Username:      req.Username,
		Password:      req.Password,
		PreferredName: req.PreferredName,
		Level:         domain.Level(req.Level),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Log in
//	@Description	Checks the password and, once MFA is enabled, a TOTP or backup code.
//	@Description	Returns an EdDSA-signed session token and sets it as the session cookie.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		linguasdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	linguasdk.LoginResponse
//	@Failure		401		{object}	linguasdk.APIError	"Invalid credentials or MFA code required"
//	@Failure		503		{object}	linguasdk.APIError	"Authentication still starting up"
//	@Router			/v1/auth/login [post].
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.Accounts.Login(r.Context(), req.Username, req.Password, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	httpx.WriteJSON(w, http.StatusOK, linguasdk.LoginResponse{
		AccessToken: res.Token,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
		User:        toUser(res.User),
	})
}

// HandleLogout handles POST /v1/auth/logout
//
//	@Summary	Log out
//	@Tags		Accounts
//	@Success	204
//	@Router		/v1/auth/logout [post].
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /v1/me
//
//	@Summary	Current account
//	@Tags		Accounts
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	linguasdk.UserResponse
//	@Failure	401	{object}	linguasdk.APIError
//	@Router		/v1/me [get].
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.Accounts.Me(r.Context(), httpx.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleUpdate handles PATCH /v1/me
//
//	@Summary	Update preferred name and CEFR level
//	@Tags		Accounts
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		linguasdk.UpdateProfileRequest	true	"Profile"
//	@Success	200		{object}	linguasdk.UserResponse
//	@Failure	400		{object}	linguasdk.APIError
//	@Failure	401		{object}	linguasdk.APIError
//	@Router		/v1/me [patch].
func (h *AccountHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.Accounts.UpdateProfile(r.Context(), httpx.UserID(r.Context()), req.PreferredName, domain.Level(req.Level))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}
