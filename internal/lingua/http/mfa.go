package http

import (
	"net/http"

	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
)

// MFAHandler handles TOTP enrolment and removal.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll handles POST /v1/mfa/totp/enroll
//
//	@Summary		Start TOTP enrolment
//	@Description	Generates a TOTP secret. MFA is not enforced until the first code is verified.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	linguasdk.TOTPEnrollResponse
//	@Failure		401	{object}	linguasdk.APIError
//	@Failure		409	{object}	linguasdk.APIError	"MFA already enabled"
//	@Router			/v1/mfa/totp/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	e, err := h.MFAService.Enroll(r.Context(), httpx.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, linguasdk.TOTPEnrollResponse{
		Secret:  e.Secret,
		URL:     e.URL,
		Issuer:  e.Issuer,
		Account: e.Account,
	})
}

// HandleVerify handles POST /v1/mfa/totp/verify
//
//	@Summary		Verify a TOTP code and enable MFA
//	@Description	Returns ten backup codes. They are shown once.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		linguasdk.TOTPCodeRequest	true	"TOTP code"
//	@Success		200		{object}	linguasdk.BackupCodesResponse
//	@Failure		400		{object}	linguasdk.APIError	"Invalid code or not enrolled"
//	@Failure		401		{object}	linguasdk.APIError
//	@Router			/v1/mfa/totp/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.TOTPCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	codes, err := h.MFAService.Verify(r.Context(), httpx.UserID(r.Context()), req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, linguasdk.BackupCodesResponse{Codes: codes})
}

// HandleRemove handles DELETE /v1/mfa/totp
//
//	@Summary	Disable MFA
//	@Tags		MFA
//	@Security	BearerAuth
//	@Accept		json
//	@Param		request	body	linguasdk.TOTPCodeRequest	true	"Current TOTP or backup code"
//	@Success	204
//	@Failure	400	{object}	linguasdk.APIError
//	@Failure	401	{object}	linguasdk.APIError
//	@Router		/v1/mfa/totp [delete].
func (h *MFAHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.TOTPCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.MFAService.Disable(r.Context(), httpx.UserID(r.Context()), req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
