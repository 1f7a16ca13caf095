package http

import (
	"net/http"

	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
)

type BannersHandler struct {
	Banners *service.BannerService
}

// HandleActive handles GET /v1/banners/active
//
//	@Summary	Banners showing now
//	@Tags		Banners
//	@Produce	json
//	@Success	200	{object}	linguasdk.BannersResponse
//	@Router		/v1/banners/active [get].
func (h *BannersHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Banners.Active(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, linguasdk.BannersResponse{Banners: toBanners(bs)})
}

// HandleList handles GET /v1/admin/banners
//
//	@Summary	List all banners
//	@Tags		Admin
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	linguasdk.BannersResponse
//	@Failure	403	{object}	linguasdk.APIError
//	@Router		/v1/admin/banners [get].
func (h *BannersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Banners.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, linguasdk.BannersResponse{Banners: toBanners(bs)})
}

// HandleCreate handles POST /v1/admin/banners
//
//	@Summary	Create a banner
//	@Tags		Admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		linguasdk.BannerRequest	true	"Banner"
//	@Success	201		{object}	linguasdk.BannerResponse
//	@Failure	400		{object}	linguasdk.APIError
//	@Failure	403		{object}	linguasdk.APIError
//	@Router		/v1/admin/banners [post].
func (h *BannersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.BannerRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.Banners.Create(r.Context(), httpx.UserID(r.Context()), fromBannerRequest(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toBanner(b))
}

// HandleUpdate handles PUT /v1/admin/banners/{id}
//
//	@Summary	Replace a banner
//	@Tags		Admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Banner ID"
//	@Param		request	body		linguasdk.BannerRequest	true	"Banner"
//	@Success	200		{object}	linguasdk.BannerResponse
//	@Failure	400		{object}	linguasdk.APIError
//	@Failure	404		{object}	linguasdk.APIError
//	@Router		/v1/admin/banners/{id} [put].
func (h *BannersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.BannerRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.Banners.Update(r.Context(), r.PathValue("id"), fromBannerRequest(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toBanner(b))
}

// HandleDelete handles DELETE /v1/admin/banners/{id}
//
//	@Summary	Delete a banner
//	@Tags		Admin
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Banner ID"
//	@Success	204
//	@Failure	404	{object}	linguasdk.APIError
//	@Router		/v1/admin/banners/{id} [delete].
func (h *BannersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Banners.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UsersHandler is the admin panel's user management.
type UsersHandler struct {
	Users *service.UserAdminService
}

// HandleList handles GET /v1/admin/users
//
//	@Summary	List users
//	@Tags		Admin
//	@Security	BearerAuth
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (max 100)"
//	@Param		offset	query		int	false	"Page offset"
//	@Success	200		{object}	linguasdk.UsersResponse
//	@Failure	403		{object}	linguasdk.APIError
//	@Router		/v1/admin/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	us, err := h.Users.List(r.Context(), pageFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, linguasdk.UsersResponse{Users: toUsers(us)})
}

// HandleSetRole handles PUT /v1/admin/users/{id}/role
//
//	@Summary		Change a user's role
//	@Description	Admins cannot change their own role.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"User ID"
//	@Param			request	body		linguasdk.RoleRequest	true	"Role"
//	@Success		200		{object}	linguasdk.UserResponse
//	@Failure		400		{object}	linguasdk.APIError
//	@Failure		403		{object}	linguasdk.APIError
//	@Failure		404		{object}	linguasdk.APIError
//	@Router			/v1/admin/users/{id}/role [put].
func (h *UsersHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.RoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.Users.SetRole(r.Context(), httpx.UserID(r.Context()), r.PathValue("id"), req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleDelete handles DELETE /v1/admin/users/{id}
//
//	@Summary		Delete a user
//	@Description	Removes the user and everything they own. Admins cannot delete themselves.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User ID"
//	@Success		204
//	@Failure		403	{object}	linguasdk.APIError
//	@Failure		404	{object}	linguasdk.APIError
//	@Router			/v1/admin/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Delete(r.Context(), httpx.UserID(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
