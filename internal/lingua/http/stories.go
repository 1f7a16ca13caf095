package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
)

type StoriesHandler struct {
	Stories *service.StoryService
}

// HandleList handles GET /v1/stories
//
//	@Summary	List stories
//	@Tags		Stories
//	@Security	BearerAuth
//	@Produce	json
//	@Param		level	query		string	false	"CEFR level"	Enums(A1, A2, B1, B2, C1, C2)
//	@Param		limit	query		int		false	"Page size (max 100)"
//	@Param		offset	query		int		false	"Page offset"
//	@Success	200		{object}	linguasdk.StoriesResponse
//	@Failure	400		{object}	linguasdk.APIError
//	@Router		/v1/stories [get].
func (h *StoriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Stories.List(r.Context(), domain.Level(r.URL.Query().Get("level")), pageFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]linguasdk.StoryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toStory(s))
	}
	httpx.WriteJSON(w, http.StatusOK, linguasdk.StoriesResponse{Stories: out})
}

// HandleGet handles GET /v1/stories/{id}
//
//	@Summary	Get a story
//	@Tags		Stories
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Story ID"
//	@Success	200	{object}	linguasdk.StoryResponse
//	@Failure	404	{object}	linguasdk.APIError
//	@Router		/v1/stories/{id} [get].
func (h *StoriesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.Stories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toStory(s))
}

// HandleCreate handles POST /v1/stories
//
//	@Summary	Publish a story
//	@Tags		Stories
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		linguasdk.StoryRequest	true	"Story"
//	@Success	201		{object}	linguasdk.StoryResponse
//	@Failure	400		{object}	linguasdk.APIError
//	@Failure	403		{object}	linguasdk.APIError	"Admin role required"
//	@Router		/v1/stories [post].
func (h *StoriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.StoryRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.Stories.Create(r.Context(), httpx.UserID(r.Context()), service.NewStory{
		Title:    req.Title,
		Language: req.Language,
		Level:    domain.Level(req.Level),
		Body:     req.Body,
		AudioURL: req.AudioURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toStory(s))
}

// HandleDelete handles DELETE /v1/stories/{id}
//
//	@Summary	Delete a story
//	@Tags		Stories
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Story ID"
//	@Success	204
//	@Failure	403	{object}	linguasdk.APIError	"Admin role required"
//	@Failure	404	{object}	linguasdk.APIError
//	@Router		/v1/stories/{id} [delete].
func (h *StoriesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Stories.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pageFrom reads limit and offset. Bad values fall back to the defaults.
func pageFrom(r *http.Request) service.Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return service.Page{Limit: limit, Offset: offset}
}
