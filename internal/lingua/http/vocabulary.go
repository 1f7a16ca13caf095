package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
)

// VocabularyHandler serves the caller's SM-2 flashcards.
type VocabularyHandler struct {
	Vocabulary *service.VocabularyService
}

// HandleAdd handles POST /v1/vocabulary
//
//	@Summary	Add a card
//	@Tags		Vocabulary
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		linguasdk.CardRequest	true	"Word and translation"
//	@Success	201		{object}	linguasdk.CardResponse
//	@Failure	400		{object}	linguasdk.APIError
//	@Failure	409		{object}	linguasdk.APIError	"Word already in deck"
//	@Router		/v1/vocabulary [post].
func (h *VocabularyHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.CardRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.Vocabulary.Add(r.Context(), httpx.UserID(r.Context()), service.NewCard{
		Word:        req.Word,
		Translation: req.Translation,
		StoryID:     req.StoryID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toCard(c))
}

// HandleList handles GET /v1/vocabulary
//
//	@Summary	List cards
//	@Tags		Vocabulary
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	linguasdk.CardsResponse
//	@Router		/v1/vocabulary [get].
func (h *VocabularyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Vocabulary.List(r.Context(), httpx.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, linguasdk.CardsResponse{Cards: toCards(cards)})
}

// HandleDue handles GET /v1/vocabulary/due
//
//	@Summary	Cards due for review
//	@Tags		Vocabulary
//	@Security	BearerAuth
//	@Produce	json
//	@Param		limit	query		int	false	"Maximum cards"
//	@Success	200		{object}	linguasdk.CardsResponse
//	@Router		/v1/vocabulary/due [get].
func (h *VocabularyHandler) HandleDue(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	cards, err := h.Vocabulary.Due(r.Context(), httpx.UserID(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, linguasdk.CardsResponse{Cards: toCards(cards)})
}

// HandleReview handles POST /v1/vocabulary/{id}/review
//
//	@Summary		Review a card
//	@Description	Applies an SM-2 review. Quality is 0 (blackout) to 5 (perfect).
//	@Tags			Vocabulary
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Card ID"
//	@Param			request	body		linguasdk.ReviewRequest	true	"Quality"
//	@Success		200		{object}	linguasdk.CardResponse
//	@Failure		400		{object}	linguasdk.APIError
//	@Failure		404		{object}	linguasdk.APIError
//	@Router			/v1/vocabulary/{id}/review [post].
func (h *VocabularyHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.ReviewRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.Vocabulary.Review(r.Context(), httpx.UserID(r.Context()), r.PathValue("id"), req.Quality)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCard(c))
}

// HandleDelete handles DELETE /v1/vocabulary/{id}
//
//	@Summary	Delete a card
//	@Tags		Vocabulary
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Card ID"
//	@Success	204
//	@Failure	404	{object}	linguasdk.APIError
//	@Router		/v1/vocabulary/{id} [delete].
func (h *VocabularyHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Vocabulary.Delete(r.Context(), httpx.UserID(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
