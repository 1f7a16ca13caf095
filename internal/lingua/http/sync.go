package http

import (
	"net/http"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
)

// SyncHandler exchanges offline changes with PWA clients.
type SyncHandler struct {
	Sync *service.SyncService
}

// HandlePush handles POST /v1/sync
//
//	@Summary		Push offline operations
//	@Description	Applies queued ops in client_time order. Each op_id is applied at most once per user;
//	@Description	pushing it again returns the recorded result with replayed=true.
//	@Tags			Sync
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		linguasdk.SyncRequest	true	"Operations"
//	@Success		200		{object}	linguasdk.SyncResponse
//	@Failure		400		{object}	linguasdk.APIError	"Malformed batch"
//	@Router			/v1/sync [post].
func (h *SyncHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	var req linguasdk.SyncRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ops := make([]domain.SyncOp, 0, len(req.Ops))
	for _, op := range req.Ops {
		ops = append(ops, domain.SyncOp{
			OpID:       op.OpID,
			Kind:       op.Kind,
			Payload:    op.Payload,
			ClientTime: op.ClientTime,
		})
	}

	batch, err := h.Sync.Apply(r.Context(), httpx.UserID(r.Context()), ops)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, linguasdk.SyncResponse{
		Results: toSyncResults(batch.Results),
	})
}

// HandlePull handles GET /v1/sync
//
//	@Summary	Pull changed cards
//	@Tags		Sync
//	@Security	BearerAuth
//	@Produce	json
//	@Param		since	query		string	false	"Cursor from a previous sync"
//	@Success	200		{object}	linguasdk.ChangesResponse
//	@Failure	400		{object}	linguasdk.APIError	"Bad cursor"
//	@Router		/v1/sync [get].
func (h *SyncHandler) HandlePull(w http.ResponseWriter, r *http.Request) {
	changes, err := h.Sync.Pull(r.Context(), httpx.UserID(r.Context()), r.URL.Query().Get("since"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, linguasdk.ChangesResponse{
		Cards:  toCards(changes.Cards),
		Cursor: string(changes.Cursor),
	})
}
