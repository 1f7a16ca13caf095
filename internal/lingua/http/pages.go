package http

import (
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/pkg/guard"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
	"github.com/aussiebroadwan/lingua/pkg/routes"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
)

// GuardReasonHeader reports which guard rule decided a navigation.
const GuardReasonHeader = "X-Guard-Reason"

// PagesHandler serves every non-API path: it matches the route table, asks
// the guard, and either redirects or renders the matched view.
type PagesHandler struct {
	Routes   *routes.Holder
	Views    *routes.Views
	Guard    *guard.Guard
	Sessions *service.SessionResolver
}

func (h *PagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, ok := h.Routes.Table().Match(r.URL.Path)
	if !ok {
		// A compiled table always ends in a catch-all.
		linguasdk.ErrNotFound.WriteError(w)
		return
	}

	sess := h.Sessions.Resolve(ctx, httpx.BearerToken(r))
	d := h.Guard.Check(ctx, sess, guard.Intent{To: m.Target(), From: referrerPath(r)})
	w.Header().Set(GuardReasonHeader, string(d.Reason))

	if !d.Proceeding() {
		httpx.NoCache(w)
		http.Redirect(w, r, d.Location, http.StatusFound)
		return
	}

	if httpx.WantsJSON(r) {
		httpx.WriteJSON(w, http.StatusOK, linguasdk.PageDescriptor{
			View:   m.Entry.View,
			Name:   m.Entry.Name,
			Path:   m.Path,
			Params: m.Params,
		})
		return
	}

	lv, err := h.Views.Lookup(m.Entry.View)
	if err == nil {
		var v routes.View
		if v, err = lv.Get(); err == nil {
			httpx.NoCache(w)
			v.Render(w, r, m)
			return
		}
	}
	slogx.FromContext(ctx).Error("render view", "view", m.Entry.View, "error", err)
	http.Error(w, "page unavailable", http.StatusInternalServerError)
}

// referrerPath is the path of a same-origin Referer, or "".
func referrerPath(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return ""
	}
	return u.Path
}
