package web_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/aussiebroadwan/lingua/pkg/guard"
	"github.com/aussiebroadwan/lingua/pkg/routes"
	"github.com/aussiebroadwan/lingua/web"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedRoutesHaveViews(t *testing.T) {
	t.Parallel()

	tbl, err := web.Routes()
	require.NoError(t, err)
	require.NoError(t, web.Views().Check(tbl))

	last := tbl.Entries()[len(tbl.Entries())-1]
	require.True(t, last.IsCatchAll())
}

func TestEmbeddedRoutesMeta(t *testing.T) {
	t.Parallel()

	tbl, err := web.Routes()
	require.NoError(t, err)

	tests := []struct {
		path string
		name string
		want guard.Requirements
	}{
		{"/", "home", guard.Requirements{}},
		{"/auth/login", "login", guard.Requirements{Guest: true}},
		{"/stories", "stories", guard.Requirements{Auth: true}},
		{"/stories/01J", "story", guard.Requirements{Auth: true}},
		{"/admin/users", "admin-users", guard.Requirements{Auth: true, Admin: true}},
		{"/nowhere", "not-found", guard.Requirements{}},
	}
	for _, tt := range tests {
		m, ok := tbl.Match(tt.path)
		require.True(t, ok, tt.path)
		require.Equal(t, tt.name, m.Entry.Name, tt.path)
		require.Equal(t, tt.want, guard.Fold(m.Entry.Chain), tt.path)
	}
}

func TestRenderEveryView(t *testing.T) {
	t.Parallel()

	tbl, err := web.Routes()
	require.NoError(t, err)
	vs := web.Views()

	for _, e := range tbl.Entries() {
		p := e.Path
		if e.IsCatchAll() {
			p = "/missing/page"
		}
		p = strings.ReplaceAll(p, ":id", "01J")
		m, ok := tbl.Match(p)
		require.True(t, ok, p)

		lv, err := vs.Lookup(m.Entry.View)
		require.NoError(t, err)
		v, err := lv.Get()
		require.NoError(t, err, e.View)

		rec := httptest.NewRecorder()
		v.Render(rec, httptest.NewRequest(http.MethodGet, p, nil), m)

		body := rec.Body.String()
		require.Contains(t, body, `data-view="`+e.View+`"`)
		if e.IsCatchAll() {
			require.Equal(t, http.StatusNotFound, rec.Code)
			require.Contains(t, body, "/missing/page")
		} else {
			require.Equal(t, http.StatusOK, rec.Code, e.View)
		}
	}
}

func TestViewsLoadLazily(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"templates/layout.html": {Data: []byte(`{{define "layout"}}[{{template "content" .}}]{{end}}`)},
		"templates/home.html":   {Data: []byte(`{{define "content"}}home{{end}}`)},
		"templates/broken.html": {Data: []byte(`{{define "content"}}{{.Nope{{end}}`)},
	}
	vs := web.ViewsFS(fsys)

	home, err := vs.Lookup("home")
	require.NoError(t, err)
	require.False(t, home.Loaded())

	v, err := home.Get()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	v.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), routes.Match{})
	require.Equal(t, "[home]", rec.Body.String())
	require.True(t, home.Loaded())

	broken, err := vs.Lookup("broken")
	require.NoError(t, err)
	_, err = broken.Get()
	require.Error(t, err)

	_, err = vs.Lookup("layout")
	require.ErrorIs(t, err, routes.ErrUnknownView)
}
