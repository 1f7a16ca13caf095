// Package web holds the page route table and the server-rendered views of
// the lingua web client.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
	"github.com/aussiebroadwan/lingua/pkg/routes"
)

//go:embed routes.yaml
var routesYAML []byte

//go:embed templates/*.html
var templates embed.FS

const layoutFile = "templates/layout.html"

// Routes compiles the embedded route table.
func Routes() (*routes.Table, error) {
	return routes.LoadBytes(routesYAML)
}

// RoutesYAML returns the embedded route document, used to seed a route file
// on disk.
func RoutesYAML() []byte {
	out := make([]byte, len(routesYAML))
	copy(out, routesYAML)
	return out
}

// Views registers a lazy view for every page template. A template is only
// parsed the first time a navigation renders it.
func Views() *routes.Views {
	return ViewsFS(templates)
}

// ViewsFS is Views over another template tree laid out like the embedded
// one.
func ViewsFS(fsys fs.FS) *routes.Views {
	vs := routes.NewViews()
	files, _ := fs.Glob(fsys, "templates/*.html")
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(f), ".html")
		vs.Register(name, func() (routes.View, error) {
			t, err := template.ParseFS(fsys, layoutFile, f)
			if err != nil {
				return nil, err
			}
			return &page{tmpl: t, view: name}, nil
		})
	}
	return vs
}

type page struct {
	tmpl *template.Template
	view string
}

// pageData is what every template sees.
type pageData struct {
	View      string
	Name      string
	Path      string
	Params    map[string]string
	Levels    []domain.Level
	Qualities []int
}

func (p *page) Render(w http.ResponseWriter, r *http.Request, m routes.Match) {
	data := pageData{
		View:   p.view,
		Name:   m.Entry.Name,
		Path:   m.Path,
		Params: m.Params,
		Levels: domain.Levels,
	}
	for q := 0; q <= domain.MaxQuality; q++ {
		data.Qualities = append(data.Qualities, q)
	}

	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusFor(m))
	_, _ = buf.WriteTo(w)
}

func statusFor(m routes.Match) int {
	if m.Entry.IsCatchAll() {
		return http.StatusNotFound
	}
	return http.StatusOK
}
