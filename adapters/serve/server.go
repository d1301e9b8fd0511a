// Package serve exposes a local preview server over a directory of generated
// reports. HTML and JSON reports are served as-is; Markdown reports are
// rendered to HTML on the fly.
package serve

import (
	"fmt"
	"html"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tabkit/adapters/render"
)

// Server serves reports from a single directory.
type Server struct {
	dir    string
	router chi.Router
}

// New builds the preview server for dir.
func New(dir string) *Server {
	s := &Server{dir: dir}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/reports/{name}", s.handleReport)
	s.router = r
	return s
}

// ListenAndServe blocks serving HTTP on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		http.Error(w, "report directory unavailable", http.StatusInternalServerError)
		return
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".html", ".md", ".json":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><title>Reports</title></head><body>\n<h1>Reports</h1>\n<ul>\n")
	for _, name := range names {
		escaped := html.EscapeString(name)
		fmt.Fprintf(&b, "<li><a href=\"/reports/%s\">%s</a></li>\n", escaped, escaped)
	}
	b.WriteString("</ul>\n</body></html>\n")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(b.String()))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != path.Base(name) {
		http.NotFound(w, r)
		return
	}

	full := filepath.Join(s.dir, name)
	raw, err := os.ReadFile(full)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".md":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(render.RenderMarkdownHTML(raw))
	case ".json":
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(raw)
	}
}
