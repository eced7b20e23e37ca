package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/abgdnv/inventory/internal/platform/web"
)

//go:embed pages/*.html
var pageFS embed.FS

var pages = template.Must(template.ParseFS(pageFS, "pages/*.html"))

type page struct {
	Title string
}

// Index serves the start page.
func (a *api) Index(w http.ResponseWriter, r *http.Request) {
	a.renderPage(w, r, "index.html", page{Title: "Start"})
}

// RegisterForm serves the HTML form posting to /register.
func (a *api) RegisterForm(w http.ResponseWriter, r *http.Request) {
	a.renderPage(w, r, "RegisterForm.html", page{Title: "Register"})
}

// SearchForm serves the HTML form posting to /search.
func (a *api) SearchForm(w http.ResponseWriter, r *http.Request) {
	a.renderPage(w, r, "SearchForm.html", page{Title: "Search"})
}

func (a *api) renderPage(w http.ResponseWriter, r *http.Request, name string, data page) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.ErrorContext(r.Context(), "Error rendering page", "page", name, "error", err)
		web.RespondError(w, a.logger, http.StatusInternalServerError, "Failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
