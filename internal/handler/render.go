package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// page is the data shared by every rendered page.
type page struct {
	Flash    *model.Flash
	UserName string

	// Page-specific payload.
	Data any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	p := page{Data: data}
	if id := model.IdentityFromContext(r.Context()); id != nil {
		p.UserName = id.Name
	}
	if token := model.SessionTokenFromContext(r.Context()); token != "" {
		flash, err := h.store.PopFlash(token)
		if err != nil {
			slog.Error("pop flash", "error", err)
		}
		p.Flash = flash
	}
	h.renderPage(w, r, name, p)
}

// renderWithFlash renders a page with an explicit flash, used when a handler
// reports a validation failure on the page it re-renders.
func (h *Handler) renderWithFlash(w http.ResponseWriter, r *http.Request, name string, flash model.Flash, data any) {
	p := page{Flash: &flash, Data: data}
	if id := model.IdentityFromContext(r.Context()); id != nil {
		p.UserName = id.Name
	}
	h.renderPage(w, r, name, p)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, name string, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, p); err != nil {
		slog.Error("render error", "template", name, "error", err)
	}
}
