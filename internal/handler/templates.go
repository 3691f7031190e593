package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/form"
)

// TemplateHandler exposes the form template catalog.
type TemplateHandler struct {
	catalog *form.Catalog
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(catalog *form.Catalog) *TemplateHandler {
	return &TemplateHandler{catalog: catalog}
}

// List handles GET /api/v1/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates := h.catalog.Templates()
	writeJSON(w, http.StatusOK, map[string]any{
		"templates": templates,
		"total":     len(templates),
	})
}

// Get handles GET /api/v1/templates/{name}
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	tmpl, ok := h.catalog.Template(name)
	if !ok {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	writeJSON(w, http.StatusOK, tmpl)
}

// Questions handles GET /api/v1/templates/questions. It returns the
// materialized form-collection question list.
func (h *TemplateHandler) Questions(w http.ResponseWriter, r *http.Request) {
	questions := h.catalog.Questions()
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": questions,
		"total":     len(questions),
	})
}
