package handler

import (
	"net/http"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/form"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/retrieval"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/session"
)

// SystemHandler exposes service-wide diagnostics.
type SystemHandler struct {
	sessions  *session.Manager
	store     *retrieval.MemoryStore
	retriever *retrieval.Retriever
	catalog   *form.Catalog
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(sessions *session.Manager, store *retrieval.MemoryStore, retriever *retrieval.Retriever, catalog *form.Catalog) *SystemHandler {
	return &SystemHandler{
		sessions:  sessions,
		store:     store,
		retriever: retriever,
		catalog:   catalog,
	}
}

// Stats handles GET /api/v1/system/stats
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"active_sessions":     h.sessions.Count(),
		"documents_indexed":   h.store.Count(),
		"available_templates": len(h.catalog.Templates()),
		"retriever":           h.retriever.Stats(r.Context()),
	})
}
