package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/retrieval"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/logger"
)

// AddDocumentsRequest is a batch of pre-chunked documents from the
// ingestion pipeline.
type AddDocumentsRequest struct {
	Chunks []struct {
		Content  string                 `json:"content"`
		Metadata model.DocumentMetadata `json:"metadata"`
	} `json:"chunks"`
}

// DocumentHandler receives document chunks from the ingestion collaborator.
type DocumentHandler struct {
	store  *retrieval.MemoryStore
	logger *logger.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(store *retrieval.MemoryStore, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{store: store, logger: log}
}

// Add handles POST /api/v1/documents
func (h *DocumentHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Chunks) == 0 {
		writeError(w, http.StatusBadRequest, "chunks cannot be empty")
		return
	}

	chunks := make([]model.DocumentChunk, 0, len(req.Chunks))
	for _, c := range req.Chunks {
		if c.Content == "" {
			writeError(w, http.StatusBadRequest, "chunk content cannot be empty")
			return
		}
		chunks = append(chunks, model.NewDocumentChunk(c.Content, c.Metadata))
	}

	if err := h.store.Add(r.Context(), chunks); err != nil {
		h.logger.Error("failed to add document chunks", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to index documents")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"added": len(chunks),
		"total": h.store.Count(),
	})
}

// Stats handles GET /api/v1/documents/stats
func (h *DocumentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats(r.Context()))
}
