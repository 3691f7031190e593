package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/chatbot"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/form"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/intent"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/llm"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/retrieval"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/session"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/logger"
)

type echoClient struct{}

func (echoClient) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if req.MaxTokens == 10 {
		return &llm.CompletionResponse{Content: "general"}, nil
	}
	return &llm.CompletionResponse{Content: "câu trả lời"}, nil
}

func (echoClient) Name() string { return "echo" }

type noSearcher struct{}

func (noSearcher) Search(context.Context, string, int, *retrieval.SearchFilters) ([]model.RetrievalResult, error) {
	return nil, nil
}

func (noSearcher) Stats(context.Context) map[string]any { return map[string]any{} }

func newTestRouter(t *testing.T) (*chi.Mux, *session.Manager) {
	t.Helper()
	log := logger.NewNop()
	catalog := form.NewCatalog()
	store := retrieval.NewMemoryStore(fixedEmbedder{})
	retriever := retrieval.NewRetriever(noSearcher{}, nil, retrieval.DefaultConfig(), log)

	sessions := session.NewManager(func() *chatbot.Orchestrator {
		return chatbot.New(chatbot.Config{
			Classifier: intent.NewClassifier(echoClient{}, "m", 0.1, log),
			Retriever:  retriever,
			Generator:  echoClient{},
			Catalog:    catalog,
			Logger:     log,
		})
	}, time.Hour, time.Hour, log)
	t.Cleanup(sessions.Close)

	chatHandler := NewChatHandler(sessions, nil, log)
	sessionHandler := NewSessionHandler(sessions, log)
	templateHandler := NewTemplateHandler(catalog)
	documentHandler := NewDocumentHandler(store, log)
	systemHandler := NewSystemHandler(sessions, store, retriever, catalog)

	r := chi.NewRouter()
	r.Post("/chat", chatHandler.Chat)
	r.Get("/chat/history", chatHandler.History)
	r.Delete("/chat/history", chatHandler.ClearHistory)
	r.Post("/sessions", sessionHandler.Create)
	r.Get("/sessions", sessionHandler.List)
	r.Get("/sessions/{id}", sessionHandler.Get)
	r.Delete("/sessions/{id}", sessionHandler.Delete)
	r.Get("/templates", templateHandler.List)
	r.Get("/templates/questions", templateHandler.Questions)
	r.Get("/templates/{name}", templateHandler.Get)
	r.Post("/documents", documentHandler.Add)
	r.Get("/documents/stats", documentHandler.Stats)
	r.Get("/system/stats", systemHandler.Stats)
	return r, sessions
}

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (fixedEmbedder) Model() string { return "fixed" }

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatCreatesSessionAndReplies(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/chat", ChatRequest{Message: "xin chào"})
	require.Equal(t, http.StatusOK, w.Code)

	var reply ChatReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, "câu trả lời", reply.Message)
	assert.Equal(t, model.IntentGeneral, reply.Intent)
}

func TestChatReusesSession(t *testing.T) {
	r, sessions := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/chat", ChatRequest{SessionID: "phien-1", Message: "xin chào"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/chat", ChatRequest{SessionID: "phien-1", Message: "tiếp"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, sessions.Count())
	sess := sessions.GetOrCreate("phien-1")
	assert.Len(t, sess.History(), 4)
}

func TestChatRejectsInvalidMessages(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/chat", ChatRequest{Message: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/chat", ChatRequest{Message: strings.Repeat("a", maxMessageBytes+1)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusBadRequest, w2.Code)

	w2 = httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"message": "a�"}`)))
	assert.Equal(t, http.StatusOK, w2.Code, "replacement runes are still valid UTF-8")
}

func TestChatHistoryRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/chat", ChatRequest{SessionID: "p", Message: "xin chào"})

	w := doJSON(t, r, http.MethodGet, "/chat/history?session_id=p", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		SessionID string          `json:"session_id"`
		Messages  []model.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Messages, 2)

	w = doJSON(t, r, http.MethodDelete, "/chat/history?session_id=p", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/chat/history?session_id=p", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Messages)
}

func TestChatHistoryUnknownSession(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/chat/history?session_id=unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/chat/history?session_id=unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/chat/history", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["session_id"]
	require.NotEmpty(t, id)

	w = doJSON(t, r, http.MethodGet, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info session.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, id, info.SessionID)

	w = doJSON(t, r, http.MethodDelete, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTemplateEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 5, list.Total)

	w = doJSON(t, r, http.MethodGet, "/templates/dieu_le_cong_ty", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tmpl model.FormTemplate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tmpl))
	assert.Equal(t, "dieu_le_cong_ty", tmpl.Name)
	assert.NotEmpty(t, tmpl.Fields)

	w = doJSON(t, r, http.MethodGet, "/templates/khong_ton_tai", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/templates/questions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var questions struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	assert.Greater(t, questions.Total, 0)
}

func TestDocumentIngestion(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/documents", map[string]any{
		"chunks": []map[string]any{
			{
				"content": "Điều 15. Nội dung...",
				"metadata": map[string]any{
					"document_type":   "Luật",
					"document_number": "59/2020/QH14",
				},
			},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var added struct {
		Added int `json:"added"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))
	assert.Equal(t, 1, added.Added)
	assert.Equal(t, 1, added.Total)

	w = doJSON(t, r, http.MethodGet, "/documents/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "total_documents")
}

func TestDocumentIngestionRejectsEmptyBatch(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/documents", map[string]any{"chunks": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/documents", map[string]any{
		"chunks": []map[string]any{{"content": ""}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSystemStats(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/chat", ChatRequest{SessionID: "p", Message: "xin chào"})

	w := doJSON(t, r, http.MethodGet, "/system/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, float64(1), stats["active_sessions"])
	assert.Contains(t, stats, "retriever")
	assert.Equal(t, float64(5), stats["available_templates"])
}
