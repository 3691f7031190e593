package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/metrics"
)

// MemoryStore is an in-memory cosine-similarity searcher over embedded
// document chunks. It stands in for the external vector database and is
// fed by the document ingestion hand-off.
type MemoryStore struct {
	embedder Embedder

	mu     sync.RWMutex
	chunks []model.DocumentChunk
}

// NewMemoryStore creates an empty store using the given embedder for both
// ingestion and queries.
func NewMemoryStore(embedder Embedder) *MemoryStore {
	return &MemoryStore{embedder: embedder}
}

// Add embeds and stores a batch of chunks. Chunks carrying a precomputed
// embedding are stored as-is.
func (s *MemoryStore) Add(ctx context.Context, chunks []model.DocumentChunk) error {
	prepared := make([]model.DocumentChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			vec, err := s.embedder.Embed(ctx, chunk.Content)
			if err != nil {
				return fmt.Errorf("embedding chunk %s: %w", chunk.ID, err)
			}
			chunk.Embedding = vec
		}
		prepared = append(prepared, chunk)
	}

	s.mu.Lock()
	s.chunks = append(s.chunks, prepared...)
	metrics.DocumentChunksStored.Set(float64(len(s.chunks)))
	s.mu.Unlock()
	return nil
}

// Count returns the number of stored chunks.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Search embeds the query and returns the topK most similar chunks that
// pass the filter, ordered by descending cosine similarity.
func (s *MemoryStore) Search(ctx context.Context, query string, topK int, filters *SearchFilters) ([]model.RetrievalResult, error) {
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []model.RetrievalResult
	for _, chunk := range s.chunks {
		if !filters.Matches(chunk.Metadata) {
			continue
		}
		results = append(results, model.RetrievalResult{
			Chunk: chunk,
			Score: cosineSimilarity(queryVec, chunk.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Stats reports store diagnostics.
func (s *MemoryStore) Stats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"total_documents": len(s.chunks),
		"embedding_model": s.embedder.Model(),
	}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
