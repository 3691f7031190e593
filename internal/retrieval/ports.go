// Package retrieval orchestrates vector search, similarity filtering and
// reranking over the legal-document corpus.
package retrieval

import (
	"context"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
)

// SearchFilters narrows the candidate corpus for a vector search.
// A nil filter matches everything.
type SearchFilters struct {
	DocumentTypes []model.DocumentType
	LawField      string
}

// Matches reports whether the chunk metadata passes the filter.
func (f *SearchFilters) Matches(meta model.DocumentMetadata) bool {
	if f == nil {
		return true
	}
	if len(f.DocumentTypes) > 0 {
		ok := false
		for _, t := range f.DocumentTypes {
			if meta.DocumentType == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.LawField != "" && meta.LawField != f.LawField {
		return false
	}
	return true
}

// Searcher is the vector search collaborator: similarity-ranked candidates
// for a query over the (possibly filtered) corpus.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, filters *SearchFilters) ([]model.RetrievalResult, error)

	// Stats reports backend diagnostics (document count, model names).
	Stats(ctx context.Context) map[string]any
}

// Scorer is the reranking collaborator: relevance scores for (query,
// candidate) pairs, same length and order as the input.
type Scorer interface {
	Score(ctx context.Context, query string, candidates []string) ([]float64, error)
}

// Embedder generates a vector embedding for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}
