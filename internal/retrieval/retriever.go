package retrieval

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/logger"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/metrics"
)

// Config holds retrieval tuning values.
type Config struct {
	TopK                int
	RerankTopK          int
	SimilarityThreshold float64
}

// DefaultConfig returns the standard retrieval configuration.
func DefaultConfig() Config {
	return Config{
		TopK:                10,
		RerankTopK:          5,
		SimilarityThreshold: 0.7,
	}
}

// Retriever runs the search → threshold → rerank → truncate pipeline.
// The scorer may be nil, in which case results keep similarity order.
type Retriever struct {
	searcher Searcher
	scorer   Scorer
	cfg      Config
	logger   *logger.Logger
}

// NewRetriever creates a retriever over the given collaborators.
func NewRetriever(searcher Searcher, scorer Scorer, cfg Config, log *logger.Logger) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	if cfg.RerankTopK <= 0 {
		cfg.RerankTopK = 5
	}
	return &Retriever{
		searcher: searcher,
		scorer:   scorer,
		cfg:      cfg,
		logger:   log,
	}
}

// RetrieveForIntent retrieves with the intent-specific corpus filter:
// legal restricts document types, business restricts to the business
// registration law field, general applies no filter.
func (r *Retriever) RetrieveForIntent(ctx context.Context, query string, intent model.Intent, conversationContext string) ([]model.RetrievalResult, error) {
	var filters *SearchFilters
	switch intent {
	case model.IntentLegal:
		filters = &SearchFilters{DocumentTypes: model.LegalDocumentTypes}
	case model.IntentBusiness:
		filters = &SearchFilters{LawField: "dang_ky_kinh_doanh"}
	}
	return r.Retrieve(ctx, query, filters, conversationContext)
}

// Retrieve returns up to RerankTopK results ordered by relevance. An empty
// slice means "no relevant evidence", not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, filters *SearchFilters, conversationContext string) ([]model.RetrievalResult, error) {
	enhanced := enhanceQuery(query, conversationContext)

	candidates, err := r.searcher.Search(ctx, enhanced, r.cfg.TopK, filters)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(candidates) == 0 {
		metrics.RetrievalResultsReturned.Observe(0)
		return nil, nil
	}

	filtered := candidates[:0:0]
	for _, c := range candidates {
		if c.Score >= r.cfg.SimilarityThreshold {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		metrics.RetrievalResultsReturned.Observe(0)
		return nil, nil
	}

	reranked := r.rerank(ctx, enhanced, filtered)

	if len(reranked) > r.cfg.RerankTopK {
		reranked = reranked[:r.cfg.RerankTopK]
	}
	metrics.RetrievalResultsReturned.Observe(float64(len(reranked)))
	return reranked, nil
}

// rerank rescores the survivors with the cross-encoder collaborator.
// A single survivor passes through untouched; scorer failure falls back
// to the similarity-ordered input.
func (r *Retriever) rerank(ctx context.Context, query string, results []model.RetrievalResult) []model.RetrievalResult {
	if r.scorer == nil || len(results) <= 1 {
		return results
	}

	candidates := make([]string, len(results))
	for i, res := range results {
		candidates[i] = res.RepresentativeText()
	}

	scores, err := r.scorer.Score(ctx, query, candidates)
	if err != nil || len(scores) != len(results) {
		if err == nil {
			err = fmt.Errorf("scorer returned %d scores for %d candidates", len(scores), len(results))
		}
		r.logger.Warn("reranking failed, keeping similarity order", zap.Error(err))
		metrics.RerankFallbacksTotal.Inc()
		return results
	}

	reranked := make([]model.RetrievalResult, len(results))
	for i, res := range results {
		score := scores[i]
		res.OriginalScore = res.Score
		res.RerankScore = &score
		res.Score = score
		reranked[i] = res
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return *reranked[i].RerankScore > *reranked[j].RerankScore
	})
	return reranked
}

// Stats reports retrieval configuration merged with searcher diagnostics.
func (r *Retriever) Stats(ctx context.Context) map[string]any {
	stats := map[string]any{
		"top_k":                r.cfg.TopK,
		"rerank_top_k":         r.cfg.RerankTopK,
		"similarity_threshold": r.cfg.SimilarityThreshold,
	}
	for k, v := range r.searcher.Stats(ctx) {
		stats[k] = v
	}
	return stats
}

// enhanceQuery prepends the conversation context when present. Plain
// concatenation, no summarization.
func enhanceQuery(query, conversationContext string) string {
	if conversationContext == "" {
		return query
	}
	return fmt.Sprintf("Bối cảnh: %s\nCâu hỏi: %s", conversationContext, query)
}
