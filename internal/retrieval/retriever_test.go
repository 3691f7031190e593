package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/logger"
)

type stubSearcher struct {
	results     []model.RetrievalResult
	err         error
	lastQuery   string
	lastTopK    int
	lastFilters *SearchFilters
}

func (s *stubSearcher) Search(_ context.Context, query string, topK int, filters *SearchFilters) ([]model.RetrievalResult, error) {
	s.lastQuery = query
	s.lastTopK = topK
	s.lastFilters = filters
	return s.results, s.err
}

func (s *stubSearcher) Stats(context.Context) map[string]any {
	return map[string]any{"total_documents": len(s.results)}
}

type stubScorer struct {
	scores []float64
	err    error
	calls  int
}

func (s *stubScorer) Score(_ context.Context, _ string, candidates []string) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.scores != nil {
		return s.scores, nil
	}
	return make([]float64, len(candidates)), nil
}

func resultWithScore(title string, score float64) model.RetrievalResult {
	return model.RetrievalResult{
		Chunk: model.DocumentChunk{
			Content:  "nội dung " + title,
			Metadata: model.DocumentMetadata{ChunkTitle: title},
		},
		Score: score,
	}
}

func TestRetrieveFiltersBelowThreshold(t *testing.T) {
	searcher := &stubSearcher{results: []model.RetrievalResult{
		resultWithScore("a", 0.95),
		resultWithScore("b", 0.70), // boundary survives
		resultWithScore("c", 0.69),
		resultWithScore("d", 0.10),
	}}
	r := NewRetriever(searcher, nil, DefaultConfig(), logger.NewNop())

	results, err := r.Retrieve(context.Background(), "câu hỏi", nil, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.Metadata.ChunkTitle)
	assert.Equal(t, "b", results[1].Chunk.Metadata.ChunkTitle)
}

func TestRetrieveEmptyIsNotAnError(t *testing.T) {
	r := NewRetriever(&stubSearcher{}, nil, DefaultConfig(), logger.NewNop())

	results, err := r.Retrieve(context.Background(), "câu hỏi", nil, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieveAllBelowThreshold(t *testing.T) {
	searcher := &stubSearcher{results: []model.RetrievalResult{
		resultWithScore("a", 0.3),
		resultWithScore("b", 0.1),
	}}
	scorer := &stubScorer{}
	r := NewRetriever(searcher, scorer, DefaultConfig(), logger.NewNop())

	results, err := r.Retrieve(context.Background(), "câu hỏi", nil, "")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, scorer.calls, "nothing survived the threshold, reranker must not run")
}

func TestRetrieveSearchError(t *testing.T) {
	r := NewRetriever(&stubSearcher{err: errors.New("backend down")}, nil, DefaultConfig(), logger.NewNop())

	results, err := r.Retrieve(context.Background(), "câu hỏi", nil, "")
	require.Error(t, err)
	assert.Nil(t, results)
}

func TestRerankReordersWithoutFiltering(t *testing.T) {
	searcher := &stubSearcher{results: []model.RetrievalResult{
		resultWithScore("a", 0.95),
		resultWithScore("b", 0.90),
		resultWithScore("c", 0.85),
	}}
	// Reranker inverts the similarity order. Even the lowest rerank score
	// survives; reranking reorders, it never filters.
	scorer := &stubScorer{scores: []float64{0.1, 0.5, 0.9}}
	r := NewRetriever(searcher, scorer, DefaultConfig(), logger.NewNop())

	results, err := r.Retrieve(context.Background(), "câu hỏi", nil, "")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "c", results[0].Chunk.Metadata.ChunkTitle)
	assert.Equal(t, "b", results[1].Chunk.Metadata.ChunkTitle)
	assert.Equal(t, "a", results[2].Chunk.Metadata.ChunkTitle)

	// Rerank scores replace Score, similarity is preserved alongside.
	assert.Equal(t, 0.9, results[0].Score)
	assert.Equal(t, 0.85, results[0].OriginalScore)
	require.NotNil(t, results[0].RerankScore)
	assert.Equal(t, 0.9, *results[0].RerankScore)
}

func TestRerankSkippedForSingleCandidate(t *testing.T) {
	searcher := &stubSearcher{results: []model.RetrievalResult{
		resultWithScore("only", 0.9),
	}}
	scorer := &stubScorer{}
	r := NewRetriever(searcher, scorer, DefaultConfig(), logger.NewNop())

	results, err := r.Retrieve(context.Background(), "câu hỏi", nil, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, scorer.calls)
	assert.Nil(t, results[0].RerankScore)
}

func TestRerankFailureFallsBackToSimilarityOrder(t *testing.T) {
	searcher := &stubSearcher{results: []model.RetrievalResult{
		resultWithScore("a", 0.95),
		resultWithScore("b", 0.90),
	}}
	scorer := &stubScorer{err: errors.New("reranker unavailable")}
	r := NewRetriever(searcher, scorer, DefaultConfig(), logger.NewNop())

	results, err := r.Retrieve(context.Background(), "câu hỏi", nil, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.Metadata.ChunkTitle)
	assert.Equal(t, 0.95, results[0].Score)
	assert.Nil(t, results[0].RerankScore)
}

func TestRerankLengthMismatchFallsBack(t *testing.T) {
	searcher := &stubSearcher{results: []model.RetrievalResult{
		resultWithScore("a", 0.95),
		resultWithScore("b", 0.90),
	}}
	scorer := &stubScorer{scores: []float64{0.5}}
	r := NewRetriever(searcher, scorer, DefaultConfig(), logger.NewNop())

	results, err := r.Retrieve(context.Background(), "câu hỏi", nil, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.Metadata.ChunkTitle)
}

func TestRetrieveTruncatesToRerankTopK(t *testing.T) {
	var candidates []model.RetrievalResult
	for i := 0; i < 8; i++ {
		candidates = append(candidates, resultWithScore(fmt.Sprintf("doc%d", i), 0.9-float64(i)*0.01))
	}
	r := NewRetriever(&stubSearcher{results: candidates}, nil, DefaultConfig(), logger.NewNop())

	results, err := r.Retrieve(context.Background(), "câu hỏi", nil, "")
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestRetrieveForIntentFilters(t *testing.T) {
	searcher := &stubSearcher{}
	r := NewRetriever(searcher, nil, DefaultConfig(), logger.NewNop())
	ctx := context.Background()

	_, err := r.RetrieveForIntent(ctx, "q", model.IntentLegal, "")
	require.NoError(t, err)
	require.NotNil(t, searcher.lastFilters)
	assert.Equal(t, model.LegalDocumentTypes, searcher.lastFilters.DocumentTypes)
	assert.Empty(t, searcher.lastFilters.LawField)

	_, err = r.RetrieveForIntent(ctx, "q", model.IntentBusiness, "")
	require.NoError(t, err)
	require.NotNil(t, searcher.lastFilters)
	assert.Equal(t, "dang_ky_kinh_doanh", searcher.lastFilters.LawField)
	assert.Empty(t, searcher.lastFilters.DocumentTypes)

	_, err = r.RetrieveForIntent(ctx, "q", model.IntentGeneral, "")
	require.NoError(t, err)
	assert.Nil(t, searcher.lastFilters)
}

func TestEnhanceQuery(t *testing.T) {
	assert.Equal(t, "câu hỏi", enhanceQuery("câu hỏi", ""))
	assert.Equal(t,
		"Bối cảnh: lịch sử\nCâu hỏi: câu hỏi",
		enhanceQuery("câu hỏi", "lịch sử"),
	)
}

func TestRetrievePassesEnhancedQueryToSearch(t *testing.T) {
	searcher := &stubSearcher{}
	r := NewRetriever(searcher, nil, DefaultConfig(), logger.NewNop())

	_, err := r.Retrieve(context.Background(), "thuế là gì?", nil, "Người dùng: xin chào")
	require.NoError(t, err)
	assert.Equal(t, "Bối cảnh: Người dùng: xin chào\nCâu hỏi: thuế là gì?", searcher.lastQuery)
	assert.Equal(t, 10, searcher.lastTopK)
}

func TestStatsMergesSearcherStats(t *testing.T) {
	searcher := &stubSearcher{results: []model.RetrievalResult{resultWithScore("a", 1)}}
	r := NewRetriever(searcher, nil, DefaultConfig(), logger.NewNop())

	stats := r.Stats(context.Background())
	assert.Equal(t, 10, stats["top_k"])
	assert.Equal(t, 5, stats["rerank_top_k"])
	assert.Equal(t, 0.7, stats["similarity_threshold"])
	assert.Equal(t, 1, stats["total_documents"])
}
