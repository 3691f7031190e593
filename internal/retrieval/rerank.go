package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPScorer calls a cross-encoder scoring service over HTTP. The service
// accepts a query with candidate texts and returns one relevance score per
// candidate, in input order.
type HTTPScorer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPScorer creates a scorer against the given endpoint.
func NewHTTPScorer(endpoint string, timeout time.Duration) *HTTPScorer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPScorer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type scoreRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

// Score returns relevance scores for (query, candidate) pairs.
func (s *HTTPScorer) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	body, err := json.Marshal(scoreRequest{Query: query, Texts: candidates})
	if err != nil {
		return nil, fmt.Errorf("marshaling score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling reranker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reranker returned status %d", resp.StatusCode)
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding score response: %w", err)
	}
	if len(out.Scores) != len(candidates) {
		return nil, fmt.Errorf("reranker returned %d scores for %d candidates", len(out.Scores), len(candidates))
	}
	return out.Scores, nil
}
