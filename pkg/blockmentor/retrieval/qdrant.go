package retrieval

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// Hit is one search result.
type Hit struct {
	ID      any
	Score   float64
	Content string
}

// Searcher finds the stored documents nearest to a vector.
type Searcher interface {
	Search(ctx context.Context, vector []float64, limit int) ([]Hit, error)
}

// Qdrant searches one collection through the Qdrant REST API. Documents are
// expected to carry their text in the "page_content" payload field.
type Qdrant struct {
	baseURL    string
	apiKey     string
	collection string
	http       *retryablehttp.Client
}

// NewQdrant creates a search client for collection.
func NewQdrant(baseURL, apiKey, collection string, opts HTTPOptions) *Qdrant {
	return &Qdrant{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		http:       opts.client(),
	}
}

type qdrantSearchRequest struct {
	Vector      []float64 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type qdrantSearchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
	Status any `json:"status"`
}

// Search implements Searcher.
func (q *Qdrant) Search(ctx context.Context, vector []float64, limit int) ([]Hit, error) {
	endpoint := fmt.Sprintf("%s/collections/%s/points/search", q.baseURL, url.PathEscape(q.collection))

	header := http.Header{}
	if q.apiKey != "" {
		header.Set("api-key", q.apiKey)
	}

	var resp qdrantSearchResponse
	req := qdrantSearchRequest{Vector: vector, Limit: limit, WithPayload: true}
	if err := postJSON(ctx, q.http, endpoint, header, req, &resp); err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	hits := make([]Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		content, _ := r.Payload["page_content"].(string)
		hits = append(hits, Hit{ID: r.ID, Score: r.Score, Content: content})
	}
	return hits, nil
}
