package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// DefaultHFBaseURL is the HuggingFace inference API root.
const DefaultHFBaseURL = "https://api-inference.huggingface.co"

// HFEmbedder calls the HuggingFace feature-extraction pipeline.
type HFEmbedder struct {
	baseURL string
	model   string
	apiKey  string
	http    *retryablehttp.Client
}

// NewHFEmbedder creates an embedder for model. An empty baseURL uses
// DefaultHFBaseURL.
func NewHFEmbedder(baseURL, model, apiKey string, opts HTTPOptions) *HFEmbedder {
	if baseURL == "" {
		baseURL = DefaultHFBaseURL
	}
	return &HFEmbedder{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		http:    opts.client(),
	}
}

// Embed implements Embedder.
func (e *HFEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	endpoint := fmt.Sprintf("%s/pipeline/feature-extraction/%s", e.baseURL, e.model)

	header := http.Header{}
	if e.apiKey != "" {
		header.Set("Authorization", "Bearer "+e.apiKey)
	}
	body := map[string]any{
		"inputs":  text,
		"options": map[string]any{"wait_for_model": true},
	}

	var raw json.RawMessage
	if err := postJSON(ctx, e.http, endpoint, header, body, &raw); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	vec, err := decodeEmbedding(raw)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return vec, nil
}

// decodeEmbedding accepts a sentence vector, or a matrix of token vectors
// which is mean-pooled.
func decodeEmbedding(raw json.RawMessage) ([]float64, error) {
	var vec []float64
	if err := json.Unmarshal(raw, &vec); err == nil {
		if len(vec) == 0 {
			return nil, fmt.Errorf("empty embedding")
		}
		return vec, nil
	}

	var rows [][]float64
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("unexpected embedding shape: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	dim := len(rows[0])
	out := make([]float64, dim)
	for _, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("ragged embedding: %d != %d", len(row), dim)
		}
		for i, v := range row {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(rows))
	}
	return out, nil
}
