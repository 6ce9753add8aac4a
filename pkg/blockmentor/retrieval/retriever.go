// Package retrieval finds documentation relevant to a learner's question:
// the query is embedded, the nearest documents are looked up in a Qdrant
// collection, and the ones scoring above a threshold are joined into a
// context string for the chat prompt.
package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor/observability"
)

// Defaults for Retriever.
const (
	DefaultTopK      = 3
	DefaultThreshold = 0.3
)

// Retriever joins embedding and search.
type Retriever struct {
	embedder  Embedder
	searcher  Searcher
	topK      int
	threshold float64
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithTopK sets how many nearest documents are fetched.
func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithThreshold sets the score a document must exceed to be kept.
func WithThreshold(t float64) Option {
	return func(r *Retriever) { r.threshold = t }
}

// WithLogger sets the logger for score reports.
func WithLogger(l *slog.Logger) Option {
	return func(r *Retriever) { r.logger = l }
}

// WithMetrics records the number of kept documents per query.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(r *Retriever) { r.metrics = m }
}

// New creates a Retriever.
func New(embedder Embedder, searcher Searcher, opts ...Option) *Retriever {
	r := &Retriever{
		embedder:  embedder,
		searcher:  searcher,
		topK:      DefaultTopK,
		threshold: DefaultThreshold,
		metrics:   observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Context returns the text of the relevant documents joined by a space,
// or "" when none score above the threshold.
func (r *Retriever) Context(ctx context.Context, query string) (string, error) {
	start := time.Now()

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return "", err
	}
	hits, err := r.searcher.Search(ctx, vec, r.topK)
	if err != nil {
		return "", err
	}

	scores := make([]float64, len(hits))
	var kept []string
	for i, h := range hits {
		scores[i] = h.Score
		if h.Score > r.threshold && h.Content != "" {
			kept = append(kept, h.Content)
		}
	}

	observability.LogRetrieval(r.logger, scores, len(kept), float64(time.Since(start).Microseconds())/1000)
	r.metrics.RecordRetrieval(ctx, len(kept))
	return strings.Join(kept, " "), nil
}

// Static is a Retriever stand-in that always returns the same context.
type Static string

// Context returns s.
func (s Static) Context(context.Context, string) (string, error) { return string(s), nil }
