package blockmentor

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor/blockinfo"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/cache"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/flowchart"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/llm"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/observability"
)

// ContextSource supplies reference text relevant to a chat query.
// *retrieval.Retriever implements it.
type ContextSource interface {
	Context(ctx context.Context, query string) (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithChatLLM sets the model used for chat and analysis. model labels
// metrics and logs; it does not override the client's own default.
func WithChatLLM(client llm.Client, model string) Option {
	return func(s *Service) {
		s.chat = client
		s.chatModel = model
	}
}

// WithReasoningLLM sets the model that turns flowcharts into algorithms.
func WithReasoningLLM(client llm.Client, model string) Option {
	return func(s *Service) {
		s.reasoning = client
		s.reasoningModel = model
	}
}

// WithRetriever enables retrieval-augmented chat.
func WithRetriever(r ContextSource) Option {
	return func(s *Service) { s.retriever = r }
}

// WithCache stores algorithm descriptions by flowchart digest.
func WithCache(store cache.Store) Option {
	return func(s *Service) { s.cache = store }
}

// WithConverter replaces the default flowchart converter.
func WithConverter(c *flowchart.Converter) Option {
	return func(s *Service) {
		if c != nil {
			s.converter = c
		}
	}
}

// WithCatalogue replaces the built-in block catalogue.
func WithCatalogue(c *blockinfo.Catalogue) Option {
	return func(s *Service) {
		if c != nil {
			s.catalogue = c
		}
	}
}

// WithLogger sets the base logger. Per-request loggers are derived from it.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSpanManager sets the tracer.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(s *Service) {
		if sm != nil {
			s.spans = sm
		}
	}
}
