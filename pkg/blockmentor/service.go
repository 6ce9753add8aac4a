package blockmentor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor/blockinfo"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/cache"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/flowchart"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/llm"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/observability"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/prompt"
)

// Description is the model's reading of a project.
type Description struct {
	// Algorithm is a numbered, step-by-step algorithm.
	Algorithm string `json:"algorithm"`
	// Response is the question put to the learner: a use-case guess, or
	// the changes since the previous version.
	Response string `json:"response"`
}

// Unchanged is returned by DescribeUpdate when both versions render to the
// same flowchart.
var Unchanged = Description{Algorithm: "unchanged", Response: "No change detected"}

// ChatRequest is one learner turn.
type ChatRequest struct {
	Query     string    `json:"query"`
	Messages  []Message `json:"messages"`
	Mentor    string    `json:"mentor"`
	Algorithm string    `json:"algorithm"`
}

// ChatResponse is the mentor's reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// AnalysisRequest asks for a learning analysis of a finished conversation.
type AnalysisRequest struct {
	Messages []Message `json:"messages"`
	Summary  string    `json:"summary"`
}

// Analysis is the model's learning analysis.
type Analysis struct {
	Response string `json:"response"`
}

// Service answers the mentor API: it converts projects to flowcharts,
// asks the reasoning model to describe them, and runs mentor chats.
// A Service is safe for concurrent use.
type Service struct {
	converter *flowchart.Converter
	catalogue *blockinfo.Catalogue

	chat           llm.Client
	chatModel      string
	reasoning      llm.Client
	reasoningModel string

	retriever ContextSource
	cache     cache.Store

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	conversions singleflight.Group
}

// New creates a Service. Without WithChatLLM and WithReasoningLLM only
// Flowchart works; the other operations fail with ErrNoLLM.
func New(opts ...Option) *Service {
	s := &Service{
		converter: flowchart.New(),
		catalogue: blockinfo.Default(),
		logger:    observability.DiscardLogger(),
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the cache.
func (s *Service) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

// begin starts the request span and derives the request logger.
func (s *Service) begin(ctx context.Context, op string) (context.Context, *slog.Logger, func(error)) {
	ctx, id := ensureRequestID(ctx)
	logger := observability.EnrichLogger(observability.LoggerFrom(ctx, s.logger), id, op)
	ctx = observability.WithLogger(ctx, logger)
	ctx, span := s.spans.StartRequestSpan(ctx, op, id)
	return ctx, logger, func(err error) { s.spans.EndSpanWithError(span, err) }
}

// Flowchart converts project code. Identical concurrent requests share one
// conversion.
func (s *Service) Flowchart(ctx context.Context, code string) (res flowchart.Result, err error) {
	ctx, _, end := s.begin(ctx, "flowchart")
	defer func() { end(err) }()
	return s.flowchart(ctx, code)
}

func (s *Service) flowchart(ctx context.Context, code string) (flowchart.Result, error) {
	v, err, _ := s.conversions.Do(cache.Key("convert", code), func() (any, error) {
		return s.convert(ctx, code)
	})
	if err != nil {
		return flowchart.Result{}, err
	}
	res := v.(flowchart.Result)
	res.Lines = slices.Clone(res.Lines)
	return res, nil
}

func (s *Service) convert(ctx context.Context, code string) (flowchart.Result, error) {
	ctx, span := s.spans.StartStageSpan(ctx, "convert")
	start := time.Now()

	raw, err := flowchart.Decode([]byte(code))
	if err != nil {
		err = &StageError{Stage: "convert", Err: fmt.Errorf("%w: %v", ErrInvalidProject, err)}
		s.spans.EndSpanWithError(span, err)
		return flowchart.Result{}, err
	}
	res := s.converter.Run(raw)
	elapsed := time.Since(start)

	s.metrics.RecordConversion(ctx, len(res.Lines), elapsed)
	observability.LogConversion(observability.LoggerFrom(ctx, s.logger),
		res.Blocks, len(res.Lines), res.Skipped, res.Orphans, float64(elapsed.Microseconds())/1000)
	s.spans.AddSpanEvent(ctx, "converted",
		attribute.Int("blocks", res.Blocks),
		attribute.Int("lines", len(res.Lines)),
	)
	s.spans.EndSpanWithError(span, nil)
	return res, nil
}

// Describe converts a project and asks the reasoning model for its
// algorithm and a guess at what it is for. Answers are cached by
// flowchart, so edits that do not change the flowchart are free.
func (s *Service) Describe(ctx context.Context, code string) (desc *Description, err error) {
	ctx, logger, end := s.begin(ctx, "describe")
	defer func() { end(err) }()

	res, err := s.flowchart(ctx, code)
	if err != nil {
		return nil, err
	}
	text := flowchart.Text(res.Lines)
	info := s.catalogue.Lookup(res.Lines)

	key := cache.Key("describe", s.reasoningModel, text)
	return s.cachedDescription(ctx, logger, key, func() (*Description, error) {
		return s.describe(ctx, prompt.Algorithm(text, info), "describe")
	})
}

// DescribeUpdate compares two versions of a project. When their flowcharts
// match it returns Unchanged without calling the model; otherwise it asks
// for the new algorithm and the key changes.
func (s *Service) DescribeUpdate(ctx context.Context, oldCode, newCode string) (desc *Description, err error) {
	ctx, logger, end := s.begin(ctx, "update")
	defer func() { end(err) }()

	var oldRes, newRes flowchart.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		oldRes, err = s.flowchart(gctx, oldCode)
		return err
	})
	g.Go(func() error {
		var err error
		newRes, err = s.flowchart(gctx, newCode)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if flowchart.Equal(oldRes.Lines, newRes.Lines) {
		logger.Info("no change detected")
		unchanged := Unchanged
		return &unchanged, nil
	}

	oldText := flowchart.Text(oldRes.Lines)
	newText := flowchart.Text(newRes.Lines)
	info := s.catalogue.Lookup(newRes.Lines)

	key := cache.Key("update", s.reasoningModel, oldText, newText)
	return s.cachedDescription(ctx, logger, key, func() (*Description, error) {
		return s.describe(ctx, prompt.Update(oldText, newText, info), "update")
	})
}

func (s *Service) describe(ctx context.Context, text, op string) (*Description, error) {
	reply, err := completeJSON[prompt.AlgorithmReply](ctx, s, s.reasoning, s.reasoningModel, op, llm.CompletionRequest{
		Messages:       []llm.Message{llm.User(text)},
		ResponseSchema: prompt.AlgorithmSchema,
	})
	if err != nil {
		return nil, err
	}
	return &Description{Algorithm: reply.Algorithm, Response: reply.Response}, nil
}

// cachedDescription returns the cached answer for key or computes and
// stores it. Cache failures are logged and otherwise ignored.
func (s *Service) cachedDescription(ctx context.Context, logger *slog.Logger, key string, compute func() (*Description, error)) (*Description, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var d Description
			if jsonErr := json.Unmarshal(data, &d); jsonErr == nil {
				logger.Debug("description served from cache", "key", key)
				return &d, nil
			}
			logger.Warn("discarding unreadable cache entry", "key", key)
		case !errors.Is(err, cache.ErrNotFound):
			logger.Warn("cache read failed", "error", err)
		}
	}

	d, err := compute()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		data, _ := json.Marshal(d)
		if err := s.cache.Put(ctx, key, data); err != nil {
			logger.Warn("cache write failed", "error", err)
		}
	}
	return d, nil
}

// Chat answers one learner turn as the chosen mentor. The mentor's system
// prompt replaces a leading system message or is inserted before the
// history; retrieved reference text, when any, follows it as a user turn.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (resp *ChatResponse, err error) {
	ctx, logger, end := s.begin(ctx, "chat")
	defer func() { end(err) }()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	mentor, err := prompt.ParseMentor(req.Mentor)
	if err != nil {
		return nil, err
	}
	system, err := prompt.System(string(mentor), req.Algorithm)
	if err != nil {
		return nil, err
	}
	history, err := ConvertMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	if len(history) > 0 && history[0].Role == llm.RoleSystem {
		history = history[1:]
	}
	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages, llm.System(system))
	if extra := s.retrieve(ctx, logger, query); extra != "" {
		messages = append(messages, llm.User("Relevant context:\n"+extra))
	}
	messages = append(messages, history...)
	messages = append(messages, llm.User(query))

	out, err := s.complete(ctx, s.chat, s.chatModel, "chat", string(mentor), llm.CompletionRequest{Messages: messages})
	if err != nil {
		return nil, err
	}
	return &ChatResponse{Response: out.Content}, nil
}

// retrieve returns reference text for query, or "" when retrieval is off
// or fails.
func (s *Service) retrieve(ctx context.Context, logger *slog.Logger, query string) string {
	if s.retriever == nil {
		return ""
	}
	ctx, span := s.spans.StartStageSpan(ctx, "retrieve")
	text, err := s.retriever.Context(ctx, query)
	s.spans.EndSpanWithError(span, err)
	if err != nil {
		observability.LogRetrievalError(logger, &StageError{Stage: "retrieve", Err: err})
		return ""
	}
	return text
}

// Analyze asks the chat model for a learning analysis of a conversation.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (a *Analysis, err error) {
	ctx, _, end := s.begin(ctx, "analysis")
	defer func() { end(err) }()

	if len(req.Messages) == 0 {
		return nil, ErrEmptyQuery
	}
	text := prompt.Analysis(req.Summary, FormatConversation(req.Messages))
	reply, err := completeJSON[prompt.AnalysisReply](ctx, s, s.chat, s.chatModel, "analysis", llm.CompletionRequest{
		Messages:       []llm.Message{llm.User(text)},
		ResponseSchema: prompt.AnalysisSchema,
	})
	if err != nil {
		return nil, err
	}
	return &Analysis{Response: reply.Response}, nil
}

// complete calls client inside an "llm" stage span and records the call.
func (s *Service) complete(ctx context.Context, client llm.Client, model, op, mentor string, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if client == nil {
		return nil, ErrNoLLM
	}
	logger := observability.LoggerFrom(ctx, s.logger)

	ctx, span := s.spans.StartStageSpan(ctx, "llm")
	start := time.Now()
	resp, err := client.Complete(ctx, req)
	elapsed := time.Since(start)

	attempts := 1
	if resp != nil && resp.Attempts > 0 {
		attempts = resp.Attempts
	}
	s.metrics.RecordLLMCall(ctx, model, op, elapsed, err)
	observability.LogLLMCall(logger, model, mentor, attempts, float64(elapsed.Microseconds())/1000, err)
	s.spans.EndSpanWithError(span, err)

	if err != nil {
		return nil, &StageError{Stage: "llm", Err: err}
	}
	return resp, nil
}

func completeJSON[T any](ctx context.Context, s *Service, client llm.Client, model, op string, req llm.CompletionRequest) (T, error) {
	var zero T
	resp, err := s.complete(ctx, client, model, op, "", req)
	if err != nil {
		return zero, err
	}
	out, err := llm.DecodeJSON[T](resp.Content)
	if err != nil {
		return zero, &StageError{Stage: "decode", Err: err}
	}
	return out, nil
}
