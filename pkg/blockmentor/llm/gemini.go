package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	bmerrors "github.com/randalmurphal/blockmentor/pkg/blockmentor/errors"
)

// DefaultGeminiBaseURL is the Generative Language API root.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini implements Client using the Gemini generateContent REST endpoint.
type Gemini struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	timeout     time.Duration
	retry       bmerrors.RetryConfig
	httpClient  *http.Client
	logger      *slog.Logger
}

// GeminiOption configures Gemini.
type GeminiOption func(*Gemini)

// NewGemini creates a Gemini client for model.
func NewGemini(model string, opts ...GeminiOption) *Gemini {
	g := &Gemini{
		baseURL:     DefaultGeminiBaseURL,
		model:       model,
		temperature: 0.7,
		timeout:     60 * time.Second,
		retry:       bmerrors.DefaultRetry,
		httpClient:  cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithAPIKey sets the API key sent as x-goog-api-key.
func WithAPIKey(key string) GeminiOption {
	return func(g *Gemini) { g.apiKey = key }
}

// WithBaseURL overrides the API root.
func WithBaseURL(u string) GeminiOption {
	return func(g *Gemini) { g.baseURL = strings.TrimRight(u, "/") }
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float64) GeminiOption {
	return func(g *Gemini) { g.temperature = t }
}

// WithTimeout bounds each HTTP attempt.
func WithTimeout(d time.Duration) GeminiOption {
	return func(g *Gemini) { g.timeout = d }
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg bmerrors.RetryConfig) GeminiOption {
	return func(g *Gemini) { g.retry = cfg }
}

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *Gemini) { g.httpClient = c }
}

// WithLogger logs retried attempts.
func WithLogger(l *slog.Logger) GeminiOption {
	return func(g *Gemini) { g.logger = l }
}

// Model returns the default model name.
func (g *Gemini) Model() string { return g.model }

// Complete implements Client.
func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := strings.TrimPrefix(req.Model, "models/")
	if model == "" {
		model = strings.TrimPrefix(g.model, "models/")
	}
	if model == "" {
		return nil, fmt.Errorf("gemini: no model configured")
	}

	body, err := json.Marshal(g.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("gemini: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)

	retry := g.retry
	if g.logger != nil && retry.OnRetry == nil {
		retry.OnRetry = func(attempt int, err error, wait time.Duration) {
			g.logger.Warn("gemini attempt failed, retrying",
				"model", model,
				"attempt", attempt,
				"wait", wait,
				"error", err,
			)
		}
	}

	result := bmerrors.WithRetryContext(ctx, retry, func(ctx context.Context) (*generateResponse, error) {
		return g.post(ctx, endpoint, body)
	})
	if result.Err != nil {
		return nil, fmt.Errorf("gemini %s: %w", model, result.Err)
	}

	resp, err := result.Value.toCompletion()
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", model, err)
	}
	if resp.Model == "" {
		resp.Model = model
	}
	resp.Attempts = result.Attempts
	resp.Duration = time.Since(start)
	return resp, nil
}

func (g *Gemini) post(ctx context.Context, endpoint string, body []byte) (*generateResponse, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, bmerrors.Permanent(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", g.apiKey)
	}

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, bmerrors.Transient(err, "read response")
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, bmerrors.NewHTTPError(httpResp, endpoint, data)
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &bmerrors.JSONParseError{Input: string(data), Message: err.Error()}
	}
	return &out, nil
}

// buildRequest maps the conversation onto Gemini's contents. System
// messages anywhere in the history join the system instruction; assistant
// turns use the "model" role.
func (g *Gemini) buildRequest(req CompletionRequest) generateRequest {
	var system []string
	if req.SystemPrompt != "" {
		system = append(system, req.SystemPrompt)
	}

	out := generateRequest{}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			out.Contents = append(out.Contents, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			out.Contents = append(out.Contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}
	if len(system) > 0 {
		out.SystemInstruction = &content{Parts: []part{{Text: strings.Join(system, "\n\n")}}}
	}

	temp := req.Temperature
	if temp == 0 {
		temp = g.temperature
	}
	out.GenerationConfig = &generationConfig{
		Temperature:     &temp,
		MaxOutputTokens: req.MaxTokens,
	}
	if len(req.ResponseSchema) > 0 {
		out.GenerationConfig.ResponseMIMEType = "application/json"
		out.GenerationConfig.ResponseSchema = req.ResponseSchema
	}
	return out
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      *float64        `json:"temperature,omitempty"`
	MaxOutputTokens  int             `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

func (r *generateResponse) toCompletion() (*CompletionResponse, error) {
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("prompt blocked: %s", r.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("no candidates in response")
	}
	cand := r.Candidates[0]
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	return &CompletionResponse{
		Content:      sb.String(),
		FinishReason: strings.ToLower(cand.FinishReason),
		Model:        r.ModelVersion,
		Usage: TokenUsage{
			InputTokens:  r.UsageMetadata.PromptTokenCount,
			OutputTokens: r.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  r.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
