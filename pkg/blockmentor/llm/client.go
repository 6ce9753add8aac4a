// Package llm talks to the hosted language model.
//
// Client is the seam the service depends on. Gemini implements it over the
// Generative Language REST API; MockClient implements it for tests.
package llm

import "context"

// Client completes a conversation.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
