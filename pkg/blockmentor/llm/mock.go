package llm

import (
	"context"
	"sync"
)

// MockClient is a Client that returns canned responses and records calls.
type MockClient struct {
	mu        sync.Mutex
	responses []string
	next      int
	err       error
	handler   func(CompletionRequest) (string, error)

	// Calls holds every request received, in order.
	Calls []CompletionRequest
}

var _ Client = (*MockClient)(nil)

// NewMockClient returns a mock that always answers response.
func NewMockClient(response string) *MockClient {
	return &MockClient{responses: []string{response}}
}

// WithResponses answers with responses in turn, cycling back to the first.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.next = 0
	return m
}

// WithError makes every call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithHandler computes each reply from the request.
func (m *MockClient) WithHandler(fn func(CompletionRequest) (string, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = fn
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}

	var text string
	switch {
	case m.handler != nil:
		var err error
		if text, err = m.handler(req); err != nil {
			return nil, err
		}
	case len(m.responses) > 0:
		text = m.responses[m.next%len(m.responses)]
		m.next++
	}

	model := req.Model
	if model == "" {
		model = "mock"
	}
	return &CompletionResponse{
		Content:      text,
		Model:        model,
		FinishReason: "stop",
		Attempts:     1,
	}, nil
}

// CallCount returns the number of calls received.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil.
func (m *MockClient) LastCall() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	last := m.Calls[len(m.Calls)-1]
	return &last
}
