package services

import (
	"context"
	"sync"
)

// MockGateway is a mock implementation of Gateway for testing.
type MockGateway struct {
	EnsureModelFunc    func(ctx context.Context) error
	GenerateFunc       func(ctx context.Context, req GenerateRequest) (string, error)
	GenerateStreamFunc func(ctx context.Context, req GenerateRequest) (<-chan StreamChunk, error)

	// Responses is a script consumed one entry per Generate call when
	// GenerateFunc is unset.
	Responses []string

	// Track calls for testing
	EnsureModelCalls int
	GenerateCalls    []GenerateRequest
	StreamCalls      []GenerateRequest

	mu sync.Mutex // protects all fields above
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway(responses ...string) *MockGateway {
	return &MockGateway{Responses: responses}
}

// EnsureModel mocks model initialization.
func (m *MockGateway) EnsureModel(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EnsureModelCalls++
	if m.EnsureModelFunc != nil {
		return m.EnsureModelFunc(ctx)
	}
	return nil
}

// Generate mocks a blocking completion, consuming the next scripted response.
func (m *MockGateway) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, req)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	if len(m.Responses) > 0 {
		resp := m.Responses[0]
		m.Responses = m.Responses[1:]
		return resp, nil
	}
	return "", nil
}

// GenerateStream mocks a streaming completion. Without a GenerateStreamFunc
// it streams the next scripted response word by word.
func (m *MockGateway) GenerateStream(ctx context.Context, req GenerateRequest) (<-chan StreamChunk, error) {
	m.mu.Lock()
	m.StreamCalls = append(m.StreamCalls, req)
	fn := m.GenerateStreamFunc
	var resp string
	if fn == nil && len(m.Responses) > 0 {
		resp = m.Responses[0]
		m.Responses = m.Responses[1:]
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		for _, r := range resp {
			out <- StreamChunk{Text: string(r)}
		}
		out <- StreamChunk{Done: true}
	}()
	return out, nil
}

// SetGenerateError sets up the mock to fail every Generate call.
func (m *MockGateway) SetGenerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, req GenerateRequest) (string, error) {
		return "", err
	}
}

// SetStreamError sets up the mock to fail every GenerateStream call.
func (m *MockGateway) SetStreamError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateStreamFunc = func(ctx context.Context, req GenerateRequest) (<-chan StreamChunk, error) {
		return nil, err
	}
}

// Calls returns a copy of the call tracking data in a thread-safe way.
func (m *MockGateway) Calls() (generate, stream []GenerateRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()

	generate = make([]GenerateRequest, len(m.GenerateCalls))
	copy(generate, m.GenerateCalls)
	stream = make([]GenerateRequest, len(m.StreamCalls))
	copy(stream, m.StreamCalls)
	return generate, stream
}
