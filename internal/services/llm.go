package services

import (
	"context"
	"fmt"
)

// Gateway is the text-generation backend used for action resolution and
// narration. Implementations hold their model name; callers only choose the
// prompt and sampling options per request.
type Gateway interface {
	// EnsureModel makes the backend model available on startup, pulling it
	// if necessary.
	EnsureModel(ctx context.Context) error

	// Generate runs a blocking completion and returns the full response text.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// GenerateStream runs a streaming completion. The channel yields response
	// fragments in order and is closed after the chunk with Done or Err set.
	GenerateStream(ctx context.Context, req GenerateRequest) (<-chan StreamChunk, error)
}

// GenerateRequest carries one completion request.
type GenerateRequest struct {
	Prompt      string
	Temperature float64
}

// StreamChunk is one fragment of a streaming completion.
type StreamChunk struct {
	Text string
	Err  error
	Done bool
}

// GatewayError wraps a transport or protocol failure from the backend.
type GatewayError struct {
	Op     string
	Status int
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
