package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OllamaService implements the Gateway interface against the Ollama HTTP API.
type OllamaService struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOllamaService creates a new Ollama gateway instance.
func NewOllamaService(baseURL string, model string, logger *slog.Logger) *OllamaService {
	return &OllamaService{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

type generateBody struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

// generateLine is one ndjson line of an /api/generate response. The blocking
// form is a single line with the full response and done=true.
type generateLine struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// EnsureModel makes the configured model available, pulling it if needed.
func (s *OllamaService) EnsureModel(ctx context.Context) error {
	s.logger.Info("Initializing model", "model", s.model)

	if err := s.waitForReady(ctx); err != nil {
		return fmt.Errorf("ollama service is not ready: %w", err)
	}

	ready, err := s.isModelReady(ctx)
	if err != nil {
		return fmt.Errorf("failed to check model readiness: %w", err)
	}

	if !ready {
		s.logger.Info("Model not found, pulling it", "model", s.model)
		if err := s.pullModel(ctx); err != nil {
			return fmt.Errorf("failed to pull model: %w", err)
		}
		s.logger.Info("Model pulled successfully", "model", s.model)
	} else {
		s.logger.Info("Model already available", "model", s.model)
	}

	return nil
}

// Generate runs a blocking completion against /api/generate.
func (s *OllamaService) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	resp, err := s.postGenerate(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var line generateLine
	if err := json.NewDecoder(resp.Body).Decode(&line); err != nil {
		return "", &GatewayError{Op: "generate", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	s.logger.Debug("Ollama generate complete",
		"prompt_len", len(req.Prompt),
		"response_len", len(line.Response))
	return strings.TrimSpace(line.Response), nil
}

// GenerateStream runs a streaming completion against /api/generate. Each
// ndjson line becomes one StreamChunk; the channel closes after the line with
// done=true, a decode error, or context cancellation.
func (s *OllamaService) GenerateStream(ctx context.Context, req GenerateRequest) (<-chan StreamChunk, error) {
	resp, err := s.postGenerate(ctx, req, true)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		defer func() { _ = resp.Body.Close() }()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			raw := bytes.TrimSpace(scanner.Bytes())
			if len(raw) == 0 {
				continue
			}

			var line generateLine
			if err := json.Unmarshal(raw, &line); err != nil {
				out <- StreamChunk{Err: &GatewayError{Op: "stream", Err: err}}
				return
			}

			select {
			case out <- StreamChunk{Text: line.Response, Done: line.Done}:
			case <-ctx.Done():
				out <- StreamChunk{Err: ctx.Err()}
				return
			}
			if line.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			out <- StreamChunk{Err: &GatewayError{Op: "stream", Err: err}}
			return
		}
		// Server closed the stream without a done line; treat as complete.
		out <- StreamChunk{Done: true}
	}()

	return out, nil
}

func (s *OllamaService) postGenerate(ctx context.Context, req GenerateRequest, stream bool) (*http.Response, error) {
	jsonBody, err := json.Marshal(generateBody{
		Model:   s.model,
		Prompt:  req.Prompt,
		Stream:  stream,
		Options: generateOptions{Temperature: req.Temperature},
	})
	if err != nil {
		return nil, &GatewayError{Op: "generate", Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	url := s.baseURL + "/api/generate"
	s.logger.Debug("Making Ollama generate request",
		"url", url,
		"model", s.model,
		"stream", stream,
		"temperature", req.Temperature,
		"prompt_len", len(req.Prompt))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, &GatewayError{Op: "generate", Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Op: "generate", Err: fmt.Errorf("failed to send request: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		s.logger.Error("Ollama API returned error",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return nil, &GatewayError{Op: "generate", Status: resp.StatusCode}
	}

	return resp, nil
}

// isModelReady checks if the configured model is available.
func (s *OllamaService) isModelReady(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/api/tags", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	var tagsResp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&tagsResp); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, model := range tagsResp.Models {
		if model.Name == s.model {
			return true, nil
		}
	}

	return false, nil
}

// pullModel pulls the configured model from the Ollama registry.
func (s *OllamaService) pullModel(ctx context.Context) error {
	jsonBody, err := json.Marshal(map[string]string{"name": s.model})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/api/pull", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Pulling a model can take a while.
	client := &http.Client{
		Timeout: 10 * time.Minute,
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	return nil
}

// waitForReady waits for the Ollama service to answer with retries.
func (s *OllamaService) waitForReady(ctx context.Context) error {
	maxRetries := 5
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/api/tags", nil)
		if err != nil {
			s.logger.Debug("Failed to create request for readiness check", "error", err, "attempt", i+1)
			time.Sleep(retryDelay)
			continue
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.logger.Debug("Ollama not ready yet", "error", err, "attempt", i+1)
			time.Sleep(retryDelay)
			continue
		}
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			s.logger.Info("Ollama service is ready")
			return nil
		}

		s.logger.Debug("Ollama returned non-200 status", "status", resp.StatusCode, "attempt", i+1)
		time.Sleep(retryDelay)
	}

	return fmt.Errorf("ollama service did not become ready after %d attempts", maxRetries)
}
