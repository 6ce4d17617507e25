package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func TestOllamaGenerate(t *testing.T) {
	var gotBody generateBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(generateLine{Response: "\n  success()\n", Done: true})
	}))
	defer server.Close()

	s := NewOllamaService(server.URL, "test-model", testLogger())
	got, err := s.Generate(context.Background(), GenerateRequest{Prompt: "open the door", Temperature: 0})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "success()" {
		t.Errorf("response = %q, want surrounding whitespace trimmed", got)
	}
	if gotBody.Model != "test-model" || gotBody.Stream {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.Options.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", gotBody.Options.Temperature)
	}
}

func TestOllamaGenerate_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewOllamaService(server.URL, "test-model", testLogger())
	_, err := s.Generate(context.Background(), GenerateRequest{Prompt: "hello"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %T", err)
	}
	if gwErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", gwErr.Status)
	}
}

func TestOllamaGenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body generateBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		if !body.Stream {
			t.Error("expected a streaming request")
		}
		enc := json.NewEncoder(w)
		_ = enc.Encode(generateLine{Response: "The "})
		_ = enc.Encode(generateLine{Response: "door "})
		_ = enc.Encode(generateLine{Response: "creaks.", Done: true})
	}))
	defer server.Close()

	s := NewOllamaService(server.URL, "test-model", testLogger())
	ch, err := s.GenerateStream(context.Background(), GenerateRequest{Prompt: "describe"})
	if err != nil {
		t.Fatalf("GenerateStream failed: %v", err)
	}

	var sb strings.Builder
	var done bool
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatalf("stream error: %v", chunk.Err)
		}
		sb.WriteString(chunk.Text)
		done = chunk.Done
	}
	if sb.String() != "The door creaks." {
		t.Errorf("streamed text = %q", sb.String())
	}
	if !done {
		t.Error("last chunk should carry done")
	}
}

func TestOllamaEnsureModel_PullsMissingModel(t *testing.T) {
	pulled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"other-model"}]}`))
		case "/api/pull":
			pulled = true
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	s := NewOllamaService(server.URL, "test-model", testLogger())
	if err := s.EnsureModel(context.Background()); err != nil {
		t.Fatalf("EnsureModel failed: %v", err)
	}
	if !pulled {
		t.Error("missing model should be pulled")
	}
}

func TestOllamaEnsureModel_ModelAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/pull" {
			t.Error("available model must not be pulled")
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"test-model"}]}`))
	}))
	defer server.Close()

	s := NewOllamaService(server.URL, "test-model", testLogger())
	if err := s.EnsureModel(context.Background()); err != nil {
		t.Fatalf("EnsureModel failed: %v", err)
	}
}
