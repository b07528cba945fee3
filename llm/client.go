// Package llm defines the outbound text-generation interface consumed
// by the refinement orchestrator (spec.md §6 "LLM client"), an Ollama-
// backed implementation, and the orchestrator itself (C11). The Ollama
// dependency is named in the example corpus's manifests (e.g. the
// danielmiessler-Fabric and amlandas-Conduit-AI-Intelligence-Hub
// go.mod files) though no full repo in the pack exercises its client
// API; the wrapper here isolates that surface behind the two-method
// contract the pipeline actually needs.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/tsawler/docpipe/docerr"
)

// Client is the outbound text-generation contract from spec.md §6. The
// pipeline's C11 orchestrator uses only GenerateText.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	TextStream(ctx context.Context, prompt string) (<-chan StreamChunk, error)
}

// StreamChunk is one element of a TextStream's lazy sequence: either a
// text fragment or a terminal error.
type StreamChunk struct {
	Text string
	Err  error
}

// OllamaClient adapts an Ollama server to the Client contract.
type OllamaClient struct {
	backend *api.Client
	model   string
	timeout time.Duration
}

// OllamaConfig configures an OllamaClient.
type OllamaConfig struct {
	// Model is the Ollama model name (e.g. "llama3.1").
	Model string
	// RequestTimeout bounds a single GenerateText call. Default 60s,
	// per spec.md §6 llm.requestTimeoutSeconds.
	RequestTimeout time.Duration
}

// NewOllamaClient builds a client against the Ollama server described
// by the OLLAMA_HOST environment variable (falling back to Ollama's own
// localhost default), per the api package's ClientFromEnvironment
// convention.
func NewOllamaClient(config OllamaConfig) (*OllamaClient, error) {
	backend, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docerr.ErrLLMUnavailable, err)
	}
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaClient{backend: backend, model: config.Model, timeout: timeout}, nil
}

// GenerateText implements Client.
func (c *OllamaClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out strings.Builder
	req := &api.GenerateRequest{Model: c.model, Prompt: prompt, Stream: boolPtr(false)}
	err := c.backend.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", docerr.ErrLLMUnavailable, err)
	}
	return out.String(), nil
}

// TextStream implements Client.
func (c *OllamaClient) TextStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	ch := make(chan StreamChunk)
	req := &api.GenerateRequest{Model: c.model, Prompt: prompt, Stream: boolPtr(true)}

	go func() {
		defer close(ch)
		err := c.backend.Generate(ctx, req, func(resp api.GenerateResponse) error {
			select {
			case ch <- StreamChunk{Text: resp.Response}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			ch <- StreamChunk{Err: fmt.Errorf("%w: %v", docerr.ErrLLMUnavailable, err)}
		}
	}()

	return ch, nil
}

func boolPtr(b bool) *bool { return &b }

// MockClient is a deterministic, in-memory Client for tests, returning
// a fixed response or error without any network dependency.
type MockClient struct {
	Response string
	Err      error
}

// GenerateText implements Client.
func (m *MockClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// TextStream implements Client.
func (m *MockClient) TextStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	ch := make(chan StreamChunk, 1)
	if m.Err != nil {
		ch <- StreamChunk{Err: m.Err}
	} else {
		ch <- StreamChunk{Text: m.Response}
	}
	close(ch)
	return ch, nil
}
