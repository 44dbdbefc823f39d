// Package llm provides text generation through a local Ollama server.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vthunder/deskmate/internal/logging"
)

// Client generates text from a prompt. Implementations must be safe for
// concurrent use.
type Client interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Config holds Ollama connection settings.
type Config struct {
	Endpoint   string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Ollama calls a local Ollama server's generate API.
type Ollama struct {
	endpoint   string
	model      string
	maxRetries int
	httpClient *http.Client
}

func NewOllama(cfg Config) *Ollama {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Ollama{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate sends one non-streaming generation request, retrying transient
// failures up to MaxRetries times.
func (o *Ollama) Generate(ctx context.Context, system, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			logging.Debug("llm", "retrying generate (attempt %d): %v", attempt+1, lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		text, err := o.generateOnce(ctx, system, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("ollama generate: %w", lastErr)
}

func (o *Ollama) generateOnce(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  o.model,
		Prompt: prompt,
		System: system,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, logging.Truncate(string(data), 200))
	}

	var gen generateResponse
	if err := json.Unmarshal(data, &gen); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if gen.Error != "" {
		return "", fmt.Errorf("server error: %s", gen.Error)
	}
	return strings.TrimSpace(gen.Response), nil
}
