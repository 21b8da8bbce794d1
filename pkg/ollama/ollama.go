package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/ollama/ollama/api"
)

type IOllama interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType string, prompt string) (string, error)
	Name() string
	Close()
}

type ollamaClient struct {
	client *api.Client
	model  string
}

// NewOllamaClient talks to a local Ollama server. OLLAMA_URL may include a
// path such as /api/chat; only scheme and host are used.
func NewOllamaClient() (IOllama, error) {
	raw := os.Getenv("OLLAMA_URL")
	if raw == "" {
		raw = "http://localhost:11434"
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid OLLAMA_URL %q", raw)
	}

	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "llava"
	}

	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &ollamaClient{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

func (c *ollamaClient) Name() string { return "ollama:" + c.model }

func (c *ollamaClient) AnalyzeImage(ctx context.Context, image []byte, mimeType string, prompt string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("empty image data")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
	}

	stream := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{{
			Role:    "user",
			Content: prompt,
			Images:  []api.ImageData{api.ImageData(image)},
		}},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0},
	}

	var content string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %w", err)
	}
	if content == "" {
		return "", errors.New("empty response from ollama")
	}
	return content, nil
}

// Close is a no-op; the HTTP client holds no long-lived resources.
func (c *ollamaClient) Close() {}
