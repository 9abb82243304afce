// Package openai implements the embedding provider against any
// OpenAI-compatible /embeddings endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"svcsearch/internal/domain"
)

// Client calls an OpenAI-compatible embeddings endpoint. Every Embed is
// one outbound request; failures are not retried and surface to the
// caller as ErrEmbedding.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	client     *http.Client
}

// Config configures the embeddings client. The API key is read from the
// environment variable named by APIKeyEnv, never from config files.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: missing API key in env %s", domain.ErrConfiguration, cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: embedding dimensions must be positive", domain.ErrConfiguration)
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: t},
	}, nil
}

// Dimensions returns the vector length every Embed call produces.
func (c *Client) Dimensions() int { return c.dimensions }

// Embed returns an embedding vector for the given text. A response whose
// vector length disagrees with the configured dimensionality is a
// schema mismatch, not a recoverable condition.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	type reqBody struct {
		Input      string `json:"input"`
		Model      string `json:"model"`
		Dimensions int    `json:"dimensions"`
	}
	data, _ := json.Marshal(reqBody{Input: text, Model: c.model, Dimensions: c.dimensions})
	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: embeddings request returned %s", domain.ErrEmbedding, resp.Status)
	}

	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrEmbedding)
	}
	vec := out.Data[0].Embedding
	if len(vec) != c.dimensions {
		return nil, fmt.Errorf("%w: provider returned %d dimensions, schema declares %d",
			domain.ErrSchemaMismatch, len(vec), c.dimensions)
	}
	return vec, nil
}
