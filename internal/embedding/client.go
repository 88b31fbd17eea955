package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"clauselens/internal/config"
	"clauselens/internal/provider"
)

const (
	apiURL = "https://api.openai.com/v1/embeddings"

	// maxInputLen bounds each input text; clause bodies beyond it add little
	// to the embedding and inflate token cost.
	maxInputLen = 1000
)

// Client implements port.EmbeddingProvider using the OpenAI Embeddings API.
type Client struct {
	apiKey    string
	model     string
	dimension int
	endpoint  string
	client    *http.Client
}

// NewClient creates an embedding client from config.
func NewClient(cfg *config.EmbeddingConfig) *Client {
	return newClient(cfg, apiURL)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.EmbeddingConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.EmbeddingConfig, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	dimension := cfg.Dimension
	if dimension == 0 {
		dimension = 1536
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:    cfg.APIKey,
		model:     model,
		dimension: dimension,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Dimension() int {
	return c.dimension
}

// Embed returns one vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(texts))
	for i, t := range texts {
		if len(t) > maxInputLen {
			t = truncate(t, maxInputLen)
		}
		inputs[i] = t
	}

	reqBody := map[string]interface{}{
		"model": c.model,
		"input": inputs,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling embeddings API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("embeddings API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := provider.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, provider.NewRateLimitError("embedding", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return extractVectors(respBody, len(texts))
}

// apiResponse models the OpenAI Embeddings API response.
type apiResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// truncate cuts s to at most max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func extractVectors(body []byte, want int) ([][]float32, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Data) != want {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), want)
	}

	vectors := make([][]float32, want)
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= want {
			return nil, fmt.Errorf("embedding index out of range: %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
