// Package embed adapts an external embedding provider to the
// (model, []text) -> []vector / (model) -> dimension contract of
// spec §4.2. The only implementation shipped here talks to Ollama's HTTP
// API, matching the OLLAMA_BASE_URL/OLLAMA_EMBED_MODEL environment
// variables of §6.4.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the embedding provider contract the ingestion pipeline and
// retriever depend on.
type Client interface {
	// Embed returns one vector per text, in order. Every text must be
	// nonempty (§4.2); callers are responsible for filtering blanks
	// before calling.
	Embed(ctx context.Context, model string, texts []string) ([][]float32, error)
	// Dimension returns the vector length model produces, by embedding a
	// one-character probe string (§4.2).
	Dimension(ctx context.Context, model string) (int, error)
}

// Default timeouts (§5): 30s for text embedding calls, 120s for
// vision-style models.
const (
	DefaultTextTimeout   = 30 * time.Second
	DefaultVisionTimeout = 120 * time.Second
)

// OllamaClient is the HTTP-backed Client implementation.
type OllamaClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewOllamaClient builds a client against baseURL (e.g. http://localhost:11434).
// timeout is applied per-request via context, not via http.Client.Timeout,
// so callers can pass a shorter context deadline for interactive calls.
func NewOllamaClient(baseURL string, timeout time.Duration) *OllamaClient {
	if timeout <= 0 {
		timeout = DefaultTextTimeout
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        8,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		timeout: timeout,
	}
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed implements Client.
func (c *OllamaClient) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var input any
	if len(texts) == 1 {
		input = texts[0]
	} else {
		input = texts
	}

	resp, err := c.doEmbed(ctx, model, input)
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, vec := range resp.Embeddings {
		out[i] = toFloat32(vec)
	}
	return out, nil
}

// Dimension implements Client by embedding a one-character probe string,
// as §4.2 specifies.
func (c *OllamaClient) Dimension(ctx context.Context, model string) (int, error) {
	resp, err := c.doEmbed(ctx, model, "x")
	if err != nil {
		return 0, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return 0, fmt.Errorf("embedding provider returned an empty vector for dimension probe")
	}
	return len(resp.Embeddings[0]), nil
}

func (c *OllamaClient) doEmbed(ctx context.Context, model string, input any) (*ollamaEmbedResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(ollamaEmbedRequest{Model: model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding provider returned status %d: %s", resp.StatusCode, string(data))
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	return &out, nil
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}

// Close releases pooled connections.
func (c *OllamaClient) Close() {
	if t, ok := c.http.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}
