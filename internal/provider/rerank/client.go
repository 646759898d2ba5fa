// Package rerank implements domain.Reranker against an HTTP cross-encoder
// scoring service.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client scores (query, document) pairs via a remote cross-encoder.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds reranking service parameters.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// New creates a reranking client.
func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(slog.String("component", "reranker")),
	}
}

type rerankRequest struct {
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
	Model      string   `json:"model,omitempty"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
	Model   string         `json:"model"`
}

// ModelName returns the configured cross-encoder model identifier.
func (c *Client) ModelName() string { return c.model }

// Score returns one probability-like relevance score per document, aligned
// positionally with documents regardless of the order the service returns
// results in.
func (c *Client) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	start := time.Now()
	body, err := json.Marshal(rerankRequest{Query: query, Candidates: documents, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("rerank: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rerank: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank: call service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rerank: service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("rerank: decode response: %w", err)
	}
	if len(out.Results) != len(documents) {
		return nil, fmt.Errorf("rerank: got %d results for %d documents", len(out.Results), len(documents))
	}

	scores := make([]float64, len(documents))
	for _, r := range out.Results {
		if r.Index < 0 || r.Index >= len(scores) {
			return nil, fmt.Errorf("rerank: result index %d out of range", r.Index)
		}
		scores[r.Index] = r.Score
	}

	c.logger.Debug("scored candidates",
		slog.Int("documents", len(documents)),
		slog.String("model", c.model),
		slog.Duration("duration", time.Since(start)),
	)
	return scores, nil
}

// Ping verifies the reranking service is reachable. The catalog service calls
// this once at startup; on failure the matcher runs similarity-only for its
// lifetime instead of failing every request.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("rerank: build ping: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("rerank: ping: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rerank: ping returned %d", resp.StatusCode)
	}
	return nil
}
