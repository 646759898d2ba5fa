package rerank_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurrx/priced/internal/provider/rerank"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestScoreAlignsResultsByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/rerank", r.URL.Path)

		var req struct {
			Query      string   `json:"query"`
			Candidates []string `json:"candidates"`
			Model      string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "btc price", req.Query)
		assert.Equal(t, []string{"doc a", "doc b", "doc c"}, req.Candidates)
		assert.Equal(t, "test-model", req.Model)

		// Results deliberately out of order.
		json.NewEncoder(w).Encode(map[string]any{
			"model": "test-model",
			"results": []map[string]any{
				{"index": 2, "score": 0.3},
				{"index": 0, "score": 0.9},
				{"index": 1, "score": 0.6},
			},
		})
	}))
	defer srv.Close()

	c := rerank.New(rerank.Config{BaseURL: srv.URL, Model: "test-model"}, testLogger())
	scores, err := c.Score(context.Background(), "btc price", []string{"doc a", "doc b", "doc c"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.6, 0.3}, scores)
}

func TestScoreEmptyDocuments(t *testing.T) {
	c := rerank.New(rerank.Config{BaseURL: "http://unused"}, testLogger())
	scores, err := c.Score(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Nil(t, scores)
}

func TestScoreCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"index": 0, "score": 0.5}},
		})
	}))
	defer srv.Close()

	c := rerank.New(rerank.Config{BaseURL: srv.URL}, testLogger())
	_, err := c.Score(context.Background(), "q", []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 results for 2 documents")
}

func TestScoreIndexOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 0, "score": 0.5},
				{"index": 7, "score": 0.5},
			},
		})
	}))
	defer srv.Close()

	c := rerank.New(rerank.Config{BaseURL: srv.URL}, testLogger())
	_, err := c.Score(context.Background(), "q", []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestScoreServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := rerank.New(rerank.Config{BaseURL: srv.URL}, testLogger())
	_, err := c.Score(context.Background(), "q", []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := rerank.New(rerank.Config{BaseURL: srv.URL}, testLogger())
	assert.NoError(t, c.Ping(context.Background()))
}

func TestPingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := rerank.New(rerank.Config{BaseURL: srv.URL}, testLogger())
	assert.Error(t, c.Ping(context.Background()))
}
