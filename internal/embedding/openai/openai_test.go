package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solagent/internal/domain"
)

type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// fixedVectorServer answers every input with the same vector.
func fixedVectorServer(t *testing.T, vector []float32, requests *[]embedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if requests != nil {
			*requests = append(*requests, req)
		}
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": vector}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		}))
	}))
}

func TestEmbedBatchSplitsIntoBatches(t *testing.T) {
	var requests []embedRequest
	srv := fixedVectorServer(t, []float32{1, 0}, &requests)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL + "/v1", BatchSize: 2})
	require.NoError(t, err)

	vectors, err := c.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	require.Len(t, requests, 2, "three texts with batch size two means two calls")
	assert.Equal(t, []string{"a", "b"}, requests[0].Input)
	assert.Equal(t, []string{"c"}, requests[1].Input)
	assert.Equal(t, 2, c.Dimension())
}

func TestEmbedNormalisesVectors(t *testing.T) {
	srv := fixedVectorServer(t, []float32{3, 4}, nil)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	v, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, v, 2)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
}

func TestEmbedBatchRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float32{1, 0}}},
		})
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	vectors, err := c.EmbedBatch(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, 2, attempts)
}

func TestEmbedBatchFailureIsEmbeddingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = c.EmbedBatch(context.Background(), []string{"a"})
	var embErr *domain.EmbeddingError
	require.ErrorAs(t, err, &embErr)
}

func TestEmbedBatchMismatchedCountFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{},
		})
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = c.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err, "a malformed batch must not silently drop documents")
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	c, err := NewClient(Config{APIKey: "k"})
	require.NoError(t, err)
	vectors, err := c.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
