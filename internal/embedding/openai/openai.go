// Package openai adapts an OpenAI-compatible embeddings endpoint to the
// domain Embedder port.
package openai

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"solagent/internal/domain"
)

const maxRetries = 5

var _ domain.Embedder = (*Client)(nil)

// Client is an embeddings client backed by go-openai. Vectors are
// L2-normalised so downstream cosine math reduces to a dot product.
type Client struct {
	api       *openai.Client
	model     string
	batchSize int
	dimension int
}

// Config configures the embeddings client.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	BatchSize int
	Timeout   time.Duration
}

// NewClient creates the embeddings client. The API key is required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigError{Key: "embedder.api_key", Reason: "missing embeddings API key"}
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{
		api:       openai.NewClientWithConfig(apiCfg),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
	}, nil
}

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input text, issuing the service calls
// in batches of at most batchSize. Any batch failure fails the whole call.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors := make([][]float32, 0, len(texts))
	for begin := 0; begin < len(texts); begin += c.batchSize {
		end := begin + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.embedBatch(ctx, texts[begin:end])
		if err != nil {
			return nil, &domain.EmbeddingError{Op: "batch", Err: err}
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// Dimension returns the vector dimensionality, known after the first
// successful call.
func (c *Client) Dimension() int { return c.dimension }

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(c.model),
		})
		if err != nil {
			lastErr = err
			if retryable(err) && attempt < maxRetries {
				select {
				case <-time.After(retryDelay(attempt)):
					continue
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return nil, err
		}
		if len(resp.Data) != len(texts) {
			return nil, errors.New("embedding count does not match input count")
		}
		vectors := make([][]float32, len(resp.Data))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(vectors) {
				return nil, errors.New("embedding index out of range")
			}
			v := make([]float32, len(d.Embedding))
			copy(v, d.Embedding)
			l2normalize(v)
			vectors[d.Index] = v
		}
		for _, v := range vectors {
			if len(v) == 0 {
				return nil, errors.New("service returned an empty embedding")
			}
		}
		if c.dimension == 0 {
			c.dimension = len(vectors[0])
		}
		return vectors, nil
	}
	return nil, lastErr
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	return false
}

// retryDelay is an exponential backoff capped at 5s.
func retryDelay(attempt int) time.Duration {
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func l2normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
