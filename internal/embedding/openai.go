package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// OpenAIModel is the OpenAI embedding model.
	OpenAIModel = "text-embedding-3-small"

	// OpenAIDimension is the vector size produced by text-embedding-3-small.
	OpenAIDimension = 1536

	// DefaultBatchSize balances requests-per-minute vs tokens-per-minute
	// rate limits. OpenAI accepts up to 2048 texts per batch.
	DefaultBatchSize = 500
)

// OpenAIEmbedder generates embeddings with the OpenAI API. Requests are
// batched, and rate-limited batches retry with exponential backoff.
type OpenAIEmbedder struct {
	client    openai.Client
	batchSize int
}

// NewOpenAIEmbedder creates an embedder backed by the OpenAI API.
// A batchSize of 0 selects DefaultBatchSize.
func NewOpenAIEmbedder(apiKey string, batchSize int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key not set")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &OpenAIEmbedder{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		batchSize: batchSize,
	}, nil
}

// EmbedTexts embeds the texts in batches, preserving input order.
func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		vectors, err := e.embedBatchWithRetry(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, vectors...)
	}
	return all, nil
}

// Dimension returns the vector size of the configured model.
func (e *OpenAIEmbedder) Dimension() int { return OpenAIDimension }

// embedBatchWithRetry embeds a single batch, retrying with exponential
// backoff on rate limit errors (HTTP 429). Other errors are permanent.
func (e *OpenAIEmbedder) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: OpenAIModel,
		})
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if resp == nil || len(resp.Data) != len(texts) {
			got := 0
			if resp != nil {
				got = len(resp.Data)
			}
			return backoff.Permanent(fmt.Errorf("expected %d embeddings, got %d", len(texts), got))
		}

		vectors = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			vectors[i] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return vectors, nil
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// toFloat32 converts the API's float64 vectors to the float32 the index
// stores.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
