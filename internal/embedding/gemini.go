package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	// GeminiModel is the Gemini embedding model.
	GeminiModel = "text-embedding-004"

	// GeminiDimension is the vector size produced by text-embedding-004.
	GeminiDimension = 768
)

// GeminiEmbedder generates embeddings with the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an embedder backed by the Gemini API.
func NewGeminiEmbedder(ctx context.Context, apiKey string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiEmbedder{client: client, model: GeminiModel}, nil
}

// EmbedTexts embeds all texts in one request. The response shape is
// validated before any vector is extracted; a missing or miscounted
// embedding list maps to ErrUnavailable rather than propagating nils.
func (e *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{})
	if err != nil {
		return nil, fmt.Errorf("%w: embed content: %v", ErrUnavailable, err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrUnavailable, len(texts), got)
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("%w: embedding %d has no values", ErrUnavailable, i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// Dimension returns the vector size of the configured model.
func (e *GeminiEmbedder) Dimension() int { return GeminiDimension }
