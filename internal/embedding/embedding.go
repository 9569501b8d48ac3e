// Package embedding turns text into dense vectors through a remote
// embedding service. Two backends are available: Gemini (text-embedding-004)
// and OpenAI (text-embedding-3-small), selected by configuration.
package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the remote embedding call failed or returned a
// structurally invalid response. Callers check it with errors.Is.
var ErrUnavailable = errors.New("embedding service unavailable")

// Embedder generates embedding vectors for text.
//
// EmbedTexts returns one vector per input text, in input order. A partial
// result is never returned: any failure yields a nil slice and an error
// wrapping ErrUnavailable.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
