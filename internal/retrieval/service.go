// Package retrieval turns a free-text query into a grounding context block
// for the generative layer. Retrieval is best-effort enrichment: every
// failure degrades to an empty context instead of blocking generation.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mike-a-ellis/careerbase/internal/embedding"
	"github.com/mike-a-ellis/careerbase/internal/index"
)

// DefaultTopK is used when the caller passes a non-positive topK.
const DefaultTopK = 5

// Service performs similarity search over the knowledge base and formats
// matches into a single context string.
type Service struct {
	embedder embedding.Embedder
	index    index.Index
	logger   *slog.Logger
}

// NewService creates a retrieval service. idx may be nil when the index is
// not configured; Retrieve then always returns "".
func NewService(e embedding.Embedder, idx index.Index, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{embedder: e, index: idx, logger: logger}
}

// Retrieve embeds the query, fetches the topK most similar chunks, and
// formats them as labeled blocks in ranking order (highest similarity
// first). A non-positive topK falls back to DefaultTopK. It never fails:
// an unconfigured index or any remote error yields an empty string, and
// the caller proceeds ungrounded.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) string {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if s.index == nil {
		s.logger.Debug("index not configured, returning empty context")
		return ""
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil || len(vectors) != 1 {
		s.logger.Warn("query embedding failed, returning empty context", "error", err)
		return ""
	}

	matches, err := s.index.Query(ctx, vectors[0], topK)
	if err != nil {
		s.logger.Warn("similarity query failed, returning empty context", "error", err)
		return ""
	}

	blocks := make([]string, 0, len(matches))
	for _, match := range matches {
		blocks = append(blocks, fmt.Sprintf("[Source: %s (%s)]\n%s",
			match.Metadata.Title, match.Metadata.Category, match.Metadata.Text))
	}
	return strings.Join(blocks, "\n\n")
}
