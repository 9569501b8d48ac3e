package kb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mike-a-ellis/careerbase/internal/chunker"
	"github.com/mike-a-ellis/careerbase/internal/embedding"
	"github.com/mike-a-ellis/careerbase/internal/index"
)

// ErrNotFound indicates no document with the given id exists in the index.
var ErrNotFound = errors.New("snippet not found")

// Repository translates whole-document operations into chunk-level index
// operations. A nil index is a recognized state: the index credentials are
// absent and the application degrades to local-only behavior — writes are
// silently skipped and reads return empty results.
type Repository struct {
	chunker  *chunker.Chunker
	embedder embedding.Embedder
	index    index.Index
	logger   *slog.Logger
}

// NewRepository creates a repository. idx may be nil when the index is not
// configured.
func NewRepository(c *chunker.Chunker, e embedding.Embedder, idx index.Index, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		chunker:  c,
		embedder: e,
		index:    idx,
		logger:   logger,
	}
}

// Configured reports whether the repository has a backing index.
func (r *Repository) Configured() bool { return r.index != nil }

// ChunkCount reports how many chunks the content splits into under the
// repository's chunking window.
func (r *Repository) ChunkCount(content string) int { return r.chunker.Count(content) }

// Save chunks, embeds, and upserts a snippet. The record at chunk index 0
// additionally carries the entire original content in its metadata, which
// is what makes lossless reconstruction possible later.
//
// Any chunks from a prior save of the same id are deleted first, so a
// document that shrank does not leave orphaned trailing chunks behind.
// On success exactly one record per chunk exists for this id.
func (r *Repository) Save(ctx context.Context, snippet *Snippet) error {
	if r.index == nil {
		r.logger.Debug("index not configured, skipping save", "id", snippet.ID)
		return nil
	}

	chunks := r.chunker.Split(snippet.Content)

	vectors, err := r.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", embedding.ErrUnavailable, len(vectors), len(chunks))
	}

	records := make([]index.Record, len(chunks))
	for i, chunk := range chunks {
		meta := index.Metadata{
			Text:     chunk,
			Category: string(snippet.Category),
			SourceID: snippet.ID,
			Title:    snippet.Title,
		}
		if i == 0 {
			meta.FullContent = snippet.Content
		}
		records[i] = index.Record{
			ID:       ChunkID(snippet.ID, i),
			Values:   vectors[i],
			Metadata: meta,
		}
	}

	// Reconcile before writing: a re-save with fewer chunks would otherwise
	// leave the old trailing records in the index forever.
	if err := r.index.DeleteBySource(ctx, snippet.ID); err != nil {
		return fmt.Errorf("clear prior chunks: %w", err)
	}

	if err := r.index.Upsert(ctx, records); err != nil {
		return fmt.Errorf("upsert %d records: %w", len(records), err)
	}

	r.logger.Info("saved snippet",
		"id", snippet.ID,
		"category", snippet.Category,
		"chunks", len(records),
	)
	return nil
}

// Delete removes every record belonging to the document. After success no
// record with this sourceId remains in the index.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.index == nil {
		r.logger.Debug("index not configured, skipping delete", "id", id)
		return nil
	}
	if err := r.index.DeleteBySource(ctx, id); err != nil {
		return fmt.Errorf("delete snippet %s: %w", id, err)
	}
	r.logger.Info("deleted snippet", "id", id)
	return nil
}

// Get reconstructs a single document from its header chunk.
func (r *Repository) Get(ctx context.Context, id string) (*Snippet, error) {
	if r.index == nil {
		return nil, ErrNotFound
	}

	headerID := HeaderChunkID(id)
	records, err := r.index.FetchByIDs(ctx, []string{headerID})
	if err != nil {
		return nil, fmt.Errorf("fetch header chunk: %w", err)
	}
	rec, ok := records[headerID]
	if !ok {
		return nil, ErrNotFound
	}
	return r.reconstruct(rec), nil
}

// ListAll reconstructs every document in the knowledge base: list all
// record ids, keep the header-chunk ids, fetch their metadata, and recover
// each document from fullContent. Ordering follows whatever the index
// returns.
func (r *Repository) ListAll(ctx context.Context) ([]*Snippet, error) {
	if r.index == nil {
		return []*Snippet{}, nil
	}

	ids, err := r.index.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list record ids: %w", err)
	}

	var headerIDs []string
	for _, id := range ids {
		if IsHeaderChunkID(id) {
			headerIDs = append(headerIDs, id)
		}
	}
	if len(headerIDs) == 0 {
		return []*Snippet{}, nil
	}

	records, err := r.index.FetchByIDs(ctx, headerIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch header chunks: %w", err)
	}

	// Consume each record once: an id repeated at a page boundary must not
	// become a duplicate snippet.
	snippets := make([]*Snippet, 0, len(headerIDs))
	for _, headerID := range headerIDs {
		rec, ok := records[headerID]
		if !ok {
			continue
		}
		delete(records, headerID)
		snippets = append(snippets, r.reconstruct(rec))
	}
	return snippets, nil
}

// reconstruct builds a snippet from a header-chunk record. Records written
// before fullContent existed fall back to the chunk's own slice; the
// result is truncated relative to the true original, so the condition is
// logged.
func (r *Repository) reconstruct(rec index.Record) *Snippet {
	content := rec.Metadata.FullContent
	if content == "" {
		content = rec.Metadata.Text
		r.logger.Warn("header chunk lacks full content, reconstruction incomplete",
			"sourceId", rec.Metadata.SourceID,
			"title", rec.Metadata.Title,
		)
	}
	return &Snippet{
		ID:       rec.Metadata.SourceID,
		Category: Category(rec.Metadata.Category),
		Title:    rec.Metadata.Title,
		Content:  content,
	}
}
