package kb

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mike-a-ellis/careerbase/internal/chunker"
	"github.com/mike-a-ellis/careerbase/internal/index"
)

// stubEmbedder returns a deterministic small vector per text.
type stubEmbedder struct {
	calls int
	fail  bool
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("embedding blew up")
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		var sum float32
		for _, r := range t {
			sum += float32(r)
		}
		vectors[i] = []float32{sum, float32(len(t)), 1}
	}
	return vectors, nil
}

func (s *stubEmbedder) Dimension() int { return 3 }

func newTestRepo(t *testing.T, idx index.Index) (*Repository, *stubEmbedder) {
	t.Helper()
	c, err := chunker.New(1000, 200)
	require.NoError(t, err)
	emb := &stubEmbedder{}
	return NewRepository(c, emb, idx, nil), emb
}

func TestSave_HeaderChunkConvention(t *testing.T) {
	mem := index.NewMemory()
	repo, _ := newTestRepo(t, mem)
	ctx := context.Background()

	content := strings.Repeat("r", 2400)
	snippet := NewSnippet(CategoryResume, "Backend Resume", content)
	require.NoError(t, repo.Save(ctx, snippet))

	ids, err := mem.ListIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 3, "2400 chars at 1000/200 must produce 3 chunks")

	records, err := mem.FetchByIDs(ctx, []string{
		ChunkID(snippet.ID, 0),
		ChunkID(snippet.ID, 1),
		ChunkID(snippet.ID, 2),
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[ChunkID(snippet.ID, 0)]
	assert.Equal(t, content, header.Metadata.FullContent, "header chunk carries the full content")
	assert.Len(t, header.Metadata.Text, 1000)

	assert.Empty(t, records[ChunkID(snippet.ID, 1)].Metadata.FullContent)
	assert.Len(t, records[ChunkID(snippet.ID, 1)].Metadata.Text, 1000)
	assert.Empty(t, records[ChunkID(snippet.ID, 2)].Metadata.FullContent)
	assert.Len(t, records[ChunkID(snippet.ID, 2)].Metadata.Text, 800)

	for _, rec := range records {
		assert.Equal(t, snippet.ID, rec.Metadata.SourceID)
		assert.Equal(t, "Backend Resume", rec.Metadata.Title)
		assert.Equal(t, "resume", rec.Metadata.Category)
	}
}

func TestSaveThenListAll_RoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t, index.NewMemory())
	ctx := context.Background()

	long := strings.Repeat("project history ", 300) // forces multiple chunks
	saved := []*Snippet{
		NewSnippet(CategoryBio, "About Me", "Short bio."),
		NewSnippet(CategoryProject, "Pipeline Rewrite", long),
	}
	for _, s := range saved {
		require.NoError(t, repo.Save(ctx, s))
	}

	listed, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	byID := map[string]*Snippet{}
	for _, s := range listed {
		byID[s.ID] = s
	}
	for _, want := range saved {
		got, ok := byID[want.ID]
		require.True(t, ok, "snippet %s missing from ListAll", want.Title)
		assert.Equal(t, want.Content, got.Content, "content must round-trip losslessly")
		assert.Equal(t, want.Category, got.Category)
		assert.Equal(t, want.Title, got.Title)
	}
}

func TestGet(t *testing.T) {
	repo, _ := newTestRepo(t, index.NewMemory())
	ctx := context.Background()

	snippet := NewSnippet(CategorySkill, "Go", "Ten years of Go.")
	require.NoError(t, repo.Save(ctx, snippet))

	got, err := repo.Get(ctx, snippet.ID)
	require.NoError(t, err)
	assert.Equal(t, snippet.Content, got.Content)

	_, err = repo.Get(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_RemovesEveryChunk(t *testing.T) {
	mem := index.NewMemory()
	repo, _ := newTestRepo(t, mem)
	ctx := context.Background()

	keep := NewSnippet(CategoryBio, "Keep", "kept content")
	drop := NewSnippet(CategoryProject, "Drop", strings.Repeat("x", 3000))
	require.NoError(t, repo.Save(ctx, keep))
	require.NoError(t, repo.Save(ctx, drop))

	require.NoError(t, repo.Delete(ctx, drop.ID))

	listed, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, keep.ID, listed[0].ID)

	// No chunk of the deleted document may surface in a query.
	matches, err := mem.Query(ctx, []float32{1, 1, 1}, 100)
	require.NoError(t, err)
	for _, m := range matches {
		assert.NotEqual(t, drop.ID, m.Metadata.SourceID)
	}
}

func TestSave_ReconcilesShrinkingDocument(t *testing.T) {
	mem := index.NewMemory()
	repo, _ := newTestRepo(t, mem)
	ctx := context.Background()

	snippet := NewSnippet(CategoryProject, "Shrinker", strings.Repeat("a", 3000)) // 4 chunks
	require.NoError(t, repo.Save(ctx, snippet))
	require.Equal(t, 4, mem.Len())

	snippet.Content = "now tiny" // 1 chunk
	require.NoError(t, repo.Save(ctx, snippet))
	assert.Equal(t, 1, mem.Len(), "re-save must not leave orphaned trailing chunks")

	got, err := repo.Get(ctx, snippet.ID)
	require.NoError(t, err)
	assert.Equal(t, "now tiny", got.Content)
}

func TestUnconfiguredIndex_Degrades(t *testing.T) {
	repo, emb := newTestRepo(t, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, NewSnippet(CategoryBio, "Offline", "text")))
	assert.Zero(t, emb.calls, "save without an index must not embed")

	require.NoError(t, repo.Delete(ctx, "whatever"))

	listed, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = repo.Get(ctx, "whatever")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSave_PropagatesEmbeddingFailure(t *testing.T) {
	mem := index.NewMemory()
	repo, emb := newTestRepo(t, mem)
	emb.fail = true

	err := repo.Save(context.Background(), NewSnippet(CategoryBio, "Broken", "text"))
	require.Error(t, err)
	assert.Zero(t, mem.Len(), "nothing may be written when embedding fails")
}

func TestListAll_FallsBackWithoutFullContent(t *testing.T) {
	// Simulates a record written by a schema version that predates
	// fullContent: reconstruction degrades to the chunk's own text.
	mem := index.NewMemory()
	repo, _ := newTestRepo(t, mem)
	ctx := context.Background()

	require.NoError(t, mem.Upsert(ctx, []index.Record{{
		ID:     "legacy_chunk_0",
		Values: []float32{1, 2, 3},
		Metadata: index.Metadata{
			Text:     "only the first slice",
			Category: "bio",
			SourceID: "legacy",
			Title:    "Legacy Doc",
		},
	}}))

	listed, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "only the first slice", listed[0].Content)
}

// repeatingIDIndex simulates a paginated backend whose inclusive cursor
// returns the boundary id on two consecutive pages.
type repeatingIDIndex struct{ index.Index }

func (r repeatingIDIndex) ListIDs(ctx context.Context) ([]string, error) {
	base, err := r.Index.ListIDs(ctx)
	if err != nil || len(base) == 0 {
		return base, err
	}
	return append(base, base[len(base)-1]), nil
}

func TestListAll_DeduplicatesRepeatedIDs(t *testing.T) {
	mem := index.NewMemory()
	repo, _ := newTestRepo(t, repeatingIDIndex{Index: mem})
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, NewSnippet(CategoryBio, "Once", "only once")))

	listed, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1, "a repeated header id must not yield a duplicate snippet")
	assert.Equal(t, "Once", listed[0].Title)
}

func TestChunkIDHelpers(t *testing.T) {
	assert.Equal(t, "abc_chunk_0", ChunkID("abc", 0))
	assert.Equal(t, "abc_chunk_7", ChunkID("abc", 7))
	assert.Equal(t, "abc_chunk_0", HeaderChunkID("abc"))
	assert.True(t, IsHeaderChunkID("abc_chunk_0"))
	assert.False(t, IsHeaderChunkID("abc_chunk_1"))
	assert.False(t, IsHeaderChunkID("abc_chunk_10"))
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCategory("hobby")
	assert.Error(t, err)
}
