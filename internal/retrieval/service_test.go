package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mike-a-ellis/careerbase/internal/index"
)

type fixedEmbedder struct {
	vector []float32
	err    error
}

func (f *fixedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fixedEmbedder) Dimension() int { return len(f.vector) }

// failingIndex implements index.Index and fails every operation.
type failingIndex struct{ index.Index }

func (failingIndex) Query(ctx context.Context, vector []float32, topK int) ([]index.Match, error) {
	return nil, errors.New("index down")
}

func TestRetrieve_FormatsRankedMatches(t *testing.T) {
	mem := index.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Upsert(ctx, []index.Record{
		{ID: "a_chunk_0", Values: []float32{1, 0}, Metadata: index.Metadata{Title: "Go Skills", Category: "skill", SourceID: "a", Text: "Go, gRPC, Postgres"}},
		{ID: "b_chunk_0", Values: []float32{0.5, 0.5}, Metadata: index.Metadata{Title: "Bio", Category: "bio", SourceID: "b", Text: "Engineer in Berlin"}},
		{ID: "c_chunk_0", Values: []float32{0, 1}, Metadata: index.Metadata{Title: "Letter", Category: "cover_letter", SourceID: "c", Text: "Dear team"}},
	}))

	svc := NewService(&fixedEmbedder{vector: []float32{1, 0}}, mem, nil)
	got := svc.Retrieve(ctx, "what are my go skills", 2)

	want := "[Source: Go Skills (skill)]\nGo, gRPC, Postgres\n\n[Source: Bio (bio)]\nEngineer in Berlin"
	assert.Equal(t, want, got, "blocks must preserve ranking order and the labeled format")
}

func TestRetrieve_TopKBoundsResults(t *testing.T) {
	mem := index.NewMemory()
	ctx := context.Background()
	for _, rec := range []index.Record{
		{ID: "a_chunk_0", Values: []float32{1, 0}, Metadata: index.Metadata{Title: "A", Category: "bio", Text: "a"}},
		{ID: "a_chunk_1", Values: []float32{0.9, 0.1}, Metadata: index.Metadata{Title: "A", Category: "bio", Text: "b"}},
	} {
		require.NoError(t, mem.Upsert(ctx, []index.Record{rec}))
	}

	svc := NewService(&fixedEmbedder{vector: []float32{1, 0}}, mem, nil)
	got := svc.Retrieve(ctx, "q", 1)
	assert.Equal(t, "[Source: A (bio)]\na", got)
}

func TestRetrieve_NonPositiveTopKUsesDefault(t *testing.T) {
	mem := index.NewMemory()
	ctx := context.Background()
	for i := 0; i < DefaultTopK+3; i++ {
		require.NoError(t, mem.Upsert(ctx, []index.Record{{
			ID:       fmt.Sprintf("s%d_chunk_0", i),
			Values:   []float32{1, float32(i)},
			Metadata: index.Metadata{Title: "T", Category: "bio", Text: "t"},
		}}))
	}

	svc := NewService(&fixedEmbedder{vector: []float32{1, 0}}, mem, nil)
	for _, topK := range []int{0, -1} {
		got := svc.Retrieve(ctx, "q", topK)
		require.NotEmpty(t, got)
		blocks := strings.Split(got, "\n\n")
		assert.Len(t, blocks, DefaultTopK, "topK=%d must fall back to the default", topK)
	}
}

func TestRetrieve_DegradesToEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("index not configured", func(t *testing.T) {
		svc := NewService(&fixedEmbedder{vector: []float32{1}}, nil, nil)
		assert.Empty(t, svc.Retrieve(ctx, "q", 5))
	})

	t.Run("embedding failure", func(t *testing.T) {
		svc := NewService(&fixedEmbedder{err: errors.New("boom")}, index.NewMemory(), nil)
		assert.Empty(t, svc.Retrieve(ctx, "q", 5))
	})

	t.Run("query failure", func(t *testing.T) {
		svc := NewService(&fixedEmbedder{vector: []float32{1}}, failingIndex{}, nil)
		assert.Empty(t, svc.Retrieve(ctx, "q", 5))
	})

	t.Run("no matches", func(t *testing.T) {
		svc := NewService(&fixedEmbedder{vector: []float32{1}}, index.NewMemory(), nil)
		assert.Empty(t, svc.Retrieve(ctx, "q", 5))
	})
}
