//go:build integration

package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupQdrant connects to a local Qdrant and ensures the collection
// exists. Skips when no server is running.
func setupQdrant(t *testing.T) *Qdrant {
	t.Helper()
	q, err := NewQdrant("localhost", 6334, 3)
	if err != nil {
		t.Skipf("qdrant not available: %v", err)
	}
	require.NoError(t, q.EnsureCollection(context.Background()))
	t.Cleanup(func() { q.Close() })
	return q
}

func TestQdrant_RoundTrip(t *testing.T) {
	q := setupQdrant(t)
	ctx := context.Background()

	sourceID := uuid.New().String()
	records := []Record{
		{
			ID:     sourceID + "_chunk_0",
			Values: []float32{0.1, 0.2, 0.3},
			Metadata: Metadata{
				Text:        "first slice",
				Category:    "project",
				SourceID:    sourceID,
				Title:       "Round Trip",
				FullContent: "first slice second slice",
			},
		},
		{
			ID:     sourceID + "_chunk_1",
			Values: []float32{0.2, 0.3, 0.4},
			Metadata: Metadata{
				Text:     "second slice",
				Category: "project",
				SourceID: sourceID,
				Title:    "Round Trip",
			},
		},
	}
	require.NoError(t, q.Upsert(ctx, records))

	fetched, err := q.FetchByIDs(ctx, []string{sourceID + "_chunk_0", sourceID + "_chunk_1"})
	require.NoError(t, err)
	require.Len(t, fetched, 2)
	assert.Equal(t, "first slice second slice", fetched[sourceID+"_chunk_0"].Metadata.FullContent)
	assert.Empty(t, fetched[sourceID+"_chunk_1"].Metadata.FullContent)

	matches, err := q.Query(ctx, []float32{0.1, 0.2, 0.3}, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, matches)

	require.NoError(t, q.DeleteBySource(ctx, sourceID))
	fetched, err = q.FetchByIDs(ctx, []string{sourceID + "_chunk_0"})
	require.NoError(t, err)
	assert.Empty(t, fetched)
}

func TestQdrant_ListIDsSpansPagesWithoutDuplicates(t *testing.T) {
	q := setupQdrant(t)
	ctx := context.Background()

	sourceID := uuid.New().String()
	total := defaultPageSize + 50
	want := make(map[string]bool, total)
	records := make([]Record, total)
	for i := range records {
		id := fmt.Sprintf("%s_chunk_%d", sourceID, i)
		want[id] = true
		records[i] = Record{
			ID:     id,
			Values: []float32{float32(i), 1, 0},
			Metadata: Metadata{
				Text:     "slice",
				Category: "project",
				SourceID: sourceID,
				Title:    "Paged",
			},
		}
	}
	require.NoError(t, q.Upsert(ctx, records))
	t.Cleanup(func() { q.DeleteBySource(ctx, sourceID) })

	ids, err := q.ListIDs(ctx)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, id := range ids {
		if want[id] {
			seen[id]++
		}
	}
	require.Len(t, seen, total, "every stored id must be listed")
	for id, count := range seen {
		assert.Equal(t, 1, count, "id %s listed more than once across page boundaries", id)
	}
}

func TestQdrant_UpsertRejectsDimensionMismatch(t *testing.T) {
	q := setupQdrant(t)

	err := q.Upsert(context.Background(), []Record{
		{ID: "bad_chunk_0", Values: []float32{0.1}},
	})
	require.Error(t, err)
}
