// Package index provides clients for the vector index that holds the
// knowledge base. Three backends implement the same Index interface: a
// Pinecone-compatible HTTP client, a Qdrant gRPC client, and an in-process
// store for offline use and tests.
package index

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates the remote index could not be reached.
	ErrUnavailable = errors.New("vector index unreachable")

	// ErrRejected indicates the remote index accepted the connection but
	// returned a non-success status.
	ErrRejected = errors.New("vector index rejected request")
)

// Metadata is the payload stored alongside each vector. FullContent is set
// only on a document's header chunk (chunk index 0) and carries the entire
// original document text for reconstruction.
type Metadata struct {
	Text        string `json:"text"`
	Category    string `json:"category"`
	SourceID    string `json:"sourceId"`
	Title       string `json:"title"`
	FullContent string `json:"fullContent,omitempty"`
}

// Record is the unit stored in the index.
type Record struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

// Match is a query result ranked by similarity score.
type Match struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// Index is the chunk-level contract against the backing vector store.
//
// Upsert overwrites by id: writing the same id twice replaces the prior
// vector and metadata. DeleteBySource removes every record whose metadata
// sourceId matches; this is how whole-document deletion works, since the
// index has no document concept. ListIDs follows pagination cursors to
// return every id in the index. Query returns at most topK matches sorted
// by non-increasing score.
type Index interface {
	Upsert(ctx context.Context, records []Record) error
	DeleteBySource(ctx context.Context, sourceID string) error
	ListIDs(ctx context.Context) ([]string, error)
	FetchByIDs(ctx context.Context, ids []string) (map[string]Record, error)
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	Health(ctx context.Context) error
}
