package index

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// DefaultCollection is the single Qdrant collection holding all chunks.
const DefaultCollection = "career_kb"

// Qdrant implements Index on a Qdrant server over gRPC.
//
// Qdrant point ids must be UUIDs, while chunk ids follow the
// "<source>_chunk_<i>" convention, so each point gets a deterministic
// UUIDv5 derived from its chunk id and keeps the original id in the
// "chunk_id" payload field.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	dimension  uint64
}

// NewQdrant connects to a Qdrant server and verifies it is reachable,
// retrying the health check with exponential backoff before giving up.
func NewQdrant(host string, port int, dimension int) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	q := &Qdrant{
		client:     client,
		collection: DefaultCollection,
		dimension:  uint64(dimension),
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(func() error {
		return q.Health(context.Background())
	}, b); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return q, nil
}

// Health performs a single health check against Qdrant.
func (q *Qdrant) Health(ctx context.Context) error {
	result, err := q.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("%w: health check: %v", ErrUnavailable, err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("%w: health check returned invalid response", ErrRejected)
	}
	return nil
}

// EnsureCollection creates the collection and its payload indexes if they
// do not exist yet. Idempotent.
func (q *Qdrant) EnsureCollection(ctx context.Context) error {
	collections, err := q.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("%w: list collections: %v", ErrUnavailable, err)
	}
	for _, name := range collections {
		if name == q.collection {
			return nil
		}
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: create collection: %v", ErrRejected, err)
	}

	// Without these indexes delete-by-source and id listing degrade badly.
	for _, field := range []string{"source_id", "chunk_id"} {
		_, err := q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: q.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("%w: create index for field %s: %v", ErrRejected, field, err)
		}
	}
	return nil
}

// Close closes the underlying gRPC connection.
func (q *Qdrant) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}

// Upsert stores records, replacing any point with the same id.
func (q *Qdrant) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		if uint64(len(rec.Values)) != q.dimension {
			return fmt.Errorf("record %s has %d dimensions, expected %d",
				rec.ID, len(rec.Values), q.dimension)
		}

		payload := map[string]any{
			"chunk_id":  rec.ID,
			"text":      rec.Metadata.Text,
			"category":  rec.Metadata.Category,
			"source_id": rec.Metadata.SourceID,
			"title":     rec.Metadata.Title,
		}
		if rec.Metadata.FullContent != "" {
			payload["full_content"] = rec.Metadata.FullContent
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(rec.ID)),
			Vectors: qdrant.NewVectors(rec.Values...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: upsert %d points: %v", ErrUnavailable, len(points), err)
	}
	return nil
}

// DeleteBySource removes every point whose source_id payload matches.
func (q *Qdrant) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("source_id", sourceID),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: delete by source %s: %v", ErrUnavailable, sourceID, err)
	}
	return nil
}

// ListIDs scrolls the whole collection and returns the original chunk ids,
// following scroll offsets until the final page. The raw points client is
// used because its response carries next_page_offset; Offset is inclusive,
// so resuming from the last returned id would repeat it.
func (q *Qdrant) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	var offset *qdrant.PointId

	for {
		resp, err := q.client.GetPointsClient().Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: q.collection,
			Limit:          qdrant.PtrOf(uint32(defaultPageSize)),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayloadInclude("chunk_id"),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: scroll ids: %v", ErrUnavailable, err)
		}

		for _, result := range resp.GetResult() {
			if id := result.Payload["chunk_id"].GetStringValue(); id != "" {
				ids = append(ids, id)
			}
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			return ids, nil
		}
	}
}

// FetchByIDs retrieves metadata for the given chunk ids. Unknown ids are
// absent from the result.
func (q *Qdrant) FetchByIDs(ctx context.Context, ids []string) (map[string]Record, error) {
	if len(ids) == 0 {
		return map[string]Record{}, nil
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDUUID(pointID(id))
	}

	results, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collection,
		Ids:            pointIDs,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %d points: %v", ErrUnavailable, len(ids), err)
	}

	records := make(map[string]Record, len(results))
	for _, point := range results {
		rec := recordFromPayload(point.Payload)
		if rec.ID != "" {
			records[rec.ID] = rec
		}
	}
	return records, nil
}

// Query returns up to topK matches ranked by descending cosine similarity.
func (q *Qdrant) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrUnavailable, err)
	}

	matches := make([]Match, 0, len(results))
	for _, result := range results {
		rec := recordFromPayload(result.Payload)
		matches = append(matches, Match{
			ID:       rec.ID,
			Score:    float64(result.Score),
			Metadata: rec.Metadata,
		})
	}
	return matches, nil
}

func recordFromPayload(payload map[string]*qdrant.Value) Record {
	return Record{
		ID: payload["chunk_id"].GetStringValue(),
		Metadata: Metadata{
			Text:        payload["text"].GetStringValue(),
			Category:    payload["category"].GetStringValue(),
			SourceID:    payload["source_id"].GetStringValue(),
			Title:       payload["title"].GetStringValue(),
			FullContent: payload["full_content"].GetStringValue(),
		},
	}
}

// pointID derives a stable UUIDv5 from a chunk id so re-saving a document
// overwrites its points instead of duplicating them.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}
