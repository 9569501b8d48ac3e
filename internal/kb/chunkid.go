package kb

import (
	"fmt"
	"strings"
)

const headerSuffix = "_chunk_0"

// ChunkID derives the index record id for chunk i of a document. The
// derivation is deterministic, so re-saving a document addresses the same
// records and ids never collide across documents.
func ChunkID(sourceID string, i int) string {
	return fmt.Sprintf("%s_chunk_%d", sourceID, i)
}

// HeaderChunkID returns the id of a document's header chunk, the one
// record that carries the full original content in its metadata.
func HeaderChunkID(sourceID string) string {
	return sourceID + headerSuffix
}

// IsHeaderChunkID reports whether an index record id names a header chunk.
func IsHeaderChunkID(id string) bool {
	return strings.HasSuffix(id, headerSuffix)
}
