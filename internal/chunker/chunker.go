// Package chunker splits document text into overlapping fixed-size segments
// for embedding. Overlap preserves semantic context that spans a boundary.
package chunker

import (
	"fmt"
	"unicode/utf8"
)

const (
	// DefaultSize is the default chunk width in characters.
	DefaultSize = 1000

	// DefaultOverlap is the default number of characters shared between
	// consecutive chunks.
	DefaultOverlap = 200
)

// Chunker produces ordered text segments with a sliding window.
// It is a pure value; the zero value is not usable, construct with New.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. Overlap must be strictly less than size or the
// window never advances.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be non-negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be less than chunk size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the configured chunk width.
func (c *Chunker) Size() int { return c.size }

// Split divides text into segments of at most Size bytes, each starting
// Size-Overlap bytes after the previous one. Window boundaries that land
// inside a multi-byte rune snap back to the rune's start, so every segment
// is valid UTF-8. Text that fits in a single chunk is returned as-is. The
// last segment may be shorter than Size. Deterministic: the same input
// always yields the same output.
func (c *Chunker) Split(text string) []string {
	if len(text) <= c.size {
		return []string{text}
	}

	step := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + c.size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[snapToRune(text, start):snapToRune(text, end)])
	}
	return chunks
}

// snapToRune moves a byte offset back to the start of the rune containing
// it. Snapping only ever moves backward, so consecutive windows still
// cover the whole text.
func snapToRune(text string, i int) int {
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// Count returns the number of chunks Split would produce without
// materializing them.
func (c *Chunker) Count(text string) int {
	if len(text) <= c.size {
		return 1
	}
	step := c.size - c.overlap
	n := 0
	for start := 0; start < len(text); start += step {
		n++
	}
	return n
}
