package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNew_RejectsBadWindows(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.size, tc.overlap); err == nil {
				t.Errorf("New(%d, %d): expected error, got nil", tc.size, tc.overlap)
			}
		})
	}
}

func TestSplit_SingleChunkPassthrough(t *testing.T) {
	c, err := New(1000, 200)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, text := range []string{"", "short", strings.Repeat("a", 1000)} {
		chunks := c.Split(text)
		if len(chunks) != 1 {
			t.Errorf("Split(%d chars): expected 1 chunk, got %d", len(text), len(chunks))
			continue
		}
		if chunks[0] != text {
			t.Errorf("Split(%d chars): chunk differs from input", len(text))
		}
	}
}

func TestSplit_WindowOffsets(t *testing.T) {
	// 2400 chars with size 1000 / overlap 200 must produce 3 chunks
	// starting at offsets 0, 800 and 1600.
	text := strings.Repeat("x", 2400)
	c, err := New(1000, 200)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	chunks := c.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1000 || len(chunks[1]) != 1000 {
		t.Errorf("expected full-width leading chunks, got %d and %d", len(chunks[0]), len(chunks[1]))
	}
	if len(chunks[2]) != 800 {
		t.Errorf("expected 800-char final chunk, got %d", len(chunks[2]))
	}
}

func TestSplit_CoverageAndOverlap(t *testing.T) {
	// Every character of the input must appear in some chunk, and
	// consecutive chunks must share exactly the overlap.
	var sb strings.Builder
	for i := 0; sb.Len() < 2537; i++ {
		sb.WriteByte(byte('a' + i%26))
	}
	text := sb.String()

	c, err := New(500, 100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	chunks := c.Split(text)

	step := 500 - 100
	var reassembled strings.Builder
	for i, chunk := range chunks {
		if i == 0 {
			reassembled.WriteString(chunk)
			continue
		}
		if i < len(chunks)-1 {
			prevTail := chunks[i-1][len(chunks[i-1])-100:]
			if chunk[:100] != prevTail {
				t.Errorf("chunk %d does not overlap its predecessor by 100 chars", i)
			}
		}
		start := i * step
		end := start + len(chunk)
		if end > reassembled.Len() {
			reassembled.WriteString(chunk[reassembled.Len()-start:])
		}
	}
	if reassembled.String() != text {
		t.Error("chunks do not cover the original text")
	}
}

func TestSplit_KeepsRunesIntact(t *testing.T) {
	// Distinct 3-byte runes put every raw window boundary mid-rune; each
	// chunk must still be valid UTF-8 and the chunks must cover the whole
	// input without gaps.
	var sb strings.Builder
	for i := 0; i < 1200; i++ {
		sb.WriteRune(rune(0x4E00 + i))
	}
	text := sb.String() // 3600 bytes

	c, err := New(1000, 200)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	covered := 0
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		start := strings.Index(text, chunk) // unambiguous: all runes distinct
		if start < 0 {
			t.Fatalf("chunk %d is not a slice of the input", i)
		}
		if start > covered {
			t.Fatalf("bytes %d..%d uncovered before chunk %d", covered, start, i)
		}
		if end := start + len(chunk); end > covered {
			covered = end
		}
	}
	if covered != len(text) {
		t.Errorf("chunks cover %d of %d bytes", covered, len(text))
	}
}

func TestCount_MatchesSplit(t *testing.T) {
	c, err := New(300, 50)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, n := range []int{0, 1, 299, 300, 301, 1000, 4096} {
		text := strings.Repeat("z", n)
		if got, want := c.Count(text), len(c.Split(text)); got != want {
			t.Errorf("Count(%d chars) = %d, Split produced %d", n, got, want)
		}
	}
}
