// Package kb implements the knowledge base: whole-document operations over
// the chunk-level vector index. Documents live exclusively in the index;
// identity is reconstructed from sourceId metadata and the header-chunk
// convention.
package kb

import (
	"fmt"

	"github.com/google/uuid"
)

// Category classifies a career artifact.
type Category string

const (
	CategoryResume      Category = "resume"
	CategoryCoverLetter Category = "cover_letter"
	CategoryProject     Category = "project"
	CategoryBio         Category = "bio"
	CategorySkill       Category = "skill"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryResume,
	CategoryCoverLetter,
	CategoryProject,
	CategoryBio,
	CategorySkill,
}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (valid: resume, cover_letter, project, bio, skill)", s)
}

// Snippet is a user-authored career document: a resume, cover letter,
// project note, bio, or skill description.
type Snippet struct {
	ID       string
	Category Category
	Title    string
	Content  string
}

// NewSnippet creates a snippet with a freshly assigned id. The id is
// stable for the document's lifetime.
func NewSnippet(category Category, title, content string) *Snippet {
	return &Snippet{
		ID:       uuid.New().String(),
		Category: category,
		Title:    title,
		Content:  content,
	}
}
