// Package markdown extracts document titles from markdown career
// artifacts imported into the knowledge base.
package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

var md = goldmark.New(
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// Title returns the first top-level heading of a markdown document. The
// second return value is false when the document has no heading at all.
func Title(source []byte) (string, bool) {
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	// Depth 2 keeps documents whose top heading is an H2; Compact lifts
	// it to the top of the tree.
	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil || len(tree.Items) == 0 {
		return "", false
	}
	return string(tree.Items[0].Title), true
}
