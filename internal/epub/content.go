package epub

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Content represents a parsed XHTML content file
type Content struct {
	ID       string            // Manifest ID
	Path     string            // File path within the EPUB
	Document *goquery.Document // Parsed HTML document
}

// LoadContent loads and parses an XHTML content file
// id: manifest item ID
// path: file path within EPUB
// content: XHTML file content
func LoadContent(id, path string, content []byte) (*Content, error) {
	// Parse XHTML using goquery
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XHTML: %w", err)
	}

	return &Content{
		ID:       id,
		Path:     path,
		Document: doc,
	}, nil
}

// blockTags is the set of elements that end a line during text extraction.
var blockTags = map[string]bool{
	"p":          true,
	"div":        true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"li":         true,
	"tr":         true,
	"blockquote": true,
	"hr":         true,
}

// Text extracts the visible plain text of the document body. Block-level
// elements end lines; script and style subtrees are skipped; whitespace
// runs inside text nodes collapse to a single space.
func (c *Content) Text() string {
	var sb strings.Builder
	for _, node := range c.Document.Find("body").Nodes {
		writeNodeText(node, &sb)
	}
	return strings.TrimSpace(sb.String())
}

func writeNodeText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br":
			sb.WriteByte('\n')
			return
		}
	case html.TextNode:
		sb.WriteString(collapseSpaces(n.Data))
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		writeNodeText(child, sb)
	}

	if n.Type == html.ElementNode && blockTags[n.Data] {
		sb.WriteByte('\n')
	}
}

// collapseSpaces replaces each run of whitespace with a single space. A
// leading or trailing run stays as one space so inline elements keep their
// spacing. All-whitespace input collapses to the empty string.
func collapseSpaces(s string) string {
	var sb strings.Builder
	inRun := false
	leadingRun := false
	first := true
	for _, r := range s {
		space := r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\u00a0'
		if first {
			leadingRun = space
			first = false
		}
		if space {
			inRun = true
			continue
		}
		if inRun && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
		inRun = false
	}
	if sb.Len() == 0 {
		return ""
	}
	out := sb.String()
	if leadingRun {
		out = " " + out
	}
	if inRun {
		out += " "
	}
	return out
}
