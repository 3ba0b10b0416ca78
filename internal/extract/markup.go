package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms are the elements that force a line break while stripping markup.
var blockAtoms = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
}

// skipAtoms are the elements whose subtree never contributes text.
var skipAtoms = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Title:  true,
}

// mobiPageBreak is the Mobipocket page-break element. It has no atom, so
// stripMarkup matches it by name.
const mobiPageBreak = "mbp:pagebreak"

// The tokenizer treats a self-closed <script/> or <style/> as an ordinary
// start tag, which would swallow the rest of the document. Expand such tags
// to an open/close pair before tokenizing.
var selfClosingSkipPattern = regexp.MustCompile(`(?is)<(script|style|title)\b([^>]*)/>`)

// stripMarkup reduces the HTML-like text of a MOBI book to plain text.
// Block-level elements and Mobipocket page breaks become line breaks,
// script, style and title subtrees are dropped, and whitespace runs inside
// text nodes collapse to single spaces. Legacy books often truncate the
// markup mid-tag; the tokenizer stops there and keeps what was collected.
func stripMarkup(s string) string {
	if selfClosingSkipPattern.MatchString(s) {
		s = selfClosingSkipPattern.ReplaceAllString(s, `<$1$2></$1>`)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(s))

	var buf strings.Builder
	skipDepth := 0
	atLineStart := true

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// Reading from a string, the only error is EOF.
			return strings.TrimSpace(buf.String())

		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			a := atom.Lookup(name)
			if skipAtoms[a] {
				skipDepth++
				continue
			}
			if skipDepth > 0 {
				continue
			}
			if blockAtoms[a] || string(name) == mobiPageBreak {
				breakLine(&buf, &atLineStart)
			}

		case html.SelfClosingTagToken:
			if skipDepth > 0 {
				continue
			}
			name, _ := tokenizer.TagName()
			if blockAtoms[atom.Lookup(name)] || string(name) == mobiPageBreak {
				breakLine(&buf, &atLineStart)
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skipAtoms[atom.Lookup(name)] && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if text := collapseWhitespace(string(tokenizer.Text())); text != "" {
				buf.WriteString(text)
				atLineStart = strings.HasSuffix(text, "\n")
			}
		}
	}
}

func breakLine(buf *strings.Builder, atLineStart *bool) {
	if buf.Len() > 0 && !*atLineStart {
		buf.WriteByte('\n')
		*atLineStart = true
	}
}

// collapseWhitespace replaces each whitespace run with a single space,
// keeping a leading or trailing run as one space so text split across
// inline elements rejoins with its spacing intact. All-whitespace input
// collapses to the empty string.
func collapseWhitespace(s string) string {
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
