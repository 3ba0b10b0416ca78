package epub

import (
	"strings"
	"testing"
)

func TestLoadContent_SimpleXHTML(t *testing.T) {
	xhtmlContent := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter 1</title></head>
<body>
	<h1>Chapter 1</h1>
	<p>This is a sample paragraph.</p>
</body>
</html>`

	content, err := LoadContent("chapter1", "text/chapter1.xhtml", []byte(xhtmlContent))
	if err != nil {
		t.Fatalf("LoadContent failed: %v", err)
	}

	if content.ID != "chapter1" {
		t.Errorf("ID = %q, want %q", content.ID, "chapter1")
	}
	if content.Path != "text/chapter1.xhtml" {
		t.Errorf("Path = %q, want %q", content.Path, "text/chapter1.xhtml")
	}
	if content.Document == nil {
		t.Fatal("Document is nil")
	}

	title := content.Document.Find("h1").Text()
	if title != "Chapter 1" {
		t.Errorf("h1 text = %q, want %q", title, "Chapter 1")
	}
}

func TestContent_Text_BlockElements(t *testing.T) {
	xhtml := `<html><body>
<h1>Title</h1>
<p>First paragraph.</p>
<p>Second paragraph.</p>
</body></html>`

	content, err := LoadContent("ch", "ch.xhtml", []byte(xhtml))
	if err != nil {
		t.Fatalf("LoadContent failed: %v", err)
	}

	got := content.Text()
	lines := strings.Split(got, "\n")
	var nonEmpty []string
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}

	want := []string{"Title", "First paragraph.", "Second paragraph."}
	if len(nonEmpty) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(nonEmpty), nonEmpty, len(want))
	}
	for i := range want {
		if nonEmpty[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, nonEmpty[i], want[i])
		}
	}
}

func TestContent_Text_InlineElementsStayOnOneLine(t *testing.T) {
	xhtml := `<html><body><p>Text with <em>emphasis</em> and <strong>bold</strong> words.</p></body></html>`

	content, err := LoadContent("ch", "ch.xhtml", []byte(xhtml))
	if err != nil {
		t.Fatalf("LoadContent failed: %v", err)
	}

	got := content.Text()
	if got != "Text with emphasis and bold words." {
		t.Errorf("Text() = %q, want inline content joined", got)
	}
}

func TestContent_Text_SkipsScriptAndStyle(t *testing.T) {
	xhtml := `<html><body>
<style>p { color: red; }</style>
<script>var x = 1;</script>
<p>Visible text.</p>
</body></html>`

	content, err := LoadContent("ch", "ch.xhtml", []byte(xhtml))
	if err != nil {
		t.Fatalf("LoadContent failed: %v", err)
	}

	got := content.Text()
	if strings.Contains(got, "color") || strings.Contains(got, "var x") {
		t.Errorf("Text() = %q, should not contain script or style content", got)
	}
	if !strings.Contains(got, "Visible text.") {
		t.Errorf("Text() = %q, want visible text preserved", got)
	}
}

func TestContent_Text_BreakTags(t *testing.T) {
	xhtml := `<html><body><p>line one<br/>line two</p></body></html>`

	content, err := LoadContent("ch", "ch.xhtml", []byte(xhtml))
	if err != nil {
		t.Fatalf("LoadContent failed: %v", err)
	}

	got := content.Text()
	if got != "line one\nline two" {
		t.Errorf("Text() = %q, want br to split lines", got)
	}
}

func TestContent_Text_CollapsesSourceIndentation(t *testing.T) {
	// Newlines and indentation inside a paragraph must not survive as
	// line breaks in the extracted text.
	xhtml := `<html><body><p>spread
		across
		source lines</p></body></html>`

	content, err := LoadContent("ch", "ch.xhtml", []byte(xhtml))
	if err != nil {
		t.Fatalf("LoadContent failed: %v", err)
	}

	got := content.Text()
	if got != "spread across source lines" {
		t.Errorf("Text() = %q, want internal whitespace collapsed", got)
	}
}

func TestContent_Text_ListItems(t *testing.T) {
	xhtml := `<html><body><ul><li>first</li><li>second</li></ul></body></html>`

	content, err := LoadContent("ch", "ch.xhtml", []byte(xhtml))
	if err != nil {
		t.Fatalf("LoadContent failed: %v", err)
	}

	got := content.Text()
	if got != "first\nsecond" {
		t.Errorf("Text() = %q, want one line per list item", got)
	}
}

func TestContent_Text_Empty(t *testing.T) {
	content, err := LoadContent("ch", "ch.xhtml", []byte(`<html><body></body></html>`))
	if err != nil {
		t.Fatalf("LoadContent failed: %v", err)
	}

	if got := content.Text(); got != "" {
		t.Errorf("Text() = %q, want empty string", got)
	}
}

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a  b", "a b"},
		{"a\n\tb", "a b"},
		{" leading", " leading"},
		{"word ", "word "},
		{"\n\t ", ""},
		{"a\u00a0b", "a b"},
	}

	for _, tt := range tests {
		if got := collapseSpaces(tt.in); got != tt.want {
			t.Errorf("collapseSpaces(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
