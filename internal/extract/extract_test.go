package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/yuanying/ebook2pdf/internal/mobi"
)

// buildMOBI assembles a real PDB container around the given book markup.
func buildMOBI(t *testing.T, title, markup string, compression uint16) []byte {
	t.Helper()
	w, err := mobi.NewWriter(mobi.WriterConfig{
		Title:       title,
		Text:        []byte(markup),
		Compression: compression,
	})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	return buf.Bytes()
}

// buildEPUB assembles a two-chapter EPUB archive in memory.
func buildEPUB(t *testing.T) []byte {
	t.Helper()
	const opf = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Fixture Book</dc:title>
  </metadata>
  <manifest>
    <item id="c1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
    <item id="css" href="style.css" media-type="text/css"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
  </spine>
</package>`
	entries := []struct {
		name, data string
		stored     bool
	}{
		{"mimetype", "application/epub+zip", true},
		{"META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`, false},
		{"OEBPS/content.opf", opf, false},
		{"OEBPS/chapter1.xhtml", `<html><body><p>Chapter one text.</p></body></html>`, false},
		{"OEBPS/chapter2.xhtml", `<html><body><p>Chapter two text.</p></body></html>`, false},
		{"OEBPS/style.css", "p { margin: 0 }", false},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		method := zip.Deflate
		if e.stored {
			method = zip.Store
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: method})
		if err != nil {
			t.Fatalf("CreateHeader(%s): %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.data)); err != nil {
			t.Fatalf("Write(%s): %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestExtract_MOBI(t *testing.T) {
	markup := "<html><body><p>First paragraph.</p><p>Second one.</p></body></html>"
	data := buildMOBI(t, "Test Book", markup, mobi.CompressionNone)

	e := New(nil)
	res, err := e.Extract(Document{Format: FormatMOBI, Name: "test.mobi", Data: data}, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "First paragraph.\nSecond one."
	if res.Text != want {
		t.Fatalf("Text = %q, want %q", res.Text, want)
	}
	if res.Truncated {
		t.Fatal("Truncated = true, want false")
	}
}

func TestExtract_MOBIPalmDoc(t *testing.T) {
	markup := "<html><body><p>" + strings.Repeat("Compressed text. ", 100) + "</p></body></html>"
	data := buildMOBI(t, "Packed", markup, mobi.CompressionPalmDoc)

	e := New(nil)
	res, err := e.Extract(Document{Format: FormatAZW3, Name: "test.azw3", Data: data}, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.HasPrefix(res.Text, "Compressed text. ") {
		t.Fatalf("Text = %.60q, want repeated sentence", res.Text)
	}
}

func TestExtract_MOBIErrorPropagates(t *testing.T) {
	e := New(nil)
	_, err := e.Extract(Document{Format: FormatMOBI, Name: "bad.mobi", Data: []byte("not a pdb")}, 0)
	if !errors.Is(err, mobi.ErrMalformedContainer) {
		t.Fatalf("Extract error = %v, want ErrMalformedContainer", err)
	}
}

func TestExtract_EPUB(t *testing.T) {
	e := New(nil)
	res, err := e.Extract(Document{Format: FormatEPUB, Name: "test.epub", Data: buildEPUB(t)}, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "Chapter one text.\n\nChapter two text."
	if res.Text != want {
		t.Fatalf("Text = %q, want %q", res.Text, want)
	}
}

func TestExtract_EPUBFailureSwallowed(t *testing.T) {
	e := New(nil)
	res, err := e.Extract(Document{Format: FormatEPUB, Name: "bad.epub", Data: []byte("not a zip")}, 0)
	if err != nil {
		t.Fatalf("Extract: %v, want swallowed failure", err)
	}
	if res.Text != "" {
		t.Fatalf("Text = %q, want empty", res.Text)
	}
}

func TestExtract_TXT(t *testing.T) {
	e := New(nil)
	res, err := e.Extract(Document{Format: FormatTXT, Name: "a.txt", Data: []byte("plain text\nbody")}, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "plain text\nbody" {
		t.Fatalf("Text = %q", res.Text)
	}
}

func TestExtract_TXTLegacyEncoding(t *testing.T) {
	e := New(nil)
	res, err := e.Extract(Document{Format: FormatTXT, Name: "gbk.txt", Data: []byte{0xD6, 0xD0, 0xCE, 0xC4}}, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "中文" {
		t.Fatalf("Text = %q, want %q", res.Text, "中文")
	}
}

func TestExtract_Limit(t *testing.T) {
	e := New(nil)
	res, err := e.Extract(Document{Format: FormatTXT, Data: []byte("abcdefghij")}, 4)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if want := "abcd" + TruncationMarker; res.Text != want {
		t.Fatalf("Text = %q, want %q", res.Text, want)
	}
	if !res.Truncated || res.Limit != 4 {
		t.Fatalf("Truncated = %v, Limit = %d; want true, 4", res.Truncated, res.Limit)
	}
}

func TestExtract_LimitRuneBoundary(t *testing.T) {
	e := New(nil)
	res, err := e.Extract(Document{Format: FormatTXT, Data: []byte("héllo")}, 2)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	// Byte 2 is inside the two-byte é, so the cut backs off to byte 1.
	if want := "h" + TruncationMarker; res.Text != want {
		t.Fatalf("Text = %q, want %q", res.Text, want)
	}
}

func TestExtract_LimitNotExceeded(t *testing.T) {
	e := New(nil)
	res, err := e.Extract(Document{Format: FormatTXT, Data: []byte("short")}, 100)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "short" || res.Truncated {
		t.Fatalf("got %q truncated=%v, want untouched text", res.Text, res.Truncated)
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	e := New(nil)
	_, err := e.Extract(Document{Format: Format("chm"), Data: []byte("x")}, 0)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Extract error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	data := buildMOBI(t, "Same Book", "<p>identical output</p>", mobi.CompressionNone)
	e := New(nil)
	doc := Document{Format: FormatMOBI, Name: "same.mobi", Data: data}

	first, err := e.Extract(doc, 0)
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	second, err := e.Extract(doc, 0)
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}
	if first.Text != second.Text {
		t.Fatal("repeated extraction produced different text")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"book.mobi", FormatMOBI, true},
		{"book.azw3", FormatAZW3, true},
		{"book.azw", FormatAZW3, true},
		{"dir/book.EPUB", FormatEPUB, true},
		{"book.fb2", FormatFB2, true},
		{"book.docx", FormatDOCX, true},
		{"book.rtf", FormatDOCX, true},
		{"notes.txt", FormatTXT, true},
		{"paper.pdf", FormatPDF, true},
		{"image.jpg", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatFromPath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}
