package converter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	readpdf "github.com/ledongthuc/pdf"

	"github.com/yuanying/ebook2pdf/internal/extract"
	"github.com/yuanying/ebook2pdf/internal/mobi"
	"github.com/yuanying/ebook2pdf/internal/paginate"
)

// writeMOBI assembles a real MOBI container and writes it to path.
func writeMOBI(t *testing.T, path string, cfg mobi.WriterConfig) {
	t.Helper()
	w, err := mobi.NewWriter(cfg)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// reopenPDF parses the written file back and returns its page count.
func reopenPDF(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output does not start with %%PDF-: %.8q", data)
	}
	r, err := readpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reopen output: %v", err)
	}
	return r.NumPage()
}

func TestPipeline_MOBIToPDF(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "book.mobi")
	writeMOBI(t, in, mobi.WriterConfig{
		Title: "Fixture Book",
		Text:  []byte("<html><body><p>Paragraph one.</p><p>Paragraph two.</p></body></html>"),
	})

	p := NewPipeline(ConvertOptions{InputPath: in}, nil)
	if err := p.Convert(); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := reopenPDF(t, filepath.Join(dir, "book.pdf")); got != 1 {
		t.Fatalf("NumPage = %d, want 1", got)
	}
}

func TestPipeline_CoverAddsFrontPage(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "covered.mobi")
	idx := 0
	writeMOBI(t, in, mobi.WriterConfig{
		Title:        "Covered",
		Text:         []byte("<html><body><p>Body text.</p></body></html>"),
		ImageRecords: [][]byte{testJPEG(t, 40, 60)},
		CoverIndex:   &idx,
	})

	p := NewPipeline(ConvertOptions{InputPath: in}, nil)
	if err := p.Convert(); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := reopenPDF(t, filepath.Join(dir, "covered.pdf")); got != 2 {
		t.Fatalf("NumPage = %d, want cover plus one body page", got)
	}
}

func TestPipeline_TextMode(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "book.mobi")
	writeMOBI(t, in, mobi.WriterConfig{
		Title: "Fixture Book",
		Text:  []byte("<html><body><p>First paragraph.</p><p>Second one.</p></body></html>"),
	})

	p := NewPipeline(ConvertOptions{InputPath: in, TextOnly: true}, nil)
	if err := p.Convert(); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "book.txt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if want := "First paragraph.\nSecond one."; string(data) != want {
		t.Fatalf("text output = %q, want %q", data, want)
	}
}

func TestPipeline_TextModeLimit(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "book.mobi")
	writeMOBI(t, in, mobi.WriterConfig{
		Title: "Fixture Book",
		Text:  []byte("<html><body><p>First paragraph.</p></body></html>"),
	})

	p := NewPipeline(ConvertOptions{InputPath: in, TextOnly: true, Limit: 5}, nil)
	if err := p.Convert(); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "book.txt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if want := "First" + extract.TruncationMarker; string(data) != want {
		t.Fatalf("text output = %q, want %q", data, want)
	}
}

func TestPipeline_OutputPath(t *testing.T) {
	cases := []struct {
		name string
		opts ConvertOptions
		want string
	}{
		{"derived pdf", ConvertOptions{InputPath: "/books/alice.azw3"}, "/books/alice.pdf"},
		{"derived txt", ConvertOptions{InputPath: "/books/alice.azw3", TextOnly: true}, "/books/alice.txt"},
		{"explicit", ConvertOptions{InputPath: "/books/alice.azw3", OutputPath: "out/custom.pdf"}, "out/custom.pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewPipeline(tc.opts, nil).OutputPath(); got != tc.want {
				t.Fatalf("OutputPath() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPipeline_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "book.xyz")
	if err := os.WriteFile(in, []byte("whatever"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := NewPipeline(ConvertOptions{InputPath: in}, nil).Convert()
	if !errors.Is(err, extract.ErrUnsupportedFormat) {
		t.Fatalf("Convert error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestPipeline_MissingInput(t *testing.T) {
	in := filepath.Join(t.TempDir(), "absent.mobi")
	err := NewPipeline(ConvertOptions{InputPath: in}, nil).Convert()
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Convert error = %v, want ErrNotExist", err)
	}
}

func TestPipeline_BadCustomFont(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "book.mobi")
	writeMOBI(t, in, mobi.WriterConfig{
		Title: "Fixture Book",
		Text:  []byte("<html><body><p>Text.</p></body></html>"),
	})
	font := filepath.Join(dir, "broken.ttf")
	if err := os.WriteFile(font, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := NewPipeline(ConvertOptions{InputPath: in, RegularFont: font}, nil).Convert()
	if !errors.Is(err, paginate.ErrSurfaceInit) {
		t.Fatalf("Convert error = %v, want ErrSurfaceInit", err)
	}
}
