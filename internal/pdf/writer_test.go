package pdf

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	readpdf "github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/yuanying/ebook2pdf/internal/paginate"
)

func testPage(t *testing.T, number int) *paginate.Page {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 160))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return &paginate.Page{Image: img, Number: number}
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	r, err := readpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading assembled pdf: %v", err)
	}
	return r.NumPage()
}

func TestWriter_Build(t *testing.T) {
	w := NewWriter(zap.NewNop())
	doc := &paginate.Document{
		Title: "Test Book",
		Pages: []*paginate.Page{testPage(t, 1), testPage(t, 2)},
	}

	var buf bytes.Buffer
	if err := w.Build(doc, &buf); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output does not start with pdf magic: %.8q", buf.Bytes())
	}
	if got := pageCount(t, buf.Bytes()); got != 2 {
		t.Fatalf("page count = %d, want 2", got)
	}
}

func TestWriter_BuildWithCover(t *testing.T) {
	w := NewWriter(nil)
	cover := image.NewRGBA(image.Rect(0, 0, 400, 600))
	draw.Draw(cover, cover.Bounds(), &image.Uniform{C: color.RGBA{R: 0x20, G: 0x40, B: 0x80, A: 0xff}}, image.Point{}, draw.Src)
	w.Cover = cover

	doc := &paginate.Document{Title: "Covered", Pages: []*paginate.Page{testPage(t, 1)}}
	var buf bytes.Buffer
	if err := w.Build(doc, &buf); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := pageCount(t, buf.Bytes()); got != 2 {
		t.Fatalf("page count = %d, want cover plus one text page", got)
	}
}

func TestWriter_EmptyDocument(t *testing.T) {
	w := NewWriter(zap.NewNop())

	var buf bytes.Buffer
	if err := w.Build(&paginate.Document{}, &buf); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("err = %v, want ErrEmptyDocument", err)
	}
	if err := w.Build(nil, &buf); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("nil doc err = %v, want ErrEmptyDocument", err)
	}
}
