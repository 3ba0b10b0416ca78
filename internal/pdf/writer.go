// Package pdf assembles composed raster pages into a single paginated
// PDF file.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/yuanying/ebook2pdf/internal/paginate"
)

const (
	// DefaultQuality is the JPEG quality for embedded page rasters.
	DefaultQuality = 85

	coverQuality = 90
)

// ErrEmptyDocument is returned when Build is asked to write a document
// with no pages.
var ErrEmptyDocument = errors.New("pdf: document has no pages")

// Writer assembles a composed document into a PDF, one full-bleed JPEG
// per page. Cover, when set, is composited centered onto a dedicated
// first page before the text pages.
type Writer struct {
	Quality int         // JPEG quality for page rasters; DefaultQuality when 0
	Cover   image.Image // optional cover page

	logger *zap.Logger
}

// NewWriter returns a Writer with default quality and no cover.
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// Build writes doc to out. The output pages are A4 in points, matching
// the compositor's canvas geometry, so each raster lands full-bleed.
func (w *Writer) Build(doc *paginate.Document, out io.Writer) error {
	if doc == nil || len(doc.Pages) == 0 {
		return ErrEmptyDocument
	}
	quality := w.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	f := gofpdf.New("P", "pt", "A4", "")
	f.SetTitle(doc.Title, true)

	if w.Cover != nil {
		if err := addCoverPage(f, w.Cover); err != nil {
			return fmt.Errorf("cover page: %w", err)
		}
	}
	for _, page := range doc.Pages {
		if err := addRasterPage(f, page, quality); err != nil {
			return err
		}
	}
	if err := f.Output(out); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	w.logger.Debug("pdf assembled",
		zap.String("title", doc.Title),
		zap.Int("pages", len(doc.Pages)),
		zap.Bool("cover", w.Cover != nil),
	)
	return nil
}

func addRasterPage(f *gofpdf.Fpdf, page *paginate.Page, quality int) error {
	data, err := encodeJPEG(page.Image, quality)
	if err != nil {
		return fmt.Errorf("encode page %d: %w", page.Number, err)
	}

	name := fmt.Sprintf("page-%d", page.Number)
	opts := gofpdf.ImageOptions{ImageType: "JPEG"}
	f.AddPage()
	f.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	f.ImageOptions(name, 0, 0, paginate.PageWidth, paginate.PageHeight, false, opts, 0, "")
	return nil
}

// addCoverPage downscales the cover to fit the printable area at the
// raster scale and centers it. Small covers are placed unscaled.
func addCoverPage(f *gofpdf.Fpdf, cover image.Image) error {
	maxW := (paginate.PageWidth - 2*paginate.Margin) * paginate.RasterScale
	maxH := (paginate.PageHeight - 2*paginate.Margin) * paginate.RasterScale
	fitted := imaging.Fit(cover, int(maxW), int(maxH), imaging.Lanczos)

	data, err := encodeJPEG(fitted, coverQuality)
	if err != nil {
		return err
	}

	opts := gofpdf.ImageOptions{ImageType: "JPEG"}
	f.AddPage()
	f.RegisterImageOptionsReader("cover", opts, bytes.NewReader(data))
	pw := float64(fitted.Bounds().Dx()) / paginate.RasterScale
	ph := float64(fitted.Bounds().Dy()) / paginate.RasterScale
	x := (paginate.PageWidth - pw) / 2
	y := (paginate.PageHeight - ph) / 2
	f.ImageOptions("cover", x, y, pw, ph, false, opts, 0, "")
	return nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
