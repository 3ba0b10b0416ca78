package converter

import (
	"errors"
	"os"

	"github.com/yuanying/ebook2pdf/internal/extract"
	"github.com/yuanying/ebook2pdf/internal/mobi"
	"github.com/yuanying/ebook2pdf/internal/paginate"
	"github.com/yuanying/ebook2pdf/internal/pdf"
)

// Explain turns an error from Convert into a short user-facing message
// naming the cause and a hint. Errors outside the known categories are
// reported as their own text.
func Explain(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, mobi.ErrUnsupportedCompression):
		return "the book uses HUFF/CDIC compression, which cannot be decoded; re-export it as EPUB or uncompressed MOBI and try again"
	case errors.Is(err, mobi.ErrMalformedContainer):
		return "the book file is damaged or is not a real MOBI/AZW3; check the file and try again"
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "this file type is not supported; supported extensions are .mobi, .azw3, .epub, .fb2, .docx, .rtf, .txt and .pdf"
	case errors.Is(err, paginate.ErrSurfaceInit):
		return "the text renderer could not start, usually a broken font file; remove custom font settings or fix the font paths"
	case errors.Is(err, pdf.ErrEmptyDocument):
		return "nothing to write: the book produced no pages"
	case errors.Is(err, os.ErrNotExist):
		return "the input file does not exist; check the path"
	default:
		return err.Error()
	}
}
