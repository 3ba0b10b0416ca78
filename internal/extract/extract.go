// Package extract converts e-book documents of various formats to plain text.
//
// The two binary legacy formats (MOBI and AZW3) run through the in-house
// PDB/PalmDoc pipeline and their failures propagate to the caller. Every
// other format delegates to an external parser; a failure there is logged
// and collapses to an empty result, so callers must treat empty text as
// "extraction failed or the book has no text".
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Format identifies the container format of a source document.
type Format string

const (
	FormatMOBI Format = "mobi"
	FormatAZW3 Format = "azw3"
	FormatEPUB Format = "epub"
	FormatFB2  Format = "fb2"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
	FormatPDF  Format = "pdf"
)

// ErrUnsupportedFormat reports a format tag the extractor does not handle.
var ErrUnsupportedFormat = errors.New("unsupported format")

// TruncationMarker is appended to text cut off at a caller-supplied limit.
const TruncationMarker = "...[content truncated]"

// Document is a source e-book held fully in memory.
type Document struct {
	Format Format
	Name   string // display name, usually the source file name
	Data   []byte
}

// Result is the outcome of extracting one document.
type Result struct {
	Text      string
	Truncated bool
	Limit     int
}

// Extractor dispatches documents to per-format extraction paths.
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor. A nil logger disables logging.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract returns the plain text of doc. A limit > 0 caps the text at that
// many bytes, cutting on a rune boundary and appending TruncationMarker.
// Extraction is deterministic: the same document and limit always produce
// the same result.
func (e *Extractor) Extract(doc Document, limit int) (Result, error) {
	var (
		text string
		err  error
	)
	switch doc.Format {
	case FormatMOBI, FormatAZW3:
		text, err = extractMOBI(doc.Data)
		if err != nil {
			return Result{}, err
		}
	case FormatEPUB:
		text, err = e.extractEPUB(doc.Data)
	case FormatFB2:
		text, err = extractFB2(doc.Data)
	case FormatDOCX:
		text, err = extractRichText(doc.Data)
	case FormatPDF:
		text, err = extractPDF(doc.Data)
	case FormatTXT:
		text = DecodeText(doc.Data)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.Format)
	}
	if err != nil {
		e.logger.Warn("extraction failed, returning empty text",
			zap.String("name", doc.Name),
			zap.String("format", string(doc.Format)),
			zap.Error(err))
		return Result{Limit: limit}, nil
	}

	text, truncated := truncate(text, limit)
	return Result{Text: text, Truncated: truncated, Limit: limit}, nil
}

// FormatFromPath maps a file extension to its Format. The second return is
// false when the extension is not a supported e-book format.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mobi":
		return FormatMOBI, true
	case ".azw3", ".azw":
		return FormatAZW3, true
	case ".epub":
		return FormatEPUB, true
	case ".fb2":
		return FormatFB2, true
	case ".docx", ".rtf":
		return FormatDOCX, true
	case ".txt", ".text":
		return FormatTXT, true
	case ".pdf":
		return FormatPDF, true
	default:
		return "", false
	}
}

// truncate cuts s at the largest rune boundary not beyond limit bytes and
// appends TruncationMarker. A limit <= 0 means no limit.
func truncate(s string, limit int) (string, bool) {
	if limit <= 0 || len(s) <= limit {
		return s, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + TruncationMarker, true
}
