// Package converter orchestrates a whole conversion: read the source
// book, extract its text, compose raster pages and assemble the output
// PDF, or write the bare text in text mode.
package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yuanying/ebook2pdf/internal/extract"
	"github.com/yuanying/ebook2pdf/internal/paginate"
	"github.com/yuanying/ebook2pdf/internal/pdf"
)

// ConvertOptions holds the options for one conversion run.
type ConvertOptions struct {
	InputPath  string
	OutputPath string // derived from InputPath when empty
	Title      string // overrides the title detected in the book
	TextOnly   bool   // write extracted text instead of a PDF
	Limit      int    // extraction limit in bytes, 0 means unlimited
	Quality    int    // JPEG quality for page rasters

	// Page geometry overrides; zero fields use the standard layout.
	Page paginate.Options

	// Optional font files replacing the bundled Go fonts.
	RegularFont string
	BoldFont    string
}

// Pipeline runs conversions. Each Convert call owns its own source
// buffer, surface and document; pipelines may run independently.
type Pipeline struct {
	Options ConvertOptions

	logger *zap.Logger
}

// NewPipeline creates a conversion pipeline. A nil logger disables
// logging.
func NewPipeline(opts ConvertOptions, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{Options: opts, logger: logger}
}

// OutputPath returns the explicit output path, or one derived from the
// input name: the extension becomes .pdf, or .txt in text mode.
func (p *Pipeline) OutputPath() string {
	if p.Options.OutputPath != "" {
		return p.Options.OutputPath
	}
	ext := ".pdf"
	if p.Options.TextOnly {
		ext = ".txt"
	}
	return strings.TrimSuffix(p.Options.InputPath, filepath.Ext(p.Options.InputPath)) + ext
}

// Convert executes the conversion pipeline.
func (p *Pipeline) Convert() error {
	start := time.Now()

	data, err := os.ReadFile(p.Options.InputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	format, ok := extract.FormatFromPath(p.Options.InputPath)
	if !ok {
		return fmt.Errorf("%w: %q", extract.ErrUnsupportedFormat, filepath.Ext(p.Options.InputPath))
	}

	p.logger.Info("extracting text",
		zap.String("input", p.Options.InputPath),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
	)

	res, err := extract.New(p.logger).Extract(extract.Document{
		Format: format,
		Name:   filepath.Base(p.Options.InputPath),
		Data:   data,
	}, p.Options.Limit)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	if p.Options.TextOnly {
		return p.writeText(res, start)
	}

	info := p.bookInfo(format, data)
	title := p.Options.Title
	if title == "" {
		title = info.Title
	}
	if title == "" {
		title = inputStem(p.Options.InputPath)
	}

	return p.writePDF(title, res, info, start)
}

// writeText writes the extracted text and finishes the run.
func (p *Pipeline) writeText(res extract.Result, start time.Time) error {
	out := p.OutputPath()
	if err := os.WriteFile(out, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("write text output: %w", err)
	}
	p.logger.Info("text written",
		zap.String("output", out),
		zap.Int("bytes", len(res.Text)),
		zap.Bool("truncated", res.Truncated),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// writePDF composes pages from the extracted text and assembles them
// into the output PDF.
func (p *Pipeline) writePDF(title string, res extract.Result, info BookInfo, start time.Time) error {
	surface, err := p.newSurface()
	if err != nil {
		return err
	}
	defer surface.Close()

	doc := paginate.Compose(title, res.Text, surface, p.Options.Page, func(status string) {
		p.logger.Debug("compose progress", zap.String("status", status))
	})

	w := pdf.NewWriter(p.logger)
	w.Quality = p.Options.Quality
	w.Cover = info.Cover

	out := p.OutputPath()
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := w.Build(doc, f); err != nil {
		return fmt.Errorf("assemble pdf: %w", err)
	}

	p.logger.Info("conversion complete",
		zap.String("output", out),
		zap.String("title", title),
		zap.Int("pages", doc.PageCount()),
		zap.Bool("cover", info.Cover != nil),
		zap.Bool("truncated", res.Truncated),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// newSurface builds the measurement surface, loading configured font
// files when set.
func (p *Pipeline) newSurface() (*paginate.FontSurface, error) {
	var cfg paginate.FontConfig
	if path := p.Options.RegularFont; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read regular font: %v", paginate.ErrSurfaceInit, err)
		}
		cfg.Regular = data
	}
	if path := p.Options.BoldFont; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read bold font: %v", paginate.ErrSurfaceInit, err)
		}
		cfg.Bold = data
	}

	opts := p.Options.Page
	opts.ApplyDefaults()
	return paginate.NewFontSurface(cfg, opts.Sizes(), opts.Scale)
}

// inputStem returns the input file name without directory or extension.
func inputStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
