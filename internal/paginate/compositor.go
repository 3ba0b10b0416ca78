// Package paginate lays extracted book text onto fixed-size raster
// pages. Composition is a pull iterator rather than a single blocking
// call: the caller asks for one page at a time and the compositor
// suspends after every flush, so a host loop stays responsive during
// multi-second conversions. Abandoning the iterator abandons the
// partial document; flushed pages are immutable.
package paginate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"runtime"
	"strings"
)

// Page geometry in PDF points. The raster canvas is scaled up from
// these by Options.Scale so text stays crisp when the page is embedded
// as an image.
const (
	PageWidth   = 595.28 // A4 portrait
	PageHeight  = 841.89
	Margin      = 40.0
	LineHeight  = 18.0
	BodySize    = 11.0
	TitleSize   = 18.0
	TitleGap    = 10.0
	RasterScale = 2.0

	paragraphIndent = "    "
	progressEvery   = 20
)

// Options sets the page geometry. Zero fields fall back to the package
// defaults, so the zero value reproduces the standard layout.
type Options struct {
	PageWidth     float64
	PageHeight    float64
	Margin        float64
	LineHeight    float64
	BodySize      float64
	TitleSize     float64
	TitleGap      float64
	Scale         float64
	ProgressEvery int
}

// ApplyDefaults fills zero fields with the package geometry constants.
func (o *Options) ApplyDefaults() {
	if o.PageWidth <= 0 {
		o.PageWidth = PageWidth
	}
	if o.PageHeight <= 0 {
		o.PageHeight = PageHeight
	}
	if o.Margin <= 0 {
		o.Margin = Margin
	}
	if o.LineHeight <= 0 {
		o.LineHeight = LineHeight
	}
	if o.BodySize <= 0 {
		o.BodySize = BodySize
	}
	if o.TitleSize <= 0 {
		o.TitleSize = TitleSize
	}
	if o.TitleGap <= 0 {
		o.TitleGap = TitleGap
	}
	if o.Scale <= 0 {
		o.Scale = RasterScale
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = progressEvery
	}
}

// Sizes lists the font sizes a Surface must support for these options.
func (o Options) Sizes() []float64 {
	if o.TitleSize == o.BodySize {
		return []float64{o.BodySize}
	}
	return []float64{o.BodySize, o.TitleSize}
}

// Observer receives human-readable progress lines at page flushes and
// at the paragraph cadence.
type Observer func(status string)

// Page is one rendered output page. Number is 1-based.
type Page struct {
	Image  *image.RGBA
	Number int
}

// Document is the ordered page sequence produced by one composition
// run. Pages are appended in order and never mutated afterwards.
type Document struct {
	Title string
	Pages []*Page
}

// PageCount returns the number of flushed pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Compositor lays one text body onto pages. NextPage resumes exactly
// where the previous flush suspended composition, with no lost or
// repeated text. Not safe for concurrent use; each conversion builds
// its own.
type Compositor struct {
	title   string
	paras   []string
	surface Surface
	opts    Options
	observe Observer

	titleDone bool
	paraIdx   int
	rest      []rune
	processed int
	y         float64
	canvas    *image.RGBA
	pageNum   int
	done      bool
}

// New prepares a composition run. The text is split into paragraphs on
// line breaks. A nil observer disables progress reporting.
func New(title, text string, surface Surface, opts Options, observer Observer) *Compositor {
	opts.ApplyDefaults()
	if observer == nil {
		observer = func(string) {}
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &Compositor{
		title:   title,
		paras:   strings.Split(text, "\n"),
		surface: surface,
		opts:    opts,
		observe: observer,
	}
}

// Compose drains the iterator into a Document.
func (c *Compositor) Compose() *Document {
	doc := &Document{Title: c.title}
	for {
		page, ok := c.NextPage()
		if !ok {
			break
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

// Compose runs a whole composition in one call.
func Compose(title, text string, surface Surface, opts Options, observer Observer) *Document {
	return New(title, text, surface, opts, observer).Compose()
}

// NextPage composes until a page flushes and returns it. The final,
// possibly partial, page is returned on the last call; after that ok
// is false.
func (c *Compositor) NextPage() (page *Page, ok bool) {
	if c.done {
		return nil, false
	}
	if !c.titleDone {
		c.titleDone = true
		if c.title != "" {
			baseline := c.opts.Margin + c.y + c.opts.TitleSize
			c.surface.Draw(c.ensureCanvas(), c.title, c.opts.Margin, baseline, c.opts.TitleSize, true)
			c.y += c.opts.TitleSize + c.opts.TitleGap
		}
	}
	for c.paraIdx < len(c.paras) || c.rest != nil {
		if c.rest == nil {
			para := c.paras[c.paraIdx]
			if para == "" {
				// A blank line advances the cursor without drawing.
				c.y += c.opts.LineHeight
				c.finishParagraph()
				if c.y > c.printableHeight() {
					return c.flush(), true
				}
				continue
			}
			c.rest = []rune(paragraphIndent + para)
		}
		for len(c.rest) > 0 {
			if c.y > 0 && c.y+c.opts.LineHeight > c.printableHeight() {
				return c.flush(), true
			}
			fit := FitLine(c.surface, c.rest, c.opts.BodySize, false, c.printableWidth())
			line := string(c.rest[:fit.Count])
			baseline := c.opts.Margin + c.y + c.opts.BodySize
			c.surface.Draw(c.ensureCanvas(), line, c.opts.Margin, baseline, c.opts.BodySize, false)
			c.rest = c.rest[fit.Count:]
			c.y += c.opts.LineHeight
		}
		c.rest = nil
		c.finishParagraph()
		c.y += c.opts.LineHeight / 2
		if c.y > c.printableHeight() {
			return c.flush(), true
		}
	}
	c.done = true
	if c.canvas != nil || c.pageNum == 0 {
		return c.flush(), true
	}
	return nil, false
}

// finishParagraph counts a consumed paragraph and, at the configured
// cadence, reports progress and yields to the scheduler so concurrent
// work in the host is not starved during long compositions.
func (c *Compositor) finishParagraph() {
	c.paraIdx++
	c.processed++
	if c.processed%c.opts.ProgressEvery == 0 {
		c.observe(fmt.Sprintf("composed %d/%d paragraphs", c.processed, len(c.paras)))
		runtime.Gosched()
	}
}

// flush hands off the current canvas as a finished page and resets the
// cursor. A page with no drawn text is emitted blank.
func (c *Compositor) flush() *Page {
	if c.canvas == nil {
		c.canvas = c.newCanvas()
	}
	c.pageNum++
	page := &Page{Image: c.canvas, Number: c.pageNum}
	c.canvas = nil
	c.y = 0
	c.observe(fmt.Sprintf("rendered page %d", c.pageNum))
	return page
}

func (c *Compositor) ensureCanvas() *image.RGBA {
	if c.canvas == nil {
		c.canvas = c.newCanvas()
	}
	return c.canvas
}

func (c *Compositor) newCanvas() *image.RGBA {
	w := int(math.Round(c.opts.PageWidth * c.opts.Scale))
	h := int(math.Round(c.opts.PageHeight * c.opts.Scale))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

func (c *Compositor) printableWidth() float64 {
	return c.opts.PageWidth - 2*c.opts.Margin
}

func (c *Compositor) printableHeight() float64 {
	return c.opts.PageHeight - 2*c.opts.Margin
}
