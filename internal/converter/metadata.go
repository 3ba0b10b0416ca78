package converter

import (
	"image"

	"go.uber.org/zap"

	"github.com/yuanying/ebook2pdf/internal/epub"
	"github.com/yuanying/ebook2pdf/internal/extract"
	"github.com/yuanying/ebook2pdf/internal/mobi"
)

// BookInfo carries metadata pulled from the source book: a title and
// author for the output document, and the decoded cover image when one
// was found.
type BookInfo struct {
	Title  string
	Author string
	Cover  image.Image
}

// bookInfo reads metadata from formats that carry it. It is best
// effort: failures are logged at Debug and produce an empty BookInfo,
// metadata never blocks a conversion.
func (p *Pipeline) bookInfo(format extract.Format, data []byte) BookInfo {
	switch format {
	case extract.FormatMOBI, extract.FormatAZW3:
		return p.mobiBookInfo(data)
	case extract.FormatEPUB:
		return p.epubBookInfo(data)
	default:
		return BookInfo{}
	}
}

func (p *Pipeline) mobiBookInfo(data []byte) BookInfo {
	r, err := mobi.NewReader(data)
	if err != nil {
		p.logger.Debug("mobi metadata unavailable", zap.Error(err))
		return BookInfo{}
	}

	info := BookInfo{Title: r.Title(), Author: r.Author()}
	if raw, ok := r.Cover(); ok {
		info.Cover = p.decodeCoverLogged(raw)
	}
	return info
}

func (p *Pipeline) epubBookInfo(data []byte) BookInfo {
	r, err := epub.NewReader(data)
	if err != nil {
		p.logger.Debug("epub metadata unavailable", zap.Error(err))
		return BookInfo{}
	}
	opf, err := r.Package()
	if err != nil {
		p.logger.Debug("opf unavailable", zap.Error(err))
		return BookInfo{}
	}

	info := BookInfo{Title: opf.Metadata.Title, Author: opf.Metadata.Author()}
	if raw, ok := r.Cover(opf); ok {
		info.Cover = p.decodeCoverLogged(raw)
	}
	return info
}

func (p *Pipeline) decodeCoverLogged(raw []byte) image.Image {
	img, err := decodeCover(raw)
	if err != nil {
		p.logger.Debug("cover unusable", zap.Error(err))
		return nil
	}
	return img
}
