package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/yuanying/ebook2pdf/internal/epub"
)

// extractEPUB walks the spine in reading order and joins the text of each
// chapter with a blank line. Chapters that cannot be read or parsed are
// logged and skipped; only container-level failures become errors.
func (e *Extractor) extractEPUB(data []byte) (string, error) {
	r, err := epub.NewReader(data)
	if err != nil {
		return "", err
	}
	opf, err := r.Package()
	if err != nil {
		return "", err
	}

	var chapters []string
	for _, spineItem := range opf.Spine {
		item, ok := opf.Manifest[spineItem.IDRef]
		if !ok {
			e.logger.Warn("spine item missing from manifest",
				zap.String("idref", spineItem.IDRef))
			continue
		}
		if !isXHTML(item.MediaType) {
			continue
		}
		fileData, err := r.ReadFile(item.Href)
		if err != nil {
			e.logger.Warn("skipping unreadable chapter",
				zap.String("path", item.Href), zap.Error(err))
			continue
		}
		content, err := epub.LoadContent(item.ID, item.Href, fileData)
		if err != nil {
			e.logger.Warn("skipping unparsable chapter",
				zap.String("path", item.Href), zap.Error(err))
			continue
		}
		if text := content.Text(); text != "" {
			chapters = append(chapters, text)
		}
	}
	return strings.Join(chapters, "\n\n"), nil
}

// isXHTML reports whether a manifest media type is a content document.
func isXHTML(mediaType string) bool {
	return strings.Contains(mediaType, "html")
}
