package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/lu4p/cat/rtftxt"
)

// wordDocumentPath is where OOXML packages keep the main document body.
const wordDocumentPath = "word/document.xml"

var (
	zipMagic = []byte("PK")
	rtfMagic = []byte(`{\rtf`)

	// wtRun matches one <w:t> text run, with or without attributes.
	wtRun = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
)

// extractRichText handles the rich-text leg. The format tag covers both
// OOXML and RTF payloads, so the payload itself decides: zip archives are
// mined for <w:t> runs, RTF streams go through the rtf parser.
func extractRichText(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return extractDOCX(data)
	case bytes.HasPrefix(data, rtfMagic):
		return extractRTF(data)
	default:
		return "", fmt.Errorf("rich text: payload is neither OOXML nor RTF")
	}
}

// extractDOCX reads word/document.xml and collects the <w:t> runs of each
// paragraph. Runs concatenate directly; paragraphs become lines. Matching
// runs textually instead of parsing the document schema keeps real-world
// files working regardless of the attributes producers attach to <w:p>.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != wordDocumentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("docx: %s not found", wordDocumentPath)
	}

	var lines []string
	for _, para := range strings.Split(string(docXML), "</w:p>") {
		runs := wtRun.FindAllStringSubmatch(para, -1)
		if len(runs) == 0 {
			continue
		}
		var line strings.Builder
		for _, run := range runs {
			line.WriteString(html.UnescapeString(run[1]))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n"), nil
}

func extractRTF(data []byte) (string, error) {
	buf, err := rtftxt.Text(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse rtf: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
