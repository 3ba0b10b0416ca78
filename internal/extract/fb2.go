package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// fb2LineElements are the FictionBook elements that end a line of text.
var fb2LineElements = map[string]bool{
	"p":           true,
	"v":           true,
	"subtitle":    true,
	"text-author": true,
	"title":       true,
}

// extractFB2 pulls the readable text out of a FictionBook 2 document.
// Only character data inside <body> elements counts; the description
// block and base64 <binary> payloads sit outside every body and never
// contribute. FB2 files declare their encoding in the XML prolog, so the
// decoder resolves charsets by label instead of using the byte cascade.
func extractFB2(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var buf strings.Builder
	bodyDepth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse fb2: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "body":
				bodyDepth++
			case bodyDepth > 0 && t.Name.Local == "empty-line":
				buf.WriteByte('\n')
			}
		case xml.EndElement:
			switch {
			case t.Name.Local == "body":
				if bodyDepth > 0 {
					bodyDepth--
				}
			case bodyDepth > 0 && fb2LineElements[t.Name.Local]:
				buf.WriteByte('\n')
			}
		case xml.CharData:
			if bodyDepth > 0 {
				buf.WriteString(collapseWhitespace(string(t)))
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
