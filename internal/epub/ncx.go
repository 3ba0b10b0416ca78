package epub

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NCX represents the parsed navigation control structure from NCX or NAV document.
type NCX struct {
	UID       string
	Depth     int
	DocTitle  string
	NavPoints []NavPoint
}

// NavPoint represents a single navigation point in the table of contents.
type NavPoint struct {
	ID          string
	PlayOrder   int
	Label       string
	ContentPath string // fragment-free, absolute path within EPUB
	Fragment    string // fragment identifier (without #)
	Children    []NavPoint
}

// splitFragment splits a source path into the path and fragment identifier.
func splitFragment(src string) (path, fragment string) {
	if src == "" {
		return "", ""
	}
	parts := strings.SplitN(src, "#", 2)
	path = parts[0]
	if len(parts) == 2 {
		fragment = parts[1]
	}
	return path, fragment
}

// ncxDocument mirrors the DAISY NCX XML structure
type ncxDocument struct {
	XMLName xml.Name `xml:"ncx"`
	Head    struct {
		Metas []struct {
			Name    string `xml:"name,attr"`
			Content string `xml:"content,attr"`
		} `xml:"meta"`
	} `xml:"head"`
	DocTitle struct {
		Text string `xml:"text"`
	} `xml:"docTitle"`
	NavMap struct {
		NavPoints []ncxNavPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type ncxNavPoint struct {
	ID        string `xml:"id,attr"`
	PlayOrder string `xml:"playOrder,attr"`
	NavLabel  struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

// parseNCX parses an EPUB 2 NCX document.
// ncxDir is the directory containing the NCX file, used to resolve relative content paths.
func parseNCX(content []byte, ncxDir string) (*NCX, error) {
	var doc ncxDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse NCX: %w", err)
	}

	ncx := &NCX{
		DocTitle: doc.DocTitle.Text,
	}
	for _, meta := range doc.Head.Metas {
		switch meta.Name {
		case "dtb:uid":
			ncx.UID = meta.Content
		case "dtb:depth":
			if depth, err := strconv.Atoi(meta.Content); err == nil {
				ncx.Depth = depth
			}
		}
	}
	ncx.NavPoints = buildNavPoints(doc.NavMap.NavPoints, ncxDir)

	return ncx, nil
}

// buildNavPoints converts raw NCX navPoint elements into NavPoints,
// resolving content paths against ncxDir and splitting off fragments.
func buildNavPoints(points []ncxNavPoint, ncxDir string) []NavPoint {
	var result []NavPoint
	for _, p := range points {
		np := NavPoint{
			ID:    p.ID,
			Label: strings.TrimSpace(p.NavLabel.Text),
		}
		if order, err := strconv.Atoi(p.PlayOrder); err == nil {
			np.PlayOrder = order
		}
		if path, fragment := splitFragment(p.Content.Src); path != "" {
			np.ContentPath = joinPath(ncxDir, path)
			np.Fragment = fragment
		} else {
			np.Fragment = fragment
		}
		np.Children = buildNavPoints(p.Children, ncxDir)
		result = append(result, np)
	}
	return result
}

// findNAVPath returns the href of the manifest item carrying the "nav" property
func findNAVPath(opf *OPF) (string, bool) {
	for _, item := range opf.Manifest {
		for _, prop := range item.Properties {
			if prop == "nav" {
				return item.Href, true
			}
		}
	}
	return "", false
}

// parseNAV parses an EPUB 3 navigation document, reading the nav element
// whose epub:type contains the "toc" token.
// navDir is the directory containing the NAV file.
func parseNAV(content []byte, navDir string) (*NCX, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse NAV document: %w", err)
	}

	ncx := &NCX{}

	var toc *goquery.Selection
	doc.Find("nav").EachWithBreak(func(_ int, nav *goquery.Selection) bool {
		epubType, _ := nav.Attr("epub:type")
		for _, token := range strings.Fields(epubType) {
			if token == "toc" {
				toc = nav
				return false
			}
		}
		return true
	})
	if toc == nil {
		return ncx, nil
	}

	order := 0
	toc.ChildrenFiltered("ol").Each(func(_ int, list *goquery.Selection) {
		ncx.NavPoints = append(ncx.NavPoints, buildNAVPoints(list, navDir, &order)...)
	})

	return ncx, nil
}

// buildNAVPoints walks an ol element depth-first, assigning sequential
// play orders and auto-generated IDs to each list item.
func buildNAVPoints(list *goquery.Selection, navDir string, order *int) []NavPoint {
	var result []NavPoint
	list.ChildrenFiltered("li").Each(func(_ int, item *goquery.Selection) {
		*order++
		np := NavPoint{
			ID:        "nav-" + strconv.Itoa(*order),
			PlayOrder: *order,
		}

		if link := navEntryLink(item); link != nil {
			np.Label = strings.TrimSpace(link.Text())
			if path, fragment := splitFragment(link.AttrOr("href", "")); path != "" {
				np.ContentPath = joinPath(navDir, path)
				np.Fragment = fragment
			} else {
				np.Fragment = fragment
			}
		} else {
			// Heading-only entry: the label is the item's own text
			// without the nested list.
			heading := item.Clone()
			heading.ChildrenFiltered("ol").Remove()
			np.Label = strings.TrimSpace(heading.Text())
		}

		item.ChildrenFiltered("ol").Each(func(_ int, sub *goquery.Selection) {
			np.Children = append(np.Children, buildNAVPoints(sub, navDir, order)...)
		})

		result = append(result, np)
	})
	return result
}

// navEntryLink returns the item's own anchor, skipping anchors that belong
// to entries of a nested list. Anchors may be wrapped in a span.
func navEntryLink(item *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	item.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		for p := a.Parent(); p.Length() > 0 && p.Nodes[0] != item.Nodes[0]; p = p.Parent() {
			if goquery.NodeName(p) == "ol" {
				return true
			}
		}
		found = a
		return false
	})
	return found
}

// LoadNCX loads the table of contents for an EPUB: the NCX document named
// by the spine toc attribute first, then the EPUB 3 NAV document.
// Returns (nil, nil) when the book carries neither.
func LoadNCX(reader *Reader, opf *OPF) (*NCX, error) {
	if opf.NCXPath != "" {
		content, err := reader.ReadFile(opf.NCXPath)
		switch {
		case err == nil:
			return parseNCX(content, ncxBaseDir(opf.NCXPath))
		case !errors.Is(err, ErrFileNotFound):
			return nil, err
		}
	}

	if navPath, ok := findNAVPath(opf); ok {
		content, err := reader.ReadFile(navPath)
		switch {
		case err == nil:
			return parseNAV(content, ncxBaseDir(navPath))
		case !errors.Is(err, ErrFileNotFound):
			return nil, err
		}
	}

	return nil, nil
}

func ncxBaseDir(path string) string {
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}
