package epub

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
)

// opfPackage mirrors the OPF package document. Dublin Core elements carry
// their namespace in the tag so parsing works regardless of the prefix the
// producer chose.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	UniqueID string      `xml:"unique-identifier,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest struct {
		Items []opfManifestItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Toc             string       `xml:"toc,attr"`
		PageProgression string       `xml:"page-progression-direction,attr"`
		ItemRefs        []opfItemRef `xml:"itemref"`
	} `xml:"spine"`
	Guide struct {
		References []opfGuideRef `xml:"reference"`
	} `xml:"guide"`
}

type opfMetadata struct {
	Title       []string        `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator     []opfCreator    `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Language    []string        `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifier  []opfIdentifier `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Publisher   []string        `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Date        []string        `xml:"http://purl.org/dc/elements/1.1/ date"`
	Description []string        `xml:"http://purl.org/dc/elements/1.1/ description"`
	Subject     []string        `xml:"http://purl.org/dc/elements/1.1/ subject"`
	Rights      []string        `xml:"http://purl.org/dc/elements/1.1/ rights"`
	Meta        []opfMeta       `xml:"meta"`
}

type opfCreator struct {
	Name string `xml:",chardata"`
	Role string `xml:"http://www.idpf.org/2007/opf role,attr"`
	Lang string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	ID   string `xml:"id,attr"`
}

type opfIdentifier struct {
	Value  string `xml:",chardata"`
	ID     string `xml:"id,attr"`
	Scheme string `xml:"http://www.idpf.org/2007/opf scheme,attr"`
}

// opfMeta covers both generations of the meta element: EPUB 2.0 puts the
// value in a content attribute, EPUB 3.0 in the element text.
type opfMeta struct {
	Name     string `xml:"name,attr"`
	Content  string `xml:"content,attr"`
	Value    string `xml:",chardata"`
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
	Scheme   string `xml:"scheme,attr"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

type opfGuideRef struct {
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
	Href  string `xml:"href,attr"`
}

// ParseOPF parses an OPF package document. opfDir is the directory
// containing the OPF file; manifest and guide hrefs are resolved against it.
func ParseOPF(content []byte, opfDir string) (*OPF, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse OPF XML: %w", err)
	}

	opf := &OPF{
		Metadata:                 parseMetadata(&pkg.Metadata, pkg.UniqueID),
		Manifest:                 make(map[string]ManifestItem, len(pkg.Manifest.Items)),
		PageProgressionDirection: pkg.Spine.PageProgression,
	}

	// Manifest, preserving document order for ordered scans.
	for _, item := range pkg.Manifest.Items {
		opf.Manifest[item.ID] = ManifestItem{
			ID:         item.ID,
			Href:       joinPath(opfDir, item.Href),
			MediaType:  item.MediaType,
			Properties: strings.Fields(item.Properties),
		}
		opf.ManifestOrder = append(opf.ManifestOrder, item.ID)
	}

	for _, ref := range pkg.Spine.ItemRefs {
		opf.Spine = append(opf.Spine, SpineItem{
			IDRef:  ref.IDRef,
			Linear: ref.Linear != "no",
		})
	}

	for _, ref := range pkg.Guide.References {
		opf.Guide = append(opf.Guide, GuideReference{
			Type:  ref.Type,
			Title: ref.Title,
			Href:  joinPath(opfDir, ref.Href),
		})
	}

	// The spine toc attribute names the NCX manifest item.
	if ncxItem, ok := opf.Manifest[pkg.Spine.Toc]; ok && pkg.Spine.Toc != "" {
		opf.NCXPath = ncxItem.Href
	}

	return opf, nil
}

// parseMetadata flattens the repeatable Dublin Core elements into the
// Metadata struct, taking the first occurrence where only one is kept.
func parseMetadata(meta *opfMetadata, uniqueID string) Metadata {
	md := Metadata{
		Title:       firstOf(meta.Title),
		Language:    firstOf(meta.Language),
		Identifier:  selectIdentifier(meta.Identifier, uniqueID),
		Publisher:   firstOf(meta.Publisher),
		Date:        firstOf(meta.Date),
		Description: firstOf(meta.Description),
		Rights:      firstOf(meta.Rights),
		Subjects:    meta.Subject,
		Creators:    make([]Creator, 0, len(meta.Creator)),
	}

	for _, creator := range meta.Creator {
		md.Creators = append(md.Creators, Creator{
			Name: creator.Name,
			Role: creator.Role,
			Lang: creator.Lang,
		})
	}
	applyRoleRefinements(&md, meta)

	// EPUB 2.0 cover meta points at the cover manifest item ID.
	for _, m := range meta.Meta {
		if m.Name == "cover" && m.Content != "" {
			md.CoverID = m.Content
			break
		}
	}

	return md
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// selectIdentifier picks the book identifier from the dc:identifier
// elements: an ISBN by scheme attribute first, then by value pattern, then
// the element marked as unique-identifier, then the first one.
func selectIdentifier(ids []opfIdentifier, uniqueID string) string {
	for _, id := range ids {
		if strings.EqualFold(id.Scheme, "isbn") {
			return id.Value
		}
	}
	for _, id := range ids {
		if strings.Contains(strings.ToLower(id.Value), "isbn") {
			return id.Value
		}
	}
	for _, id := range ids {
		if id.ID == uniqueID {
			return id.Value
		}
	}
	if len(ids) > 0 {
		return ids[0].Value
	}
	return ""
}

// applyRoleRefinements resolves EPUB 3.0 role refinements: meta elements
// with property="role" whose refines attribute targets a creator ID.
func applyRoleRefinements(md *Metadata, meta *opfMetadata) {
	targets := make(map[string]int)
	for i, creator := range meta.Creator {
		if creator.ID != "" {
			targets["#"+creator.ID] = i
		}
	}

	for _, m := range meta.Meta {
		if m.Property != "role" || m.Refines == "" {
			continue
		}
		idx, ok := targets[m.Refines]
		if !ok {
			continue
		}
		role := m.Value
		if role == "" {
			role = m.Content
		}
		md.Creators[idx].Role = role
	}
}

// joinPath joins the OPF directory with a relative path. Separators are
// normalized to forward slashes, matching ZIP entry names.
func joinPath(base, rel string) string {
	if base == "" {
		return rel
	}
	return filepath.ToSlash(filepath.Join(base, rel))
}
