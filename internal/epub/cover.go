package epub

import (
	"path/filepath"
	"strings"
)

// CoverInfo holds information about the detected cover image.
type CoverInfo struct {
	ManifestID      string
	Href            string
	MediaType       string
	DetectionMethod string // "properties", "meta", "guide", "filename"
}

// DetectCover locates the cover image in the manifest. Detection methods
// run in priority order:
//  1. properties="cover-image" (EPUB 3.0)
//  2. meta name="cover" (EPUB 2.0)
//  3. guide type="cover" (matched to image manifest items)
//  4. filename pattern (basename contains "cover", case-insensitive, SVG excluded)
//
// Returns nil if no cover image is found.
func (opf *OPF) DetectCover() *CoverInfo {
	methods := []struct {
		name   string
		detect func() (ManifestItem, bool)
	}{
		{"properties", opf.coverByProperty},
		{"meta", opf.coverByMeta},
		{"guide", opf.coverByGuide},
		{"filename", opf.coverByFilename},
	}
	for _, m := range methods {
		if item, ok := m.detect(); ok {
			return &CoverInfo{
				ManifestID:      item.ID,
				Href:            item.Href,
				MediaType:       item.MediaType,
				DetectionMethod: m.name,
			}
		}
	}
	return nil
}

// FindCoverImage finds the cover image in the manifest.
// This is a convenience wrapper around DetectCover.
func (opf *OPF) FindCoverImage() (string, bool) {
	if c := opf.DetectCover(); c != nil {
		return c.Href, true
	}
	return "", false
}

// coverByProperty finds the EPUB 3.0 cover-image manifest property.
func (opf *OPF) coverByProperty() (ManifestItem, bool) {
	for _, id := range opf.ManifestOrder {
		item := opf.Manifest[id]
		for _, prop := range item.Properties {
			if prop == "cover-image" {
				return item, true
			}
		}
	}
	return ManifestItem{}, false
}

// coverByMeta resolves the EPUB 2.0 meta name="cover" content ID.
func (opf *OPF) coverByMeta() (ManifestItem, bool) {
	if opf.Metadata.CoverID == "" {
		return ManifestItem{}, false
	}
	item, ok := opf.Manifest[opf.Metadata.CoverID]
	return item, ok
}

// coverByGuide matches guide type="cover" references against image manifest
// items. A guide entry pointing at a non-image (typically the cover XHTML
// page) is skipped rather than resolved.
func (opf *OPF) coverByGuide() (ManifestItem, bool) {
	for _, ref := range opf.Guide {
		if ref.Type != "cover" {
			continue
		}
		href, _ := splitFragment(ref.Href)
		for _, id := range opf.ManifestOrder {
			item := opf.Manifest[id]
			if isRasterImage(item.MediaType) && item.Href == href {
				return item, true
			}
		}
	}
	return ManifestItem{}, false
}

// coverByFilename falls back to the first image item whose basename
// contains "cover".
func (opf *OPF) coverByFilename() (ManifestItem, bool) {
	for _, id := range opf.ManifestOrder {
		item := opf.Manifest[id]
		if !isRasterImage(item.MediaType) {
			continue
		}
		if strings.Contains(strings.ToLower(filepath.Base(item.Href)), "cover") {
			return item, true
		}
	}
	return ManifestItem{}, false
}

// isRasterImage reports whether a media type is a raster image. SVG is
// excluded: it cannot be decoded into the cover page bitmap.
func isRasterImage(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/") && mediaType != "image/svg+xml"
}
