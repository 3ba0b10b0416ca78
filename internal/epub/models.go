package epub

// OPF represents the parsed Open Package Format document
type OPF struct {
	Metadata      Metadata
	Manifest      map[string]ManifestItem // id -> item
	ManifestOrder []string                // manifest item IDs in document order
	Spine         []SpineItem
	Guide         []GuideReference
	NCXPath       string

	// PageProgressionDirection is the spine page-progression-direction
	// attribute ("ltr", "rtl" or empty).
	PageProgressionDirection string
}

// Metadata represents the metadata section of the OPF
type Metadata struct {
	Title       string
	Creators    []Creator
	Language    string
	Identifier  string
	Publisher   string
	Date        string
	Description string
	Subjects    []string
	Rights      string
	CoverID     string // EPUB 2.0 cover image manifest item ID (from meta name="cover")
}

// Creator represents a creator (author, editor, etc.) of the book
type Creator struct {
	Name string
	Role string // e.g., "aut" for author, "edt" for editor
	Lang string // xml:lang attribute
}

// Author returns the primary author: the first creator with the "aut"
// role or no role, falling back to the first creator listed.
func (m Metadata) Author() string {
	for _, c := range m.Creators {
		if c.Role == "aut" || c.Role == "" {
			return c.Name
		}
	}
	if len(m.Creators) > 0 {
		return m.Creators[0].Name
	}
	return ""
}

// ManifestItem represents an item in the manifest
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string
}

// SpineItem represents an item reference in the spine
type SpineItem struct {
	IDRef  string
	Linear bool
}

// GuideReference represents a reference in the EPUB 2.0 guide section
type GuideReference struct {
	Type  string
	Title string
	Href  string
}
