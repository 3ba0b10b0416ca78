package mobi

import (
	"errors"
	"fmt"
)

// ErrUnsupportedCompression reports a compression scheme this package
// cannot decode, such as HUFF/CDIC.
var ErrUnsupportedCompression = errors.New("unsupported mobi compression")

// Reader provides access to the text, metadata and cover image of a parsed
// MOBI/AZW3 file. All parsing of record 0 happens in NewReader; text records
// are decompressed on demand by Text.
type Reader struct {
	// PDB is the parsed Palm Database container.
	PDB *PDB
	// PalmDOC holds the compression and text layout fields of record 0.
	PalmDOC PalmDOCHeader
	// Header is the MOBI header, nil for bare PalmDoc databases.
	Header *MOBIHeader
	// EXTH holds the metadata records, nil when absent or unreadable.
	EXTH *EXTHHeader

	fullName string
}

// NewReader parses the container and record 0 headers of a MOBI/AZW3 byte
// buffer. The buffer is retained; callers must not mutate it.
func NewReader(data []byte) (*Reader, error) {
	pdb, err := ParsePDB(data)
	if err != nil {
		return nil, err
	}
	if pdb.NumRecords() == 0 {
		return nil, fmt.Errorf("%w: database has no records", ErrMalformedContainer)
	}

	record0, err := pdb.Record(0)
	if err != nil {
		return nil, err
	}
	palmDoc, err := ParsePalmDOCHeader(record0)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		PDB:     pdb,
		PalmDOC: palmDoc,
	}

	if header, ok := ParseMOBIHeader(record0); ok {
		r.Header = header
		r.fullName = header.FullName(record0)
		if header.HasEXTH() {
			// Metadata is best effort: a broken EXTH block must not
			// prevent text extraction.
			if exth, err := ParseEXTH(record0, header.exthStart()); err == nil {
				r.EXTH = exth
			}
		}
	}

	return r, nil
}

// Text returns the concatenated decompressed content of all text records,
// in record order. The bytes are returned before any character decoding so
// multi-byte sequences split across record boundaries stay intact.
func (r *Reader) Text() ([]byte, error) {
	switch r.PalmDOC.Compression {
	case CompressionNone, CompressionPalmDoc:
	case CompressionHuffCDIC:
		return nil, fmt.Errorf("%w: HUFF/CDIC", ErrUnsupportedCompression)
	default:
		return nil, fmt.Errorf("%w: compression type %d", ErrUnsupportedCompression, r.PalmDOC.Compression)
	}

	count := int(r.PalmDOC.TextRecordCount)
	if count+1 > r.PDB.NumRecords() {
		return nil, fmt.Errorf("%w: %d text records declared but only %d records present", ErrMalformedContainer, count, r.PDB.NumRecords())
	}

	text := make([]byte, 0, r.PalmDOC.TextLength)
	for i := 1; i <= count; i++ {
		rec, err := r.PDB.Record(i)
		if err != nil {
			return nil, err
		}
		if r.PalmDOC.Compression == CompressionPalmDoc {
			text = append(text, PalmDocDecompress(rec)...)
		} else {
			text = append(text, rec...)
		}
	}

	return text, nil
}

// Title returns the book title: the EXTH title record when present, then
// the full name from the MOBI header, then the database name.
func (r *Reader) Title() string {
	if r.EXTH != nil {
		if title, ok := r.EXTH.String(EXTHTitle); ok && title != "" {
			return title
		}
	}
	if r.fullName != "" {
		return r.fullName
	}
	return r.PDB.Name
}

// Author returns the EXTH author record, or the empty string.
func (r *Reader) Author() string {
	if r.EXTH == nil {
		return ""
	}
	author, _ := r.EXTH.String(EXTHAuthor)
	return author
}

// Language returns the book language as a BCP 47 tag: the EXTH language
// record when present, otherwise derived from the MOBI header locale.
func (r *Reader) Language() string {
	if r.EXTH != nil {
		if lang, ok := r.EXTH.String(EXTHLanguage); ok && lang != "" {
			return lang
		}
	}
	if r.Header != nil {
		return LanguageTag(r.Header.Locale)
	}
	return ""
}

// Cover returns the raw bytes of the cover image record, located through
// the EXTH cover offset relative to the first image record index.
func (r *Reader) Cover() ([]byte, bool) {
	if r.EXTH == nil || r.Header == nil {
		return nil, false
	}
	offset, ok := r.EXTH.Uint32(EXTHCoverOffset)
	if !ok {
		return nil, false
	}
	first := r.Header.FirstImageIndex
	if first == 0 || first == 0xFFFFFFFF {
		return nil, false
	}

	rec, err := r.PDB.Record(int(first) + int(offset))
	if err != nil || len(rec) == 0 {
		return nil, false
	}
	return rec, true
}
