package mobi

import (
	"encoding/binary"
	"fmt"
)

// languageCodeMap maps BCP 47 language tags to MOBI locale codes.
var languageCodeMap = map[string]uint32{
	"en": 0x0409, // English (US)
	"ja": 0x0411, // Japanese
	"de": 0x0407, // German
	"fr": 0x040C, // French
	"es": 0x040A, // Spanish
	"it": 0x0410, // Italian
	"pt": 0x0416, // Portuguese (Brazil)
	"zh": 0x0804, // Chinese (Simplified)
	"ko": 0x0412, // Korean
	"nl": 0x0413, // Dutch
	"ru": 0x0419, // Russian
}

const (
	// CompressionNone indicates no compression.
	CompressionNone uint16 = 1
	// CompressionPalmDoc indicates PalmDoc compression.
	CompressionPalmDoc uint16 = 2
	// CompressionHuffCDIC indicates HUFF/CDIC compression, which is not supported.
	CompressionHuffCDIC uint16 = 17480

	// MaxRecordSize is the maximum size of a single text record (4096 bytes).
	MaxRecordSize uint16 = 4096

	// PalmDOCHeaderSize is the size of the PalmDOC header in bytes.
	PalmDOCHeaderSize = 16

	// MOBIHeaderSize is the serialized size of the MOBI header in bytes.
	MOBIHeaderSize = 232

	// EncodingUTF8 is the MOBI encoding code for UTF-8.
	EncodingUTF8 uint32 = 65001
	// EncodingCP1252 is the MOBI encoding code for Windows-1252.
	EncodingCP1252 uint32 = 1252

	// MOBITypeBook is the MOBI type for a Mobipocket book.
	MOBITypeBook uint32 = 2

	// EXTHFlagPresent indicates that EXTH records are present.
	EXTHFlagPresent uint32 = 0x40
)

// Record 0 byte offsets. The PalmDOC header occupies the first 16 bytes;
// the MOBI header, when present, follows immediately.
const (
	compressionOffset     = 0
	textLengthOffset      = 4
	textRecordCountOffset = 8
	maxRecordSizeOffset   = 10
	encryptionOffset      = 12

	mobiMagicOffset     = 16
	headerLengthOffset  = 20
	mobiTypeOffset      = 24
	textEncodingOffset  = 28
	uniqueIDOffset      = 32
	fileVersionOffset   = 36
	fullNameOffOffset   = 84
	fullNameLenOffset   = 88
	localeOffset        = 92
	firstImageIdxOffset = 108
	exthFlagsOffset     = 128
)

// LanguageCode converts a BCP 47 language tag to a MOBI locale code.
// Returns English (US) for unknown or empty strings.
func LanguageCode(lang string) uint32 {
	if code, ok := languageCodeMap[lang]; ok {
		return code
	}
	return 0x0409
}

// LanguageTag converts a MOBI locale code back to a BCP 47 language tag.
// Returns the empty string for unknown codes.
func LanguageTag(code uint32) string {
	for tag, c := range languageCodeMap {
		if c == code {
			return tag
		}
	}
	return ""
}

// PalmDOCHeader represents the fixed 16-byte header at the start of record 0.
type PalmDOCHeader struct {
	Compression     uint16
	TextLength      uint32
	TextRecordCount uint16
	MaxRecordSize   uint16
	Encryption      uint16
}

// ParsePalmDOCHeader decodes the PalmDOC header from record 0.
func ParsePalmDOCHeader(record0 []byte) (PalmDOCHeader, error) {
	if len(record0) < PalmDOCHeaderSize {
		return PalmDOCHeader{}, fmt.Errorf("%w: record 0 is %d bytes, need %d for PalmDOC header", ErrMalformedContainer, len(record0), PalmDOCHeaderSize)
	}
	return PalmDOCHeader{
		Compression:     binary.BigEndian.Uint16(record0[compressionOffset:]),
		TextLength:      binary.BigEndian.Uint32(record0[textLengthOffset:]),
		TextRecordCount: binary.BigEndian.Uint16(record0[textRecordCountOffset:]),
		MaxRecordSize:   binary.BigEndian.Uint16(record0[maxRecordSizeOffset:]),
		Encryption:      binary.BigEndian.Uint16(record0[encryptionOffset:]),
	}, nil
}

// MOBIHeader represents the variable-length MOBI header that follows the
// PalmDOC header in record 0. Fields beyond the declared header length are
// left at their zero values.
type MOBIHeader struct {
	HeaderLength    uint32
	Type            uint32
	TextEncoding    uint32
	UniqueID        uint32
	FileVersion     uint32
	FullNameOffset  uint32
	FullNameLength  uint32
	Locale          uint32
	FirstImageIndex uint32
	EXTHFlags       uint32
}

// ParseMOBIHeader decodes the MOBI header from record 0. The second return
// value is false when record 0 carries no MOBI header (a bare PalmDoc
// database), which is not an error.
func ParseMOBIHeader(record0 []byte) (*MOBIHeader, bool) {
	if len(record0) < mobiMagicOffset+8 || string(record0[mobiMagicOffset:mobiMagicOffset+4]) != "MOBI" {
		return nil, false
	}

	h := &MOBIHeader{
		HeaderLength:    beUint32(record0, headerLengthOffset),
		Type:            beUint32(record0, mobiTypeOffset),
		TextEncoding:    beUint32(record0, textEncodingOffset),
		UniqueID:        beUint32(record0, uniqueIDOffset),
		FileVersion:     beUint32(record0, fileVersionOffset),
		FullNameOffset:  beUint32(record0, fullNameOffOffset),
		FullNameLength:  beUint32(record0, fullNameLenOffset),
		Locale:          beUint32(record0, localeOffset),
		FirstImageIndex: beUint32(record0, firstImageIdxOffset),
		EXTHFlags:       beUint32(record0, exthFlagsOffset),
	}
	return h, true
}

// HasEXTH reports whether the EXTH flag is set in the header.
func (h *MOBIHeader) HasEXTH() bool {
	return h.EXTHFlags&EXTHFlagPresent != 0
}

// FullName extracts the full book name from record 0 using the header's
// offset and length fields. Returns the empty string when the range is
// missing or escapes record 0.
func (h *MOBIHeader) FullName(record0 []byte) string {
	start := int(h.FullNameOffset)
	length := int(h.FullNameLength)
	if start <= 0 || length <= 0 || start+length > len(record0) {
		return ""
	}
	return string(record0[start : start+length])
}

// exthStart returns the record 0 offset where the EXTH header begins.
func (h *MOBIHeader) exthStart() int {
	return mobiMagicOffset + int(h.HeaderLength)
}

// beUint32 reads a big-endian uint32 at off, or 0 when the field lies
// beyond the buffer (short headers from early format versions).
func beUint32(b []byte, off int) uint32 {
	if off+4 > len(b) {
		return 0
	}
	return binary.BigEndian.Uint32(b[off : off+4])
}
