package mobi

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"time"
	"unicode/utf8"
)

// WriterConfig holds configuration for creating a Writer.
type WriterConfig struct {
	Title        string
	Text         []byte
	Author       string
	Language     string
	ImageRecords [][]byte
	CoverIndex   *int // 0-based index into ImageRecords for the cover; nil means no cover
	Compression  uint16
	CreationTime time.Time
	UniqueID     *uint32
}

// Writer assembles and writes a single-section MOBI file: record 0, text
// records, optional image records and the fixed trailing records. Its output
// parses back through NewReader, which is how the package tests build their
// containers.
type Writer struct {
	cfg WriterConfig
}

// NewWriter creates a new Writer from the given configuration.
func NewWriter(cfg WriterConfig) (*Writer, error) {
	if len(cfg.Text) == 0 {
		return nil, fmt.Errorf("text content is required")
	}

	if cfg.Compression == 0 {
		cfg.Compression = CompressionNone
	}
	if cfg.Compression != CompressionNone && cfg.Compression != CompressionPalmDoc {
		return nil, fmt.Errorf("unsupported compression type: %d", cfg.Compression)
	}

	if cfg.CoverIndex != nil {
		if *cfg.CoverIndex < 0 || *cfg.CoverIndex >= len(cfg.ImageRecords) {
			return nil, fmt.Errorf("cover index %d out of range (%d image records)", *cfg.CoverIndex, len(cfg.ImageRecords))
		}
	}

	return &Writer{cfg: cfg}, nil
}

// WriteTo writes the complete MOBI file to the given writer.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	cfg := w.cfg

	// --- Pass 1: determine record numbers ---

	var compressor Compressor
	if cfg.Compression == CompressionPalmDoc {
		compressor = &PalmDocCompressor{}
	} else {
		compressor = &NoCompression{}
	}

	textRecords, err := SplitTextRecords(cfg.Text, compressor)
	if err != nil {
		return 0, fmt.Errorf("failed to split text records: %w", err)
	}

	textLen := TextLength(cfg.Text)
	textRecCount := len(textRecords)

	nextIndex := 1 + textRecCount // after record 0 and text records

	var firstImageIndex uint32 = 0xFFFFFFFF
	if len(cfg.ImageRecords) > 0 {
		firstImageIndex = uint32(nextIndex)
	}
	nextIndex += len(cfg.ImageRecords)

	flisIndex := uint32(nextIndex)
	nextIndex++
	fcisIndex := uint32(nextIndex)
	nextIndex++
	nextIndex++ // EOF

	// --- Build EXTH ---
	exth := NewEXTHHeader()
	if cfg.Author != "" {
		exth.AddStringRecord(EXTHAuthor, cfg.Author)
	}
	if cfg.Title != "" {
		exth.AddStringRecord(EXTHTitle, cfg.Title)
	}
	if cfg.Language != "" {
		exth.AddStringRecord(EXTHLanguage, cfg.Language)
	}
	if cfg.CoverIndex != nil {
		exth.AddUint32Record(EXTHCoverOffset, uint32(*cfg.CoverIndex))
	}

	var exthData []byte
	if len(exth.Records) > 0 {
		exthData, err = exth.Bytes()
		if err != nil {
			return 0, fmt.Errorf("failed to serialize EXTH: %w", err)
		}
	}

	// --- Build record 0 ---
	uid := cfg.UniqueID
	if uid == nil {
		generated, err := generateUniqueID()
		if err != nil {
			return 0, fmt.Errorf("failed to generate unique ID: %w", err)
		}
		uid = &generated
	}

	record0, err := record0Bytes(record0Config{
		Compression:     cfg.Compression,
		TextLength:      textLen,
		TextRecordCount: uint16(textRecCount),
		UniqueID:        *uid,
		Locale:          LanguageCode(cfg.Language),
		FirstImageIndex: firstImageIndex,
		FLISIndex:       flisIndex,
		FCISIndex:       fcisIndex,
		EXTH:            exthData,
		FullName:        cfg.Title,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to build record 0: %w", err)
	}

	// --- Build fixed trailing records ---
	flisData := FLISRecord()
	fcisData, err := FCISRecord(textLen)
	if err != nil {
		return 0, fmt.Errorf("failed to build FCIS record: %w", err)
	}
	eofData := EOFRecord()

	// --- Build record sizes ---
	recordSizes := make([]int, 0, nextIndex)
	recordSizes = append(recordSizes, len(record0))
	for _, tr := range textRecords {
		recordSizes = append(recordSizes, len(tr))
	}
	for _, ir := range cfg.ImageRecords {
		recordSizes = append(recordSizes, len(ir))
	}
	recordSizes = append(recordSizes, len(flisData))
	recordSizes = append(recordSizes, len(fcisData))
	recordSizes = append(recordSizes, len(eofData))

	creation := cfg.CreationTime
	if creation.IsZero() {
		creation = time.Now().UTC()
	}

	// --- Write phase ---
	var written int64

	writeAll := func(data []byte, label string) error {
		n, err := io.Copy(out, bytes.NewReader(data))
		written += n
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", label, err)
		}
		return nil
	}

	headerBytes, err := pdbHeaderBytes(cfg.Title, len(recordSizes), creation)
	if err != nil {
		return written, fmt.Errorf("failed to serialize PDB header: %w", err)
	}
	if err := writeAll(headerBytes, "PDB header"); err != nil {
		return written, err
	}

	listBytes, err := recordListBytes(recordSizes)
	if err != nil {
		return written, fmt.Errorf("failed to serialize record list: %w", err)
	}
	if err := writeAll(listBytes, "record list"); err != nil {
		return written, err
	}

	if err := writeAll(record0, "record 0"); err != nil {
		return written, err
	}
	for i, tr := range textRecords {
		if err := writeAll(tr, fmt.Sprintf("text record %d", i)); err != nil {
			return written, err
		}
	}
	for i, ir := range cfg.ImageRecords {
		if err := writeAll(ir, fmt.Sprintf("image record %d", i)); err != nil {
			return written, err
		}
	}
	if err := writeAll(flisData, "FLIS"); err != nil {
		return written, err
	}
	if err := writeAll(fcisData, "FCIS"); err != nil {
		return written, err
	}
	if err := writeAll(eofData, "EOF"); err != nil {
		return written, err
	}

	return written, nil
}

// record0Config holds the resolved fields for serializing record 0.
type record0Config struct {
	Compression     uint16
	TextLength      uint32
	TextRecordCount uint16
	UniqueID        uint32
	Locale          uint32
	FirstImageIndex uint32
	FLISIndex       uint32
	FCISIndex       uint32
	EXTH            []byte
	FullName        string
}

// record0Bytes serializes record 0: the 16-byte PalmDOC header, the 232-byte
// MOBI header, the EXTH block when present, and the NUL-terminated full name.
func record0Bytes(cfg record0Config) ([]byte, error) {
	var exthFlags uint32
	if len(cfg.EXTH) > 0 {
		exthFlags = EXTHFlagPresent
	}

	fullNameOffset := uint32(PalmDOCHeaderSize + MOBIHeaderSize + len(cfg.EXTH))
	fullName := []byte(cfg.FullName)

	buf := &bytes.Buffer{}
	write := func(v interface{}) error {
		return binary.Write(buf, binary.BigEndian, v)
	}

	head := []interface{}{
		// PalmDOC header
		cfg.Compression,     // 0: compression type
		uint16(0),           // 2: unused
		cfg.TextLength,      // 4: text length
		cfg.TextRecordCount, // 8: text record count
		MaxRecordSize,       // 10: max record size (4096)
		uint16(0),           // 12: encryption type (none)
		uint16(0),           // 14: unused

		// MOBI header
		[4]byte{'M', 'O', 'B', 'I'},
		uint32(MOBIHeaderSize), // 20: header length
		MOBITypeBook,           // 24: mobi type
		EncodingUTF8,           // 28: text encoding
		cfg.UniqueID,           // 32: unique id
		uint32(6),              // 36: file version
	}
	for _, f := range head {
		if err := write(f); err != nil {
			return nil, fmt.Errorf("failed to encode record 0: %w", err)
		}
	}

	// 40-79: index record pointers, all unset
	for i := 0; i < 10; i++ {
		if err := write(uint32(0xFFFFFFFF)); err != nil {
			return nil, fmt.Errorf("failed to encode record 0: %w", err)
		}
	}

	tail := []interface{}{
		uint32(0xFFFFFFFF),    // 80: first non-book index
		fullNameOffset,        // 84: full name offset
		uint32(len(fullName)), // 88: full name length
		cfg.Locale,            // 92: locale
		uint32(0),             // 96: input language
		uint32(0),             // 100: output language
		uint32(6),             // 104: min version
		cfg.FirstImageIndex,   // 108: first image index
		uint32(0),             // 112: huffman record offset
		uint32(0),             // 116: huffman record count
		uint32(0),             // 120: huffman table offset
		uint32(0),             // 124: huffman table length
		exthFlags,             // 128: EXTH flags
		[32]byte{},            // 132: unknown
		uint32(0xFFFFFFFF),    // 164: unknown
		uint32(0xFFFFFFFF),    // 168: DRM offset (no DRM)
		uint32(0),             // 172: DRM count
		uint32(0),             // 176: DRM size
		uint32(0),             // 180: DRM flags
		[8]byte{},             // 184: unknown
		uint16(1),             // 192: first content record
		cfg.TextRecordCount,   // 194: last content record
		uint32(1),             // 196: unknown
		cfg.FCISIndex,         // 200: FCIS record number
		uint32(1),             // 204: FCIS record count
		cfg.FLISIndex,         // 208: FLIS record number
		uint32(1),             // 212: FLIS record count
		[8]byte{},             // 216: unknown
		uint32(0xFFFFFFFF),    // 224: unknown
		uint32(0),             // 228: unknown
		uint32(0xFFFFFFFF),    // 232: unknown
		uint32(0xFFFFFFFF),    // 236: unknown
		uint32(0),             // 240: extra record data flags
		uint32(0xFFFFFFFF),    // 244: INDX record offset
	}
	for _, f := range tail {
		if err := write(f); err != nil {
			return nil, fmt.Errorf("failed to encode record 0: %w", err)
		}
	}

	if len(cfg.EXTH) > 0 {
		if _, err := buf.Write(cfg.EXTH); err != nil {
			return nil, fmt.Errorf("failed to write EXTH block: %w", err)
		}
	}

	if _, err := buf.Write(fullName); err != nil {
		return nil, fmt.Errorf("failed to write full name: %w", err)
	}
	// Two NUL terminators, then pad to a 4-byte boundary.
	pad := 2 + (4-(len(fullName)+2)%4)%4
	if _, err := buf.Write(make([]byte, pad)); err != nil {
		return nil, fmt.Errorf("failed to pad full name: %w", err)
	}

	return buf.Bytes(), nil
}

// pdbHeaderBytes serializes the 78-byte Palm Database header.
func pdbHeaderBytes(title string, numRecords int, creation time.Time) ([]byte, error) {
	buf := &bytes.Buffer{}
	fields := []interface{}{
		truncateDatabaseName(title),
		uint16(0), // attributes
		uint16(0), // version
		PalmEpochSeconds(creation),
		PalmEpochSeconds(creation),
		uint32(0), // backup date
		uint32(0), // modification number
		uint32(0), // app info offset
		uint32(0), // sort info offset
		[4]byte{'B', 'O', 'O', 'K'},
		[4]byte{'M', 'O', 'B', 'I'},
		uint32(0), // unique seed
		uint32(0), // next record list
		uint16(numRecords),
	}

	for _, field := range fields {
		if err := binary.Write(buf, binary.BigEndian, field); err != nil {
			return nil, fmt.Errorf("failed to encode PDB header: %w", err)
		}
	}

	return buf.Bytes(), nil
}

// recordListBytes serializes the record list entries followed by the 2-byte
// padding. Offsets follow the PalmDB rule:
//
//	first offset = 78 + (8 * record count) + 2
//	next offset = previous offset + previous record size
func recordListBytes(recordSizes []int) ([]byte, error) {
	buf := &bytes.Buffer{}

	offset := uint32(PDBHeaderSize + len(recordSizes)*recordEntrySize + 2)
	for i, size := range recordSizes {
		if size < 0 {
			return nil, fmt.Errorf("record size cannot be negative (index %d)", i)
		}
		if err := binary.Write(buf, binary.BigEndian, offset); err != nil {
			return nil, fmt.Errorf("failed to write record offset: %w", err)
		}
		if err := buf.WriteByte(0); err != nil {
			return nil, fmt.Errorf("failed to write record attributes: %w", err)
		}
		uniqueID := [3]byte{byte(i >> 16), byte(i >> 8), byte(i)}
		if _, err := buf.Write(uniqueID[:]); err != nil {
			return nil, fmt.Errorf("failed to write record unique ID: %w", err)
		}
		offset += uint32(size)
	}

	// Final 2-byte padding
	if err := binary.Write(buf, binary.BigEndian, uint16(0)); err != nil {
		return nil, fmt.Errorf("failed to write record list padding: %w", err)
	}

	return buf.Bytes(), nil
}

// truncateDatabaseName truncates the database name to 31 bytes and NULL pads to 32 bytes.
func truncateDatabaseName(name string) [32]byte {
	var result [32]byte

	var buf []byte
	for i := 0; i < len(name); {
		r, size := utf8.DecodeRuneInString(name[i:])
		if r == utf8.RuneError && size == 1 {
			// Treat invalid UTF-8 byte as-is to avoid silent drop
			size = 1
		}
		if len(buf)+size > 31 {
			break
		}
		buf = append(buf, name[i:i+size]...)
		i += size
	}

	copy(result[:], buf)
	return result
}

// generateUniqueID generates a random uint32 using crypto/rand.
func generateUniqueID() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
