package mobi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// EXTH record types used by this package. The numeric values are fixed by
// the MOBI format.
const (
	EXTHAuthor      uint32 = 100
	EXTHPublisher   uint32 = 101
	EXTHDescription uint32 = 103
	EXTHISBN        uint32 = 104
	EXTHSubject     uint32 = 105
	EXTHPublishDate uint32 = 106
	EXTHRights      uint32 = 109
	EXTHCoverOffset uint32 = 201
	EXTHThumbOffset uint32 = 202
	EXTHTitle       uint32 = 503
	EXTHLanguage    uint32 = 524
)

// EXTHRecord represents a single EXTH metadata record.
type EXTHRecord struct {
	Type uint32
	Data []byte
}

// EXTHHeader holds the ordered EXTH metadata records of a MOBI file.
type EXTHHeader struct {
	Records []EXTHRecord
}

// ParseEXTH decodes the EXTH header beginning at offset start within
// record 0. A record that runs past the end of record 0 terminates parsing;
// the records collected up to that point are returned. A missing EXTH magic
// is an ErrMalformedContainer.
func ParseEXTH(record0 []byte, start int) (*EXTHHeader, error) {
	if start < 0 || start+12 > len(record0) {
		return nil, fmt.Errorf("%w: EXTH header at offset %d escapes record 0 (%d bytes)", ErrMalformedContainer, start, len(record0))
	}
	if !bytes.Equal(record0[start:start+4], []byte("EXTH")) {
		return nil, fmt.Errorf("%w: EXTH identifier missing at offset %d", ErrMalformedContainer, start)
	}

	count := binary.BigEndian.Uint32(record0[start+8 : start+12])
	h := &EXTHHeader{}

	pos := start + 12
	for i := uint32(0); i < count; i++ {
		if pos+8 > len(record0) {
			break
		}
		recType := binary.BigEndian.Uint32(record0[pos : pos+4])
		recLen := int(binary.BigEndian.Uint32(record0[pos+4 : pos+8]))
		if recLen < 8 || pos+recLen > len(record0) {
			break
		}
		data := make([]byte, recLen-8)
		copy(data, record0[pos+8:pos+recLen])
		h.Records = append(h.Records, EXTHRecord{Type: recType, Data: data})
		pos += recLen
	}

	return h, nil
}

// String returns the first record of the given type decoded as a string.
func (h *EXTHHeader) String(recordType uint32) (string, bool) {
	for _, rec := range h.Records {
		if rec.Type == recordType {
			return string(rec.Data), true
		}
	}
	return "", false
}

// Uint32 returns the first record of the given type decoded as a big-endian
// uint32. Records of any other size are ignored.
func (h *EXTHHeader) Uint32(recordType uint32) (uint32, bool) {
	for _, rec := range h.Records {
		if rec.Type == recordType && len(rec.Data) == 4 {
			return binary.BigEndian.Uint32(rec.Data), true
		}
	}
	return 0, false
}

// NewEXTHHeader creates an empty EXTHHeader.
func NewEXTHHeader() *EXTHHeader {
	return &EXTHHeader{}
}

// AddStringRecord appends a UTF-8 string metadata record.
func (h *EXTHHeader) AddStringRecord(recordType uint32, value string) {
	h.Records = append(h.Records, EXTHRecord{
		Type: recordType,
		Data: []byte(value),
	})
}

// AddUint32Record appends a 4-byte unsigned integer metadata record.
func (h *EXTHHeader) AddUint32Record(recordType uint32, value uint32) {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, value)
	h.Records = append(h.Records, EXTHRecord{Type: recordType, Data: data})
}

// Bytes serializes the EXTH header to its binary representation.
// Format: "EXTH"(4) + headerLength(4) + recordCount(4) + records + padding
func (h *EXTHHeader) Bytes() ([]byte, error) {
	totalSize := h.Size()
	if totalSize > math.MaxUint32 {
		return nil, fmt.Errorf("EXTH header too large: %d bytes", totalSize)
	}

	buf := bytes.NewBuffer(make([]byte, 0, totalSize))

	if _, err := buf.WriteString("EXTH"); err != nil {
		return nil, fmt.Errorf("failed to write EXTH identifier: %w", err)
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(totalSize)); err != nil {
		return nil, fmt.Errorf("failed to write EXTH header length: %w", err)
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(h.Records))); err != nil {
		return nil, fmt.Errorf("failed to write EXTH record count: %w", err)
	}

	for _, rec := range h.Records {
		if err := binary.Write(buf, binary.BigEndian, rec.Type); err != nil {
			return nil, fmt.Errorf("failed to write EXTH record type: %w", err)
		}
		recLen := uint32(8 + len(rec.Data))
		if err := binary.Write(buf, binary.BigEndian, recLen); err != nil {
			return nil, fmt.Errorf("failed to write EXTH record length: %w", err)
		}
		if _, err := buf.Write(rec.Data); err != nil {
			return nil, fmt.Errorf("failed to write EXTH record data: %w", err)
		}
	}

	padding := totalSize - (12 + h.recordsDataSize())
	for i := 0; i < padding; i++ {
		if err := buf.WriteByte(0x00); err != nil {
			return nil, fmt.Errorf("failed to write EXTH padding: %w", err)
		}
	}

	return buf.Bytes(), nil
}

// Size returns the total serialized size in bytes, including padding.
func (h *EXTHHeader) Size() int {
	unpaddedSize := 12 + h.recordsDataSize()
	padding := (4 - (unpaddedSize % 4)) % 4
	return unpaddedSize + padding
}

// recordsDataSize returns the total byte size of all records (Type + Length + Data).
func (h *EXTHHeader) recordsDataSize() int {
	size := 0
	for _, rec := range h.Records {
		size += 8 + len(rec.Data)
	}
	return size
}
