package mobi

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// PalmEpochOffset represents the difference in seconds between Unix epoch and Palm epoch.
// Palm epoch starts at 1904-01-01 00:00:00 UTC.
const PalmEpochOffset = 2082844800

const (
	// PDBHeaderSize is the size of the fixed Palm Database header in bytes.
	PDBHeaderSize = 78

	// recordEntrySize is the size of one entry in the record list.
	recordEntrySize = 8

	// numRecordsOffset is the byte offset of the record count within the header.
	numRecordsOffset = 76
)

// ErrMalformedContainer reports a Palm Database whose header or record table
// is inconsistent with the buffer that carries it.
var ErrMalformedContainer = errors.New("malformed palm database container")

// RecordEntry represents a single record entry in the Palm Database record list.
type RecordEntry struct {
	Offset     uint32
	Attributes uint8
	UniqueID   uint32
}

// PDB is a parsed Palm Database: the fixed header fields plus the record
// list, retained together with the raw buffer so records can be sliced out.
type PDB struct {
	Name       string
	Type       string
	Creator    string
	Version    uint16
	Created    time.Time
	Modified   time.Time
	UniqueSeed uint32
	Records    []RecordEntry

	data []byte
}

// ParsePDB parses the 78-byte Palm Database header and record list from data.
// The buffer is retained by the returned PDB; callers must not mutate it.
//
// The record count is read at offset 76, followed by one 8-byte entry per
// record from offset 78. Record offsets must be strictly increasing and every
// record must lie inside the buffer; the final record ends at the buffer end.
// Violations return ErrMalformedContainer.
func ParsePDB(data []byte) (*PDB, error) {
	if len(data) < PDBHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d for header", ErrMalformedContainer, len(data), PDBHeaderSize)
	}

	numRecords := int(binary.BigEndian.Uint16(data[numRecordsOffset : numRecordsOffset+2]))
	listEnd := PDBHeaderSize + numRecords*recordEntrySize
	if listEnd > len(data) {
		return nil, fmt.Errorf("%w: %d records declared but record list overruns %d-byte buffer", ErrMalformedContainer, numRecords, len(data))
	}

	p := &PDB{
		Name:       trimName(data[:32]),
		Type:       string(data[60:64]),
		Creator:    string(data[64:68]),
		Version:    binary.BigEndian.Uint16(data[34:36]),
		Created:    palmEpochTime(binary.BigEndian.Uint32(data[36:40])),
		Modified:   palmEpochTime(binary.BigEndian.Uint32(data[40:44])),
		UniqueSeed: binary.BigEndian.Uint32(data[68:72]),
		Records:    make([]RecordEntry, numRecords),
		data:       data,
	}

	prev := uint32(0)
	for i := 0; i < numRecords; i++ {
		entry := data[PDBHeaderSize+i*recordEntrySize:]
		offset := binary.BigEndian.Uint32(entry[0:4])
		if offset > uint32(len(data)) {
			return nil, fmt.Errorf("%w: record %d offset %d beyond %d-byte buffer", ErrMalformedContainer, i, offset, len(data))
		}
		if i > 0 && offset <= prev {
			return nil, fmt.Errorf("%w: record %d offset %d not after previous offset %d", ErrMalformedContainer, i, offset, prev)
		}
		p.Records[i] = RecordEntry{
			Offset:     offset,
			Attributes: entry[4],
			UniqueID:   decodeUniqueID(entry[5], entry[6], entry[7]),
		}
		prev = offset
	}

	return p, nil
}

// NumRecords returns the number of records in the database.
func (p *PDB) NumRecords() int {
	return len(p.Records)
}

// Record returns the raw bytes of record i. The slice aliases the parsed
// buffer. The end of the last record is the end of the buffer.
func (p *PDB) Record(i int) ([]byte, error) {
	if i < 0 || i >= len(p.Records) {
		return nil, fmt.Errorf("%w: record index %d out of range (%d records)", ErrMalformedContainer, i, len(p.Records))
	}

	start := p.Records[i].Offset
	end := uint32(len(p.data))
	if i+1 < len(p.Records) {
		end = p.Records[i+1].Offset
	}
	return p.data[start:end], nil
}

// PalmEpochSeconds converts a time.Time to Palm epoch seconds.
func PalmEpochSeconds(t time.Time) uint32 {
	return uint32(t.Unix()) + PalmEpochOffset
}

// palmEpochTime converts Palm epoch seconds to a time.Time in UTC.
// A zero value maps to the zero time.
func palmEpochTime(secs uint32) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(int64(secs)-PalmEpochOffset, 0).UTC()
}

// trimName extracts the NULL-padded database name from the 32-byte name field.
func trimName(field []byte) string {
	if i := bytes.IndexByte(field, 0x00); i >= 0 {
		field = field[:i]
	}
	return string(field)
}

// decodeUniqueID converts the 3-byte big-endian record ID to a uint32.
func decodeUniqueID(b0, b1, b2 byte) uint32 {
	return uint32(b0)<<16 | uint32(b1)<<8 | uint32(b2)
}
