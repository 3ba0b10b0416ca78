package mobi

// RecordSize is the maximum size in bytes of a single text record.
const RecordSize = 4096

// Compressor defines the interface for text record compression.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Type() uint16
}

// NoCompression implements Compressor with no compression (type 1).
type NoCompression struct{}

// Compress returns a copy of the input data without modification.
func (n *NoCompression) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Type returns the MOBI compression type identifier for no compression.
func (n *NoCompression) Type() uint16 {
	return CompressionNone
}

// SplitTextRecords splits the text content into RecordSize-byte chunks and applies
// the given compressor to each chunk. If compressor is nil, NoCompression is used.
// Note: compressed output may exceed RecordSize depending on the compressor implementation.
func SplitTextRecords(text []byte, compressor Compressor) ([][]byte, error) {
	if len(text) == 0 {
		return nil, nil
	}

	if compressor == nil {
		compressor = &NoCompression{}
	}

	count := TextRecordCount(text)
	records := make([][]byte, 0, count)

	for offset := 0; offset < len(text); offset += RecordSize {
		end := min(offset+RecordSize, len(text))
		chunk := text[offset:end]
		compressed, err := compressor.Compress(chunk)
		if err != nil {
			return nil, err
		}
		records = append(records, compressed)
	}

	return records, nil
}

// TextLength returns the total byte length of the text content as uint32.
func TextLength(text []byte) uint32 {
	return uint32(len(text))
}

// TextRecordCount returns the number of records needed to store the text content.
func TextRecordCount(text []byte) int {
	n := len(text)
	if n == 0 {
		return 0
	}
	return (n + RecordSize - 1) / RecordSize
}
