package extract

import "github.com/yuanying/ebook2pdf/internal/mobi"

// extractMOBI runs the binary pipeline: parse the PDB container, decompress
// the text records, resolve the character encoding, strip the markup.
// Unlike the delegated formats, failures here propagate to the caller.
func extractMOBI(data []byte) (string, error) {
	r, err := mobi.NewReader(data)
	if err != nil {
		return "", err
	}
	raw, err := r.Text()
	if err != nil {
		return "", err
	}
	return stripMarkup(DecodeText(raw)), nil
}
