package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// decoders are tried in priority order; the first one that accepts the whole
// buffer wins. New encodings slot in here without touching call sites.
var decoders = []func([]byte) (string, bool){
	decodeUTF8,
	decodeGBK,
}

// DecodeText converts a raw text buffer to a string. Strict UTF-8 is tried
// first, then strict GBK. A buffer valid in neither decodes as UTF-8 with
// replacement characters substituted for the broken sequences.
func DecodeText(raw []byte) string {
	for _, decode := range decoders {
		if s, ok := decode(raw); ok {
			return s
		}
	}
	return strings.ToValidUTF8(string(raw), "�")
}

func decodeUTF8(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// decodeGBK rejects buffers the GBK decoder cannot fully map. The x/text
// decoder substitutes U+FFFD for invalid sequences instead of failing, and
// GBK itself has no code point for U+FFFD, so any replacement rune in the
// output marks the input as not GBK.
func decodeGBK(raw []byte) (string, bool) {
	out, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
