package codec

import (
	"encoding/base64"
	"strings"
)

// Separator delimits the parts of a component identifier. The blob alphabet
// never produces it, so an identifier splits unambiguously.
const Separator = ":"

// Strict rejects non-zero padding bits, so every blob has one text form.
var textEncoding = base64.RawURLEncoding.Strict()

// ToText maps encoded bytes into the identifier-safe alphabet
// [A-Za-z0-9_-]. Four characters carry three bytes.
func ToText(data []byte) string {
	return textEncoding.EncodeToString(data)
}

// FromText reverses ToText.
func FromText(s string) ([]byte, error) {
	if strings.Contains(s, Separator) {
		return nil, &Error{Code: ErrCodeInvalidText, Offset: strings.Index(s, Separator), Message: "separator inside blob"}
	}
	data, err := textEncoding.DecodeString(s)
	if err != nil {
		offset := -1
		if ce, ok := err.(base64.CorruptInputError); ok {
			offset = int(ce)
		}
		return nil, &Error{Code: ErrCodeInvalidText, Offset: offset, Message: err.Error()}
	}
	return data, nil
}

// TextLen returns the length of ToText for n bytes.
func TextLen(n int) int {
	return textEncoding.EncodedLen(n)
}
