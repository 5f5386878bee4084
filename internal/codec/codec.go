package codec

import (
	"fmt"

	"github.com/roach88/menukit/internal/ir"
)

// EncodeSingle encodes one value as a standalone token.
func EncodeSingle(t Type, v ir.Value) ([]byte, error) {
	return appendValue(nil, t, v, "")
}

// DecodeSingle decodes a token produced by EncodeSingle.
// The token must be consumed exactly; leftover bytes are an error.
func DecodeSingle(t Type, token []byte) (ir.Value, error) {
	r := &reader{data: token}
	v, err := r.read(t, "", true)
	if err != nil {
		return nil, err
	}
	if r.pos != len(token) {
		return nil, r.fail(ErrCodeTrailing, "", "%d bytes left after %s", len(token)-r.pos, t)
	}
	return v, nil
}

// Validate reports whether v can be encoded as t.
func Validate(t Type, v ir.Value) error {
	_, err := appendValue(nil, t, v, "")
	return err
}

// EncodeVector encodes values against types and concatenates the tokens.
// No length table is written; the type list alone re-splits the result.
func EncodeVector(types []Type, values []ir.Value) ([]byte, error) {
	if len(types) != len(values) {
		return nil, &Error{
			Code:    ErrCodeTypeMismatch,
			Offset:  -1,
			Message: fmt.Sprintf("%d types but %d values", len(types), len(values)),
		}
	}
	var out []byte
	var err error
	for i, t := range types {
		out, err = appendValue(out, t, values[i], fmt.Sprintf("[%d]", i))
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DecodeVector decodes a concatenation produced by EncodeVector.
func DecodeVector(types []Type, data []byte) ([]ir.Value, error) {
	r := &reader{data: data}
	values := make([]ir.Value, len(types))
	for i, t := range types {
		v, err := r.read(t, fmt.Sprintf("[%d]", i), true)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	if r.pos != len(data) {
		return nil, r.fail(ErrCodeTrailing, "", "%d bytes left after %d values", len(data)-r.pos, len(types))
	}
	return values, nil
}

// Split cuts a concatenation into one raw token per type without building
// values. Each token can later be passed to DecodeSingle, or re-emitted
// verbatim.
func Split(types []Type, data []byte) ([][]byte, error) {
	r := &reader{data: data}
	tokens := make([][]byte, len(types))
	for i, t := range types {
		start := r.pos
		if _, err := r.read(t, fmt.Sprintf("[%d]", i), false); err != nil {
			return nil, err
		}
		tokens[i] = data[start:r.pos:r.pos]
	}
	if r.pos != len(data) {
		return nil, r.fail(ErrCodeTrailing, "", "%d bytes left after %d tokens", len(data)-r.pos, len(types))
	}
	return tokens, nil
}
