package state

import (
	"github.com/roach88/menukit/internal/codec"
	"github.com/roach88/menukit/internal/ir"
)

// Vector is the live state of one menu for one pass.
//
// raw holds the token each slot arrived with; cache holds the decoded value
// once a slot has been read or written, and from then on it is authoritative.
// A slot that is never accessed re-encodes from raw, so it leaves the pass
// byte for byte as it entered.
type Vector struct {
	schema Schema
	raw    [][]byte
	cache  []ir.Value
	dirty  []bool
}

// NewVector returns a vector holding the schema's initial values.
func NewVector(schema Schema) (*Vector, error) {
	v := &Vector{
		schema: schema,
		raw:    make([][]byte, len(schema.Slots)),
		cache:  make([]ir.Value, len(schema.Slots)),
		dirty:  make([]bool, len(schema.Slots)),
	}
	for i, slot := range schema.Slots {
		token, err := codec.EncodeSingle(slot.Type, slot.Initial)
		if err != nil {
			return nil, newError(ErrCodeTypeMismatch, i, err, "initial value does not fit %s", slot.Type)
		}
		v.raw[i] = token
	}
	return v, nil
}

// DecodeVector rebuilds a vector from a text blob produced by Encode.
// Only token boundaries are found here; values decode on first access.
func DecodeVector(schema Schema, blob string) (*Vector, error) {
	data, err := codec.FromText(blob)
	if err != nil {
		return nil, newError(ErrCodeDecode, -1, err, "blob is not valid text")
	}
	body, err := schema.checkHeader(data)
	if err != nil {
		return nil, err
	}
	tokens, err := codec.Split(schema.Types(), body)
	if err != nil {
		return nil, newError(ErrCodeDecode, -1, err, "blob does not match %s", schema.Describe())
	}
	return &Vector{
		schema: schema,
		raw:    tokens,
		cache:  make([]ir.Value, len(schema.Slots)),
		dirty:  make([]bool, len(schema.Slots)),
	}, nil
}

// Schema returns the schema the vector was built against.
func (v *Vector) Schema() Schema {
	return v.schema
}

// Len returns the number of slots.
func (v *Vector) Len() int {
	return len(v.raw)
}

func (v *Vector) check(i int) error {
	if i < 0 || i >= len(v.raw) {
		return newError(ErrCodeOutOfRange, i, nil, "vector has %d slots", len(v.raw))
	}
	return nil
}

// Get returns the effective value of slot i, decoding it on first access.
func (v *Vector) Get(i int) (ir.Value, error) {
	if err := v.check(i); err != nil {
		return nil, err
	}
	if v.cache[i] != nil {
		return v.cache[i], nil
	}
	val, err := codec.DecodeSingle(v.schema.Slots[i].Type, v.raw[i])
	if err != nil {
		return nil, newError(ErrCodeDecode, i, err, "cannot decode slot as %s", v.schema.Slots[i].Type)
	}
	v.cache[i] = val
	return val, nil
}

// Set overwrites slot i. listener, or the slot's declared listener when nil,
// observes the effective value before this write and the new one.
func (v *Vector) Set(i int, val ir.Value, listener Listener) error {
	if err := v.check(i); err != nil {
		return err
	}
	slot := v.schema.Slots[i]
	if err := codec.Validate(slot.Type, val); err != nil {
		return newError(ErrCodeTypeMismatch, i, err, "value does not fit %s", slot.Type)
	}
	old, err := v.Get(i)
	if err != nil {
		return err
	}
	v.cache[i] = val
	v.dirty[i] = true
	if listener == nil {
		listener = slot.Listener
	}
	if listener != nil {
		listener(old, val)
	}
	return nil
}

// Touched reports whether slot i was read or written during this pass.
func (v *Vector) Touched(i int) bool {
	return i >= 0 && i < len(v.cache) && v.cache[i] != nil
}

// Token returns the effective encoding of slot i: the re-encoded cached value
// when the slot was written, otherwise the raw token.
func (v *Vector) Token(i int) ([]byte, error) {
	if err := v.check(i); err != nil {
		return nil, err
	}
	if !v.dirty[i] {
		return v.raw[i], nil
	}
	token, err := codec.EncodeSingle(v.schema.Slots[i].Type, v.cache[i])
	if err != nil {
		return nil, newError(ErrCodeTypeMismatch, i, err, "cannot encode slot")
	}
	return token, nil
}

// Bytes returns the header followed by every slot's effective token.
func (v *Vector) Bytes() ([]byte, error) {
	out := v.schema.header()
	for i := range v.raw {
		token, err := v.Token(i)
		if err != nil {
			return nil, err
		}
		out = append(out, token...)
	}
	return out, nil
}

// Encode returns the text blob carried by the menu's identifiers.
func (v *Vector) Encode() (string, error) {
	data, err := v.Bytes()
	if err != nil {
		return "", err
	}
	return codec.ToText(data), nil
}

// Values decodes every slot. Reading through Values marks all slots touched.
func (v *Vector) Values() ([]ir.Value, error) {
	values := make([]ir.Value, len(v.raw))
	for i := range v.raw {
		val, err := v.Get(i)
		if err != nil {
			return nil, err
		}
		values[i] = val
	}
	return values, nil
}

// Clone returns an independent copy carrying the same raw and cached state.
func (v *Vector) Clone() *Vector {
	return &Vector{
		schema: v.schema,
		raw:    append([][]byte(nil), v.raw...),
		cache:  append([]ir.Value(nil), v.cache...),
		dirty:  append([]bool(nil), v.dirty...),
	}
}

// Reset drops every cached value, keeping the effective tokens as the new raw
// state. A vector is reset between the handle and render passes of one
// interaction so each pass starts from what the previous one left.
func (v *Vector) Reset() error {
	for i := range v.raw {
		token, err := v.Token(i)
		if err != nil {
			return err
		}
		v.raw[i] = token
		v.cache[i] = nil
		v.dirty[i] = false
	}
	return nil
}
