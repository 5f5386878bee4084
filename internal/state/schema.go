package state

import (
	"encoding/binary"
	"fmt"

	"github.com/roach88/menukit/internal/codec"
	"github.com/roach88/menukit/internal/ir"
)

// Listener observes a slot being overwritten. old is the effective value
// just before this write, which may itself come from an earlier write in the
// same pass.
type Listener func(old, new ir.Value)

// Slot is one declared, positionally addressed piece of menu state.
type Slot struct {
	Type     codec.Type
	Initial  ir.Value
	Listener Listener
}

// Schema is the ordered slot list of a menu. Position is the only identity a
// slot has: inserting or reordering slots changes the meaning of every blob
// already sent, which is what Version and the layout fingerprint detect.
type Schema struct {
	// Version is bumped by menu authors when slot meanings change without
	// the type layout changing. The layout fingerprint is one byte, so about
	// 1 in 256 type layout changes keeps the old fingerprint; bump Version
	// on every layout change for a guaranteed rejection.
	Version uint64

	Slots []Slot
}

// Push appends a slot and returns its position.
// The initial value must encode as the slot type.
func (s *Schema) Push(slot Slot) (int, error) {
	if err := codec.Validate(slot.Type, slot.Initial); err != nil {
		return -1, newError(ErrCodeTypeMismatch, len(s.Slots), err, "initial value does not fit %s", slot.Type)
	}
	s.Slots = append(s.Slots, slot)
	return len(s.Slots) - 1, nil
}

// Skip reserves n unit slots. They occupy positions but encode to nothing.
func (s *Schema) Skip(n int) {
	for i := 0; i < n; i++ {
		s.Slots = append(s.Slots, Slot{Type: codec.Unit, Initial: ir.Null{}})
	}
}

// Len returns the number of slots.
func (s Schema) Len() int {
	return len(s.Slots)
}

// Types returns the slot types in order.
func (s Schema) Types() []codec.Type {
	types := make([]codec.Type, len(s.Slots))
	for i, slot := range s.Slots {
		types[i] = slot.Type
	}
	return types
}

// Defaults returns the initial values in order.
func (s Schema) Defaults() []ir.Value {
	values := make([]ir.Value, len(s.Slots))
	for i, slot := range s.Slots {
		values[i] = slot.Initial
	}
	return values
}

// Fingerprint identifies the slot type layout in one byte.
func (s Schema) Fingerprint() byte {
	return ir.SchemaFingerprint(codec.TypeNames(s.Types()))
}

// Clone returns a copy whose slot list can be appended to independently.
func (s Schema) Clone() Schema {
	return Schema{Version: s.Version, Slots: append([]Slot(nil), s.Slots...)}
}

// header is prepended to the encoded slots: uvarint(Version) + fingerprint.
// An empty schema has no header and encodes to the empty blob.
func (s Schema) header() []byte {
	if len(s.Slots) == 0 {
		return nil
	}
	h := binary.AppendUvarint(nil, s.Version)
	return append(h, s.Fingerprint())
}

// checkHeader strips and verifies the header from data.
func (s Schema) checkHeader(data []byte) ([]byte, error) {
	if len(s.Slots) == 0 {
		if len(data) != 0 {
			return nil, newError(ErrCodeStaleSchema, -1, nil, "blob carries %d bytes but the menu declares no state", len(data))
		}
		return data, nil
	}
	version, n := binary.Uvarint(data)
	if n <= 0 || len(data) < n+1 {
		return nil, newError(ErrCodeStaleSchema, -1, nil, "blob has no schema header")
	}
	if version != s.Version {
		return nil, newError(ErrCodeStaleSchema, -1, nil, "blob written by schema version %d, menu is at %d", version, s.Version)
	}
	if fp := data[n]; fp != s.Fingerprint() {
		return nil, newError(ErrCodeStaleSchema, -1, nil, "blob layout fingerprint %02x does not match %02x", fp, s.Fingerprint())
	}
	return data[n+1:], nil
}

// Describe renders the layout for diagnostics, e.g. "v2 [int string]".
func (s Schema) Describe() string {
	return fmt.Sprintf("v%d %v", s.Version, codec.TypeNames(s.Types()))
}
