package state

import (
	"github.com/roach88/menukit/internal/codec"
	"github.com/roach88/menukit/internal/ir"
)

// Builder computes a target menu's vector from a source vector, position by
// position.
//
// Two counters move independently. The source index advances on Copy and
// Skip. The target index is the number of entries appended so far, and it
// advances on Copy, Push and PushDefault. Skip never appends, so
//
//	Skip(1).Push(5).PushDefault()
//
// against a target of [int int string] with defaults [0 0 "x"] fills
// [5 0] and Build reports INCOMPLETE, while Copy(1).Skip(1).Push(5).PushDefault()
// yields [source[0] 5 "x"]. Keeping the counters aligned is the caller's job.
//
// Methods chain; the first error sticks and is returned by Build.
type Builder struct {
	source *Vector
	target Schema
	src    int
	tokens [][]byte
	err    error
}

// NewBuilder starts a transfer into target. source may be nil for detached
// targets, in which case any Copy fails with OUT_OF_RANGE.
func NewBuilder(source *Vector, target Schema) *Builder {
	return &Builder{source: source, target: target}
}

func (b *Builder) sourceLen() int {
	if b.source == nil {
		return 0
	}
	return b.source.Len()
}

// SourceIndex returns the next source position Copy would take.
func (b *Builder) SourceIndex() int {
	return b.src
}

// TargetIndex returns the next target position an append would fill.
func (b *Builder) TargetIndex() int {
	return len(b.tokens)
}

// Err returns the first error recorded, if any.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) append(token []byte) bool {
	if len(b.tokens) >= len(b.target.Slots) {
		b.err = newError(ErrCodeOverflow, len(b.tokens), nil, "target declares %d slots", len(b.target.Slots))
		return false
	}
	b.tokens = append(b.tokens, token)
	return true
}

// Copy takes the next n source positions verbatim.
func (b *Builder) Copy(n int) *Builder {
	for ; n > 0 && b.err == nil; n-- {
		if b.src >= b.sourceLen() {
			b.err = newError(ErrCodeOutOfRange, b.src, nil, "source has %d slots", b.sourceLen())
			return b
		}
		ti := len(b.tokens)
		if ti < len(b.target.Slots) {
			st, tt := b.source.schema.Slots[b.src].Type, b.target.Slots[ti].Type
			if !st.Equal(tt) {
				b.err = newError(ErrCodeTypeMismatch, ti, nil, "cannot copy %s from source slot %d", st, b.src)
				return b
			}
		}
		token, err := b.source.Token(b.src)
		if err != nil {
			b.err = err
			return b
		}
		if !b.append(token) {
			return b
		}
		b.src++
	}
	return b
}

// CopyAll copies while both sides have positions left and their types agree.
func (b *Builder) CopyAll() *Builder {
	for b.err == nil && b.src < b.sourceLen() && len(b.tokens) < len(b.target.Slots) {
		if !b.source.schema.Slots[b.src].Type.Equal(b.target.Slots[len(b.tokens)].Type) {
			break
		}
		b.Copy(1)
	}
	return b
}

// Push appends v, encoded as the target's type at the current position.
func (b *Builder) Push(v ir.Value) *Builder {
	if b.err != nil {
		return b
	}
	ti := len(b.tokens)
	if ti >= len(b.target.Slots) {
		b.append(nil)
		return b
	}
	t := b.target.Slots[ti].Type
	token, err := codec.EncodeSingle(t, v)
	if err != nil {
		b.err = newError(ErrCodeTypeMismatch, ti, err, "pushed value does not fit %s", t)
		return b
	}
	b.append(token)
	return b
}

// PushDefault appends the target's initial value at the current position.
func (b *Builder) PushDefault() *Builder {
	if b.err != nil {
		return b
	}
	ti := len(b.tokens)
	if ti >= len(b.target.Slots) {
		b.append(nil)
		return b
	}
	return b.Push(b.target.Slots[ti].Initial)
}

// PushDefaults fills every remaining target position with its initial value.
func (b *Builder) PushDefaults() *Builder {
	for b.err == nil && len(b.tokens) < len(b.target.Slots) {
		b.PushDefault()
	}
	return b
}

// Skip advances the source index by n without appending.
func (b *Builder) Skip(n int) *Builder {
	if b.err != nil {
		return b
	}
	if b.src+n > b.sourceLen() {
		b.err = newError(ErrCodeOutOfRange, b.src, nil, "cannot skip %d of %d remaining source slots", n, b.sourceLen()-b.src)
		return b
	}
	b.src += n
	return b
}

// Build returns the target vector. Every target slot must be filled.
func (b *Builder) Build() (*Vector, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.tokens) != len(b.target.Slots) {
		return nil, newError(ErrCodeIncomplete, len(b.tokens), nil, "filled %d of %d target slots", len(b.tokens), len(b.target.Slots))
	}
	return &Vector{
		schema: b.target,
		raw:    append([][]byte(nil), b.tokens...),
		cache:  make([]ir.Value, len(b.tokens)),
		dirty:  make([]bool, len(b.tokens)),
	}, nil
}

// Transfer applies the default transition: copy what lines up, then fill the
// rest with the target's defaults.
func Transfer(source *Vector, target Schema) (*Vector, error) {
	return NewBuilder(source, target).CopyAll().PushDefaults().Build()
}
