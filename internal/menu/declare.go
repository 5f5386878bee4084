package menu

import (
	"context"
	"sync"

	"github.com/roach88/menukit/internal/ir"
	"github.com/roach88/menukit/internal/state"
)

// Ref is a handle on one state slot, valid for the pass that declared it.
//
// During build Get returns the initial value. During render Get reads the
// vector and Set is a phase violation. During handle both work, and writes
// change what the next render encodes.
type Ref[T any] struct {
	c        *Context
	index    int
	typ      Type[T]
	initial  T
	listener state.Listener
}

// Index returns the slot position.
func (r *Ref[T]) Index() int {
	return r.index
}

// Get returns the slot's current value. Failures are recorded on the
// Context and yield the zero value.
func (r *Ref[T]) Get() T {
	var zero T
	if r.index < 0 {
		return zero
	}
	vec := r.c.vector()
	if vec == nil {
		return r.initial
	}
	v, err := vec.Get(r.index)
	if err != nil {
		r.c.Fail(newError(ErrCodeDecodeMismatch, r.c.entry.path, "", err, "cannot read slot %d", r.index))
		return zero
	}
	x, err := r.typ.convert(v)
	if err != nil {
		r.c.Fail(newError(ErrCodeDecodeMismatch, r.c.entry.path, "", err, "cannot read slot %d", r.index))
		return zero
	}
	return x
}

// Set overwrites the slot. Only handlers may write state.
func (r *Ref[T]) Set(v T) {
	if r.index < 0 {
		return
	}
	p, ok := r.c.phase.(HandlePhase)
	if !ok {
		r.c.failf(ErrCodePhaseViolation, "", "slot %d written during %s", r.index, r.c.phase)
		return
	}
	if err := p.Vector.Set(r.index, r.typ.value(v), r.listener); err != nil {
		r.c.Fail(newError(ErrCodeHandlerFailed, r.c.entry.path, "", err, "cannot write slot %d", r.index))
	}
}

// Update replaces the slot with fn applied to its current value.
func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.Get()))
}

// State declares the next slot of the menu with its initial value. Listeners
// observe writes during handle with the value before and after each write.
func State[T any](c *Context, t Type[T], initial T, listeners ...func(old, new T)) *Ref[T] {
	r := &Ref[T]{c: c, index: -1, typ: t, initial: initial}
	if len(listeners) > 0 {
		r.listener = func(old, new ir.Value) {
			o, err1 := t.convert(old)
			n, err2 := t.convert(new)
			if err1 != nil || err2 != nil {
				return
			}
			for _, l := range listeners {
				l(o, n)
			}
		}
	}

	switch p := c.phase.(type) {
	case BuildPhase:
		i, err := p.Schema.Push(state.Slot{Type: t.Codec, Initial: t.value(initial)})
		if err != nil {
			c.Fail(newError(ErrCodeInvalidMenu, c.entry.path, "", err, "bad initial value"))
			return r
		}
		r.index = i
		c.cursor = i + 1
	case RenderPhase, HandlePhase:
		if !c.expectSlot(t.Codec.String()) {
			return r
		}
		r.index = c.cursor
		c.cursor++
	}
	return r
}

// expectSlot checks that the next slot has the type build declared there.
func (c *Context) expectSlot(typeName string) bool {
	slots := c.entry.schema.Slots
	if c.cursor >= len(slots) {
		c.failf(ErrCodePhaseViolation, "", "%s declared more slots than build (%d)", c.phase, len(slots))
		return false
	}
	if got := slots[c.cursor].Type.String(); got != typeName {
		c.failf(ErrCodePhaseViolation, "", "%s declared %s at slot %d, build declared %s", c.phase, typeName, c.cursor, got)
		return false
	}
	return true
}

// Inherit returns a handle on slot index of the parent menu. Detached menus
// and top-level menus have no parent slots.
func Inherit[T any](c *Context, t Type[T], index int) *Ref[T] {
	r := &Ref[T]{c: c, index: -1, typ: t}
	e := c.entry
	if e.parent == nil || e.detached {
		c.failf(ErrCodePhaseViolation, "", "menu has no parent state to inherit")
		return r
	}
	parent := e.parent.schema
	if index < 0 || index >= parent.Len() {
		c.failf(ErrCodePhaseViolation, "", "parent has %d slots, cannot inherit slot %d", parent.Len(), index)
		return r
	}
	slot := parent.Slots[index]
	if !slot.Type.Equal(t.Codec) {
		c.failf(ErrCodePhaseViolation, "", "parent slot %d is %s, not %s", index, slot.Type, t.Codec)
		return r
	}
	initial, err := t.convert(slot.Initial)
	if err != nil {
		c.Fail(newError(ErrCodePhaseViolation, e.path, "", err, "parent slot %d", index))
		return r
	}
	r.index = index
	r.initial = initial
	return r
}

// SkipState reserves n slot positions that hold nothing.
func SkipState(c *Context, n int) {
	switch p := c.phase.(type) {
	case BuildPhase:
		p.Schema.Skip(n)
		c.cursor = p.Schema.Len()
	case RenderPhase, HandlePhase:
		for i := 0; i < n; i++ {
			if !c.expectSlot("unit") {
				return
			}
			c.cursor++
		}
	}
}

// sharedCell is process-lifetime state shared by every viewer of a menu.
type sharedCell struct {
	mu    sync.Mutex
	value ir.Value
}

// SharedRef is a handle on an in-memory value shared across all viewers.
type SharedRef[T any] struct {
	c    *Context
	cell *sharedCell
	typ  Type[T]
}

// Shared declares a value kept in memory instead of in the identifiers. It
// is not durable, every viewer of the menu sees the same value, and there is
// no ordering between concurrent writers. Detached menus use it for state
// they cannot inherit.
func Shared[T any](c *Context, t Type[T], initial T) *SharedRef[T] {
	r := &SharedRef[T]{c: c, typ: t}
	switch c.phase.(type) {
	case BuildPhase:
		r.cell = &sharedCell{value: t.value(initial)}
		c.entry.shared = append(c.entry.shared, r.cell)
	default:
		if c.shared >= len(c.entry.shared) {
			c.failf(ErrCodePhaseViolation, "", "%s declared more shared values than build", c.phase)
			return r
		}
		r.cell = c.entry.shared[c.shared]
	}
	c.shared++
	return r
}

// Get returns the shared value.
func (r *SharedRef[T]) Get() T {
	var zero T
	if r.cell == nil {
		return zero
	}
	r.cell.mu.Lock()
	v := r.cell.value
	r.cell.mu.Unlock()
	x, err := r.typ.convert(v)
	if err != nil {
		r.c.Fail(err)
		return zero
	}
	return x
}

// Set replaces the shared value. Writes happen only in handlers, and since
// shared values are not part of the encoded state a write forces a re-render.
func (r *SharedRef[T]) Set(v T) {
	if r.cell == nil {
		return
	}
	if _, ok := r.c.phase.(HandlePhase); !ok {
		r.c.failf(ErrCodePhaseViolation, "", "shared value written during %s", r.c.phase)
		return
	}
	r.cell.mu.Lock()
	r.cell.value = r.typ.value(v)
	r.cell.mu.Unlock()
	r.c.touched = true
}

// Update replaces the shared value with fn applied to the current one.
func (r *SharedRef[T]) Update(fn func(T) T) {
	if r.cell == nil {
		return
	}
	if _, ok := r.c.phase.(HandlePhase); !ok {
		r.c.failf(ErrCodePhaseViolation, "", "shared value written during %s", r.c.phase)
		return
	}
	r.cell.mu.Lock()
	cur, err := r.typ.convert(r.cell.value)
	if err == nil {
		r.cell.value = r.typ.value(fn(cur))
	}
	r.cell.mu.Unlock()
	if err != nil {
		r.c.Fail(err)
		return
	}
	r.c.touched = true
}

// lazyStore holds the lazy values of one interaction, keyed by menu path and
// declaration order, so a value a handler computed is reused by the render
// that follows it.
type lazyStore struct {
	cells map[string][]*lazyCell
}

type lazyCell struct {
	done  bool
	value any
	err   error
}

func newLazyStore() *lazyStore {
	return &lazyStore{cells: make(map[string][]*lazyCell)}
}

func (s *lazyStore) cell(path string, i int) *lazyCell {
	cells := s.cells[path]
	for len(cells) <= i {
		cells = append(cells, &lazyCell{})
	}
	s.cells[path] = cells
	return cells[i]
}

// LazyValue is a value computed on first use, at most once per interaction.
type LazyValue[T any] struct {
	c    *Context
	cell *lazyCell
	fn   func(ctx context.Context) (T, error)
}

// Get computes the value on first call and returns the cached result after.
// During build nothing is computed and Get returns the zero value.
func (l *LazyValue[T]) Get() (T, error) {
	var zero T
	if l.cell == nil {
		return zero, nil
	}
	if !l.cell.done {
		l.cell.value, l.cell.err = l.fn(l.c.ctx)
		l.cell.done = true
	}
	if l.cell.err != nil {
		return zero, l.cell.err
	}
	v, _ := l.cell.value.(T)
	return v, nil
}

// Lazy declares a value computed only when read. A handler that never reads
// it never pays for it; a value read during handle is reused by the render
// of the same interaction.
func Lazy[T any](c *Context, fn func(ctx context.Context) (T, error)) *LazyValue[T] {
	l := &LazyValue[T]{c: c, fn: fn}
	if _, ok := c.phase.(BuildPhase); ok {
		return l
	}
	l.cell = c.lazies.cell(c.entry.path, c.lazy)
	c.lazy++
	return l
}

// ActiveLazy is Lazy computed as soon as it is declared, in handle as well
// as render. A computation error is recorded on the Context.
func ActiveLazy[T any](c *Context, fn func(ctx context.Context) (T, error)) *LazyValue[T] {
	l := Lazy(c, fn)
	if l.cell != nil {
		if _, err := l.Get(); err != nil {
			c.Fail(err)
		}
	}
	return l
}
