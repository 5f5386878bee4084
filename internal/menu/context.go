package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/menukit/internal/codec"
	"github.com/roach88/menukit/internal/state"
)

// Definition describes a menu. It is replayed once per pass, and the same
// calls mean different things in each: during build State registers a slot,
// during render it reads one, during handle it reads and writes one.
//
// Declarations must happen in the same order on every pass. Errors raised by
// declarations are recorded on the Context and end the pass once the
// definition returns.
type Definition func(c *Context)

// Handler runs for the one element an interaction activated.
type Handler func(ctx context.Context, in *Interaction) error

// submitElement is the element name a modal's identifier routes to.
const submitElement = "submit"

// Context is the explicit phase-tagged environment a Definition runs in.
type Context struct {
	ctx   context.Context
	entry *entry
	phase Phase

	// slot, shared and lazy cursors, advanced by each declaration
	cursor int
	shared int
	lazy   int

	lazies *lazyStore

	err     error
	aborted bool
	touched bool

	content  string
	embeds   []Embed
	rows     []Row
	inRow    bool
	title    string
	inputs   []Input
	submit   bool
	names    map[string]struct{}
	handlers map[string]Handler
}

func newContext(ctx context.Context, e *entry, phase Phase, lazies *lazyStore) *Context {
	if lazies == nil {
		lazies = newLazyStore()
	}
	c := &Context{
		ctx:      ctx,
		entry:    e,
		phase:    phase,
		lazies:   lazies,
		names:    make(map[string]struct{}),
		handlers: make(map[string]Handler),
	}
	if !e.detached && e.parent != nil {
		c.cursor = e.parent.schema.Len()
	}
	return c
}

// Context returns the context.Context of the pass.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Phase returns the pass replaying the definition.
func (c *Context) Phase() Phase {
	return c.phase
}

// Initial reports whether this is the render of a freshly opened menu.
func (c *Context) Initial() bool {
	p, ok := c.phase.(RenderPhase)
	return ok && p.Event == nil
}

// Path returns the dotted path of the menu being replayed.
func (c *Context) Path() string {
	return c.entry.path
}

// Fail records err; the pass fails once the definition returns.
// Only the first error is kept.
func (c *Context) Fail(err error) {
	if c.err == nil && err != nil {
		c.err = err
	}
}

// Err returns the first recorded error.
func (c *Context) Err() error {
	return c.err
}

func (c *Context) failf(code ErrorCode, element string, format string, args ...any) {
	c.Fail(newError(code, c.entry.path, element, nil, format, args...))
}

// Abort ends the render early and leaves the visible message untouched.
// The definition should return after calling it. Outside render it has no
// effect.
func (c *Context) Abort() {
	if _, ok := c.phase.(RenderPhase); ok {
		c.aborted = true
	}
}

// Text sets the message content.
func (c *Context) Text(content string) {
	if c.entry.modal {
		c.failf(ErrCodeInvalidMenu, "", "modals have no message content")
		return
	}
	c.content = content
}

// Textf sets the message content from a format string.
func (c *Context) Textf(format string, args ...any) {
	c.Text(fmt.Sprintf(format, args...))
}

// Embed appends an embed to the message.
func (c *Context) Embed(e Embed) {
	if c.entry.modal {
		c.failf(ErrCodeInvalidMenu, "", "modals have no embeds")
		return
	}
	c.embeds = append(c.embeds, e)
}

// Row groups the components fn declares onto one line. Components declared
// outside a Row each get their own line.
func (c *Context) Row(fn func()) {
	if c.inRow {
		c.failf(ErrCodeInvalidMenu, "", "rows cannot nest")
		return
	}
	c.rows = append(c.rows, Row{})
	c.inRow = true
	fn()
	c.inRow = false
	if last := len(c.rows) - 1; len(c.rows[last].Components) == 0 {
		c.rows = c.rows[:last]
	}
}

func (c *Context) addComponent(comp Component) {
	if c.inRow {
		last := &c.rows[len(c.rows)-1]
		last.Components = append(last.Components, comp)
		return
	}
	c.rows = append(c.rows, Row{Components: []Component{comp}})
}

// element registers an element name for this pass and binds its handler
// when the pass is handling an interaction.
func (c *Context) element(name string, h Handler) bool {
	if name == "" || strings.Contains(name, codec.Separator) {
		c.failf(ErrCodeInvalidMenu, name, "element names must be non-empty and free of %q", codec.Separator)
		return false
	}
	if _, dup := c.names[name]; dup {
		c.failf(ErrCodeDuplicateElement, name, "element declared twice")
		return false
	}
	c.names[name] = struct{}{}
	if _, ok := c.phase.(HandlePhase); ok && h != nil {
		c.handlers[name] = h
	}
	return true
}

// Button declares a button that runs h when clicked.
func (c *Context) Button(name, label string, h Handler, opts ...ComponentOption) {
	if c.entry.modal {
		c.failf(ErrCodeInvalidMenu, name, "modals cannot hold buttons")
		return
	}
	if !c.element(name, h) {
		return
	}
	comp := Component{Kind: KindButton, Name: name, Label: label, Style: StyleSecondary}
	for _, opt := range opts {
		opt(&comp)
	}
	c.addComponent(comp)
}

// Select declares a select that runs h with the picked values.
func (c *Context) Select(name string, options []SelectOption, h Handler, opts ...ComponentOption) {
	if c.entry.modal {
		c.failf(ErrCodeInvalidMenu, name, "modals cannot hold selects")
		return
	}
	if !c.element(name, h) {
		return
	}
	comp := Component{Kind: KindSelect, Name: name, Options: options, MinValues: 1, MaxValues: 1}
	for _, opt := range opts {
		opt(&comp)
	}
	c.addComponent(comp)
}

// Link declares a button that opens url. Links carry no state.
func (c *Context) Link(label, url string) {
	if c.entry.modal {
		c.failf(ErrCodeInvalidMenu, "", "modals cannot hold links")
		return
	}
	c.addComponent(Component{Kind: KindLink, Label: label, URL: url})
}

// Title sets a modal's title.
func (c *Context) Title(title string) {
	if !c.entry.modal {
		c.failf(ErrCodeInvalidMenu, "", "only modals have a title")
		return
	}
	c.title = title
}

// TextInput declares a modal text field, required unless Optional is given.
func (c *Context) TextInput(name, label string, opts ...InputOption) {
	if !c.entry.modal {
		c.failf(ErrCodeInvalidMenu, name, "text inputs belong in modals")
		return
	}
	if name == submitElement {
		c.failf(ErrCodeInvalidMenu, name, "%q is reserved for the submit handler", submitElement)
		return
	}
	if !c.element(name, nil) {
		return
	}
	in := Input{Name: name, Label: label, Style: InputShort, Required: true}
	for _, opt := range opts {
		opt(&in)
	}
	c.inputs = append(c.inputs, in)
}

// OnSubmit declares the handler a modal submission runs.
func (c *Context) OnSubmit(h Handler) {
	if !c.entry.modal {
		c.failf(ErrCodeInvalidMenu, submitElement, "only modals are submitted")
		return
	}
	if !c.element(submitElement, h) {
		return
	}
	c.submit = true
}

// endPass checks that the pass walked every slot build declared.
func (c *Context) endPass() error {
	if c.err != nil || c.aborted {
		return c.err
	}
	if _, ok := c.phase.(BuildPhase); ok {
		return nil
	}
	if want := c.entry.schema.Len(); c.cursor != want {
		return newError(ErrCodePhaseViolation, c.entry.path, "", nil,
			"%s declared %d slots, build declared %d", c.phase, c.cursor, want)
	}
	if c.shared != len(c.entry.shared) {
		return newError(ErrCodePhaseViolation, c.entry.path, "", nil,
			"%s declared %d shared values, build declared %d", c.phase, c.shared, len(c.entry.shared))
	}
	return nil
}

// layout assigns identifiers in emission order and returns the outcome.
func (c *Context) layout(blob string, maxLen int) (RenderOutcome, error) {
	gen := NewIDGenerator(blob, maxLen)
	next := func(name string) (string, error) {
		id, err := gen.Next(Prefix(c.entry.id, name))
		if err != nil {
			var me *Error
			if errors.As(err, &me) {
				me.Menu, me.Element = c.entry.path, name
			}
		}
		return id, err
	}

	if c.entry.modal {
		if !c.submit {
			return RenderOutcome{}, newError(ErrCodeInvalidMenu, c.entry.path, "", nil, "modal declares no submit handler")
		}
		modal := &Modal{Title: c.title, Inputs: append([]Input(nil), c.inputs...)}
		id, err := next(submitElement)
		if err != nil {
			return RenderOutcome{}, err
		}
		modal.ID = id
		for i := range modal.Inputs {
			if modal.Inputs[i].ID, err = next(modal.Inputs[i].Name); err != nil {
				return RenderOutcome{}, err
			}
		}
		if err := gen.Finish(); err != nil {
			return RenderOutcome{}, withMenu(err, c.entry.path)
		}
		return RenderOutcome{Modal: modal}, nil
	}

	msg := &Message{Content: c.content, Embeds: c.embeds, Rows: make([]Row, len(c.rows))}
	for i, row := range c.rows {
		comps := append([]Component(nil), row.Components...)
		for j := range comps {
			if comps[j].Kind == KindLink {
				continue
			}
			id, err := next(comps[j].Name)
			if err != nil {
				return RenderOutcome{}, err
			}
			comps[j].ID = id
		}
		msg.Rows[i] = Row{Components: comps}
	}
	if err := gen.Finish(); err != nil {
		return RenderOutcome{}, withMenu(err, c.entry.path)
	}
	return RenderOutcome{Message: msg}, nil
}

func withMenu(err error, path string) error {
	var me *Error
	if errors.As(err, &me) {
		me.Menu = path
	}
	return err
}

// vector returns the live vector for render and handle passes.
func (c *Context) vector() *state.Vector {
	switch p := c.phase.(type) {
	case RenderPhase:
		return p.Vector
	case HandlePhase:
		return p.Vector
	default:
		return nil
	}
}
