package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/menukit/internal/ir"
	"github.com/roach88/menukit/internal/state"
)

// ResponseKind says what the adapter should do with the visible message.
type ResponseKind int

const (
	// ResponseAck acknowledges and leaves the message as it is.
	ResponseAck ResponseKind = iota

	// ResponseUpdate replaces the message with Response.Message.
	ResponseUpdate

	// ResponseModal opens Response.Modal.
	ResponseModal
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseAck:
		return "ack"
	case ResponseUpdate:
		return "update"
	case ResponseModal:
		return "modal"
	default:
		return "unknown"
	}
}

// Response is the outcome of one dispatch.
type Response struct {
	Kind ResponseKind

	// Menu is the path of the menu rendered, or of the menu that handled the
	// event when Kind is ResponseAck.
	Menu string

	Message *Message
	Modal   *Modal

	// Deferred is set when the handler acknowledged early, so the adapter
	// must edit the message instead of answering the interaction.
	Deferred bool
}

// RenderOutcome is the result of a render pass: a message, a modal, or an
// abort that leaves the visible message alone.
type RenderOutcome struct {
	Message *Message
	Modal   *Modal
	Aborted bool
}

// Dispatcher routes interactions to registered menus.
//
// Thread-safety: Dispatch and Open are safe for concurrent use. Each call
// works on its own vector; only Shared values are common to all calls.
type Dispatcher struct {
	reg    *Registry
	log    *slog.Logger
	tracer Tracer
	tokens TokenGenerator
	clock  *Clock
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

// WithTracer records every dispatch to t.
func WithTracer(t Tracer) DispatcherOption {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithTokens sets the trace token source. Default: UUIDv7Generator.
func WithTokens(g TokenGenerator) DispatcherOption {
	return func(d *Dispatcher) { d.tokens = g }
}

// WithClock sets the trace sequence clock, to resume an existing log.
func WithClock(c *Clock) DispatcherOption {
	return func(d *Dispatcher) { d.clock = c }
}

// NewDispatcher creates a dispatcher over reg.
func NewDispatcher(reg *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		reg:    reg,
		log:    slog.Default(),
		tokens: UUIDv7Generator{},
		clock:  NewClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher serves.
func (d *Dispatcher) Registry() *Registry {
	return d.reg
}

// Open renders the menu at path for a first send. values seed the leading
// slots; the rest start from their defaults.
func (d *Dispatcher) Open(ctx context.Context, path string, values ...ir.Value) (RenderOutcome, error) {
	e, err := d.reg.lookup(path)
	if err != nil {
		return RenderOutcome{}, err
	}
	b := state.NewBuilder(nil, e.schema)
	for _, v := range values {
		b.Push(v)
	}
	vec, err := b.PushDefaults().Build()
	if err != nil {
		return RenderOutcome{}, newError(ErrCodeRenderFailed, path, "", err, "cannot seed state")
	}
	out, err := d.render(ctx, e, vec, nil, newLazyStore())
	if err != nil {
		d.log.Warn("open failed", "menu", path, "error", err)
		return RenderOutcome{}, err
	}
	d.log.Debug("menu opened", "menu", path, "aborted", out.Aborted)
	return out, nil
}

// Dispatch handles one interaction: it decodes the state the message
// carried, runs the activated element's handler, and decides whether the
// message must be re-rendered.
//
// The message is re-rendered when the handler switched menus, forced an
// update, wrote a shared value, or left state that encodes differently than
// it arrived; PreventUpdate overrides all but a switch. Otherwise the
// interaction is acknowledged. Errors leave the interaction unanswered;
// panics in definitions and handlers are recovered and returned as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (resp *Response, err error) {
	rec := Record{Token: d.tokens.Generate(), Seq: d.clock.Next()}
	defer func() {
		d.trace(ctx, &rec, resp, err)
	}()

	resp, err = d.dispatch(ctx, ev, &rec)
	if err != nil {
		d.log.Warn("dispatch failed",
			"id", ev.ID,
			"menu", rec.Menu,
			"element", rec.Element,
			"error", err)
		return nil, err
	}
	d.log.Info("dispatched",
		"menu", rec.Menu,
		"element", rec.Element,
		"response", resp.Kind.String(),
		"deferred", resp.Deferred)
	return resp, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, ev Event, rec *Record) (*Response, error) {
	menuID, element, _, err := ParseID(ev.ID)
	if err != nil {
		return nil, err
	}
	e, err := d.reg.lookupID(menuID)
	if err != nil {
		return nil, err
	}
	rec.Menu, rec.Element = e.path, element

	ids := ev.Components
	if len(ids) == 0 {
		ids = []string{ev.ID}
	}
	before, err := JoinSlices(menuID, ids)
	if err != nil {
		return nil, err
	}
	rec.BlobBefore = ir.BlobDigest(before)

	vec, err := state.DecodeVector(e.schema, before)
	if err != nil {
		return nil, newError(ErrCodeDecodeMismatch, e.path, element, err, "message state does not fit the menu")
	}

	d.log.Debug("handling interaction", "menu", e.path, "element", element)

	lazies := newLazyStore()
	c := newContext(ctx, e, HandlePhase{Vector: vec, Event: ev}, lazies)
	if err := replay(c); err != nil {
		return nil, wrapPass(ErrCodeHandlerFailed, e.path, element, err)
	}
	h, ok := c.handlers[element]
	if !ok {
		return nil, newError(ErrCodeUnknownElement, e.path, element, nil, "menu did not declare this element")
	}

	in := &Interaction{event: ev, menu: e.path, element: element}
	if err := invoke(ctx, h, in); err != nil {
		if errors.Is(err, ErrTerminated) {
			d.log.Debug("handler terminated", "menu", e.path, "element", element)
			rec.BlobAfter = rec.BlobBefore
			return &Response{Kind: ResponseAck, Menu: e.path, Deferred: in.deferred}, nil
		}
		return nil, wrapPass(ErrCodeHandlerFailed, e.path, element, err)
	}
	if c.err != nil {
		return nil, wrapPass(ErrCodeHandlerFailed, e.path, element, c.err)
	}

	after, err := vec.Encode()
	if err != nil {
		return nil, newError(ErrCodeHandlerFailed, e.path, element, err, "cannot encode state")
	}
	rec.BlobAfter = ir.BlobDigest(after)

	resp, err := d.decide(ctx, e, c, in, vec, before != after, ev, lazies, rec)
	if err != nil {
		return nil, err
	}
	resp.Deferred = in.deferred
	return resp, nil
}

// decide picks the response after a handler ran.
func (d *Dispatcher) decide(
	ctx context.Context,
	e *entry,
	c *Context,
	in *Interaction,
	vec *state.Vector,
	changed bool,
	ev Event,
	lazies *lazyStore,
	rec *Record,
) (*Response, error) {
	ack := &Response{Kind: ResponseAck, Menu: e.path}

	switch {
	case in.target != nil:
		target, err := d.reg.lookup(in.target.path)
		if err != nil {
			return nil, err
		}
		if e.modal && target.modal {
			return nil, newError(ErrCodeHandlerFailed, e.path, in.element, nil, "a modal submission cannot open another modal")
		}
		var source *state.Vector
		if !target.detached {
			source = vec
		}
		b := state.NewBuilder(source, target.schema)
		if in.target.transfer != nil {
			in.target.transfer(b)
		} else {
			b.CopyAll().PushDefaults()
		}
		next, err := b.Build()
		if err != nil {
			return nil, newError(ErrCodeHandlerFailed, e.path, in.element, err, "cannot transfer state to %s", target.path)
		}
		rec.Target = target.path
		out, err := d.render(ctx, target, next, &ev, lazies)
		if err != nil {
			return nil, err
		}
		return respond(target.path, out, ack), nil

	case in.prevent:
		return ack, nil

	case e.modal:
		// A submitted modal closes; there is nothing to update in place.
		return ack, nil

	case in.force || c.touched || changed:
		if err := vec.Reset(); err != nil {
			return nil, newError(ErrCodeRenderFailed, e.path, "", err, "cannot carry state into render")
		}
		out, err := d.render(ctx, e, vec, &ev, lazies)
		if err != nil {
			return nil, err
		}
		return respond(e.path, out, ack), nil

	default:
		return ack, nil
	}
}

func respond(path string, out RenderOutcome, ack *Response) *Response {
	switch {
	case out.Aborted:
		return ack
	case out.Modal != nil:
		return &Response{Kind: ResponseModal, Menu: path, Modal: out.Modal}
	default:
		return &Response{Kind: ResponseUpdate, Menu: path, Message: out.Message}
	}
}

// render runs a render pass. The blob is fixed before the definition runs:
// render may read state but not write it.
func (d *Dispatcher) render(ctx context.Context, e *entry, vec *state.Vector, ev *Event, lazies *lazyStore) (RenderOutcome, error) {
	blob, err := vec.Encode()
	if err != nil {
		return RenderOutcome{}, newError(ErrCodeRenderFailed, e.path, "", err, "cannot encode state")
	}
	c := newContext(ctx, e, RenderPhase{Vector: vec, Event: ev}, lazies)
	if err := replay(c); err != nil {
		return RenderOutcome{}, wrapPass(ErrCodeRenderFailed, e.path, "", err)
	}
	if c.aborted {
		return RenderOutcome{Aborted: true}, nil
	}
	return c.layout(blob, d.reg.maxIDLength)
}

// replay runs the definition in c's phase and checks the pass.
func replay(c *Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s pass panicked: %v", c.phase, p)
		}
	}()
	c.entry.def(c)
	return c.endPass()
}

func invoke(ctx context.Context, h Handler, in *Interaction) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panicked: %v", p)
		}
	}()
	return h(ctx, in)
}

func (d *Dispatcher) trace(ctx context.Context, rec *Record, resp *Response, err error) {
	if d.tracer == nil {
		return
	}
	if err != nil {
		rec.Response = "error"
		rec.Error = err.Error()
	} else if resp != nil {
		rec.Response = resp.Kind.String()
		rec.Deferred = resp.Deferred
	}
	if terr := d.tracer.Record(ctx, *rec); terr != nil {
		d.log.Warn("trace record failed", "token", rec.Token, "error", terr)
	}
}

// Inspection is the state decoded from a message's identifiers.
type Inspection struct {
	Menu   string
	Blob   string
	Schema state.Schema
	Values []ir.Value
}

// Inspect decodes the state carried by a message's identifiers.
func (d *Dispatcher) Inspect(ids []string) (*Inspection, error) {
	if len(ids) == 0 {
		return nil, newError(ErrCodeMalformedID, "", "", nil, "no identifiers to inspect")
	}
	menuID, _, _, err := ParseID(ids[0])
	if err != nil {
		return nil, err
	}
	e, err := d.reg.lookupID(menuID)
	if err != nil {
		return nil, err
	}
	blob, err := JoinSlices(menuID, ids)
	if err != nil {
		return nil, err
	}
	vec, err := state.DecodeVector(e.schema, blob)
	if err != nil {
		return nil, newError(ErrCodeDecodeMismatch, e.path, "", err, "identifiers do not fit the menu")
	}
	values, err := vec.Values()
	if err != nil {
		return nil, newError(ErrCodeDecodeMismatch, e.path, "", err, "identifiers do not fit the menu")
	}
	return &Inspection{Menu: e.path, Blob: blob, Schema: e.schema.Clone(), Values: values}, nil
}
