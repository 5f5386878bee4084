package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/menukit/internal/ir"
	"github.com/roach88/menukit/internal/menu"
	"github.com/roach88/menukit/internal/store"
)

// Harness drives one scenario. It tracks what a user would see: a message,
// or a modal opened over one.
type Harness struct {
	store      *store.Store
	dispatcher *menu.Dispatcher

	menu    string
	message *menu.Message
	modal   *menu.Modal

	// under is the message a modal was opened over, and its menu.
	under     *menu.Message
	underMenu string
}

// Run executes a scenario against the given menus and returns the result.
//
// Each scenario runs in a fresh in-memory trace store with a fresh
// dispatcher clock and fixed dispatch tokens, so two runs produce identical
// traces. Scripting mistakes (clicking an element the message does not show,
// submitting with no modal open) return an error; failed expectations and
// assertions are reported in the Result.
func Run(scenario *Scenario, menus []*menu.Menu) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	var opts []menu.RegistryOption
	if scenario.MaxIDLength > 0 {
		opts = append(opts, menu.WithMaxIDLength(scenario.MaxIDLength))
	}
	reg, err := menu.NewRegistry(menus, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to register menus: %w", err)
	}

	prefix := scenario.Token
	if prefix == "" {
		prefix = scenario.Name
	}
	tokens := make([]string, len(scenario.Steps))
	for i := range tokens {
		tokens[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}

	h := &Harness{
		store: st,
		dispatcher: menu.NewDispatcher(reg,
			menu.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
			menu.WithTracer(st),
			menu.WithTokens(menu.NewFixedGenerator(tokens...))),
	}

	seed := make([]ir.Value, len(scenario.Open))
	for i, raw := range scenario.Open {
		v, err := ir.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("open[%d]: %w", i, err)
		}
		seed[i] = v
	}

	result := NewResult()
	if err := h.open(ctx, scenario.Menu, seed); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", scenario.Menu, err)
	}
	result.Opened = h.snapshot()
	result.Opened.Response = "open"

	for i, step := range scenario.Steps {
		ev, err := h.step(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		ev.Step = i + 1
		result.Trace = append(result.Trace, ev)
		if step.Expect != nil {
			for _, msg := range h.checkExpect(ev, step.Expect) {
				result.AddError(fmt.Sprintf("steps[%d]: %s", i, msg))
			}
		}
	}

	if err := h.attachRecords(ctx, result.Trace, tokens); err != nil {
		return nil, err
	}

	result.Menu = h.menu
	if state, err := h.state(); err == nil {
		result.State = state
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) open(ctx context.Context, path string, seed []ir.Value) error {
	out, err := h.dispatcher.Open(ctx, path, seed...)
	if err != nil {
		return err
	}
	h.menu = path
	h.message, h.modal = out.Message, out.Modal
	return nil
}

// step builds the event a user action produces, dispatches it and moves the
// visible surface.
func (h *Harness) step(ctx context.Context, step Step) (TraceEvent, error) {
	var (
		ev      menu.Event
		element string
	)
	if step.Click != "" {
		if h.modal != nil {
			return TraceEvent{}, fmt.Errorf("cannot click %q while modal %q is open", step.Click, h.modal.Title)
		}
		if h.message == nil {
			return TraceEvent{}, fmt.Errorf("no message to click %q on", step.Click)
		}
		comp, ok := h.message.Find(step.Click)
		if !ok {
			return TraceEvent{}, fmt.Errorf("message of %s has no element %q", h.menu, step.Click)
		}
		if comp.Kind == menu.KindLink {
			return TraceEvent{}, fmt.Errorf("%q is a link and never reaches the dispatcher", step.Click)
		}
		element = step.Click
		ev = menu.Event{ID: comp.ID, Components: h.message.IDs(), Values: step.Values}
	} else {
		if h.modal == nil {
			return TraceEvent{}, fmt.Errorf("no modal open to submit")
		}
		fields := make(map[string]string, len(step.Submit))
		for name, text := range step.Submit {
			id, ok := inputID(h.modal, name)
			if !ok {
				return TraceEvent{}, fmt.Errorf("modal %q has no input %q", h.modal.Title, name)
			}
			fields[id] = text
		}
		element = "submit"
		ev = menu.Event{ID: h.modal.ID, Components: h.modal.IDs(), Fields: fields}
	}

	resp, err := h.dispatcher.Dispatch(ctx, ev)
	submitted := step.Submit != nil
	switch {
	case err != nil:
		if submitted {
			h.closeModal()
		}
		out := h.snapshot()
		out.Element, out.Response, out.Error = element, "error", errorCode(err)
		return out, nil
	case resp.Kind == menu.ResponseUpdate:
		h.menu, h.message, h.modal = resp.Menu, resp.Message, nil
		h.under, h.underMenu = nil, ""
	case resp.Kind == menu.ResponseModal:
		if h.modal == nil {
			h.under, h.underMenu = h.message, h.menu
		}
		h.menu, h.modal = resp.Menu, resp.Modal
	default:
		if submitted {
			h.closeModal()
		}
	}

	out := h.snapshot()
	out.Element, out.Response = element, resp.Kind.String()
	return out, nil
}

func (h *Harness) closeModal() {
	h.modal = nil
	h.menu, h.message = h.underMenu, h.under
	h.under, h.underMenu = nil, ""
}

func inputID(m *menu.Modal, name string) (string, bool) {
	for _, in := range m.Inputs {
		if in.Name == name {
			return in.ID, true
		}
	}
	return "", false
}

// snapshot describes the visible surface.
func (h *Harness) snapshot() TraceEvent {
	ev := TraceEvent{Menu: h.menu}
	switch {
	case h.modal != nil:
		ev.Content = h.modal.Title
		ev.IDs = h.modal.IDs()
	case h.message != nil:
		ev.Content = h.message.Content
		ev.IDs = h.message.IDs()
	}
	return ev
}

// state decodes the state carried by the visible surface.
func (h *Harness) state() ([]ir.Value, error) {
	ids := h.snapshot().IDs
	if len(ids) == 0 {
		return []ir.Value{}, nil
	}
	insp, err := h.dispatcher.Inspect(ids)
	if err != nil {
		return nil, err
	}
	return insp.Values, nil
}

func (h *Harness) checkExpect(ev TraceEvent, exp *Expect) []string {
	var msgs []string
	if exp.Response != "" && exp.Response != ev.Response {
		msgs = append(msgs, fmt.Sprintf("expected response %s, got %s", exp.Response, ev.Response))
	}
	if exp.Error != "" && exp.Error != ev.Error {
		msgs = append(msgs, fmt.Sprintf("expected error %s, got %q", exp.Error, ev.Error))
	}
	if exp.Menu != "" && exp.Menu != ev.Menu {
		msgs = append(msgs, fmt.Sprintf("expected menu %s, got %s", exp.Menu, ev.Menu))
	}
	if exp.Content != "" && exp.Content != ev.Content {
		msgs = append(msgs, fmt.Sprintf("expected content %q, got %q", exp.Content, ev.Content))
	}
	if exp.State != nil {
		got, err := h.state()
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("cannot decode state: %v", err))
		} else if msg := compareState(exp.State, got); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// attachRecords copies the seq and digests the trace store recorded for each
// step's token.
func (h *Harness) attachRecords(ctx context.Context, trace []TraceEvent, tokens []string) error {
	records, err := h.store.List(ctx, store.Filter{})
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}
	byToken := make(map[string]menu.Record, len(records))
	for _, rec := range records {
		byToken[rec.Token] = rec
	}
	for i := range trace {
		rec, ok := byToken[tokens[i]]
		if !ok {
			return fmt.Errorf("trace has no record for step %d", i+1)
		}
		trace[i].Seq = rec.Seq
		trace[i].BlobBefore = rec.BlobBefore
		trace[i].BlobAfter = rec.BlobAfter
	}
	return nil
}

func errorCode(err error) string {
	var me *menu.Error
	if errors.As(err, &me) {
		return string(me.Code)
	}
	return "ERROR"
}

func compareState(want []any, got []ir.Value) string {
	expected := make([]ir.Value, len(want))
	for i, raw := range want {
		v, err := ir.FromGo(raw)
		if err != nil {
			return fmt.Sprintf("state[%d]: %v", i, err)
		}
		expected[i] = v
	}
	if len(expected) == len(got) {
		equal := true
		for i := range expected {
			if !ir.Equal(expected[i], got[i]) {
				equal = false
				break
			}
		}
		if equal {
			return ""
		}
	}
	return fmt.Sprintf("expected state %s, got %s", formatValues(expected), formatValues(got))
}

func formatValues(vs []ir.Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = ir.Format(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
