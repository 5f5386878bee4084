package menu

import (
	"context"
	"sync"

	"github.com/roach88/menukit/internal/state"
)

// Event is an incoming interaction as the platform adapter reports it.
type Event struct {
	// ID is the identifier of the activated component, or of the modal that
	// was submitted.
	ID string

	// Components lists every identifier of the message or modal in emission
	// order. The state blob is the concatenation of their slices. When empty,
	// ID alone is taken to carry the whole blob.
	Components []string

	// Values holds the options picked in a select.
	Values []string

	// Fields maps each submitted text input's identifier to its text.
	Fields map[string]string

	// Ack acknowledges the interaction ahead of the final response. Set by
	// adapters whose platform allows a deferred update; nil otherwise.
	Ack func(ctx context.Context) error
}

// Interaction is the handler's view of one event.
type Interaction struct {
	event   Event
	menu    string
	element string

	force    bool
	prevent  bool
	deferred bool
	ackOnce  sync.Once
	ackErr   error

	target *transition
}

// transition is a pending switch to another menu.
type transition struct {
	path     string
	transfer func(b *state.Builder)
}

// Event returns the raw event.
func (in *Interaction) Event() Event {
	return in.event
}

// Menu returns the path of the menu handling the event.
func (in *Interaction) Menu() string {
	return in.menu
}

// Element returns the name of the activated element.
func (in *Interaction) Element() string {
	return in.element
}

// Values returns the options picked in a select.
func (in *Interaction) Values() []string {
	return in.event.Values
}

// Field returns the submitted text of the modal input named name.
func (in *Interaction) Field(name string) (string, bool) {
	for id, text := range in.event.Fields {
		if _, el, _, err := ParseID(id); err == nil && el == name {
			return text, true
		}
	}
	return "", false
}

// ForceUpdate re-renders the menu even if its state is unchanged.
func (in *Interaction) ForceUpdate() {
	in.force = true
}

// PreventUpdate leaves the message as it is even if state changed.
// It wins over ForceUpdate and over the automatic comparison.
func (in *Interaction) PreventUpdate() {
	in.prevent = true
}

// Switch replaces the visible menu with the menu at path, which may be a
// modal. State moves over with the default transfer: matching leading slots
// are copied and the rest start from their defaults.
func (in *Interaction) Switch(path string) {
	in.target = &transition{path: path}
}

// SwitchWith replaces the visible menu with the menu at path, filling its
// state with transfer. transfer must fill every target slot.
func (in *Interaction) SwitchWith(path string, transfer func(b *state.Builder)) {
	in.target = &transition{path: path, transfer: transfer}
}

// Defer acknowledges the interaction now, for handlers that need longer than
// the platform allows before a response. It is a no-op after the first call
// and when the adapter supports no early acknowledgement.
func (in *Interaction) Defer(ctx context.Context) error {
	in.ackOnce.Do(func() {
		if in.event.Ack == nil {
			return
		}
		in.ackErr = in.event.Ack(ctx)
		in.deferred = in.ackErr == nil
	})
	return in.ackErr
}
