package menu

import "github.com/roach88/menukit/internal/state"

// Phase says which pass is replaying a menu definition. It is one of
// BuildPhase, RenderPhase or HandlePhase.
type Phase interface {
	isPhase()
	String() string
}

// BuildPhase runs once at registration and collects the slot schema.
type BuildPhase struct {
	Schema *state.Schema
}

// RenderPhase produces a message or modal from the current vector.
// Event is nil on the initial render of a freshly opened menu.
type RenderPhase struct {
	Vector *state.Vector
	Event  *Event
}

// HandlePhase replays the definition against the state an interaction
// carried, so the matching element's handler can read and write it.
type HandlePhase struct {
	Vector *state.Vector
	Event  Event
}

func (BuildPhase) isPhase()  {}
func (RenderPhase) isPhase() {}
func (HandlePhase) isPhase() {}

func (BuildPhase) String() string  { return "build" }
func (RenderPhase) String() string { return "render" }
func (HandlePhase) String() string { return "handle" }
