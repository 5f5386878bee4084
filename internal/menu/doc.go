// Package menu builds stateful chat menus whose state lives entirely in the
// identifiers of the components they render.
//
// A menu is a Definition replayed in three phases:
//
//   - build runs once when the Registry is created and records the ordered
//     slot schema;
//   - render produces a Message or Modal and spreads the encoded state across
//     the identifiers of its components;
//   - handle replays the definition against the state an interaction carried
//     and runs the one handler whose element was activated.
//
// The phase is explicit: every declaration takes the *Context and switches on
// Context.Phase. After a handler, the Dispatcher re-renders only when the
// state now encodes differently, the handler forced it, or the handler moved
// to another menu.
//
// Identifiers have the form <menuID>:<element>:<slice>. The slices of one
// message, in emission order, concatenate to the state blob. Render fails
// with CAPACITY_EXHAUSTED rather than truncate state that does not fit.
package menu
