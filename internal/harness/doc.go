// Package harness runs scripted menu sessions from YAML scenarios.
//
// A scenario opens one menu and then clicks elements, submits modals and
// picks select options the way a user would, feeding every identifier the
// previous response emitted back into the next event. Nothing is mocked:
// each step goes through menu.Dispatcher, so a scenario exercises the real
// encode, slice, decode and re-render path.
//
// Steps may carry an expect clause (response kind, menu, content, decoded
// state, error code). Assertions then check the whole session, and
// RunWithGolden pins the trace, identifiers included, to a golden file so
// any change to the wire format shows up as a diff.
//
//	name: counter
//	description: Two clicks increment the count
//	menu: counter
//	steps:
//	  - click: inc
//	    expect: {response: update, content: "count: 1"}
//	  - click: inc
//	assertions:
//	  - type: final_state
//	    state: [2]
package harness
