package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/menukit/internal/ir"
	"github.com/roach88/menukit/internal/menu"
)

// TraceSnapshot is what a golden file pins: the opening render, every
// dispatch and the state the session ended in.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Opened       TraceEvent   `json:"opened"`
	Trace        []TraceEvent `json:"trace"`
	Menu         string       `json:"menu"`
	State        []ir.Value   `json:"state"`
}

// canonical lowers the snapshot to maps and slices ir.MarshalCanonical
// accepts.
func (s *TraceSnapshot) canonical() map[string]any {
	events := make([]any, 0, len(s.Trace))
	for _, ev := range s.Trace {
		events = append(events, eventMap(ev))
	}
	state := make([]any, 0, len(s.State))
	for _, v := range s.State {
		state = append(state, v)
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"opened":        eventMap(s.Opened),
		"trace":         events,
		"menu":          s.Menu,
		"state":         state,
	}
}

func eventMap(event TraceEvent) map[string]any {
	m := map[string]any{
		"response": event.Response,
		"menu":     event.Menu,
	}
	if event.Step > 0 {
		m["step"] = event.Step
		m["seq"] = event.Seq
		m["element"] = event.Element
	}
	if event.Content != "" {
		m["content"] = event.Content
	}
	if len(event.IDs) > 0 {
		ids := make([]any, len(event.IDs))
		for i, id := range event.IDs {
			ids[i] = id
		}
		m["ids"] = ids
	}
	if event.Error != "" {
		m["error"] = event.Error
	}
	if event.BlobBefore != "" {
		m["blob_before"] = event.BlobBefore
	}
	if event.BlobAfter != "" {
		m["blob_after"] = event.BlobAfter
	}
	return m
}

// RunWithGolden runs scenario and compares its snapshot with
// testdata/golden/<name>.golden. Pass -update to go test to rewrite it.
func RunWithGolden(t *testing.T, scenario *Scenario, menus []*menu.Menu) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, menus)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}
	goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	).Assert(t, name, data)
	return nil
}

// Snapshot renders a result as canonical JSON, the golden file format.
func Snapshot(name string, result *Result) ([]byte, error) {
	snap := TraceSnapshot{
		ScenarioName: name,
		Opened:       result.Opened,
		Trace:        result.Trace,
		Menu:         result.Menu,
		State:        result.State,
	}
	return ir.MarshalCanonical(snap.canonical())
}
