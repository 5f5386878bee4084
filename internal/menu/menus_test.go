package menu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/menukit/internal/ir"
	"github.com/roach88/menukit/internal/state"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(t *testing.T, menus []*Menu, opts ...DispatcherOption) *Dispatcher {
	t.Helper()
	reg, err := NewRegistry(menus)
	require.NoError(t, err)
	return NewDispatcher(reg, append([]DispatcherOption{WithLogger(quietLogger())}, opts...)...)
}

func open(t *testing.T, d *Dispatcher, path string, values ...ir.Value) *Message {
	t.Helper()
	out, err := d.Open(context.Background(), path, values...)
	require.NoError(t, err)
	require.False(t, out.Aborted)
	require.NotNil(t, out.Message)
	return out.Message
}

func click(t *testing.T, d *Dispatcher, msg *Message, name string, values ...string) (*Response, error) {
	t.Helper()
	comp, ok := msg.Find(name)
	require.True(t, ok, "message has no element %q", name)
	return d.Dispatch(context.Background(), Event{ID: comp.ID, Components: msg.IDs(), Values: values})
}

func mustClick(t *testing.T, d *Dispatcher, msg *Message, name string, values ...string) *Response {
	t.Helper()
	resp, err := click(t, d, msg, name, values...)
	require.NoError(t, err)
	return resp
}

func counterMenu() *Menu {
	return New("counter", func(c *Context) {
		count := State(c, Int, 0)
		c.Textf("count: %d", count.Get())
		c.Row(func() {
			c.Button("inc", "+1", func(context.Context, *Interaction) error {
				count.Update(func(n int) int { return n + 1 })
				return nil
			}, WithStyle(StylePrimary))
		})
	})
}

// decideMenu has one button per re-render case.
func decideMenu() *Menu {
	return New("decide", func(c *Context) {
		n := State(c, Int, 0)
		c.Textf("n=%d", n.Get())
		c.Row(func() {
			c.Button("noop", "noop", func(context.Context, *Interaction) error { return nil })
			c.Button("read", "read", func(context.Context, *Interaction) error {
				_ = n.Get()
				return nil
			})
			c.Button("same", "same", func(context.Context, *Interaction) error {
				n.Set(n.Get())
				return nil
			})
			c.Button("mutate", "mutate", func(context.Context, *Interaction) error {
				n.Set(n.Get() + 1)
				return nil
			})
			c.Button("force", "force", func(_ context.Context, in *Interaction) error {
				in.ForceUpdate()
				return nil
			})
		})
		c.Row(func() {
			c.Button("prevent", "prevent", func(_ context.Context, in *Interaction) error {
				n.Set(n.Get() + 1)
				in.PreventUpdate()
				return nil
			})
			c.Button("terminate", "terminate", func(context.Context, *Interaction) error {
				n.Set(n.Get() + 1)
				return ErrTerminated
			})
			c.Button("boom", "boom", func(context.Context, *Interaction) error {
				panic("handler exploded")
			})
			c.Button("fail", "fail", func(context.Context, *Interaction) error {
				return fmt.Errorf("backend unavailable")
			})
		})
	})
}

// settingsMenus is a parent with an inheriting child, a detached child and
// a modal.
func settingsMenus() []*Menu {
	return []*Menu{
		New("settings", func(c *Context) {
			volume := State(c, Int, 5)
			c.Textf("volume %d", volume.Get())
			c.Row(func() {
				c.Button("up", "+", func(context.Context, *Interaction) error {
					volume.Update(func(v int) int { return v + 1 })
					return nil
				})
				c.Button("profile", "Profile", func(_ context.Context, in *Interaction) error {
					in.Switch("settings.profile")
					return nil
				})
				c.Button("notes", "Notes", func(_ context.Context, in *Interaction) error {
					in.Switch("settings.notes")
					return nil
				})
			})
		}, WithID("s")),

		New("settings.profile", func(c *Context) {
			volume := Inherit(c, Int, 0)
			name := State(c, String, "anon")
			c.Textf("%s at volume %d", name.Get(), volume.Get())
			c.Row(func() {
				c.Button("louder", "+", func(context.Context, *Interaction) error {
					volume.Update(func(v int) int { return v + 1 })
					return nil
				})
				c.Button("rename", "Rename", func(_ context.Context, in *Interaction) error {
					in.Switch("settings.rename")
					return nil
				})
				c.Button("back", "Back", func(_ context.Context, in *Interaction) error {
					in.Switch("settings")
					return nil
				})
			})
		}, WithID("sp")),

		New("settings.rename", func(c *Context) {
			c.Title("Rename")
			c.TextInput("name", "New name", Length(1, 32))
			c.OnSubmit(func(_ context.Context, in *Interaction) error {
				name, ok := in.Field("name")
				if !ok {
					return fmt.Errorf("name missing from submission")
				}
				in.SwitchWith("settings.profile", func(b *state.Builder) {
					b.Copy(1).Push(ir.String(name))
				})
				return nil
			})
		}, WithID("sr"), AsModal()),

		New("settings.notes", func(c *Context) {
			hits := Shared(c, Int, 0)
			draft := State(c, String, "")
			c.Textf("hits %d draft %q", hits.Get(), draft.Get())
			c.Row(func() {
				c.Button("hit", "Hit", func(context.Context, *Interaction) error {
					hits.Update(func(n int) int { return n + 1 })
					return nil
				})
				c.Button("back", "Back", func(_ context.Context, in *Interaction) error {
					in.Switch("settings")
					return nil
				})
			})
		}, WithID("sn"), Detached()),
	}
}
