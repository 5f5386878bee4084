// Package demo declares the sample menus served by the menukit command.
//
// The set exercises every kind of state the menu package offers: a plain
// counter, a paginated catalogue, a settings tree whose children inherit the
// parent's slots, a detached notes page backed by shared state, and a modal
// that writes back into its parent.
package demo

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/menukit/internal/ir"
	"github.com/roach88/menukit/internal/menu"
	"github.com/roach88/menukit/internal/state"
)

// PerPage is how many catalogue entries the browse menu shows at once.
const PerPage = 5

// Fruits is the catalogue listed by the browse menu.
var Fruits = []string{
	"apple", "apricot", "banana", "blackberry", "blueberry",
	"cherry", "coconut", "cranberry", "date", "dragonfruit",
	"elderberry", "fig", "gooseberry", "grape", "guava",
	"kiwi", "lemon", "lime", "lychee", "mango",
	"melon", "nectarine", "orange",
}

// Themes are the values of the settings menu's theme slot.
var Themes = []string{"light", "dark", "contrast"}

// Menus returns a fresh copy of every demo menu. Shared state lives in the
// returned menus, so each call starts from zero.
func Menus() []*menu.Menu {
	return []*menu.Menu{
		Counter(),
		Browse(Fruits),
		Settings(),
		Profile(),
		Rename(),
		Notes(),
	}
}

// Counter counts clicks. Opening it with a value starts from that value.
func Counter() *menu.Menu {
	return menu.New("counter", func(c *menu.Context) {
		count := menu.State(c, menu.Int, 0)
		c.Textf("count: %d", count.Get())
		c.Row(func() {
			c.Button("dec", "-1", func(context.Context, *menu.Interaction) error {
				count.Update(func(n int) int { return n - 1 })
				return nil
			})
			c.Button("inc", "+1", func(context.Context, *menu.Interaction) error {
				count.Update(func(n int) int { return n + 1 })
				return nil
			}, menu.WithStyle(menu.StylePrimary))
			c.Button("reset", "Reset", func(context.Context, *menu.Interaction) error {
				count.Set(0)
				return nil
			}, menu.WithStyle(menu.StyleDanger), menu.Disabled(count.Get() == 0))
		})
	})
}

// Browse pages through items and remembers the one picked last.
func Browse(items []string) *menu.Menu {
	return menu.New("browse", func(c *menu.Context) {
		pager := menu.Paginate(c)
		picked := menu.State(c, menu.Nullable(menu.String), nil)
		catalogue := menu.Lazy(c, func(context.Context) ([]string, error) {
			return items, nil
		})

		list, err := catalogue.Get()
		if err != nil {
			c.Fail(err)
			return
		}
		pages := menu.Pages(len(list), PerPage)
		start, end := pager.Window(len(list), PerPage)

		var b strings.Builder
		fmt.Fprintf(&b, "page %d/%d", pager.Clamp(pages)+1, pages)
		if p := picked.Get(); p != nil {
			fmt.Fprintf(&b, " picked %s", *p)
		}
		c.Text(b.String())

		options := make([]menu.SelectOption, 0, end-start)
		for _, item := range list[start:end] {
			options = append(options, menu.SelectOption{Label: item, Value: item})
		}
		if len(options) > 0 {
			c.Row(func() {
				c.Select("pick", options, func(_ context.Context, in *menu.Interaction) error {
					values := in.Values()
					if len(values) != 1 {
						return fmt.Errorf("want one pick, got %d", len(values))
					}
					v := values[0]
					picked.Set(&v)
					return nil
				}, menu.Placeholder("Pick one"))
			})
		}
		pager.Controls(pages)
	})
}

// Settings holds a volume and a theme. Its children see both.
func Settings() *menu.Menu {
	return menu.New("settings", func(c *menu.Context) {
		volume := menu.State(c, menu.Int, 5)
		theme := menu.State(c, menu.Enum(Themes...), Themes[0])
		c.Embed(menu.Embed{
			Title:       "Settings",
			Description: fmt.Sprintf("volume %d, theme %s", volume.Get(), theme.Get()),
		})
		c.Row(func() {
			c.Button("down", "-", func(context.Context, *menu.Interaction) error {
				volume.Update(func(v int) int { return max(v-1, 0) })
				return nil
			}, menu.Disabled(volume.Get() == 0))
			c.Button("up", "+", func(context.Context, *menu.Interaction) error {
				volume.Update(func(v int) int { return min(v+1, 10) })
				return nil
			}, menu.Disabled(volume.Get() == 10))
			c.Button("theme", "Theme", func(context.Context, *menu.Interaction) error {
				theme.Set(nextTheme(theme.Get()))
				return nil
			})
		})
		c.Row(func() {
			c.Button("profile", "Profile", func(_ context.Context, in *menu.Interaction) error {
				in.Switch("settings.profile")
				return nil
			}, menu.WithStyle(menu.StylePrimary))
			c.Button("notes", "Notes", func(_ context.Context, in *menu.Interaction) error {
				in.Switch("settings.notes")
				return nil
			})
		})
	}, menu.WithID("set"))
}

func nextTheme(current string) string {
	for i, t := range Themes {
		if t == current {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// Profile shows a name next to the inherited volume.
func Profile() *menu.Menu {
	return menu.New("settings.profile", func(c *menu.Context) {
		volume := menu.Inherit(c, menu.Int, 0)
		name := menu.State(c, menu.String, "anon")
		c.Textf("%s listens at volume %d", name.Get(), volume.Get())
		c.Row(func() {
			c.Button("louder", "+", func(context.Context, *menu.Interaction) error {
				volume.Update(func(v int) int { return min(v+1, 10) })
				return nil
			})
			c.Button("rename", "Rename", func(_ context.Context, in *menu.Interaction) error {
				in.Switch("settings.profile.rename")
				return nil
			})
			c.Button("back", "Back", func(_ context.Context, in *menu.Interaction) error {
				in.Switch("settings")
				return nil
			})
		})
	}, menu.WithID("prof"))
}

// Rename is a modal that writes a new name into the profile.
func Rename() *menu.Menu {
	return menu.New("settings.profile.rename", func(c *menu.Context) {
		current := menu.Inherit(c, menu.String, 2)
		c.Title("Rename")
		c.TextInput("name", "New name", menu.Length(1, 32), menu.Prefill(current.Get()))
		c.OnSubmit(func(_ context.Context, in *menu.Interaction) error {
			name, _ := in.Field("name")
			name = strings.TrimSpace(name)
			if name == "" {
				in.PreventUpdate()
				return nil
			}
			in.SwitchWith("settings.profile", func(b *state.Builder) {
				b.Copy(2).Push(ir.String(name))
			})
			return nil
		})
	}, menu.WithID("ren"), menu.AsModal())
}

// Notes counts visits across every message. It keeps no slots of its own
// parent, so its identifiers stay short.
func Notes() *menu.Menu {
	return menu.New("settings.notes", func(c *menu.Context) {
		hits := menu.Shared(c, menu.Int, 0)
		c.Textf("notes page viewed %d times", hits.Get())
		c.Row(func() {
			c.Button("hit", "Visit", func(context.Context, *menu.Interaction) error {
				hits.Update(func(n int) int { return n + 1 })
				return nil
			})
			c.Button("back", "Back", func(_ context.Context, in *menu.Interaction) error {
				in.Switch("settings")
				return nil
			})
		})
	}, menu.WithID("notes"), menu.Detached())
}
