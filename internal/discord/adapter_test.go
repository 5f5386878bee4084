package discord

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/menukit/internal/ir"
	"github.com/roach88/menukit/internal/menu"
	"github.com/roach88/menukit/internal/state"
)

type fakeResponder struct {
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeResponder) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func testMenus() []*menu.Menu {
	return []*menu.Menu{
		menu.New("counter", func(c *menu.Context) {
			n := menu.State(c, menu.Int, 0)
			c.Textf("count: %d", n.Get())
			c.Embed(menu.Embed{Title: "Counter", Footer: "footer"})
			c.Row(func() {
				c.Button("inc", "+1", func(context.Context, *menu.Interaction) error {
					n.Set(n.Get() + 1)
					return nil
				}, menu.WithStyle(menu.StyleSuccess))
				c.Button("slow", "Slow", func(ctx context.Context, in *menu.Interaction) error {
					if err := in.Defer(ctx); err != nil {
						return err
					}
					n.Set(n.Get() + 10)
					return nil
				})
				c.Button("noop", "Noop", func(context.Context, *menu.Interaction) error { return nil })
				c.Button("rename", "Rename", func(_ context.Context, in *menu.Interaction) error {
					in.Switch("counter.name")
					return nil
				})
				c.Link("Docs", "https://example.com")
			})
			c.Row(func() {
				c.Select("pick", []menu.SelectOption{{Label: "One", Value: "1"}, {Label: "Two", Value: "2"}},
					func(_ context.Context, in *menu.Interaction) error {
						if len(in.Values()) == 1 && in.Values()[0] == "2" {
							n.Set(2)
						}
						return nil
					}, menu.Placeholder("pick"), menu.Choose(1, 1))
			})
		}),
		menu.New("counter.name", func(c *menu.Context) {
			c.Title("Name")
			c.TextInput("text", "Text", menu.Paragraph(), menu.Hint("type"))
			c.OnSubmit(func(_ context.Context, in *menu.Interaction) error {
				text, _ := in.Field("text")
				in.SwitchWith("counter", func(b *state.Builder) {
					b.Push(ir.Int(int64(len(text))))
				})
				return nil
			})
		}, menu.AsModal()),
	}
}

func newAdapter(t *testing.T) (*Adapter, *menu.Dispatcher) {
	t.Helper()
	reg, err := menu.NewRegistry(testMenus())
	require.NoError(t, err)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := menu.NewDispatcher(reg, menu.WithLogger(quiet))
	return New(d, WithLogger(quiet)), d
}

func openCounter(t *testing.T, d *menu.Dispatcher) *menu.Message {
	t.Helper()
	out, err := d.Open(context.Background(), "counter")
	require.NoError(t, err)
	return out.Message
}

// clickEvent builds the interaction Discord sends for a click on msg, with
// components decoded into pointers as discordgo does.
func clickEvent(t *testing.T, msg *menu.Message, name string, values ...string) *discordgo.InteractionCreate {
	t.Helper()
	comp, ok := msg.Find(name)
	require.True(t, ok)

	var rows []discordgo.MessageComponent
	for _, row := range Components(msg) {
		ar := row.(discordgo.ActionsRow)
		inner := make([]discordgo.MessageComponent, len(ar.Components))
		for i, c := range ar.Components {
			switch v := c.(type) {
			case discordgo.Button:
				inner[i] = &v
			case discordgo.SelectMenu:
				inner[i] = &v
			}
		}
		rows = append(rows, &discordgo.ActionsRow{Components: inner})
	}

	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		Message: &discordgo.Message{Components: rows},
		Data:    discordgo.MessageComponentInteractionData{CustomID: comp.ID, Values: values},
	}}
}

func TestComponents_Render(t *testing.T) {
	_, d := newAdapter(t)
	msg := openCounter(t, d)

	rows := Components(msg)
	require.Len(t, rows, 2)
	first := rows[0].(discordgo.ActionsRow)
	require.Len(t, first.Components, 5)

	inc := first.Components[0].(discordgo.Button)
	assert.Equal(t, discordgo.SuccessButton, inc.Style)
	assert.Equal(t, "counter:inc:AAUA", inc.CustomID)

	link := first.Components[4].(discordgo.Button)
	assert.Equal(t, discordgo.LinkButton, link.Style)
	assert.Equal(t, "https://example.com", link.URL)
	assert.Empty(t, link.CustomID)

	sel := rows[1].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	assert.Equal(t, "pick", sel.Placeholder)
	require.NotNil(t, sel.MinValues)
	assert.Equal(t, 1, *sel.MinValues)
	assert.Equal(t, 1, sel.MaxValues)
	assert.Len(t, sel.Options, 2)

	embeds := Embeds(msg)
	require.Len(t, embeds, 1)
	assert.Equal(t, "footer", embeds[0].Footer.Text)

	assert.Equal(t, msg.IDs(), ComponentIDs(rows), "flattening rendered rows recovers the identifiers")
}

func TestHandle_ClickUpdatesMessage(t *testing.T) {
	a, d := newAdapter(t)
	r := &fakeResponder{}
	msg := openCounter(t, d)

	require.NoError(t, a.Handle(context.Background(), r, clickEvent(t, msg, "inc")))

	require.Len(t, r.responses, 1)
	resp := r.responses[0]
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, resp.Type)
	assert.Equal(t, "count: 1", resp.Data.Content)
	assert.Equal(t, "counter:inc:AAUC", ComponentIDs(resp.Data.Components)[0])
}

func TestHandle_AckDefersWithoutData(t *testing.T) {
	a, d := newAdapter(t)
	r := &fakeResponder{}
	msg := openCounter(t, d)

	require.NoError(t, a.Handle(context.Background(), r, clickEvent(t, msg, "noop")))
	require.Len(t, r.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, r.responses[0].Type)
	assert.Nil(t, r.responses[0].Data)
}

func TestHandle_DeferredHandlerEditsMessage(t *testing.T) {
	a, d := newAdapter(t)
	r := &fakeResponder{}
	msg := openCounter(t, d)

	require.NoError(t, a.Handle(context.Background(), r, clickEvent(t, msg, "slow")))

	require.Len(t, r.responses, 1, "only the deferral answers the interaction")
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, r.responses[0].Type)
	require.Len(t, r.edits, 1)
	require.NotNil(t, r.edits[0].Content)
	assert.Equal(t, "count: 10", *r.edits[0].Content)
}

func TestHandle_SelectValues(t *testing.T) {
	a, d := newAdapter(t)
	r := &fakeResponder{}
	msg := openCounter(t, d)

	require.NoError(t, a.Handle(context.Background(), r, clickEvent(t, msg, "pick", "2")))
	require.Len(t, r.responses, 1)
	assert.Equal(t, "count: 2", r.responses[0].Data.Content)
}

func TestHandle_ModalRoundTrip(t *testing.T) {
	a, d := newAdapter(t)
	r := &fakeResponder{}
	msg := openCounter(t, d)

	require.NoError(t, a.Handle(context.Background(), r, clickEvent(t, msg, "rename")))
	require.Len(t, r.responses, 1)
	modal := r.responses[0]
	assert.Equal(t, discordgo.InteractionResponseModal, modal.Type)
	assert.Equal(t, "Name", modal.Data.Title)

	input := modal.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
	assert.Equal(t, discordgo.TextInputParagraph, input.Style)
	assert.Equal(t, "type", input.Placeholder)

	submit := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionModalSubmit,
		Message: &discordgo.Message{ID: "m1"},
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: modal.Data.CustomID,
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: input.CustomID, Value: "hello"},
				}},
			},
		},
	}}
	require.NoError(t, a.Handle(context.Background(), r, submit))
	require.Len(t, r.responses, 2)
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, r.responses[1].Type)
	assert.Equal(t, "count: 5", r.responses[1].Data.Content)
}

func TestModalEvent(t *testing.T) {
	ev := ModalEvent(discordgo.ModalSubmitInteractionData{
		CustomID: "m:submit:AA",
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "m:a:BB", Value: "x"},
			}},
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: "m:b:", Value: "y"},
			}},
		},
	})
	assert.Equal(t, "m:submit:AA", ev.ID)
	assert.Equal(t, []string{"m:submit:AA", "m:a:BB", "m:b:"}, ev.Components)
	assert.Equal(t, map[string]string{"m:a:BB": "x", "m:b:": "y"}, ev.Fields)
}

func TestHandle_ErrorsReplyEphemerally(t *testing.T) {
	a, _ := newAdapter(t)
	r := &fakeResponder{}

	stale := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		Message: &discordgo.Message{},
		Data:    discordgo.MessageComponentInteractionData{CustomID: "counter:gone:AAUA"},
	}}
	err := a.Handle(context.Background(), r, stale)
	require.Error(t, err)
	assert.True(t, menu.IsUnknownElement(err))

	require.Len(t, r.responses, 1)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, r.responses[0].Data.Flags)
	assert.Equal(t, "This menu is out of date. Open it again.", r.responses[0].Data.Content)
}

func TestHandle_SlashCommandOpensMenu(t *testing.T) {
	a, d := newAdapter(t)
	r := &fakeResponder{}

	cmd := a.Command(d.Registry().Paths())
	assert.Equal(t, DefaultCommand, cmd.Name)
	require.Len(t, cmd.Options[0].Choices, 1, "modal menus are not offered")
	assert.Equal(t, "counter", cmd.Options[0].Choices[0].Value)

	open := func(name, path string) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name: name,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "path", Type: discordgo.ApplicationCommandOptionString, Value: path},
				},
			},
		}}
	}

	require.NoError(t, a.Handle(context.Background(), r, open("menu", "counter")))
	require.Len(t, r.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, r.responses[0].Type)
	assert.Equal(t, "count: 0", r.responses[0].Data.Content)

	require.NoError(t, a.Handle(context.Background(), r, open("menu", "counter.name")))
	assert.Equal(t, discordgo.InteractionResponseModal, r.responses[1].Type)

	require.NoError(t, a.Handle(context.Background(), r, open("other", "counter")))
	assert.Len(t, r.responses, 2, "other commands are ignored")

	err := a.Handle(context.Background(), r, open("menu", "missing"))
	assert.True(t, menu.HasCode(err, menu.ErrCodeUnknownMenu))
	assert.Equal(t, discordgo.MessageFlagsEphemeral, r.responses[2].Data.Flags)
}

func TestHandle_ModalWithoutMessagePostsReply(t *testing.T) {
	a, d := newAdapter(t)
	r := &fakeResponder{}

	out, err := d.Open(context.Background(), "counter.name")
	require.NoError(t, err)
	require.NotNil(t, out.Modal)
	data := ModalData(out.Modal)
	input := data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.TextInput)

	submit := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionModalSubmit,
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: data.CustomID,
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: input.CustomID, Value: "abc"},
				}},
			},
		},
	}}
	require.NoError(t, a.Handle(context.Background(), r, submit))
	require.Len(t, r.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, r.responses[0].Type)
	assert.Equal(t, "count: 3", r.responses[0].Data.Content)
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "Something went wrong.", ErrorText(errors.New("plain")))
	_, _, _, err := menu.ParseID("nope")
	assert.Equal(t, "This button does not belong to a menu.", ErrorText(err))
}
