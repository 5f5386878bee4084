// Package discord connects menus to Discord interactions through discordgo.
//
// Component clicks and modal submissions become menu.Events: the activated
// custom ID, every custom ID on the message (or modal) in display order, the
// picked select values and the submitted text. The dispatcher's Response is
// answered with the matching interaction response: a message update, a
// deferred update, or a modal. A slash command opens menus by path.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/roach88/menukit/internal/menu"
)

// Responder is the part of *discordgo.Session the adapter answers through.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ Responder = (*discordgo.Session)(nil)

// DefaultCommand is the slash command that opens menus.
const DefaultCommand = "menu"

// Adapter routes Discord interactions to a dispatcher.
type Adapter struct {
	dispatcher *menu.Dispatcher
	log        *slog.Logger
	command    string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// WithCommand renames the slash command that opens menus.
func WithCommand(name string) Option {
	return func(a *Adapter) { a.command = name }
}

// New creates an adapter for d.
func New(d *menu.Dispatcher, opts ...Option) *Adapter {
	a := &Adapter{dispatcher: d, log: slog.Default(), command: DefaultCommand}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Command describes the slash command that opens one of paths. Modal menus
// are left out: a modal opened without a message has nothing to update when
// it is submitted. Discord allows at most 25 choices; longer lists are
// truncated.
func (a *Adapter) Command(paths []string) *discordgo.ApplicationCommand {
	reg := a.dispatcher.Registry()
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, p := range paths {
		if reg.Modal(p) {
			continue
		}
		if len(choices) == 25 {
			break
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: p, Value: p})
	}
	return &discordgo.ApplicationCommand{
		Name:        a.command,
		Description: "Open a menu",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "path",
			Description: "Menu to open",
			Required:    true,
			Choices:     choices,
		}},
	}
}

// Handler returns a function for discordgo.Session.AddHandler.
func (a *Adapter) Handler() func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if s == nil || i == nil || i.Interaction == nil {
			return
		}
		if err := a.Handle(context.Background(), s, i); err != nil {
			a.log.Warn("interaction failed", "type", i.Type.String(), "error", err)
		}
	}
}

// Handle answers one interaction. Interactions that carry no menu (other
// commands, autocomplete) are ignored.
func (a *Adapter) Handle(ctx context.Context, r Responder, i *discordgo.InteractionCreate) error {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		var ids []string
		if i.Message != nil {
			ids = ComponentIDs(i.Message.Components)
		}
		return a.dispatch(ctx, r, i, ComponentEvent(i.MessageComponentData(), ids))
	case discordgo.InteractionModalSubmit:
		return a.dispatch(ctx, r, i, ModalEvent(i.ModalSubmitData()))
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		if data.Name != a.command {
			return nil
		}
		return a.open(ctx, r, i, data)
	default:
		return nil
	}
}

// ComponentEvent builds the event of a component click. ids are the custom
// IDs on the clicked message.
func ComponentEvent(data discordgo.MessageComponentInteractionData, ids []string) menu.Event {
	return menu.Event{ID: data.CustomID, Components: ids, Values: data.Values}
}

// ModalEvent builds the event of a modal submission. The modal's custom ID
// leads the component list, followed by each input's.
func ModalEvent(data discordgo.ModalSubmitInteractionData) menu.Event {
	fields := make(map[string]string)
	textInputs(data.Components, fields)
	ids := append([]string{data.CustomID}, ComponentIDs(data.Components)...)
	return menu.Event{ID: data.CustomID, Components: ids, Fields: fields}
}

func (a *Adapter) dispatch(ctx context.Context, r Responder, i *discordgo.InteractionCreate, ev menu.Event) error {
	acked := false
	ev.Ack = func(context.Context) error {
		acked = true
		return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
	}

	resp, err := a.dispatcher.Dispatch(ctx, ev)
	if err != nil {
		if !acked {
			if rerr := a.reportError(r, i, err); rerr != nil {
				a.log.Warn("error reply failed", "error", rerr)
			}
		}
		return err
	}
	return a.respond(r, i, resp, acked)
}

func (a *Adapter) respond(r Responder, i *discordgo.InteractionCreate, resp *menu.Response, acked bool) error {
	switch resp.Kind {
	case menu.ResponseUpdate:
		if acked {
			content := resp.Message.Content
			comps := Components(resp.Message)
			embeds := Embeds(resp.Message)
			_, err := r.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content:    &content,
				Components: &comps,
				Embeds:     &embeds,
			})
			return err
		}
		kind := discordgo.InteractionResponseUpdateMessage
		if i.Message == nil {
			// A modal opened by a command has no message to update.
			kind = discordgo.InteractionResponseChannelMessageWithSource
		}
		return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: kind,
			Data: MessageData(resp.Message),
		})
	case menu.ResponseModal:
		if acked {
			return fmt.Errorf("menu %s: cannot open a modal after deferring", resp.Menu)
		}
		return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: ModalData(resp.Modal),
		})
	default:
		if acked {
			return nil
		}
		return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
	}
}

func (a *Adapter) open(ctx context.Context, r Responder, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	var path string
	for _, opt := range data.Options {
		if opt.Name == "path" {
			path = opt.StringValue()
		}
	}

	out, err := a.dispatcher.Open(ctx, path)
	if err != nil {
		if rerr := a.reportError(r, i, err); rerr != nil {
			a.log.Warn("error reply failed", "error", rerr)
		}
		return err
	}
	switch {
	case out.Modal != nil:
		return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: ModalData(out.Modal),
		})
	case out.Message != nil:
		return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: MessageData(out.Message),
		})
	default:
		return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: "Nothing to show.", Flags: discordgo.MessageFlagsEphemeral},
		})
	}
}

// reportError answers a failed interaction with an ephemeral note.
func (a *Adapter) reportError(r Responder, i *discordgo.InteractionCreate, err error) error {
	return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: ErrorText(err),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// ErrorText is the user-facing note for a failed interaction.
func ErrorText(err error) string {
	var me *menu.Error
	if !errors.As(err, &me) {
		return "Something went wrong."
	}
	switch me.Code {
	case menu.ErrCodeUnknownElement, menu.ErrCodeDecodeMismatch, menu.ErrCodeUnknownMenu:
		return "This menu is out of date. Open it again."
	case menu.ErrCodeMalformedID:
		return "This button does not belong to a menu."
	default:
		return "Something went wrong."
	}
}
