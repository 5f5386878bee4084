package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/roach88/menukit/internal/menu"
)

var buttonStyles = map[menu.ButtonStyle]discordgo.ButtonStyle{
	menu.StylePrimary:   discordgo.PrimaryButton,
	menu.StyleSecondary: discordgo.SecondaryButton,
	menu.StyleSuccess:   discordgo.SuccessButton,
	menu.StyleDanger:    discordgo.DangerButton,
}

// Components renders a message's rows as action rows.
func Components(msg *menu.Message) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, len(msg.Rows))
	for _, row := range msg.Rows {
		comps := make([]discordgo.MessageComponent, 0, len(row.Components))
		for _, c := range row.Components {
			comps = append(comps, component(c))
		}
		rows = append(rows, discordgo.ActionsRow{Components: comps})
	}
	return rows
}

func component(c menu.Component) discordgo.MessageComponent {
	switch c.Kind {
	case menu.KindSelect:
		options := make([]discordgo.SelectMenuOption, len(c.Options))
		for i, o := range c.Options {
			options[i] = discordgo.SelectMenuOption{
				Label:       o.Label,
				Value:       o.Value,
				Description: o.Description,
				Default:     o.Default,
			}
		}
		sel := discordgo.SelectMenu{
			MenuType:    discordgo.StringSelectMenu,
			CustomID:    c.ID,
			Placeholder: c.Placeholder,
			Options:     options,
			MaxValues:   c.MaxValues,
			Disabled:    c.Disabled,
		}
		if c.MinValues > 0 {
			minValues := c.MinValues
			sel.MinValues = &minValues
		}
		return sel
	case menu.KindLink:
		return discordgo.Button{
			Label:    c.Label,
			Style:    discordgo.LinkButton,
			URL:      c.URL,
			Disabled: c.Disabled,
		}
	default:
		style, ok := buttonStyles[c.Style]
		if !ok {
			style = discordgo.SecondaryButton
		}
		return discordgo.Button{
			Label:    c.Label,
			Style:    style,
			CustomID: c.ID,
			Disabled: c.Disabled,
		}
	}
}

// Embeds renders a message's embeds.
func Embeds(msg *menu.Message) []*discordgo.MessageEmbed {
	embeds := make([]*discordgo.MessageEmbed, 0, len(msg.Embeds))
	for _, e := range msg.Embeds {
		embed := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		if e.Footer != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
		}
		embeds = append(embeds, embed)
	}
	return embeds
}

// MessageData renders a message as interaction response data.
func MessageData(msg *menu.Message) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    msg.Content,
		Embeds:     Embeds(msg),
		Components: Components(msg),
	}
}

// ModalData renders a modal as interaction response data. Each text input
// sits in its own action row.
func ModalData(m *menu.Modal) *discordgo.InteractionResponseData {
	rows := make([]discordgo.MessageComponent, 0, len(m.Inputs))
	for _, in := range m.Inputs {
		style := discordgo.TextInputShort
		if in.Style == menu.InputParagraph {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    in.ID,
				Label:       in.Label,
				Style:       style,
				Placeholder: in.Placeholder,
				Value:       in.Value,
				Required:    in.Required,
				MinLength:   in.MinLength,
				MaxLength:   in.MaxLength,
			},
		}})
	}
	return &discordgo.InteractionResponseData{
		CustomID:   m.ID,
		Title:      m.Title,
		Components: rows,
	}
}

// ComponentIDs flattens the custom IDs of a message's components in
// display order. Link buttons carry none and are skipped.
func ComponentIDs(comps []discordgo.MessageComponent) []string {
	var ids []string
	for _, c := range comps {
		switch v := c.(type) {
		case *discordgo.ActionsRow:
			ids = append(ids, ComponentIDs(v.Components)...)
		case discordgo.ActionsRow:
			ids = append(ids, ComponentIDs(v.Components)...)
		case *discordgo.Button:
			ids = appendID(ids, v.CustomID)
		case discordgo.Button:
			ids = appendID(ids, v.CustomID)
		case *discordgo.SelectMenu:
			ids = appendID(ids, v.CustomID)
		case discordgo.SelectMenu:
			ids = appendID(ids, v.CustomID)
		case *discordgo.TextInput:
			ids = appendID(ids, v.CustomID)
		case discordgo.TextInput:
			ids = appendID(ids, v.CustomID)
		}
	}
	return ids
}

func appendID(ids []string, id string) []string {
	if id == "" {
		return ids
	}
	return append(ids, id)
}

// textInputs maps each submitted text input's custom ID to its value.
func textInputs(comps []discordgo.MessageComponent, out map[string]string) {
	for _, c := range comps {
		switch v := c.(type) {
		case *discordgo.ActionsRow:
			textInputs(v.Components, out)
		case discordgo.ActionsRow:
			textInputs(v.Components, out)
		case *discordgo.TextInput:
			out[v.CustomID] = v.Value
		case discordgo.TextInput:
			out[v.CustomID] = v.Value
		}
	}
}
