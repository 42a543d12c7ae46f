// Package handler implements the slash command and component handlers that
// sit between Discord interactions and the economy services.
package handler

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// InteractionFunc is the shape every interaction handler takes.
type InteractionFunc func(s *discordgo.Session, i *discordgo.InteractionCreate)

// InteractionUserID extracts the numeric user ID from an interaction,
// whether it arrived from a guild or a DM.
func InteractionUserID(i *discordgo.InteractionCreate) int64 {
	var raw string
	switch {
	case i.Member != nil && i.Member.User != nil:
		raw = i.Member.User.ID
	case i.User != nil:
		raw = i.User.ID
	}
	id, _ := strconv.ParseInt(raw, 10, 64)
	return id
}

// InteractionUsername extracts the invoking user's display name.
func InteractionUsername(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.Username
	case i.User != nil:
		return i.User.Username
	}
	return "unknown"
}

// Respond sends a plain text reply to an interaction.
func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to respond to interaction")
	}
}

// RespondError sends an ephemeral error reply only the invoker can see.
func RespondError(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "❌ " + content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to respond to interaction")
	}
}

// RespondWithComponents sends a reply carrying button rows.
func RespondWithComponents(s *discordgo.Session, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to respond to interaction")
	}
}

// UpdateMessage edits the message a component interaction came from,
// clearing its buttons.
func UpdateMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to update interaction message")
	}
}

// commandOptions flattens an interaction's options into a name-keyed map.
func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

// userOption resolves a user-type option to its numeric ID and username.
func userOption(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) (int64, string) {
	u := opt.UserValue(s)
	if u == nil {
		return 0, ""
	}
	id, _ := strconv.ParseInt(u.ID, 10, 64)
	return id, u.Username
}
