package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"vaultbot/internal/config"
	"vaultbot/internal/handler"
)

// wrap decorates an interaction handler with guild allowlisting, logging
// and panic recovery. Recovery always answers the interaction: a command
// must never be left unacknowledged.
func wrap(cfg *config.Config, name string, fn handler.InteractionFunc) handler.InteractionFunc {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if !guildAllowed(cfg, i) {
			log.Debug().
				Str("guild_id", i.GuildID).
				Str("command", name).
				Msg("Ignoring interaction from non-allowlisted guild")
			return
		}

		userID := handler.InteractionUserID(i)
		log.Debug().
			Int64("user_id", userID).
			Str("guild_id", i.GuildID).
			Str("command", name).
			Msg("Interaction received")

		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("command", name).
					Msg("Recovered from panic in handler")
				handler.RespondError(s, i, "Something went wrong, please try again later.")
			}
		}()

		fn(s, i)
	}
}

// guildAllowed checks the guild allowlist. DMs pass; an empty allowlist
// admits every guild.
func guildAllowed(cfg *config.Config, i *discordgo.InteractionCreate) bool {
	if i.GuildID == "" {
		return true
	}
	return cfg.IsGuildAllowed(i.GuildID)
}

// adminOnly gates a handler on the admin ID list.
func adminOnly(cfg *config.Config, fn handler.InteractionFunc) handler.InteractionFunc {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		userID := handler.InteractionUserID(i)
		if !cfg.IsAdmin(userID) {
			log.Warn().
				Int64("user_id", userID).
				Msg("Non-admin attempted admin command")
			handler.RespondError(s, i, "You need admin permission for that.")
			return
		}
		fn(s, i)
	}
}
