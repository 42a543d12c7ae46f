package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"vaultbot/internal/game/heist"
	"vaultbot/internal/service"
)

// CustomIDHeistJoin is the join button on a forming heist. The heist itself
// is keyed by the channel the button lives in.
const CustomIDHeistJoin = "heist_join"

// HeistHandler serves the heist command, the join button and the timed
// resolution.
type HeistHandler struct {
	ledger *service.LedgerService
	heists *heist.Game
}

// NewHeistHandler creates a heist handler.
func NewHeistHandler(ledger *service.LedgerService, heists *heist.Game) *HeistHandler {
	return &HeistHandler{ledger: ledger, heists: heists}
}

// HandleHeist opens a heist in the channel and schedules its resolution.
func (h *HeistHandler) HandleHeist(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	leaderID := InteractionUserID(i)
	leaderName := InteractionUsername(i)
	if _, _, err := h.ledger.EnsurePlayer(ctx, leaderID, leaderName); err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	difficulty := "easy"
	if o, ok := commandOptions(i)["difficulty"]; ok {
		difficulty = o.StringValue()
	}

	session, err := h.heists.Open(ctx, i.ChannelID, leaderID, leaderName, difficulty)
	if err != nil {
		switch {
		case errors.Is(err, heist.ErrHeistInProgress),
			errors.Is(err, heist.ErrUnknownLevel),
			errors.Is(err, heist.ErrTooPoor):
			RespondError(s, i, err.Error())
		default:
			log.Error().Err(err).Int64("leader", leaderID).Msg("Heist open failed")
			RespondError(s, i, "Could not plan the heist, try again.")
		}
		return
	}

	window := h.heists.JoinWindow()
	content := fmt.Sprintf("💰 %s is planning a **%s** heist! Crew forms for %s; your stake is %d%% of your wallet (minimum %d coins).",
		leaderName, session.Difficulty.Name, window.Round(time.Second),
		int(session.Difficulty.StakePercent*100), session.Difficulty.MinStake)
	RespondWithComponents(s, i, content, []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Join the crew",
				Style:    discordgo.PrimaryButton,
				CustomID: CustomIDHeistJoin,
			},
		}},
	})

	channelID := i.ChannelID
	time.AfterFunc(window, func() {
		h.resolve(s, channelID)
	})
}

// HandleJoin adds the pressing player to the forming heist.
func (h *HeistHandler) HandleJoin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	playerID := InteractionUserID(i)
	name := InteractionUsername(i)
	if _, _, err := h.ledger.EnsurePlayer(ctx, playerID, name); err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	if err := h.heists.Join(ctx, i.ChannelID, playerID, name); err != nil {
		switch {
		case errors.Is(err, heist.ErrNoHeist),
			errors.Is(err, heist.ErrJoinClosed),
			errors.Is(err, heist.ErrHeistFull),
			errors.Is(err, heist.ErrAlreadyJoined),
			errors.Is(err, heist.ErrTooPoor):
			RespondError(s, i, err.Error())
		default:
			log.Error().Err(err).Int64("player", playerID).Msg("Heist join failed")
			RespondError(s, i, "Could not join the crew, try again.")
		}
		return
	}

	Respond(s, i, fmt.Sprintf("🔫 %s joined the crew!", name))
}

// resolve settles the heist once the join window closes and posts the
// outcome to the channel.
func (h *HeistHandler) resolve(s *discordgo.Session, channelID string) {
	outcome, err := h.heists.Resolve(context.Background(), channelID)
	if err != nil {
		if errors.Is(err, heist.ErrEmptyCrew) {
			_, _ = s.ChannelMessageSend(channelID, "The heist was called off: nobody could cover their stake.")
			return
		}
		if errors.Is(err, heist.ErrNoHeist) {
			return
		}
		log.Error().Err(err).Str("channel", channelID).Msg("Heist resolution failed")
		_, _ = s.ChannelMessageSend(channelID, "The heist fell apart at the last minute.")
		return
	}

	var b strings.Builder
	b.WriteString(outcome.Message)
	if len(outcome.Payouts) > 0 {
		ids := make([]int64, 0, len(outcome.Payouts))
		for id := range outcome.Payouts {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(a, z int) bool { return ids[a] < ids[z] })
		for _, id := range ids {
			amount := outcome.Payouts[id]
			if amount >= 0 {
				b.WriteString(fmt.Sprintf("\n<@%d> +%d coins", id, amount))
			} else {
				b.WriteString(fmt.Sprintf("\n<@%d> %d coins", id, amount))
			}
		}
	}
	if _, err := s.ChannelMessageSend(channelID, b.String()); err != nil {
		log.Error().Err(err).Str("channel", channelID).Msg("Failed to post heist outcome")
	}
}
