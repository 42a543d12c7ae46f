package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"vaultbot/internal/game/duel"
	"vaultbot/internal/repository"
	"vaultbot/internal/service"
)

// Component custom IDs for the duel challenge message. The target's ID is
// appended so only the challenged player can answer.
const (
	CustomIDDuelAccept  = "duel_accept"
	CustomIDDuelDecline = "duel_decline"
)

// DuelHandler serves the duel command and its accept/decline buttons.
type DuelHandler struct {
	ledger *service.LedgerService
	duels  *duel.Game
}

// NewDuelHandler creates a duel handler.
func NewDuelHandler(ledger *service.LedgerService, duels *duel.Game) *DuelHandler {
	return &DuelHandler{ledger: ledger, duels: duels}
}

// HandleDuel issues a challenge and posts the accept/decline buttons.
func (h *DuelHandler) HandleDuel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	challengerID := InteractionUserID(i)
	challengerName := InteractionUsername(i)
	if _, _, err := h.ledger.EnsurePlayer(ctx, challengerID, challengerName); err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	opts := commandOptions(i)
	opponent, ok := opts["opponent"]
	if !ok {
		RespondError(s, i, "Opponent is required.")
		return
	}
	targetID, targetName := userOption(s, i, opponent)
	var wager int64
	if o, ok := opts["wager"]; ok {
		wager = o.IntValue()
	}

	c, err := h.duels.Challenge(ctx, challengerID, targetID, wager, challengerName, targetName)
	if err != nil {
		switch {
		case errors.Is(err, duel.ErrSelfDuel),
			errors.Is(err, duel.ErrInvalidWager),
			errors.Is(err, duel.ErrInsufficientFunds),
			errors.Is(err, duel.ErrPendingChallenge):
			RespondError(s, i, err.Error())
		case errors.Is(err, repository.ErrPlayerNotFound):
			RespondError(s, i, "That player has no wallet yet.")
		default:
			log.Error().Err(err).Int64("challenger", challengerID).Msg("Duel challenge failed")
			RespondError(s, i, "Could not issue the challenge, try again.")
		}
		return
	}

	content := fmt.Sprintf("⚔️ %s challenges %s to a duel for %d coins! %s, you have %s to answer.",
		c.ChallengerName, c.TargetName, c.Wager, c.TargetName, h.duels.AcceptTimeout().Round(time.Second))
	RespondWithComponents(s, i, content, []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Accept",
				Style:    discordgo.SuccessButton,
				CustomID: fmt.Sprintf("%s:%d", CustomIDDuelAccept, c.TargetID),
			},
			discordgo.Button{
				Label:    "Decline",
				Style:    discordgo.DangerButton,
				CustomID: fmt.Sprintf("%s:%d", CustomIDDuelDecline, c.TargetID),
			},
		}},
	})
}

// HandleComponent answers an accept or decline button press.
func (h *DuelHandler) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	action, rest, ok := strings.Cut(customID, ":")
	if !ok {
		return
	}
	targetID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return
	}
	if InteractionUserID(i) != targetID {
		RespondError(s, i, "This challenge is not addressed to you.")
		return
	}

	switch action {
	case CustomIDDuelDecline:
		c, err := h.duels.Decline(targetID)
		if err != nil {
			RespondError(s, i, err.Error())
			return
		}
		UpdateMessage(s, i, fmt.Sprintf("%s declined the duel against %s.", c.TargetName, c.ChallengerName))
	case CustomIDDuelAccept:
		res, err := h.duels.Accept(context.Background(), targetID)
		if err != nil {
			switch {
			case errors.Is(err, duel.ErrNoChallenge),
				errors.Is(err, duel.ErrChallengeExpired),
				errors.Is(err, duel.ErrInsufficientFunds),
				errors.Is(err, duel.ErrPlayersBusy):
				RespondError(s, i, err.Error())
			default:
				log.Error().Err(err).Int64("target", targetID).Msg("Duel settlement failed")
				RespondError(s, i, "The duel could not be settled, try again.")
			}
			return
		}
		UpdateMessage(s, i, res.Message)
	}
}
