package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"vaultbot/internal/game/blackjack"
	"vaultbot/internal/service"
)

// Component custom IDs for an in-flight blackjack hand. The owning player's
// ID is appended so nobody can play someone else's hand.
const (
	CustomIDBlackjackHit    = "bj_hit"
	CustomIDBlackjackStand  = "bj_stand"
	CustomIDBlackjackDouble = "bj_double"
)

// BlackjackHandler serves the blackjack command and its hand buttons.
type BlackjackHandler struct {
	ledger *service.LedgerService
	tables *blackjack.Game
}

// NewBlackjackHandler creates a blackjack handler.
func NewBlackjackHandler(ledger *service.LedgerService, tables *blackjack.Game) *BlackjackHandler {
	return &BlackjackHandler{ledger: ledger, tables: tables}
}

func handButtons(playerID int64, canDouble bool) []discordgo.MessageComponent {
	row := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Hit",
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("%s:%d", CustomIDBlackjackHit, playerID),
		},
		discordgo.Button{
			Label:    "Stand",
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("%s:%d", CustomIDBlackjackStand, playerID),
		},
	}
	if canDouble {
		row = append(row, discordgo.Button{
			Label:    "Double down",
			Style:    discordgo.DangerButton,
			CustomID: fmt.Sprintf("%s:%d", CustomIDBlackjackDouble, playerID),
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: row}}
}

func renderHand(s *blackjack.Session) string {
	total, soft := blackjack.HandTotal(s.Player)
	totalText := strconv.Itoa(total)
	if soft {
		totalText = "soft " + totalText
	}
	return fmt.Sprintf("🃏 Your hand: %s (%s)\nDealer shows: %s\nBet: %d coins",
		blackjack.FormatHand(s.Player), totalText, s.Dealer[0], s.Bet)
}

// HandleBlackjack deals a new hand.
func (h *BlackjackHandler) HandleBlackjack(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	playerID := InteractionUserID(i)
	if _, _, err := h.ledger.EnsurePlayer(ctx, playerID, InteractionUsername(i)); err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	var bet int64
	if o, ok := commandOptions(i)["bet"]; ok {
		bet = o.IntValue()
	}

	session, result, err := h.tables.Deal(ctx, playerID, bet)
	if err != nil {
		switch {
		case errors.Is(err, blackjack.ErrInvalidBet),
			errors.Is(err, blackjack.ErrHandInProgress),
			errors.Is(err, service.ErrInsufficientFunds):
			RespondError(s, i, err.Error())
		default:
			log.Error().Err(err).Int64("player", playerID).Msg("Blackjack deal failed")
			RespondError(s, i, "Could not deal the hand, try again.")
		}
		return
	}
	if result != nil {
		Respond(s, i, result.Message)
		return
	}

	RespondWithComponents(s, i, renderHand(session), handButtons(playerID, true))
}

// HandleComponent routes hit, stand and double presses.
func (h *BlackjackHandler) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	action, rest, ok := strings.Cut(customID, ":")
	if !ok {
		return
	}
	ownerID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return
	}
	if InteractionUserID(i) != ownerID {
		RespondError(s, i, "This is not your hand.")
		return
	}

	ctx := context.Background()
	switch action {
	case CustomIDBlackjackHit:
		session, result, err := h.tables.Hit(ctx, ownerID)
		if err != nil {
			h.componentError(s, i, ownerID, err)
			return
		}
		if result != nil {
			UpdateMessage(s, i, result.Message)
			return
		}
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    renderHand(session),
				Components: handButtons(ownerID, false),
			},
		}); err != nil {
			log.Error().Err(err).Msg("Failed to update blackjack hand")
		}
	case CustomIDBlackjackStand:
		result, err := h.tables.Stand(ctx, ownerID)
		if err != nil {
			h.componentError(s, i, ownerID, err)
			return
		}
		UpdateMessage(s, i, result.Message)
	case CustomIDBlackjackDouble:
		result, err := h.tables.Double(ctx, ownerID)
		if err != nil {
			h.componentError(s, i, ownerID, err)
			return
		}
		UpdateMessage(s, i, result.Message)
	}
}

func (h *BlackjackHandler) componentError(s *discordgo.Session, i *discordgo.InteractionCreate, playerID int64, err error) {
	switch {
	case errors.Is(err, blackjack.ErrNoHand),
		errors.Is(err, blackjack.ErrCannotDouble),
		errors.Is(err, service.ErrInsufficientFunds):
		RespondError(s, i, err.Error())
	default:
		log.Error().Err(err).Int64("player", playerID).Msg("Blackjack action failed")
		RespondError(s, i, "The hand could not be settled, try again.")
	}
}
