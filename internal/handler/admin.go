package handler

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"vaultbot/internal/model"
	"vaultbot/internal/service"
)

// AdminHandler serves the /admin subcommands for adjusting balances.
type AdminHandler struct {
	ledger *service.LedgerService
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(ledger *service.LedgerService) *AdminHandler {
	return &AdminHandler{ledger: ledger}
}

// HandleAdmin dispatches the add/sub/set subcommands.
func (h *AdminHandler) HandleAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 {
		RespondError(s, i, "Missing subcommand.")
		return
	}
	sub := opts[0]

	var targetID int64
	var targetName string
	var amount int64
	for _, o := range sub.Options {
		switch o.Name {
		case "user":
			targetID, targetName = userOption(s, i, o)
		case "amount":
			amount = o.IntValue()
		}
	}
	if targetID == 0 {
		RespondError(s, i, "Target player is required.")
		return
	}

	ctx := context.Background()
	if _, err := h.ledger.GetPlayer(ctx, targetID); err != nil {
		RespondError(s, i, "That player has no wallet yet.")
		return
	}

	adminID := InteractionUserID(i)
	var err error
	var verb string
	switch sub.Name {
	case "add":
		desc := fmt.Sprintf("admin grant by %d", adminID)
		_, err = h.ledger.Credit(ctx, targetID, amount, model.TxTypeAdminAdd, &desc)
		verb = fmt.Sprintf("Added %d coins to", amount)
	case "sub":
		desc := fmt.Sprintf("admin deduction by %d", adminID)
		_, err = h.ledger.Credit(ctx, targetID, -amount, model.TxTypeAdminSub, &desc)
		verb = fmt.Sprintf("Removed %d coins from", amount)
	case "set":
		_, err = h.ledger.SetBalance(ctx, targetID, amount)
		verb = fmt.Sprintf("Set balance to %d for", amount)
	default:
		RespondError(s, i, "Unknown subcommand.")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("target", targetID).Str("op", sub.Name).Msg("Admin balance change failed")
		RespondError(s, i, "Balance change failed.")
		return
	}

	log.Info().
		Int64("admin", adminID).
		Int64("target", targetID).
		Int64("amount", amount).
		Str("op", sub.Name).
		Msg("Admin balance change")
	Respond(s, i, fmt.Sprintf("🔧 %s %s.", verb, targetName))
}
