package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"vaultbot/internal/service"
)

// TransferHandler serves the /pay command.
type TransferHandler struct {
	ledger   *service.LedgerService
	transfer *service.TransferService
}

// NewTransferHandler creates a transfer handler.
func NewTransferHandler(ledger *service.LedgerService, transfer *service.TransferService) *TransferHandler {
	return &TransferHandler{ledger: ledger, transfer: transfer}
}

// HandlePay moves coins between two players.
func (h *TransferHandler) HandlePay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	if _, _, err := h.ledger.EnsurePlayer(ctx, InteractionUserID(i), InteractionUsername(i)); err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	opts := commandOptions(i)
	userOpt, ok := opts["user"]
	if !ok {
		RespondError(s, i, "Recipient is required.")
		return
	}
	amountOpt, ok := opts["amount"]
	if !ok {
		RespondError(s, i, "Amount is required.")
		return
	}

	toID, toName := userOption(s, i, userOpt)
	amount := amountOpt.IntValue()

	err := h.transfer.Transfer(ctx, InteractionUserID(i), toID, amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrSelfTransfer),
			errors.Is(err, service.ErrInsufficientFunds):
			RespondError(s, i, err.Error())
		case errors.Is(err, service.ErrPlayerNotFound):
			RespondError(s, i, "That player has no wallet yet.")
		default:
			RespondError(s, i, "Transfer failed, please try again.")
		}
		return
	}

	Respond(s, i, fmt.Sprintf("💸 Sent **%d coins** to %s.", amount, toName))
}
