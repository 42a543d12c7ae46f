package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"vaultbot/internal/model"
	"vaultbot/internal/repository"
	"vaultbot/internal/service"
)

// AccountHandler serves wallet, bank, daily and profile commands.
type AccountHandler struct {
	ledger    *service.LedgerService
	statsRepo *repository.StatsRepository
	txRepo    *repository.TransactionRepository
	invRepo   *repository.InventoryRepository
}

// NewAccountHandler creates an account handler.
func NewAccountHandler(
	ledger *service.LedgerService,
	statsRepo *repository.StatsRepository,
	txRepo *repository.TransactionRepository,
	invRepo *repository.InventoryRepository,
) *AccountHandler {
	return &AccountHandler{
		ledger:    ledger,
		statsRepo: statsRepo,
		txRepo:    txRepo,
		invRepo:   invRepo,
	}
}

// ensure loads (or lazily creates) the invoker's record.
func (h *AccountHandler) ensure(ctx context.Context, i *discordgo.InteractionCreate) (*model.Player, error) {
	p, _, err := h.ledger.EnsurePlayer(ctx, InteractionUserID(i), InteractionUsername(i))
	return p, err
}

// HandleBalance shows wallet and bank balances.
func (h *AccountHandler) HandleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, err := h.ensure(ctx, i)
	if err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}
	Respond(s, i, fmt.Sprintf("💰 **%s**\nWallet: %d coins\nBank: %d coins",
		p.Username, p.Balance, p.Bank))
}

// HandleProfile shows levels, combat stats, tools and game counters.
func (h *AccountHandler) HandleProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, err := h.ensure(ctx, i)
	if err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s's profile**\n", p.Username)
	fmt.Fprintf(&b, "Wallet: %d | Bank: %d\n", p.Balance, p.Bank)
	fmt.Fprintf(&b, "⛏️ Mining: level %d (%d XP to next)\n", p.MiningLevel, service.XPToNextLevel(p.MiningXP))
	fmt.Fprintf(&b, "🎣 Fishing: level %d (%d XP to next)\n", p.FishingLevel, service.XPToNextLevel(p.FishingXP))
	fmt.Fprintf(&b, "⚔️ Combat: level %d | HP %d | ATK %d | DEF %d | SPD %d\n",
		p.PlayerLevel, p.PlayerHP, p.PlayerAttack, p.PlayerDefense, p.PlayerSpeed)
	fmt.Fprintf(&b, "🔥 Daily streak: %d\n", p.DailyStreak)

	if items, err := h.invRepo.List(ctx, p.DiscordID); err == nil && len(items) > 0 {
		b.WriteString("\n**Inventory**\n")
		for _, item := range items {
			if item.Quantity > 1 {
				fmt.Fprintf(&b, "- %s x%d (%s)\n", item.Name, item.Quantity, item.Rarity)
			} else {
				fmt.Fprintf(&b, "- %s (%s)\n", item.Name, item.Rarity)
			}
		}
	}

	if stats, err := h.statsRepo.GetAll(ctx, p.DiscordID); err == nil && len(stats) > 0 {
		b.WriteString("\n**Games**\n")
		for _, gs := range stats {
			fmt.Fprintf(&b, "- %s: %d played, %d won, %d lost\n", gs.Game, gs.Played, gs.Won, gs.Lost)
		}
	}

	Respond(s, i, b.String())
}

// HandleDaily claims the daily reward.
func (h *AccountHandler) HandleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	if _, err := h.ensure(ctx, i); err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	reward, streak, err := h.ledger.ClaimDaily(ctx, InteractionUserID(i))
	if err != nil {
		if errors.Is(err, service.ErrDailyAlreadyClaimed) {
			RespondError(s, i, err.Error())
			return
		}
		RespondError(s, i, "Could not claim the daily reward.")
		return
	}
	Respond(s, i, fmt.Sprintf("🎁 Daily reward claimed: **%d coins**! Streak: %d days.", reward, streak))
}

// HandleDeposit moves coins into the bank.
func (h *AccountHandler) HandleDeposit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.handleBankMove(s, i, true)
}

// HandleWithdraw moves coins out of the bank.
func (h *AccountHandler) HandleWithdraw(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.handleBankMove(s, i, false)
}

func (h *AccountHandler) handleBankMove(s *discordgo.Session, i *discordgo.InteractionCreate, deposit bool) {
	ctx := context.Background()
	if _, err := h.ensure(ctx, i); err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	opts := commandOptions(i)
	amountOpt, ok := opts["amount"]
	if !ok {
		RespondError(s, i, "Amount is required.")
		return
	}
	amount := amountOpt.IntValue()

	var p *model.Player
	var err error
	if deposit {
		p, err = h.ledger.Deposit(ctx, InteractionUserID(i), amount)
	} else {
		p, err = h.ledger.Withdraw(ctx, InteractionUserID(i), amount)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrInsufficientFunds),
			errors.Is(err, service.ErrBankCapExceeded):
			RespondError(s, i, err.Error())
		default:
			RespondError(s, i, "Transaction failed, please try again.")
		}
		return
	}

	verb := "Deposited"
	if !deposit {
		verb = "Withdrew"
	}
	Respond(s, i, fmt.Sprintf("🏦 %s **%d coins**. Wallet: %d | Bank: %d", verb, amount, p.Balance, p.Bank))
}

// HandleHistory lists the player's recent transactions.
func (h *AccountHandler) HandleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	p, err := h.ensure(ctx, i)
	if err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	txs, err := h.txRepo.GetByPlayerID(ctx, p.DiscordID, 10)
	if err != nil || len(txs) == 0 {
		Respond(s, i, "No transactions yet.")
		return
	}

	var b strings.Builder
	b.WriteString("**Recent transactions**\n")
	for _, tx := range txs {
		sign := "+"
		if tx.Amount < 0 {
			sign = ""
		}
		line := fmt.Sprintf("%s%d (%s)", sign, tx.Amount, tx.Type)
		if tx.Description != nil && *tx.Description != "" {
			line += ": " + *tx.Description
		}
		b.WriteString(line + "\n")
	}
	Respond(s, i, b.String())
}
