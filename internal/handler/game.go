package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"vaultbot/internal/game"
	"vaultbot/internal/game/steal"
	"vaultbot/internal/service"
)

// GameHandler serves every single-shot game through the resolver registry,
// plus the steal command.
type GameHandler struct {
	ledger    *service.LedgerService
	registry  *game.Registry
	stealGame *steal.Game

	// cooldowns tracks the last play per (command, player).
	cooldowns map[string]map[int64]time.Time
	mu        sync.Mutex
}

// NewGameHandler creates a game handler.
func NewGameHandler(ledger *service.LedgerService, registry *game.Registry, stealGame *steal.Game) *GameHandler {
	return &GameHandler{
		ledger:    ledger,
		registry:  registry,
		stealGame: stealGame,
		cooldowns: make(map[string]map[int64]time.Time),
	}
}

// checkCooldown returns the remaining wait, or zero if the player may play.
// A successful check records the play.
func (h *GameHandler) checkCooldown(command string, playerID int64, seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	byPlayer, ok := h.cooldowns[command]
	if !ok {
		byPlayer = make(map[int64]time.Time)
		h.cooldowns[command] = byPlayer
	}
	cooldown := time.Duration(seconds) * time.Second
	if last, ok := byPlayer[playerID]; ok {
		if rem := cooldown - time.Since(last); rem > 0 {
			return rem
		}
	}
	byPlayer[playerID] = time.Now()
	return 0
}

// HandleResolverGame runs the registry resolver matching the invoked
// command name.
func (h *GameHandler) HandleResolverGame(s *discordgo.Session, i *discordgo.InteractionCreate) {
	command := i.ApplicationCommandData().Name
	resolver, ok := h.registry.Get(command)
	if !ok {
		RespondError(s, i, "Unknown game.")
		return
	}

	ctx := context.Background()
	playerID := InteractionUserID(i)
	if _, _, err := h.ledger.EnsurePlayer(ctx, playerID, InteractionUsername(i)); err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	var bet int64
	params := make(map[string]any)
	for _, o := range i.ApplicationCommandData().Options {
		switch {
		case o.Name == "bet":
			bet = o.IntValue()
		case o.Type == discordgo.ApplicationCommandOptionInteger:
			params[o.Name] = int(o.IntValue())
		case o.Type == discordgo.ApplicationCommandOptionString:
			params[o.Name] = o.StringValue()
		}
	}

	if err := resolver.ValidateBet(bet, params); err != nil {
		RespondError(s, i, err.Error())
		return
	}
	if rem := h.checkCooldown(command, playerID, resolver.Cooldown()); rem > 0 {
		RespondError(s, i, fmt.Sprintf("Slow down! Try again in %s.", rem.Round(time.Second)))
		return
	}

	result, err := resolver.Resolve(ctx, playerID, bet, params)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientFunds) {
			RespondError(s, i, "You cannot afford that.")
			return
		}
		log.Error().Err(err).Str("game", command).Int64("player", playerID).Msg("Game resolution failed")
		RespondError(s, i, err.Error())
		return
	}

	Respond(s, i, result.Description)
}

// HandleSteal runs a steal attempt against the targeted player.
func (h *GameHandler) HandleSteal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	thiefID := InteractionUserID(i)
	if _, _, err := h.ledger.EnsurePlayer(ctx, thiefID, InteractionUsername(i)); err != nil {
		RespondError(s, i, "Could not load your account.")
		return
	}

	opts := commandOptions(i)
	targetOpt, ok := opts["target"]
	if !ok {
		RespondError(s, i, "Target is required.")
		return
	}
	targetID, _ := userOption(s, i, targetOpt)

	result, err := h.stealGame.Steal(ctx, thiefID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, steal.ErrSelfSteal),
			errors.Is(err, steal.ErrTargetNotFound),
			errors.Is(err, steal.ErrThiefTooPoor),
			errors.Is(err, steal.ErrTargetTooPoor),
			errors.Is(err, steal.ErrOnCooldown),
			errors.Is(err, steal.ErrTargetProtected),
			errors.Is(err, steal.ErrTargetBusy):
			RespondError(s, i, err.Error())
		default:
			log.Error().Err(err).Int64("thief", thiefID).Int64("target", targetID).Msg("Steal failed")
			RespondError(s, i, "The steal went sideways, try again.")
		}
		return
	}

	Respond(s, i, result.Message)
}
