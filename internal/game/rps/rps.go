// Package rps implements rock-paper-scissors against the bot for an even
// wager. Ties refund.
package rps

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"vaultbot/internal/game"
	"vaultbot/internal/model"
	"vaultbot/internal/repository"
	"vaultbot/internal/service"
)

// DefaultMaxBet caps the wager.
const DefaultMaxBet = 100000

// Errors surfaced to players.
var (
	ErrInvalidBet    = errors.New("bet must be positive")
	ErrUnknownChoice = errors.New("pick rock, paper or scissors")
)

// Choice is a thrown hand.
type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

// ParseChoice validates a player-supplied hand.
func ParseChoice(s string) (Choice, error) {
	switch Choice(s) {
	case Rock, Paper, Scissors:
		return Choice(s), nil
	default:
		return "", ErrUnknownChoice
	}
}

// beats maps each choice to the choice it defeats.
var beats = map[Choice]Choice{
	Rock:     Scissors,
	Paper:    Rock,
	Scissors: Paper,
}

// Beats reports whether a beats b.
func Beats(a, b Choice) bool { return beats[a] == b }

// Throw draws the bot's uniform choice.
func Throw(rng *rand.Rand) Choice {
	switch rng.Intn(3) {
	case 0:
		return Rock
	case 1:
		return Paper
	default:
		return Scissors
	}
}

// Resolver is the rock-paper-scissors game.
type Resolver struct {
	ledger *service.LedgerService
	stats  *repository.StatsRepository
	rng    *rand.Rand
	maxBet int64
}

// New creates the RPS resolver.
func New(ledger *service.LedgerService, stats *repository.StatsRepository) *Resolver {
	return &Resolver{
		ledger: ledger,
		stats:  stats,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		maxBet: DefaultMaxBet,
	}
}

func (r *Resolver) Name() string        { return "Rock Paper Scissors" }
func (r *Resolver) Command() string     { return "rps" }
func (r *Resolver) Description() string { return "Throw rock, paper or scissors for an even wager" }
func (r *Resolver) MaxBet() int64       { return r.maxBet }
func (r *Resolver) Cooldown() int       { return 0 }

// ValidateBet checks the wager and the choice parameter.
func (r *Resolver) ValidateBet(bet int64, params map[string]any) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if r.maxBet > 0 && bet > r.maxBet {
		return fmt.Errorf("bet cannot exceed %d", r.maxBet)
	}
	choice, _ := params["choice"].(string)
	_, err := ParseChoice(choice)
	return err
}

// Resolve throws both hands and settles.
func (r *Resolver) Resolve(ctx context.Context, playerID int64, bet int64, params map[string]any) (*game.Result, error) {
	if err := r.ValidateBet(bet, params); err != nil {
		return nil, err
	}
	choice, _ := ParseChoice(params["choice"].(string))

	p, err := r.ledger.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p.Balance < bet {
		return nil, service.ErrInsufficientFunds
	}

	bot := Throw(r.rng)

	var payout int64
	var desc string
	switch {
	case Beats(choice, bot):
		payout = bet
		desc = fmt.Sprintf("%s beats %s. You win %d coins!", choice, bot, bet)
	case Beats(bot, choice):
		payout = -bet
		desc = fmt.Sprintf("%s loses to %s. You lose %d coins.", choice, bot, bet)
	default:
		desc = fmt.Sprintf("Both throw %s. Your wager is returned.", choice)
	}

	if payout != 0 {
		txDesc := fmt.Sprintf("rps: %s vs %s", choice, bot)
		if _, err := r.ledger.Credit(ctx, playerID, payout, model.TxTypeRPS, &txDesc); err != nil {
			return nil, err
		}
	}

	won, lost := payout > 0, payout < 0
	switch {
	case won:
		err = r.stats.RecordOutcome(ctx, playerID, "rps", true, false, payout, 0)
	case lost:
		err = r.stats.RecordOutcome(ctx, playerID, "rps", false, true, 0, bet)
	default:
		err = r.stats.Increment(ctx, playerID, "rps", model.StatDelta{"played": 1})
	}
	if err != nil {
		return nil, err
	}

	return &game.Result{
		Payout:      payout,
		Won:         won,
		Lost:        lost,
		Description: desc,
		Details: map[string]any{
			"player_choice": string(choice),
			"bot_choice":    string(bot),
		},
	}, nil
}
