// Package gamble implements the plain roll-off: you and the house each
// roll 1-99, lower roll forfeits the wager, a tie refunds it.
package gamble

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

// Roll bounds, inclusive.
const (
	RollMin = 1
	RollMax = 99

	DefaultMaxBet = 500000
)

// ErrInvalidBet rejects non-positive wagers.
var ErrInvalidBet = errors.New("bet must be positive")

// Roll draws a uniform 1-99 roll.
func Roll(rng *rand.Rand) int {
	return RollMin + rng.Intn(RollMax-RollMin+1)
}

// Resolver is the gamble game.
type Resolver struct {
	ledger *service.LedgerService
	stats  *repository.StatsRepository
	rng    *rand.Rand
	maxBet int64
}

// New creates the gamble resolver.
func New(ledger *service.LedgerService, stats *repository.StatsRepository) *Resolver {
	return &Resolver{
		ledger: ledger,
		stats:  stats,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		maxBet: DefaultMaxBet,
	}
}

func (r *Resolver) Name() string        { return "Gamble" }
func (r *Resolver) Command() string     { return "gamble" }
func (r *Resolver) Description() string { return "Roll 1-99 against the house; higher roll wins" }
func (r *Resolver) MaxBet() int64       { return r.maxBet }
func (r *Resolver) Cooldown() int       { return 0 }

// ValidateBet checks the wager bounds.
func (r *Resolver) ValidateBet(bet int64, params map[string]any) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if r.maxBet > 0 && bet > r.maxBet {
		return fmt.Errorf("bet cannot exceed %d", r.maxBet)
	}
	return nil
}

// Resolve rolls both sides and settles. A tie moves no money, matching a
// refunded wager.
func (r *Resolver) Resolve(ctx context.Context, playerID int64, bet int64, params map[string]any) (*game.Result, error) {
	if err := r.ValidateBet(bet, params); err != nil {
		return nil, err
	}
	p, err := r.ledger.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p.Balance < bet {
		return nil, service.ErrInsufficientFunds
	}

	yours := Roll(r.rng)
	house := Roll(r.rng)

	var payout int64
	var desc string
	switch {
	case yours > house:
		payout = bet
		desc = fmt.Sprintf("You roll %d against the house's %d. You win %d coins!", yours, house, bet)
	case yours < house:
		payout = -bet
		desc = fmt.Sprintf("You roll %d against the house's %d. You lose %d coins.", yours, house, bet)
	default:
		desc = fmt.Sprintf("Both roll %d. Your wager is returned.", yours)
	}

	if payout != 0 {
		txDesc := fmt.Sprintf("gamble: rolled %d vs %d", yours, house)
		if _, err := r.ledger.Credit(ctx, playerID, payout, model.TxTypeGamble, &txDesc); err != nil {
			return nil, err
		}
	}

	won, lost := payout > 0, payout < 0
	switch {
	case won:
		err = r.stats.RecordOutcome(ctx, playerID, "gamble", true, false, payout, 0)
	case lost:
		err = r.stats.RecordOutcome(ctx, playerID, "gamble", false, true, 0, bet)
	default:
		err = r.stats.Increment(ctx, playerID, "gamble", model.StatDelta{"played": 1})
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
			"player_roll": yours,
			"house_roll":  house,
		},
	}, nil
}
