// Package roulette implements color-bet roulette on an American wheel:
// 18 red, 18 black, 2 green pockets.
package roulette

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

// Wheel layout and payouts.
const (
	RedPockets   = 18
	BlackPockets = 18
	GreenPockets = 2
	TotalPockets = RedPockets + BlackPockets + GreenPockets

	ColorMultiplier = 2  // red/black pay 2x the wager gross
	GreenMultiplier = 14 // green pays 14x gross

	DefaultMaxBet = 250000
)

// Errors surfaced to players.
var (
	ErrInvalidBet   = errors.New("bet must be positive")
	ErrUnknownColor = errors.New("pick red, black or green")
)

// Color is a bettable pocket color.
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
	Green Color = "green"
)

// ParseColor validates a player-supplied color.
func ParseColor(s string) (Color, error) {
	switch Color(s) {
	case Red, Black, Green:
		return Color(s), nil
	default:
		return "", ErrUnknownColor
	}
}

// SpinWheel draws the landing color with 18/18/2 weights.
func SpinWheel(rng *rand.Rand) Color {
	switch p := rng.Intn(TotalPockets); {
	case p < RedPockets:
		return Red
	case p < RedPockets+BlackPockets:
		return Black
	default:
		return Green
	}
}

// Payout is the net wallet change for a wager on bet when the wheel lands
// on landed.
func Payout(bet int64, choice, landed Color) int64 {
	if choice != landed {
		return -bet
	}
	if landed == Green {
		return bet * (GreenMultiplier - 1)
	}
	return bet * (ColorMultiplier - 1)
}

// Resolver is the roulette game.
type Resolver struct {
	ledger *service.LedgerService
	stats  *repository.StatsRepository
	rng    *rand.Rand
	maxBet int64
}

// New creates the roulette resolver.
func New(ledger *service.LedgerService, stats *repository.StatsRepository) *Resolver {
	return &Resolver{
		ledger: ledger,
		stats:  stats,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		maxBet: DefaultMaxBet,
	}
}

func (r *Resolver) Name() string        { return "Roulette" }
func (r *Resolver) Command() string     { return "roulette" }
func (r *Resolver) Description() string { return "Bet on red, black, or green (14x)" }
func (r *Resolver) MaxBet() int64       { return r.maxBet }
func (r *Resolver) Cooldown() int       { return 0 }

// ValidateBet checks the wager and the color parameter.
func (r *Resolver) ValidateBet(bet int64, params map[string]any) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if r.maxBet > 0 && bet > r.maxBet {
		return fmt.Errorf("bet cannot exceed %d", r.maxBet)
	}
	color, _ := params["color"].(string)
	_, err := ParseColor(color)
	return err
}

// Resolve spins the wheel and settles.
func (r *Resolver) Resolve(ctx context.Context, playerID int64, bet int64, params map[string]any) (*game.Result, error) {
	if err := r.ValidateBet(bet, params); err != nil {
		return nil, err
	}
	choice, _ := ParseColor(params["color"].(string))

	p, err := r.ledger.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p.Balance < bet {
		return nil, service.ErrInsufficientFunds
	}

	landed := SpinWheel(r.rng)
	payout := Payout(bet, choice, landed)

	var desc string
	if payout > 0 {
		desc = fmt.Sprintf("The ball lands on %s! You win %d coins.", landed, payout)
	} else {
		desc = fmt.Sprintf("The ball lands on %s. You lose %d coins.", landed, bet)
	}

	txDesc := fmt.Sprintf("roulette: %s on %s", choice, landed)
	if _, err := r.ledger.Credit(ctx, playerID, payout, model.TxTypeRoulette, &txDesc); err != nil {
		return nil, err
	}

	won := payout > 0
	winnings, losses := payout, int64(0)
	if !won {
		winnings, losses = 0, bet
	}
	if err := r.stats.RecordOutcome(ctx, playerID, "roulette", won, !won, winnings, losses); err != nil {
		return nil, err
	}

	return &game.Result{
		Payout:      payout,
		Won:         won,
		Lost:        !won,
		Description: desc,
		Details: map[string]any{
			"choice": string(choice),
			"landed": string(landed),
		},
	}, nil
}
