// Package highlow implements the high-low guessing game: a 1-100 number is
// shown, the player wagers on whether the next draw lands higher or lower.
// An exact match pushes.
package highlow

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

// Draw bounds, inclusive.
const (
	NumberMin = 1
	NumberMax = 100

	DefaultMaxBet = 100000
)

// Errors surfaced to players.
var (
	ErrInvalidBet   = errors.New("bet must be positive")
	ErrUnknownGuess = errors.New("guess must be higher or lower")
)

// Guess is the player's call.
type Guess string

const (
	Higher Guess = "higher"
	Lower  Guess = "lower"
)

// ParseGuess validates a player-supplied call.
func ParseGuess(s string) (Guess, error) {
	switch Guess(s) {
	case Higher, Lower:
		return Guess(s), nil
	default:
		return "", ErrUnknownGuess
	}
}

// DrawNumber returns a uniform number in [NumberMin, NumberMax].
func DrawNumber(rng *rand.Rand) int {
	return NumberMin + rng.Intn(NumberMax-NumberMin+1)
}

// Judge settles a guess: +1 correct, -1 wrong, 0 push on an exact match.
func Judge(shown, next int, guess Guess) int {
	if next == shown {
		return 0
	}
	correct := (next > shown) == (guess == Higher)
	if correct {
		return 1
	}
	return -1
}

// Resolver is the high-low game.
type Resolver struct {
	ledger *service.LedgerService
	stats  *repository.StatsRepository
	rng    *rand.Rand
	maxBet int64
}

// New creates the high-low resolver.
func New(ledger *service.LedgerService, stats *repository.StatsRepository) *Resolver {
	return &Resolver{
		ledger: ledger,
		stats:  stats,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		maxBet: DefaultMaxBet,
	}
}

func (r *Resolver) Name() string        { return "High-Low" }
func (r *Resolver) Command() string     { return "highlow" }
func (r *Resolver) Description() string { return "Guess if the next number is higher or lower" }
func (r *Resolver) MaxBet() int64       { return r.maxBet }
func (r *Resolver) Cooldown() int       { return 0 }

// ValidateBet checks the wager and the guess parameter.
func (r *Resolver) ValidateBet(bet int64, params map[string]any) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if r.maxBet > 0 && bet > r.maxBet {
		return fmt.Errorf("bet cannot exceed %d", r.maxBet)
	}
	guess, _ := params["guess"].(string)
	_, err := ParseGuess(guess)
	return err
}

// Resolve draws both numbers and settles.
func (r *Resolver) Resolve(ctx context.Context, playerID int64, bet int64, params map[string]any) (*game.Result, error) {
	if err := r.ValidateBet(bet, params); err != nil {
		return nil, err
	}
	guess, _ := ParseGuess(params["guess"].(string))

	p, err := r.ledger.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p.Balance < bet {
		return nil, service.ErrInsufficientFunds
	}

	shown := DrawNumber(r.rng)
	next := DrawNumber(r.rng)

	var payout int64
	var desc string
	switch Judge(shown, next, guess) {
	case 1:
		payout = bet
		desc = fmt.Sprintf("The number was %d and the next is %d. You called %s and win %d coins!", shown, next, guess, bet)
	case -1:
		payout = -bet
		desc = fmt.Sprintf("The number was %d and the next is %d. You called %s and lose %d coins.", shown, next, guess, bet)
	default:
		desc = fmt.Sprintf("Both numbers are %d. Your wager is returned.", shown)
	}

	if payout != 0 {
		txDesc := fmt.Sprintf("highlow: %d then %d, called %s", shown, next, guess)
		if _, err := r.ledger.Credit(ctx, playerID, payout, model.TxTypeHighLow, &txDesc); err != nil {
			return nil, err
		}
	}

	won, lost := payout > 0, payout < 0
	switch {
	case won:
		err = r.stats.RecordOutcome(ctx, playerID, "highlow", true, false, payout, 0)
	case lost:
		err = r.stats.RecordOutcome(ctx, playerID, "highlow", false, true, 0, bet)
	default:
		err = r.stats.Increment(ctx, playerID, "highlow", model.StatDelta{"played": 1})
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
			"shown": shown,
			"next":  next,
			"guess": string(guess),
		},
	}, nil
}
