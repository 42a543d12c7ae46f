// Package slots implements the 3x3 slot machine. Line wins take precedence
// over scattered special symbols; the two never pay together.
package slots

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"vaultbot/internal/game"
	"vaultbot/internal/model"
	"vaultbot/internal/repository"
	"vaultbot/internal/service"
)

// Paytable.
const (
	SymbolCount = 8

	LineMultiplier     = 2.75
	ScatterThreeMul    = 1.5
	ScatterFourMul     = 2.0
	ScatterFivePlusMul = 2.5

	DefaultMaxBet = 250000
)

// ErrInvalidBet rejects non-positive wagers.
var ErrInvalidBet = errors.New("bet must be positive")

// symbols indexed 0..7; index 7 is the special scatter symbol.
var symbols = [SymbolCount]string{"🍒", "🍋", "🍊", "🍇", "🔔", "🍀", "💎", "⭐"}

// SpecialSymbol is the scatter that pays on count alone.
const SpecialSymbol = 7

// lines are the 8 paying 3-in-a-row lines: rows, columns, diagonals.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Grid is a spun 3x3 board in row-major order.
type Grid [9]int

// Spin fills a grid with uniform symbol draws.
func Spin(rng *rand.Rand) Grid {
	var g Grid
	for i := range g {
		g[i] = rng.Intn(SymbolCount)
	}
	return g
}

// LineWin reports whether any paying line holds three matching symbols.
func (g Grid) LineWin() bool {
	for _, line := range lines {
		if g[line[0]] == g[line[1]] && g[line[1]] == g[line[2]] {
			return true
		}
	}
	return false
}

// SpecialCount counts scatter symbols anywhere on the grid.
func (g Grid) SpecialCount() int {
	n := 0
	for _, s := range g {
		if s == SpecialSymbol {
			n++
		}
	}
	return n
}

// Multiplier is the gross payout multiple for a grid: line wins first,
// then scatter counts, else zero.
func (g Grid) Multiplier() float64 {
	if g.LineWin() {
		return LineMultiplier
	}
	switch n := g.SpecialCount(); {
	case n >= 5:
		return ScatterFivePlusMul
	case n == 4:
		return ScatterFourMul
	case n == 3:
		return ScatterThreeMul
	default:
		return 0
	}
}

// String renders the grid for chat output.
func (g Grid) String() string {
	var b strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			b.WriteString(symbols[g[row*3+col]])
		}
		if row < 2 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Resolver is the slots game.
type Resolver struct {
	ledger *service.LedgerService
	stats  *repository.StatsRepository
	rng    *rand.Rand
	maxBet int64
}

// New creates the slots resolver.
func New(ledger *service.LedgerService, stats *repository.StatsRepository) *Resolver {
	return &Resolver{
		ledger: ledger,
		stats:  stats,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		maxBet: DefaultMaxBet,
	}
}

func (r *Resolver) Name() string        { return "Slots" }
func (r *Resolver) Command() string     { return "slots" }
func (r *Resolver) Description() string { return "Spin the 3x3 machine; lines pay 2.75x" }
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

// Resolve spins the grid and settles the wager.
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

	grid := Spin(r.rng)
	mult := grid.Multiplier()

	// Payout is the net change: a 2.75x line win on a 100 bet nets +175.
	var payout int64
	var desc string
	switch {
	case mult == 0:
		payout = -bet
		desc = fmt.Sprintf("%s\nNo luck. You lose %d coins.", grid, bet)
	case grid.LineWin():
		payout = int64(float64(bet)*mult) - bet
		desc = fmt.Sprintf("%s\nThree in a row! You win %d coins.", grid, payout)
	default:
		payout = int64(float64(bet)*mult) - bet
		desc = fmt.Sprintf("%s\n%d stars scattered! You win %d coins.", grid, grid.SpecialCount(), payout)
	}

	txDesc := fmt.Sprintf("slots: %.2fx on %d", mult, bet)
	if _, err := r.ledger.Credit(ctx, playerID, payout, model.TxTypeSlots, &txDesc); err != nil {
		return nil, err
	}

	won := payout > 0
	winnings, losses := payout, int64(0)
	if !won {
		winnings, losses = 0, -payout
	}
	if err := r.stats.RecordOutcome(ctx, playerID, "slots", won, !won, winnings, losses); err != nil {
		return nil, err
	}

	return &game.Result{
		Payout:      payout,
		Won:         won,
		Lost:        !won,
		Description: desc,
		Details: map[string]any{
			"grid":       grid,
			"multiplier": mult,
		},
	}, nil
}
