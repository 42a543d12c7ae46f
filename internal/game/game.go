// Package game defines the resolver interface and registry shared by every
// mini-game. Each resolver follows the same shape: validate, draw
// randomness, compute the payout, persist, report.
package game

import "context"

// Result represents the outcome of a single game resolution.
type Result struct {
	// Payout is the net wallet change: positive on a win, negative on a
	// loss, zero on a push.
	Payout      int64
	Won         bool
	Lost        bool
	Description string
	// Details carries game-specific values for rendering (rolls, grids,
	// hands).
	Details map[string]any
}

// Resolver is the interface every single-shot game implements. Interactive
// multi-step games (duel, heist, blackjack) expose their own session types
// and are driven by the interaction surface directly.
type Resolver interface {
	// Name returns the game's display name.
	Name() string

	// Command returns the slash command that triggers this game.
	Command() string

	// Description returns a short help line.
	Description() string

	// ValidateBet checks the wager and parameters before any randomness is
	// drawn. Returns nil if valid.
	ValidateBet(bet int64, params map[string]any) error

	// Resolve runs the game for one player. Implementations must not
	// persist anything before validation passes.
	Resolve(ctx context.Context, playerID int64, bet int64, params map[string]any) (*Result, error)

	// MaxBet returns the maximum allowed wager, 0 for no limit.
	MaxBet() int64

	// Cooldown returns the seconds a player must wait between plays,
	// 0 for none.
	Cooldown() int
}
