// Package duel implements wagered one-on-one combat. A challenge must be
// accepted within a timeout; the fight itself is a sequence of simultaneous
// damage exchanges resolved as an explicit state machine.
package duel

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"vaultbot/internal/model"
	"vaultbot/internal/pkg/lock"
	"vaultbot/internal/repository"
)

// Game parameters.
const (
	StartingHP = 100

	// Base damage per round, inclusive range.
	BaseDamageMin = 16
	BaseDamageMax = 19

	// DefaultAcceptTimeout is how long a challenge waits for an answer.
	DefaultAcceptTimeout = 30 * time.Second

	// MaxRounds bounds a single fight; the source loop was unbounded, the
	// cap turns a pathological stalemate into a tie instead of a hang.
	MaxRounds = 100

	// DefaultMaxRestarts bounds double-KO restarts the same way.
	DefaultMaxRestarts = 10
)

// Errors surfaced to players.
var (
	ErrSelfDuel          = errors.New("you cannot duel yourself")
	ErrInsufficientFunds = errors.New("both duelists need the wager in their wallet")
	ErrPendingChallenge  = errors.New("you already have a pending challenge")
	ErrNoChallenge       = errors.New("no pending challenge for you")
	ErrChallengeExpired  = errors.New("the challenge has expired")
	ErrNotYourChallenge  = errors.New("this challenge is not addressed to you")
	ErrInvalidWager      = errors.New("wager must be positive")
	ErrPlayersBusy       = errors.New("one of the duelists is busy, try again")
)

// State is the fight state machine.
type State int

const (
	StateInProgress State = iota
	StateDoubleKO         // both dropped in the same exchange; fight restarts
	StateResolvedWinner
	StateResolvedTie
)

// Effects are the per-round ability rolls for one combatant.
type Effects struct {
	Fire      bool // +50% outgoing damage
	Critical  bool // double outgoing damage
	Weak      bool // half outgoing damage
	Stun      bool // opponent deals no damage this round
	Shield    bool // incoming damage reduced 25%
	Lifesteal bool // heal 25% of damage dealt, if alive after the exchange
	Deflect   bool // return 25% of post-mitigation incoming damage
}

// RollEffects draws one combatant's round effects. The offensive tier is a
// single percentile roll across fixed bands; shield, lifesteal and deflect
// are independent 10% rolls that stack with it.
func RollEffects(rng *rand.Rand) Effects {
	var e Effects
	switch p := rng.Intn(100); {
	case p >= 95:
		e.Stun = true
	case p >= 85:
		e.Weak = true
	case p >= 75:
		e.Critical = true
	case p >= 65:
		e.Fire = true
	}
	e.Shield = rng.Intn(10) == 0
	e.Lifesteal = rng.Intn(10) == 0
	e.Deflect = rng.Intn(10) == 0
	return e
}

// Exchange is one combatant's side of a resolved round.
type Exchange struct {
	Dealt     int // damage applied to the opponent
	Deflected int // damage bounced back onto this combatant
	Healed    int
}

// ResolveExchange computes both sides of one round from the raw damage
// rolls and effects. Both sides are computed against the pre-round HP
// pools: neither side's damage is applied before the other's is known.
func ResolveExchange(rawA, rawB int, effA, effB Effects) (a, b Exchange) {
	a.Dealt = modifyOutgoing(rawA, effA, effB)
	b.Dealt = modifyOutgoing(rawB, effB, effA)

	if effB.Deflect {
		a.Deflected = a.Dealt / 4
	}
	if effA.Deflect {
		b.Deflected = b.Dealt / 4
	}

	if effA.Lifesteal {
		a.Healed = a.Dealt / 4
	}
	if effB.Lifesteal {
		b.Healed = b.Dealt / 4
	}
	return a, b
}

// modifyOutgoing applies the attacker's own offensive tier, then the
// defender's stun and shield.
func modifyOutgoing(raw int, attacker, defender Effects) int {
	dmg := raw
	switch {
	case attacker.Critical:
		dmg *= 2
	case attacker.Weak:
		dmg /= 2
	case attacker.Fire:
		dmg += dmg / 2
	}
	if defender.Stun {
		return 0
	}
	if defender.Shield {
		dmg -= dmg / 4
	}
	return dmg
}

// Outcome is the result of a full fight simulation.
type Outcome struct {
	State    State
	Winner   int // 0 or 1 when State is StateResolvedWinner
	Rounds   int // rounds in the deciding run
	Restarts int
}

// Fight simulates a full duel between two combatants and returns the
// terminal state. A double KO restarts the fight from full HP; after
// maxRestarts double KOs, or a fight that outlives MaxRounds, the duel is
// a tie.
func Fight(rng *rand.Rand, maxRestarts int) Outcome {
	if maxRestarts <= 0 {
		maxRestarts = DefaultMaxRestarts
	}

	for restarts := 0; ; restarts++ {
		out := runFight(rng)
		switch out.State {
		case StateDoubleKO:
			// Both dropped in the same exchange: the whole fight restarts
			// at full HP, up to the restart cap.
			if restarts+1 > maxRestarts {
				out.State = StateResolvedTie
				out.Restarts = restarts + 1
				return out
			}
		default:
			out.Restarts = restarts
			return out
		}
	}
}

// runFight plays a single run from full HP to a KO, a double KO, or the
// round cap.
func runFight(rng *rand.Rand) Outcome {
	hp := [2]int{StartingHP, StartingHP}
	for round := 1; round <= MaxRounds; round++ {
		rawA := BaseDamageMin + rng.Intn(BaseDamageMax-BaseDamageMin+1)
		rawB := BaseDamageMin + rng.Intn(BaseDamageMax-BaseDamageMin+1)
		exA, exB := ResolveExchange(rawA, rawB, RollEffects(rng), RollEffects(rng))

		hp[0] -= exB.Dealt + exA.Deflected
		hp[1] -= exA.Dealt + exB.Deflected

		// Lifesteal only lands for a combatant still standing after the
		// exchange.
		if hp[0] > 0 {
			hp[0] += exA.Healed
			if hp[0] > StartingHP {
				hp[0] = StartingHP
			}
		}
		if hp[1] > 0 {
			hp[1] += exB.Healed
			if hp[1] > StartingHP {
				hp[1] = StartingHP
			}
		}

		aDown, bDown := hp[0] <= 0, hp[1] <= 0
		switch {
		case aDown && bDown:
			return Outcome{State: StateDoubleKO, Rounds: round}
		case bDown:
			return Outcome{State: StateResolvedWinner, Winner: 0, Rounds: round}
		case aDown:
			return Outcome{State: StateResolvedWinner, Winner: 1, Rounds: round}
		}
	}
	return Outcome{State: StateResolvedTie, Rounds: MaxRounds}
}

// Challenge is a pending duel waiting for the target's answer.
type Challenge struct {
	ChallengerID   int64
	ChallengerName string
	TargetID       int64
	TargetName     string
	Wager          int64
	CreatedAt      time.Time
}

// Result is a settled duel.
type Result struct {
	Outcome    Outcome
	WinnerID   int64
	WinnerName string
	LoserID    int64
	LoserName  string
	Wager      int64
	Message    string
}

// Game manages pending challenges and settlement.
type Game struct {
	playerRepo *repository.PlayerRepository
	txRepo     *repository.TransactionRepository
	statsRepo  *repository.StatsRepository
	locks      *lock.PlayerLock
	rng        *rand.Rand

	acceptTimeout time.Duration
	maxRestarts   int

	pending map[int64]*Challenge // target id -> challenge
	mu      sync.Mutex
}

// New creates a duel game.
func New(
	playerRepo *repository.PlayerRepository,
	txRepo *repository.TransactionRepository,
	statsRepo *repository.StatsRepository,
	locks *lock.PlayerLock,
	acceptTimeoutSeconds, maxRestarts int,
) *Game {
	timeout := DefaultAcceptTimeout
	if acceptTimeoutSeconds > 0 {
		timeout = time.Duration(acceptTimeoutSeconds) * time.Second
	}
	if maxRestarts <= 0 {
		maxRestarts = DefaultMaxRestarts
	}
	return &Game{
		playerRepo:    playerRepo,
		txRepo:        txRepo,
		statsRepo:     statsRepo,
		locks:         locks,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		acceptTimeout: timeout,
		maxRestarts:   maxRestarts,
		pending:       make(map[int64]*Challenge),
	}
}

// AcceptTimeout returns the challenge timeout, for rendering countdowns.
func (g *Game) AcceptTimeout() time.Duration { return g.acceptTimeout }

// Challenge registers a pending duel. Both parties must hold the wager; no
// funds move until the fight is settled.
func (g *Game) Challenge(ctx context.Context, challengerID, targetID, wager int64, challengerName, targetName string) (*Challenge, error) {
	if wager <= 0 {
		return nil, ErrInvalidWager
	}
	if challengerID == targetID {
		return nil, ErrSelfDuel
	}

	challenger, err := g.playerRepo.GetByID(ctx, challengerID)
	if err != nil {
		return nil, err
	}
	target, err := g.playerRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if challenger.Balance < wager || target.Balance < wager {
		return nil, ErrInsufficientFunds
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked(time.Now())
	for _, c := range g.pending {
		if c.ChallengerID == challengerID {
			return nil, ErrPendingChallenge
		}
	}
	if _, exists := g.pending[targetID]; exists {
		return nil, ErrPendingChallenge
	}

	c := &Challenge{
		ChallengerID:   challengerID,
		ChallengerName: challengerName,
		TargetID:       targetID,
		TargetName:     targetName,
		Wager:          wager,
		CreatedAt:      time.Now(),
	}
	g.pending[targetID] = c
	return c, nil
}

// Decline removes a pending challenge without moving funds.
func (g *Game) Decline(targetID int64) (*Challenge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.pending[targetID]
	if !ok {
		return nil, ErrNoChallenge
	}
	delete(g.pending, targetID)
	return c, nil
}

// take pops the challenge for settlement, enforcing the timeout.
func (g *Game) take(targetID int64, now time.Time) (*Challenge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.pending[targetID]
	if !ok {
		return nil, ErrNoChallenge
	}
	delete(g.pending, targetID)
	if now.Sub(c.CreatedAt) > g.acceptTimeout {
		return nil, ErrChallengeExpired
	}
	return c, nil
}

// Accept runs and settles the duel for the target's pending challenge.
// Funds are revalidated under the pair lock before the fight; a timeout or
// decline never moves money.
func (g *Game) Accept(ctx context.Context, targetID int64) (*Result, error) {
	c, err := g.take(targetID, time.Now())
	if err != nil {
		return nil, err
	}

	if !g.locks.TryLockPair(c.ChallengerID, c.TargetID) {
		return nil, ErrPlayersBusy
	}
	defer g.locks.UnlockPair(c.ChallengerID, c.TargetID)

	challenger, err := g.playerRepo.GetByID(ctx, c.ChallengerID)
	if err != nil {
		return nil, err
	}
	target, err := g.playerRepo.GetByID(ctx, c.TargetID)
	if err != nil {
		return nil, err
	}
	if challenger.Balance < c.Wager || target.Balance < c.Wager {
		return nil, ErrInsufficientFunds
	}

	outcome := Fight(g.rng, g.maxRestarts)

	if outcome.State == StateResolvedTie {
		_ = g.statsRepo.Increment(ctx, c.ChallengerID, "duel", model.StatDelta{"played": 1})
		_ = g.statsRepo.Increment(ctx, c.TargetID, "duel", model.StatDelta{"played": 1})
		return &Result{
			Outcome: outcome,
			Wager:   c.Wager,
			Message: fmt.Sprintf("After %d restarts neither %s nor %s could land the final blow. Draw; wagers returned.",
				outcome.Restarts, c.ChallengerName, c.TargetName),
		}, nil
	}

	winnerID, winnerName := c.ChallengerID, c.ChallengerName
	loserID, loserName := c.TargetID, c.TargetName
	if outcome.Winner == 1 {
		winnerID, winnerName = c.TargetID, c.TargetName
		loserID, loserName = c.ChallengerID, c.ChallengerName
	}

	if _, err := g.playerRepo.AdjustBalance(ctx, loserID, -c.Wager); err != nil {
		return nil, err
	}
	if _, err := g.playerRepo.AdjustBalance(ctx, winnerID, c.Wager); err != nil {
		return nil, err
	}

	winDesc := fmt.Sprintf("duel against %s", loserName)
	loseDesc := fmt.Sprintf("duel against %s", winnerName)
	_, _ = g.txRepo.Create(ctx, winnerID, c.Wager, model.TxTypeDuelWin, &winDesc)
	_, _ = g.txRepo.Create(ctx, loserID, -c.Wager, model.TxTypeDuelLoss, &loseDesc)

	_ = g.statsRepo.RecordOutcome(ctx, winnerID, "duel", true, false, c.Wager, 0)
	_ = g.statsRepo.RecordOutcome(ctx, loserID, "duel", false, true, 0, c.Wager)

	return &Result{
		Outcome:    outcome,
		WinnerID:   winnerID,
		WinnerName: winnerName,
		LoserID:    loserID,
		LoserName:  loserName,
		Wager:      c.Wager,
		Message: fmt.Sprintf("%s defeats %s in %d rounds and takes the %d coin wager!",
			winnerName, loserName, outcome.Rounds, c.Wager),
	}, nil
}

// expireLocked drops stale challenges. Caller holds g.mu.
func (g *Game) expireLocked(now time.Time) {
	for id, c := range g.pending {
		if now.Sub(c.CreatedAt) > g.acceptTimeout {
			delete(g.pending, id)
		}
	}
}

// PendingFor returns the challenge waiting on a target, if any.
func (g *Game) PendingFor(targetID int64) (*Challenge, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked(time.Now())
	c, ok := g.pending[targetID]
	return c, ok
}
