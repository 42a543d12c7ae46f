// Package steal implements the theft game: one player attempts to take a
// cut of another player's wallet, risking a penalty on failure.
package steal

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"vaultbot/internal/model"
	"vaultbot/internal/pkg/lock"
	"vaultbot/internal/repository"
)

// Game parameters.
const (
	// MinBalance is required of both thief and target.
	MinBalance = 100

	// DefaultCooldownSeconds throttles the thief between attempts.
	DefaultCooldownSeconds = 1800

	// DefaultProtectionSeconds shields a victim after being stolen from.
	DefaultProtectionSeconds = 28800

	// Success probability is BaseChance plus up to WealthChance scaled by
	// the target's balance against WealthPivot.
	BaseChance   = 0.25
	WealthChance = 0.50
	WealthPivot  = 5000

	// Success takes a uniform 5-20% cut of the target's balance; failure
	// forfeits a uniform 10-30% cut of the thief's own.
	StealCutMin   = 0.05
	StealCutMax   = 0.20
	PenaltyCutMin = 0.10
	PenaltyCutMax = 0.30
)

// Validation errors, surfaced to the invoking player as-is.
var (
	ErrSelfSteal        = errors.New("you cannot steal from yourself")
	ErrTargetNotFound   = errors.New("that player has no wallet yet")
	ErrThiefTooPoor     = errors.New("you need at least 100 coins to attempt a steal")
	ErrTargetTooPoor    = errors.New("that player has less than 100 coins; not worth it")
	ErrOnCooldown       = errors.New("you are still laying low from your last attempt")
	ErrTargetProtected  = errors.New("that player was robbed recently and is on guard")
	ErrTargetBusy       = errors.New("that player is in the middle of something, try again")
)

// Result describes a resolved steal attempt.
type Result struct {
	Success    bool
	Amount     int64
	ThiefName  string
	TargetName string
	NewBalance int64 // thief's balance after resolution
	Message    string
}

// SuccessChance returns the probability a steal against a target with the
// given balance succeeds. Richer targets are easier marks, up to the pivot.
func SuccessChance(targetBalance int64) float64 {
	scale := float64(targetBalance) / WealthPivot
	if scale > 1 {
		scale = 1
	}
	return BaseChance + WealthChance*scale
}

// Game manages steal resolution. Cooldowns persist in the player record so
// they survive restarts.
type Game struct {
	playerRepo *repository.PlayerRepository
	txRepo     *repository.TransactionRepository
	statsRepo  *repository.StatsRepository
	locks      *lock.PlayerLock
	rng        *rand.Rand
	cooldown   time.Duration
	protection time.Duration
}

// New creates a steal game.
func New(
	playerRepo *repository.PlayerRepository,
	txRepo *repository.TransactionRepository,
	statsRepo *repository.StatsRepository,
	locks *lock.PlayerLock,
	cooldownSeconds, protectionSeconds int,
) *Game {
	if cooldownSeconds <= 0 {
		cooldownSeconds = DefaultCooldownSeconds
	}
	if protectionSeconds <= 0 {
		protectionSeconds = DefaultProtectionSeconds
	}
	return &Game{
		playerRepo: playerRepo,
		txRepo:     txRepo,
		statsRepo:  statsRepo,
		locks:      locks,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		cooldown:   time.Duration(cooldownSeconds) * time.Second,
		protection: time.Duration(protectionSeconds) * time.Second,
	}
}

// validate checks every precondition before any randomness is drawn.
// Both records are expected to be freshly read under the pair lock.
func (g *Game) validate(thief, target *model.Player, now time.Time) error {
	if thief.DiscordID == target.DiscordID {
		return ErrSelfSteal
	}
	if thief.Balance < MinBalance {
		return ErrThiefTooPoor
	}
	if target.Balance < MinBalance {
		return ErrTargetTooPoor
	}
	if thief.LastSteal > 0 {
		if rem := g.cooldown - now.Sub(time.Unix(thief.LastSteal, 0)); rem > 0 {
			return fmt.Errorf("%w (%s left)", ErrOnCooldown, rem.Round(time.Second))
		}
	}
	if target.LastStolen > 0 {
		if rem := g.protection - now.Sub(time.Unix(target.LastStolen, 0)); rem > 0 {
			return fmt.Errorf("%w (%s left)", ErrTargetProtected, rem.Round(time.Second))
		}
	}
	return nil
}

// Steal resolves one attempt. Cooldown and protection timestamps update
// regardless of the outcome; money only moves on success or failure, never
// on a validation error.
func (g *Game) Steal(ctx context.Context, thiefID, targetID int64) (*Result, error) {
	if thiefID == targetID {
		return nil, ErrSelfSteal
	}

	if !g.locks.TryLockPair(thiefID, targetID) {
		return nil, ErrTargetBusy
	}
	defer g.locks.UnlockPair(thiefID, targetID)

	thief, err := g.playerRepo.GetByID(ctx, thiefID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thief: %w", err)
	}
	target, err := g.playerRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, fmt.Errorf("failed to load target: %w", err)
	}

	now := time.Now()
	if err := g.validate(thief, target, now); err != nil {
		return nil, err
	}

	// Timestamps update before the draw so a crash mid-resolution cannot
	// hand out a free retry.
	if _, err := g.playerRepo.UpdateFields(ctx, thiefID, map[string]int64{"last_steal": now.Unix()}); err != nil {
		return nil, err
	}
	if _, err := g.playerRepo.UpdateFields(ctx, targetID, map[string]int64{"last_stolen": now.Unix()}); err != nil {
		return nil, err
	}

	success := g.rng.Float64() < SuccessChance(target.Balance)

	if success {
		cut := StealCutMin + g.rng.Float64()*(StealCutMax-StealCutMin)
		amount := int64(float64(target.Balance) * cut)
		if amount > target.Balance {
			amount = target.Balance
		}

		if _, err := g.playerRepo.AdjustBalance(ctx, targetID, -amount); err != nil {
			return nil, err
		}
		updated, err := g.playerRepo.AdjustBalance(ctx, thiefID, amount)
		if err != nil {
			return nil, err
		}

		stoleDesc := fmt.Sprintf("stole from %s", target.Username)
		lostDesc := fmt.Sprintf("robbed by %s", thief.Username)
		_, _ = g.txRepo.Create(ctx, thiefID, amount, model.TxTypeSteal, &stoleDesc)
		_, _ = g.txRepo.Create(ctx, targetID, -amount, model.TxTypeStolen, &lostDesc)

		_ = g.statsRepo.RecordOutcome(ctx, thiefID, "steal", true, false, amount, 0)
		_ = g.statsRepo.Increment(ctx, targetID, "stolen_from", model.StatDelta{"played": 1, "total_losses": amount})

		return &Result{
			Success:    true,
			Amount:     amount,
			ThiefName:  thief.Username,
			TargetName: target.Username,
			NewBalance: updated.Balance,
			Message:    fmt.Sprintf("%s slipped away with %d coins from %s!", thief.Username, amount, target.Username),
		}, nil
	}

	penaltyCut := PenaltyCutMin + g.rng.Float64()*(PenaltyCutMax-PenaltyCutMin)
	penalty := int64(float64(thief.Balance) * penaltyCut)
	if penalty > thief.Balance {
		penalty = thief.Balance
	}

	updated, err := g.playerRepo.AdjustBalance(ctx, thiefID, -penalty)
	if err != nil {
		return nil, err
	}
	if _, err := g.playerRepo.AdjustBalance(ctx, targetID, penalty); err != nil {
		return nil, err
	}

	paidDesc := fmt.Sprintf("caught stealing from %s", target.Username)
	gainDesc := fmt.Sprintf("caught %s stealing", thief.Username)
	_, _ = g.txRepo.Create(ctx, thiefID, -penalty, model.TxTypeSteal, &paidDesc)
	_, _ = g.txRepo.Create(ctx, targetID, penalty, model.TxTypeStolen, &gainDesc)

	_ = g.statsRepo.RecordOutcome(ctx, thiefID, "steal", false, true, 0, penalty)
	_ = g.statsRepo.Increment(ctx, targetID, "stolen_from", model.StatDelta{"played": 1, "total_winnings": penalty})

	return &Result{
		Success:    false,
		Amount:     penalty,
		ThiefName:  thief.Username,
		TargetName: target.Username,
		NewBalance: updated.Balance,
		Message:    fmt.Sprintf("%s got caught! %s shook them down for %d coins.", thief.Username, target.Username, penalty),
	}, nil
}
