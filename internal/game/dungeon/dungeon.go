// Package dungeon implements floor-based dungeon runs. Entry costs scale
// with the floor; the clear chance comes from the player's combat stats
// measured against a floor-scaled difficulty threshold.
package dungeon

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

// Tuning.
const (
	EntryCostPerFloor = 50000
	MaxFloor          = 20

	// Stat weights for the player's power score.
	AttackWeight  = 2.0
	DefenseWeight = 1.5
	SpeedWeight   = 1.0

	// ThresholdPerFloor scales the difficulty each floor adds.
	ThresholdPerFloor = 60.0

	// Below MinPowerRatio of the threshold the run auto-fails; otherwise
	// the chance is clamped to [MinChance, MaxChance].
	MinPowerRatio = 0.30
	MinChance     = 0.05
	MaxChance     = 0.95

	// RewardMultiplier is the gross payout on a clear, as a multiple of
	// the entry cost.
	RewardMultiplier = 2
)

// Errors surfaced to players.
var (
	ErrInvalidFloor = errors.New("floor must be between 1 and 20")
	ErrNoWager      = errors.New("dungeon runs take a floor, not a bet")
)

// EntryCost is the buy-in for a floor.
func EntryCost(floor int) int64 {
	return int64(EntryCostPerFloor) * int64(floor)
}

// PowerScore is the weighted combat stat combination.
func PowerScore(attack, defense, speed int) float64 {
	return AttackWeight*float64(attack) + DefenseWeight*float64(defense) + SpeedWeight*float64(speed)
}

// Threshold is the difficulty score a floor demands.
func Threshold(floor int) float64 {
	return ThresholdPerFloor * float64(floor)
}

// ClearChance is the probability of clearing a floor with the given stats:
// zero below the minimum power ratio, otherwise the power-to-threshold
// ratio scaled and clamped to [MinChance, MaxChance].
func ClearChance(attack, defense, speed, floor int) float64 {
	power := PowerScore(attack, defense, speed)
	threshold := Threshold(floor)
	if power < MinPowerRatio*threshold {
		return 0
	}
	chance := power / (2 * threshold)
	if chance < MinChance {
		return MinChance
	}
	if chance > MaxChance {
		return MaxChance
	}
	return chance
}

// Resolver is the dungeon game. The floor arrives via params rather than
// the wager: the entry cost is derived, not chosen.
type Resolver struct {
	ledger      *service.LedgerService
	progression *service.ProgressionService
	stats       *repository.StatsRepository
	rng         *rand.Rand
}

// New creates the dungeon resolver.
func New(ledger *service.LedgerService, progression *service.ProgressionService, stats *repository.StatsRepository) *Resolver {
	return &Resolver{
		ledger:      ledger,
		progression: progression,
		stats:       stats,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *Resolver) Name() string        { return "Dungeon" }
func (r *Resolver) Command() string     { return "dungeon" }
func (r *Resolver) Description() string { return "Fight through a dungeon floor for loot and XP" }
func (r *Resolver) MaxBet() int64       { return 0 }
func (r *Resolver) Cooldown() int       { return 0 }

// ValidateBet rejects wagers and checks the floor parameter.
func (r *Resolver) ValidateBet(bet int64, params map[string]any) error {
	if bet != 0 {
		return ErrNoWager
	}
	floor, ok := params["floor"].(int)
	if !ok || floor < 1 || floor > MaxFloor {
		return ErrInvalidFloor
	}
	return nil
}

// Resolve runs one floor: pay the entry cost, roll against the clear
// chance, collect loot and combat XP on a clear.
func (r *Resolver) Resolve(ctx context.Context, playerID int64, bet int64, params map[string]any) (*game.Result, error) {
	if err := r.ValidateBet(bet, params); err != nil {
		return nil, err
	}
	floor := params["floor"].(int)
	cost := EntryCost(floor)

	p, err := r.ledger.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p.Balance < cost {
		return nil, service.ErrInsufficientFunds
	}

	chance := ClearChance(p.PlayerAttack, p.PlayerDefense, p.PlayerSpeed, floor)
	cleared := chance > 0 && r.rng.Float64() < chance

	var payout int64
	var desc string
	if cleared {
		payout = cost * (RewardMultiplier - 1)
		desc = fmt.Sprintf("You clear floor %d and haul out %d coins! (%.0f%% odds)", floor, payout, chance*100)
	} else {
		payout = -cost
		if chance == 0 {
			desc = fmt.Sprintf("Floor %d is far beyond your strength. You barely escape, %d coins poorer.", floor, cost)
		} else {
			desc = fmt.Sprintf("Floor %d beats you back. You lose %d coins. (%.0f%% odds)", floor, cost, chance*100)
		}
	}

	txDesc := fmt.Sprintf("dungeon floor %d", floor)
	if _, err := r.ledger.Credit(ctx, playerID, payout, model.TxTypeDungeon, &txDesc); err != nil {
		return nil, err
	}

	if cleared {
		err = r.stats.RecordOutcome(ctx, playerID, "dungeon", true, false, payout, 0)
	} else {
		err = r.stats.RecordOutcome(ctx, playerID, "dungeon", false, true, 0, cost)
	}
	if err != nil {
		return nil, err
	}

	// XP scales with the floor; a failed run still teaches something.
	xp := int64(floor) * 50
	if !cleared {
		xp = int64(floor) * 10
	}
	progress, err := r.progression.AddCombatXP(ctx, playerID, xp)
	if err != nil {
		return nil, err
	}
	desc += fmt.Sprintf(" (+%d XP)", xp)
	if progress.LeveledUp {
		desc += fmt.Sprintf("\nCombat level up! Level %d: ATK %d, DEF %d, SPD %d.",
			progress.Level, progress.Attack, progress.Defense, progress.Speed)
	}

	return &game.Result{
		Payout:      payout,
		Won:         cleared,
		Lost:        !cleared,
		Description: desc,
		Details: map[string]any{
			"floor":  floor,
			"chance": chance,
		},
	}, nil
}
