// Package gather implements the mining and fishing resolvers. Both share
// the same roll buckets, leveling curve and tool bonus; only the flavor and
// the tool kind differ.
package gather

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"vaultbot/internal/game"
	"vaultbot/internal/model"
	"vaultbot/internal/repository"
	"vaultbot/internal/service"
)

// DefaultCooldown is the cooldown between gathers in seconds.
const DefaultCooldown = 30

// Tier is the outcome bucket a roll lands in.
type Tier int

const (
	TierLoss Tier = iota
	TierNothing
	TierCommon
	TierUncommon
	TierRare
	TierEpic
	TierJumbo
)

// RollTier maps a 0-101 roll to its outcome bucket. 101 is the jumbo bonus
// and only comes up on the single top roll.
func RollTier(roll int) Tier {
	switch {
	case roll < 5:
		return TierLoss
	case roll < 20:
		return TierNothing
	case roll < 60:
		return TierCommon
	case roll < 85:
		return TierUncommon
	case roll < 97:
		return TierRare
	case roll <= 100:
		return TierEpic
	default:
		return TierJumbo
	}
}

// payoutRange returns the half-open base payout range for a winning tier.
func payoutRange(t Tier) (lo, hi int64) {
	switch t {
	case TierCommon:
		return 100, 150
	case TierUncommon:
		return 150, 250
	case TierRare:
		return 250, 500
	case TierEpic:
		return 500, 1000
	case TierJumbo:
		return 1500, 2500
	default:
		return 0, 0
	}
}

// lossRange is the fixed base loss range for the loss bucket.
const (
	lossLo = 50
	lossHi = 100
)

var tierFlavors = map[model.ToolKind]map[Tier]string{
	model.ToolPickaxe: {
		TierLoss:     "Your pickaxe broke and you paid for repairs",
		TierNothing:  "You dug all day and found nothing but gravel",
		TierCommon:   "You mined some common ores",
		TierUncommon: "You struck a vein of iron",
		TierRare:     "You uncovered a pocket of gold",
		TierEpic:     "You hit a diamond seam",
		TierJumbo:    "JACKPOT! An ancient debris chamber",
	},
	model.ToolFishingRod: {
		TierLoss:     "Your line snapped and took the tackle with it",
		TierNothing:  "Nothing was biting today",
		TierCommon:   "You caught a few common fish",
		TierUncommon: "You reeled in a fat salmon",
		TierRare:     "You landed a rare swordfish",
		TierEpic:     "You hauled up a giant tuna",
		TierJumbo:    "JACKPOT! A chest tangled in your net",
	},
}

// Resolver is the gathering game for one tool kind.
type Resolver struct {
	kind        model.ToolKind
	ledger      *service.LedgerService
	progression *service.ProgressionService
	stats       *repository.StatsRepository
	rng         *rand.Rand
	cooldown    int
}

// New creates a gathering resolver for the given tool kind.
func New(kind model.ToolKind, ledger *service.LedgerService, progression *service.ProgressionService, stats *repository.StatsRepository) *Resolver {
	return &Resolver{
		kind:        kind,
		ledger:      ledger,
		progression: progression,
		stats:       stats,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		cooldown:    DefaultCooldown,
	}
}

// Name returns the game's display name.
func (r *Resolver) Name() string {
	if r.kind == model.ToolFishingRod {
		return "Fishing"
	}
	return "Mining"
}

// Command returns the slash command that triggers this game.
func (r *Resolver) Command() string {
	if r.kind == model.ToolFishingRod {
		return "fish"
	}
	return "mine"
}

// Description returns a short help line.
func (r *Resolver) Description() string {
	if r.kind == model.ToolFishingRod {
		return "Cast a line; better rods and levels mean bigger catches"
	}
	return "Swing your pickaxe; better tools and levels mean bigger hauls"
}

// MaxBet returns 0: gathering takes no wager.
func (r *Resolver) MaxBet() int64 { return 0 }

// Cooldown returns the seconds between gathers.
func (r *Resolver) Cooldown() int { return r.cooldown }

// ValidateBet rejects any wager: gathering is free to play.
func (r *Resolver) ValidateBet(bet int64, params map[string]any) error {
	if bet != 0 {
		return fmt.Errorf("%s takes no wager", r.Command())
	}
	return nil
}

func (r *Resolver) txType() string {
	if r.kind == model.ToolFishingRod {
		return model.TxTypeFish
	}
	return model.TxTypeMine
}

func (r *Resolver) skillLevel(p *model.Player) int {
	if r.kind == model.ToolFishingRod {
		return p.FishingLevel
	}
	return p.MiningLevel
}

// Resolve rolls the outcome bucket, applies level and tool bonuses, and
// persists the result. XP is gained on every attempt regardless of outcome.
func (r *Resolver) Resolve(ctx context.Context, playerID int64, bet int64, params map[string]any) (*game.Result, error) {
	if err := r.ValidateBet(bet, params); err != nil {
		return nil, err
	}

	p, err := r.ledger.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	level := r.skillLevel(p)

	tier, hasTool, err := r.progression.BestTool(ctx, playerID, r.kind)
	if err != nil {
		return nil, err
	}

	roll := r.rng.Intn(102) // 0-101 inclusive
	bucket := RollTier(roll)
	flavor := tierFlavors[r.kind][bucket]

	var payout int64
	switch bucket {
	case TierLoss:
		loss := lossLo + r.rng.Int63n(lossHi-lossLo)
		if loss > p.Balance {
			loss = p.Balance
		}
		payout = -loss
	case TierNothing:
		payout = 0
	default:
		lo, hi := payoutRange(bucket)
		base := lo + r.rng.Int63n(hi-lo)
		payout = int64(float64(base) * service.PayoutMultiplier(level, tier, hasTool))
	}

	if payout != 0 {
		desc := flavor
		if _, err := r.ledger.Credit(ctx, playerID, payout, r.txType(), &desc); err != nil {
			return nil, err
		}
	}

	won := payout > 0
	lost := payout < 0
	winnings, losses := payout, int64(0)
	if lost {
		winnings, losses = 0, -payout
	} else if !won {
		winnings = 0
	}
	if err := r.stats.RecordOutcome(ctx, playerID, r.Command(), won, lost, winnings, losses); err != nil {
		return nil, err
	}

	xp := int64(5 + r.rng.Intn(6)) // 5-10 XP, uniform, every attempt
	progress, err := r.progression.AddSkillXP(ctx, playerID, r.kind, xp)
	if err != nil {
		return nil, err
	}

	desc := flavor
	switch {
	case payout > 0:
		desc = fmt.Sprintf("%s and earned %d coins! (+%d XP)", flavor, payout, xp)
	case payout < 0:
		desc = fmt.Sprintf("%s: lost %d coins. (+%d XP)", flavor, -payout, xp)
	default:
		desc = fmt.Sprintf("%s. (+%d XP)", flavor, xp)
	}
	if progress.LeveledUp {
		desc += fmt.Sprintf("\nLevel up! %s level %d", r.Name(), progress.Level)
	}
	for _, tool := range progress.GrantedTools {
		desc += fmt.Sprintf("\nMilestone reward unlocked: %s!", tool)
	}

	return &game.Result{
		Payout:      payout,
		Won:         won,
		Lost:        lost,
		Description: desc,
		Details: map[string]any{
			"roll":   roll,
			"tier":   int(bucket),
			"xp":     xp,
			"level":  progress.Level,
			"toNext": progress.XPToNext,
		},
	}, nil
}
