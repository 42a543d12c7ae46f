package service

import (
	"context"
	"fmt"
	"math"

	"vaultbot/internal/model"
	"vaultbot/internal/repository"
)

// MaxSkillLevel caps mining and fishing levels.
const MaxSkillLevel = 99

// XPForLevel returns the XP needed to advance from level L to L+1.
// Past the cap no further XP is needed or displayed.
func XPForLevel(level int) int64 {
	if level < 1 || level >= MaxSkillLevel {
		return 0
	}
	return int64(math.Floor(50 * math.Pow(float64(level), 1.5)))
}

// LevelForXP returns the level reached at cumulative XP, in [1, MaxSkillLevel].
func LevelForXP(xp int64) int {
	level := 1
	var cumulative int64
	for level < MaxSkillLevel {
		cumulative += XPForLevel(level)
		if xp < cumulative {
			break
		}
		level++
	}
	return level
}

// XPToNextLevel returns how much XP remains until the next level, or 0 at cap.
func XPToNextLevel(xp int64) int64 {
	level := LevelForXP(xp)
	if level >= MaxSkillLevel {
		return 0
	}
	var cumulative int64
	for l := 1; l <= level; l++ {
		cumulative += XPForLevel(l)
	}
	return cumulative - xp
}

// milestone is a one-time tool grant at a fixed level.
type milestone struct {
	level int
	tier  model.ToolTier
}

// Milestones in ascending level order; each is granted once, idempotently.
var milestones = []milestone{
	{20, model.TierStone},
	{40, model.TierIron},
	{60, model.TierGold},
	{80, model.TierDiamond},
	{99, model.TierNetherite},
}

// PayoutMultiplier combines the level bonus (2% per level) and the best
// owned tool's bonus into a single factor applied to a base payout.
func PayoutMultiplier(level int, tier model.ToolTier, hasTool bool) float64 {
	m := 1.0 + 0.02*float64(level)
	if hasTool {
		m += tier.PayoutBonus()
	}
	return m
}

// SkillProgress reports the outcome of an XP award.
type SkillProgress struct {
	Level        int
	XP           int64
	XPToNext     int64
	LeveledUp    bool
	GrantedTools []string
}

// ProgressionService owns the shared mining/fishing leveling curve, the
// milestone tool grants, and the dungeon combat progression.
type ProgressionService struct {
	playerRepo    *repository.PlayerRepository
	inventoryRepo *repository.InventoryRepository
}

// NewProgressionService creates a new ProgressionService instance.
func NewProgressionService(
	playerRepo *repository.PlayerRepository,
	inventoryRepo *repository.InventoryRepository,
) *ProgressionService {
	return &ProgressionService{
		playerRepo:    playerRepo,
		inventoryRepo: inventoryRepo,
	}
}

func skillFields(kind model.ToolKind) (xpField, levelField string) {
	if kind == model.ToolFishingRod {
		return "fishing_xp", "fishing_level"
	}
	return "mining_xp", "mining_level"
}

// AddSkillXP awards XP to the skill behind kind, recomputes the level, and
// grants any milestone tools the new level unlocks. Grants are idempotent:
// an already-owned (kind, tier) is skipped.
func (s *ProgressionService) AddSkillXP(ctx context.Context, playerID int64, kind model.ToolKind, xp int64) (*SkillProgress, error) {
	xpField, levelField := skillFields(kind)

	p, err := s.playerRepo.IncrementFields(ctx, playerID, model.StatDelta{xpField: xp})
	if err != nil {
		return nil, fmt.Errorf("failed to add xp: %w", err)
	}

	totalXP := p.MiningXP
	oldLevel := p.MiningLevel
	if kind == model.ToolFishingRod {
		totalXP = p.FishingXP
		oldLevel = p.FishingLevel
	}

	newLevel := LevelForXP(totalXP)
	progress := &SkillProgress{
		Level:     newLevel,
		XP:        totalXP,
		XPToNext:  XPToNextLevel(totalXP),
		LeveledUp: newLevel > oldLevel,
	}

	if progress.LeveledUp {
		if _, err := s.playerRepo.UpdateFields(ctx, playerID, map[string]int64{levelField: int64(newLevel)}); err != nil {
			return nil, fmt.Errorf("failed to store level: %w", err)
		}
	}

	for _, m := range milestones {
		if newLevel < m.level {
			break
		}
		granted, err := s.inventoryRepo.GrantTool(ctx, playerID, kind, m.tier, m.level)
		if err != nil {
			return nil, err
		}
		if granted {
			progress.GrantedTools = append(progress.GrantedTools, m.tier.DisplayName(kind))
		}
	}

	return progress, nil
}

// BestTool returns the best owned tool of a kind for payout computation.
func (s *ProgressionService) BestTool(ctx context.Context, playerID int64, kind model.ToolKind) (model.ToolTier, bool, error) {
	return s.inventoryRepo.BestTool(ctx, playerID, kind)
}

// Combat progression: a separate curve from the skill curve, with stat
// gains on level-up and level-scaled HP.

// CombatXPForLevel returns the XP needed to advance combat level L to L+1.
func CombatXPForLevel(level int) int64 {
	if level < 1 {
		return 0
	}
	return int64(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// CombatLevelForXP returns the combat level reached at cumulative XP.
func CombatLevelForXP(xp int64) int {
	level := 1
	var cumulative int64
	for {
		cumulative += CombatXPForLevel(level)
		if xp < cumulative {
			return level
		}
		level++
	}
}

// MaxHPForLevel returns the HP cap at a combat level.
func MaxHPForLevel(level int) int {
	return 100 + 5*(level-1)
}

// CombatProgress reports the outcome of a combat XP award.
type CombatProgress struct {
	Level     int
	XP        int64
	LeveledUp bool
	HP        int
	Attack    int
	Defense   int
	Speed     int
}

// AddCombatXP awards dungeon XP. Each level gained adds +2 attack, +2
// defense and +1 speed, and refills HP to the new cap.
func (s *ProgressionService) AddCombatXP(ctx context.Context, playerID int64, xp int64) (*CombatProgress, error) {
	p, err := s.playerRepo.IncrementFields(ctx, playerID, model.StatDelta{"player_xp": xp})
	if err != nil {
		return nil, fmt.Errorf("failed to add combat xp: %w", err)
	}

	newLevel := CombatLevelForXP(p.PlayerXP)
	progress := &CombatProgress{
		Level:     newLevel,
		XP:        p.PlayerXP,
		LeveledUp: newLevel > p.PlayerLevel,
		HP:        p.PlayerHP,
		Attack:    p.PlayerAttack,
		Defense:   p.PlayerDefense,
		Speed:     p.PlayerSpeed,
	}

	if progress.LeveledUp {
		gained := newLevel - p.PlayerLevel
		updated, err := s.playerRepo.UpdateFields(ctx, playerID, map[string]int64{
			"player_level":   int64(newLevel),
			"player_hp":      int64(MaxHPForLevel(newLevel)),
			"player_attack":  int64(p.PlayerAttack + 2*gained),
			"player_defense": int64(p.PlayerDefense + 2*gained),
			"player_speed":   int64(p.PlayerSpeed + gained),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store combat level: %w", err)
		}
		progress.HP = updated.PlayerHP
		progress.Attack = updated.PlayerAttack
		progress.Defense = updated.PlayerDefense
		progress.Speed = updated.PlayerSpeed
	}

	return progress, nil
}
