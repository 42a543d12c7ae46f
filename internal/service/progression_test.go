package service

import (
	"testing"

	"pgregory.net/rapid"

	"vaultbot/internal/model"
)

func TestXPForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{1, 50},    // floor(50 * 1)
		{2, 141},   // floor(50 * 2.828...)
		{4, 400},   // floor(50 * 8)
		{10, 1581}, // floor(50 * 31.62...)
		{98, 48507},
		{99, 0},  // at cap
		{0, 0},   // below the curve
		{150, 0}, // past the cap
	}
	for _, tt := range tests {
		if got := XPForLevel(tt.level); got != tt.want {
			t.Errorf("XPForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{49, 1},
		{50, 2},   // exactly one level's worth
		{190, 2},  // 50+141 = 191 needed for level 3
		{191, 3},
		{1 << 50, MaxSkillLevel},
	}
	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelForXPProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64Range(0, 10_000_000).Draw(t, "a")
		b := rapid.Int64Range(0, 10_000_000).Draw(t, "b")

		la, lb := LevelForXP(a), LevelForXP(b)
		if la < 1 || la > MaxSkillLevel {
			t.Fatalf("LevelForXP(%d) = %d outside [1, %d]", a, la, MaxSkillLevel)
		}
		// Monotonic: more XP never means a lower level.
		if a <= b && la > lb {
			t.Fatalf("level regressed: LevelForXP(%d)=%d > LevelForXP(%d)=%d", a, la, b, lb)
		}
	})
}

func TestXPToNextLevel(t *testing.T) {
	if got := XPToNextLevel(0); got != 50 {
		t.Errorf("XPToNextLevel(0) = %d, want 50", got)
	}
	if got := XPToNextLevel(30); got != 20 {
		t.Errorf("XPToNextLevel(30) = %d, want 20", got)
	}
	// At the cap there is nothing left to earn.
	if got := XPToNextLevel(1 << 50); got != 0 {
		t.Errorf("XPToNextLevel at cap = %d, want 0", got)
	}
}

func TestPayoutMultiplier(t *testing.T) {
	tests := []struct {
		name    string
		level   int
		tier    model.ToolTier
		hasTool bool
		want    float64
	}{
		{"level one bare hands", 1, 0, false, 1.02},
		{"level fifty no tool", 50, 0, false, 2.0},
		{"level one stone tool", 1, model.TierStone, true, 1.12},
		{"level ten iron tool", 10, model.TierIron, true, 2.2},
		{"level 99 netherite", 99, model.TierNetherite, true, 12.98},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PayoutMultiplier(tt.level, tt.tier, tt.hasTool)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("PayoutMultiplier(%d, %v, %v) = %v, want %v",
					tt.level, tt.tier, tt.hasTool, got, tt.want)
			}
		})
	}
}

func TestMilestonesOrdered(t *testing.T) {
	prevLevel, prevTier := 0, model.ToolTier(-1)
	for _, m := range milestones {
		if m.level <= prevLevel {
			t.Errorf("milestone levels must ascend, got %d after %d", m.level, prevLevel)
		}
		if m.tier <= prevTier {
			t.Errorf("milestone tiers must ascend, got %v after %v", m.tier, prevTier)
		}
		prevLevel, prevTier = m.level, m.tier
	}
}

func TestCombatLevelCurve(t *testing.T) {
	if got := CombatLevelForXP(0); got != 1 {
		t.Errorf("CombatLevelForXP(0) = %d, want 1", got)
	}
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64Range(0, 50_000_000).Draw(t, "a")
		b := rapid.Int64Range(0, 50_000_000).Draw(t, "b")
		if a <= b && CombatLevelForXP(a) > CombatLevelForXP(b) {
			t.Fatalf("combat level regressed between %d and %d", a, b)
		}
	})
}

func TestMaxHPForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 100},
		{2, 105},
		{10, 145},
	}
	for _, tt := range tests {
		if got := MaxHPForLevel(tt.level); got != tt.want {
			t.Errorf("MaxHPForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}
