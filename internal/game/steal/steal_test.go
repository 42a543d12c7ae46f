package steal

import (
	"errors"
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"

	"vaultbot/internal/model"
)

func TestSuccessChance(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		want    float64
	}{
		{"broke target", 0, 0.25},
		{"halfway to the pivot", 2500, 0.50},
		{"at the pivot", 5000, 0.75},
		{"far past the pivot caps", 1000000, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuccessChance(tt.balance)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SuccessChance(%d) = %v, want %v", tt.balance, got, tt.want)
			}
		})
	}
}

func TestSuccessChanceBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		balance := rapid.Int64Range(0, 10_000_000).Draw(t, "balance")
		chance := SuccessChance(balance)
		if chance < BaseChance || chance > BaseChance+WealthChance {
			t.Fatalf("SuccessChance(%d) = %v outside [%v, %v]",
				balance, chance, BaseChance, BaseChance+WealthChance)
		}
	})
}

func TestValidate(t *testing.T) {
	g := &Game{
		cooldown:   DefaultCooldownSeconds * time.Second,
		protection: DefaultProtectionSeconds * time.Second,
	}
	now := time.Now()

	ready := func() (*model.Player, *model.Player) {
		return &model.Player{DiscordID: 1, Balance: 500},
			&model.Player{DiscordID: 2, Balance: 500}
	}

	t.Run("valid attempt", func(t *testing.T) {
		thief, target := ready()
		if err := g.validate(thief, target, now); err != nil {
			t.Errorf("validate() = %v", err)
		}
	})

	t.Run("self steal", func(t *testing.T) {
		thief, _ := ready()
		if err := g.validate(thief, thief, now); !errors.Is(err, ErrSelfSteal) {
			t.Errorf("validate() = %v, want ErrSelfSteal", err)
		}
	})

	t.Run("thief below minimum", func(t *testing.T) {
		thief, target := ready()
		thief.Balance = MinBalance - 1
		if err := g.validate(thief, target, now); !errors.Is(err, ErrThiefTooPoor) {
			t.Errorf("validate() = %v, want ErrThiefTooPoor", err)
		}
	})

	t.Run("target below minimum", func(t *testing.T) {
		thief, target := ready()
		target.Balance = MinBalance - 1
		if err := g.validate(thief, target, now); !errors.Is(err, ErrTargetTooPoor) {
			t.Errorf("validate() = %v, want ErrTargetTooPoor", err)
		}
	})

	t.Run("thief on cooldown", func(t *testing.T) {
		thief, target := ready()
		thief.LastSteal = now.Add(-10 * time.Minute).Unix()
		if err := g.validate(thief, target, now); !errors.Is(err, ErrOnCooldown) {
			t.Errorf("validate() = %v, want ErrOnCooldown", err)
		}
	})

	t.Run("cooldown elapsed", func(t *testing.T) {
		thief, target := ready()
		thief.LastSteal = now.Add(-31 * time.Minute).Unix()
		if err := g.validate(thief, target, now); err != nil {
			t.Errorf("validate() = %v", err)
		}
	})

	t.Run("target protected", func(t *testing.T) {
		thief, target := ready()
		target.LastStolen = now.Add(-time.Hour).Unix()
		if err := g.validate(thief, target, now); !errors.Is(err, ErrTargetProtected) {
			t.Errorf("validate() = %v, want ErrTargetProtected", err)
		}
	})

	t.Run("protection elapsed", func(t *testing.T) {
		thief, target := ready()
		target.LastStolen = now.Add(-9 * time.Hour).Unix()
		if err := g.validate(thief, target, now); err != nil {
			t.Errorf("validate() = %v", err)
		}
	})
}
