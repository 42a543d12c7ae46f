package duel

import (
	"math/rand"
	"testing"

	"pgregory.net/rapid"
)

func TestResolveExchange(t *testing.T) {
	tests := []struct {
		name       string
		rawA, rawB int
		effA, effB Effects
		wantA      Exchange
		wantB      Exchange
	}{
		{
			name: "no effects",
			rawA: 18, rawB: 16,
			wantA: Exchange{Dealt: 18},
			wantB: Exchange{Dealt: 16},
		},
		{
			name: "critical doubles",
			rawA: 17, rawB: 17,
			effA:  Effects{Critical: true},
			wantA: Exchange{Dealt: 34},
			wantB: Exchange{Dealt: 17},
		},
		{
			name: "weak halves",
			rawA: 18, rawB: 18,
			effA:  Effects{Weak: true},
			wantA: Exchange{Dealt: 9},
			wantB: Exchange{Dealt: 18},
		},
		{
			name: "fire adds half again",
			rawA: 16, rawB: 16,
			effA:  Effects{Fire: true},
			wantA: Exchange{Dealt: 24},
			wantB: Exchange{Dealt: 16},
		},
		{
			name: "stun zeroes the opponent",
			rawA: 19, rawB: 19,
			effA:  Effects{Stun: true},
			wantA: Exchange{Dealt: 19},
			wantB: Exchange{Dealt: 0},
		},
		{
			name: "shield cuts incoming by a quarter",
			rawA: 16, rawB: 16,
			effB:  Effects{Shield: true},
			wantA: Exchange{Dealt: 12},
			wantB: Exchange{Dealt: 16},
		},
		{
			name: "critical through shield",
			rawA: 16, rawB: 16,
			effA:  Effects{Critical: true},
			effB:  Effects{Shield: true},
			wantA: Exchange{Dealt: 24},
			wantB: Exchange{Dealt: 16},
		},
		{
			name: "deflect bounces a quarter back",
			rawA: 16, rawB: 16,
			effB:  Effects{Deflect: true},
			wantA: Exchange{Dealt: 16, Deflected: 4},
			wantB: Exchange{Dealt: 16},
		},
		{
			name: "lifesteal heals a quarter of damage dealt",
			rawA: 16, rawB: 16,
			effA:  Effects{Lifesteal: true},
			wantA: Exchange{Dealt: 16, Healed: 4},
			wantB: Exchange{Dealt: 16},
		},
		{
			name: "stunned side deals nothing and heals nothing but still deflects",
			rawA: 18, rawB: 18,
			effA:  Effects{Stun: true},
			effB:  Effects{Deflect: true, Lifesteal: true},
			wantA: Exchange{Dealt: 18, Deflected: 4},
			wantB: Exchange{Dealt: 0, Healed: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotA, gotB := ResolveExchange(tt.rawA, tt.rawB, tt.effA, tt.effB)
			if gotA != tt.wantA {
				t.Errorf("side A = %+v, want %+v", gotA, tt.wantA)
			}
			if gotB != tt.wantB {
				t.Errorf("side B = %+v, want %+v", gotB, tt.wantB)
			}
		})
	}
}

func TestRollEffectsOffensiveTierExclusive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		e := RollEffects(rng)
		count := 0
		for _, b := range []bool{e.Fire, e.Critical, e.Weak, e.Stun} {
			if b {
				count++
			}
		}
		if count > 1 {
			t.Fatalf("offensive tier not exclusive: %+v", e)
		}
	}
}

func TestFightTerminates(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		out := Fight(rng, DefaultMaxRestarts)
		switch out.State {
		case StateResolvedWinner:
			if out.Winner != 0 && out.Winner != 1 {
				t.Fatalf("winner index = %d", out.Winner)
			}
		case StateResolvedTie:
		default:
			t.Fatalf("fight ended in non-terminal state %d", out.State)
		}
		if out.Rounds < 1 || out.Rounds > MaxRounds {
			t.Fatalf("rounds = %d", out.Rounds)
		}
	}
}

func TestFightRestartsBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		out := Fight(rng, 3)
		if out.Restarts > 4 {
			t.Fatalf("restarts = %d, cap is 3", out.Restarts)
		}
		if out.Restarts == 4 && out.State != StateResolvedTie {
			t.Fatalf("exceeding the restart cap must tie, got state %d", out.State)
		}
	}
}

func TestExchangeDamageNonNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rawA := rapid.IntRange(BaseDamageMin, BaseDamageMax).Draw(t, "rawA")
		rawB := rapid.IntRange(BaseDamageMin, BaseDamageMax).Draw(t, "rawB")
		effA := genEffects(t, "A")
		effB := genEffects(t, "B")

		a, b := ResolveExchange(rawA, rawB, effA, effB)
		for _, ex := range []Exchange{a, b} {
			if ex.Dealt < 0 || ex.Deflected < 0 || ex.Healed < 0 {
				t.Fatalf("negative exchange component: %+v", ex)
			}
			if ex.Deflected > ex.Dealt {
				t.Fatalf("deflected %d exceeds dealt %d", ex.Deflected, ex.Dealt)
			}
		}
	})
}

func genEffects(t *rapid.T, label string) Effects {
	var e Effects
	switch rapid.IntRange(0, 4).Draw(t, label+"_tier") {
	case 1:
		e.Fire = true
	case 2:
		e.Critical = true
	case 3:
		e.Weak = true
	case 4:
		e.Stun = true
	}
	e.Shield = rapid.Bool().Draw(t, label+"_shield")
	e.Lifesteal = rapid.Bool().Draw(t, label+"_lifesteal")
	e.Deflect = rapid.Bool().Draw(t, label+"_deflect")
	return e
}
