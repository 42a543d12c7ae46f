package rps

import (
	"math/rand"
	"testing"
)

func TestBeats(t *testing.T) {
	tests := []struct {
		a, b Choice
		want bool
	}{
		{Rock, Scissors, true},
		{Paper, Rock, true},
		{Scissors, Paper, true},
		{Rock, Paper, false},
		{Paper, Scissors, false},
		{Scissors, Rock, false},
		{Rock, Rock, false},
	}
	for _, tt := range tests {
		if got := Beats(tt.a, tt.b); got != tt.want {
			t.Errorf("Beats(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCycleIsComplete(t *testing.T) {
	// Every ordered pair of distinct choices has exactly one winner.
	choices := []Choice{Rock, Paper, Scissors}
	for _, a := range choices {
		for _, b := range choices {
			if a == b {
				continue
			}
			if Beats(a, b) == Beats(b, a) {
				t.Errorf("no single winner for %s vs %s", a, b)
			}
		}
	}
}

func TestThrowUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	counts := map[Choice]int{}
	const trials = 90000
	for i := 0; i < trials; i++ {
		counts[Throw(rng)]++
	}
	for c, n := range counts {
		rate := float64(n) / trials
		if rate < 0.30 || rate > 0.37 {
			t.Errorf("%s rate = %v, want ~0.333", c, rate)
		}
	}
}

func TestParseChoice(t *testing.T) {
	if _, err := ParseChoice("rock"); err != nil {
		t.Errorf("ParseChoice(rock) = %v", err)
	}
	if _, err := ParseChoice("lizard"); err == nil {
		t.Error("ParseChoice(lizard) should fail")
	}
}
