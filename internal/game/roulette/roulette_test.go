package roulette

import (
	"math"
	"math/rand"
	"testing"
)

func TestPayout(t *testing.T) {
	tests := []struct {
		name           string
		bet            int64
		choice, landed Color
		want           int64
	}{
		{"red hits", 100, Red, Red, 100},
		{"black hits", 100, Black, Black, 100},
		{"green hits", 100, Green, Green, 1300},
		{"red misses to black", 100, Red, Black, -100},
		{"green misses", 100, Green, Red, -100},
		{"color misses to green", 100, Black, Green, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Payout(tt.bet, tt.choice, tt.landed); got != tt.want {
				t.Errorf("Payout(%d, %s, %s) = %d, want %d", tt.bet, tt.choice, tt.landed, got, tt.want)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	for _, valid := range []string{"red", "black", "green"} {
		if _, err := ParseColor(valid); err != nil {
			t.Errorf("ParseColor(%q) = %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "blue", "RED", "greens"} {
		if _, err := ParseColor(invalid); err == nil {
			t.Errorf("ParseColor(%q) should fail", invalid)
		}
	}
}

func TestWheelDistribution(t *testing.T) {
	// Red and black should each land ~18/38 of the time, green ~2/38.
	rng := rand.New(rand.NewSource(321))
	const trials = 200000
	counts := map[Color]int{}
	for i := 0; i < trials; i++ {
		counts[SpinWheel(rng)]++
	}

	checks := []struct {
		color Color
		want  float64
	}{
		{Red, 18.0 / 38.0},
		{Black, 18.0 / 38.0},
		{Green, 2.0 / 38.0},
	}
	for _, c := range checks {
		got := float64(counts[c.color]) / trials
		if math.Abs(got-c.want) > 0.01 {
			t.Errorf("%s rate = %v, want ~%v", c.color, got, c.want)
		}
	}
}
