package slots

import (
	"math/rand"
	"testing"
)

func TestGridMultiplier(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
		want float64
	}{
		{"top row", Grid{1, 1, 1, 2, 3, 4, 5, 6, 0}, LineMultiplier},
		{"middle column", Grid{0, 2, 1, 3, 2, 4, 5, 2, 6}, LineMultiplier},
		{"main diagonal", Grid{3, 0, 1, 2, 3, 4, 5, 6, 3}, LineMultiplier},
		{"anti diagonal", Grid{0, 1, 5, 2, 5, 3, 5, 4, 6}, LineMultiplier},
		{"three specials scattered", Grid{7, 0, 1, 2, 7, 3, 4, 5, 7}, LineMultiplier}, // diagonal of specials is a line win
		{"three specials no line", Grid{7, 7, 0, 1, 2, 7, 3, 4, 5}, ScatterThreeMul},
		{"four specials no line", Grid{7, 7, 0, 7, 2, 1, 3, 7, 5}, ScatterFourMul},
		{"five specials no line", Grid{7, 7, 0, 7, 2, 7, 3, 7, 5}, ScatterFivePlusMul},
		{"nothing", Grid{0, 1, 2, 3, 4, 5, 6, 0, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.grid.Multiplier(); got != tt.want {
				t.Errorf("Multiplier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLineWinTakesPrecedence(t *testing.T) {
	// A full row of specials is a line win, not a scatter payout.
	g := Grid{7, 7, 7, 0, 1, 2, 3, 4, 5}
	if !g.LineWin() {
		t.Fatal("expected a line win")
	}
	if got := g.Multiplier(); got != LineMultiplier {
		t.Errorf("Multiplier() = %v, want %v", got, LineMultiplier)
	}
}

func TestSpinSymbolRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		g := Spin(rng)
		for _, s := range g {
			if s < 0 || s >= SymbolCount {
				t.Fatalf("symbol %d out of range", s)
			}
		}
	}
}

func TestSpinLineWinRate(t *testing.T) {
	// With 8 symbols the chance any single line matches is 1/64; lines
	// overlap, so the combined rate is just under 8/64. Check the
	// empirical rate is in a generous band around 11-12%.
	rng := rand.New(rand.NewSource(99))
	const trials = 200000
	wins := 0
	for i := 0; i < trials; i++ {
		if Spin(rng).LineWin() {
			wins++
		}
	}
	rate := float64(wins) / trials
	if rate < 0.09 || rate > 0.14 {
		t.Errorf("line win rate = %v, expected around 0.115", rate)
	}
}
