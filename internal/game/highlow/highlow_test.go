package highlow

import (
	"math/rand"
	"testing"

	"pgregory.net/rapid"
)

func TestJudge(t *testing.T) {
	tests := []struct {
		name        string
		shown, next int
		guess       Guess
		want        int
	}{
		{"higher correct", 40, 70, Higher, 1},
		{"higher wrong", 40, 12, Higher, -1},
		{"lower correct", 80, 3, Lower, 1},
		{"lower wrong", 80, 99, Lower, -1},
		{"exact match pushes on higher", 50, 50, Higher, 0},
		{"exact match pushes on lower", 50, 50, Lower, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Judge(tt.shown, tt.next, tt.guess); got != tt.want {
				t.Errorf("Judge(%d, %d, %s) = %d, want %d", tt.shown, tt.next, tt.guess, got, tt.want)
			}
		})
	}
}

func TestJudgeSymmetry(t *testing.T) {
	// For any non-tie pair, exactly one of the two guesses wins.
	rapid.Check(t, func(t *rapid.T) {
		shown := rapid.IntRange(NumberMin, NumberMax).Draw(t, "shown")
		next := rapid.IntRange(NumberMin, NumberMax).Draw(t, "next")
		hi := Judge(shown, next, Higher)
		lo := Judge(shown, next, Lower)
		if shown == next {
			if hi != 0 || lo != 0 {
				t.Fatalf("tie must push both guesses, got %d/%d", hi, lo)
			}
			return
		}
		if hi+lo != 0 || hi == 0 {
			t.Fatalf("Judge(%d, %d): higher=%d lower=%d", shown, next, hi, lo)
		}
	})
}

func TestDrawNumberRange(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 10000; i++ {
		n := DrawNumber(rng)
		if n < NumberMin || n > NumberMax {
			t.Fatalf("DrawNumber = %d out of range", n)
		}
	}
}
