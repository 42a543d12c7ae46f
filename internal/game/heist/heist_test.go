package heist

import (
	"math"
	"testing"
)

func TestWinChance(t *testing.T) {
	tests := []struct {
		name       string
		difficulty string
		crew       int
		want       float64
	}{
		{"hard with three", "hard", 3, 0.26},
		{"hard solo", "hard", 1, 0.22},
		{"easy with ten", "easy", 10, 0.80},
		{"easy crew bonus capped", "easy", 20, 0.85},
		{"medium with five", "medium", 5, 0.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := LookupDifficulty(tt.difficulty)
			if err != nil {
				t.Fatalf("LookupDifficulty(%q): %v", tt.difficulty, err)
			}
			got := d.WinChance(tt.crew)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("WinChance(%d) = %v, want %v", tt.crew, got, tt.want)
			}
		})
	}
}

func TestWinChanceNeverExceedsCap(t *testing.T) {
	for _, d := range Difficulties() {
		for n := 1; n <= 50; n++ {
			if c := d.WinChance(n); c > WinChanceCap {
				t.Errorf("%s: WinChance(%d) = %v exceeds cap", d.Name, n, c)
			}
		}
	}
}

func TestStakeFor(t *testing.T) {
	hard, _ := LookupDifficulty("hard")
	tests := []struct {
		balance int64
		want    int64
	}{
		{0, 10000},          // floor applies
		{10000, 10000},      // 15% of 10k is below the floor
		{100000, 15000},     // percentage takes over
		{1000000, 150000},
	}
	for _, tt := range tests {
		if got := hard.StakeFor(tt.balance); got != tt.want {
			t.Errorf("StakeFor(%d) = %d, want %d", tt.balance, got, tt.want)
		}
	}
}

func TestLookupDifficultyUnknown(t *testing.T) {
	if _, err := LookupDifficulty("nightmare"); err != ErrUnknownLevel {
		t.Errorf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestNewCrewCapDefaults(t *testing.T) {
	tests := []struct {
		name string
		cap  int
		want int
	}{
		{"zero falls back to the package default", 0, MaxParticipants},
		{"negative falls back to the package default", -3, MaxParticipants},
		{"explicit cap is kept", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil, nil, nil, 0, tt.cap)
			if g.maxCrew != tt.want {
				t.Errorf("maxCrew = %d, want %d", g.maxCrew, tt.want)
			}
		})
	}
}
