package gather

import (
	"math/rand"
	"testing"

	"pgregory.net/rapid"
)

func TestRollTier(t *testing.T) {
	tests := []struct {
		roll int
		want Tier
	}{
		{0, TierLoss},
		{4, TierLoss},
		{5, TierNothing},
		{19, TierNothing},
		{20, TierCommon},
		{59, TierCommon},
		{60, TierUncommon},
		{84, TierUncommon},
		{85, TierRare},
		{96, TierRare},
		{97, TierEpic},
		{100, TierEpic},
		{101, TierJumbo},
	}
	for _, tt := range tests {
		if got := RollTier(tt.roll); got != tt.want {
			t.Errorf("RollTier(%d) = %v, want %v", tt.roll, got, tt.want)
		}
	}
}

func TestPayoutRange(t *testing.T) {
	tests := []struct {
		tier   Tier
		lo, hi int64
	}{
		{TierCommon, 100, 150},
		{TierUncommon, 150, 250},
		{TierRare, 250, 500},
		{TierEpic, 500, 1000},
		{TierJumbo, 1500, 2500},
		{TierLoss, 0, 0},
		{TierNothing, 0, 0},
	}
	for _, tt := range tests {
		lo, hi := payoutRange(tt.tier)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("payoutRange(%v) = (%d, %d), want (%d, %d)", tt.tier, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestRollTierTotalOrder(t *testing.T) {
	// Every roll in 0-101 maps to exactly one bucket and buckets never
	// regress as the roll climbs.
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(0, 101).Draw(t, "a")
		b := rapid.IntRange(0, 101).Draw(t, "b")
		if a <= b && RollTier(a) > RollTier(b) {
			t.Fatalf("tier regressed: RollTier(%d)=%v > RollTier(%d)=%v", a, RollTier(a), b, RollTier(b))
		}
	})
}

func TestJumboOnlyAtTopRoll(t *testing.T) {
	for roll := 0; roll <= 100; roll++ {
		if RollTier(roll) == TierJumbo {
			t.Fatalf("roll %d should not be jumbo", roll)
		}
	}
	if RollTier(101) != TierJumbo {
		t.Fatal("roll 101 must be jumbo")
	}
}

func TestTierDistribution(t *testing.T) {
	// With a uniform 0-101 roll the loss bucket should land about 5/102
	// of the time and the common bucket about 40/102.
	rng := rand.New(rand.NewSource(17))
	const trials = 200000
	counts := map[Tier]int{}
	for i := 0; i < trials; i++ {
		counts[RollTier(rng.Intn(102))]++
	}

	checks := []struct {
		tier Tier
		want float64
	}{
		{TierLoss, 5.0 / 102.0},
		{TierNothing, 15.0 / 102.0},
		{TierCommon, 40.0 / 102.0},
		{TierUncommon, 25.0 / 102.0},
		{TierRare, 12.0 / 102.0},
		{TierEpic, 4.0 / 102.0},
		{TierJumbo, 1.0 / 102.0},
	}
	for _, c := range checks {
		got := float64(counts[c.tier]) / trials
		if got < c.want-0.01 || got > c.want+0.01 {
			t.Errorf("tier %v rate = %v, want ~%v", c.tier, got, c.want)
		}
	}
}
