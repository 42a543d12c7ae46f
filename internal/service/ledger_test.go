package service

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

// simulateDailyClaim mirrors the streak and reward arithmetic in
// LedgerService.ClaimDaily without a database.
func simulateDailyClaim(lastDaily int64, prevStreak int, now time.Time, cooldown time.Duration, daily, streakBonus int64) (reward int64, streak int, ok bool) {
	if lastDaily > 0 {
		last := time.Unix(lastDaily, 0)
		switch {
		case now.Sub(last) < cooldown:
			return 0, prevStreak, false
		case now.Sub(last) < 2*cooldown:
			streak = prevStreak + 1
		default:
			streak = 1
		}
	} else {
		streak = 1
	}
	return daily + streakBonus*int64(streak-1), streak, true
}

func TestDailyClaimStreak(t *testing.T) {
	now := time.Now()
	cooldown := 24 * time.Hour
	tests := []struct {
		name       string
		lastDaily  int64
		prevStreak int
		wantOK     bool
		wantStreak int
		wantReward int64
	}{
		{"first ever claim", 0, 0, true, 1, 1000},
		{"claim too early", now.Add(-time.Hour).Unix(), 3, false, 3, 0},
		{"streak continues within the window", now.Add(-30 * time.Hour).Unix(), 3, true, 4, 1300},
		{"streak resets after the window", now.Add(-72 * time.Hour).Unix(), 9, true, 1, 1000},
		{"exactly at the reset boundary", now.Add(-49 * time.Hour).Unix(), 5, true, 1, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reward, streak, ok := simulateDailyClaim(tt.lastDaily, tt.prevStreak, now, cooldown, 1000, 100)
			if ok != tt.wantOK || streak != tt.wantStreak || reward != tt.wantReward {
				t.Errorf("claim = (%d, %d, %v), want (%d, %d, %v)",
					reward, streak, ok, tt.wantReward, tt.wantStreak, tt.wantOK)
			}
		})
	}
}

func TestDailyClaimRewardGrowsWithStreak(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prevStreak := rapid.IntRange(1, 365).Draw(t, "prevStreak")
		now := time.Now()
		// Within the continuation window: between 24h and 48h ago.
		hoursAgo := rapid.IntRange(25, 47).Draw(t, "hoursAgo")
		lastDaily := now.Add(-time.Duration(hoursAgo) * time.Hour).Unix()

		reward, streak, ok := simulateDailyClaim(lastDaily, prevStreak, now, 24*time.Hour, 1000, 100)
		if !ok {
			t.Fatalf("claim within the continuation window must succeed")
		}
		if streak != prevStreak+1 {
			t.Fatalf("streak = %d, want %d", streak, prevStreak+1)
		}
		if reward != 1000+100*int64(streak-1) {
			t.Fatalf("reward = %d for streak %d", reward, streak)
		}
	})
}

// simulateDeposit mirrors the validation in LedgerService.Deposit.
func simulateDeposit(balance, bank, amount, cap int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > balance {
		return ErrInsufficientFunds
	}
	if bank+amount > cap {
		return ErrBankCapExceeded
	}
	return nil
}

func TestDepositValidation(t *testing.T) {
	const cap = 1_000_000
	tests := []struct {
		name                  string
		balance, bank, amount int64
		wantErr               error
	}{
		{"plain deposit", 5000, 0, 1000, nil},
		{"deposit everything", 5000, 0, 5000, nil},
		{"zero amount", 5000, 0, 0, ErrInvalidAmount},
		{"negative amount", 5000, 0, -10, ErrInvalidAmount},
		{"more than wallet", 5000, 0, 5001, ErrInsufficientFunds},
		{"would exceed the cap", 5000, 999_700, 500, ErrBankCapExceeded},
		{"lands exactly on the cap", 5000, 999_700, 300, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := simulateDeposit(tt.balance, tt.bank, tt.amount, cap); err != tt.wantErr {
				t.Errorf("deposit = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDepositNeverOverfillsBank(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		const cap = 1_000_000
		balance := rapid.Int64Range(0, 2_000_000).Draw(t, "balance")
		bank := rapid.Int64Range(0, cap).Draw(t, "bank")
		amount := rapid.Int64Range(1, 2_000_000).Draw(t, "amount")

		if err := simulateDeposit(balance, bank, amount, cap); err == nil {
			if bank+amount > cap {
				t.Fatalf("accepted deposit overfills bank: %d + %d > %d", bank, amount, cap)
			}
			if amount > balance {
				t.Fatalf("accepted deposit exceeds wallet: %d > %d", amount, balance)
			}
		}
	})
}
