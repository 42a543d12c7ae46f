// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"vaultbot/internal/model"
	"vaultbot/internal/pkg/lock"
	"vaultbot/internal/repository"
)

// Common errors for ledger operations.
var (
	ErrDailyAlreadyClaimed = errors.New("daily reward already claimed")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrBankCapExceeded     = errors.New("bank cap exceeded")
	ErrInvalidAmount       = errors.New("invalid amount: must be positive")
)

// LedgerService is the single choke point for money movement. Every
// balance-affecting operation goes through here so the clamping policy
// (never persist a negative balance) and per-player serialization are
// applied in one place.
type LedgerService struct {
	playerRepo  *repository.PlayerRepository
	txRepo      *repository.TransactionRepository
	locks       *lock.PlayerLock
	bankCap     int64
	interest    float64
	dailyReward int64
	streakBonus int64
	cooldownHrs int
}

// NewLedgerService creates a new LedgerService instance.
func NewLedgerService(
	playerRepo *repository.PlayerRepository,
	txRepo *repository.TransactionRepository,
	locks *lock.PlayerLock,
	bankCap int64,
	interestRate float64,
	dailyReward, streakBonus int64,
	cooldownHours int,
) *LedgerService {
	return &LedgerService{
		playerRepo:  playerRepo,
		txRepo:      txRepo,
		locks:       locks,
		bankCap:     bankCap,
		interest:    interestRate,
		dailyReward: dailyReward,
		streakBonus: streakBonus,
		cooldownHrs: cooldownHours,
	}
}

// Locks exposes the per-player lock so interactive games can serialize
// their own read-confirm-write sequences against ledger writes.
func (s *LedgerService) Locks() *lock.PlayerLock {
	return s.locks
}

// EnsurePlayer ensures a player record exists, creating a full-default one
// if necessary. Returns the record and whether it was newly created.
func (s *LedgerService) EnsurePlayer(ctx context.Context, discordID int64, username string) (*model.Player, bool, error) {
	p, created, err := s.playerRepo.GetOrCreate(ctx, discordID, username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure player: %w", err)
	}

	if created {
		desc := "starting balance"
		if _, err := s.txRepo.Create(ctx, discordID, p.Balance, model.TxTypeInitial, &desc); err != nil {
			log.Warn().Err(err).Int64("player", discordID).Msg("Failed to record initial transaction")
		}
		return p, true, nil
	}

	if p.Username != username && username != "" {
		if err := s.playerRepo.UpdateUsername(ctx, discordID, username); err != nil {
			log.Warn().Err(err).Int64("player", discordID).Msg("Failed to refresh username")
		} else {
			p.Username = username
		}
	}
	return p, false, nil
}

// GetPlayer retrieves a player record.
func (s *LedgerService) GetPlayer(ctx context.Context, discordID int64) (*model.Player, error) {
	return s.playerRepo.GetByID(ctx, discordID)
}

// Credit adds amount to a player's wallet and records a transaction.
// Negative amounts debit; the stored balance is clamped at zero.
func (s *LedgerService) Credit(ctx context.Context, discordID int64, amount int64, txType string, description *string) (*model.Player, error) {
	p, err := s.playerRepo.AdjustBalance(ctx, discordID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}

	if _, err := s.txRepo.Create(ctx, discordID, amount, txType, description); err != nil {
		// The balance change already landed; losing the audit row is not
		// worth failing the command over.
		log.Warn().Err(err).Int64("player", discordID).Str("type", txType).Msg("Failed to record transaction")
	}
	return p, nil
}

// SetBalance sets a player's wallet balance to an exact value (admin only).
func (s *LedgerService) SetBalance(ctx context.Context, discordID int64, balance int64) (*model.Player, error) {
	p, err := s.playerRepo.SetBalance(ctx, discordID, balance)
	if err != nil {
		return nil, err
	}
	desc := "admin set"
	if _, err := s.txRepo.Create(ctx, discordID, balance, model.TxTypeAdminSet, &desc); err != nil {
		log.Warn().Err(err).Int64("player", discordID).Msg("Failed to record transaction")
	}
	return p, nil
}

// IncrementFields applies per-field deltas to a player record.
func (s *LedgerService) IncrementFields(ctx context.Context, discordID int64, deltas model.StatDelta) (*model.Player, error) {
	return s.playerRepo.IncrementFields(ctx, discordID, deltas)
}

// Deposit moves amount from wallet to bank. The deposit is rejected when the
// wallet does not cover it or the bank would exceed its cap; in both cases
// nothing changes.
func (s *LedgerService) Deposit(ctx context.Context, discordID int64, amount int64) (*model.Player, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var p *model.Player
	err := s.locks.WithLock(discordID, func() error {
		cur, err := s.playerRepo.GetByID(ctx, discordID)
		if err != nil {
			return err
		}
		if cur.Balance < amount {
			return ErrInsufficientFunds
		}
		if cur.Bank+amount > s.bankCap {
			return ErrBankCapExceeded
		}

		p, err = s.playerRepo.MoveToBank(ctx, discordID, amount)
		if err != nil {
			return err
		}
		desc := "bank deposit"
		if _, err := s.txRepo.Create(ctx, discordID, -amount, model.TxTypeDeposit, &desc); err != nil {
			log.Warn().Err(err).Int64("player", discordID).Msg("Failed to record transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Withdraw moves amount from bank to wallet.
func (s *LedgerService) Withdraw(ctx context.Context, discordID int64, amount int64) (*model.Player, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var p *model.Player
	err := s.locks.WithLock(discordID, func() error {
		cur, err := s.playerRepo.GetByID(ctx, discordID)
		if err != nil {
			return err
		}
		if cur.Bank < amount {
			return ErrInsufficientFunds
		}

		p, err = s.playerRepo.MoveToBank(ctx, discordID, -amount)
		if err != nil {
			return err
		}
		desc := "bank withdrawal"
		if _, err := s.txRepo.Create(ctx, discordID, amount, model.TxTypeWithdraw, &desc); err != nil {
			log.Warn().Err(err).Int64("player", discordID).Msg("Failed to record transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ClaimDaily claims the daily reward. A claim within 48 hours of the last
// one extends the streak; a longer gap resets it. The reward grows with the
// streak.
func (s *LedgerService) ClaimDaily(ctx context.Context, discordID int64) (reward int64, streak int, err error) {
	err = s.locks.WithLock(discordID, func() error {
		p, err := s.playerRepo.GetByID(ctx, discordID)
		if err != nil {
			return err
		}

		now := time.Now()
		cooldown := time.Duration(s.cooldownHrs) * time.Hour
		if p.LastDaily > 0 {
			last := time.Unix(p.LastDaily, 0)
			if now.Sub(last) < cooldown {
				streak = p.DailyStreak
				return fmt.Errorf("%w: next claim %s",
					ErrDailyAlreadyClaimed, last.Add(cooldown).Format(time.RFC1123))
			}
			if now.Sub(last) < 2*cooldown {
				streak = p.DailyStreak + 1
			} else {
				streak = 1
			}
		} else {
			streak = 1
		}

		reward = s.dailyReward + s.streakBonus*int64(streak-1)

		if _, err := s.playerRepo.UpdateFields(ctx, discordID, map[string]int64{
			"daily_streak": int64(streak),
			"last_daily":   now.Unix(),
		}); err != nil {
			return err
		}

		desc := fmt.Sprintf("daily reward (streak %d)", streak)
		_, err = s.Credit(ctx, discordID, reward, model.TxTypeDaily, &desc)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDailyAlreadyClaimed) {
			return 0, streak, err
		}
		return 0, 0, err
	}
	return reward, streak, nil
}

// RunInterestLoop credits bank interest on a fixed interval until the
// context is cancelled. Intended to run as a background goroutine.
func (s *LedgerService) RunInterestLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Interest loop stopped")
			return
		case <-ticker.C:
			credited, err := s.playerRepo.ApplyInterest(ctx, s.interest, s.bankCap)
			if err != nil {
				log.Error().Err(err).Msg("Failed to apply bank interest")
				continue
			}
			log.Info().Int64("accounts", credited).Float64("rate", s.interest).Msg("Bank interest applied")
		}
	}
}
