package service

import (
	"context"
	"errors"
	"fmt"

	"vaultbot/internal/model"
	"vaultbot/internal/pkg/lock"
	"vaultbot/internal/repository"
)

// Transfer-related errors.
var (
	ErrSelfTransfer   = errors.New("cannot transfer to self")
	ErrPlayerNotFound = errors.New("player not found")
)

// TransferService handles player-to-player payments.
type TransferService struct {
	playerRepo *repository.PlayerRepository
	txRepo     *repository.TransactionRepository
	locks      *lock.PlayerLock
}

// NewTransferService creates a new TransferService instance.
func NewTransferService(
	playerRepo *repository.PlayerRepository,
	txRepo *repository.TransactionRepository,
	locks *lock.PlayerLock,
) *TransferService {
	return &TransferService{
		playerRepo: playerRepo,
		txRepo:     txRepo,
		locks:      locks,
	}
}

// Transfer moves amount from one player's wallet to another's. Both records
// stay locked for the whole check-then-move sequence so a concurrent game
// cannot spend the funds between the balance check and the debit.
func (s *TransferService) Transfer(ctx context.Context, fromID, toID int64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return ErrSelfTransfer
	}

	s.locks.LockPair(fromID, toID)
	defer s.locks.UnlockPair(fromID, toID)

	sender, err := s.playerRepo.GetByID(ctx, fromID)
	if err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to get sender: %w", err)
	}
	if sender.Balance < amount {
		return ErrInsufficientFunds
	}

	receiver, err := s.playerRepo.GetByID(ctx, toID)
	if err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to get receiver: %w", err)
	}

	if _, err := s.playerRepo.AdjustBalance(ctx, fromID, -amount); err != nil {
		return fmt.Errorf("failed to deduct from sender: %w", err)
	}
	if _, err := s.playerRepo.AdjustBalance(ctx, toID, amount); err != nil {
		// Put the sender's funds back so the pair stays consistent.
		_, _ = s.playerRepo.AdjustBalance(ctx, fromID, amount)
		return fmt.Errorf("failed to credit receiver: %w", err)
	}

	sentDesc := fmt.Sprintf("payment to %s", receiver.Username)
	recvDesc := fmt.Sprintf("payment from %s", sender.Username)
	_, _ = s.txRepo.Create(ctx, fromID, -amount, model.TxTypeTransfer, &sentDesc)
	_, _ = s.txRepo.Create(ctx, toID, amount, model.TxTypeTransfer, &recvDesc)

	return nil
}
