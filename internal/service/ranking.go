package service

import (
	"context"
	"time"

	"vaultbot/internal/model"
	"vaultbot/internal/repository"
)

// RankingService handles leaderboard queries.
type RankingService struct {
	playerRepo *repository.PlayerRepository
	txRepo     *repository.TransactionRepository
	timezone   *time.Location
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(
	playerRepo *repository.PlayerRepository,
	txRepo *repository.TransactionRepository,
	timezone *time.Location,
) *RankingService {
	if timezone == nil {
		timezone = time.UTC
	}
	return &RankingService{
		playerRepo: playerRepo,
		txRepo:     txRepo,
		timezone:   timezone,
	}
}

// GetTopPlayers retrieves the top players by combined wallet+bank balance.
func (s *RankingService) GetTopPlayers(ctx context.Context, limit int) ([]*model.Player, error) {
	return s.playerRepo.GetTopByBalance(ctx, limit)
}

// GetDailyWinners retrieves today's top game winners by net profit.
func (s *RankingService) GetDailyWinners(ctx context.Context, limit int) ([]*model.DailyRank, error) {
	return s.txRepo.GetDailyWinners(ctx, time.Now().In(s.timezone), limit)
}

// GetDailyLosers retrieves today's biggest game losers.
func (s *RankingService) GetDailyLosers(ctx context.Context, limit int) ([]*model.DailyRank, error) {
	return s.txRepo.GetDailyLosers(ctx, time.Now().In(s.timezone), limit)
}

// GetPlayerDailyProfit retrieves one player's net game profit for today.
func (s *RankingService) GetPlayerDailyProfit(ctx context.Context, playerID int64) (int64, error) {
	return s.txRepo.GetPlayerDailyProfit(ctx, playerID, time.Now().In(s.timezone))
}
