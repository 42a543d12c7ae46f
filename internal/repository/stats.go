package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaultbot/internal/model"
)

// StatsRepository handles per-game win/loss counters. Rows are upserted on
// first record so resolvers never have to pre-create them.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository instance.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// RecordOutcome increments the counters for one game outcome. winnings and
// losses are recorded as non-negative magnitudes; exactly one of won/lost
// should be set, or neither for a push.
func (r *StatsRepository) RecordOutcome(ctx context.Context, playerID int64, game string, won bool, lost bool, winnings, losses int64) error {
	const query = `
		INSERT INTO game_stats (player_id, game, won, lost, played, total_winnings, total_losses)
		VALUES ($1, $2, $3, $4, 1, $5, $6)
		ON CONFLICT (player_id, game)
		DO UPDATE SET
			won = game_stats.won + $3,
			lost = game_stats.lost + $4,
			played = game_stats.played + 1,
			total_winnings = game_stats.total_winnings + $5,
			total_losses = game_stats.total_losses + $6
	`

	wonN, lostN := 0, 0
	if won {
		wonN = 1
	}
	if lost {
		lostN = 1
	}

	_, err := r.pool.Exec(ctx, query, playerID, game, wonN, lostN, winnings, losses)
	if err != nil {
		return fmt.Errorf("failed to record %s outcome: %w", game, err)
	}
	return nil
}

// Increment adds arbitrary deltas to a player's counters for one game.
// Used by games whose counters do not fit the won/lost shape (heist
// backstabs, steal protection bookkeeping).
func (r *StatsRepository) Increment(ctx context.Context, playerID int64, game string, deltas model.StatDelta) error {
	allowed := map[string]bool{
		"won": true, "lost": true, "played": true,
		"total_winnings": true, "total_losses": true,
		"joined": true, "times_betrayed": true, "backstabs": true,
	}

	insertCols := "player_id, game"
	insertVals := "$1, $2"
	updates := ""
	args := []any{playerID, game}
	for field, delta := range deltas {
		if !allowed[field] {
			return fmt.Errorf("unknown stats field %q", field)
		}
		args = append(args, delta)
		n := len(args)
		insertCols += ", " + field
		insertVals += fmt.Sprintf(", $%d", n)
		if updates != "" {
			updates += ", "
		}
		updates += fmt.Sprintf("%s = game_stats.%s + $%d", field, field, n)
	}
	if updates == "" {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO game_stats (%s) VALUES (%s)
		ON CONFLICT (player_id, game) DO UPDATE SET %s
	`, insertCols, insertVals, updates)

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to increment %s stats: %w", game, err)
	}
	return nil
}

// Get returns a player's counters for one game. A missing row comes back as
// all-zero counters rather than an error.
func (r *StatsRepository) Get(ctx context.Context, playerID int64, game string) (*model.GameStats, error) {
	const query = `
		SELECT player_id, game, won, lost, played, total_winnings, total_losses,
			joined, times_betrayed, backstabs
		FROM game_stats
		WHERE player_id = $1 AND game = $2
	`

	var s model.GameStats
	err := r.pool.QueryRow(ctx, query, playerID, game).Scan(
		&s.PlayerID, &s.Game, &s.Won, &s.Lost, &s.Played, &s.TotalWinnings, &s.TotalLosses,
		&s.Joined, &s.TimesBetrayed, &s.Backstabs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.GameStats{PlayerID: playerID, Game: game}, nil
		}
		return nil, fmt.Errorf("failed to get %s stats: %w", game, err)
	}
	return &s, nil
}

// GetAll returns every game's counters for a player.
func (r *StatsRepository) GetAll(ctx context.Context, playerID int64) ([]*model.GameStats, error) {
	const query = `
		SELECT player_id, game, won, lost, played, total_winnings, total_losses,
			joined, times_betrayed, backstabs
		FROM game_stats
		WHERE player_id = $1
		ORDER BY game
	`

	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	defer rows.Close()

	var stats []*model.GameStats
	for rows.Next() {
		var s model.GameStats
		if err := rows.Scan(&s.PlayerID, &s.Game, &s.Won, &s.Lost, &s.Played, &s.TotalWinnings, &s.TotalLosses,
			&s.Joined, &s.TimesBetrayed, &s.Backstabs); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats = append(stats, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}
	return stats, nil
}
