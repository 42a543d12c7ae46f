// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaultbot/internal/model"
)

// Common errors for repository operations.
var (
	ErrPlayerNotFound = errors.New("player not found")
)

const playerColumns = `discord_id, username, balance, bank,
	mining_level, mining_xp, fishing_level, fishing_xp,
	player_level, player_xp, player_hp, player_attack, player_defense, player_speed,
	daily_streak, last_daily, last_steal, last_stolen,
	created_at, updated_at`

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var p model.Player
	err := row.Scan(
		&p.DiscordID, &p.Username, &p.Balance, &p.Bank,
		&p.MiningLevel, &p.MiningXP, &p.FishingLevel, &p.FishingXP,
		&p.PlayerLevel, &p.PlayerXP, &p.PlayerHP, &p.PlayerAttack, &p.PlayerDefense, &p.PlayerSpeed,
		&p.DailyStreak, &p.LastDaily, &p.LastSteal, &p.LastStolen,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PlayerRepository handles player record persistence. All record defaults
// live in the schema; this is the single place records come into existence,
// so callers never see a partially populated record.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a new PlayerRepository instance.
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

// Create creates a new player row. Every economy column takes its schema
// default.
func (r *PlayerRepository) Create(ctx context.Context, discordID int64, username string) (*model.Player, error) {
	query := fmt.Sprintf(`
		INSERT INTO players (discord_id, username)
		VALUES ($1, $2)
		RETURNING %s
	`, playerColumns)

	p, err := scanPlayer(r.pool.QueryRow(ctx, query, discordID, username))
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, nil
}

// GetByID retrieves a player by their Discord ID.
// Returns ErrPlayerNotFound if the player does not exist.
func (r *PlayerRepository) GetByID(ctx context.Context, discordID int64) (*model.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE discord_id = $1`, playerColumns)

	p, err := scanPlayer(r.pool.QueryRow(ctx, query, discordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// GetOrCreate retrieves a player by Discord ID, creating a full-default row
// if none exists. The bool result reports whether a row was created.
func (r *PlayerRepository) GetOrCreate(ctx context.Context, discordID int64, username string) (*model.Player, bool, error) {
	p, err := r.GetByID(ctx, discordID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, ErrPlayerNotFound) {
		return nil, false, err
	}

	p, err = r.Create(ctx, discordID, username)
	if err != nil {
		// Another command may have created the row in between.
		p, err = r.GetByID(ctx, discordID)
		if err != nil {
			return nil, false, err
		}
		return p, false, nil
	}
	return p, true, nil
}

// AdjustBalance adds amount (which may be negative) to the player's wallet
// balance and returns the updated record. The write clamps at zero so a
// stored balance can never go negative regardless of caller arithmetic.
func (r *PlayerRepository) AdjustBalance(ctx context.Context, discordID int64, amount int64) (*model.Player, error) {
	query := fmt.Sprintf(`
		UPDATE players
		SET balance = GREATEST(balance + $2, 0), updated_at = NOW()
		WHERE discord_id = $1
		RETURNING %s
	`, playerColumns)

	p, err := scanPlayer(r.pool.QueryRow(ctx, query, discordID, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return p, nil
}

// SetBalance sets a player's wallet balance to an exact value.
// Used primarily for admin operations.
func (r *PlayerRepository) SetBalance(ctx context.Context, discordID int64, balance int64) (*model.Player, error) {
	query := fmt.Sprintf(`
		UPDATE players
		SET balance = GREATEST($2, 0), updated_at = NOW()
		WHERE discord_id = $1
		RETURNING %s
	`, playerColumns)

	p, err := scanPlayer(r.pool.QueryRow(ctx, query, discordID, balance))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to set balance: %w", err)
	}
	return p, nil
}

// MoveToBank moves amount between wallet and bank in one statement. A
// positive amount deposits, a negative amount withdraws. Funds and cap
// checks are the caller's (ledger service) responsibility; the statement
// still clamps both columns at zero.
func (r *PlayerRepository) MoveToBank(ctx context.Context, discordID int64, amount int64) (*model.Player, error) {
	query := fmt.Sprintf(`
		UPDATE players
		SET balance = GREATEST(balance - $2, 0),
		    bank = GREATEST(bank + $2, 0),
		    updated_at = NOW()
		WHERE discord_id = $1
		RETURNING %s
	`, playerColumns)

	p, err := scanPlayer(r.pool.QueryRow(ctx, query, discordID, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to move funds: %w", err)
	}
	return p, nil
}

// ApplyInterest credits every non-empty bank with rate interest, capped.
// Returns the number of accounts credited.
func (r *PlayerRepository) ApplyInterest(ctx context.Context, rate float64, cap int64) (int64, error) {
	const query = `
		UPDATE players
		SET bank = LEAST(bank + FLOOR(bank * $1)::bigint, $2), updated_at = NOW()
		WHERE bank > 0
	`

	tag, err := r.pool.Exec(ctx, query, rate, cap)
	if err != nil {
		return 0, fmt.Errorf("failed to apply interest: %w", err)
	}
	return tag.RowsAffected(), nil
}

// allowedPlayerFields lists the columns UpdateFields may touch. Field names
// come from code, never from user input, but the allowlist keeps a typo from
// becoming SQL.
var allowedPlayerFields = map[string]bool{
	"balance": true, "bank": true,
	"mining_level": true, "mining_xp": true,
	"fishing_level": true, "fishing_xp": true,
	"player_level": true, "player_xp": true, "player_hp": true,
	"player_attack": true, "player_defense": true, "player_speed": true,
	"daily_streak": true, "last_daily": true,
	"last_steal": true, "last_stolen": true,
}

// UpdateFields sets the given columns to exact values in one statement.
func (r *PlayerRepository) UpdateFields(ctx context.Context, discordID int64, fields map[string]int64) (*model.Player, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, discordID)
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	args = append(args, discordID)
	for field, value := range fields {
		if !allowedPlayerFields[field] {
			return nil, fmt.Errorf("unknown player field %q", field)
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", field, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE players SET %s WHERE discord_id = $1 RETURNING %s`,
		strings.Join(sets, ", "), playerColumns)

	p, err := scanPlayer(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update fields: %w", err)
	}
	return p, nil
}

// IncrementFields adds the given deltas to the columns in one statement.
// Increments are atomic per statement at the store level.
func (r *PlayerRepository) IncrementFields(ctx context.Context, discordID int64, deltas model.StatDelta) (*model.Player, error) {
	if len(deltas) == 0 {
		return r.GetByID(ctx, discordID)
	}

	sets := make([]string, 0, len(deltas)+1)
	args := make([]any, 0, len(deltas)+1)
	args = append(args, discordID)
	for field, delta := range deltas {
		if !allowedPlayerFields[field] {
			return nil, fmt.Errorf("unknown player field %q", field)
		}
		args = append(args, delta)
		sets = append(sets, fmt.Sprintf("%s = %s + $%d", field, field, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE players SET %s WHERE discord_id = $1 RETURNING %s`,
		strings.Join(sets, ", "), playerColumns)

	p, err := scanPlayer(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to increment fields: %w", err)
	}
	return p, nil
}

// GetTopByBalance retrieves the top N players by wallet+bank total.
func (r *PlayerRepository) GetTopByBalance(ctx context.Context, limit int) ([]*model.Player, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM players
		ORDER BY balance + bank DESC
		LIMIT $1
	`, playerColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top players: %w", err)
	}
	defer rows.Close()

	var players []*model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return players, nil
}

// UpdateUsername updates a player's display name.
func (r *PlayerRepository) UpdateUsername(ctx context.Context, discordID int64, username string) error {
	const query = `
		UPDATE players
		SET username = $2, updated_at = NOW()
		WHERE discord_id = $1
	`

	result, err := r.pool.Exec(ctx, query, discordID, username)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// Exists checks if a player with the given Discord ID exists.
func (r *PlayerRepository) Exists(ctx context.Context, discordID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM players WHERE discord_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, discordID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check player existence: %w", err)
	}
	return exists, nil
}
