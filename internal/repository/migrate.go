package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Migrate applies the database schema. Every player column carries a NOT
// NULL DEFAULT, and new columns are added with idempotent ALTERs, so rows
// written by older versions are backfilled here rather than in accessor
// code.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []struct {
		name string
		sql  string
	}{
		{"players table", `
			CREATE TABLE IF NOT EXISTS players (
				discord_id BIGINT PRIMARY KEY,
				username VARCHAR(255) NOT NULL,
				balance BIGINT NOT NULL DEFAULT 1000,
				bank BIGINT NOT NULL DEFAULT 0,
				mining_level INT NOT NULL DEFAULT 1,
				mining_xp BIGINT NOT NULL DEFAULT 0,
				fishing_level INT NOT NULL DEFAULT 1,
				fishing_xp BIGINT NOT NULL DEFAULT 0,
				player_level INT NOT NULL DEFAULT 1,
				player_xp BIGINT NOT NULL DEFAULT 0,
				player_hp INT NOT NULL DEFAULT 100,
				player_attack INT NOT NULL DEFAULT 10,
				player_defense INT NOT NULL DEFAULT 10,
				player_speed INT NOT NULL DEFAULT 10,
				daily_streak INT NOT NULL DEFAULT 0,
				last_daily BIGINT NOT NULL DEFAULT 0,
				last_steal BIGINT NOT NULL DEFAULT 0,
				last_stolen BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_players_balance ON players((balance + bank) DESC);
		`},
		{"game_stats table", `
			CREATE TABLE IF NOT EXISTS game_stats (
				player_id BIGINT NOT NULL REFERENCES players(discord_id) ON DELETE CASCADE,
				game VARCHAR(50) NOT NULL,
				won BIGINT NOT NULL DEFAULT 0,
				lost BIGINT NOT NULL DEFAULT 0,
				played BIGINT NOT NULL DEFAULT 0,
				total_winnings BIGINT NOT NULL DEFAULT 0,
				total_losses BIGINT NOT NULL DEFAULT 0,
				joined BIGINT NOT NULL DEFAULT 0,
				times_betrayed BIGINT NOT NULL DEFAULT 0,
				backstabs BIGINT NOT NULL DEFAULT 0,
				PRIMARY KEY (player_id, game)
			);
		`},
		{"game_stats heist counters", `
			ALTER TABLE game_stats ADD COLUMN IF NOT EXISTS joined BIGINT NOT NULL DEFAULT 0;
			ALTER TABLE game_stats ADD COLUMN IF NOT EXISTS times_betrayed BIGINT NOT NULL DEFAULT 0;
			ALTER TABLE game_stats ADD COLUMN IF NOT EXISTS backstabs BIGINT NOT NULL DEFAULT 0;
		`},
		{"inventory table", `
			CREATE TABLE IF NOT EXISTS inventory (
				player_id BIGINT NOT NULL REFERENCES players(discord_id) ON DELETE CASCADE,
				name VARCHAR(100) NOT NULL,
				item_type VARCHAR(20) NOT NULL,
				tool_kind VARCHAR(20),
				tool_tier INT,
				rarity VARCHAR(20) NOT NULL DEFAULT 'common',
				level_required INT NOT NULL DEFAULT 0,
				quantity INT NOT NULL DEFAULT 1
			);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_tool
				ON inventory(player_id, tool_kind, tool_tier);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_consumable
				ON inventory(player_id, name) WHERE item_type = 'consumable';
		`},
		{"transactions table", `
			CREATE TABLE IF NOT EXISTS transactions (
				id BIGSERIAL PRIMARY KEY,
				player_id BIGINT NOT NULL REFERENCES players(discord_id) ON DELETE CASCADE,
				amount BIGINT NOT NULL,
				type VARCHAR(50) NOT NULL,
				description TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_transactions_player_time
				ON transactions(player_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_transactions_type_time
				ON transactions(type, created_at DESC);
		`},
	}

	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %q failed: %w", m.name, err)
		}
		log.Debug().Str("migration", m.name).Msg("Migration applied")
	}

	log.Info().Int("count", len(migrations)).Msg("All migrations completed")
	return nil
}
