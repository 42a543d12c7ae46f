// Tests use testcontainers-go to spin up a PostgreSQL container and run the
// real schema against it. They skip when Docker is unavailable.
package repository

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"vaultbot/internal/model"
)

func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

// setupTestDB creates a PostgreSQL container, applies the schema, and
// returns a pool plus cleanup.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return pool, cleanup
}

func TestPlayerRepository_Create(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	p, err := repo.Create(ctx, 12345, "tester")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), p.DiscordID)
	assert.Equal(t, "tester", p.Username)
	assert.Equal(t, int64(1000), p.Balance) // schema default
	assert.Equal(t, int64(0), p.Bank)
	assert.Equal(t, 1, p.MiningLevel)
	assert.Equal(t, 1, p.FishingLevel)
	assert.Equal(t, 100, p.PlayerHP)
	assert.Equal(t, 10, p.PlayerAttack)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestPlayerRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 12345, "tester")
	require.NoError(t, err)

	p, err := repo.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), p.DiscordID)

	_, err = repo.GetByID(ctx, 99999)
	assert.True(t, errors.Is(err, ErrPlayerNotFound))
}

func TestPlayerRepository_GetOrCreate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	p1, created, err := repo.GetOrCreate(ctx, 555, "first")
	require.NoError(t, err)
	assert.True(t, created)

	// Second call returns the same record with no new row.
	p2, created, err := repo.GetOrCreate(ctx, 555, "first")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p1.DiscordID, p2.DiscordID)
	assert.Equal(t, p1.Balance, p2.Balance)
}

func TestPlayerRepository_AdjustBalance(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "tester")
	require.NoError(t, err)

	p, err := repo.AdjustBalance(ctx, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), p.Balance)

	p, err = repo.AdjustBalance(ctx, 1, -400)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), p.Balance)

	// A debit past zero clamps rather than going negative.
	p, err = repo.AdjustBalance(ctx, 1, -5000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Balance)
}

func TestPlayerRepository_MoveToBank(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "tester")
	require.NoError(t, err)

	p, err := repo.MoveToBank(ctx, 1, 600)
	require.NoError(t, err)
	assert.Equal(t, int64(400), p.Balance)
	assert.Equal(t, int64(600), p.Bank)

	p, err = repo.MoveToBank(ctx, 1, -200)
	require.NoError(t, err)
	assert.Equal(t, int64(600), p.Balance)
	assert.Equal(t, int64(400), p.Bank)
}

func TestPlayerRepository_ApplyInterest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "saver")
	require.NoError(t, err)
	_, err = repo.MoveToBank(ctx, 1, 1000)
	require.NoError(t, err)

	// Near the cap: interest must not push past it.
	_, err = repo.Create(ctx, 2, "whale")
	require.NoError(t, err)
	_, err = repo.AdjustBalance(ctx, 2, 1_000_000)
	require.NoError(t, err)
	_, err = repo.MoveToBank(ctx, 2, 999_999)
	require.NoError(t, err)

	credited, err := repo.ApplyInterest(ctx, 0.003, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(2), credited)

	p, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1003), p.Bank)

	whale, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), whale.Bank)
}

func TestPlayerRepository_IncrementFields(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1, "miner")
	require.NoError(t, err)

	p, err := repo.IncrementFields(ctx, 1, model.StatDelta{"mining_xp": 75, "daily_streak": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(75), p.MiningXP)
	assert.Equal(t, 1, p.DailyStreak)

	// Unknown fields are rejected before touching the row.
	_, err = repo.IncrementFields(ctx, 1, model.StatDelta{"balance; DROP TABLE players": 1})
	assert.Error(t, err)
}

func TestStatsRepository_RecordOutcome(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	players := NewPlayerRepository(pool)
	stats := NewStatsRepository(pool)
	ctx := context.Background()

	_, err := players.Create(ctx, 1, "gambler")
	require.NoError(t, err)

	require.NoError(t, stats.RecordOutcome(ctx, 1, "slots", true, false, 275, 0))
	require.NoError(t, stats.RecordOutcome(ctx, 1, "slots", false, true, 0, 100))

	gs, err := stats.Get(ctx, 1, "slots")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gs.Played)
	assert.Equal(t, int64(1), gs.Won)
	assert.Equal(t, int64(1), gs.Lost)
	assert.Equal(t, int64(275), gs.TotalWinnings)
	assert.Equal(t, int64(100), gs.TotalLosses)
}

func TestStatsRepository_IncrementHeistCounters(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	players := NewPlayerRepository(pool)
	stats := NewStatsRepository(pool)
	ctx := context.Background()

	_, err := players.Create(ctx, 1, "crew")
	require.NoError(t, err)

	// The exact delta shapes the heist settlement submits.
	require.NoError(t, stats.Increment(ctx, 1, "heist", model.StatDelta{"joined": 1}))
	require.NoError(t, stats.Increment(ctx, 1, "heist", model.StatDelta{"won": 1, "total_winnings": 4200}))
	require.NoError(t, stats.Increment(ctx, 1, "heist", model.StatDelta{"lost": 1, "total_losses": 2000}))
	require.NoError(t, stats.Increment(ctx, 1, "heist", model.StatDelta{"times_betrayed": 1, "total_losses": 3000}))
	require.NoError(t, stats.Increment(ctx, 1, "heist", model.StatDelta{"backstabs": 1, "total_winnings": 9000}))

	gs, err := stats.Get(ctx, 1, "heist")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gs.Joined)
	assert.Equal(t, int64(1), gs.Won)
	assert.Equal(t, int64(1), gs.Lost)
	assert.Equal(t, int64(1), gs.TimesBetrayed)
	assert.Equal(t, int64(1), gs.Backstabs)
	assert.Equal(t, int64(13200), gs.TotalWinnings)
	assert.Equal(t, int64(5000), gs.TotalLosses)

	// Fields outside the allowlist are still rejected before any SQL runs.
	err = stats.Increment(ctx, 1, "heist", model.StatDelta{"loot; DROP TABLE game_stats": 1})
	assert.Error(t, err)
}

func TestStatsRepository_GetMissing(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	players := NewPlayerRepository(pool)
	stats := NewStatsRepository(pool)
	ctx := context.Background()

	_, err := players.Create(ctx, 1, "newbie")
	require.NoError(t, err)

	// A game never played comes back as zero counters, not an error.
	gs, err := stats.Get(ctx, 1, "blackjack")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gs.Played)
}

func TestInventoryRepository_GrantTool(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	players := NewPlayerRepository(pool)
	inv := NewInventoryRepository(pool)
	ctx := context.Background()

	_, err := players.Create(ctx, 1, "miner")
	require.NoError(t, err)

	granted, err := inv.GrantTool(ctx, 1, model.ToolPickaxe, model.TierStone, 20)
	require.NoError(t, err)
	assert.True(t, granted)

	// Granting the same tool again is a no-op.
	granted, err = inv.GrantTool(ctx, 1, model.ToolPickaxe, model.TierStone, 20)
	require.NoError(t, err)
	assert.False(t, granted)

	tier, has, err := inv.BestTool(ctx, 1, model.ToolPickaxe)
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, model.TierStone, tier)

	// A better tool becomes the best.
	_, err = inv.GrantTool(ctx, 1, model.ToolPickaxe, model.TierDiamond, 80)
	require.NoError(t, err)
	tier, _, err = inv.BestTool(ctx, 1, model.ToolPickaxe)
	require.NoError(t, err)
	assert.Equal(t, model.TierDiamond, tier)

	// Rods do not shadow pickaxes.
	_, has, err = inv.BestTool(ctx, 1, model.ToolFishingRod)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestTransactionRepository_CreateAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	players := NewPlayerRepository(pool)
	txs := NewTransactionRepository(pool)
	ctx := context.Background()

	_, err := players.Create(ctx, 1, "spender")
	require.NoError(t, err)

	desc := "test credit"
	tx, err := txs.Create(ctx, 1, 500, model.TxTypeMine, &desc)
	require.NoError(t, err)
	assert.Equal(t, int64(500), tx.Amount)
	assert.Equal(t, model.TxTypeMine, tx.Type)

	_, err = txs.Create(ctx, 1, -200, model.TxTypeSlots, nil)
	require.NoError(t, err)

	list, err := txs.GetByPlayerID(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTransactionRepository_DailyRanks(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	players := NewPlayerRepository(pool)
	txs := NewTransactionRepository(pool)
	ctx := context.Background()

	_, err := players.Create(ctx, 1, "winner")
	require.NoError(t, err)
	_, err = players.Create(ctx, 2, "loser")
	require.NoError(t, err)

	_, err = txs.Create(ctx, 1, 5000, model.TxTypeBlackjack, nil)
	require.NoError(t, err)
	_, err = txs.Create(ctx, 2, -3000, model.TxTypeSlots, nil)
	require.NoError(t, err)
	// Non-game flows never count toward the rankings.
	_, err = txs.Create(ctx, 2, 100000, model.TxTypeDeposit, nil)
	require.NoError(t, err)

	winners, err := txs.GetDailyWinners(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, winners)
	assert.Equal(t, int64(1), winners[0].PlayerID)
	assert.Equal(t, int64(5000), winners[0].NetProfit)

	losers, err := txs.GetDailyLosers(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, losers)
	assert.Equal(t, int64(2), losers[0].PlayerID)
}
