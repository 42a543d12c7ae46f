package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"vaultbot/internal/model"
)

// TransactionRepository handles the append-only balance-change audit log.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository instance.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create creates a new transaction record.
func (r *TransactionRepository) Create(ctx context.Context, playerID int64, amount int64, txType string, description *string) (*model.Transaction, error) {
	const query = `
		INSERT INTO transactions (player_id, amount, type, description, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, player_id, amount, type, description, created_at
	`

	var tx model.Transaction
	err := r.pool.QueryRow(ctx, query, playerID, amount, txType, description).Scan(
		&tx.ID, &tx.PlayerID, &tx.Amount, &tx.Type, &tx.Description, &tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return &tx, nil
}

// GetByPlayerID retrieves a player's transactions, newest first.
func (r *TransactionRepository) GetByPlayerID(ctx context.Context, playerID int64, limit int) ([]*model.Transaction, error) {
	const query = `
		SELECT id, player_id, amount, type, description, created_at
		FROM transactions
		WHERE player_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*model.Transaction
	for rows.Next() {
		var tx model.Transaction
		if err := rows.Scan(&tx.ID, &tx.PlayerID, &tx.Amount, &tx.Type, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// GetDailyWinners retrieves the top game winners for a date by net profit.
func (r *TransactionRepository) GetDailyWinners(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	return r.dailyRanks(ctx, date, limit, true)
}

// GetDailyLosers retrieves the biggest game losers for a date.
func (r *TransactionRepository) GetDailyLosers(ctx context.Context, date time.Time, limit int) ([]*model.DailyRank, error) {
	return r.dailyRanks(ctx, date, limit, false)
}

func (r *TransactionRepository) dailyRanks(ctx context.Context, date time.Time, limit int, winners bool) ([]*model.DailyRank, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	having, order := "HAVING SUM(t.amount) > 0", "DESC"
	if !winners {
		having, order = "HAVING SUM(t.amount) < 0", "ASC"
	}

	query := fmt.Sprintf(`
		SELECT t.player_id, p.username, COALESCE(SUM(t.amount), 0) AS net_profit
		FROM transactions t
		JOIN players p ON t.player_id = p.discord_id
		WHERE t.type = ANY($1)
		  AND t.created_at >= $2
		  AND t.created_at < $3
		GROUP BY t.player_id, p.username
		%s
		ORDER BY net_profit %s
		LIMIT $4
	`, having, order)

	rows, err := r.pool.Query(ctx, query, model.GameTransactionTypes(), startOfDay, endOfDay, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily ranks: %w", err)
	}
	defer rows.Close()

	var ranks []*model.DailyRank
	for rows.Next() {
		var rank model.DailyRank
		if err := rows.Scan(&rank.PlayerID, &rank.Username, &rank.NetProfit); err != nil {
			return nil, fmt.Errorf("failed to scan daily rank: %w", err)
		}
		ranks = append(ranks, &rank)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily ranks: %w", err)
	}
	return ranks, nil
}

// GetPlayerDailyProfit retrieves one player's net game profit for a date.
func (r *TransactionRepository) GetPlayerDailyProfit(ctx context.Context, playerID int64, date time.Time) (int64, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE player_id = $1
		  AND type = ANY($2)
		  AND created_at >= $3
		  AND created_at < $4
	`

	var profit int64
	err := r.pool.QueryRow(ctx, query, playerID, model.GameTransactionTypes(), startOfDay, endOfDay).Scan(&profit)
	if err != nil {
		return 0, fmt.Errorf("failed to get daily profit: %w", err)
	}
	return profit, nil
}
