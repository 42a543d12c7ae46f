package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaultbot/internal/model"
)

// InventoryRepository handles inventory item persistence. Tools are unique
// per (player, kind, tier); consumables stack via quantity.
type InventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository creates a new InventoryRepository instance.
func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

// GrantTool adds a tool if the player does not already own that exact
// (kind, tier). Granting an owned tool is a no-op, which makes milestone
// rewards idempotent.
func (r *InventoryRepository) GrantTool(ctx context.Context, playerID int64, kind model.ToolKind, tier model.ToolTier, levelRequired int) (bool, error) {
	const query = `
		INSERT INTO inventory (player_id, name, item_type, tool_kind, tool_tier, rarity, level_required, quantity)
		VALUES ($1, $2, 'tool', $3, $4, $5, $6, 1)
		ON CONFLICT (player_id, tool_kind, tool_tier) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query,
		playerID, tier.DisplayName(kind), kind, tier, tier.Rarity(), levelRequired)
	if err != nil {
		return false, fmt.Errorf("failed to grant tool: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// BestTool returns the highest-tier tool of a kind the player owns.
// Returns false if the player owns no tool of that kind.
func (r *InventoryRepository) BestTool(ctx context.Context, playerID int64, kind model.ToolKind) (model.ToolTier, bool, error) {
	const query = `
		SELECT tool_tier FROM inventory
		WHERE player_id = $1 AND item_type = 'tool' AND tool_kind = $2
		ORDER BY tool_tier DESC
		LIMIT 1
	`

	var tier model.ToolTier
	err := r.pool.QueryRow(ctx, query, playerID, kind).Scan(&tier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.TierWood, false, nil
		}
		return model.TierWood, false, fmt.Errorf("failed to get best tool: %w", err)
	}
	return tier, true, nil
}

// AddConsumable adds quantity of a stackable item.
func (r *InventoryRepository) AddConsumable(ctx context.Context, playerID int64, name, rarity string, quantity int) error {
	const query = `
		INSERT INTO inventory (player_id, name, item_type, rarity, quantity)
		VALUES ($1, $2, 'consumable', $3, $4)
		ON CONFLICT (player_id, name) WHERE item_type = 'consumable'
		DO UPDATE SET quantity = inventory.quantity + $4
	`

	if _, err := r.pool.Exec(ctx, query, playerID, name, rarity, quantity); err != nil {
		return fmt.Errorf("failed to add consumable: %w", err)
	}
	return nil
}

// ConsumeItem decrements a consumable's quantity by one, deleting the row
// when it reaches zero. Returns false when the player has none.
func (r *InventoryRepository) ConsumeItem(ctx context.Context, playerID int64, name string) (bool, error) {
	const decrement = `
		UPDATE inventory
		SET quantity = quantity - 1
		WHERE player_id = $1 AND name = $2 AND item_type = 'consumable' AND quantity > 0
	`
	const sweep = `
		DELETE FROM inventory
		WHERE player_id = $1 AND name = $2 AND item_type = 'consumable' AND quantity <= 0
	`

	tag, err := r.pool.Exec(ctx, decrement, playerID, name)
	if err != nil {
		return false, fmt.Errorf("failed to consume item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if _, err := r.pool.Exec(ctx, sweep, playerID, name); err != nil {
		return false, fmt.Errorf("failed to sweep empty stack: %w", err)
	}
	return true, nil
}

// List returns a player's full inventory, tools first, highest tier first.
func (r *InventoryRepository) List(ctx context.Context, playerID int64) ([]*model.InventoryItem, error) {
	const query = `
		SELECT player_id, name, item_type, COALESCE(tool_kind, ''), COALESCE(tool_tier, 0),
		       rarity, level_required, quantity
		FROM inventory
		WHERE player_id = $1
		ORDER BY item_type, tool_kind, tool_tier DESC, name
	`

	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var items []*model.InventoryItem
	for rows.Next() {
		var it model.InventoryItem
		if err := rows.Scan(&it.PlayerID, &it.Name, &it.ItemType, &it.ToolKind, &it.ToolTier,
			&it.Rarity, &it.LevelRequired, &it.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}
	return items, nil
}

// HasTool reports whether the player owns the exact (kind, tier) tool.
func (r *InventoryRepository) HasTool(ctx context.Context, playerID int64, kind model.ToolKind, tier model.ToolTier) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM inventory
			WHERE player_id = $1 AND item_type = 'tool' AND tool_kind = $2 AND tool_tier = $3
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, playerID, kind, tier).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check tool: %w", err)
	}
	return exists, nil
}
