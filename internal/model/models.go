// Package model defines the data models for the economy bot.
package model

import "time"

// Player is the per-user economy record. Rows are created lazily with full
// defaults on first access; every column carries a database default so older
// rows are backfilled by migration rather than at call sites.
type Player struct {
	DiscordID int64  `db:"discord_id"`
	Username  string `db:"username"`
	Balance   int64  `db:"balance"`
	Bank      int64  `db:"bank"`

	MiningLevel  int   `db:"mining_level"`
	MiningXP     int64 `db:"mining_xp"`
	FishingLevel int   `db:"fishing_level"`
	FishingXP    int64 `db:"fishing_xp"`

	// Combat progression used by the dungeon crawler.
	PlayerLevel   int   `db:"player_level"`
	PlayerXP      int64 `db:"player_xp"`
	PlayerHP      int   `db:"player_hp"`
	PlayerAttack  int   `db:"player_attack"`
	PlayerDefense int   `db:"player_defense"`
	PlayerSpeed   int   `db:"player_speed"`

	DailyStreak int   `db:"daily_streak"`
	LastDaily   int64 `db:"last_daily"`

	// Steal cooldown pair: LastSteal throttles the thief, LastStolen opens a
	// protection window for the victim.
	LastSteal  int64 `db:"last_steal"`
	LastStolen int64 `db:"last_stolen"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GameStats is one player's counters for a single game, stored in the
// game_stats table keyed by (player, game).
type GameStats struct {
	PlayerID      int64  `db:"player_id"`
	Game          string `db:"game"`
	Won           int64  `db:"won"`
	Lost          int64  `db:"lost"`
	Played        int64  `db:"played"`
	TotalWinnings int64  `db:"total_winnings"`
	TotalLosses   int64  `db:"total_losses"`
	// Heist-only counters; zero for every other game.
	Joined        int64 `db:"joined"`
	TimesBetrayed int64 `db:"times_betrayed"`
	Backstabs     int64 `db:"backstabs"`
}

// StatDelta is a set of per-field increments applied atomically in SQL.
type StatDelta map[string]int64

// ToolKind identifies what a tool is used for.
type ToolKind string

const (
	ToolPickaxe    ToolKind = "pickaxe"
	ToolFishingRod ToolKind = "fishing_rod"
)

// ToolTier orders tool quality. Tiers are compared numerically, so the best
// owned tool is simply the max tier in the inventory.
type ToolTier int

const (
	TierWood ToolTier = iota
	TierStone
	TierIron
	TierGold
	TierDiamond
	TierNetherite
)

var tierNames = map[ToolTier]string{
	TierWood:      "Wood",
	TierStone:     "Stone",
	TierIron:      "Iron",
	TierGold:      "Gold",
	TierDiamond:   "Diamond",
	TierNetherite: "Netherite",
}

func (t ToolTier) String() string { return tierNames[t] }

// Rarity returns the display rarity attached to milestone tools.
func (t ToolTier) Rarity() string {
	switch t {
	case TierStone:
		return "uncommon"
	case TierIron:
		return "rare"
	case TierGold:
		return "epic"
	case TierDiamond:
		return "legendary"
	case TierNetherite:
		return "netherite"
	default:
		return "common"
	}
}

// PayoutBonus returns the multiplier a tool tier adds on top of the base
// payout (1.0 means +100%).
func (t ToolTier) PayoutBonus() float64 {
	switch t {
	case TierStone:
		return 0.10
	case TierIron:
		return 1.00
	case TierGold:
		return 2.50
	case TierDiamond:
		return 5.00
	case TierNetherite:
		return 10.00
	default:
		return 0
	}
}

// DisplayName renders the human-readable tool name, e.g. "Iron Pickaxe".
func (t ToolTier) DisplayName(kind ToolKind) string {
	if kind == ToolFishingRod {
		return t.String() + " Fishing Rod"
	}
	return t.String() + " Pickaxe"
}

// ItemType distinguishes unique tools from stackable consumables.
type ItemType string

const (
	ItemTypeTool       ItemType = "tool"
	ItemTypeConsumable ItemType = "consumable"
)

// InventoryItem is one stack in a player's inventory. Tools are unique per
// (player, kind, tier); consumables accumulate quantity.
type InventoryItem struct {
	PlayerID      int64    `db:"player_id"`
	Name          string   `db:"name"`
	ItemType      ItemType `db:"item_type"`
	ToolKind      ToolKind `db:"tool_kind"`
	ToolTier      ToolTier `db:"tool_tier"`
	Rarity        string   `db:"rarity"`
	LevelRequired int      `db:"level_required"`
	Quantity      int      `db:"quantity"`
}

// Transaction is an append-only audit record of a balance change.
type Transaction struct {
	ID          int64     `db:"id"`
	PlayerID    int64     `db:"player_id"`
	Amount      int64     `db:"amount"`
	Type        string    `db:"type"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// DailyRank is one row of the daily profit/loss ranking.
type DailyRank struct {
	PlayerID  int64  `db:"player_id"`
	Username  string `db:"username"`
	NetProfit int64  `db:"net_profit"`
}

// Transaction types for categorizing balance changes.
const (
	TxTypeInitial   = "initial"
	TxTypeDaily     = "daily"
	TxTypeTransfer  = "transfer"
	TxTypeDeposit   = "deposit"
	TxTypeWithdraw  = "withdraw"
	TxTypeInterest  = "interest"
	TxTypeMine      = "mine"
	TxTypeFish      = "fish"
	TxTypeSteal     = "steal"
	TxTypeStolen    = "stolen"
	TxTypeDuelWin   = "duel_win"
	TxTypeDuelLoss  = "duel_loss"
	TxTypeHeist     = "heist"
	TxTypeBackstab  = "backstab"
	TxTypeBlackjack = "blackjack"
	TxTypeSlots     = "slots"
	TxTypeRoulette  = "roulette"
	TxTypeGamble    = "gamble"
	TxTypeRPS       = "rps"
	TxTypeHighLow   = "highlow"
	TxTypeWordle    = "wordle"
	TxTypeDungeon   = "dungeon"
	TxTypeAdminAdd  = "admin_add"
	TxTypeAdminSub  = "admin_sub"
	TxTypeAdminSet  = "admin_set"
)

// GameTransactionTypes returns the transaction types that count towards the
// daily profit/loss rankings (transfers, deposits and rewards excluded).
func GameTransactionTypes() []string {
	return []string{
		TxTypeMine, TxTypeFish, TxTypeSteal, TxTypeStolen,
		TxTypeDuelWin, TxTypeDuelLoss, TxTypeHeist, TxTypeBackstab,
		TxTypeBlackjack, TxTypeSlots, TxTypeRoulette, TxTypeGamble,
		TxTypeRPS, TxTypeHighLow, TxTypeWordle, TxTypeDungeon,
	}
}
