// Package main is the entry point for the Discord economy bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vaultbot/internal/bot"
	"vaultbot/internal/config"
	"vaultbot/internal/game"
	"vaultbot/internal/game/blackjack"
	"vaultbot/internal/game/duel"
	"vaultbot/internal/game/dungeon"
	"vaultbot/internal/game/gamble"
	"vaultbot/internal/game/gather"
	"vaultbot/internal/game/heist"
	"vaultbot/internal/game/highlow"
	"vaultbot/internal/game/roulette"
	"vaultbot/internal/game/rps"
	"vaultbot/internal/game/slots"
	"vaultbot/internal/game/steal"
	"vaultbot/internal/game/wordle"
	"vaultbot/internal/handler"
	"vaultbot/internal/model"
	"vaultbot/internal/pkg/db"
	"vaultbot/internal/pkg/lock"
	"vaultbot/internal/repository"
	"vaultbot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Discord.Token == "" {
		log.Fatal().Msg("Discord token is not configured (DISCORD_TOKEN)")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	log.Info().Msg("Running database migrations...")
	if err := repository.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	playerRepo := repository.NewPlayerRepository(dbPool.Pool)
	txRepo := repository.NewTransactionRepository(dbPool.Pool)
	statsRepo := repository.NewStatsRepository(dbPool.Pool)
	inventoryRepo := repository.NewInventoryRepository(dbPool.Pool)

	// Initialize per-player lock
	playerLock := lock.NewPlayerLock()

	// Initialize services
	ledgerService := service.NewLedgerService(
		playerRepo,
		txRepo,
		playerLock,
		cfg.Bank.Cap,
		cfg.Bank.InterestRate,
		cfg.Daily.Reward,
		cfg.Daily.StreakBonus,
		cfg.Daily.CooldownHours,
	)
	progressionService := service.NewProgressionService(playerRepo, inventoryRepo)
	transferService := service.NewTransferService(playerRepo, txRepo, playerLock)
	rankingService := service.NewRankingService(playerRepo, txRepo, time.Local)

	// Initialize the game registry and register the single-shot games
	registry := game.NewRegistry()
	resolvers := []game.Resolver{
		gather.New(model.ToolPickaxe, ledgerService, progressionService, statsRepo),
		gather.New(model.ToolFishingRod, ledgerService, progressionService, statsRepo),
		slots.New(ledgerService, statsRepo),
		roulette.New(ledgerService, statsRepo),
		gamble.New(ledgerService, statsRepo),
		rps.New(ledgerService, statsRepo),
		highlow.New(ledgerService, statsRepo),
		dungeon.New(ledgerService, progressionService, statsRepo),
	}
	for _, r := range resolvers {
		if err := registry.Register(r); err != nil {
			log.Fatal().Err(err).Str("game", r.Name()).Msg("Failed to register game")
		}
	}
	log.Info().
		Int("game_count", registry.Count()).
		Strs("games", registry.Commands()).
		Msg("Games registered")

	// Initialize the interactive games
	stealGame := steal.New(playerRepo, txRepo, statsRepo, playerLock,
		cfg.Games.Steal.CooldownSeconds, cfg.Games.Steal.ProtectionSeconds)
	duelGame := duel.New(playerRepo, txRepo, statsRepo, playerLock,
		cfg.Games.Duel.AcceptTimeoutSeconds, cfg.Games.Duel.MaxRestarts)
	heistGame := heist.New(playerRepo, txRepo, statsRepo,
		cfg.Games.Heist.JoinWindowSeconds, cfg.Games.Heist.MaxParticipants)
	blackjackGame := blackjack.New(ledgerService, statsRepo)
	wordleGame := wordle.New(ledgerService, statsRepo)

	// Initialize handlers
	handlers := bot.Handlers{
		Account:   handler.NewAccountHandler(ledgerService, statsRepo, txRepo, inventoryRepo),
		Transfer:  handler.NewTransferHandler(ledgerService, transferService),
		Ranking:   handler.NewRankingHandler(rankingService),
		Admin:     handler.NewAdminHandler(ledgerService),
		Game:      handler.NewGameHandler(ledgerService, registry, stealGame),
		Duel:      handler.NewDuelHandler(ledgerService, duelGame),
		Heist:     handler.NewHeistHandler(ledgerService, heistGame),
		Blackjack: handler.NewBlackjackHandler(ledgerService, blackjackGame),
		Wordle:    handler.NewWordleHandler(ledgerService, wordleGame),
	}

	discordBot, err := bot.New(cfg, registry, handlers)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Accrue bank interest in the background
	go ledgerService.RunInterestLoop(ctx, cfg.Bank.InterestInterval)

	// Sweep abandoned sessions so a walked-away hand cannot block a player
	// forever
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := blackjackGame.AbandonStale(30 * time.Minute); n > 0 {
					log.Info().Int("hands", n).Msg("Swept stale blackjack hands")
				}
				if n := wordleGame.AbandonStale(24 * time.Hour); n > 0 {
					log.Info().Int("puzzles", n).Msg("Swept stale word puzzles")
				}
			}
		}
	}()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Msg("Bot is starting...")
	if err := discordBot.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start bot")
	}

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown
	cancel()
	discordBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}
