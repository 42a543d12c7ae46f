// Package bot wires the Discord gateway session to the command handlers.
package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"vaultbot/internal/config"
	"vaultbot/internal/game"
	"vaultbot/internal/game/dungeon"
	"vaultbot/internal/game/heist"
	"vaultbot/internal/handler"
)

// Handlers collects every interaction handler the bot routes to.
type Handlers struct {
	Account   *handler.AccountHandler
	Transfer  *handler.TransferHandler
	Ranking   *handler.RankingHandler
	Admin     *handler.AdminHandler
	Game      *handler.GameHandler
	Duel      *handler.DuelHandler
	Heist     *handler.HeistHandler
	Blackjack *handler.BlackjackHandler
	Wordle    *handler.WordleHandler
}

// Bot owns the gateway session and the command routing table.
type Bot struct {
	cfg      *config.Config
	session  *discordgo.Session
	registry *game.Registry
	handlers Handlers

	commands map[string]handler.InteractionFunc
}

// New creates the bot and builds its routing table. The session is not
// opened until Start.
func New(cfg *config.Config, registry *game.Registry, handlers Handlers) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := &Bot{
		cfg:      cfg,
		session:  session,
		registry: registry,
		handlers: handlers,
	}
	b.commands = b.buildRoutes()
	return b, nil
}

// buildRoutes maps command names to wrapped handlers.
func (b *Bot) buildRoutes() map[string]handler.InteractionFunc {
	cfg := b.cfg
	h := b.handlers

	routes := map[string]handler.InteractionFunc{
		"balance":   wrap(cfg, "balance", h.Account.HandleBalance),
		"profile":   wrap(cfg, "profile", h.Account.HandleProfile),
		"daily":     wrap(cfg, "daily", h.Account.HandleDaily),
		"deposit":   wrap(cfg, "deposit", h.Account.HandleDeposit),
		"withdraw":  wrap(cfg, "withdraw", h.Account.HandleWithdraw),
		"history":   wrap(cfg, "history", h.Account.HandleHistory),
		"pay":       wrap(cfg, "pay", h.Transfer.HandlePay),
		"top":       wrap(cfg, "top", h.Ranking.HandleTop),
		"dailytop":  wrap(cfg, "dailytop", h.Ranking.HandleDailyTop),
		"steal":     wrap(cfg, "steal", h.Game.HandleSteal),
		"duel":      wrap(cfg, "duel", h.Duel.HandleDuel),
		"heist":     wrap(cfg, "heist", h.Heist.HandleHeist),
		"blackjack": wrap(cfg, "blackjack", h.Blackjack.HandleBlackjack),
		"wordle":    wrap(cfg, "wordle", h.Wordle.HandleWordle),
		"admin":     wrap(cfg, "admin", adminOnly(cfg, h.Admin.HandleAdmin)),
	}
	for _, cmd := range b.registry.Commands() {
		routes[cmd] = wrap(cfg, cmd, h.Game.HandleResolverGame)
	}
	return routes
}

// Start opens the gateway and registers the slash commands.
func (b *Bot) Start() error {
	b.session.AddHandler(b.onInteractionCreate)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("username", r.User.Username).Msg("Gateway session ready")
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	for _, cmd := range b.commandDefinitions() {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.cfg.Discord.GuildID, cmd); err != nil {
			return fmt.Errorf("failed to register command %q: %w", cmd.Name, err)
		}
	}
	log.Info().Int("commands", len(b.commands)).Msg("Slash commands registered")
	return nil
}

// Stop closes the gateway session.
func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close gateway session")
	}
}

// onInteractionCreate routes slash commands by name and component presses
// by custom ID prefix.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if fn, ok := b.commands[i.ApplicationCommandData().Name]; ok {
			fn(s, i)
		}
	case discordgo.InteractionMessageComponent:
		b.routeComponent(s, i)
	}
}

func (b *Bot) routeComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	var fn handler.InteractionFunc
	switch {
	case strings.HasPrefix(customID, "duel_"):
		fn = b.handlers.Duel.HandleComponent
	case strings.HasPrefix(customID, "bj_"):
		fn = b.handlers.Blackjack.HandleComponent
	case customID == handler.CustomIDHeistJoin:
		fn = b.handlers.Heist.HandleJoin
	default:
		log.Debug().Str("custom_id", customID).Msg("Unknown component custom ID")
		return
	}
	wrap(b.cfg, customID, fn)(s, i)
}

// commandDefinitions builds the full slash command set, including one
// command per registered game resolver.
func (b *Bot) commandDefinitions() []*discordgo.ApplicationCommand {
	minOne := float64(1)

	betOption := func(desc string, max int64) *discordgo.ApplicationCommandOption {
		o := &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "bet",
			Description: desc,
			Required:    true,
			MinValue:    &minOne,
		}
		if max > 0 {
			o.MaxValue = float64(max)
		}
		return o
	}
	userOpt := func(name, desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        name,
			Description: desc,
			Required:    true,
		}
	}
	amountOpt := func(desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: desc,
			Required:    true,
			MinValue:    &minOne,
		}
	}
	choices := func(values ...string) []*discordgo.ApplicationCommandOptionChoice {
		out := make([]*discordgo.ApplicationCommandOptionChoice, len(values))
		for idx, v := range values {
			out[idx] = &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v}
		}
		return out
	}

	cmds := []*discordgo.ApplicationCommand{
		{Name: "balance", Description: "Show your wallet and bank balance"},
		{Name: "profile", Description: "Show your levels, combat stats, tools and game record"},
		{Name: "daily", Description: "Claim your daily reward and keep the streak alive"},
		{Name: "deposit", Description: "Move coins from wallet to bank", Options: []*discordgo.ApplicationCommandOption{
			amountOpt("Coins to deposit"),
		}},
		{Name: "withdraw", Description: "Move coins from bank to wallet", Options: []*discordgo.ApplicationCommandOption{
			amountOpt("Coins to withdraw"),
		}},
		{Name: "history", Description: "Show your recent transactions"},
		{Name: "pay", Description: "Send coins to another player", Options: []*discordgo.ApplicationCommandOption{
			userOpt("recipient", "Who receives the coins"),
			amountOpt("Coins to send"),
		}},
		{Name: "top", Description: "Show the richest players"},
		{Name: "dailytop", Description: "Show today's biggest winners and losers"},
		{Name: "steal", Description: "Try to steal coins from another player", Options: []*discordgo.ApplicationCommandOption{
			userOpt("target", "Who to rob"),
		}},
		{Name: "duel", Description: "Challenge another player to a duel", Options: []*discordgo.ApplicationCommandOption{
			userOpt("opponent", "Who to fight"),
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "wager",
				Description: "Coins at stake",
				Required:    true,
				MinValue:    &minOne,
			},
		}},
		{Name: "heist", Description: "Plan a crew heist in this channel", Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "difficulty",
				Description: "How hard a target to hit",
				Required:    true,
				Choices:     heistChoices(),
			},
		}},
		{Name: "blackjack", Description: "Play a hand of blackjack against the dealer", Options: []*discordgo.ApplicationCommandOption{
			betOption("Coins to bet", 0),
		}},
		{Name: "wordle", Description: "Solve the daily five letter word", Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "start",
				Description: "Start a new puzzle",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "guess",
				Description: "Guess a word",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "word",
						Description: "Your five letter guess",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "quit",
				Description: "Abandon the current puzzle",
			},
		}},
	}

	for _, r := range b.registry.List() {
		cmd := &discordgo.ApplicationCommand{
			Name:        r.Command(),
			Description: r.Description(),
		}
		switch r.Command() {
		case "mine", "fish":
			// no options
		case "roulette":
			cmd.Options = []*discordgo.ApplicationCommandOption{
				betOption("Coins to bet", r.MaxBet()),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "color",
					Description: "Pocket color to back",
					Required:    true,
					Choices:     choices("red", "black", "green"),
				},
			}
		case "rps":
			cmd.Options = []*discordgo.ApplicationCommandOption{
				betOption("Coins to wager", r.MaxBet()),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "choice",
					Description: "Your throw",
					Required:    true,
					Choices:     choices("rock", "paper", "scissors"),
				},
			}
		case "highlow":
			cmd.Options = []*discordgo.ApplicationCommandOption{
				betOption("Coins to bet", r.MaxBet()),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "guess",
					Description: "Will the next number be higher or lower",
					Required:    true,
					Choices:     choices("higher", "lower"),
				},
			}
		case "dungeon":
			maxFloor := float64(dungeon.MaxFloor)
			cmd.Options = []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "floor",
					Description: "Which floor to attempt",
					Required:    true,
					MinValue:    &minOne,
					MaxValue:    maxFloor,
				},
			}
		default:
			cmd.Options = []*discordgo.ApplicationCommandOption{
				betOption("Coins to bet", r.MaxBet()),
			}
		}
		cmds = append(cmds, cmd)
	}

	var adminPerm int64 = discordgo.PermissionAdministrator
	cmds = append(cmds, &discordgo.ApplicationCommand{
		Name:                     "admin",
		Description:              "Adjust player balances",
		DefaultMemberPermissions: &adminPerm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Add coins to a player",
				Options: []*discordgo.ApplicationCommandOption{
					userOpt("user", "Target player"),
					amountOpt("Coins to add"),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "sub",
				Description: "Remove coins from a player",
				Options: []*discordgo.ApplicationCommandOption{
					userOpt("user", "Target player"),
					amountOpt("Coins to remove"),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Set a player's balance",
				Options: []*discordgo.ApplicationCommandOption{
					userOpt("user", "Target player"),
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "amount",
						Description: "New balance",
						Required:    true,
					},
				},
			},
		},
	})

	return cmds
}

// heistChoices renders the difficulty tiers as command choices.
func heistChoices() []*discordgo.ApplicationCommandOptionChoice {
	tiers := heist.Difficulties()
	out := make([]*discordgo.ApplicationCommandOptionChoice, len(tiers))
	for i, d := range tiers {
		out[i] = &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (min stake %d)", d.Name, d.MinStake),
			Value: d.Name,
		}
	}
	return out
}
