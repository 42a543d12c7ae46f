package bot

import (
	"regexp"
	"testing"

	"github.com/bwmarrin/discordgo"

	"vaultbot/internal/config"
	"vaultbot/internal/game"
	"vaultbot/internal/handler"
)

func interactionInGuild(guildID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{GuildID: guildID},
	}
}

func TestGuildAllowed(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		guildID string
		want    bool
	}{
		{"empty allowlist admits any guild", nil, "123", true},
		{"dm always passes", []string{"123"}, "", true},
		{"listed guild passes", []string{"123", "456"}, "456", true},
		{"unlisted guild rejected", []string{"123"}, "789", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Discord.AllowedGuilds = tt.allowed
			got := guildAllowed(cfg, interactionInGuild(tt.guildID))
			if got != tt.want {
				t.Errorf("guildAllowed(%q) = %v, want %v", tt.guildID, got, tt.want)
			}
		})
	}
}

func TestAdminOnlyInvokesWrappedHandler(t *testing.T) {
	cfg := &config.Config{}
	cfg.Admin.IDs = []int64{42}

	called := false
	fn := adminOnly(cfg, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		called = true
	})

	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: "42"}},
		},
	}
	fn(nil, i)
	if !called {
		t.Error("admin user should reach the wrapped handler")
	}
}

func TestCommandDefinitionsWellFormed(t *testing.T) {
	b := &Bot{
		cfg:      &config.Config{},
		registry: game.NewRegistry(),
		handlers: Handlers{},
	}

	defs := b.commandDefinitions()
	if len(defs) == 0 {
		t.Fatal("no command definitions")
	}

	// Discord requires lowercase names of at most 32 chars.
	nameRe := regexp.MustCompile(`^[a-z][a-z0-9]{0,31}$`)
	seen := make(map[string]bool)
	for _, cmd := range defs {
		if !nameRe.MatchString(cmd.Name) {
			t.Errorf("command name %q is not a valid slash command name", cmd.Name)
		}
		if seen[cmd.Name] {
			t.Errorf("duplicate command name %q", cmd.Name)
		}
		seen[cmd.Name] = true
		if cmd.Description == "" {
			t.Errorf("command %q has no description", cmd.Name)
		}
	}

	for _, want := range []string{"balance", "daily", "pay", "steal", "duel", "heist", "blackjack", "wordle", "admin"} {
		if !seen[want] {
			t.Errorf("command %q missing from definitions", want)
		}
	}
}

func TestBuildRoutesCoversDefinitions(t *testing.T) {
	b := &Bot{
		cfg:      &config.Config{},
		registry: game.NewRegistry(),
		handlers: Handlers{},
	}
	b.commands = b.buildRoutes()

	for _, cmd := range b.commandDefinitions() {
		if _, ok := b.commands[cmd.Name]; !ok {
			t.Errorf("registered command %q has no route", cmd.Name)
		}
	}

	var _ handler.InteractionFunc = b.commands["balance"]
}
