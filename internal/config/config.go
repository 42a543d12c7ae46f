// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Discord  DiscordConfig  `mapstructure:"discord"`
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Bank     BankConfig     `mapstructure:"bank"`
	Daily    DailyConfig    `mapstructure:"daily"`
	Games    GamesConfig    `mapstructure:"games"`
}

// DiscordConfig holds Discord gateway configuration.
type DiscordConfig struct {
	Token string `mapstructure:"token"`
	// GuildID scopes slash-command registration to one guild when set.
	// Empty registers commands globally.
	GuildID string `mapstructure:"guild_id"`
	// AllowedGuilds restricts which guilds the bot answers in. Empty allows all.
	AllowedGuilds []string `mapstructure:"allowed_guilds"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// BankConfig holds bank vault configuration.
type BankConfig struct {
	Cap              int64         `mapstructure:"cap"`
	InterestRate     float64       `mapstructure:"interest_rate"`
	InterestInterval time.Duration `mapstructure:"interest_interval"`
}

// DailyConfig holds daily reward configuration.
type DailyConfig struct {
	Reward        int64 `mapstructure:"reward"`
	StreakBonus   int64 `mapstructure:"streak_bonus"`
	CooldownHours int   `mapstructure:"cooldown_hours"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	Steal StealConfig `mapstructure:"steal"`
	Duel  DuelConfig  `mapstructure:"duel"`
	Heist HeistConfig `mapstructure:"heist"`
}

// StealConfig holds steal game configuration.
type StealConfig struct {
	CooldownSeconds   int `mapstructure:"cooldown_seconds"`
	ProtectionSeconds int `mapstructure:"protection_seconds"`
}

// DuelConfig holds duel game configuration.
type DuelConfig struct {
	AcceptTimeoutSeconds int `mapstructure:"accept_timeout_seconds"`
	MaxRestarts          int `mapstructure:"max_restarts"`
}

// HeistConfig holds heist game configuration.
type HeistConfig struct {
	JoinWindowSeconds int `mapstructure:"join_window_seconds"`
	MaxParticipants   int `mapstructure:"max_participants"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. DISCORD_TOKEN, DATABASE_HOST, DATABASE_PORT.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; env vars can provide everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "vaultbot")
	v.SetDefault("database.name", "vaultbot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("bank.cap", 1_000_000)
	v.SetDefault("bank.interest_rate", 0.003)
	v.SetDefault("bank.interest_interval", "6h")

	v.SetDefault("daily.reward", 1000)
	v.SetDefault("daily.streak_bonus", 100)
	v.SetDefault("daily.cooldown_hours", 24)

	v.SetDefault("games.steal.cooldown_seconds", 1800)
	v.SetDefault("games.steal.protection_seconds", 28800)
	v.SetDefault("games.duel.accept_timeout_seconds", 30)
	v.SetDefault("games.duel.max_restarts", 10)
	v.SetDefault("games.heist.join_window_seconds", 60)
	v.SetDefault("games.heist.max_participants", 10)
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsGuildAllowed checks if a guild ID is in the allowlist.
func (c *Config) IsGuildAllowed(guildID string) bool {
	// Empty allowlist means all guilds are allowed.
	if len(c.Discord.AllowedGuilds) == 0 {
		return true
	}
	for _, id := range c.Discord.AllowedGuilds {
		if id == guildID {
			return true
		}
	}
	return false
}
