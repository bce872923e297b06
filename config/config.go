// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/CreativeUnicorns/usersettings"
)

// Backend names accepted in STORE_BACKEND.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Store struct {
		URL     string `env:"DB_URL,required,notEmpty"`
		Name    string `env:"DB_NAME" envDefault:"usersettings"`
		Backend string `env:"STORE_BACKEND" envDefault:"mongo"`
		// ConnectTimeout bounds the startup connection and liveness probe.
		ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
	}

	HTTP struct {
		// Addr is the admin API listen address. Empty disables the API.
		Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}

	Telegram struct {
		BotToken   string `env:"BOT_TOKEN"`
		LogChannel int64  `env:"LOG_CHANNEL" envDefault:"0"`
	}

	Discord struct {
		Token      string `env:"DISCORD_TOKEN"`
		LogChannel string `env:"DISCORD_LOG_CHANNEL"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
		Stream   string `env:"NOTIFY_STREAM" envDefault:"usersettings:events"`
		MaxLen   int64  `env:"NOTIFY_STREAM_MAXLEN" envDefault:"0"`
	}

	Defaults struct {
		MetadataCode string `env:"DEFAULT_METADATA_CODE"`
		Title        string `env:"DEFAULT_TITLE"`
		Tag          string `env:"DEFAULT_TAG"`
	}
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; production sets the variables directly.
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the struct tags cannot express.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMongo, BackendPostgres, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Store.ConnectTimeout <= 0 {
		return fmt.Errorf("config: CONNECT_TIMEOUT must be positive")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Telegram.LogChannel != 0 && c.Telegram.BotToken == "" {
		return fmt.Errorf("config: LOG_CHANNEL requires BOT_TOKEN")
	}
	if c.Discord.LogChannel != "" && c.Discord.Token == "" {
		return fmt.Errorf("config: DISCORD_LOG_CHANNEL requires DISCORD_TOKEN")
	}
	return nil
}

// SettingsDefaults maps the DEFAULT_* variables onto usersettings.Defaults. DEFAULT_TAG
// applies to every media tag except the title.
func (c *Config) SettingsDefaults() usersettings.Defaults {
	tag := c.Defaults.Tag
	return usersettings.Defaults{
		MetadataCode: c.Defaults.MetadataCode,
		Title:        c.Defaults.Title,
		Author:       tag,
		Artist:       tag,
		Audio:        tag,
		Subtitle:     tag,
		Video:        tag,
	}
}

func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.LogChannel != 0
}

func (c *Config) DiscordEnabled() bool { return c.Discord.Token != "" && c.Discord.LogChannel != "" }

func (c *Config) StreamEnabled() bool { return c.Redis.Addr != "" }
