package bot

import (
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the process-level configuration.
type Config struct {
	DiscordToken    string `env:"DISCORD_TOKEN,notEmpty"`
	EnableKeepalive bool   `env:"ENABLE_KEEPALIVE" envDefault:"true"`
	KeepalivePort   int    `env:"PORT" envDefault:"5000"`
}

// LoadConfig loads configuration from a .env file when present and the
// environment otherwise. Returns an error if required fields are missing.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables only")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
