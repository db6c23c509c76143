package music_player

import "time"

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`

	MaxQueueLength        int           `env:"MAX_QUEUE_LENGTH" envDefault:"100"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT" envDefault:"2m"`
	ResolutionTimeout     time.Duration `env:"RESOLUTION_TIMEOUT" envDefault:"15s"`
	ConnectionTimeout     time.Duration `env:"CONNECTION_TIMEOUT" envDefault:"10s"`
	MaxResolutionFailures int           `env:"MAX_RESOLUTION_FAILURES" envDefault:"3"`
}
