package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/metrolist/metrolist-bot/internal/bot"
	"github.com/metrolist/metrolist-bot/internal/keepalive"
	_ "github.com/metrolist/metrolist-bot/internal/modules/help"
	_ "github.com/metrolist/metrolist-bot/internal/modules/music_player"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/metrolist
var version = "dev"

func main() {
	// Configure JSON logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	slog.Info("starting metrolist-bot", "version", version)

	// Load configuration
	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Start the keepalive endpoint before the bot so the hosting platform
	// sees the process as alive during the Discord handshake.
	var ka *keepalive.Server
	if cfg.EnableKeepalive {
		ka = keepalive.New(strconv.Itoa(cfg.KeepalivePort))
		ka.Start()
	}

	// Create and configure bot
	b := bot.NewBot(cfg)
	b.LoadModules()

	// Start bot
	if err := b.Start(); err != nil {
		slog.Error("failed to start bot", "error", err)
		os.Exit(1)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}
	if ka != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := ka.Stop(ctx); err != nil {
			slog.Error("failed to stop keepalive server", "error", err)
		}
		cancel()
	}

	slog.Info("completed bot shutdown")
	os.Exit(0)
}
