package bot

import (
	"testing"
)

func TestLoadConfig_WithValidToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token-123")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DiscordToken != "test-token-123" {
		t.Errorf("expected token %q, got %q", "test-token-123", cfg.DiscordToken)
	}
	if !cfg.EnableKeepalive {
		t.Error("expected keepalive enabled by default")
	}
	if cfg.KeepalivePort != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.KeepalivePort)
	}
}

func TestLoadConfig_WithEmptyToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := LoadConfig()
	if err == nil {
		t.Error("expected error for missing token, got nil")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("ENABLE_KEEPALIVE", "false")
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.EnableKeepalive {
		t.Error("expected keepalive disabled")
	}
	if cfg.KeepalivePort != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.KeepalivePort)
	}
}
