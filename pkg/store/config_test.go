package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("NODEWATCH_CONFIG_PATH", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig(viper.New())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server() != DefaultServer {
		t.Fatalf("expected default server, got %q", cfg.Server())
	}
	if cfg.ReconnectDelay() != DefaultReconnectDelay {
		t.Fatalf("expected %s, got %s", DefaultReconnectDelay, cfg.ReconnectDelay())
	}
	if filepath.Base(cfg.PrefsPath()) != ".nodewatch.d" || !filepath.IsAbs(cfg.PrefsPath()) {
		t.Fatalf("expected expanded prefs path, got %q", cfg.PrefsPath())
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NODEWATCH_CONFIG_PATH", dir)
	t.Setenv("NODEWATCH_REQUEST_TIMEOUT", "3s")

	body := "server: http://10.0.0.2:8000\nreconnect_delay: 5s\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, ".nodewatch.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(viper.New())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server() != "http://10.0.0.2:8000" {
		t.Fatalf("unexpected server %q", cfg.Server())
	}
	if cfg.ReconnectDelay() != 5*time.Second {
		t.Fatalf("unexpected reconnect delay %s", cfg.ReconnectDelay())
	}
	if cfg.RequestTimeout() != 3*time.Second {
		t.Fatalf("env should override timeout, got %s", cfg.RequestTimeout())
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel())
	}
	if ConfigFile(cfg) == "" {
		t.Fatalf("expected config file to be recorded")
	}
}
