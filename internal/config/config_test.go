package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DataDir != "data" {
		t.Errorf("expected default data_dir %q, got %q", "data", cfg.DataDir)
	}
	if !cfg.Dashboard.Enabled {
		t.Error("expected dashboard enabled by default")
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("expected default dashboard port 8080, got %d", cfg.Dashboard.Port)
	}
	if cfg.FAQ.Enabled {
		t.Error("expected faq disabled by default")
	}
	if cfg.Discord.CommandPrefix != "!" {
		t.Errorf("expected default command prefix %q, got %q", "!", cfg.Discord.CommandPrefix)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guildkeeper.yml")

	original := DefaultConfig()
	original.Discord.Token = "test-token"
	original.Discord.ClientID = "12345"
	original.DataDir = "custom-data"
	original.Dashboard.Port = 9090
	original.FAQ.Enabled = true
	original.FAQ.Threshold = 0.9

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Discord.Token != original.Discord.Token {
		t.Errorf("token: got %q, want %q", loaded.Discord.Token, original.Discord.Token)
	}
	if loaded.Discord.ClientID != original.Discord.ClientID {
		t.Errorf("client_id: got %q, want %q", loaded.Discord.ClientID, original.Discord.ClientID)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.Dashboard.Port != original.Dashboard.Port {
		t.Errorf("port: got %d, want %d", loaded.Dashboard.Port, original.Dashboard.Port)
	}
	if loaded.FAQ.Threshold != original.FAQ.Threshold {
		t.Errorf("threshold: got %v, want %v", loaded.FAQ.Threshold, original.FAQ.Threshold)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "data" {
		t.Errorf("expected default data_dir, got %q", cfg.DataDir)
	}
}

func TestEnvOverride(t *testing.T) {
	os.Setenv("GUILDKEEPER_DISCORD__TOKEN", "env-token")
	defer os.Unsetenv("GUILDKEEPER_DISCORD__TOKEN")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Discord.Token != "env-token" {
		t.Errorf("expected env token override, got %q", cfg.Discord.Token)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing token")
	}

	cfg.Discord.Token = "t"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Dashboard.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid port")
	}
	cfg.Dashboard.Port = 8080

	cfg.FAQ.Enabled = true
	cfg.FAQ.Threshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range threshold")
	}
}
