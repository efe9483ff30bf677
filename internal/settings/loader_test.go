package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.ConfigFormatVersion != "1" {
		t.Fatalf("config_format_version = %q", cfg.ConfigFormatVersion)
	}
	if cfg.History.MaxEntries != 200 || cfg.History.PreviewChars != 80 || cfg.History.Store != "sqlite" {
		t.Fatalf("history defaults = %+v", cfg.History)
	}
	if !cfg.Redaction.Emails || !cfg.Redaction.Paths || !cfg.Redaction.TokensEnabled() {
		t.Fatalf("redaction defaults = %+v", cfg.Redaction)
	}
	if cfg.PrivateMode {
		t.Fatal("private mode must default off")
	}
}

func TestLoadHydratesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "model_id: custom-model\nhistory:\n  max_entries: 5\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ModelID != "custom-model" {
		t.Fatalf("model_id = %q", cfg.ModelID)
	}
	if cfg.History.MaxEntries != 5 {
		t.Fatalf("max_entries = %d", cfg.History.MaxEntries)
	}
	if cfg.History.PreviewChars != 80 || cfg.History.Store != "sqlite" {
		t.Fatalf("unset history fields not hydrated: %+v", cfg.History)
	}
	if !cfg.Redaction.TokensEnabled() || !cfg.Redaction.PreviewEnabled() {
		t.Fatal("omitted redaction toggles must default on")
	}
}

func TestAPIKeyFallsBackToEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model_id: m\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(apiKeyEnvVar, "env-key")

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Fatalf("api_key = %q", cfg.APIKey)
	}
}

func TestFileAPIKeyWinsOverEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_key: file-key\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(apiKeyEnvVar, "env-key")

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "file-key" {
		t.Fatalf("api_key = %q", cfg.APIKey)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg := DefaultSettings()
	cfg.ModelID = "saved-model"
	cfg.PrivateMode = true
	if err := loader.Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ModelID != "saved-model" || !got.PrivateMode {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	if err := os.WriteFile(path, []byte("model_id: drifted\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := loader.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if cfg.ModelID == "drifted" {
		t.Fatal("reset kept drifted value")
	}

	reloaded, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.ModelID != cfg.ModelID {
		t.Fatalf("reloaded %q != reset %q", reloaded.ModelID, cfg.ModelID)
	}
}
