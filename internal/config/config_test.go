//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"telegram-polyai-bot/internal/domain/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "123:abc"
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Bot.Workers != 8 {
		t.Errorf("workers default: got %d", cfg.Bot.Workers)
	}
	if cfg.AI.DefaultProvider != "openai" {
		t.Errorf("default provider: got %q", cfg.AI.DefaultProvider)
	}
	if cfg.Session.Expiry.Std() != time.Hour {
		t.Errorf("session expiry default: got %s", cfg.Session.Expiry.Std())
	}
	if cfg.Media.Debounce.Std() != 2*time.Second {
		t.Errorf("media debounce default: got %s", cfg.Media.Debounce.Std())
	}
	if cfg.Media.Command != "/ask" {
		t.Errorf("media command default: got %q", cfg.Media.Command)
	}
	if got := cfg.AI.DefaultModelFor(model.ProviderOpenAI); got != "gpt-4o-mini" {
		t.Errorf("openai default model: got %q", got)
	}
	if got := cfg.AI.Providers[model.ProviderGrok].BaseURL; got == "" {
		t.Error("grok base url default missing")
	}
	if cfg.Image.OpenAIModel != "dall-e-3" {
		t.Errorf("image model default: got %q", cfg.Image.OpenAIModel)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "123:abc"
  workers: 4
  channel:
    id: "@somechannel"
    enabled: true
ai:
  default_provider: gemini
  providers:
    gemini:
      key: "g-key"
      default_model: gemini-1.5-pro
      allowed_models: [gemini-1.5-pro, gemini-1.5-flash]
session:
  expiry: 30m
  system_prompt: "Be terse."
media:
  debounce: 5s
`)
	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Runtime.Dev {
		t.Error("dev flag not propagated")
	}
	if cfg.Bot.Workers != 4 {
		t.Errorf("workers: got %d", cfg.Bot.Workers)
	}
	if cfg.AI.DefaultProvider != "gemini" {
		t.Errorf("default provider: got %q", cfg.AI.DefaultProvider)
	}
	if got := cfg.AI.DefaultModelFor(model.ProviderGemini); got != "gemini-1.5-pro" {
		t.Errorf("gemini default model: got %q", got)
	}
	if got := cfg.AI.AllowedModelsFor(model.ProviderGemini); len(got) != 2 {
		t.Errorf("gemini allow list: got %v", got)
	}
	if cfg.Session.Expiry.Std() != 30*time.Minute {
		t.Errorf("session expiry: got %s", cfg.Session.Expiry.Std())
	}
	if cfg.Session.SystemPrompt != "Be terse." {
		t.Errorf("system prompt: got %q", cfg.Session.SystemPrompt)
	}
	if cfg.Media.Debounce.Std() != 5*time.Second {
		t.Errorf("media debounce: got %s", cfg.Media.Debounce.Std())
	}
	if !cfg.Bot.Channel.Enabled || cfg.Bot.Channel.ID != "@somechannel" {
		t.Errorf("channel gate config: %+v", cfg.Bot.Channel)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		path := writeConfig(t, `log: {level: debug}`)
		if _, err := LoadConfig(path, false); err == nil {
			t.Error("expected error for missing bot.token")
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		path := writeConfig(t, `
bot:
  token: "123:abc"
ai:
  default_provider: mistral
`)
		if _, err := LoadConfig(path, false); err == nil {
			t.Error("expected error for unknown default provider")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig("/does/not/exist.yaml", false); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
