package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"telegram-polyai-bot/internal/domain/model"
)

type RuntimeConfig struct {
	Dev bool
}

// Duration accepts either a Go duration string ("30m") or integer
// nanoseconds in yaml.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration: %s", value.Value)
	}
	*d = Duration(n)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type BotConfig struct {
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	Workers  int    `yaml:"workers"` // polling workers
	Channel  struct {
		ID      string `yaml:"id"` // e.g. "@korobo4ka_xoroni"
		Enabled bool   `yaml:"enabled"`
	} `yaml:"channel"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type WebConfig struct {
	Port      int    `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
}

type RedisConfig struct {
	URL      string   `yaml:"url"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"` // membership cache TTL
}

// ProviderConfig is the per-backend block under ai.providers.
type ProviderConfig struct {
	Key           string   `yaml:"key"`
	BaseURL       string   `yaml:"base_url"`
	DefaultModel  string   `yaml:"default_model"`
	AllowedModels []string `yaml:"allowed_models"`
}

type AIConfig struct {
	DefaultProvider string                            `yaml:"default_provider"`
	Providers       map[model.Provider]ProviderConfig `yaml:"providers"`
	ConcurrentLimit int                               `yaml:"concurrent_limit"` // max concurrent AI calls
	MaxTokens       int                               `yaml:"max_tokens"`
}

type ImageConfig struct {
	Default     string `yaml:"default"`      // openai | flux
	OpenAIModel string `yaml:"openai_model"` // e.g. dall-e-3
	BFLKey      string `yaml:"bfl_key"`
	BFLBaseURL  string `yaml:"bfl_base_url"`
	FluxModel   string `yaml:"flux_model"`
}

type SessionConfig struct {
	Expiry       Duration `yaml:"expiry"`
	SystemPrompt string   `yaml:"system_prompt"`
}

type MediaConfig struct {
	Debounce Duration `yaml:"debounce"` // media-group flush window
	Command  string   `yaml:"command"`  // caption trigger, e.g. "/ask"
}

type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Log     LogConfig     `yaml:"log"`
	Web     WebConfig     `yaml:"web"`
	Redis   RedisConfig   `yaml:"redis"`
	AI      AIConfig      `yaml:"ai"`
	Image   ImageConfig   `yaml:"image"`
	Session SessionConfig `yaml:"session"`
	Media   MediaConfig   `yaml:"media"`

	Runtime RuntimeConfig `yaml:"-"`
}

// defaultModels mirrors the published defaults per provider; overridable in yaml.
var defaultModels = map[model.Provider]string{
	model.ProviderOpenAI:    "gpt-4o-mini",
	model.ProviderAnthropic: "claude-3-5-haiku-20241022",
	model.ProviderGemini:    "gemini-pro",
	model.ProviderGrok:      "grok-1",
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultProvider == "" {
		cfg.AI.DefaultProvider = string(model.ProviderOpenAI)
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 4096
	}
	if cfg.AI.Providers == nil {
		cfg.AI.Providers = map[model.Provider]ProviderConfig{}
	}
	for _, p := range model.Providers {
		pc := cfg.AI.Providers[p]
		if pc.DefaultModel == "" {
			pc.DefaultModel = defaultModels[p]
		}
		if len(pc.AllowedModels) == 0 {
			pc.AllowedModels = []string{pc.DefaultModel}
		}
		if p == model.ProviderGrok && pc.BaseURL == "" {
			pc.BaseURL = "https://api.groq.com/openai/v1"
		}
		cfg.AI.Providers[p] = pc
	}
	if cfg.Image.Default == "" {
		cfg.Image.Default = string(model.ImageModelOpenAI)
	}
	if cfg.Image.OpenAIModel == "" {
		cfg.Image.OpenAIModel = "dall-e-3"
	}
	if cfg.Image.BFLBaseURL == "" {
		cfg.Image.BFLBaseURL = "https://api.bfl.ml/v1"
	}
	if cfg.Image.FluxModel == "" {
		cfg.Image.FluxModel = "flux-pro-1.1"
	}
	if cfg.Session.Expiry <= 0 {
		cfg.Session.Expiry = Duration(time.Hour)
	}
	if cfg.Session.SystemPrompt == "" {
		cfg.Session.SystemPrompt = "You are a helpful assistant."
	}
	if cfg.Media.Debounce <= 0 {
		cfg.Media.Debounce = Duration(2 * time.Second)
	}
	if cfg.Media.Command == "" {
		cfg.Media.Command = "/ask"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if !model.Provider(cfg.AI.DefaultProvider).Valid() {
		return nil, fmt.Errorf("ai.default_provider: unknown provider %q", cfg.AI.DefaultProvider)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// DefaultModelFor returns the configured default model for a provider.
func (c *AIConfig) DefaultModelFor(p model.Provider) string {
	if pc, ok := c.Providers[p]; ok && pc.DefaultModel != "" {
		return pc.DefaultModel
	}
	return defaultModels[p]
}

// AllowedModelsFor returns the selectable model ids for a provider.
func (c *AIConfig) AllowedModelsFor(p model.Provider) []string {
	if pc, ok := c.Providers[p]; ok && len(pc.AllowedModels) > 0 {
		return pc.AllowedModels
	}
	return []string{defaultModels[p]}
}

func normalizeTTL(d Duration) Duration {
	if d <= 0 {
		return Duration(10 * time.Minute)
	}
	return d
}
