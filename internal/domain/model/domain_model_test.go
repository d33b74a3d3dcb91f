//go:build !integration

package model

import (
	"testing"
	"time"
)

func TestNewSession(t *testing.T) {
	now := time.Now()

	t.Run("seeds history with the system prompt", func(t *testing.T) {
		s := NewSession(42, "You are helpful.", ProviderOpenAI, "gpt-4o-mini", ImageModelOpenAI, now)
		if len(s.History) != 1 {
			t.Fatalf("expected 1 history entry, got %d", len(s.History))
		}
		if s.History[0].Role != RoleSystem {
			t.Errorf("expected system role, got %s", s.History[0].Role)
		}
		if s.History[0].Content != "You are helpful." {
			t.Errorf("unexpected system prompt: %q", s.History[0].Content)
		}
		if s.UIState != UIStateIdle {
			t.Errorf("expected idle UI state, got %q", s.UIState)
		}
	})

	t.Run("empty system prompt leaves history empty", func(t *testing.T) {
		s := NewSession(42, "", ProviderOpenAI, "gpt-4o-mini", ImageModelOpenAI, now)
		if len(s.History) != 0 {
			t.Fatalf("expected empty history, got %d entries", len(s.History))
		}
	})
}

func TestSessionExpiry(t *testing.T) {
	now := time.Now()
	s := NewSession(1, "sys", ProviderGemini, "gemini-pro", ImageModelFlux, now)

	if s.ExpiredAt(now.Add(30*time.Minute), time.Hour) {
		t.Error("session should not be expired before the TTL")
	}
	if !s.ExpiredAt(now.Add(2*time.Hour), time.Hour) {
		t.Error("session should be expired after the TTL")
	}

	s.Touch(now.Add(50 * time.Minute))
	if s.ExpiredAt(now.Add(90*time.Minute), time.Hour) {
		t.Error("touch should push the expiry window forward")
	}
}

func TestSessionAppend(t *testing.T) {
	now := time.Now()
	s := NewSession(1, "sys", ProviderOpenAI, "gpt-4o-mini", ImageModelOpenAI, now)

	s.Append(RoleUser, "hello")
	s.Append(RoleAssistant, "hi there")

	if len(s.History) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(s.History))
	}
	if s.History[1].Role != RoleUser || s.History[1].Content != "hello" {
		t.Errorf("unexpected user turn: %+v", s.History[1])
	}
	if s.History[2].Role != RoleAssistant || s.History[2].Content != "hi there" {
		t.Errorf("unexpected assistant turn: %+v", s.History[2])
	}
}

func TestProviderValid(t *testing.T) {
	for _, p := range Providers {
		if !p.Valid() {
			t.Errorf("provider %q should be valid", p)
		}
	}
	if Provider("mistral").Valid() {
		t.Error("unknown provider should not be valid")
	}
}

func TestProviderDisplayName(t *testing.T) {
	cases := map[Provider]string{
		ProviderOpenAI:    "OpenAI",
		ProviderAnthropic: "Claude (Anthropic)",
		ProviderGemini:    "Gemini (Google)",
		ProviderGrok:      "Grok",
	}
	for p, want := range cases {
		if got := p.DisplayName(); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", p, got, want)
		}
	}
}
