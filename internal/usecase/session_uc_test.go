//go:build !integration

package usecase

import (
	"testing"
	"time"

	"telegram-polyai-bot/internal/domain/model"
)

func TestGetOrCreateIsStable(t *testing.T) {
	uc := newTestSessions()

	uc.AppendTurn(7, model.RoleUser, "hello")
	before := len(uc.HistorySnapshot(7))

	uc.GetOrCreate(7)
	uc.GetOrCreate(7)

	if got := len(uc.HistorySnapshot(7)); got != before {
		t.Errorf("repeated GetOrCreate changed history: %d -> %d", before, got)
	}
	if uc.Len() != 1 {
		t.Errorf("expected 1 session, got %d", uc.Len())
	}
}

func TestExpiryCarriesPreferencesOnly(t *testing.T) {
	uc := newTestSessions()
	current := time.Now()
	uc.now = func() time.Time { return current }

	uc.SetProvider(7, model.ProviderGemini)
	uc.SetModel(7, "gemini-ultra")
	uc.SetImageModel(7, model.ImageModelFlux)
	uc.AppendTurn(7, model.RoleUser, "question")
	uc.AppendTurn(7, model.RoleAssistant, "answer")
	uc.SetUIState(7, model.UIStateSelectingModel)

	current = current.Add(2 * time.Hour)
	s := uc.GetOrCreate(7)

	if s.Provider != model.ProviderGemini {
		t.Errorf("provider not carried over: %s", s.Provider)
	}
	if s.Model != "gemini-ultra" {
		t.Errorf("model not carried over: %s", s.Model)
	}
	if s.ImageModel != model.ImageModelFlux {
		t.Errorf("image model not carried over: %s", s.ImageModel)
	}
	if len(s.History) != 1 || s.History[0].Role != model.RoleSystem {
		t.Errorf("expected fresh history with system prompt only, got %+v", s.History)
	}
	if s.UIState != model.UIStateIdle {
		t.Errorf("UI state should not survive expiry, got %q", s.UIState)
	}
}

func TestResetKeepsProviderChoices(t *testing.T) {
	uc := newTestSessions()

	uc.SetProvider(7, model.ProviderAnthropic)
	uc.AppendTurn(7, model.RoleUser, "hi")
	uc.SetUIState(7, model.UIStateSelectingProvider)

	uc.Reset(7)

	if got := uc.Provider(7); got != model.ProviderAnthropic {
		t.Errorf("reset dropped provider: %s", got)
	}
	h := uc.HistorySnapshot(7)
	if len(h) != 1 || h[0].Role != model.RoleSystem {
		t.Errorf("reset should leave only the system prompt, got %+v", h)
	}
	if uc.UIState(7) != model.UIStateIdle {
		t.Error("reset should clear UI state")
	}
}

func TestSetProviderResetsModel(t *testing.T) {
	uc := newTestSessions()

	uc.SetModel(7, "gpt-4o")
	uc.SetProvider(7, model.ProviderGrok)

	if got := uc.Model(7); got != "grok-1" {
		t.Errorf("expected provider default model, got %q", got)
	}
}

func TestGettersDoNotCreateSessions(t *testing.T) {
	uc := newTestSessions()

	if got := uc.Provider(99); got != model.ProviderOpenAI {
		t.Errorf("unexpected default provider: %s", got)
	}
	if got := uc.Model(99); got != "gpt-4o-mini" {
		t.Errorf("unexpected default model: %q", got)
	}
	if got := uc.UIState(99); got != model.UIStateIdle {
		t.Errorf("unexpected default UI state: %q", got)
	}
	if uc.Len() != 0 {
		t.Errorf("getters must not create sessions, got %d", uc.Len())
	}
}

func TestReadAccessorsAfterExpiry(t *testing.T) {
	uc := newTestSessions()
	current := time.Now()
	uc.now = func() time.Time { return current }

	uc.SetProvider(7, model.ProviderGemini)
	uc.AppendTurn(7, model.RoleUser, "question")
	uc.SetUIState(7, model.UIStateSelectingProvider)

	current = current.Add(2 * time.Hour)

	// Getters alone, no GetOrCreate in between. A menu armed before the
	// session expired must not swallow the user's next message.
	if st := uc.UIState(7); st != model.UIStateIdle {
		t.Errorf("expired session must read as idle, got %q", st)
	}
	if h := uc.HistorySnapshot(7); h != nil {
		t.Errorf("expired session must have no readable history, got %+v", h)
	}
	if p := uc.Provider(7); p != model.ProviderGemini {
		t.Errorf("provider choice should still read through expiry, got %s", p)
	}
}
