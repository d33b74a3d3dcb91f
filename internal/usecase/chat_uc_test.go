//go:build !integration

package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"

	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/domain/ports/adapter"
)

func newTestChat(client *fakeProviderClient) (*chatUC, *sessionUC) {
	sessions := newTestSessions()
	clients := map[model.Provider]adapter.ProviderClient{}
	if client != nil {
		clients[client.provider] = client
	}
	return NewChatUseCase(sessions, clients, NewStatsUseCase(sessions), nopLogger()), sessions
}

func TestDispatchRoundTrip(t *testing.T) {
	client := &fakeProviderClient{provider: model.ProviderOpenAI, reply: "hello back"}
	uc, sessions := newTestChat(client)

	got := uc.Dispatch(context.Background(), 7, "hello")

	if got != "hello back" {
		t.Errorf("unexpected reply: %q", got)
	}
	h := sessions.HistorySnapshot(7)
	if len(h) != 3 {
		t.Fatalf("expected system+user+assistant, got %d turns", len(h))
	}
	if h[1].Role != model.RoleUser || h[1].Content != "hello" {
		t.Errorf("unexpected user turn: %+v", h[1])
	}
	if h[2].Role != model.RoleAssistant || h[2].Content != "hello back" {
		t.Errorf("unexpected assistant turn: %+v", h[2])
	}
	if client.lastModel != "gpt-4o-mini" {
		t.Errorf("expected default model, got %q", client.lastModel)
	}
}

func TestDispatchProviderFailure(t *testing.T) {
	client := &fakeProviderClient{provider: model.ProviderOpenAI, err: errBoom}
	uc, sessions := newTestChat(client)

	got := uc.Dispatch(context.Background(), 7, "hello")

	if got != "Error processing message with OpenAI: boom" {
		t.Errorf("unexpected error text: %q", got)
	}
	h := sessions.HistorySnapshot(7)
	if len(h) != 2 {
		t.Fatalf("expected system+user only, got %d turns", len(h))
	}
	if h[len(h)-1].Role != model.RoleUser {
		t.Errorf("error text must not be appended as an assistant turn: %+v", h[len(h)-1])
	}
}

func TestDispatchUnknownProvider(t *testing.T) {
	uc, sessions := newTestChat(nil)
	sessions.SetProvider(7, model.ProviderGrok)

	got := uc.Dispatch(context.Background(), 7, "hello")

	if !strings.Contains(got, "Grok") || !strings.HasPrefix(got, "Error processing message with") {
		t.Errorf("unexpected reply for unconfigured provider: %q", got)
	}
}

func TestDispatchWithImages(t *testing.T) {
	client := &fakeProviderClient{provider: model.ProviderOpenAI, reply: "a cat"}
	uc, _ := newTestChat(client)

	urls := []string{"https://example.com/a.jpg", "https://example.com/b.jpg"}
	got := uc.DispatchWithImages(context.Background(), 7, "what is this", urls)

	if got != "a cat" {
		t.Errorf("unexpected reply: %q", got)
	}
	if len(client.lastURLs) != 2 || client.lastURLs[0] != urls[0] {
		t.Errorf("image urls not forwarded: %v", client.lastURLs)
	}
}

func TestDispatchSerializesPerUser(t *testing.T) {
	client := &fakeProviderClient{provider: model.ProviderOpenAI, reply: "ok"}
	uc, sessions := newTestChat(client)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uc.Dispatch(context.Background(), 7, "msg")
		}()
	}
	wg.Wait()

	h := sessions.HistorySnapshot(7)
	// system + n*(user+assistant)
	if len(h) != 1+2*n {
		t.Fatalf("expected %d turns, got %d", 1+2*n, len(h))
	}
	for i := 1; i < len(h); i++ {
		want := model.RoleUser
		if i%2 == 0 {
			want = model.RoleAssistant
		}
		if h[i].Role != want {
			t.Fatalf("turn %d out of order: got %s, want %s", i, h[i].Role, want)
		}
	}
}
