package model

import (
	"time"
)

// Provider identifies one of the supported LLM backends.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderGrok      Provider = "grok"
)

// Providers lists all chat providers in menu order.
var Providers = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderGrok}

// DisplayName returns the human-facing provider name used in menus.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAnthropic:
		return "Claude (Anthropic)"
	case ProviderGemini:
		return "Gemini (Google)"
	case ProviderGrok:
		return "Grok"
	}
	return string(p)
}

// Valid reports whether p is one of the closed set of providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderGrok:
		return true
	}
	return false
}

// ImageModel selects the image-generation backend, independent of Provider.
type ImageModel string

const (
	ImageModelOpenAI ImageModel = "openai"
	ImageModelFlux   ImageModel = "flux"
)

var ImageModels = []ImageModel{ImageModelOpenAI, ImageModelFlux}

func (m ImageModel) DisplayName() string {
	switch m {
	case ImageModelOpenAI:
		return "DALL-E (OpenAI)"
	case ImageModelFlux:
		return "Flux (Black Forest Labs)"
	}
	return string(m)
}

// UIState marks a pending multi-step interaction. While a session is in a
// selecting state, numeric text input is consumed as a menu choice by the
// command layer instead of being sent to the model.
type UIState string

const (
	UIStateIdle              UIState = ""
	UIStateSelectingProvider UIState = "selecting_provider"
	UIStateSelectingModel    UIState = "selecting_specific_model"
	UIStateSelectingImgModel UIState = "selecting_img_model"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Session is the per-user conversational and preference state. It is held in
// memory only; nothing survives a process restart.
type Session struct {
	UserID       int64
	History      []Message
	Provider     Provider
	Model        string
	ImageModel   ImageModel
	UIState      UIState
	LastActivity time.Time
}

// NewSession seeds a session with the system prompt (when non-empty) so that
// History[0] is always the system turn.
func NewSession(userID int64, systemPrompt string, provider Provider, model string, imageModel ImageModel, now time.Time) *Session {
	s := &Session{
		UserID:       userID,
		History:      make([]Message, 0, 8),
		Provider:     provider,
		Model:        model,
		ImageModel:   imageModel,
		UIState:      UIStateIdle,
		LastActivity: now,
	}
	if systemPrompt != "" {
		s.History = append(s.History, Message{Role: RoleSystem, Content: systemPrompt})
	}
	return s
}

func (s *Session) Append(role Role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content})
}

// ExpiredAt reports whether the session is stale relative to now.
func (s *Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivity) > ttl
}

func (s *Session) Touch(now time.Time) {
	s.LastActivity = now
}
