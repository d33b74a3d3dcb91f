package usecase

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-polyai-bot/internal/config"
	"telegram-polyai-bot/internal/domain/model"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// SessionUseCase is the single source of truth for per-user conversational
// and provider-selection state. All methods are safe for concurrent use.
type SessionUseCase interface {
	// GetOrCreate returns the user's current session, creating one on first
	// access and transparently replacing an expired one. An expiry-driven
	// replacement carries forward provider, model and image model, but not
	// history or UI state. Touches LastActivity.
	GetOrCreate(userID int64) *model.Session

	// Reset replaces history with just the system prompt and clears the UI
	// state, preserving provider preferences. Idempotent.
	Reset(userID int64)

	Provider(userID int64) model.Provider
	// SetProvider switches the active provider and resets the specific model
	// to that provider's configured default.
	SetProvider(userID int64, p model.Provider)

	Model(userID int64) string
	// SetModel stores the given model id verbatim; allow-list validation is
	// the command layer's concern, since the allow-list is configuration.
	SetModel(userID int64, modelID string)

	ImageModel(userID int64) model.ImageModel
	SetImageModel(userID int64, m model.ImageModel)

	// UIState reads as idle once the session has expired.
	UIState(userID int64) model.UIState
	SetUIState(userID int64, st model.UIState)
	ClearUIState(userID int64)

	// AppendTurn appends one turn to the user's history, creating the
	// session first if needed.
	AppendTurn(userID int64, role model.Role, content string)

	// HistorySnapshot returns a copy of the user's history safe to hand to
	// provider clients.
	HistorySnapshot(userID int64) []model.Message

	// Len reports the number of live sessions.
	Len() int
}

type sessionUC struct {
	mu       sync.RWMutex
	sessions map[int64]*model.Session

	ai           *config.AIConfig
	systemPrompt string
	expiry       time.Duration
	defaultImage model.ImageModel
	log          *zerolog.Logger

	now func() time.Time // injectable for tests
}

func NewSessionUseCase(ai *config.AIConfig, sess config.SessionConfig, imageDefault model.ImageModel, logger *zerolog.Logger) *sessionUC {
	return &sessionUC{
		sessions:     make(map[int64]*model.Session),
		ai:           ai,
		systemPrompt: sess.SystemPrompt,
		expiry:       sess.Expiry.Std(),
		defaultImage: imageDefault,
		log:          logger,
		now:          time.Now,
	}
}

func (u *sessionUC) defaultProvider() model.Provider {
	return model.Provider(u.ai.DefaultProvider)
}

// getOrCreateLocked implements the lookup-or-create-or-replace rule.
// Callers must hold u.mu for writing.
func (u *sessionUC) getOrCreateLocked(userID int64) *model.Session {
	now := u.now()
	s, ok := u.sessions[userID]
	switch {
	case !ok:
		p := u.defaultProvider()
		s = model.NewSession(userID, u.systemPrompt, p, u.ai.DefaultModelFor(p), u.defaultImage, now)
		u.sessions[userID] = s
		u.log.Debug().Int64("tg_id", userID).Msg("session created")
	case s.ExpiredAt(now, u.expiry):
		// Model preference survives expiry; conversation content does not.
		fresh := model.NewSession(userID, u.systemPrompt, s.Provider, s.Model, s.ImageModel, now)
		u.sessions[userID] = fresh
		u.log.Debug().Int64("tg_id", userID).Msg("expired session replaced")
		s = fresh
	default:
		s.Touch(now)
	}
	return s
}

// live returns the user's session only if it has not expired. Read accessors
// for state that does not survive expiry must go through this instead of the
// raw map, so a stale session reads the same as a missing one. Callers must
// hold u.mu.
func (u *sessionUC) live(userID int64) (*model.Session, bool) {
	s, ok := u.sessions[userID]
	if !ok || s.ExpiredAt(u.now(), u.expiry) {
		return nil, false
	}
	return s, true
}

func (u *sessionUC) GetOrCreate(userID int64) *model.Session {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.getOrCreateLocked(userID)
}

func (u *sessionUC) Reset(userID int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s := u.getOrCreateLocked(userID)
	fresh := model.NewSession(userID, u.systemPrompt, s.Provider, s.Model, s.ImageModel, u.now())
	u.sessions[userID] = fresh
}

func (u *sessionUC) Provider(userID int64) model.Provider {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if s, ok := u.sessions[userID]; ok {
		return s.Provider
	}
	return u.defaultProvider()
}

func (u *sessionUC) SetProvider(userID int64, p model.Provider) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s := u.getOrCreateLocked(userID)
	s.Provider = p
	// Specific-model choice does not carry over across providers.
	s.Model = u.ai.DefaultModelFor(p)
}

func (u *sessionUC) Model(userID int64) string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if s, ok := u.sessions[userID]; ok {
		return s.Model
	}
	return u.ai.DefaultModelFor(u.defaultProvider())
}

func (u *sessionUC) SetModel(userID int64, modelID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.getOrCreateLocked(userID).Model = modelID
}

func (u *sessionUC) ImageModel(userID int64) model.ImageModel {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if s, ok := u.sessions[userID]; ok {
		return s.ImageModel
	}
	return u.defaultImage
}

func (u *sessionUC) SetImageModel(userID int64, m model.ImageModel) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.getOrCreateLocked(userID).ImageModel = m
}

func (u *sessionUC) UIState(userID int64) model.UIState {
	u.mu.RLock()
	defer u.mu.RUnlock()
	// Unlike provider preferences, UI state does not survive expiry.
	if s, ok := u.live(userID); ok {
		return s.UIState
	}
	return model.UIStateIdle
}

func (u *sessionUC) SetUIState(userID int64, st model.UIState) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.getOrCreateLocked(userID).UIState = st
}

func (u *sessionUC) ClearUIState(userID int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if s, ok := u.sessions[userID]; ok {
		s.UIState = model.UIStateIdle
	}
}

func (u *sessionUC) AppendTurn(userID int64, role model.Role, content string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.getOrCreateLocked(userID).Append(role, content)
}

func (u *sessionUC) HistorySnapshot(userID int64) []model.Message {
	u.mu.RLock()
	defer u.mu.RUnlock()
	s, ok := u.live(userID)
	if !ok {
		return nil
	}
	out := make([]model.Message, len(s.History))
	copy(out, s.History)
	return out
}

func (u *sessionUC) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.sessions)
}
