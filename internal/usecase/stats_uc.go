package usecase

import (
	"sync"

	"telegram-polyai-bot/internal/domain/model"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// Stats is the snapshot served by the admin stats endpoint.
type Stats struct {
	ActiveSessions    int               `json:"active_sessions"`
	MessagesProcessed uint64            `json:"messages_processed"`
	DispatchByBackend map[string]uint64 `json:"dispatch_by_backend"`
}

type StatsUseCase interface {
	RecordDispatch(p model.Provider)
	Snapshot() Stats
}

type statsUC struct {
	sessions SessionUseCase

	mu         sync.Mutex
	messages   uint64
	byProvider map[model.Provider]uint64
}

func NewStatsUseCase(sessions SessionUseCase) *statsUC {
	return &statsUC{sessions: sessions, byProvider: make(map[model.Provider]uint64)}
}

func (s *statsUC) RecordDispatch(p model.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages++
	s.byProvider[p]++
}

func (s *statsUC) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	by := make(map[string]uint64, len(s.byProvider))
	for p, n := range s.byProvider {
		by[string(p)] = n
	}
	return Stats{
		ActiveSessions:    s.sessions.Len(),
		MessagesProcessed: s.messages,
		DispatchByBackend: by,
	}
}
