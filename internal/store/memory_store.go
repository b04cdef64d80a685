package store

import (
	"context"
	"sync"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
)

type matchRecord struct {
	flags    match.Flags
	score    match.Score
	hasScore bool
}

// MemoryStore keeps match state in a mutex-guarded map. State is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]*matchRecord
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches: make(map[string]*matchRecord),
	}
}

var _ MatchStateStore = (*MemoryStore)(nil)

func (s *MemoryStore) LoadFlags(ctx context.Context, matchID string) (match.Flags, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.matches[matchID]; ok {
		return rec.flags, nil
	}
	return match.Flags{}, nil
}

func (s *MemoryStore) MarkPhase(ctx context.Context, matchID string, phase match.Phase) (bool, error) {
	_ = ctx
	if !validPhase(phase) {
		return false, ErrUnknownPhase
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.recordLocked(matchID)
	if rec.flags.Has(phase) {
		return false, nil
	}
	rec.flags = rec.flags.Set(phase)
	return true, nil
}

func (s *MemoryStore) LoadScore(ctx context.Context, matchID string) (match.Score, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.matches[matchID]
	if !ok || !rec.hasScore {
		return match.Score{}, false, nil
	}
	return rec.score, true, nil
}

func (s *MemoryStore) CompareAndSwapScore(ctx context.Context, matchID string, prev *match.Score, next match.Score) (bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.recordLocked(matchID)
	switch {
	case prev == nil && rec.hasScore:
		return false, nil
	case prev != nil && (!rec.hasScore || rec.score != *prev):
		return false, nil
	}
	rec.score = next
	rec.hasScore = true
	return true, nil
}

// Len returns how many matches have state recorded.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

func (s *MemoryStore) recordLocked(matchID string) *matchRecord {
	rec, ok := s.matches[matchID]
	if !ok {
		rec = &matchRecord{}
		s.matches[matchID] = rec
	}
	return rec
}
