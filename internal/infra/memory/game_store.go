package memory

import (
	"context"
	"fmt"
	"sync"

	"journey-quiz-service/internal/domain"
	"journey-quiz-service/internal/scoring"
)

// GameStore is an append-only in-memory store of completed games.
type GameStore struct {
	mu    sync.RWMutex
	games []domain.GameSession
	ids   map[string]struct{}
}

func NewGameStore() *GameStore {
	return &GameStore{ids: make(map[string]struct{})}
}

// Save appends a game. Saving the same id twice is a no-op so a retried
// save never duplicates a leaderboard row.
func (s *GameStore) Save(_ context.Context, game domain.GameSession) (bool, error) {
	if game.ID == "" {
		return false, fmt.Errorf("save game: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[game.ID]; ok {
		return false, nil
	}
	game.Answers = append([]domain.QuestionAnswer(nil), game.Answers...)
	s.games = append(s.games, game)
	s.ids[game.ID] = struct{}{}
	return true, nil
}

func (s *GameStore) List(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := make([]domain.LeaderboardEntry, len(s.games))
	for i, g := range s.games {
		entries[i] = g.Entry()
	}
	s.mu.RUnlock()

	ranked := scoring.Rank(entries)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Get returns a stored game by id.
func (s *GameStore) Get(_ context.Context, id string) (domain.GameSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.games {
		if g.ID == id {
			return g, true
		}
	}
	return domain.GameSession{}, false
}
