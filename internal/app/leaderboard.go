package app

import (
	"context"
	"fmt"

	"journey-quiz-service/internal/domain"
	"journey-quiz-service/internal/scoring"
)

// Leaderboard returns the top entries with ranks assigned. A limit <= 0
// means the configured default; larger limits are capped.
func (s *GameService) Leaderboard(ctx context.Context, limit int) (domain.Leaderboard, error) {
	limit = s.clampLimit(limit)
	entries, err := s.games.List(ctx, limit)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("list leaderboard: %w", err)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return domain.Leaderboard{
		Entries:   scoring.AssignRanks(entries),
		UpdatedAt: s.now(),
	}, nil
}

func (s *GameService) clampLimit(limit int) int {
	if limit <= 0 {
		limit = s.settings.LeaderboardLimit
	}
	if s.settings.MaxLeaderboard > 0 && limit > s.settings.MaxLeaderboard {
		limit = s.settings.MaxLeaderboard
	}
	if limit <= 0 {
		limit = 1
	}
	return limit
}

// SubscribeLeaderboard returns a channel that receives a snapshot now and
// after every stored game. The caller must invoke the returned cancel
// function to avoid leaks.
func (s *GameService) SubscribeLeaderboard(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Leaderboard(ctx, 0)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel, nil
}

func (s *GameService) broadcast(lb domain.Leaderboard) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// drop the oldest snapshot so a slow reader never blocks the writer
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
