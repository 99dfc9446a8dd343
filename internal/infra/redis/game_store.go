package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"journey-quiz-service/internal/domain"
	"journey-quiz-service/internal/scoring"
)

const leaderboardKey = "trivia:leaderboard"

// GameStore keeps completed games as JSON documents and indexes them in a
// sorted set by final score. Ties on score are broken by completion time
// after the records are read back.
type GameStore struct {
	client *redis.Client
}

func NewGameStore(client *redis.Client) *GameStore {
	return &GameStore{client: client}
}

// Save is idempotent per game id; a retried save never moves an entry.
func (s *GameStore) Save(ctx context.Context, game domain.GameSession) (bool, error) {
	if game.ID == "" {
		return false, fmt.Errorf("save game: missing id")
	}
	raw, err := json.Marshal(game)
	if err != nil {
		return false, fmt.Errorf("marshal game: %w", err)
	}

	pipe := s.client.TxPipeline()
	created := pipe.SetNX(ctx, gameKey(game.ID), raw, 0)
	pipe.ZAddNX(ctx, leaderboardKey, redis.Z{Score: game.FinalScore, Member: game.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("save game: %w", err)
	}
	return created.Val(), nil
}

// List returns up to limit entries in leaderboard order. A limit <= 0 lists
// every game.
func (s *GameStore) List(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	top, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	if len(top) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	ids := make([]string, 0, len(top))
	seen := make(map[string]struct{}, len(top))
	for _, z := range top {
		id := z.Member.(string)
		ids = append(ids, id)
		seen[id] = struct{}{}
	}

	// Members tied with the last score may sort ahead of it by completion
	// time, so pull the whole tie group before cutting.
	if limit > 0 && len(top) == limit {
		boundary := strconv.FormatFloat(top[len(top)-1].Score, 'f', -1, 64)
		tied, err := s.client.ZRangeByScore(ctx, leaderboardKey, &redis.ZRangeBy{Min: boundary, Max: boundary}).Result()
		if err != nil {
			return nil, fmt.Errorf("read leaderboard ties: %w", err)
		}
		for _, id := range tied {
			if _, ok := seen[id]; !ok {
				ids = append(ids, id)
				seen[id] = struct{}{}
			}
		}
	}

	games, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(games))
	for _, g := range games {
		entries = append(entries, g.Entry())
	}
	ranked := scoring.Rank(entries)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Get returns a stored game by id.
func (s *GameStore) Get(ctx context.Context, id string) (domain.GameSession, bool, error) {
	games, err := s.load(ctx, []string{id})
	if err != nil || len(games) == 0 {
		return domain.GameSession{}, false, err
	}
	return games[0], true, nil
}

func (s *GameStore) load(ctx context.Context, ids []string) ([]domain.GameSession, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	games := make([]domain.GameSession, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a document; skip it
			continue
		}
		var g domain.GameSession
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			return nil, fmt.Errorf("unmarshal game %s: %w", ids[i], err)
		}
		games = append(games, g)
	}
	return games, nil
}

func gameKey(id string) string {
	return "trivia:game:" + id
}
