package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"journey-quiz-service/internal/domain"
)

// GameRepository is the append-only store of completed games.
type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// Save inserts the game once; saving the same id again is a no-op.
func (r *GameRepository) Save(ctx context.Context, game domain.GameSession) (bool, error) {
	answers := game.Answers
	if answers == nil {
		answers = []domain.QuestionAnswer{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return false, fmt.Errorf("marshal answers: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO game_sessions (
			id, player_name, player_location, security_code, questions_answered,
			accuracy_score, time_bonus_score, final_score, completion_timestamp, total_time_seconds
		) VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		game.ID, game.PlayerName, game.PlayerLocation, game.SecurityCode, string(raw),
		game.AccuracyScore, game.TimeBonusScore, game.FinalScore, game.CompletedAt, game.TotalTimeSeconds,
	)
	if err != nil {
		return false, fmt.Errorf("insert game session: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List returns entries ordered by final score, earliest completion first on
// ties. A limit <= 0 lists every game.
func (r *GameRepository) List(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	query := `
		SELECT id, player_name, player_location, final_score::float8,
		       accuracy_score, time_bonus_score, completion_timestamp
		FROM game_sessions
		ORDER BY final_score DESC, completion_timestamp ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list game sessions: %w", err)
	}
	defer rows.Close()

	entries := []domain.LeaderboardEntry{}
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.SessionID, &e.PlayerName, &e.PlayerLocation, &e.FinalScore,
			&e.AccuracyScore, &e.TimeBonusScore, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan game session: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list game sessions: %w", err)
	}
	return entries, nil
}
