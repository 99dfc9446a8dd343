package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"journey-quiz-service/internal/domain"
	"journey-quiz-service/internal/scoring"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID          int      `bun:"id,pk"`
	Level       int      `bun:"level"`
	Event       string   `bun:"event"`
	Prompt      string   `bun:"prompt"`
	Options     []string `bun:"options,type:jsonb"`
	Correct     string   `bun:"correct_answer"`
	Reference   string   `bun:"reference"`
	Explanation string   `bun:"explanation"`
}

// SeedQuestions upserts the pool into the questions table.
func SeedQuestions(ctx context.Context, db *bun.DB, pool []domain.Question) (int, error) {
	if err := scoring.ValidatePool(pool); err != nil {
		return 0, err
	}
	if len(pool) == 0 {
		return 0, nil
	}
	rows := make([]questionRow, len(pool))
	for i, q := range pool {
		rows[i] = questionRow{
			ID:          q.ID,
			Level:       q.Level,
			Event:       q.Event,
			Prompt:      q.Prompt,
			Options:     q.Options,
			Correct:     q.Correct,
			Reference:   q.Reference,
			Explanation: q.Explanation,
		}
	}

	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("level = EXCLUDED.level").
		Set("event = EXCLUDED.event").
		Set("prompt = EXCLUDED.prompt").
		Set("options = EXCLUDED.options").
		Set("correct_answer = EXCLUDED.correct_answer").
		Set("reference = EXCLUDED.reference").
		Set("explanation = EXCLUDED.explanation").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed questions: %w", err)
	}
	return len(rows), nil
}
