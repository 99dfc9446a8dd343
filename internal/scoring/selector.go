package scoring

import (
	"fmt"

	"journey-quiz-service/internal/domain"
)

// Select draws k distinct questions from pool and shuffles each one's options.
// The correct answer is carried by value, so it survives the option shuffle.
func Select(src Source, pool []domain.Question, k int) ([]domain.Question, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: requested %d questions", domain.ErrInvalidSelectionSize, k)
	}
	if len(pool) == 0 || k > len(pool) {
		return nil, fmt.Errorf("%w: requested %d, pool has %d", domain.ErrInsufficientPool, k, len(pool))
	}
	if err := ValidatePool(pool); err != nil {
		return nil, err
	}

	selected := Shuffle(src, pool)[:k]
	out := make([]domain.Question, k)
	for i, q := range selected {
		out[i] = ShuffleOptions(src, q)
	}
	return out, nil
}

// ShuffleOptions returns a copy of q with its options permuted.
func ShuffleOptions(src Source, q domain.Question) domain.Question {
	q.Options = Shuffle(src, q.Options)
	return q
}

// ValidatePool checks every question and rejects duplicate IDs.
func ValidatePool(pool []domain.Question) error {
	ids := make(map[int]struct{}, len(pool))
	for _, q := range pool {
		if err := q.Validate(); err != nil {
			return err
		}
		if _, dup := ids[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %d", domain.ErrMalformedQuestion, q.ID)
		}
		ids[q.ID] = struct{}{}
	}
	return nil
}
