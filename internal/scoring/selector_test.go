package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journey-quiz-service/internal/domain"
)

func testPool(n int) []domain.Question {
	pool := make([]domain.Question, n)
	for i := range pool {
		pool[i] = domain.Question{
			ID:      i + 1,
			Level:   i + 1,
			Event:   "Event",
			Prompt:  fmt.Sprintf("Question %d?", i+1),
			Options: []string{"A", "B", "C", "D"},
			Correct: "D",
		}
	}
	return pool
}

func TestSelectReturnsDistinctQuestions(t *testing.T) {
	src := NewSource(3)
	for n := 1; n <= 20; n++ {
		pool := testPool(n)
		for k := 1; k <= n; k++ {
			got, err := Select(src, pool, k)
			require.NoError(t, err)
			require.Len(t, got, k)

			seen := map[int]bool{}
			for _, q := range got {
				assert.False(t, seen[q.ID], "duplicate id %d (n=%d k=%d)", q.ID, n, k)
				seen[q.ID] = true
			}
		}
	}
}

func TestSelectKeepsCorrectAnswerAmongOptions(t *testing.T) {
	src := NewSource(11)
	pool := testPool(30)

	got, err := Select(src, pool, 15)
	require.NoError(t, err)
	for _, q := range got {
		assert.Contains(t, q.Options, q.Correct)
		assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, q.Options)
		assert.True(t, q.IsCorrect("D"))
	}
}

func TestSelectDoesNotMutatePool(t *testing.T) {
	src := NewSource(5)
	pool := testPool(10)

	_, err := Select(src, pool, 10)
	require.NoError(t, err)

	for i, q := range pool {
		assert.Equal(t, i+1, q.ID)
		assert.Equal(t, []string{"A", "B", "C", "D"}, q.Options)
	}
}

func TestCorrectAnswerPositionIsUniform(t *testing.T) {
	src := NewSource(2024)
	pool := testPool(16)
	positions := make([]int, 4)

	total := 0
	for run := 0; run < 1000; run++ {
		got, err := Select(src, pool, 15)
		require.NoError(t, err)
		for _, q := range got {
			for i, opt := range q.Options {
				if opt == q.Correct {
					positions[i]++
				}
			}
			total++
		}
	}

	for i, n := range positions {
		share := float64(n) / float64(total)
		assert.Greater(t, share, 0.20, "position %d", i)
		assert.Less(t, share, 0.30, "position %d", i)
	}
}

func TestSelectErrors(t *testing.T) {
	src := NewSource(1)

	_, err := Select(src, testPool(5), 6)
	assert.ErrorIs(t, err, domain.ErrInsufficientPool)

	_, err = Select(src, nil, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientPool)

	_, err = Select(src, testPool(5), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidSelectionSize)

	bad := testPool(3)
	bad[1].Correct = "E"
	_, err = Select(src, bad, 2)
	assert.ErrorIs(t, err, domain.ErrMalformedQuestion)

	dup := testPool(3)
	dup[2].ID = dup[0].ID
	_, err = Select(src, dup, 2)
	assert.ErrorIs(t, err, domain.ErrMalformedQuestion)
}
