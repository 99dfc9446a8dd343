package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journey-quiz-service/internal/domain"
)

func TestRankTieBreaksOnEarlierCompletion(t *testing.T) {
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	entries := []domain.LeaderboardEntry{
		{SessionID: "late", FinalScore: 4200.5, CompletedAt: base.Add(time.Minute)},
		{SessionID: "early", FinalScore: 4200.5, CompletedAt: base},
	}

	ranked := Rank(entries)

	require.Len(t, ranked, 2)
	assert.Equal(t, "early", ranked[0].SessionID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "late", ranked[1].SessionID)
	assert.Equal(t, 2, ranked[1].Rank)

	// input untouched
	assert.Equal(t, "late", entries[0].SessionID)
	assert.Zero(t, entries[0].Rank)
}

func TestRankOrdersByScoreFirst(t *testing.T) {
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	ranked := Rank([]domain.LeaderboardEntry{
		{SessionID: "b", FinalScore: 100, CompletedAt: base},
		{SessionID: "a", FinalScore: 900.25, CompletedAt: base.Add(time.Hour)},
		{SessionID: "c", FinalScore: 900.24, CompletedAt: base.Add(-time.Hour)},
	})

	ids := []string{ranked[0].SessionID, ranked[1].SessionID, ranked[2].SessionID}
	assert.Equal(t, []string{"a", "c", "b"}, ids)
	assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
}

func TestRankFullTieIsStable(t *testing.T) {
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	ranked := Rank([]domain.LeaderboardEntry{
		{SessionID: "first", FinalScore: 10, CompletedAt: at},
		{SessionID: "second", FinalScore: 10, CompletedAt: at},
	})

	assert.Equal(t, "first", ranked[0].SessionID)
	assert.Equal(t, "second", ranked[1].SessionID)
}

func TestAssignRanks(t *testing.T) {
	got := AssignRanks([]domain.LeaderboardEntry{{SessionID: "x"}, {SessionID: "y"}})
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
	assert.Empty(t, AssignRanks(nil))
}
