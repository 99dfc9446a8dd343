package scoring

import (
	"sort"

	"journey-quiz-service/internal/domain"
)

// Compare orders entries by final score descending, then by earliest
// completion. It returns a negative value when a ranks above b.
func Compare(a, b domain.LeaderboardEntry) int {
	switch {
	case a.FinalScore > b.FinalScore:
		return -1
	case a.FinalScore < b.FinalScore:
		return 1
	case a.CompletedAt.Before(b.CompletedAt):
		return -1
	case a.CompletedAt.After(b.CompletedAt):
		return 1
	}
	return 0
}

// Rank returns a sorted copy of entries with 1-based ranks.
// Entries that compare equal keep their input order.
func Rank(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	ranked := make([]domain.LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Compare(ranked[i], ranked[j]) < 0
	})
	return AssignRanks(ranked)
}

// AssignRanks sets Rank = index+1 on entries already in leaderboard order.
func AssignRanks(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
