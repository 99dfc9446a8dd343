// Package scoring holds the pure game logic: shuffling, question selection,
// score calculation and leaderboard ranking.
package scoring

import (
	"math/rand"
	"sync"
	"time"
)

// Source supplies uniformly distributed integers in [0, n).
type Source interface {
	Intn(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSource returns a Source safe for concurrent use.
func NewSource(seed int64) Source {
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

// NewTimeSource seeds a Source from the wall clock.
func NewTimeSource() Source {
	return NewSource(time.Now().UnixNano())
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

// ShuffleInPlace permutes items with Fisher-Yates.
func ShuffleInPlace[T any](src Source, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffle returns a permuted copy of items; the input is left untouched.
func Shuffle[T any](src Source, items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	ShuffleInPlace(src, shuffled)
	return shuffled
}
