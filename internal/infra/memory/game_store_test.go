package memory

import (
	"context"
	"testing"
	"time"

	"journey-quiz-service/internal/domain"
)

func TestGameStoreListsRankedEntries(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	games := []domain.GameSession{
		{ID: "late", PlayerName: "Late", FinalScore: 5000, CompletedAt: base.Add(time.Minute)},
		{ID: "low", PlayerName: "Low", FinalScore: 100, CompletedAt: base},
		{ID: "early", PlayerName: "Early", FinalScore: 5000, CompletedAt: base},
	}
	for _, g := range games {
		if inserted, err := store.Save(ctx, g); err != nil || !inserted {
			t.Fatalf("save %s: %v inserted=%v", g.ID, err, inserted)
		}
	}
	// retried save must not duplicate
	if inserted, err := store.Save(ctx, games[0]); err != nil || inserted {
		t.Fatalf("expected duplicate save to be a no-op, got inserted=%v err=%v", inserted, err)
	}

	entries, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"early", "late", "low"}
	for i, id := range want {
		if entries[i].SessionID != id || entries[i].Rank != i+1 {
			t.Fatalf("position %d: want %s rank %d, got %+v", i, id, i+1, entries[i])
		}
	}

	top, _ := store.List(ctx, 1)
	if len(top) != 1 || top[0].SessionID != "early" {
		t.Fatalf("expected limit to apply, got %+v", top)
	}

	if _, ok := store.Get(ctx, "low"); !ok {
		t.Fatalf("expected stored game")
	}
}

func TestGameStoreRejectsMissingID(t *testing.T) {
	if _, err := NewGameStore().Save(context.Background(), domain.GameSession{}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}
