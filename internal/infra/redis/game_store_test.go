package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"journey-quiz-service/internal/domain"
)

func TestGameStoreRanksByScoreThenTime(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewGameStore(newClient(mr))
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	games := []domain.GameSession{
		{ID: "a", PlayerName: "Anna", FinalScore: 1016.67, CompletedAt: base.Add(3 * time.Minute)},
		{ID: "z", PlayerName: "Zeb", FinalScore: 900, CompletedAt: base.Add(2 * time.Minute)},
		{ID: "b", PlayerName: "Bart", FinalScore: 900, CompletedAt: base},
		{ID: "c", PlayerName: "Cleo", FinalScore: 10, CompletedAt: base},
	}
	for _, g := range games {
		if inserted, err := store.Save(ctx, g); err != nil || !inserted {
			t.Fatalf("save %s: %v inserted=%v", g.ID, err, inserted)
		}
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"a", "b", "z", "c"}
	if len(all) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].SessionID != id || all[i].Rank != i+1 {
			t.Fatalf("position %d: want %s, got %+v", i, id, all[i])
		}
	}
	if all[0].FinalScore != 1016.67 || !all[0].CompletedAt.Equal(games[0].CompletedAt) {
		t.Fatalf("entry lost data: %+v", all[0])
	}

	// "z" sorts before "b" in the sorted set; the earlier completion still wins the cut.
	top, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list top: %v", err)
	}
	if len(top) != 2 || top[1].SessionID != "b" {
		t.Fatalf("expected tie broken by completion time, got %+v", top)
	}
}

func TestGameStoreSaveIsIdempotent(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewGameStore(newClient(mr))
	game := domain.GameSession{ID: "g1", PlayerName: "Mary", FinalScore: 500, CompletedAt: time.Now().UTC()}

	if inserted, err := store.Save(ctx, game); err != nil || !inserted {
		t.Fatalf("first save: inserted=%v err=%v", inserted, err)
	}
	changed := game
	changed.FinalScore = 9000
	inserted, err := store.Save(ctx, changed)
	if err != nil {
		t.Fatalf("retry save: %v", err)
	}
	if inserted {
		t.Fatalf("expected retry to report an existing game")
	}

	entries, _ := store.List(ctx, 10)
	if len(entries) != 1 || entries[0].FinalScore != 500 {
		t.Fatalf("expected first record to stick, got %+v", entries)
	}
	got, ok, err := store.Get(ctx, "g1")
	if err != nil || !ok || got.PlayerName != "Mary" {
		t.Fatalf("get: %+v %v %v", got, ok, err)
	}
	if _, ok, _ := store.Get(ctx, "missing"); ok {
		t.Fatalf("expected missing game")
	}
}

func TestGameStoreEmpty(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	entries, err := NewGameStore(newClient(mr)).List(context.Background(), 5)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v %v", entries, err)
	}
}
