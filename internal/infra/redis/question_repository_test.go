package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"journey-quiz-service/internal/domain"
	"journey-quiz-service/internal/infra/memory"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{QuestionLoader: memory.NewStaticQuestionLoader(samplePool())}
	repo := NewQuestionRepository(client, loader, time.Minute)

	pool, err := repo.Questions(context.Background())
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists(questionsKey) {
		t.Fatalf("expected pool to be cached")
	}
	if ttl := mr.TTL(questionsKey); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with jitter, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, _ := repo.Questions(context.Background())
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached) != len(pool) || cached[1].Correct != "The world" || len(cached[0].Options) != 2 {
		t.Fatalf("cached pool lost data: %+v", cached)
	}

	mr.FastForward(2 * time.Minute)
	_, _ = repo.Questions(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}

	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.Questions(context.Background())
	if loader.calls != 3 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx)
}

func samplePool() []domain.Question {
	return []domain.Question{
		{ID: 1, Level: 1, Event: "Genealogy", Prompt: "Who is named as Joseph's father?", Options: []string{"Abraham", "Jacob"}, Correct: "Jacob", Reference: "Matthew 1:16"},
		{ID: 2, Level: 2, Event: "Parables", Prompt: "What does the field represent?", Options: []string{"The world", "The land"}, Correct: "The world", Reference: "Matthew 13:38"},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
