package questionbank

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"journey-quiz-service/internal/domain"
)

func TestDefaultPoolIsValid(t *testing.T) {
	pool, err := Default()
	if err != nil {
		t.Fatalf("default pool: %v", err)
	}
	if len(pool) < 15 {
		t.Fatalf("expected at least 15 questions, got %d", len(pool))
	}
	for _, q := range pool {
		if !q.HasOption(q.Correct) {
			t.Fatalf("question %d: correct answer %q missing", q.ID, q.Correct)
		}
		if q.Reference == "" || q.Explanation == "" {
			t.Fatalf("question %d missing reference or explanation", q.ID)
		}
	}
}

func TestParseRejectsMissingCorrectAnswer(t *testing.T) {
	data := []byte(`
- id: 1
  question: "Pick one"
  options: ["a", "b"]
  correct: "c"
`)
	_, err := Parse(data)
	if !errors.Is(err, domain.ErrMalformedQuestion) {
		t.Fatalf("expected malformed question, got %v", err)
	}
}

func TestLoaderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	data := []byte(`
- id: 7
  event: "Test"
  question: "Pick b"
  options: ["a", "b"]
  correct: "b"
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write pool: %v", err)
	}

	pool, err := NewLoader(path).LoadQuestions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(pool) != 1 || pool[0].ID != 7 || pool[0].Correct != "b" {
		t.Fatalf("unexpected pool %+v", pool)
	}

	if _, err := NewLoader("").LoadQuestions(context.Background()); err != nil {
		t.Fatalf("embedded pool: %v", err)
	}
}
