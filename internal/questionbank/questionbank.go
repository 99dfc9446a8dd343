// Package questionbank ships the default question pool and parses pools
// stored as YAML.
package questionbank

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"journey-quiz-service/internal/domain"
	"journey-quiz-service/internal/scoring"
)

//go:embed matthew.yaml
var matthewYAML []byte

// Parse decodes and validates a YAML question list.
func Parse(data []byte) ([]domain.Question, error) {
	var questions []domain.Question
	if err := yaml.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if err := scoring.ValidatePool(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// Default returns the embedded pool.
func Default() ([]domain.Question, error) {
	return Parse(matthewYAML)
}

// Loader serves a pool from a YAML file, or the embedded pool when Path is empty.
type Loader struct {
	Path string
}

func NewLoader(path string) *Loader {
	return &Loader{Path: path}
}

func (l *Loader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	if l.Path == "" {
		return Default()
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(data)
}
