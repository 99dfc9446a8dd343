package app

import (
	"fmt"
	"time"

	"journey-quiz-service/internal/domain"
	"journey-quiz-service/internal/scoring"
)

// Stage is where a session sits in the game flow.
type Stage string

const (
	StagePlaying   Stage = "playing"
	StageVerifying Stage = "verifying"
	StagePenance   Stage = "penance"
	StageUnlocked  Stage = "unlocked"
	StageCompleted Stage = "completed"
)

// Session is the single-owner context of one player's game. It holds a
// private copy of the drawn questions and is discarded after reset.
type Session struct {
	ID             string                  `json:"id"`
	PlayerName     string                  `json:"playerName"`
	PlayerLocation string                  `json:"playerLocation"`
	SecurityCode   string                  `json:"securityCode"`
	Questions      []domain.Question       `json:"questions"`
	Answers        []domain.QuestionAnswer `json:"answers"`
	Stage          Stage                   `json:"stage"`
	CodeAttempts   int                     `json:"codeAttempts"`
	CodeVerified   bool                    `json:"codeVerified"`
	PenanceDone    bool                    `json:"penanceDone"`
	StartedAt      time.Time               `json:"startedAt"`
	Record         *domain.GameSession     `json:"record,omitempty"`
}

// Clone deep-copies the session so stores never share state with callers.
func (s *Session) Clone() *Session {
	c := *s
	c.Questions = make([]domain.Question, len(s.Questions))
	for i, q := range s.Questions {
		q.Options = append([]string(nil), q.Options...)
		c.Questions[i] = q
	}
	c.Answers = append([]domain.QuestionAnswer(nil), s.Answers...)
	if s.Record != nil {
		rec := *s.Record
		rec.Answers = append([]domain.QuestionAnswer(nil), s.Record.Answers...)
		c.Record = &rec
	}
	return &c
}

// CurrentQuestion returns the next unanswered question.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	if s.Stage != StagePlaying || len(s.Answers) >= len(s.Questions) {
		return domain.Question{}, false
	}
	return s.Questions[len(s.Answers)], true
}

func (s *Session) recordAnswer(rules scoring.Rules, questionID int, selected string, elapsed int) (domain.QuestionAnswer, domain.Question, error) {
	if s.Stage != StagePlaying {
		if s.Stage == StageCompleted {
			return domain.QuestionAnswer{}, domain.Question{}, domain.ErrSessionCompleted
		}
		return domain.QuestionAnswer{}, domain.Question{}, domain.ErrQuizFinished
	}
	current, ok := s.CurrentQuestion()
	if !ok {
		return domain.QuestionAnswer{}, domain.Question{}, domain.ErrQuizFinished
	}
	if current.ID != questionID {
		if !s.hasQuestion(questionID) {
			return domain.QuestionAnswer{}, domain.Question{}, domain.ErrQuestionNotFound
		}
		return domain.QuestionAnswer{}, domain.Question{}, fmt.Errorf("%w: expected %d, got %d", domain.ErrQuestionOutOfOrder, current.ID, questionID)
	}
	if selected != domain.NoAnswer && !current.HasOption(selected) {
		return domain.QuestionAnswer{}, domain.Question{}, fmt.Errorf("%w: %q", domain.ErrOptionNotFound, selected)
	}

	answer := domain.QuestionAnswer{
		QuestionID: questionID,
		Selected:   selected,
		TimedOut:   selected == domain.NoAnswer,
		IsCorrect:  current.IsCorrect(selected),
		TimeSpent:  rules.ClampElapsed(elapsed),
	}
	if answer.TimedOut {
		answer.TimeSpent = rules.TimeLimitSeconds
	}
	s.Answers = append(s.Answers, answer)
	if len(s.Answers) == len(s.Questions) {
		s.Stage = StageVerifying
	}
	return answer, current, nil
}

func (s *Session) hasQuestion(id int) bool {
	for _, q := range s.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) finish() error {
	switch s.Stage {
	case StagePlaying:
		s.Stage = StageVerifying
		return nil
	case StageCompleted:
		return domain.ErrSessionCompleted
	}
	return nil
}

// VerifyOutcome reports the result of one code attempt.
type VerifyOutcome struct {
	Verified          bool `json:"verified"`
	AttemptsRemaining int  `json:"attemptsRemaining"`
	PenanceRequired   bool `json:"penanceRequired"`
}

func (s *Session) verify(code string, maxAttempts int) (VerifyOutcome, error) {
	switch s.Stage {
	case StagePlaying:
		return VerifyOutcome{}, domain.ErrQuizInProgress
	case StagePenance:
		return VerifyOutcome{PenanceRequired: true}, domain.ErrVerificationLocked
	case StageUnlocked, StageCompleted:
		return VerifyOutcome{Verified: s.CodeVerified, AttemptsRemaining: s.attemptsRemaining(maxAttempts)}, nil
	}
	if !validCode(code) {
		return VerifyOutcome{AttemptsRemaining: s.attemptsRemaining(maxAttempts)}, domain.ErrInvalidCodeFormat
	}

	if code == s.SecurityCode {
		s.CodeVerified = true
		s.Stage = StageUnlocked
		return VerifyOutcome{Verified: true, AttemptsRemaining: s.attemptsRemaining(maxAttempts)}, nil
	}

	s.CodeAttempts++
	remaining := s.attemptsRemaining(maxAttempts)
	if remaining == 0 {
		s.Stage = StagePenance
	}
	return VerifyOutcome{AttemptsRemaining: remaining, PenanceRequired: remaining == 0}, nil
}

func (s *Session) attemptsRemaining(maxAttempts int) int {
	if left := maxAttempts - s.CodeAttempts; left > 0 {
		return left
	}
	return 0
}

func (s *Session) completePenance(confirmations, required int) error {
	switch s.Stage {
	case StagePlaying:
		return domain.ErrQuizInProgress
	case StageUnlocked, StageCompleted:
		return nil
	}
	if confirmations < required {
		return fmt.Errorf("%w: %d of %d", domain.ErrPenanceIncomplete, confirmations, required)
	}
	s.PenanceDone = true
	s.Stage = StageUnlocked
	return nil
}

func (s *Session) totalTimeSeconds() int {
	total := 0
	for _, a := range s.Answers {
		total += a.TimeSpent
	}
	return total
}

// SessionView is the player-facing state of a session.
type SessionView struct {
	ID                string               `json:"id"`
	PlayerName        string               `json:"playerName"`
	PlayerLocation    string               `json:"playerLocation"`
	Stage             Stage                `json:"stage"`
	QuestionNumber    int                  `json:"questionNumber"`
	TotalQuestions    int                  `json:"totalQuestions"`
	CurrentQuestion   *domain.QuestionView `json:"currentQuestion,omitempty"`
	AttemptsRemaining int                  `json:"attemptsRemaining"`
	Score             *domain.ScoreResult  `json:"score,omitempty"`
}

func (s *Session) view(maxAttempts int) SessionView {
	v := SessionView{
		ID:                s.ID,
		PlayerName:        s.PlayerName,
		PlayerLocation:    s.PlayerLocation,
		Stage:             s.Stage,
		QuestionNumber:    len(s.Answers),
		TotalQuestions:    len(s.Questions),
		AttemptsRemaining: s.attemptsRemaining(maxAttempts),
	}
	if q, ok := s.CurrentQuestion(); ok {
		qv := q.View()
		v.CurrentQuestion = &qv
		v.QuestionNumber = len(s.Answers) + 1
	}
	if s.Stage == StageCompleted && s.Record != nil {
		v.Score = &domain.ScoreResult{
			AccuracyScore:  s.Record.AccuracyScore,
			TimeBonusScore: s.Record.TimeBonusScore,
			FinalScore:     s.Record.FinalScore,
			CompletedAt:    s.Record.CompletedAt,
		}
	}
	return v
}
