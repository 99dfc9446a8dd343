package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"journey-quiz-service/internal/domain"
	"journey-quiz-service/internal/scoring"
)

// QuestionRepository serves the static question pool (from cache/backing store).
type QuestionRepository interface {
	Questions(ctx context.Context) ([]domain.Question, error)
}

// SessionRepository stores in-progress sessions (in-memory, Redis, etc).
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// GameRepository is the append-only store of completed games. Save reports
// whether the game was newly stored; saving a known id is a no-op. List
// returns entries ordered by final score descending, then completion time
// ascending.
type GameRepository interface {
	Save(ctx context.Context, game domain.GameSession) (bool, error)
	List(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// EventPublisher announces completed games to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.GameCompletedEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.GameCompletedEvent) error { return nil }

// Settings are the game rules the service enforces.
type Settings struct {
	Rules            scoring.Rules
	VerifyAttempts   int
	PenanceCount     int
	Locations        []string
	LeaderboardLimit int
	MaxLeaderboard   int
}

func DefaultSettings() Settings {
	return Settings{
		Rules:            scoring.DefaultRules(),
		VerifyAttempts:   2,
		PenanceCount:     5,
		LeaderboardLimit: 50,
		MaxLeaderboard:   100,
	}
}

// Option customizes a GameService.
type Option func(*GameService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *GameService) { s.logger = logger }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *GameService) { s.events = p }
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *GameService) { s.now = now }
}

func WithSource(src scoring.Source) Option {
	return func(s *GameService) { s.src = src }
}

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *GameService) { s.newCode = gen }
}

// GameService contains the game use cases.
type GameService struct {
	questions QuestionRepository
	sessions  SessionRepository
	games     GameRepository
	events    EventPublisher
	settings  Settings
	locations map[string]struct{}

	src     scoring.Source
	now     func() time.Time
	newID   func() string
	newCode func() (string, error)
	logger  *slog.Logger

	locks *sessionLocks

	subMu       sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewGameService(questions QuestionRepository, sessions SessionRepository, games GameRepository, settings Settings, opts ...Option) *GameService {
	s := &GameService{
		questions:   questions,
		sessions:    sessions,
		games:       games,
		events:      NopPublisher{},
		settings:    settings,
		locations:   make(map[string]struct{}, len(settings.Locations)),
		src:         scoring.NewTimeSource(),
		now:         time.Now,
		newID:       uuid.NewString,
		newCode:     NewSecurityCode,
		logger:      slog.Default(),
		locks:       newSessionLocks(),
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
	for _, loc := range settings.Locations {
		s.locations[loc] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registration is returned to a newly started player.
type Registration struct {
	Session      SessionView `json:"session"`
	SecurityCode string      `json:"securityCode"`
}

// StartSession registers a player and draws their private question set.
func (s *GameService) StartSession(ctx context.Context, name, location string) (Registration, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Registration{}, err
	}
	if len(s.locations) > 0 {
		if _, ok := s.locations[location]; !ok {
			return Registration{}, fmt.Errorf("%w: %q", domain.ErrInvalidLocation, location)
		}
	}

	pool, err := s.questions.Questions(ctx)
	if err != nil {
		return Registration{}, fmt.Errorf("load questions: %w", err)
	}
	drawn, err := scoring.Select(s.src, pool, s.settings.Rules.QuizLength)
	if err != nil {
		return Registration{}, err
	}
	code, err := s.newCode()
	if err != nil {
		return Registration{}, err
	}

	session := &Session{
		ID:             s.newID(),
		PlayerName:     name,
		PlayerLocation: location,
		SecurityCode:   code,
		Questions:      drawn,
		Stage:          StagePlaying,
		StartedAt:      s.now(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return Registration{}, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("session started", "session_id", session.ID, "location", location, "questions", len(drawn))

	return Registration{Session: session.view(s.settings.VerifyAttempts), SecurityCode: code}, nil
}

// GetSession returns the player-facing state of a session.
func (s *GameService) GetSession(ctx context.Context, id string) (SessionView, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return session.view(s.settings.VerifyAttempts), nil
}

// AnswerOutcome is the feedback shown after each answer.
type AnswerOutcome struct {
	Answer        domain.QuestionAnswer `json:"answer"`
	CorrectAnswer string                `json:"correctAnswer"`
	Explanation   string                `json:"explanation"`
	Reference     string                `json:"reference"`
	Remaining     int                   `json:"remaining"`
	QuizFinished  bool                  `json:"quizFinished"`
}

// RecordAnswer stores the answer to the current question. An empty
// selection records a timeout.
func (s *GameService) RecordAnswer(ctx context.Context, id string, questionID int, selected string, elapsedSeconds int) (AnswerOutcome, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return AnswerOutcome{}, err
	}
	answer, question, err := session.recordAnswer(s.settings.Rules, questionID, selected, elapsedSeconds)
	if err != nil {
		return AnswerOutcome{}, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return AnswerOutcome{}, fmt.Errorf("save session: %w", err)
	}

	return AnswerOutcome{
		Answer:        answer,
		CorrectAnswer: question.Correct,
		Explanation:   question.Explanation,
		Reference:     question.Reference,
		Remaining:     len(session.Questions) - len(session.Answers),
		QuizFinished:  session.Stage != StagePlaying,
	}, nil
}

// FinishQuiz ends the quiz before every question is answered.
func (s *GameService) FinishQuiz(ctx context.Context, id string) (SessionView, error) {
	return s.mutate(ctx, id, func(session *Session) error {
		return session.finish()
	})
}

// VerifyCode checks the security code shown at registration.
func (s *GameService) VerifyCode(ctx context.Context, id, code string) (VerifyOutcome, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return VerifyOutcome{}, err
	}
	before := session.CodeAttempts
	stage := session.Stage
	outcome, err := session.verify(code, s.settings.VerifyAttempts)
	if err != nil {
		return outcome, err
	}
	if session.CodeAttempts != before || session.Stage != stage {
		if err := s.sessions.Save(ctx, session); err != nil {
			return VerifyOutcome{}, fmt.Errorf("save session: %w", err)
		}
	}
	if outcome.PenanceRequired {
		s.logger.Info("verification locked", "session_id", id)
	}
	return outcome, nil
}

// CompletePenance unlocks results for a player who lost their code.
func (s *GameService) CompletePenance(ctx context.Context, id string, confirmations int) (SessionView, error) {
	return s.mutate(ctx, id, func(session *Session) error {
		return session.completePenance(confirmations, s.settings.PenanceCount)
	})
}

// Completion is the outcome of CompleteSession.
type Completion struct {
	Score     domain.ScoreResult    `json:"score"`
	Breakdown domain.ScoreBreakdown `json:"breakdown"`
	Game      domain.GameSession    `json:"game"`
	Save      domain.SaveResult     `json:"save"`
}

// CompleteSession scores the session and persists its GameSession. The record
// is built once; a failed save is reported in Completion.Save and calling
// again retries the same record.
func (s *GameService) CompleteSession(ctx context.Context, id string) (Completion, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return Completion{}, err
	}
	switch session.Stage {
	case StagePlaying:
		return Completion{}, domain.ErrQuizInProgress
	case StageVerifying, StagePenance:
		return Completion{}, domain.ErrResultsLocked
	case StageCompleted:
		return s.completionFor(*session.Record, domain.SaveResult{Success: true}), nil
	}

	if session.Record == nil {
		completedAt := s.now()
		result := s.settings.Rules.CalculateAnswers(session.Answers)
		session.Record = &domain.GameSession{
			ID:               session.ID,
			PlayerName:       session.PlayerName,
			PlayerLocation:   session.PlayerLocation,
			SecurityCode:     session.SecurityCode,
			Answers:          append([]domain.QuestionAnswer(nil), session.Answers...),
			AccuracyScore:    result.AccuracyScore,
			TimeBonusScore:   result.TimeBonusScore,
			FinalScore:       result.FinalScore,
			CompletedAt:      completedAt,
			TotalTimeSeconds: session.totalTimeSeconds(),
		}
	}
	game := *session.Record

	save := domain.SaveResult{Success: true}
	inserted, err := s.games.Save(ctx, game)
	if err != nil {
		s.logger.Error("failed to save game session", "session_id", id, "error", err)
		save = domain.SaveResult{Success: false, Error: err.Error()}
	} else {
		session.Stage = StageCompleted
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Warn("failed to update session after completion", "session_id", id, "error", err)
	}

	// only the first insert announces the game
	if inserted {
		s.logger.Info("game completed", "session_id", id, "final_score", game.FinalScore)
		s.afterSave(ctx, game)
	}
	return s.completionFor(game, save), nil
}

func (s *GameService) afterSave(ctx context.Context, game domain.GameSession) {
	event := domain.GameCompletedEvent{
		SessionID:      game.ID,
		PlayerName:     game.PlayerName,
		PlayerLocation: game.PlayerLocation,
		FinalScore:     game.FinalScore,
		AccuracyScore:  game.AccuracyScore,
		TimeBonusScore: game.TimeBonusScore,
		CompletedAt:    game.CompletedAt,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish game completed event", "session_id", game.ID, "error", err)
	}
	if lb, err := s.Leaderboard(ctx, 0); err == nil {
		s.broadcast(lb)
	} else {
		s.logger.Warn("failed to refresh leaderboard", "error", err)
	}
}

func (s *GameService) completionFor(game domain.GameSession, save domain.SaveResult) Completion {
	score := domain.ScoreResult{
		AccuracyScore:      game.AccuracyScore,
		TimeBonusScore:     game.TimeBonusScore,
		FinalScore:         game.FinalScore,
		AccuracyPercentage: s.settings.Rules.CalculateAnswers(game.Answers).AccuracyPercentage,
		CompletedAt:        game.CompletedAt,
	}
	return Completion{Score: score, Breakdown: score.Breakdown(), Game: game, Save: save}
}

// ResetSession discards a session.
func (s *GameService) ResetSession(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()
	return s.sessions.Delete(ctx, id)
}

func (s *GameService) mutate(ctx context.Context, id string, fn func(*Session) error) (SessionView, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	if err := fn(session); err != nil {
		return SessionView{}, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return SessionView{}, fmt.Errorf("save session: %w", err)
	}
	return session.view(s.settings.VerifyAttempts), nil
}

// sessionLocks serializes transitions on the same session id.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*lockEntry)}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &lockEntry{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
