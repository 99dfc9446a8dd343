package domain

import (
	"fmt"
	"time"
)

// NoAnswer is the selection recorded when the question timer runs out.
const NoAnswer = ""

// Question is one entry of the static question pool.
// Options are in display order only; correctness is tracked by value.
type Question struct {
	ID          int      `json:"id" yaml:"id"`
	Level       int      `json:"level" yaml:"level"`
	Event       string   `json:"event" yaml:"event"`
	Prompt      string   `json:"question" yaml:"question"`
	Options     []string `json:"options" yaml:"options"`
	Correct     string   `json:"correctAnswer" yaml:"correct"`
	Reference   string   `json:"reference" yaml:"reference"`
	Explanation string   `json:"explanation" yaml:"explanation"`
}

// Validate reports whether the question can be served to players.
func (q Question) Validate() error {
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %d has %d options", ErrMalformedQuestion, q.ID, len(q.Options))
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: question %d repeats option %q", ErrMalformedQuestion, q.ID, opt)
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[q.Correct]; !ok {
		return fmt.Errorf("%w: question %d correct answer %q is not an option", ErrMalformedQuestion, q.ID, q.Correct)
	}
	return nil
}

// HasOption reports whether value is one of the question's options.
func (q Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// IsCorrect compares by value, never by position.
func (q Question) IsCorrect(selected string) bool {
	return selected != NoAnswer && selected == q.Correct
}

// View strips the correct answer so the question can be sent to a player.
func (q Question) View() QuestionView {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return QuestionView{
		ID:        q.ID,
		Level:     q.Level,
		Event:     q.Event,
		Prompt:    q.Prompt,
		Options:   options,
		Reference: q.Reference,
	}
}

// QuestionView is the player-facing projection of a Question.
type QuestionView struct {
	ID        int      `json:"id"`
	Level     int      `json:"level"`
	Event     string   `json:"event"`
	Prompt    string   `json:"question"`
	Options   []string `json:"options"`
	Reference string   `json:"reference"`
}

// QuestionAnswer is recorded once per answered question and never changed.
type QuestionAnswer struct {
	QuestionID int    `json:"questionId"`
	Selected   string `json:"selectedAnswer"`
	TimedOut   bool   `json:"timedOut"`
	IsCorrect  bool   `json:"isCorrect"`
	TimeSpent  int    `json:"timeSpent"` // seconds
}

// ScoreResult is derived from the full answer set.
type ScoreResult struct {
	AccuracyScore      int       `json:"accuracyScore"`
	TimeBonusScore     int       `json:"timeBonusScore"`
	FinalScore         float64   `json:"finalScore"`
	AccuracyPercentage float64   `json:"accuracyPercentage"`
	CompletedAt        time.Time `json:"completionTimestamp"`
}

// ScoreBreakdown is a display-ready rendering of a ScoreResult.
type ScoreBreakdown struct {
	Accuracy           string `json:"accuracy"`
	TimeBonus          string `json:"timeBonus"`
	Total              string `json:"total"`
	AccuracyPercentage string `json:"accuracyPercentage"`
}

func (r ScoreResult) Breakdown() ScoreBreakdown {
	return ScoreBreakdown{
		Accuracy:           fmt.Sprintf("%d", r.AccuracyScore),
		TimeBonus:          fmt.Sprintf("%d", r.TimeBonusScore),
		Total:              fmt.Sprintf("%.2f", r.FinalScore),
		AccuracyPercentage: fmt.Sprintf("%.1f%%", r.AccuracyPercentage),
	}
}

// GameSession is the persisted record of a finished game. It is created once
// at completion and never mutated.
type GameSession struct {
	ID               string           `json:"id"`
	PlayerName       string           `json:"playerName"`
	PlayerLocation   string           `json:"playerLocation"`
	SecurityCode     string           `json:"securityCode"`
	Answers          []QuestionAnswer `json:"questionsAnswered"`
	AccuracyScore    int              `json:"accuracyScore"`
	TimeBonusScore   int              `json:"timeBonusScore"`
	FinalScore       float64          `json:"finalScore"`
	CompletedAt      time.Time        `json:"completionTimestamp"`
	TotalTimeSeconds int              `json:"totalTimeSeconds"`
}

// Entry projects the session onto a leaderboard row (rank unset).
func (g GameSession) Entry() LeaderboardEntry {
	return LeaderboardEntry{
		SessionID:      g.ID,
		PlayerName:     g.PlayerName,
		PlayerLocation: g.PlayerLocation,
		FinalScore:     g.FinalScore,
		AccuracyScore:  g.AccuracyScore,
		TimeBonusScore: g.TimeBonusScore,
		CompletedAt:    g.CompletedAt,
	}
}

// LeaderboardEntry is a ranked view of a GameSession. Rank is assigned at
// read time and never stored.
type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	SessionID      string    `json:"sessionId"`
	PlayerName     string    `json:"playerName"`
	PlayerLocation string    `json:"playerLocation"`
	FinalScore     float64   `json:"finalScore"`
	AccuracyScore  int       `json:"accuracyScore"`
	TimeBonusScore int       `json:"timeBonusScore"`
	CompletedAt    time.Time `json:"completionTimestamp"`
}

// Leaderboard captures the ordered scoreboard at a point in time.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// SaveResult reports the outcome of persisting a GameSession.
type SaveResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// GameCompletedEvent is published after a GameSession is stored.
type GameCompletedEvent struct {
	SessionID      string    `json:"session_id"`
	PlayerName     string    `json:"player_name"`
	PlayerLocation string    `json:"player_location"`
	FinalScore     float64   `json:"final_score"`
	AccuracyScore  int       `json:"accuracy_score"`
	TimeBonusScore int       `json:"time_bonus_score"`
	CompletedAt    time.Time `json:"completed_at"`
}
