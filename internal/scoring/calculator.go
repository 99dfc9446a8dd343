package scoring

import (
	"math"

	"github.com/shopspring/decimal"

	"journey-quiz-service/internal/domain"
)

// Denominator selects what the accuracy ratio is divided by.
type Denominator string

const (
	// DenominatorAnswered divides by the number of answers supplied.
	DenominatorAnswered Denominator = "answered"
	// DenominatorFixed divides by the configured quiz length.
	DenominatorFixed Denominator = "fixed"
)

const (
	DefaultQuizLength          = 15
	DefaultTimeLimitSeconds    = 30
	DefaultMaxBonusPerQuestion = 500
	DefaultMaxAccuracyPoints   = 1000
)

// Rules parameterize the score formula.
type Rules struct {
	QuizLength          int
	TimeLimitSeconds    int
	MaxBonusPerQuestion float64
	MaxAccuracyPoints   float64
	Denominator         Denominator
}

// DefaultRules match the live quiz: 15 questions, 30 seconds each,
// 1000 accuracy points and up to 500 bonus points per question.
func DefaultRules() Rules {
	return Rules{
		QuizLength:          DefaultQuizLength,
		TimeLimitSeconds:    DefaultTimeLimitSeconds,
		MaxBonusPerQuestion: DefaultMaxBonusPerQuestion,
		MaxAccuracyPoints:   DefaultMaxAccuracyPoints,
		Denominator:         DenominatorAnswered,
	}
}

// Result is the output of Calculate.
type Result struct {
	AccuracyScore      int
	TimeBonusScore     int
	FinalScore         float64
	AccuracyPercentage float64
}

// Calculate scores a set of answers and their per-question elapsed times.
// It is pure: the same inputs always produce the same Result.
func (r Rules) Calculate(answers []domain.QuestionAnswer, times []int) Result {
	if r.QuizLength > 0 {
		if len(answers) > r.QuizLength {
			answers = answers[:r.QuizLength]
		}
		if len(times) > r.QuizLength {
			times = times[:r.QuizLength]
		}
	}

	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}

	denominator := len(answers)
	if r.Denominator == DenominatorFixed && r.QuizLength > 0 {
		denominator = r.QuizLength
	}

	var ratio float64
	if denominator > 0 {
		ratio = float64(correct) / float64(denominator)
	}

	bonus := r.timeBonus(times)
	accuracy := int(math.Round(ratio * r.MaxAccuracyPoints))

	final := decimal.NewFromInt(int64(accuracy)).
		Add(decimal.NewFromFloat(bonus)).
		Round(2)

	return Result{
		AccuracyScore:      accuracy,
		TimeBonusScore:     int(math.Round(bonus)),
		FinalScore:         final.InexactFloat64(),
		AccuracyPercentage: decimal.NewFromFloat(ratio * 100).Round(2).InexactFloat64(),
	}
}

// CalculateAnswers scores answers using their recorded elapsed times.
func (r Rules) CalculateAnswers(answers []domain.QuestionAnswer) Result {
	times := make([]int, len(answers))
	for i, a := range answers {
		times[i] = a.TimeSpent
	}
	return r.Calculate(answers, times)
}

// timeBonus is linear in the time left on each question's clock.
func (r Rules) timeBonus(times []int) float64 {
	if r.TimeLimitSeconds <= 0 {
		return 0
	}
	limit := float64(r.TimeLimitSeconds)
	rate := r.MaxBonusPerQuestion / limit

	var total float64
	for _, spent := range times {
		left := math.Max(0, math.Min(limit, limit-float64(spent)))
		total += left * rate
	}
	return total
}

// ClampElapsed bounds an elapsed time to [0, TimeLimitSeconds].
func (r Rules) ClampElapsed(seconds int) int {
	if seconds < 0 {
		return 0
	}
	if r.TimeLimitSeconds > 0 && seconds > r.TimeLimitSeconds {
		return r.TimeLimitSeconds
	}
	return seconds
}
