package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a game session does not exist or has expired.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the session.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted answer is not one of the question's options.
	ErrOptionNotFound = errors.New("option not found")

	// ErrInvalidSelectionSize is returned when fewer than one question is requested.
	ErrInvalidSelectionSize = errors.New("invalid selection size")
	// ErrInsufficientPool is returned when the pool holds fewer questions than requested.
	ErrInsufficientPool = errors.New("insufficient pool size")
	// ErrMalformedQuestion flags a question whose correct answer is not among its options.
	ErrMalformedQuestion = errors.New("malformed question")

	ErrInvalidName     = errors.New("name must be 2-50 letters, spaces, hyphens or apostrophes")
	ErrInvalidLocation = errors.New("unknown location")

	// ErrQuestionOutOfOrder is returned when an answer targets anything but the current question.
	ErrQuestionOutOfOrder = errors.New("question is not the current question")
	// ErrQuizFinished is returned when answers arrive after the quiz ended.
	ErrQuizFinished = errors.New("quiz already finished")
	// ErrQuizInProgress is returned when the code gate is used before the quiz ends.
	ErrQuizInProgress = errors.New("quiz still in progress")

	ErrInvalidCodeFormat = errors.New("security code must be 6 digits")
	// ErrVerificationLocked is returned once all code attempts are used up.
	ErrVerificationLocked = errors.New("verification attempts exhausted")
	ErrPenanceIncomplete  = errors.New("penance not complete")
	// ErrResultsLocked is returned when results are requested before the code gate is passed.
	ErrResultsLocked = errors.New("results locked until code is verified or penance is complete")
	// ErrSessionCompleted is returned for mutations on a saved session.
	ErrSessionCompleted = errors.New("game session already completed")
)

// IsValidationError groups the errors caused by bad client input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidLocation) ||
		errors.Is(err, ErrOptionNotFound) ||
		errors.Is(err, ErrInvalidCodeFormat) ||
		errors.Is(err, ErrPenanceIncomplete) ||
		errors.Is(err, ErrInvalidSelectionSize)
}

// IsStateError groups the errors caused by calling a transition at the wrong stage.
func IsStateError(err error) bool {
	return errors.Is(err, ErrQuestionOutOfOrder) ||
		errors.Is(err, ErrQuizFinished) ||
		errors.Is(err, ErrQuizInProgress) ||
		errors.Is(err, ErrSessionCompleted)
}
