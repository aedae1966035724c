package domain

import "errors"

var (
	// ErrNoQuestions is returned when a session is started without questions.
	ErrNoQuestions = errors.New("no questions available")
	// ErrSessionNotFound is returned when a game id is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotActive is returned when answering outside the active state.
	ErrSessionNotActive = errors.New("quiz session is not active")
	// ErrSessionCompleted is returned when acting on a finished game.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrScoreAlreadyRecorded indicates the final score was already submitted.
	ErrScoreAlreadyRecorded = errors.New("score already recorded")
	// ErrStaleAnswer rejects an answer aimed at a question that has advanced.
	ErrStaleAnswer = errors.New("answer is for a question that has already advanced")
	// ErrCategoryNotFound indicates the requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProviderUnavailable wraps failures of the remote question source.
	ErrProviderUnavailable = errors.New("question provider unavailable")
	// ErrStaleRequest marks a fetch result superseded by a newer request.
	ErrStaleRequest = errors.New("stale request")
	// ErrInvalidDifficulty rejects unknown difficulty tags.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrInvalidQuestionType rejects unknown question types.
	ErrInvalidQuestionType = errors.New("invalid question type")
)
