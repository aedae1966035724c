package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"trivia-quiz-service/internal/domain"
)

// CategoryRepository serves the category list (cached or straight from a source).
type CategoryRepository interface {
	GetCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryCache is a CategoryRepository whose cached list can be dropped.
type CategoryCache interface {
	CategoryRepository
	Invalidate(ctx context.Context) error
}

// QuestionProvider fetches a question set for a session.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, query domain.QuestionQuery) ([]domain.Question, error)
}

// SessionRepository keeps running games addressable by id.
type SessionRepository interface {
	Put(game *Game)
	Get(gameID string) (*Game, bool)
	Delete(gameID string)
}

// QuizService contains the quiz use cases.
type QuizService struct {
	categories  CategoryRepository
	questions   QuestionProvider
	sessions    SessionRepository
	leaderboard *Leaderboard
	validator   *Validator
	gameOpts    GameOptions
	newID       func() string
}

func NewQuizService(categories CategoryRepository, questions QuestionProvider, sessions SessionRepository, leaderboard *Leaderboard, gameOpts GameOptions) *QuizService {
	return &QuizService{
		categories:  categories,
		questions:   questions,
		sessions:    sessions,
		leaderboard: leaderboard,
		validator:   NewValidator(),
		gameOpts:    gameOpts,
		newID:       uuid.NewString,
	}
}

// Categories returns the category list. Provider failures are logged and
// yield an empty list so callers can keep rendering.
func (s *QuizService) Categories(ctx context.Context) []domain.Category {
	categories, err := s.categories.GetCategories(ctx)
	if err != nil {
		log.Printf("fetch categories: %v", err)
		return []domain.Category{}
	}
	return categories
}

// RefreshCategories drops a cached category list, if any, and loads it again.
// Unlike Categories it reports failures.
func (s *QuizService) RefreshCategories(ctx context.Context) ([]domain.Category, error) {
	if cache, ok := s.categories.(CategoryCache); ok {
		if err := cache.Invalidate(ctx); err != nil {
			return nil, fmt.Errorf("invalidate categories: %w", err)
		}
	}
	return s.categories.GetCategories(ctx)
}

// ValidateConfig checks the dashboard form.
func (s *QuizService) ValidateConfig(cfg domain.SessionConfig) error {
	return s.validator.Struct(cfg)
}

// ValidatePlayer checks the final-score form.
func (s *QuizService) ValidatePlayer(player domain.Player) error {
	return s.validator.Struct(player)
}

// LoadQuestions fetches questions for cfg. Provider failures are logged and
// yield an empty list, which keeps the caller in the loading state.
func (s *QuizService) LoadQuestions(ctx context.Context, cfg domain.SessionConfig) ([]domain.Question, error) {
	if err := s.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	questions, err := s.questions.FetchQuestions(ctx, cfg.Query())
	if err != nil {
		log.Printf("fetch questions (category=%d difficulty=%s type=%s amount=%d): %v",
			cfg.Category, cfg.Difficulty, cfg.Type, cfg.Amount, err)
		return []domain.Question{}, nil
	}
	return questions, nil
}

// LoadQuestionsFor is LoadQuestions guarded by a request token: if tracker
// issued a newer token while the fetch was running the result is discarded.
func (s *QuizService) LoadQuestionsFor(ctx context.Context, tracker *RequestTracker, token uint64, cfg domain.SessionConfig) ([]domain.Question, error) {
	questions, err := s.LoadQuestions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if !tracker.IsCurrent(token) {
		return nil, domain.ErrStaleRequest
	}
	return questions, nil
}

// StartGame creates and registers a game. The caller runs it.
func (s *QuizService) StartGame(cfg domain.SessionConfig, questions []domain.Question) (*Game, error) {
	game, err := NewGame(s.newID(), cfg, questions, s.gameOpts)
	if err != nil {
		return nil, err
	}
	s.sessions.Put(game)
	return game, nil
}

// Game looks up a running or finished game.
func (s *QuizService) Game(gameID string) (*Game, error) {
	game, ok := s.sessions.Get(gameID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return game, nil
}

// EndGame forgets a game.
func (s *QuizService) EndGame(gameID string) {
	s.sessions.Delete(gameID)
}

// SubmitScore records the final score of a completed game for player. A game
// can be recorded once; afterwards it is released.
func (s *QuizService) SubmitScore(gameID string, player domain.Player) (domain.LeaderboardEntry, error) {
	if err := s.ValidatePlayer(player); err != nil {
		return domain.LeaderboardEntry{}, err
	}
	game, err := s.Game(gameID)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	result, err := game.claimResult()
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	entry := s.leaderboard.RecordResult(player, result.Score)
	s.sessions.Delete(gameID)
	return entry, nil
}

// RecordResult records a score that was not produced by a registered game,
// e.g. by the terminal client.
func (s *QuizService) RecordResult(player domain.Player, score int) (domain.LeaderboardEntry, error) {
	if err := s.ValidatePlayer(player); err != nil {
		return domain.LeaderboardEntry{}, err
	}
	if score < 0 {
		return domain.LeaderboardEntry{}, fmt.Errorf("negative score %d", score)
	}
	return s.leaderboard.RecordResult(player, score), nil
}

func (s *QuizService) Leaderboard() *Leaderboard {
	return s.leaderboard
}

// IsValidationError reports whether err carries field-level messages.
func IsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
