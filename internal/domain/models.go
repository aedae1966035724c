package domain

// Difficulty is the OpenTDB difficulty tag of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a raw provider value.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(raw); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", ErrInvalidDifficulty
}

// QuestionType distinguishes multiple choice from true/false questions.
type QuestionType string

const (
	TypeMultiple QuestionType = "multiple"
	TypeBoolean  QuestionType = "boolean"
)

// ParseQuestionType validates a raw provider value.
func ParseQuestionType(raw string) (QuestionType, error) {
	switch t := QuestionType(raw); t {
	case TypeMultiple, TypeBoolean:
		return t, nil
	}
	return "", ErrInvalidQuestionType
}

// Question is a trivia question as served by the providers. Text fields keep
// their HTML entities; decoding happens at presentation time.
type Question struct {
	Type             QuestionType `json:"type"`
	Difficulty       Difficulty   `json:"difficulty"`
	Category         string       `json:"category"`
	Question         string       `json:"question"`
	CorrectAnswer    string       `json:"correct_answer"`
	IncorrectAnswers []string     `json:"incorrect_answers"`
}

// Category is a trivia category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SessionConfig is what the player picks before a quiz starts.
type SessionConfig struct {
	Category   int          `json:"category" validate:"required,gt=0"`
	Difficulty Difficulty   `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Type       QuestionType `json:"type" validate:"required,oneof=multiple boolean"`
	Amount     int          `json:"amount" validate:"required,min=1,max=50"`
}

// Query converts the config into a provider request.
func (c SessionConfig) Query() QuestionQuery {
	return QuestionQuery{
		Amount:     c.Amount,
		Category:   c.Category,
		Difficulty: c.Difficulty,
		Type:       c.Type,
	}
}

// QuestionQuery is the request shape understood by question providers.
type QuestionQuery struct {
	Amount     int
	Category   int
	Difficulty Difficulty
	Type       QuestionType
}

// SessionStatus is the coarse state of a quiz session.
type SessionStatus string

const (
	StatusLoading   SessionStatus = "loading"
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
)

// SessionState is a point-in-time copy of a quiz session.
type SessionState struct {
	Status         SessionStatus `json:"status"`
	Questions      []Question    `json:"questions"`
	CurrentIndex   int           `json:"currentIndex"`
	Score          int           `json:"score"`
	CurrentOptions []string      `json:"currentOptions"`
	TimeRemaining  int           `json:"timeRemaining"`
}

// Player identifies who finished a session.
type Player struct {
	FirstName string `json:"first_name" validate:"required,min=2"`
	LastName  string `json:"last_name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,loose_email"`
}

// LeaderboardEntry is one recorded session result.
type LeaderboardEntry struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Score     int    `json:"score"`
}

// ScorePoint is one element of a player's score history.
type ScorePoint struct {
	Day   string `json:"day"`
	Score int    `json:"score"`
}

// ChartSeries maps an email to its chronological score history.
type ChartSeries map[string][]ScorePoint

// LeaderboardPage is one page of the leaderboard.
type LeaderboardPage struct {
	Entries    []LeaderboardEntry `json:"entries"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
	Total      int                `json:"total"`
}
