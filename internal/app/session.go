package app

import (
	"math/rand"

	"trivia-quiz-service/internal/domain"
)

// AnswerOutcome describes what a single submission did to the session.
type AnswerOutcome struct {
	QuestionIndex int    `json:"questionIndex"`
	Submitted     string `json:"submitted"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
	Forced        bool   `json:"forced"`
	Score         int    `json:"score"`
	Total         int    `json:"total"`
	Completed     bool   `json:"completed"`
}

// TickResult is returned by Session.Tick. Answer is set when the countdown
// expired and a fallback guess was submitted.
type TickResult struct {
	Remaining int
	Answer    *AnswerOutcome
}

// Session is the quiz state machine for a single player. It is not safe for
// concurrent use; Game serializes access to it.
type Session struct {
	cfg       domain.SessionConfig
	timing    Timing
	rnd       *rand.Rand
	status    domain.SessionStatus
	questions []domain.Question
	index     int
	score     int
	options   []string
	countdown Countdown
}

// NewSession returns a session in the Loading state.
func NewSession(cfg domain.SessionConfig, timing Timing, rnd *rand.Rand) *Session {
	return &Session{
		cfg:    cfg,
		timing: timing,
		rnd:    rnd,
		status: domain.StatusLoading,
	}
}

// Start moves the session to Active(0). An empty question list keeps it Loading.
func (s *Session) Start(questions []domain.Question) error {
	if s.status != domain.StatusLoading {
		return domain.ErrSessionNotActive
	}
	if len(questions) == 0 {
		return domain.ErrNoQuestions
	}
	s.questions = append([]domain.Question(nil), questions...)
	s.index = 0
	s.score = 0
	s.status = domain.StatusActive
	s.options = GenerateOptions(s.questions[0], s.rnd)
	s.countdown = NewCountdown(s.timing.Duration(s.cfg.Difficulty))
	return nil
}

// GenerateOptions returns the incorrect answers with the correct answer
// inserted at a uniformly random slot.
func GenerateOptions(q domain.Question, rnd *rand.Rand) []string {
	if q.CorrectAnswer == "" && len(q.IncorrectAnswers) == 0 {
		return []string{}
	}
	slot := rnd.Intn(len(q.IncorrectAnswers) + 1)
	options := make([]string, 0, len(q.IncorrectAnswers)+1)
	options = append(options, q.IncorrectAnswers[:slot]...)
	options = append(options, q.CorrectAnswer)
	options = append(options, q.IncorrectAnswers[slot:]...)
	return options
}

// SubmitAnswer scores content against the current question and advances.
func (s *Session) SubmitAnswer(content string) (AnswerOutcome, error) {
	if s.status != domain.StatusActive {
		return AnswerOutcome{}, domain.ErrSessionNotActive
	}
	return s.submit(content, false), nil
}

// Tick advances the countdown by one second. At zero it submits a random
// option on the player's behalf and resets the countdown.
func (s *Session) Tick() (TickResult, error) {
	if s.status != domain.StatusActive {
		return TickResult{}, domain.ErrSessionNotActive
	}
	if s.countdown.Tick() {
		return TickResult{Remaining: s.countdown.Remaining()}, nil
	}
	outcome := s.submit(s.fallbackGuess(), true)
	return TickResult{Remaining: s.countdown.Remaining(), Answer: &outcome}, nil
}

func (s *Session) submit(content string, forced bool) AnswerOutcome {
	question := s.questions[s.index]
	correct := content == question.CorrectAnswer
	if correct {
		s.score++
	}
	outcome := AnswerOutcome{
		QuestionIndex: s.index,
		Submitted:     content,
		CorrectAnswer: question.CorrectAnswer,
		Correct:       correct,
		Forced:        forced,
		Score:         s.score,
		Total:         len(s.questions),
	}

	if s.index+1 == len(s.questions) {
		s.status = domain.StatusCompleted
		s.options = []string{}
		s.countdown.Reset(0)
		outcome.Completed = true
		return outcome
	}

	s.index++
	s.options = GenerateOptions(s.questions[s.index], s.rnd)
	s.countdown.Reset(s.timing.Duration(s.cfg.Difficulty))
	return outcome
}

func (s *Session) fallbackGuess() string {
	if len(s.options) == 0 {
		return ""
	}
	return s.options[s.rnd.Intn(len(s.options))]
}

// Status reports the current state.
func (s *Session) Status() domain.SessionStatus {
	return s.status
}

// Score is the number of correct answers so far.
func (s *Session) Score() int {
	return s.score
}

// Total is the number of questions in the session.
func (s *Session) Total() int {
	return len(s.questions)
}

// CurrentQuestion returns the active question, if any.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	if s.status != domain.StatusActive || s.index >= len(s.questions) {
		return domain.Question{}, false
	}
	return s.questions[s.index], true
}

// Snapshot copies the session state. A completed session keeps the index of
// its last question.
func (s *Session) Snapshot() domain.SessionState {
	return domain.SessionState{
		Status:         s.status,
		Questions:      append([]domain.Question(nil), s.questions...),
		CurrentIndex:   s.index,
		Score:          s.score,
		CurrentOptions: append([]string{}, s.options...),
		TimeRemaining:  s.countdown.Remaining(),
	}
}
