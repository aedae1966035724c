package http

import (
	"encoding/json"
	"html"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// warnBelow marks the timer as running out, as the web client colored it red.
const warnBelow = 10

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type answerPayload struct {
	QuestionIndex *int    `json:"questionIndex,omitempty"`
	Index         *int    `json:"index,omitempty"`
	Content       *string `json:"content,omitempty"`
}

type loadingPayload struct {
	Config domain.SessionConfig `json:"config"`
}

type optionView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type questionPayload struct {
	GameID     string              `json:"gameId"`
	Index      int                 `json:"index"`
	Total      int                 `json:"total"`
	Category   string              `json:"category"`
	Difficulty domain.Difficulty   `json:"difficulty"`
	Type       domain.QuestionType `json:"type"`
	Question   string              `json:"question"`
	Options    []optionView        `json:"options"`
	Remaining  int                 `json:"remaining"`
	Timer      string              `json:"timer"`
	Score      int                 `json:"score"`
}

type tickPayload struct {
	Remaining int    `json:"remaining"`
	Timer     string `json:"timer"`
	Warning   bool   `json:"warning"`
}

type answerResultPayload struct {
	QuestionIndex int    `json:"questionIndex"`
	Submitted     string `json:"submitted"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
	Forced        bool   `json:"forced"`
	Score         int    `json:"score"`
	Total         int    `json:"total"`
	Completed     bool   `json:"completed"`
}

type sessionView struct {
	GameID        string               `json:"gameId"`
	Status        domain.SessionStatus `json:"status"`
	CurrentIndex  int                  `json:"currentIndex"`
	Total         int                  `json:"total"`
	Score         int                  `json:"score"`
	Question      string               `json:"question,omitempty"`
	Options       []optionView         `json:"options"`
	TimeRemaining int                  `json:"timeRemaining"`
	Timer         string               `json:"timer"`
}

func decodeOptions(raw []string) []optionView {
	options := make([]optionView, 0, len(raw))
	for i, text := range raw {
		options = append(options, optionView{Index: i, Text: html.UnescapeString(text)})
	}
	return options
}

func toQuestionPayload(gameID string, q app.QuestionView) questionPayload {
	return questionPayload{
		GameID:     gameID,
		Index:      q.Index,
		Total:      q.Total,
		Category:   html.UnescapeString(q.Category),
		Difficulty: q.Difficulty,
		Type:       q.Type,
		Question:   html.UnescapeString(q.Question),
		Options:    decodeOptions(q.Options),
		Remaining:  q.Remaining,
		Timer:      domain.FormatTimer(q.Remaining),
		Score:      q.Score,
	}
}

func toTickPayload(remaining int) tickPayload {
	return tickPayload{
		Remaining: remaining,
		Timer:     domain.FormatTimer(remaining),
		Warning:   remaining < warnBelow,
	}
}

func toAnswerResultPayload(o app.AnswerOutcome) answerResultPayload {
	return answerResultPayload{
		QuestionIndex: o.QuestionIndex,
		Submitted:     html.UnescapeString(o.Submitted),
		CorrectAnswer: html.UnescapeString(o.CorrectAnswer),
		Correct:       o.Correct,
		Forced:        o.Forced,
		Score:         o.Score,
		Total:         o.Total,
		Completed:     o.Completed,
	}
}

func toSessionView(gameID string, state domain.SessionState) sessionView {
	view := sessionView{
		GameID:        gameID,
		Status:        state.Status,
		CurrentIndex:  state.CurrentIndex,
		Total:         len(state.Questions),
		Score:         state.Score,
		Options:       decodeOptions(state.CurrentOptions),
		TimeRemaining: state.TimeRemaining,
		Timer:         domain.FormatTimer(state.TimeRemaining),
	}
	if state.Status == domain.StatusActive && state.CurrentIndex < len(state.Questions) {
		view.Question = html.UnescapeString(state.Questions[state.CurrentIndex].Question)
	}
	return view
}

func errorMessage(err error) outboundMessage[any] {
	payload := errorPayload{Message: err.Error()}
	if verr, ok := app.IsValidationError(err); ok {
		payload.Message = "validation failed"
		payload.Fields = verr.Fields
	}
	return outboundMessage[any]{Type: "error", Payload: payload}
}
