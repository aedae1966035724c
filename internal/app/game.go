package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// EventType tags events emitted by a running game.
type EventType string

const (
	EventQuestion  EventType = "question"
	EventTick      EventType = "tick"
	EventAnswer    EventType = "answerResult"
	EventCompleted EventType = "completed"
)

// QuestionView is what a player sees for the active question.
type QuestionView struct {
	Index      int                 `json:"index"`
	Total      int                 `json:"total"`
	Category   string              `json:"category"`
	Difficulty domain.Difficulty   `json:"difficulty"`
	Type       domain.QuestionType `json:"type"`
	Question   string              `json:"question"`
	Options    []string            `json:"options"`
	Remaining  int                 `json:"remaining"`
	Score      int                 `json:"score"`
}

// GameResult is the final outcome of a completed game.
type GameResult struct {
	GameID string `json:"gameId"`
	Score  int    `json:"score"`
	Total  int    `json:"total"`
}

// Event is a single update from the game loop.
type Event struct {
	Type      EventType
	Question  *QuestionView
	Remaining int
	Answer    *AnswerOutcome
	Result    *GameResult
}

// GameOptions tune a game. Zero values fall back to production defaults.
type GameOptions struct {
	Timing       Timing
	TickInterval time.Duration
	NewTicker    TickerFunc
	// Rand is used by the game loop without locking; leave it nil when games
	// run concurrently.
	Rand *rand.Rand
}

// Choice is a player's answer. QuestionIndex, when set, must match the active
// question. Option, when set and in range, picks one of the active question's
// options and takes precedence over Content.
type Choice struct {
	QuestionIndex *int
	Option        *int
	Content       string
}

type answerRequest struct {
	choice Choice
	reply  chan answerReply
}

type answerReply struct {
	outcome AnswerOutcome
	err     error
}

// Game drives a Session from a single goroutine. Manual answers and timer
// ticks are both handled by Run, so an expired timer and a manual answer can
// never advance the same question twice.
type Game struct {
	id      string
	cfg     domain.SessionConfig
	session *Session
	timer   *Timer

	answers chan answerRequest
	events  chan Event
	done    chan struct{}

	mu       sync.RWMutex
	snapshot domain.SessionState
	result   *GameResult
	recorded bool
}

// NewGame starts a session over questions. It fails with domain.ErrNoQuestions
// when the list is empty.
func NewGame(id string, cfg domain.SessionConfig, questions []domain.Question, opts GameOptions) (*Game, error) {
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	timing := opts.Timing
	if timing.Durations == nil {
		timing.Durations = DefaultDurations
	}

	session := NewSession(cfg, timing, rnd)
	if err := session.Start(questions); err != nil {
		return nil, err
	}

	g := &Game{
		id:      id,
		cfg:     cfg,
		session: session,
		timer:   NewTimer(opts.TickInterval, opts.NewTicker),
		answers: make(chan answerRequest),
		events:  make(chan Event, 32),
		done:    make(chan struct{}),
	}
	g.snapshot = session.Snapshot()
	return g, nil
}

func (g *Game) ID() string {
	return g.id
}

func (g *Game) Config() domain.SessionConfig {
	return g.cfg
}

// Events is closed when Run returns.
func (g *Game) Events() <-chan Event {
	return g.events
}

// Done is closed when Run returns.
func (g *Game) Done() <-chan struct{} {
	return g.done
}

// Run owns the session until it completes or ctx is canceled.
func (g *Game) Run(ctx context.Context) error {
	defer close(g.events)
	defer close(g.done)
	defer g.timer.Stop()

	if !g.showQuestion(ctx) {
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case req := <-g.answers:
			outcome, err := g.resolve(req.choice)
			req.reply <- answerReply{outcome: outcome, err: err}
			if err != nil {
				continue
			}
			if finished, ok := g.afterAnswer(ctx, outcome); finished || !ok {
				return ctx.Err()
			}

		case <-g.timer.C():
			tick, err := g.session.Tick()
			if err != nil {
				g.timer.Stop()
				continue
			}
			if tick.Answer == nil {
				g.publish()
				if !g.emit(ctx, Event{Type: EventTick, Remaining: tick.Remaining}) {
					return ctx.Err()
				}
				continue
			}
			if finished, ok := g.afterAnswer(ctx, *tick.Answer); finished || !ok {
				return ctx.Err()
			}
		}
	}
}

// Submit hands an answer to the game loop and waits for its outcome.
func (g *Game) Submit(ctx context.Context, content string) (AnswerOutcome, error) {
	return g.SubmitChoice(ctx, Choice{Content: content})
}

// SubmitChoice is Submit for answers tied to a question. The choice is checked
// against the active question by the game loop itself, so an expiry that lands
// first turns it into domain.ErrStaleAnswer.
func (g *Game) SubmitChoice(ctx context.Context, choice Choice) (AnswerOutcome, error) {
	req := answerRequest{choice: choice, reply: make(chan answerReply, 1)}
	select {
	case g.answers <- req:
	case <-g.done:
		return AnswerOutcome{}, domain.ErrSessionCompleted
	case <-ctx.Done():
		return AnswerOutcome{}, ctx.Err()
	}
	reply := <-req.reply
	return reply.outcome, reply.err
}

// Snapshot returns the state as of the last processed event.
func (g *Game) Snapshot() domain.SessionState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshot
}

// Result returns the final score once the game has completed.
func (g *Game) Result() (GameResult, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.result == nil {
		return GameResult{}, false
	}
	return *g.result, true
}

// claimResult hands out the final result exactly once.
func (g *Game) claimResult() (GameResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.result == nil {
		return GameResult{}, domain.ErrSessionNotActive
	}
	if g.recorded {
		return GameResult{}, domain.ErrScoreAlreadyRecorded
	}
	g.recorded = true
	return *g.result, nil
}

func (g *Game) afterAnswer(ctx context.Context, outcome AnswerOutcome) (finished bool, ok bool) {
	if outcome.Completed {
		g.timer.Stop()
		result := GameResult{GameID: g.id, Score: outcome.Score, Total: outcome.Total}
		g.mu.Lock()
		g.result = &result
		g.mu.Unlock()
		g.publish()
		if !g.emit(ctx, Event{Type: EventAnswer, Answer: &outcome}) {
			return true, false
		}
		return true, g.emit(ctx, Event{Type: EventCompleted, Result: &result})
	}
	if !g.emit(ctx, Event{Type: EventAnswer, Answer: &outcome}) {
		return false, false
	}
	return false, g.showQuestion(ctx)
}

func (g *Game) resolve(choice Choice) (AnswerOutcome, error) {
	state := g.session.Snapshot()
	if choice.QuestionIndex != nil && *choice.QuestionIndex != state.CurrentIndex {
		return AnswerOutcome{}, domain.ErrStaleAnswer
	}
	content := choice.Content
	if choice.Option != nil && *choice.Option >= 0 && *choice.Option < len(state.CurrentOptions) {
		content = state.CurrentOptions[*choice.Option]
	}
	return g.session.SubmitAnswer(content)
}

// showQuestion restarts the timer for the freshly generated option set before
// announcing it.
func (g *Game) showQuestion(ctx context.Context) bool {
	g.timer.Restart()
	g.publish()

	q, ok := g.session.CurrentQuestion()
	if !ok {
		return true
	}
	state := g.Snapshot()
	return g.emit(ctx, Event{Type: EventQuestion, Question: &QuestionView{
		Index:      state.CurrentIndex,
		Total:      len(state.Questions),
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Type:       q.Type,
		Question:   q.Question,
		Options:    state.CurrentOptions,
		Remaining:  state.TimeRemaining,
		Score:      state.Score,
	}})
}

func (g *Game) publish() {
	state := g.session.Snapshot()
	g.mu.Lock()
	g.snapshot = state
	g.mu.Unlock()
}

func (g *Game) emit(ctx context.Context, ev Event) bool {
	select {
	case g.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
