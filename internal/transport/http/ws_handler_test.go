package http

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

type silentTicker struct {
	c chan time.Time
}

func (s silentTicker) C() <-chan time.Time { return s.c }
func (silentTicker) Stop()                 {}

func newSilentTicker(time.Duration) app.Ticker {
	return silentTicker{c: make(chan time.Time)}
}

// gatedSource blocks hard-difficulty fetches until gate is closed.
type gatedSource struct {
	*memory.StaticSource
	gate chan struct{}
}

func (g gatedSource) FetchQuestions(ctx context.Context, query domain.QuestionQuery) ([]domain.Question, error) {
	if query.Difficulty == domain.DifficultyHard {
		select {
		case <-g.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return []domain.Question{{
			Type:             domain.TypeBoolean,
			Difficulty:       domain.DifficultyHard,
			Category:         "Entertainment: Film",
			Question:         "Stale question",
			CorrectAnswer:    "True",
			IncorrectAnswers: []string{"False"},
		}}, nil
	}
	return g.StaticSource.FetchQuestions(ctx, query)
}

func newTestService(provider app.QuestionProvider) *app.QuizService {
	source := memory.NewStaticSource(memory.SampleCategories(), memory.SampleQuestions())
	categories := memory.NewCategoryRepository(source, 0)
	return app.NewQuizService(categories, provider, memory.NewSessionStore(), app.NewLeaderboard(), app.GameOptions{
		Timing:    app.DefaultTiming(),
		NewTicker: newSilentTicker,
		Rand:      rand.New(rand.NewSource(1)),
	})
}

func dialPlay(t *testing.T, service *app.QuizService) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(NewRouter(NewAPIHandler(service, "trivia"), NewWSHandler(service)))
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/play"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%s)", expect, msg.Type, msg.Payload)
	}
	return msg
}

func send(conn *websocket.Conn, t *testing.T, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

var filmAnswers = map[string]string{
	`In the "Jurassic Park" universe, what is the name of the island that contains InGen's Site B?`: "Isla Sorna",
	`In the 1999 movie Fight Club, which of these is not a rule of the "fight club"?`:               "Always wear a shirt",
	`Who directed the 1973 film "American Graffiti"?`:                                               "George Lucas",
}

func correctIndex(t *testing.T, q questionPayload) int {
	t.Helper()
	want, ok := filmAnswers[q.Question]
	if !ok {
		t.Fatalf("unexpected question %q", q.Question)
	}
	for _, opt := range q.Options {
		if opt.Text == want {
			return opt.Index
		}
	}
	t.Fatalf("correct answer %q missing from %+v", want, q.Options)
	return -1
}

func mediumFilmConfig() map[string]any {
	return map[string]any{"category": 11, "difficulty": "medium", "type": "multiple", "amount": 3}
}

func TestWebSocketPlaysFullGame(t *testing.T) {
	service := newTestService(memory.NewStaticSource(memory.SampleCategories(), memory.SampleQuestions()))
	conn, cleanup := dialPlay(t, service)
	defer cleanup()

	send(conn, t, "start", mediumFilmConfig())
	readNext(conn, t, "loading")

	for i := 0; i < 3; i++ {
		var q questionPayload
		if err := json.Unmarshal(readNext(conn, t, "question").Payload, &q); err != nil {
			t.Fatalf("decode question: %v", err)
		}
		if q.Index != i || q.Total != 3 || len(q.Options) != 4 {
			t.Fatalf("unexpected question %+v", q)
		}
		if q.Timer != "0:30" {
			t.Fatalf("expected medium timer 0:30, got %s", q.Timer)
		}
		idx := correctIndex(t, q)
		send(conn, t, "answer", map[string]any{"questionIndex": q.Index, "index": idx})

		var result answerResultPayload
		if err := json.Unmarshal(readNext(conn, t, "answerResult").Payload, &result); err != nil {
			t.Fatalf("decode answer result: %v", err)
		}
		if !result.Correct || result.Score != i+1 {
			t.Fatalf("unexpected answer result %+v", result)
		}
	}

	var final app.GameResult
	if err := json.Unmarshal(readNext(conn, t, "completed").Payload, &final); err != nil {
		t.Fatalf("decode completed: %v", err)
	}
	if final.Score != 3 || final.Total != 3 {
		t.Fatalf("expected 3/3, got %d/%d", final.Score, final.Total)
	}

	send(conn, t, "submitScore", map[string]any{"first_name": "A", "last_name": "Lovelace", "email": "ada"})
	var invalid errorPayload
	if err := json.Unmarshal(readNext(conn, t, "error").Payload, &invalid); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if invalid.Fields["first_name"] == "" || invalid.Fields["email"] == "" {
		t.Fatalf("expected field errors, got %+v", invalid)
	}

	send(conn, t, "submitScore", map[string]any{"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com"})
	var entry domain.LeaderboardEntry
	if err := json.Unmarshal(readNext(conn, t, "recorded").Payload, &entry); err != nil {
		t.Fatalf("decode recorded: %v", err)
	}
	if entry.Score != 3 || entry.Email != "ada@example.com" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if service.Leaderboard().Len() != 1 {
		t.Fatalf("expected one leaderboard entry, got %d", service.Leaderboard().Len())
	}

	// The game was released after recording.
	send(conn, t, "submitScore", map[string]any{"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com"})
	readNext(conn, t, "error")
	if service.Leaderboard().Len() != 1 {
		t.Fatalf("score recorded twice")
	}
}

func TestWebSocketDropsStaleFetch(t *testing.T) {
	gate := make(chan struct{})
	source := gatedSource{
		StaticSource: memory.NewStaticSource(memory.SampleCategories(), memory.SampleQuestions()),
		gate:         gate,
	}
	service := newTestService(source)
	conn, cleanup := dialPlay(t, service)
	defer cleanup()

	send(conn, t, "start", map[string]any{"category": 11, "difficulty": "hard", "type": "boolean", "amount": 1})
	readNext(conn, t, "loading")
	send(conn, t, "start", mediumFilmConfig())
	readNext(conn, t, "loading")

	var q questionPayload
	if err := json.Unmarshal(readNext(conn, t, "question").Payload, &q); err != nil {
		t.Fatalf("decode question: %v", err)
	}
	close(gate)

	for {
		if q.Difficulty != domain.DifficultyMedium {
			t.Fatalf("stale question delivered: %+v", q)
		}
		send(conn, t, "answer", map[string]any{"index": correctIndex(t, q)})
		readNext(conn, t, "answerResult")
		msg := readNext(conn, t, "")
		if msg.Type == "completed" {
			break
		}
		if msg.Type != "question" {
			t.Fatalf("unexpected message %s", msg.Type)
		}
		if err := json.Unmarshal(msg.Payload, &q); err != nil {
			t.Fatalf("decode question: %v", err)
		}
	}
}

func TestWebSocketRejectsInvalidConfig(t *testing.T) {
	service := newTestService(memory.NewStaticSource(memory.SampleCategories(), memory.SampleQuestions()))
	conn, cleanup := dialPlay(t, service)
	defer cleanup()

	send(conn, t, "start", map[string]any{"category": 0, "difficulty": "extreme", "type": "multiple", "amount": 3})
	var payload errorPayload
	if err := json.Unmarshal(readNext(conn, t, "error").Payload, &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Fields["category"] == "" || payload.Fields["difficulty"] == "" {
		t.Fatalf("expected category and difficulty errors, got %+v", payload.Fields)
	}

	send(conn, t, "answer", map[string]any{"index": 0})
	readNext(conn, t, "error")
}

func TestWebSocketEmptyQuestionSetStaysLoading(t *testing.T) {
	service := newTestService(memory.NewStaticSource(memory.SampleCategories(), nil))
	conn, cleanup := dialPlay(t, service)
	defer cleanup()

	send(conn, t, "start", mediumFilmConfig())
	readNext(conn, t, "loading")
	var payload errorPayload
	if err := json.Unmarshal(readNext(conn, t, "error").Payload, &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Message != domain.ErrNoQuestions.Error() {
		t.Fatalf("unexpected error %q", payload.Message)
	}
}

func TestLeaderboardSocketStreamsUpdates(t *testing.T) {
	service := newTestService(memory.NewStaticSource(memory.SampleCategories(), memory.SampleQuestions()))
	server := httptest.NewServer(NewRouter(NewAPIHandler(service, "trivia"), NewWSHandler(service)))
	defer server.Close()

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "leaderboard")

	if _, err := service.RecordResult(domain.Player{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}, 7); err != nil {
		t.Fatalf("record: %v", err)
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(readNext(conn, t, "leaderboard").Payload, &entries); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].Score != 7 {
		t.Fatalf("unexpected leaderboard %+v", entries)
	}
}

func TestWebSocketRejectsAnswerForAnotherQuestion(t *testing.T) {
	service := newTestService(memory.NewStaticSource(memory.SampleCategories(), memory.SampleQuestions()))
	conn, cleanup := dialPlay(t, service)
	defer cleanup()

	send(conn, t, "start", mediumFilmConfig())
	readNext(conn, t, "loading")
	var q questionPayload
	if err := json.Unmarshal(readNext(conn, t, "question").Payload, &q); err != nil {
		t.Fatalf("decode question: %v", err)
	}

	send(conn, t, "answer", map[string]any{"questionIndex": q.Index + 1, "index": correctIndex(t, q)})
	var payload errorPayload
	if err := json.Unmarshal(readNext(conn, t, "error").Payload, &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Message != domain.ErrStaleAnswer.Error() {
		t.Fatalf("unexpected error %q", payload.Message)
	}

	send(conn, t, "answer", map[string]any{"questionIndex": q.Index, "index": correctIndex(t, q)})
	var result answerResultPayload
	if err := json.Unmarshal(readNext(conn, t, "answerResult").Payload, &result); err != nil {
		t.Fatalf("decode answer result: %v", err)
	}
	if result.QuestionIndex != 0 || !result.Correct {
		t.Fatalf("unexpected answer result %+v", result)
	}
}

func TestSubmitScoreStopsTheGame(t *testing.T) {
	service := newTestService(memory.NewStaticSource(memory.SampleCategories(), memory.SampleQuestions()))
	ctx := context.Background()
	cfg := domain.SessionConfig{Category: 11, Difficulty: domain.DifficultyMedium, Type: domain.TypeMultiple, Amount: 3}

	questions, err := service.LoadQuestions(ctx, cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	game, err := service.StartGame(cfg, questions)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	go func() { _ = game.Run(ctx) }()
	go func() {
		for range game.Events() {
		}
	}()
	for _, answer := range []string{"Isla Sorna", "Always wear a shirt", "George Lucas"} {
		if _, err := game.Submit(ctx, answer); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	<-game.Done()

	stopped := false
	pc := &playConn{
		service:  service,
		ctx:      ctx,
		send:     make(chan outboundMessage[any], 1),
		closing:  make(chan struct{}),
		game:     game,
		stopGame: func() { stopped = true },
	}
	pc.submitScore(domain.Player{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})

	if msg := <-pc.send; msg.Type != "recorded" {
		t.Fatalf("expected recorded, got %s", msg.Type)
	}
	if !stopped {
		t.Fatalf("expected the game context to be canceled")
	}
	if pc.current() != nil {
		t.Fatalf("expected the game to be released")
	}
}
