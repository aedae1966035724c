package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServePlay upgrades to a websocket that plays one game at a time. A new
// start message abandons the current game and any fetch still in flight.
func (h *WSHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	pc := &playConn{
		service: h.service,
		ctx:     ctx,
		send:    make(chan outboundMessage[any], 16),
		closing: make(chan struct{}),
	}
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range pc.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// keep draining so producers never block on a dead socket
				for range pc.send {
				}
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		pc.handle(inbound)
	}

	pc.tracker.Cancel()
	cancel()
	close(pc.closing)
	pc.abandon()
	pc.wg.Wait()
	close(pc.send)
	<-writerDone
}

// ServeLeaderboard streams leaderboard snapshots until the client goes away.
// The first message is the current leaderboard.
func (h *WSHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.service.Leaderboard().Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// Nothing is expected from the client; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

type playConn struct {
	service *app.QuizService
	ctx     context.Context
	send    chan outboundMessage[any]
	closing chan struct{}
	wg      sync.WaitGroup
	tracker app.RequestTracker

	mu       sync.Mutex
	game     *app.Game
	stopGame context.CancelFunc
}

func (c *playConn) handle(inbound inboundMessage) {
	switch inbound.Type {
	case "start":
		var cfg domain.SessionConfig
		if err := json.Unmarshal(inbound.Payload, &cfg); err != nil {
			c.push(errorMessage(errors.New("invalid start payload")))
			return
		}
		c.start(cfg)
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.push(errorMessage(errors.New("invalid answer payload")))
			return
		}
		c.answer(payload)
	case "submitScore":
		var player domain.Player
		if err := json.Unmarshal(inbound.Payload, &player); err != nil {
			c.push(errorMessage(errors.New("invalid score payload")))
			return
		}
		c.submitScore(player)
	default:
		c.push(errorMessage(errors.New("unsupported message type")))
	}
}

func (c *playConn) start(cfg domain.SessionConfig) {
	if err := c.service.ValidateConfig(cfg); err != nil {
		c.push(errorMessage(err))
		return
	}

	// Begin before abandoning: a fetch that installs its game after this
	// point sees a stale token, one that installed before is stopped below.
	token := c.tracker.Begin()
	c.abandon()
	c.push(outboundMessage[any]{Type: "loading", Payload: loadingPayload{Config: cfg}})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		questions, err := c.service.LoadQuestionsFor(c.ctx, &c.tracker, token, cfg)
		if errors.Is(err, domain.ErrStaleRequest) {
			return
		}
		if err != nil {
			c.push(errorMessage(err))
			return
		}

		c.mu.Lock()
		if !c.tracker.IsCurrent(token) {
			c.mu.Unlock()
			return
		}
		game, err := c.service.StartGame(cfg, questions)
		if err != nil {
			c.mu.Unlock()
			// No questions leaves the client on its loading screen.
			c.push(errorMessage(err))
			return
		}
		gameCtx, stop := context.WithCancel(c.ctx)
		c.game = game
		c.stopGame = stop
		c.wg.Add(2)
		c.mu.Unlock()

		go func() {
			defer c.wg.Done()
			if err := game.Run(gameCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("game %s stopped: %v", game.ID(), err)
			}
		}()
		go func() {
			defer c.wg.Done()
			c.forward(game)
		}()
	}()
}

func (c *playConn) forward(game *app.Game) {
	for ev := range game.Events() {
		switch ev.Type {
		case app.EventQuestion:
			c.push(outboundMessage[any]{Type: "question", Payload: toQuestionPayload(game.ID(), *ev.Question)})
		case app.EventTick:
			c.push(outboundMessage[any]{Type: "tick", Payload: toTickPayload(ev.Remaining)})
		case app.EventAnswer:
			c.push(outboundMessage[any]{Type: "answerResult", Payload: toAnswerResultPayload(*ev.Answer)})
		case app.EventCompleted:
			c.push(outboundMessage[any]{Type: "completed", Payload: *ev.Result})
		}
	}
}

func (c *playConn) answer(payload answerPayload) {
	game := c.current()
	if game == nil {
		c.push(errorMessage(domain.ErrSessionNotActive))
		return
	}

	choice := app.Choice{QuestionIndex: payload.QuestionIndex, Option: payload.Index}
	if payload.Content != nil {
		choice.Content = *payload.Content
	}

	// The outcome reaches the client through the game's event stream.
	if _, err := game.SubmitChoice(c.ctx, choice); err != nil {
		c.push(errorMessage(err))
	}
}

func (c *playConn) submitScore(player domain.Player) {
	game := c.current()
	if game == nil {
		c.push(errorMessage(domain.ErrSessionNotActive))
		return
	}
	entry, err := c.service.SubmitScore(game.ID(), player)
	if err != nil {
		c.push(errorMessage(err))
		return
	}

	c.mu.Lock()
	if c.game == game {
		c.stopGame()
		c.game, c.stopGame = nil, nil
	}
	c.mu.Unlock()
	c.push(outboundMessage[any]{Type: "recorded", Payload: entry})
}

func (c *playConn) current() *app.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game
}

// abandon stops the current game and drops it from the session store. An
// unrecorded score is lost.
func (c *playConn) abandon() {
	c.mu.Lock()
	game, stop := c.game, c.stopGame
	c.game, c.stopGame = nil, nil
	c.mu.Unlock()

	if game == nil {
		return
	}
	stop()
	c.service.EndGame(game.ID())
}

func (c *playConn) push(msg outboundMessage[any]) {
	select {
	case c.send <- msg:
	case <-c.closing:
	}
}
