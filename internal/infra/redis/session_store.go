package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"trivia-quiz-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Games are driven in-process, so the store keeps a local map of them;
// Redis only carries a liveness marker with the game's configuration so
// operators can see which sessions are running.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Game
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Game),
	}
}

func (s *SessionStore) Put(game *app.Game) {
	s.mu.Lock()
	s.sessions[game.ID()] = game
	s.mu.Unlock()

	// best-effort liveness marker
	data, err := json.Marshal(game.Config())
	if err != nil {
		return
	}
	_ = s.client.Set(context.Background(), s.key(game.ID()), data, s.ttl).Err()
}

func (s *SessionStore) Get(gameID string) (*app.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.sessions[gameID]
	return game, ok
}

func (s *SessionStore) Delete(gameID string) {
	s.mu.Lock()
	delete(s.sessions, gameID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(gameID)).Err()
}

func (s *SessionStore) key(gameID string) string {
	return "trivia:session:" + gameID
}
