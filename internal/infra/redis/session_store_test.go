package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	cfg := domain.SessionConfig{Category: 11, Difficulty: domain.DifficultyMedium, Type: domain.TypeMultiple, Amount: 3}
	game, err := app.NewGame("game-1", cfg, memory.SampleQuestions(), app.GameOptions{})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}

	store.Put(game)
	if !mr.Exists("trivia:session:game-1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("trivia:session:game-1"); ttl != time.Minute {
		t.Fatalf("expected ttl of a minute, got %v", ttl)
	}
	if _, ok := store.Get("game-1"); !ok {
		t.Fatalf("expected game in local map")
	}

	store.Delete("game-1")
	if mr.Exists("trivia:session:game-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("game-1"); ok {
		t.Fatalf("expected game removed from local map")
	}
}
