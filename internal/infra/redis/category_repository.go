package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"trivia-quiz-service/internal/domain"
)

// CategoryLoader fetches the category list from a backing source.
type CategoryLoader interface {
	LoadCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryRepository caches the category list in Redis as a JSON string and
// falls back to the loader on a miss. A ttl of zero stores it without expiry.
//
//	SET trivia:categories '[{"id":9,"name":"General Knowledge"},...]'
type CategoryRepository struct {
	client *redis.Client
	loader CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCategoryRepository(client *redis.Client, loader CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CategoryRepository) GetCategories(ctx context.Context) ([]domain.Category, error) {
	if categories, ok := r.cached(ctx); ok {
		return categories, nil
	}

	result, err, _ := r.sf.Do(r.key(), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if categories, ok := r.cached(ctx); ok {
			return categories, nil
		}

		categories, err := r.loader.LoadCategories(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(categories)
		if err != nil {
			return nil, err
		}
		if err := r.client.Set(ctx, r.key(), data, r.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache categories: %v", err)
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

// Invalidate removes the cached list.
func (r *CategoryRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, r.key()).Err()
}

func (r *CategoryRepository) cached(ctx context.Context) ([]domain.Category, bool) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read cached categories: %v", err)
		}
		return nil, false
	}
	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		log.Printf("decode cached categories: %v", err)
		return nil, false
	}
	return categories, true
}

func (r *CategoryRepository) key() string {
	return "trivia:categories"
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
