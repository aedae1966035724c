package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/infra/opentdb"
	pgbank "trivia-quiz-service/internal/infra/postgres"
	rediscache "trivia-quiz-service/internal/infra/redis"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// questionSource serves both categories and questions.
type questionSource interface {
	app.QuestionProvider
	LoadCategories(ctx context.Context) ([]domain.Category, error)
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Quiz.Source == "postgres" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	source, err := buildSource(cfg, pool)
	if err != nil {
		return err
	}

	// Categories change rarely; by default they are fetched once per process.
	categoryTTL := config.TTLDuration(cfg.Quiz.CategoryTTL, 0)
	var categories app.CategoryRepository
	if redisClient != nil {
		categories = rediscache.NewCategoryRepository(redisClient, source, categoryTTL)
	} else {
		categories = memory.NewCategoryRepository(source, categoryTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = rediscache.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	service := app.NewQuizService(categories, source, store, app.NewLeaderboard(), gameOptions(cfg))
	router := transport.NewRouter(
		transport.NewAPIHandler(service, cfg.ExportContext()),
		transport.NewWSHandler(service),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia service on :%s (source=%s)", finalPort, sourceName(cfg))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func sourceName(cfg config.Config) string {
	if cfg.Quiz.Source == "" {
		return "opentdb"
	}
	return cfg.Quiz.Source
}

func buildSource(cfg config.Config, pool *pgxpool.Pool) (questionSource, error) {
	switch sourceName(cfg) {
	case "opentdb":
		return newOpenTDBClient(cfg), nil
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("postgres source without a connection pool")
		}
		return pgbank.NewQuestionBank(pool), nil
	case "static":
		return memory.NewStaticSource(memory.SampleCategories(), memory.SampleQuestions()), nil
	}
	return nil, fmt.Errorf("unknown question source %q", cfg.Quiz.Source)
}

func newOpenTDBClient(cfg config.Config) *opentdb.Client {
	httpClient := &http.Client{Timeout: config.TTLDuration(cfg.OpenTDB.Timeout, 10*time.Second)}
	return opentdb.NewClientWithBaseURL(httpClient, cfg.OpenTDB.BaseURL)
}

// gameOptions maps the quiz section onto countdown timing.
func gameOptions(cfg config.Config) app.GameOptions {
	durations := make(map[domain.Difficulty]int, len(app.DefaultDurations))
	for d, secs := range app.DefaultDurations {
		durations[d] = secs
	}
	overrides := map[domain.Difficulty]int{
		domain.DifficultyEasy:   cfg.Quiz.Durations.Easy,
		domain.DifficultyMedium: cfg.Quiz.Durations.Medium,
		domain.DifficultyHard:   cfg.Quiz.Durations.Hard,
	}
	for d, secs := range overrides {
		if secs > 0 {
			durations[d] = secs
		}
	}

	policy := app.ResetToDifficulty
	if cfg.Quiz.TimerReset == string(app.ResetToEasy) {
		policy = app.ResetToEasy
	}
	return app.GameOptions{Timing: app.Timing{Durations: durations, ResetPolicy: policy}}
}
