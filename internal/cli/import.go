package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	pgbank "trivia-quiz-service/internal/infra/postgres"
)

// OpenTDB allows one request per five seconds per address.
const importPause = 5 * time.Second

type importOptions struct {
	categories   []int
	amount       int
	difficulties []string
	qtype        string
}

// NewImportCmd copies categories and questions from OpenTDB into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	opts := importOptions{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import OpenTDB questions into the Postgres question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), cfg, opts)
		},
	}
	cmd.Flags().IntSliceVar(&opts.categories, "category", []int{9}, "category ids to import")
	cmd.Flags().IntVar(&opts.amount, "amount", 50, "questions per category and difficulty (max 50)")
	cmd.Flags().StringSliceVar(&opts.difficulties, "difficulty", []string{"easy", "medium", "hard"}, "difficulties to import")
	cmd.Flags().StringVar(&opts.qtype, "type", "", "multiple or boolean (default both)")
	return cmd
}

func runImport(ctx context.Context, cfg config.Config, opts importOptions) error {
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	client := newOpenTDBClient(cfg)
	importer := pgbank.NewImporter(db)

	categories, err := client.LoadCategories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if err := importer.ImportCategories(ctx, categories); err != nil {
		return err
	}
	log.Printf("imported %d categories", len(categories))

	var qtype domain.QuestionType
	if opts.qtype != "" {
		if qtype, err = domain.ParseQuestionType(opts.qtype); err != nil {
			return err
		}
	}

	first := true
	for _, categoryID := range opts.categories {
		for _, raw := range opts.difficulties {
			difficulty, err := domain.ParseDifficulty(raw)
			if err != nil {
				return err
			}
			if !first {
				select {
				case <-time.After(importPause):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			first = false

			questions, err := client.FetchQuestions(ctx, domain.QuestionQuery{
				Amount:     opts.amount,
				Category:   categoryID,
				Difficulty: difficulty,
				Type:       qtype,
			})
			if err != nil {
				log.Printf("fetch category=%d difficulty=%s: %v", categoryID, difficulty, err)
				continue
			}
			added, err := importer.ImportQuestions(ctx, categoryID, questions)
			if err != nil {
				return err
			}
			log.Printf("category=%d difficulty=%s: %d fetched, %d new", categoryID, difficulty, len(questions), added)
		}
	}
	return nil
}
